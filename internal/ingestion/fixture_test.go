package ingestion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/liftdesk/internal/auth"
	"github.com/rpattn/liftdesk/internal/domain"
	"github.com/rpattn/liftdesk/internal/records"
	"github.com/rpattn/liftdesk/internal/sequence"
	"github.com/rpattn/liftdesk/internal/store/sqlite"
)

const jobsHeader = "Title,Management Company,Building,Unit,Mechanic,Scheduled Date,Start Time,End Time,Priority,Job Type,Notes"

type fixture struct {
	store    *sqlite.Store
	service  *Service
	registry *prometheus.Registry
	tenant   domain.Tenant
	royal    domain.Lookup
	acme     domain.Lookup
	main     domain.Lookup
	tower    domain.Lookup
	liftA    domain.Lookup
	mechanic domain.Lookup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{store: store, registry: prometheus.NewRegistry()}

	f.tenant, err = store.Tenants().Create(ctx, domain.NewTenant("Skyline Lifts"))
	require.NoError(t, err)

	f.royal = f.lookup(t, domain.LookupManagementCompany, "MC Royal", nil)
	f.acme = f.lookup(t, domain.LookupManagementCompany, "Acme Corp", nil)
	f.main = f.lookup(t, domain.LookupBuilding, "Main Building", &f.royal.ID)
	f.tower = f.lookup(t, domain.LookupBuilding, "Tower 1", &f.acme.ID)
	f.liftA = f.lookup(t, domain.LookupUnit, "Lift A", &f.main.ID)
	f.mechanic = f.lookup(t, domain.LookupMechanic, "Jane Doe", nil)
	f.lookup(t, domain.LookupEmergencyStatus, "Open", nil)
	f.lookup(t, domain.LookupInspector, "Sam Inspector", nil)
	f.lookup(t, domain.LookupInspectionResult, "Passed", nil)
	f.lookup(t, domain.LookupMaintenanceCategory, "Preventive", nil)
	f.lookup(t, domain.LookupBrand, "Otis", nil)
	f.lookup(t, domain.LookupEquipmentType, "Passenger Elevator", nil)

	metrics, err := NewMetrics(f.registry)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	f.service = NewService(Dependencies{
		Lookups: store.Lookups(),
		Writer:  records.NewWriter(store, sequence.NewAllocator(store.Sequences(), f.registry), store.Records()),
		Runs:    store.ImportRuns(),
		Metrics: metrics,
		Logger:  logger,
	})
	return f
}

func (f *fixture) lookup(t *testing.T, kind domain.LookupKind, name string, parent *uuid.UUID) domain.Lookup {
	t.Helper()
	row, err := f.store.Lookups().Create(context.Background(), domain.NewLookup(f.tenant.ID, kind, name, parent))
	require.NoError(t, err)
	return row
}

func (f *fixture) as(role auth.Role) context.Context {
	return auth.ContextWithActor(context.Background(), auth.Actor{ID: "actor-1", TenantID: f.tenant.ID, Role: role})
}

func (f *fixture) editor() context.Context {
	return f.as(auth.RoleDispatcher)
}

package repository

import (
	"context"
	"errors"

	"github.com/rpattn/liftdesk/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist for the tenant.
var ErrNotFound = errors.New("not found")

// UnitOfWork runs a function atomically. Repository calls made with the
// context handed to fn join the same transaction.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}

// TenantRepository defines the interface for tenant operations
type TenantRepository interface {
	Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
}

// LookupRepository reads and writes the tenant scoped tables that imports reference by name.
type LookupRepository interface {
	Create(ctx context.Context, lookup domain.Lookup) (domain.Lookup, error)
	// ListByKinds returns every row of the requested kinds that belongs to tenantID.
	ListByKinds(ctx context.Context, tenantID uuid.UUID, kinds []domain.LookupKind) (map[domain.LookupKind][]domain.Lookup, error)
}

// SequenceRepository stores the per-tenant code counters.
type SequenceRepository interface {
	// Reserve atomically advances the counter by count and returns the first
	// integer of the reserved block. A missing counter starts at 1.
	Reserve(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain, count int64) (int64, error)
	// Peek returns the next integer that Reserve would hand out.
	Peek(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain) (int64, error)
}

// RecordRepository inserts business records.
type RecordRepository interface {
	CreateJob(ctx context.Context, job domain.Job) (domain.Job, error)
	CreateEmergencyCall(ctx context.Context, call domain.EmergencyCall) (domain.EmergencyCall, error)
	CreateInspection(ctx context.Context, inspection domain.Inspection) (domain.Inspection, error)
	CreateMaintenanceRecord(ctx context.Context, record domain.MaintenanceRecord) (domain.MaintenanceRecord, error)
	CreateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error)
	// Count returns how many records of kind the tenant owns.
	Count(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind) (int64, error)
}

// ImportRunRepository stores the outcome of import commits for auditing.
type ImportRunRepository interface {
	Record(ctx context.Context, run domain.ImportRun) error
	List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]domain.ImportRun, error)
}

package ingestion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/liftdesk/internal/domain"
)

type lookupSet struct {
	tenantID uuid.UUID
	rows     map[domain.LookupKind][]domain.Lookup
}

func newLookupSet() *lookupSet {
	return &lookupSet{tenantID: uuid.New(), rows: map[domain.LookupKind][]domain.Lookup{}}
}

func (s *lookupSet) add(kind domain.LookupKind, name string, parent *domain.Lookup) domain.Lookup {
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}
	row := domain.NewLookup(s.tenantID, kind, name, parentID)
	s.rows[kind] = append(s.rows[kind], row)
	return row
}

func (s *lookupSet) validate(t *testing.T, kind domain.ImportKind, csv string) []ValidatedRow {
	t.Helper()
	layout, err := LayoutFor(kind)
	require.NoError(t, err)
	return validateRows(layout, s.tenantID, newResolver(s.rows), MapRows(csv, layout.Headers))
}

func jobOf(t *testing.T, row ValidatedRow) domain.Job {
	t.Helper()
	valid, ok := row.Outcome.(Valid)
	require.Truef(t, ok, "row %d invalid: %v", row.Row.Number, row.Errors())
	job, ok := valid.Record.(domain.Job)
	require.True(t, ok)
	return job
}

func TestValidateCompanyMatchIgnoresCase(t *testing.T) {
	set := newLookupSet()
	acme := set.add(domain.LookupManagementCompany, "Acme Corp", nil)
	set.add(domain.LookupBuilding, "Tower 1", &acme)

	rows := set.validate(t, domain.ImportJobs, jobsHeader+"\n"+
		"Service,Acme Corp,Tower 1,,,2026-02-01,,,,,\n"+
		"Service,  ACME CORP ,tower 1,,,2026-02-01,,,,,\n")

	require.Len(t, rows, 2)
	first, second := jobOf(t, rows[0]), jobOf(t, rows[1])
	assert.Equal(t, acme.ID, first.ManagementCompanyID)
	assert.Equal(t, first.ManagementCompanyID, second.ManagementCompanyID)
	assert.Equal(t, first.BuildingID, second.BuildingID)
}

func TestValidateBuildingMustBelongToCompany(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	set.add(domain.LookupManagementCompany, "Acme Corp", nil)
	set.add(domain.LookupBuilding, "Main Building", &royal)

	rows := set.validate(t, domain.ImportJobs, jobsHeader+"\n"+
		"Service,Acme Corp,Main Building,,,2026-02-01,,,,,\n")

	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsValid())
	assert.Equal(t, []string{`Building "Main Building" not found under "Acme Corp"`}, rows[0].Errors())
}

func TestValidateUnitMustBelongToBuilding(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	main := set.add(domain.LookupBuilding, "Main Building", &royal)
	annex := set.add(domain.LookupBuilding, "Annex", &royal)
	set.add(domain.LookupUnit, "Lift A", &annex)
	liftA := set.add(domain.LookupUnit, "Lift A", &main)

	rows := set.validate(t, domain.ImportJobs, jobsHeader+"\n"+
		"Service,MC Royal,Main Building,lift a,,2026-02-01,,,,,\n"+
		"Service,MC Royal,Main Building,Lift B,,2026-02-01,,,,,\n")

	job := jobOf(t, rows[0])
	require.NotNil(t, job.UnitID)
	assert.Equal(t, liftA.ID, *job.UnitID)
	assert.Equal(t, []string{`Unit "Lift B" not found under "Main Building"`}, rows[1].Errors())
}

func TestValidateSkipsChildCheckWhenParentMissing(t *testing.T) {
	set := newLookupSet()

	rows := set.validate(t, domain.ImportJobs, jobsHeader+"\n"+
		"Service,Ghost Co,Main Building,Lift A,,2026-02-01,,,,,\n")

	assert.Equal(t, []string{`Management Company "Ghost Co" not found`}, rows[0].Errors())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	set.add(domain.LookupBuilding, "Main Building", &royal)

	rows := set.validate(t, domain.ImportJobs, jobsHeader+"\n"+
		",MC Royal,Main Building,,Bob,31/12/2026,10:00,09:00,asap,cleaning,\n")

	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"Title is required",
		`Mechanic "Bob" not found`,
		`Scheduled Date "31/12/2026" is invalid (expected YYYY-MM-DD or MM/DD/YYYY)`,
		"End Time must be after Start Time",
		`Priority "asap" is invalid (expected one of LOW, NORMAL, HIGH, URGENT)`,
		`Job Type "cleaning" is invalid (expected one of MAINTENANCE, REPAIR, INSPECTION, INSTALLATION, MODERNIZATION, EMERGENCY)`,
	}, rows[0].Errors())
}

func TestValidateRequiredFieldsOnShortRow(t *testing.T) {
	set := newLookupSet()

	rows := set.validate(t, domain.ImportJobs, jobsHeader+"\nOnly a title\n")

	assert.Equal(t, []string{
		"Management Company is required",
		"Building is required",
		"Scheduled Date is required",
	}, rows[0].Errors())
}

func TestValidateNormalizesValues(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	set.add(domain.LookupBuilding, "Main Building", &royal)
	mechanic := set.add(domain.LookupMechanic, "Jane Doe", nil)

	rows := set.validate(t, domain.ImportJobs, jobsHeader+"\n"+
		`"Fix door, level 3",MC Royal,Main Building,,jane doe,02/01/2026,9:15 am,2:30 PM,high,repair,"Call ""Ops"" first"`+"\n"+
		"Defaults,MC Royal,Main Building,,,2026-02-01,,,,,\n")

	job := jobOf(t, rows[0])
	assert.Equal(t, "Fix door, level 3", job.Title)
	assert.Equal(t, "2026-02-01", job.ScheduledDate.Format("2006-01-02"))
	assert.Equal(t, "09:15", job.StartTime)
	assert.Equal(t, "14:30", job.EndTime)
	assert.Equal(t, domain.PriorityHigh, job.Priority)
	assert.Equal(t, domain.JobTypeRepair, job.JobType)
	assert.Equal(t, `Call "Ops" first`, job.Notes)
	require.NotNil(t, job.MechanicID)
	assert.Equal(t, mechanic.ID, *job.MechanicID)
	assert.Equal(t, set.tenantID, job.TenantID)

	defaults := jobOf(t, rows[1])
	assert.Equal(t, domain.PriorityNormal, defaults.Priority)
	assert.Equal(t, domain.JobTypeMaintenance, defaults.JobType)
	assert.Nil(t, defaults.UnitID)
	assert.Nil(t, defaults.MechanicID)
}

func TestValidateEmergencyCalls(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	main := set.add(domain.LookupBuilding, "Main Building", &royal)
	lift := set.add(domain.LookupUnit, "Lift A", &main)
	open := set.add(domain.LookupEmergencyStatus, "Open", nil)

	rows := set.validate(t, domain.ImportEmergencyCalls,
		"Management Company,Building,Unit,Mechanic,Call Date,Call Time,Priority,Status,Issue Description,Notes\n"+
			"MC Royal,Main Building,Lift A,,2026-03-04,23:10,urgent,open,Passenger trapped,\n"+
			"MC Royal,Main Building,,,2026-03-04,,,Closed,,\n")

	valid, ok := rows[0].Outcome.(Valid)
	require.True(t, ok, rows[0].Errors())
	call := valid.Record.(domain.EmergencyCall)
	assert.Equal(t, lift.ID, call.UnitID)
	assert.Equal(t, domain.PriorityUrgent, call.Priority)
	require.NotNil(t, call.StatusID)
	assert.Equal(t, open.ID, *call.StatusID)
	assert.Equal(t, "23:10", call.CallTime)

	assert.Equal(t, []string{
		"Unit is required",
		`Status "Closed" not found`,
		"Issue Description is required",
	}, rows[1].Errors())
}

func TestValidateInspections(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	main := set.add(domain.LookupBuilding, "Main Building", &royal)
	set.add(domain.LookupUnit, "Lift A", &main)
	set.add(domain.LookupInspectionResult, "Passed", nil)

	rows := set.validate(t, domain.ImportInspections,
		"Management Company,Building,Unit,Inspector,Inspection Date,Inspection Type,Status,Result,Notes\n"+
			"MC Royal,Main Building,Lift A,,2026-05-01,follow up,,passed,\n"+
			"MC Royal,Main Building,Lift A,,2026-05-01,,,,\n"+
			"MC Royal,Main Building,Lift A,,2026-05-01,monthly,,,\n")

	first := rows[0].Outcome.(Valid).Record.(domain.Inspection)
	assert.Equal(t, domain.InspectionTypeFollowUp, first.InspectionType)
	assert.NotNil(t, first.ResultID)

	second := rows[1].Outcome.(Valid).Record.(domain.Inspection)
	assert.Equal(t, domain.InspectionTypePeriodic, second.InspectionType)

	assert.Equal(t, []string{
		`Inspection Type "monthly" is invalid (expected one of ANNUAL, PERIODIC, ACCEPTANCE, FOLLOW_UP)`,
	}, rows[2].Errors())
}

func TestValidateMaintenance(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	main := set.add(domain.LookupBuilding, "Main Building", &royal)
	set.add(domain.LookupUnit, "Lift A", &main)
	category := set.add(domain.LookupMaintenanceCategory, "Preventive", nil)

	rows := set.validate(t, domain.ImportMaintenance,
		"Management Company,Building,Unit,Mechanic,Category,Maintenance Date,Description,Notes\n"+
			"MC Royal,Main Building,Lift A,,PREVENTIVE,1/15/2026,Lubricated rails,\n")

	record := rows[0].Outcome.(Valid).Record.(domain.MaintenanceRecord)
	require.NotNil(t, record.CategoryID)
	assert.Equal(t, category.ID, *record.CategoryID)
	assert.Equal(t, "2026-01-15", record.MaintenanceDate.Format("2006-01-02"))
}

func TestValidateUnits(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	main := set.add(domain.LookupBuilding, "Main Building", &royal)
	set.add(domain.LookupUnit, "Lift A", &main)
	set.add(domain.LookupBrand, "Otis", nil)

	rows := set.validate(t, domain.ImportUnits,
		"Management Company,Building,Unit Name,Equipment Type,Brand,Capacity,Notes\n"+
			"MC Royal,Main Building,Lift B,,otis,1250.5,\n"+
			"MC Royal,Main Building,lift a,,,-3,\n"+
			"MC Royal,Main Building,Lift C,,,heavy,\n")

	unit := rows[0].Outcome.(Valid).Record.(domain.Unit)
	assert.Equal(t, main.ID, unit.BuildingID)
	assert.True(t, unit.Capacity.Valid)
	assert.Equal(t, "1250.5", unit.Capacity.Decimal.String())
	assert.NotNil(t, unit.BrandID)

	assert.Equal(t, []string{
		`Unit Name "lift a" already exists under "Main Building"`,
		`Capacity "-3" must not be negative`,
	}, rows[1].Errors())
	assert.Equal(t, []string{`Capacity "heavy" is not a number`}, rows[2].Errors())
}

func TestValidateUnitsRejectsRepeatsWithinFile(t *testing.T) {
	set := newLookupSet()
	royal := set.add(domain.LookupManagementCompany, "MC Royal", nil)
	main := set.add(domain.LookupBuilding, "Main Building", &royal)
	set.add(domain.LookupBuilding, "Annex", &royal)

	rows := set.validate(t, domain.ImportUnits,
		"Management Company,Building,Unit Name,Equipment Type,Brand,Capacity,Notes\n"+
			"MC Royal,Main Building,Lift B,,,,\n"+
			"MC Royal,main building, lift b ,,,,\n"+
			"MC Royal,Annex,Lift B,,,,\n")

	assert.Equal(t, main.ID, rows[0].Outcome.(Valid).Record.(domain.Unit).BuildingID)
	assert.Equal(t, []string{`Unit Name "lift b" is repeated under "main building" (first on row 2)`}, rows[1].Errors())
	// same name under another building is a different unit
	assert.True(t, rows[2].IsValid(), rows[2].Errors())
}

func TestHeaderWarnings(t *testing.T) {
	layout, err := LayoutFor(domain.ImportUnits)
	require.NoError(t, err)

	assert.Empty(t, layout.headerWarnings([]string{
		"management company", "Building ", "Unit Name", "Equipment Type", "Brand", "Capacity", "Notes",
	}))
	assert.Equal(t, []string{
		`column 3 is "Unit", expected "Unit Name"`,
		`column 7 is "", expected "Notes"`,
	}, layout.headerWarnings([]string{"Management Company", "Building", "Unit", "Equipment Type", "Brand", "Capacity"}))
}

func TestLayoutForUnknownKind(t *testing.T) {
	_, err := LayoutFor("invoices")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

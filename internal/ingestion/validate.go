package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rpattn/liftdesk/internal/domain"
)

// Outcome is the result of validating one row: Valid or Invalid.
type Outcome interface {
	outcome()
}

// Valid carries the record a row resolved to.
type Valid struct {
	Record domain.Record
}

// Invalid carries every problem found in a row, in column order.
type Invalid struct {
	Errors []string
}

func (Valid) outcome()   {}
func (Invalid) outcome() {}

// ValidatedRow pairs a mapped row with its outcome.
type ValidatedRow struct {
	Row     Row
	Outcome Outcome
}

// IsValid reports whether the row can be imported.
func (v ValidatedRow) IsValid() bool {
	_, ok := v.Outcome.(Valid)
	return ok
}

// Errors returns the row's problems, nil for valid rows.
func (v ValidatedRow) Errors() []string {
	if invalid, ok := v.Outcome.(Invalid); ok {
		return invalid.Errors
	}
	return nil
}

// validateRows checks every row independently; a bad row never stops the batch.
func validateRows(layout Layout, tenantID uuid.UUID, res *resolver, rows []Row) []ValidatedRow {
	out := make([]ValidatedRow, len(rows))
	// first row number of every unit the file creates, keyed by building and folded name
	units := make(map[string]int)
	for i, row := range rows {
		c := &rowChecker{res: res, row: row, headers: layout.Headers}
		record := buildRecord(layout.Kind, tenantID, c)
		if unit, ok := record.(domain.Unit); ok && len(c.errs) == 0 {
			key := unit.BuildingID.String() + "|" + res.key(unit.Name)
			if first, dup := units[key]; dup {
				c.fail("%s %q is repeated under %q (first on row %d)",
					c.label(unitName), unit.Name, c.row.Value(unitBuilding), first)
			} else {
				units[key] = row.Number
			}
		}
		if len(c.errs) > 0 {
			out[i] = ValidatedRow{Row: row, Outcome: Invalid{Errors: c.errs}}
			continue
		}
		out[i] = ValidatedRow{Row: row, Outcome: Valid{Record: record}}
	}
	return out
}

func buildRecord(kind domain.ImportKind, tenantID uuid.UUID, c *rowChecker) domain.Record {
	switch kind {
	case domain.ImportJobs:
		title := c.required(jobTitle)
		company := c.company(jobCompany)
		building := c.child(domain.LookupBuilding, jobBuilding, company, true)
		unit := c.child(domain.LookupUnit, jobUnit, building, false)
		mechanic := c.lookup(domain.LookupMechanic, jobMechanic)
		scheduled := c.date(jobScheduledDate)
		start := c.clock(jobStartTime)
		end := c.clock(jobEndTime)
		if start != "" && end != "" && end <= start {
			c.fail("%s must be after %s", c.label(jobEndTime), c.label(jobStartTime))
		}
		return domain.Job{
			TenantID:            tenantID,
			Title:               title,
			ManagementCompanyID: idOf(company),
			BuildingID:          idOf(building),
			UnitID:              ptrOf(unit),
			MechanicID:          mechanic,
			ScheduledDate:       scheduled,
			StartTime:           start,
			EndTime:             end,
			Priority:            enumValue(c, jobPriority, domain.Priorities, domain.PriorityNormal),
			JobType:             enumValue(c, jobType, domain.JobTypes, domain.JobTypeMaintenance),
			Notes:               c.row.Value(jobNotes),
		}

	case domain.ImportEmergencyCalls:
		company := c.company(callCompany)
		building := c.child(domain.LookupBuilding, callBuilding, company, true)
		unit := c.child(domain.LookupUnit, callUnit, building, true)
		return domain.EmergencyCall{
			TenantID:            tenantID,
			ManagementCompanyID: idOf(company),
			BuildingID:          idOf(building),
			UnitID:              idOf(unit),
			MechanicID:          c.lookup(domain.LookupMechanic, callMechanic),
			CallDate:            c.date(callDate),
			CallTime:            c.clock(callTime),
			Priority:            enumValue(c, callPriority, domain.Priorities, domain.PriorityNormal),
			StatusID:            c.lookup(domain.LookupEmergencyStatus, callStatus),
			Description:         c.required(callDescription),
			Notes:               c.row.Value(callNotes),
		}

	case domain.ImportInspections:
		company := c.company(inspCompany)
		building := c.child(domain.LookupBuilding, inspBuilding, company, true)
		unit := c.child(domain.LookupUnit, inspUnit, building, true)
		return domain.Inspection{
			TenantID:            tenantID,
			ManagementCompanyID: idOf(company),
			BuildingID:          idOf(building),
			UnitID:              idOf(unit),
			InspectorID:         c.lookup(domain.LookupInspector, inspInspector),
			InspectionDate:      c.date(inspDate),
			InspectionType:      enumValue(c, inspType, domain.InspectionTypes, domain.InspectionTypePeriodic),
			StatusID:            c.lookup(domain.LookupInspectionStatus, inspStatus),
			ResultID:            c.lookup(domain.LookupInspectionResult, inspResult),
			Notes:               c.row.Value(inspNotes),
		}

	case domain.ImportMaintenance:
		company := c.company(maintCompany)
		building := c.child(domain.LookupBuilding, maintBuilding, company, true)
		unit := c.child(domain.LookupUnit, maintUnit, building, true)
		return domain.MaintenanceRecord{
			TenantID:            tenantID,
			ManagementCompanyID: idOf(company),
			BuildingID:          idOf(building),
			UnitID:              idOf(unit),
			MechanicID:          c.lookup(domain.LookupMechanic, maintMechanic),
			CategoryID:          c.lookup(domain.LookupMaintenanceCategory, maintCategory),
			MaintenanceDate:     c.date(maintDate),
			Description:         c.required(maintDescription),
			Notes:               c.row.Value(maintNotes),
		}

	case domain.ImportUnits:
		company := c.company(unitCompany)
		building := c.child(domain.LookupBuilding, unitBuilding, company, true)
		name := c.required(unitName)
		if name != "" && building != nil {
			if _, exists := c.res.findUnder(domain.LookupUnit, name, building.ID); exists {
				c.fail("%s %q already exists under %q", c.label(unitName), name, building.Name)
			}
		}
		return domain.Unit{
			TenantID:        tenantID,
			BuildingID:      idOf(building),
			Name:            name,
			EquipmentTypeID: c.lookup(domain.LookupEquipmentType, unitEquipmentType),
			BrandID:         c.lookup(domain.LookupBrand, unitBrand),
			Capacity:        c.capacity(unitCapacity),
			Notes:           c.row.Value(unitNotes),
		}
	}
	c.fail("unknown import kind %q", kind)
	return nil
}

// rowChecker accumulates the problems of one row.
type rowChecker struct {
	res     *resolver
	row     Row
	headers []string
	errs    []string
}

func (c *rowChecker) fail(format string, args ...any) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

func (c *rowChecker) label(col int) string {
	return c.headers[col]
}

func (c *rowChecker) required(col int) string {
	value := c.row.Value(col)
	if value == "" {
		c.fail("%s is required", c.label(col))
	}
	return value
}

// company resolves the row's management company, which every layout requires.
func (c *rowChecker) company(col int) *domain.Lookup {
	value := c.required(col)
	if value == "" {
		return nil
	}
	row, ok := c.res.find(domain.LookupManagementCompany, value)
	if !ok {
		c.fail("%s %q not found", c.label(col), value)
		return nil
	}
	return &row
}

// child resolves a lookup that must sit under parent. When the parent did
// not resolve its error is already recorded and the containment check is skipped.
func (c *rowChecker) child(kind domain.LookupKind, col int, parent *domain.Lookup, required bool) *domain.Lookup {
	value := c.row.Value(col)
	if value == "" {
		if required {
			c.fail("%s is required", c.label(col))
		}
		return nil
	}
	if parent == nil {
		return nil
	}
	row, ok := c.res.findUnder(kind, value, parent.ID)
	if !ok {
		c.fail("%s %q not found under %q", c.label(col), value, parent.Name)
		return nil
	}
	return &row
}

// lookup resolves an optional, uncontained lookup. Blank yields nil.
func (c *rowChecker) lookup(kind domain.LookupKind, col int) *uuid.UUID {
	value := c.row.Value(col)
	if value == "" {
		return nil
	}
	row, ok := c.res.find(kind, value)
	if !ok {
		c.fail("%s %q not found", c.label(col), value)
		return nil
	}
	return &row.ID
}

func (c *rowChecker) date(col int) time.Time {
	value := c.required(col)
	if value == "" {
		return time.Time{}
	}
	t, ok := parseDate(value)
	if !ok {
		c.fail("%s %q is invalid (expected %s)", c.label(col), value, dateFormats)
	}
	return t
}

func (c *rowChecker) clock(col int) string {
	value := c.row.Value(col)
	if value == "" {
		return ""
	}
	normalized, ok := parseClock(value)
	if !ok {
		c.fail("%s %q is invalid (expected %s)", c.label(col), value, clockFormats)
	}
	return normalized
}

func (c *rowChecker) capacity(col int) decimal.NullDecimal {
	value := c.row.Value(col)
	if value == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		c.fail("%s %q is not a number", c.label(col), value)
		return decimal.NullDecimal{}
	}
	if d.IsNegative() {
		c.fail("%s %q must not be negative", c.label(col), value)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// enumValue upper-cases the cell and checks it against values. Blank cells take def.
func enumValue[T ~string](c *rowChecker, col int, values []T, def T) T {
	value := strings.ToUpper(c.row.Value(col))
	if value == "" {
		return def
	}
	v := T(strings.ReplaceAll(value, " ", "_"))
	if !domain.InEnum(v, values) {
		c.fail("%s %q is invalid (expected one of %s)", c.label(col), c.row.Value(col), domain.EnumValues(values))
		return def
	}
	return v
}

func idOf(l *domain.Lookup) uuid.UUID {
	if l == nil {
		return uuid.Nil
	}
	return l.ID
}

func ptrOf(l *domain.Lookup) *uuid.UUID {
	if l == nil {
		return nil
	}
	id := l.ID
	return &id
}

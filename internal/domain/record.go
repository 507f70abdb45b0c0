package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportKind names a bulk import layout.
type ImportKind string

const (
	ImportJobs           ImportKind = "jobs"
	ImportEmergencyCalls ImportKind = "emergency-calls"
	ImportInspections    ImportKind = "inspections"
	ImportMaintenance    ImportKind = "maintenance"
	ImportUnits          ImportKind = "units"
)

// CodeDomain returns the sequence that numbers records of this kind. Units are not numbered.
func (k ImportKind) CodeDomain() CodeDomain {
	switch k {
	case ImportJobs:
		return CodeDomainJob
	case ImportEmergencyCalls:
		return CodeDomainEmergency
	case ImportInspections:
		return CodeDomainInspection
	case ImportMaintenance:
		return CodeDomainMaintenance
	default:
		return ""
	}
}

// Table returns the relational table that receives records of this kind.
func (k ImportKind) Table() string {
	switch k {
	case ImportJobs:
		return "jobs"
	case ImportEmergencyCalls:
		return "emergency_calls"
	case ImportInspections:
		return "inspections"
	case ImportMaintenance:
		return "maintenance_records"
	case ImportUnits:
		return "units"
	default:
		return ""
	}
}

// Record is a business row created by an import or a single create.
type Record interface {
	Kind() ImportKind
	Tenant() uuid.UUID
	// WithCode returns a copy carrying the minted code. Records without a code domain ignore it.
	WithCode(code string) Record
}

// Job is a scheduled piece of work on a building or unit.
type Job struct {
	ID                  uuid.UUID  `json:"id"`
	TenantID            uuid.UUID  `json:"tenant_id"`
	Code                string     `json:"code"`
	Title               string     `json:"title"`
	ManagementCompanyID uuid.UUID  `json:"management_company_id"`
	BuildingID          uuid.UUID  `json:"building_id"`
	UnitID              *uuid.UUID `json:"unit_id,omitempty"`
	MechanicID          *uuid.UUID `json:"mechanic_id,omitempty"`
	ScheduledDate       time.Time  `json:"scheduled_date"`
	StartTime           string     `json:"start_time,omitempty"`
	EndTime             string     `json:"end_time,omitempty"`
	Priority            Priority   `json:"priority"`
	JobType             JobType    `json:"job_type"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (j Job) Kind() ImportKind { return ImportJobs }
func (j Job) Tenant() uuid.UUID { return j.TenantID }
func (j Job) WithCode(code string) Record {
	j.Code = code
	return j
}

// EmergencyCall is an unplanned call-out for a unit.
type EmergencyCall struct {
	ID                  uuid.UUID  `json:"id"`
	TenantID            uuid.UUID  `json:"tenant_id"`
	Code                string     `json:"code"`
	ManagementCompanyID uuid.UUID  `json:"management_company_id"`
	BuildingID          uuid.UUID  `json:"building_id"`
	UnitID              uuid.UUID  `json:"unit_id"`
	MechanicID          *uuid.UUID `json:"mechanic_id,omitempty"`
	StatusID            *uuid.UUID `json:"status_id,omitempty"`
	CallDate            time.Time  `json:"call_date"`
	CallTime            string     `json:"call_time,omitempty"`
	Priority            Priority   `json:"priority"`
	Description         string     `json:"description"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (e EmergencyCall) Kind() ImportKind { return ImportEmergencyCalls }
func (e EmergencyCall) Tenant() uuid.UUID { return e.TenantID }
func (e EmergencyCall) WithCode(code string) Record {
	e.Code = code
	return e
}

// Inspection is a regulatory or internal inspection of a unit.
type Inspection struct {
	ID                  uuid.UUID      `json:"id"`
	TenantID            uuid.UUID      `json:"tenant_id"`
	Code                string         `json:"code"`
	ManagementCompanyID uuid.UUID      `json:"management_company_id"`
	BuildingID          uuid.UUID      `json:"building_id"`
	UnitID              uuid.UUID      `json:"unit_id"`
	InspectorID         *uuid.UUID     `json:"inspector_id,omitempty"`
	StatusID            *uuid.UUID     `json:"status_id,omitempty"`
	ResultID            *uuid.UUID     `json:"result_id,omitempty"`
	InspectionDate      time.Time      `json:"inspection_date"`
	InspectionType      InspectionType `json:"inspection_type"`
	Notes               string         `json:"notes,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

func (i Inspection) Kind() ImportKind { return ImportInspections }
func (i Inspection) Tenant() uuid.UUID { return i.TenantID }
func (i Inspection) WithCode(code string) Record {
	i.Code = code
	return i
}

// MaintenanceRecord logs maintenance performed on a unit.
type MaintenanceRecord struct {
	ID                  uuid.UUID  `json:"id"`
	TenantID            uuid.UUID  `json:"tenant_id"`
	Code                string     `json:"code"`
	ManagementCompanyID uuid.UUID  `json:"management_company_id"`
	BuildingID          uuid.UUID  `json:"building_id"`
	UnitID              uuid.UUID  `json:"unit_id"`
	MechanicID          *uuid.UUID `json:"mechanic_id,omitempty"`
	CategoryID          *uuid.UUID `json:"category_id,omitempty"`
	MaintenanceDate     time.Time  `json:"maintenance_date"`
	Description         string     `json:"description"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (m MaintenanceRecord) Kind() ImportKind { return ImportMaintenance }
func (m MaintenanceRecord) Tenant() uuid.UUID { return m.TenantID }
func (m MaintenanceRecord) WithCode(code string) Record {
	m.Code = code
	return m
}

// Unit is a piece of equipment (elevator, escalator, lift) installed in a building.
type Unit struct {
	ID              uuid.UUID           `json:"id"`
	TenantID        uuid.UUID           `json:"tenant_id"`
	BuildingID      uuid.UUID           `json:"building_id"`
	Name            string              `json:"name"`
	EquipmentTypeID *uuid.UUID          `json:"equipment_type_id,omitempty"`
	BrandID         *uuid.UUID          `json:"brand_id,omitempty"`
	Capacity        decimal.NullDecimal `json:"capacity"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

func (u Unit) Kind() ImportKind { return ImportUnits }
func (u Unit) Tenant() uuid.UUID { return u.TenantID }
func (u Unit) WithCode(string) Record { return u }

// RecordCode returns the code carried by r, or "" for records that are not numbered.
func RecordCode(r Record) string {
	switch v := r.(type) {
	case Job:
		return v.Code
	case EmergencyCall:
		return v.Code
	case Inspection:
		return v.Code
	case MaintenanceRecord:
		return v.Code
	default:
		return ""
	}
}

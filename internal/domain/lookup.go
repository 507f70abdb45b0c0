package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// LookupKind names a tenant scoped table whose rows are referenced by name in imports.
type LookupKind string

const (
	LookupManagementCompany   LookupKind = "management_company"
	LookupBuilding            LookupKind = "building"
	LookupUnit                LookupKind = "unit"
	LookupMechanic            LookupKind = "mechanic"
	LookupInspector           LookupKind = "inspector"
	LookupMaintenanceCategory LookupKind = "maintenance_category"
	LookupEmergencyStatus     LookupKind = "emergency_status"
	LookupInspectionStatus    LookupKind = "inspection_status"
	LookupInspectionResult    LookupKind = "inspection_result"
	LookupEquipmentType       LookupKind = "equipment_type"
	LookupBrand               LookupKind = "brand"
)

var lookupKinds = []LookupKind{
	LookupManagementCompany,
	LookupBuilding,
	LookupUnit,
	LookupMechanic,
	LookupInspector,
	LookupMaintenanceCategory,
	LookupEmergencyStatus,
	LookupInspectionStatus,
	LookupInspectionResult,
	LookupEquipmentType,
	LookupBrand,
}

// LookupKinds lists every known lookup kind.
func LookupKinds() []LookupKind {
	out := make([]LookupKind, len(lookupKinds))
	copy(out, lookupKinds)
	return out
}

// Valid reports whether k is a known lookup kind.
func (k LookupKind) Valid() bool {
	for _, known := range lookupKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Table returns the relational table that stores rows of this kind.
func (k LookupKind) Table() string {
	switch k {
	case LookupManagementCompany:
		return "management_companies"
	case LookupBuilding:
		return "buildings"
	case LookupUnit:
		return "units"
	case LookupMechanic:
		return "mechanics"
	case LookupInspector:
		return "inspectors"
	case LookupMaintenanceCategory:
		return "maintenance_categories"
	case LookupEmergencyStatus:
		return "emergency_statuses"
	case LookupInspectionStatus:
		return "inspection_statuses"
	case LookupInspectionResult:
		return "inspection_results"
	case LookupEquipmentType:
		return "equipment_types"
	case LookupBrand:
		return "brands"
	default:
		return ""
	}
}

// ParentColumn returns the foreign key column pointing at the parent lookup, if any.
func (k LookupKind) ParentColumn() string {
	switch k {
	case LookupBuilding:
		return "management_company_id"
	case LookupUnit:
		return "building_id"
	default:
		return ""
	}
}

// Label is the human readable name used in row errors.
func (k LookupKind) Label() string {
	switch k {
	case LookupManagementCompany:
		return "Management Company"
	case LookupBuilding:
		return "Building"
	case LookupUnit:
		return "Unit"
	case LookupMechanic:
		return "Mechanic"
	case LookupInspector:
		return "Inspector"
	case LookupMaintenanceCategory:
		return "Category"
	case LookupEmergencyStatus, LookupInspectionStatus:
		return "Status"
	case LookupInspectionResult:
		return "Result"
	case LookupEquipmentType:
		return "Equipment Type"
	case LookupBrand:
		return "Brand"
	default:
		return string(k)
	}
}

// Lookup is one row of a tenant scoped lookup table.
type Lookup struct {
	ID       uuid.UUID  `json:"id"`
	TenantID uuid.UUID  `json:"tenant_id"`
	Kind     LookupKind `json:"kind"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// NewLookup creates a lookup row with a fresh identifier.
func NewLookup(tenantID uuid.UUID, kind LookupKind, name string, parentID *uuid.UUID) Lookup {
	return Lookup{
		ID:       uuid.New(),
		TenantID: tenantID,
		Kind:     kind,
		Name:     name,
		ParentID: parentID,
	}
}

// Validate checks the structural rules of a lookup row before it is stored.
func (l Lookup) Validate() error {
	if !l.Kind.Valid() {
		return fmt.Errorf("unknown lookup kind %q", l.Kind)
	}
	if l.TenantID == uuid.Nil {
		return fmt.Errorf("tenant id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("%s name is required", l.Kind.Label())
	}
	if l.Kind.ParentColumn() != "" && l.ParentID == nil {
		return fmt.Errorf("%s requires a parent", l.Kind.Label())
	}
	return nil
}

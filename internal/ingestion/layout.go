package ingestion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/liftdesk/internal/domain"
)

// ErrUnknownKind is returned for import kinds without a layout.
var ErrUnknownKind = errors.New("unknown import kind")

// Layout is the header contract of one import kind. Columns are read by
// position; the labels are what templates emit and previews compare against.
type Layout struct {
	Kind    domain.ImportKind
	Headers []string
	// Lookups lists the tables the validator needs for this kind.
	Lookups []domain.LookupKind
}

// Column positions per layout.
const (
	jobTitle = iota
	jobCompany
	jobBuilding
	jobUnit
	jobMechanic
	jobScheduledDate
	jobStartTime
	jobEndTime
	jobPriority
	jobType
	jobNotes
)

const (
	callCompany = iota
	callBuilding
	callUnit
	callMechanic
	callDate
	callTime
	callPriority
	callStatus
	callDescription
	callNotes
)

const (
	inspCompany = iota
	inspBuilding
	inspUnit
	inspInspector
	inspDate
	inspType
	inspStatus
	inspResult
	inspNotes
)

const (
	maintCompany = iota
	maintBuilding
	maintUnit
	maintMechanic
	maintCategory
	maintDate
	maintDescription
	maintNotes
)

const (
	unitCompany = iota
	unitBuilding
	unitName
	unitEquipmentType
	unitBrand
	unitCapacity
	unitNotes
)

var layouts = map[domain.ImportKind]Layout{
	domain.ImportJobs: {
		Kind: domain.ImportJobs,
		Headers: []string{
			"Title", "Management Company", "Building", "Unit", "Mechanic",
			"Scheduled Date", "Start Time", "End Time", "Priority", "Job Type", "Notes",
		},
		Lookups: []domain.LookupKind{
			domain.LookupManagementCompany, domain.LookupBuilding, domain.LookupUnit, domain.LookupMechanic,
		},
	},
	domain.ImportEmergencyCalls: {
		Kind: domain.ImportEmergencyCalls,
		Headers: []string{
			"Management Company", "Building", "Unit", "Mechanic", "Call Date", "Call Time",
			"Priority", "Status", "Issue Description", "Notes",
		},
		Lookups: []domain.LookupKind{
			domain.LookupManagementCompany, domain.LookupBuilding, domain.LookupUnit, domain.LookupMechanic,
			domain.LookupEmergencyStatus,
		},
	},
	domain.ImportInspections: {
		Kind: domain.ImportInspections,
		Headers: []string{
			"Management Company", "Building", "Unit", "Inspector", "Inspection Date", "Inspection Type",
			"Status", "Result", "Notes",
		},
		Lookups: []domain.LookupKind{
			domain.LookupManagementCompany, domain.LookupBuilding, domain.LookupUnit, domain.LookupInspector,
			domain.LookupInspectionStatus, domain.LookupInspectionResult,
		},
	},
	domain.ImportMaintenance: {
		Kind: domain.ImportMaintenance,
		Headers: []string{
			"Management Company", "Building", "Unit", "Mechanic", "Category", "Maintenance Date",
			"Description", "Notes",
		},
		Lookups: []domain.LookupKind{
			domain.LookupManagementCompany, domain.LookupBuilding, domain.LookupUnit, domain.LookupMechanic,
			domain.LookupMaintenanceCategory,
		},
	},
	domain.ImportUnits: {
		Kind: domain.ImportUnits,
		Headers: []string{
			"Management Company", "Building", "Unit Name", "Equipment Type", "Brand", "Capacity", "Notes",
		},
		Lookups: []domain.LookupKind{
			domain.LookupManagementCompany, domain.LookupBuilding, domain.LookupUnit, domain.LookupEquipmentType,
			domain.LookupBrand,
		},
	},
}

// LayoutFor returns the layout of kind.
func LayoutFor(kind domain.ImportKind) (Layout, error) {
	layout, ok := layouts[kind]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return layout, nil
}

// Kinds lists the supported import kinds in a stable order.
func Kinds() []domain.ImportKind {
	return []domain.ImportKind{
		domain.ImportJobs,
		domain.ImportEmergencyCalls,
		domain.ImportInspections,
		domain.ImportMaintenance,
		domain.ImportUnits,
	}
}

// headerWarnings compares an uploaded header row with the layout. Values are
// still mapped by position; mismatches are only reported.
func (l Layout) headerWarnings(header []string) []string {
	var warnings []string
	for i, want := range l.Headers {
		got := ""
		if i < len(header) {
			got = strings.TrimSpace(header[i])
		}
		if !strings.EqualFold(got, want) {
			warnings = append(warnings, fmt.Sprintf("column %d is %q, expected %q", i+1, got, want))
		}
	}
	if len(header) > len(l.Headers) {
		warnings = append(warnings, fmt.Sprintf("%d extra column(s) will be ignored", len(header)-len(l.Headers)))
	}
	return warnings
}

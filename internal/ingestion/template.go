package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/liftdesk/internal/domain"
)

// Template formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// TemplateFile is a downloadable import template.
type TemplateFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

// exampleRow fills one row of the layout with the tenant's own names where
// it has them and with placeholder text otherwise.
func exampleRow(layout Layout, res *resolver, today time.Time) []string {
	pick := func(kind domain.LookupKind, parent *domain.Lookup, placeholder string) *domain.Lookup {
		var parentID *uuid.UUID
		if parent != nil {
			id := parent.ID
			parentID = &id
		}
		if row, ok := res.first(kind, parentID); ok {
			return &row
		}
		return &domain.Lookup{Kind: kind, Name: placeholder}
	}
	date := today.Format("2006-01-02")

	company := pick(domain.LookupManagementCompany, nil, "Example Management Co")
	building := pick(domain.LookupBuilding, company, "Example Building")
	unit := pick(domain.LookupUnit, building, "Elevator 1")
	// Units are optional on jobs; leave the cell blank rather than suggest one that does not exist.
	unitCell := ""
	if unit.ID != uuid.Nil {
		unitCell = unit.Name
	}

	switch layout.Kind {
	case domain.ImportJobs:
		return []string{
			"Quarterly maintenance visit", company.Name, building.Name, unitCell,
			pick(domain.LookupMechanic, nil, "Mechanic name").Name,
			date, "09:00", "11:00", string(domain.PriorityNormal), string(domain.JobTypeMaintenance), "",
		}
	case domain.ImportEmergencyCalls:
		return []string{
			company.Name, building.Name, unit.Name, pick(domain.LookupMechanic, nil, "Mechanic name").Name,
			date, "14:30", string(domain.PriorityUrgent), pick(domain.LookupEmergencyStatus, nil, "Open").Name,
			"Passenger trapped between floors", "",
		}
	case domain.ImportInspections:
		return []string{
			company.Name, building.Name, unit.Name, pick(domain.LookupInspector, nil, "Inspector name").Name,
			date, string(domain.InspectionTypePeriodic), pick(domain.LookupInspectionStatus, nil, "Scheduled").Name,
			pick(domain.LookupInspectionResult, nil, "Passed").Name, "",
		}
	case domain.ImportMaintenance:
		return []string{
			company.Name, building.Name, unit.Name, pick(domain.LookupMechanic, nil, "Mechanic name").Name,
			pick(domain.LookupMaintenanceCategory, nil, "Preventive").Name, date,
			"Lubricated guide rails and checked door operator", "",
		}
	case domain.ImportUnits:
		return []string{
			company.Name, building.Name, "Elevator 2", pick(domain.LookupEquipmentType, nil, "Passenger Elevator").Name,
			pick(domain.LookupBrand, nil, "Brand name").Name, "1000", "",
		}
	}
	return make([]string, len(layout.Headers))
}

func renderTemplate(layout Layout, example []string, format string) (TemplateFile, error) {
	base := fmt.Sprintf("%s-import-template", layout.Kind)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll([][]string{layout.Headers, example}); err != nil {
			return TemplateFile{}, fmt.Errorf("failed to write csv template: %w", err)
		}
		return TemplateFile{FileName: base + ".csv", ContentType: "text/csv; charset=utf-8", Body: buf.Bytes()}, nil

	case FormatXLSX:
		f := excelize.NewFile()
		defer func() { _ = f.Close() }()

		sheet := f.GetSheetName(0)
		for r, values := range [][]string{layout.Headers, example} {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return TemplateFile{}, err
			}
			row := make([]any, len(values))
			for i, v := range values {
				row[i] = v
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return TemplateFile{}, fmt.Errorf("failed to write xlsx template: %w", err)
			}
		}
		buf, err := f.WriteToBuffer()
		if err != nil {
			return TemplateFile{}, fmt.Errorf("failed to render xlsx template: %w", err)
		}
		return TemplateFile{
			FileName:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        buf.Bytes(),
		}, nil

	default:
		return TemplateFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

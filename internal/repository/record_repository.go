package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/liftdesk/internal/db"
	"github.com/rpattn/liftdesk/internal/domain"

	"github.com/google/uuid"
)

type recordRepository struct {
	conn *db.Connection
}

// NewRecordRepository wires a record repository backed by pgx.
func NewRecordRepository(conn *db.Connection) RecordRepository {
	return &recordRepository{conn: conn}
}

func (r *recordRepository) CreateJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`INSERT INTO jobs (id, tenant_id, code, title, management_company_id, building_id, unit_id, mechanic_id,
		                   scheduled_date, start_time, end_time, priority, job_type, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING created_at`,
		job.ID, job.TenantID, job.Code, job.Title, job.ManagementCompanyID, job.BuildingID, job.UnitID, job.MechanicID,
		job.ScheduledDate, job.StartTime, job.EndTime, string(job.Priority), string(job.JobType), job.Notes,
	).Scan(&job.CreatedAt)
	if err != nil {
		return domain.Job{}, fmt.Errorf("failed to create job %s: %w", job.Code, err)
	}
	return job, nil
}

func (r *recordRepository) CreateEmergencyCall(ctx context.Context, call domain.EmergencyCall) (domain.EmergencyCall, error) {
	if call.ID == uuid.Nil {
		call.ID = uuid.New()
	}
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`INSERT INTO emergency_calls (id, tenant_id, code, management_company_id, building_id, unit_id, mechanic_id,
		                              status_id, call_date, call_time, priority, description, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING created_at`,
		call.ID, call.TenantID, call.Code, call.ManagementCompanyID, call.BuildingID, call.UnitID, call.MechanicID,
		call.StatusID, call.CallDate, call.CallTime, string(call.Priority), call.Description, call.Notes,
	).Scan(&call.CreatedAt)
	if err != nil {
		return domain.EmergencyCall{}, fmt.Errorf("failed to create emergency call %s: %w", call.Code, err)
	}
	return call, nil
}

func (r *recordRepository) CreateInspection(ctx context.Context, inspection domain.Inspection) (domain.Inspection, error) {
	if inspection.ID == uuid.Nil {
		inspection.ID = uuid.New()
	}
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`INSERT INTO inspections (id, tenant_id, code, management_company_id, building_id, unit_id, inspector_id,
		                          status_id, result_id, inspection_date, inspection_type, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		inspection.ID, inspection.TenantID, inspection.Code, inspection.ManagementCompanyID, inspection.BuildingID,
		inspection.UnitID, inspection.InspectorID, inspection.StatusID, inspection.ResultID, inspection.InspectionDate,
		string(inspection.InspectionType), inspection.Notes,
	).Scan(&inspection.CreatedAt)
	if err != nil {
		return domain.Inspection{}, fmt.Errorf("failed to create inspection %s: %w", inspection.Code, err)
	}
	return inspection, nil
}

func (r *recordRepository) CreateMaintenanceRecord(ctx context.Context, record domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`INSERT INTO maintenance_records (id, tenant_id, code, management_company_id, building_id, unit_id, mechanic_id,
		                                  category_id, maintenance_date, description, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		record.ID, record.TenantID, record.Code, record.ManagementCompanyID, record.BuildingID, record.UnitID,
		record.MechanicID, record.CategoryID, record.MaintenanceDate, record.Description, record.Notes,
	).Scan(&record.CreatedAt)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("failed to create maintenance record %s: %w", record.Code, err)
	}
	return record, nil
}

func (r *recordRepository) CreateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`INSERT INTO units (id, tenant_id, building_id, name, equipment_type_id, brand_id, capacity, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		unit.ID, unit.TenantID, unit.BuildingID, unit.Name, unit.EquipmentTypeID, unit.BrandID, unit.Capacity, unit.Notes,
	).Scan(&unit.CreatedAt)
	if err != nil {
		return domain.Unit{}, fmt.Errorf("failed to create unit %s: %w", unit.Name, err)
	}
	return unit, nil
}

func (r *recordRepository) Count(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind) (int64, error) {
	table := kind.Table()
	if table == "" {
		return 0, fmt.Errorf("unknown import kind %q", kind)
	}
	var count int64
	if err := r.conn.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE tenant_id = $1`, table), tenantID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return count, nil
}

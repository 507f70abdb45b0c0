package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/liftdesk/internal/domain"
	"github.com/rpattn/liftdesk/internal/repository"
)

const dateLayout = "2006-01-02"

type tenantRepo struct{ s *Store }

func (r *tenantRepo) Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	now := time.Now().UTC()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now
	_, err := r.s.conn(ctx).ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		tenant.ID.String(), tenant.Name, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}
	return tenant, nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE id = ?`, id.String(),
	).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tenant{}, fmt.Errorf("tenant %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM tenants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []domain.Tenant{}
	for rows.Next() {
		var tenant domain.Tenant
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

type lookupRepo struct{ s *Store }

func (r *lookupRepo) Create(ctx context.Context, lookup domain.Lookup) (domain.Lookup, error) {
	if lookup.ID == uuid.Nil {
		lookup.ID = uuid.New()
	}
	if err := lookup.Validate(); err != nil {
		return domain.Lookup{}, err
	}

	var err error
	if parent := lookup.Kind.ParentColumn(); parent != "" {
		_, err = r.s.conn(ctx).ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, tenant_id, name, %s) VALUES (?, ?, ?, ?)`, lookup.Kind.Table(), parent),
			lookup.ID.String(), lookup.TenantID.String(), lookup.Name, lookup.ParentID.String(),
		)
	} else {
		_, err = r.s.conn(ctx).ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, tenant_id, name) VALUES (?, ?, ?)`, lookup.Kind.Table()),
			lookup.ID.String(), lookup.TenantID.String(), lookup.Name,
		)
	}
	if err != nil {
		return domain.Lookup{}, fmt.Errorf("failed to create %s: %w", lookup.Kind, err)
	}
	return lookup, nil
}

func (r *lookupRepo) ListByKinds(ctx context.Context, tenantID uuid.UUID, kinds []domain.LookupKind) (map[domain.LookupKind][]domain.Lookup, error) {
	result := make(map[domain.LookupKind][]domain.Lookup, len(kinds))
	if len(kinds) == 0 {
		return result, nil
	}

	query, err := repository.BuildLookupUnion(kinds, "?1")
	if err != nil {
		return nil, err
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, query, tenantID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			lookup   domain.Lookup
			kind     string
			parentID *uuid.UUID
		)
		if err := rows.Scan(&kind, &lookup.ID, &lookup.Name, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		lookup.Kind = domain.LookupKind(kind)
		lookup.TenantID = tenantID
		lookup.ParentID = parentID
		result[lookup.Kind] = append(result[lookup.Kind], lookup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lookups: %w", err)
	}
	return result, nil
}

type sequenceRepo struct{ s *Store }

func (r *sequenceRepo) Reserve(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain, count int64) (int64, error) {
	if count < 1 {
		return 0, fmt.Errorf("reserve count must be positive, got %d", count)
	}
	var first int64
	err := r.s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO code_sequences (tenant_id, domain, next_value) VALUES (?1, ?2, ?3 + 1)
		 ON CONFLICT (tenant_id, domain) DO UPDATE SET next_value = next_value + ?3
		 RETURNING next_value - ?3`,
		tenantID.String(), string(codeDomain), count,
	).Scan(&first)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve %s sequence: %w", codeDomain, err)
	}
	return first, nil
}

func (r *sequenceRepo) Peek(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain) (int64, error) {
	var next int64
	err := r.s.conn(ctx).QueryRowContext(ctx,
		`SELECT next_value FROM code_sequences WHERE tenant_id = ? AND domain = ?`,
		tenantID.String(), string(codeDomain),
	).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s sequence: %w", codeDomain, err)
	}
	return next, nil
}

type recordRepo struct{ s *Store }

func (r *recordRepo) CreateJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.CreatedAt = time.Now().UTC()
	_, err := r.s.conn(ctx).ExecContext(ctx,
		`INSERT INTO jobs (id, tenant_id, code, title, management_company_id, building_id, unit_id, mechanic_id,
		                   scheduled_date, start_time, end_time, priority, job_type, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID.String(), job.TenantID.String(), job.Code, job.Title, job.ManagementCompanyID.String(),
		job.BuildingID.String(), nullableID(job.UnitID), nullableID(job.MechanicID),
		job.ScheduledDate.Format(dateLayout), job.StartTime, job.EndTime, string(job.Priority), string(job.JobType),
		job.Notes, job.CreatedAt,
	)
	if err != nil {
		return domain.Job{}, fmt.Errorf("failed to create job %s: %w", job.Code, err)
	}
	return job, nil
}

func (r *recordRepo) CreateEmergencyCall(ctx context.Context, call domain.EmergencyCall) (domain.EmergencyCall, error) {
	if call.ID == uuid.Nil {
		call.ID = uuid.New()
	}
	call.CreatedAt = time.Now().UTC()
	_, err := r.s.conn(ctx).ExecContext(ctx,
		`INSERT INTO emergency_calls (id, tenant_id, code, management_company_id, building_id, unit_id, mechanic_id,
		                              status_id, call_date, call_time, priority, description, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		call.ID.String(), call.TenantID.String(), call.Code, call.ManagementCompanyID.String(),
		call.BuildingID.String(), call.UnitID.String(), nullableID(call.MechanicID), nullableID(call.StatusID),
		call.CallDate.Format(dateLayout), call.CallTime, string(call.Priority), call.Description, call.Notes,
		call.CreatedAt,
	)
	if err != nil {
		return domain.EmergencyCall{}, fmt.Errorf("failed to create emergency call %s: %w", call.Code, err)
	}
	return call, nil
}

func (r *recordRepo) CreateInspection(ctx context.Context, inspection domain.Inspection) (domain.Inspection, error) {
	if inspection.ID == uuid.Nil {
		inspection.ID = uuid.New()
	}
	inspection.CreatedAt = time.Now().UTC()
	_, err := r.s.conn(ctx).ExecContext(ctx,
		`INSERT INTO inspections (id, tenant_id, code, management_company_id, building_id, unit_id, inspector_id,
		                          status_id, result_id, inspection_date, inspection_type, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inspection.ID.String(), inspection.TenantID.String(), inspection.Code,
		inspection.ManagementCompanyID.String(), inspection.BuildingID.String(), inspection.UnitID.String(),
		nullableID(inspection.InspectorID), nullableID(inspection.StatusID), nullableID(inspection.ResultID),
		inspection.InspectionDate.Format(dateLayout), string(inspection.InspectionType), inspection.Notes,
		inspection.CreatedAt,
	)
	if err != nil {
		return domain.Inspection{}, fmt.Errorf("failed to create inspection %s: %w", inspection.Code, err)
	}
	return inspection, nil
}

func (r *recordRepo) CreateMaintenanceRecord(ctx context.Context, record domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now().UTC()
	_, err := r.s.conn(ctx).ExecContext(ctx,
		`INSERT INTO maintenance_records (id, tenant_id, code, management_company_id, building_id, unit_id,
		                                  mechanic_id, category_id, maintenance_date, description, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(), record.TenantID.String(), record.Code, record.ManagementCompanyID.String(),
		record.BuildingID.String(), record.UnitID.String(), nullableID(record.MechanicID),
		nullableID(record.CategoryID), record.MaintenanceDate.Format(dateLayout), record.Description, record.Notes,
		record.CreatedAt,
	)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("failed to create maintenance record %s: %w", record.Code, err)
	}
	return record, nil
}

func (r *recordRepo) CreateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	unit.CreatedAt = time.Now().UTC()
	var capacity any
	if unit.Capacity.Valid {
		capacity = unit.Capacity.Decimal.String()
	}
	_, err := r.s.conn(ctx).ExecContext(ctx,
		`INSERT INTO units (id, tenant_id, building_id, name, equipment_type_id, brand_id, capacity, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		unit.ID.String(), unit.TenantID.String(), unit.BuildingID.String(), unit.Name,
		nullableID(unit.EquipmentTypeID), nullableID(unit.BrandID), capacity, unit.Notes, unit.CreatedAt,
	)
	if err != nil {
		return domain.Unit{}, fmt.Errorf("failed to create unit %s: %w", unit.Name, err)
	}
	return unit, nil
}

func (r *recordRepo) Count(ctx context.Context, tenantID uuid.UUID, kind domain.ImportKind) (int64, error) {
	table := kind.Table()
	if table == "" {
		return 0, fmt.Errorf("unknown import kind %q", kind)
	}
	var count int64
	if err := r.s.conn(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE tenant_id = ?`, table), tenantID.String(),
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return count, nil
}

// Jobs lists the tenant's jobs ordered by code.
func (s *Store) Jobs(ctx context.Context, tenantID uuid.UUID) ([]domain.Job, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, code, title, management_company_id, building_id, unit_id, mechanic_id, scheduled_date,
		        start_time, end_time, priority, job_type, notes
		 FROM jobs WHERE tenant_id = ? ORDER BY code`, tenantID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		var (
			job       domain.Job
			scheduled string
			priority  string
			jobType   string
		)
		if err := rows.Scan(&job.ID, &job.Code, &job.Title, &job.ManagementCompanyID, &job.BuildingID, &job.UnitID,
			&job.MechanicID, &scheduled, &job.StartTime, &job.EndTime, &priority, &jobType, &job.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		job.TenantID = tenantID
		job.Priority = domain.Priority(priority)
		job.JobType = domain.JobType(jobType)
		if job.ScheduledDate, err = time.Parse(dateLayout, scheduled); err != nil {
			return nil, fmt.Errorf("failed to parse scheduled date %q: %w", scheduled, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type importRunRepo struct{ s *Store }

// Record bypasses any transaction in ctx, matching the PostgreSQL repository.
func (r *importRunRepo) Record(ctx context.Context, run domain.ImportRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, tenant_id, kind, file_name, actor_id, imported, skipped, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.TenantID.String(), string(run.Kind), run.FileName, run.ActorID, run.Imported,
		run.Skipped, run.ErrorMessage, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}
	return nil
}

func (r *importRunRepo) List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.s.conn(ctx).QueryContext(ctx,
		`SELECT id, tenant_id, kind, file_name, actor_id, imported, skipped, error_message, created_at
		 FROM import_runs WHERE tenant_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		tenantID.String(), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.ImportRun{}
	for rows.Next() {
		var (
			run  domain.ImportRun
			kind string
		)
		if err := rows.Scan(&run.ID, &run.TenantID, &kind, &run.FileName, &run.ActorID, &run.Imported,
			&run.Skipped, &run.ErrorMessage, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		run.Kind = domain.ImportKind(kind)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

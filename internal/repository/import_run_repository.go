package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/liftdesk/internal/db"
	"github.com/rpattn/liftdesk/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type importRunRepository struct {
	conn *db.Connection
}

// NewImportRunRepository wires a repository backed by pgxpool.
func NewImportRunRepository(conn *db.Connection) ImportRunRepository {
	return &importRunRepository{conn: conn}
}

// Record always writes through the pool so that a failed import transaction
// does not take its own audit row down with it.
func (r *importRunRepository) Record(ctx context.Context, run domain.ImportRun) error {
	if r.conn == nil || r.conn.Pool == nil {
		return fmt.Errorf("import run repository not initialized")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	_, err := r.conn.Pool.Exec(
		ctx,
		`INSERT INTO import_runs (id, tenant_id, kind, file_name, actor_id, imported, skipped, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID,
		run.TenantID,
		string(run.Kind),
		run.FileName,
		run.ActorID,
		run.Imported,
		run.Skipped,
		run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}

	return nil
}

func (r *importRunRepository) List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]domain.ImportRun, error) {
	if r.conn == nil || r.conn.Pool == nil {
		return nil, fmt.Errorf("import run repository not initialized")
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.Querier(ctx).Query(
		ctx,
		`SELECT id, tenant_id, kind, file_name, actor_id, imported, skipped, error_message, created_at
		 FROM import_runs
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		tenantID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.ImportRun{}
	for rows.Next() {
		var (
			run       domain.ImportRun
			kind      string
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&run.ID,
			&run.TenantID,
			&kind,
			&run.FileName,
			&run.ActorID,
			&run.Imported,
			&run.Skipped,
			&run.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", scanErr)
		}

		run.Kind = domain.ImportKind(kind)
		if createdAt.Valid {
			run.CreatedAt = createdAt.Time
		}

		runs = append(runs, run)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate import runs: %w", rowsErr)
	}

	return runs, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpattn/liftdesk/internal/db"
	"github.com/rpattn/liftdesk/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// The whole read-compute-write happens inside one statement: the row lock
// taken by ON CONFLICT DO UPDATE serializes concurrent reservers until the
// surrounding transaction ends.
const reserveSequenceSQL = `
INSERT INTO code_sequences (tenant_id, domain, next_value)
VALUES ($1, $2, $3::bigint + 1)
ON CONFLICT (tenant_id, domain)
DO UPDATE SET next_value = code_sequences.next_value + $3::bigint, updated_at = now()
RETURNING next_value - $3::bigint`

type sequenceRepository struct {
	conn *db.Connection
}

// NewSequenceRepository wires a sequence repository backed by pgx.
func NewSequenceRepository(conn *db.Connection) SequenceRepository {
	return &sequenceRepository{conn: conn}
}

func (r *sequenceRepository) Reserve(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain, count int64) (int64, error) {
	if count < 1 {
		return 0, fmt.Errorf("reserve count must be positive, got %d", count)
	}
	var first int64
	if err := r.conn.Querier(ctx).QueryRow(ctx, reserveSequenceSQL, tenantID, string(codeDomain), count).Scan(&first); err != nil {
		return 0, fmt.Errorf("failed to reserve %s sequence: %w", codeDomain, err)
	}
	return first, nil
}

func (r *sequenceRepository) Peek(ctx context.Context, tenantID uuid.UUID, codeDomain domain.CodeDomain) (int64, error) {
	var next int64
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`SELECT next_value FROM code_sequences WHERE tenant_id = $1 AND domain = $2`,
		tenantID, string(codeDomain),
	).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s sequence: %w", codeDomain, err)
	}
	return next, nil
}

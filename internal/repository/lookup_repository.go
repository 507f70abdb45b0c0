package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpattn/liftdesk/internal/db"
	"github.com/rpattn/liftdesk/internal/domain"

	"github.com/google/uuid"
)

type lookupRepository struct {
	conn *db.Connection
}

// NewLookupRepository wires a lookup repository backed by pgx.
func NewLookupRepository(conn *db.Connection) LookupRepository {
	return &lookupRepository{conn: conn}
}

// Create inserts a lookup row into the table of its kind.
func (r *lookupRepository) Create(ctx context.Context, lookup domain.Lookup) (domain.Lookup, error) {
	if lookup.ID == uuid.Nil {
		lookup.ID = uuid.New()
	}
	if err := lookup.Validate(); err != nil {
		return domain.Lookup{}, err
	}

	var (
		query string
		args  = []any{lookup.ID, lookup.TenantID, lookup.Name}
	)
	if parent := lookup.Kind.ParentColumn(); parent != "" {
		query = fmt.Sprintf(`INSERT INTO %s (id, tenant_id, name, %s) VALUES ($1, $2, $3, $4)`, lookup.Kind.Table(), parent)
		args = append(args, lookup.ParentID)
	} else {
		query = fmt.Sprintf(`INSERT INTO %s (id, tenant_id, name) VALUES ($1, $2, $3)`, lookup.Kind.Table())
	}

	if _, err := r.conn.Querier(ctx).Exec(ctx, query, args...); err != nil {
		return domain.Lookup{}, fmt.Errorf("failed to create %s: %w", lookup.Kind, err)
	}
	return lookup, nil
}

// ListByKinds loads every requested lookup table for the tenant in a single round trip.
func (r *lookupRepository) ListByKinds(ctx context.Context, tenantID uuid.UUID, kinds []domain.LookupKind) (map[domain.LookupKind][]domain.Lookup, error) {
	result := make(map[domain.LookupKind][]domain.Lookup, len(kinds))
	if len(kinds) == 0 {
		return result, nil
	}

	query, err := BuildLookupUnion(kinds, "$1")
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Querier(ctx).Query(ctx, query, tenantID)
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

// BuildLookupUnion renders one SELECT per kind joined with UNION ALL, every
// branch filtering on tenantParam. Table and column names come from the
// closed LookupKind mapping, never from input.
func BuildLookupUnion(kinds []domain.LookupKind, tenantParam string) (string, error) {
	seen := make(map[domain.LookupKind]bool, len(kinds))
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if seen[kind] {
			continue
		}
		seen[kind] = true
		if !kind.Valid() {
			return "", fmt.Errorf("unknown lookup kind %q", kind)
		}
		parent := "CAST(NULL AS uuid)"
		if col := kind.ParentColumn(); col != "" {
			parent = col
		}
		parts = append(parts, fmt.Sprintf(
			`SELECT '%s' AS kind, id, name, %s AS parent_id FROM %s WHERE tenant_id = %s`,
			kind, parent, kind.Table(), tenantParam,
		))
	}
	return strings.Join(parts, "\nUNION ALL\n") + "\nORDER BY kind, name", nil
}

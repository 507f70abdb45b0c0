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

// tenantRepository implements TenantRepository interface
type tenantRepository struct {
	conn *db.Connection
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(conn *db.Connection) TenantRepository {
	return &tenantRepository{conn: conn}
}

// Create creates a new tenant
func (r *tenantRepository) Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`INSERT INTO tenants (id, name) VALUES ($1, $2) RETURNING created_at, updated_at`,
		tenant.ID, tenant.Name,
	).Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}
	return tenant, nil
}

// GetByID retrieves a tenant by ID
func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE id = $1`, id,
	).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Tenant{}, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// List retrieves all tenants
func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants ORDER BY name`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}
	return tenants, nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents a service company workspace. Every record in the system belongs to one.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTenant creates a new tenant with immutable pattern
func NewTenant(name string) Tenant {
	now := time.Now()
	return Tenant{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithName returns a new tenant with updated name
func (t Tenant) WithName(name string) Tenant {
	return Tenant{
		ID:        t.ID,
		Name:      name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: time.Now(),
	}
}

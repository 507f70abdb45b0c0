package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied is returned when the acting actor may not access tenant data.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTenantRequired is returned when no tenant id was given.
	ErrTenantRequired = errors.New("tenant id is required")
)

type contextKey string

const actorKey contextKey = "actor"

// Role is the actor's role inside a tenant workspace.
type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleViewer     Role = "VIEWER"
	RoleCustomer   Role = "CUSTOMER"
)

// ParseRole normalizes a role name. Unknown names yield an empty role, which has no rights.
func ParseRole(raw string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleOwner, RoleAdmin, RoleDispatcher, RoleViewer, RoleCustomer:
		return r
	default:
		return ""
	}
}

// CanEdit reports whether the role may mutate tenant data.
func (r Role) CanEdit() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleDispatcher:
		return true
	default:
		return false
	}
}

// CanRead reports whether the role may see tenant data such as import history.
func (r Role) CanRead() bool {
	return r.CanEdit() || r == RoleViewer
}

// Actor is the caller as asserted by the gateway in front of the service.
type Actor struct {
	ID       string
	TenantID uuid.UUID
	Role     Role
}

// ContextWithActor returns a new context that carries the acting actor.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the acting actor from the context, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey).(Actor)
	if !ok || actor.TenantID == uuid.Nil {
		return Actor{}, false
	}
	return actor, true
}

// EnforceTenantScope ensures the provided tenant matches the actor's tenant when an actor is present.
func EnforceTenantScope(ctx context.Context, tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrTenantRequired
	}
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil
	}
	if actor.TenantID != tenantID {
		return fmt.Errorf("tenantId %s does not match authenticated scope: %w", tenantID, ErrPermissionDenied)
	}
	return nil
}

// PermissionChecker decides whether the acting actor may read or mutate a tenant's data.
type PermissionChecker interface {
	CanRead(ctx context.Context, tenantID uuid.UUID) error
	CanEdit(ctx context.Context, tenantID uuid.UUID) error
}

// RoleChecker grants read rights to staff actors of the same tenant and edit
// rights to OWNER, ADMIN and DISPATCHER. Anonymous callers get neither.
type RoleChecker struct{}

// CanRead returns nil when the actor in ctx may read tenantID, ErrPermissionDenied otherwise.
func (RoleChecker) CanRead(ctx context.Context, tenantID uuid.UUID) error {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return fmt.Errorf("no actor in request: %w", ErrPermissionDenied)
	}
	if err := EnforceTenantScope(ctx, tenantID); err != nil {
		return err
	}
	if !actor.Role.CanRead() {
		return fmt.Errorf("role %q cannot read tenant data: %w", actor.Role, ErrPermissionDenied)
	}
	return nil
}

// CanEdit returns nil when the actor in ctx may edit tenantID, ErrPermissionDenied otherwise.
func (RoleChecker) CanEdit(ctx context.Context, tenantID uuid.UUID) error {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return fmt.Errorf("no actor in request: %w", ErrPermissionDenied)
	}
	if err := EnforceTenantScope(ctx, tenantID); err != nil {
		return err
	}
	if !actor.Role.CanEdit() {
		return fmt.Errorf("role %q cannot edit tenant data: %w", actor.Role, ErrPermissionDenied)
	}
	return nil
}

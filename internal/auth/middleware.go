package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Gateway headers describing the caller.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
	HeaderTenantID  = "X-Tenant-ID"
)

// HeaderMiddleware reads the actor asserted by the gateway and stores it in
// the request context. Requests without a valid tenant header pass through
// anonymously and are refused by RoleChecker.
func HeaderMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(strings.TrimSpace(r.Header.Get(HeaderTenantID)))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		actor := Actor{
			ID:       strings.TrimSpace(r.Header.Get(HeaderActorID)),
			TenantID: tenantID,
			Role:     ParseRole(r.Header.Get(HeaderActorRole)),
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

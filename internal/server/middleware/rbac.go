package middleware

import (
	"net/http"

	"github.com/gosuda/ghostmode/internal/domain"
)

// RequireRole returns middleware that checks the authenticated admin holds
// one of the allowed roles. It must be chained after Auth.
//
// Returns 401 when no role is in context and 403 when the role is not allowed.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			if _, match := allowed[role]; !match {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"insufficient permissions"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyAdmin admits every console role.
func RequireAnyAdmin() func(http.Handler) http.Handler {
	return RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleModerator)
}

// RequireSuperAdmin admits only super admins.
func RequireSuperAdmin() func(http.Handler) http.Handler {
	return RequireRole(domain.RoleSuperAdmin)
}

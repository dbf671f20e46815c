package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/server/middleware"
)

func setRole(r *http.Request, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyAdminRole, role)
	return r.WithContext(ctx)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mw         func(http.Handler) http.Handler
		role       string
		wantStatus int
	}{
		{"super admin passes super-admin gate", middleware.RequireSuperAdmin(), domain.RoleSuperAdmin, http.StatusOK},
		{"admin blocked by super-admin gate", middleware.RequireSuperAdmin(), domain.RoleAdmin, http.StatusForbidden},
		{"moderator blocked by super-admin gate", middleware.RequireSuperAdmin(), domain.RoleModerator, http.StatusForbidden},
		{"moderator passes any-admin gate", middleware.RequireAnyAdmin(), domain.RoleModerator, http.StatusOK},
		{"admin passes any-admin gate", middleware.RequireAnyAdmin(), domain.RoleAdmin, http.StatusOK},
		{"unknown role blocked", middleware.RequireAnyAdmin(), "member", http.StatusForbidden},
		{"explicit multi-role list", middleware.RequireRole(domain.RoleAdmin, domain.RoleModerator), domain.RoleModerator, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := tt.mw(okHandler)
			req := setRole(httptest.NewRequest(http.MethodGet, "/", http.NoBody), tt.role)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireRole_NoRoleInContext_Returns401(t *testing.T) {
	t.Parallel()

	handler := middleware.RequireAnyAdmin()(okHandler)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")
}

func TestRequireRole_EmptyRole_Returns401(t *testing.T) {
	t.Parallel()

	handler := middleware.RequireAnyAdmin()(okHandler)
	req := setRole(httptest.NewRequest(http.MethodGet, "/", http.NoBody), "")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

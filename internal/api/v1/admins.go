package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/ghostmode/internal/auth"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/server/middleware"
)

type CreateAdminInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Admin email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: credential DTO
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Role     string `json:"role,omitempty" enum:"super_admin,admin,moderator" default:"moderator" doc:"Console role"`
	}
}

type CreateAdminOutput struct {
	Body *domain.AdminUser
}

type ListAdminsOutput struct {
	Body []*domain.AdminUser
}

type GhostModeInput struct {
	Body struct {
		Enabled bool `json:"enabled" doc:"Whether ghost mode is on"`
	}
}

type GhostModeOutput struct {
	Body *domain.AdminUser
}

func RegisterAdminRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-admin",
		Method:      http.MethodPost,
		Path:        "/admins",
		Summary:     "Provision an admin account",
		Tags:        []string{"Admins"},
	}, func(ctx context.Context, input *CreateAdminInput) (*CreateAdminOutput, error) {
		role, ok := middleware.RoleFromContext(ctx)
		if !ok || role != domain.RoleSuperAdmin {
			return nil, huma.Error403Forbidden("super admin role required")
		}

		admin, err := authSvc.Register(ctx, input.Body.Email, input.Body.Password, input.Body.Name, input.Body.Role)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrAdminAlreadyExists):
				return nil, huma.Error409Conflict("admin already exists")
			case errors.Is(err, auth.ErrInvalidRole):
				return nil, huma.Error422UnprocessableEntity("invalid role")
			}
			return nil, huma.Error500InternalServerError("failed to create admin", err)
		}

		return &CreateAdminOutput{Body: admin}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-admins",
		Method:      http.MethodGet,
		Path:        "/admins",
		Summary:     "List admin accounts",
		Tags:        []string{"Admins"},
	}, func(ctx context.Context, _ *struct{}) (*ListAdminsOutput, error) {
		role, ok := middleware.RoleFromContext(ctx)
		if !ok || role != domain.RoleSuperAdmin {
			return nil, huma.Error403Forbidden("super admin role required")
		}

		admins, err := authSvc.ListAdmins(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list admins", err)
		}
		if admins == nil {
			admins = []*domain.AdminUser{}
		}

		return &ListAdminsOutput{Body: admins}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-ghost-mode",
		Method:      http.MethodPut,
		Path:        "/ghost-mode",
		Summary:     "Toggle ghost mode for the signed-in admin",
		Tags:        []string{"Admins"},
	}, func(ctx context.Context, input *GhostModeInput) (*GhostModeOutput, error) {
		adminID, ok := middleware.AdminIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing admin context")
		}

		admin, err := authSvc.SetGhostMode(ctx, adminID, input.Body.Enabled)
		if err != nil {
			if errors.Is(err, auth.ErrAdminNotFound) {
				return nil, huma.Error404NotFound("admin not found")
			}
			return nil, huma.Error500InternalServerError("failed to toggle ghost mode", err)
		}

		return &GhostModeOutput{Body: admin}, nil
	})
}

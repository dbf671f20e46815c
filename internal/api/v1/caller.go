package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/ghostmode/internal/auth"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/server/middleware"
)

// currentAdmin loads the account behind the request's access token. Ghost
// mode and role are read from the account, not the token, so a toggle takes
// effect without re-login.
func currentAdmin(ctx context.Context, authSvc AuthService) (*domain.AdminUser, error) {
	adminID, ok := middleware.AdminIDFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("missing admin context")
	}

	admin, err := authSvc.GetAdmin(ctx, adminID)
	if err != nil {
		if errors.Is(err, auth.ErrAdminNotFound) {
			return nil, huma.Error401Unauthorized("admin account no longer exists")
		}
		return nil, huma.Error500InternalServerError("failed to load admin", err)
	}

	return admin, nil
}

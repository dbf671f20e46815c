package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ContextKeyAdminID   contextKey = "admin_id"
	ContextKeyAdminRole contextKey = "role"
)

func AdminIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyAdminID).(uuid.UUID)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyAdminRole).(string)
	return v, ok
}

// WithAdmin returns ctx carrying the authenticated admin.
func WithAdmin(ctx context.Context, id uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyAdminID, id)
	return context.WithValue(ctx, ContextKeyAdminRole, role)
}

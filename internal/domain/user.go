package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Admin roles, ordered by privilege.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
)

// AdminUser is an operator account of the moderation console.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // argon2id
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	GhostMode    bool      `json:"ghost_mode"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AdminUserRepository interface {
	Create(ctx context.Context, u *AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	SetGhostMode(ctx context.Context, id uuid.UUID, enabled bool) error
	List(ctx context.Context) ([]*AdminUser, error)
}

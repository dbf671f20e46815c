package domain

import (
	"context"
	"time"
)

// Profile is the platform account state of a content owner.
type Profile struct {
	ID          string
	Username    string
	AvatarURL   *string
	IsSuspended bool
	SuspendedAt *time.Time
	IsPaused    bool
	PausedAt    *time.Time
	PauseEndAt  *time.Time
	PauseReason string
}

type ProfileRepository interface {
	// GetByIDs returns the profiles that exist; missing ids are simply absent.
	GetByIDs(ctx context.Context, ids []string) (map[string]*Profile, error)
	Suspend(ctx context.Context, id string, at time.Time) error
	Unsuspend(ctx context.Context, id string) error
	Pause(ctx context.Context, id string, at, until time.Time, reason string) error
	Unpause(ctx context.Context, id string) error
}

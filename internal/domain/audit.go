package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an append-only record of an admin action.
type AuditEntry struct {
	ID            uuid.UUID      `json:"id"`
	ActorID       uuid.UUID      `json:"actor_id"`
	ActorName     string         `json:"actor_name"`
	Action        string         `json:"action"`
	TargetID      string         `json:"target_id"`
	TargetType    string         `json:"target_type"` // a TargetKind or SessionType
	OwnerUserID   string         `json:"owner_user_id"`
	OwnerUsername string         `json:"owner_username"`
	Details       map[string]any `json:"details"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AuditRepository never updates or deletes existing entries.
type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]*AuditEntry, error)
	ListByTarget(ctx context.Context, targetID string) ([]*AuditEntry, error)
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SurveillanceState records what one admin is currently watching.
type SurveillanceState struct {
	IsWatching bool       `json:"is_watching"`
	Session    *Session   `json:"session"`
	StartedAt  *time.Time `json:"started_at"`
}

// SurveillanceStore holds SurveillanceState per admin. A missing entry reads as idle.
type SurveillanceStore interface {
	Get(ctx context.Context, adminID uuid.UUID) (SurveillanceState, error)
	Put(ctx context.Context, adminID uuid.UUID, state SurveillanceState) error
	Clear(ctx context.Context, adminID uuid.UUID) error
}

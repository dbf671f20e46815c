package moderation

import (
	"errors"
	"fmt"

	"github.com/gosuda/ghostmode/internal/domain"
)

// Request validation errors. They are returned before any mutation and are
// never audited.
var (
	ErrEditRejected     = errors.New("moderation: edit requires non-empty content")
	ErrOwnerUnresolved  = errors.New("moderation: target owner is unknown")
	ErrInvalidDuration  = errors.New("moderation: pause requires a positive duration in days")
	ErrNotRestorable    = errors.New("moderation: target is not banned, deleted or shadowbanned")
	ErrUnknownAction    = errors.New("moderation: unknown action")
	ErrMissingTarget    = errors.New("moderation: missing target")
	ErrAuditWriteFailed = errors.New("moderation: audit write failed")
)

// MutationError reports a failed mutation step of a dispatch.
type MutationError struct {
	Action     domain.Action
	TargetID   string
	TargetKind domain.TargetKind
	Step       string
	Err        error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("moderation: %s on %s %s failed at %s: %v", e.Action, e.TargetKind, e.TargetID, e.Step, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

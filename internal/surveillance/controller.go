// Package surveillance tracks which session each admin is watching in ghost
// mode and audits every start and stop.
package surveillance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/ghostmode/internal/domain"
)

var (
	ErrGhostModeDisabled = errors.New("surveillance: ghost mode is disabled")
	ErrNotSuperAdmin     = errors.New("surveillance: super admin role required")
)

// Stop reasons recorded on stop_surveillance entries.
const (
	ReasonManual  = "manual"
	ReasonSwitch  = "switch"
	ReasonSignOut = "sign_out"
)

// AuthorizationError is returned when a caller may not start a watch. It
// matches both its Reason and domain.ErrForbidden.
type AuthorizationError struct {
	AdminID uuid.UUID
	Reason  error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("surveillance: admin %s not authorized: %v", e.AdminID, e.Reason)
}

func (e *AuthorizationError) Unwrap() []error { return []error{e.Reason, domain.ErrForbidden} }

// Caller is the admin driving the controller.
type Caller struct {
	ID        uuid.UUID
	Name      string
	Role      string
	GhostMode bool
}

type Controller struct {
	store domain.SurveillanceStore
	audit domain.AuditRepository
	now   func() time.Time
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewController(store domain.SurveillanceStore, audit domain.AuditRepository) *Controller {
	return &Controller{store: store, audit: audit, now: time.Now}
}

// WithClock replaces the time source.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

func (c *Controller) lock(adminID uuid.UUID) func() {
	v, _ := c.locks.LoadOrStore(adminID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// State returns the caller's current watch. Idle admins read the zero state.
func (c *Controller) State(ctx context.Context, adminID uuid.UUID) (domain.SurveillanceState, error) {
	st, err := c.store.Get(ctx, adminID)
	if err != nil {
		return domain.SurveillanceState{}, fmt.Errorf("surveillance.Controller.State: %w", err)
	}
	return st, nil
}

// Start begins watching session. A watch already in progress is stopped first
// with reason "switch".
func (c *Controller) Start(ctx context.Context, caller Caller, session domain.Session) (domain.SurveillanceState, error) {
	if err := authorize(caller); err != nil {
		return domain.SurveillanceState{}, err
	}

	unlock := c.lock(caller.ID)
	defer unlock()

	cur, err := c.store.Get(ctx, caller.ID)
	if err != nil {
		return domain.SurveillanceState{}, fmt.Errorf("surveillance.Controller.Start: %w", err)
	}
	if cur.IsWatching {
		if err := c.stop(ctx, caller, cur, ReasonSwitch); err != nil {
			return domain.SurveillanceState{}, err
		}
	}

	startedAt := c.now()
	owner := session.Owner()
	entry := &domain.AuditEntry{
		ID:            uuid.New(),
		ActorID:       caller.ID,
		ActorName:     caller.Name,
		Action:        domain.AuditStartSurveillance,
		TargetID:      session.ID,
		TargetType:    string(session.Type),
		OwnerUserID:   owner.ID,
		OwnerUsername: owner.Username,
		Details:       map[string]any{"session_type": string(session.Type)},
		CreatedAt:     startedAt,
	}
	if err := c.audit.Record(ctx, entry); err != nil {
		return domain.SurveillanceState{}, fmt.Errorf("surveillance.Controller.Start: audit: %w", err)
	}

	next := domain.SurveillanceState{IsWatching: true, Session: &session, StartedAt: &startedAt}
	if err := c.store.Put(ctx, caller.ID, next); err != nil {
		return domain.SurveillanceState{}, fmt.Errorf("surveillance.Controller.Start: %w", err)
	}

	log.Info().Str("admin_id", caller.ID.String()).Str("session_id", session.ID).
		Str("session_type", string(session.Type)).Msg("surveillance: watch started")
	return next, nil
}

// Stop ends the caller's watch. Stopping while idle succeeds without an audit entry.
func (c *Controller) Stop(ctx context.Context, caller Caller) error {
	return c.stopWith(ctx, caller, ReasonManual)
}

// Teardown ends any watch when the admin signs out.
func (c *Controller) Teardown(ctx context.Context, caller Caller) error {
	return c.stopWith(ctx, caller, ReasonSignOut)
}

func (c *Controller) stopWith(ctx context.Context, caller Caller, reason string) error {
	unlock := c.lock(caller.ID)
	defer unlock()

	cur, err := c.store.Get(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("surveillance.Controller.Stop: %w", err)
	}
	if !cur.IsWatching {
		return nil
	}
	return c.stop(ctx, caller, cur, reason)
}

// stop audits and clears the current watch. Caller holds the admin lock.
func (c *Controller) stop(ctx context.Context, caller Caller, cur domain.SurveillanceState, reason string) error {
	stoppedAt := c.now()
	details := map[string]any{"reason": reason}
	if cur.StartedAt != nil {
		details["duration_seconds"] = int64(stoppedAt.Sub(*cur.StartedAt).Seconds())
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		ActorID:   caller.ID,
		ActorName: caller.Name,
		Action:    domain.AuditStopSurveillance,
		Details:   details,
		CreatedAt: stoppedAt,
	}
	if s := cur.Session; s != nil {
		owner := s.Owner()
		entry.TargetID = s.ID
		entry.TargetType = string(s.Type)
		entry.OwnerUserID = owner.ID
		entry.OwnerUsername = owner.Username
	}
	if err := c.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("surveillance.Controller.Stop: audit: %w", err)
	}

	if err := c.store.Clear(ctx, caller.ID); err != nil {
		return fmt.Errorf("surveillance.Controller.Stop: %w", err)
	}

	log.Info().Str("admin_id", caller.ID.String()).Str("session_id", entry.TargetID).
		Str("reason", reason).Msg("surveillance: watch stopped")
	return nil
}

func authorize(caller Caller) error {
	if !caller.GhostMode {
		return &AuthorizationError{AdminID: caller.ID, Reason: ErrGhostModeDisabled}
	}
	if caller.Role != domain.RoleSuperAdmin {
		return &AuthorizationError{AdminID: caller.ID, Reason: ErrNotSuperAdmin}
	}
	return nil
}

// Package moderation resolves an admin's moderation verb against a target into
// the data mutations it implies and records every attempt in the audit log.
package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/ghostmode/internal/domain"
)

// Stores groups the repositories the dispatch table mutates.
type Stores struct {
	Profiles      domain.ProfileRepository
	Media         domain.MediaContentRepository
	Ads           domain.DatingAdRepository
	Messages      domain.DirectMessageRepository
	Streams       domain.LiveStreamRepository
	Calls         domain.CallRepository
	Reports       domain.ReportRepository
	Notifications domain.NotificationRepository
	Audit         domain.AuditRepository
}

// Publisher delivers push signals for tables a dispatch touched.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Event describes a dispatch worth broadcasting to operators.
type Event struct {
	Action     domain.Action
	TargetID   string
	TargetKind domain.TargetKind
	Owner      domain.Owner
	ActorName  string
	Details    map[string]any
	Err        error
}

// Announcer broadcasts notable dispatches, such as bans and primary failures.
type Announcer interface {
	Announce(ctx context.Context, e Event) error
}

// Actor is the admin issuing a moderation action.
type Actor struct {
	ID   uuid.UUID
	Name string
}

type Request struct {
	Actor  Actor
	Target domain.Target
	Action domain.Action
	// Detail is the new content for edit and the free-form reason otherwise.
	Detail       string
	DurationDays int
}

// StepOutcome is the result of one mutation step.
type StepOutcome struct {
	Name     string `json:"name"`
	Primary  bool   `json:"primary"`
	Affected int64  `json:"affected"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Result struct {
	Action      domain.Action     `json:"action"`
	TargetID    string            `json:"target_id"`
	TargetKind  domain.TargetKind `json:"target_kind"`
	Owner       domain.Owner      `json:"owner"`
	Unsupported bool              `json:"unsupported"`
	Audited     bool              `json:"audited"`
	Steps       []StepOutcome     `json:"steps"`

	// CascadeErrors are failures of non-primary steps. They never fail the dispatch.
	CascadeErrors []error `json:"-"`
}

// plan carries one dispatch through its steps.
type plan struct {
	req     Request
	kind    domain.TargetKind
	owner   domain.Owner
	prior   domain.Visibility
	now     time.Time
	details map[string]any
	touched map[string]struct{}
}

func (p *plan) touch(table string) {
	if table != "" {
		p.touched[table] = struct{}{}
	}
}

type Option func(*Dispatcher)

// WithPublisher makes the dispatcher signal every table it touched.
func WithPublisher(pub Publisher, channel func(table string) string) Option {
	return func(d *Dispatcher) {
		d.publisher = pub
		d.channel = channel
	}
}

func WithAnnouncer(a Announcer) Option {
	return func(d *Dispatcher) { d.announcer = a }
}

// WithProfileInvalidation registers a hook called with the owner id after an
// action that changes account state.
func WithProfileInvalidation(forget func(ids ...string)) Option {
	return func(d *Dispatcher) { d.forget = forget }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

type Dispatcher struct {
	stores    Stores
	publisher Publisher
	channel   func(string) string
	announcer Announcer
	forget    func(ids ...string)
	now       func() time.Time
}

func NewDispatcher(stores Stores, opts ...Option) *Dispatcher {
	d := &Dispatcher{stores: stores, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch applies action to the request target. It runs to completion even
// if ctx is cancelled. The returned error is non-nil when validation rejects
// the request, the primary step fails (*MutationError), or the audit write
// fails. Cascade failures are logged and reported on the Result only.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	ctx = context.WithoutCancel(ctx)

	if req.Target == nil {
		return Result{Action: req.Action}, ErrMissingTarget
	}
	if !req.Action.Valid() {
		return Result{Action: req.Action}, fmt.Errorf("moderation.Dispatcher.Dispatch: %w: %q", ErrUnknownAction, req.Action)
	}

	kind := req.Target.TargetKind()
	owner := req.Target.Owner()
	res := Result{
		Action:     req.Action,
		TargetID:   req.Target.TargetID(),
		TargetKind: kind,
		Owner:      owner,
		Steps:      []StepOutcome{},
	}

	if req.Action == domain.ActionView {
		dispatchCount.WithLabelValues(string(req.Action), string(kind), "view").Inc()
		return res, nil
	}

	prior, _ := req.Target.PriorVisibility()
	if err := validate(req, owner, prior); err != nil {
		dispatchCount.WithLabelValues(string(req.Action), string(kind), "rejected").Inc()
		return res, err
	}

	p := &plan{
		req:     req,
		kind:    kind,
		owner:   owner,
		prior:   prior,
		now:     d.now(),
		details: baseDetails(req),
		touched: make(map[string]struct{}),
	}
	logger := log.With().
		Str("action", string(req.Action)).
		Str("target_id", res.TargetID).
		Str("target_kind", string(kind)).
		Str("owner_id", owner.ID).
		Logger()

	c, ok := dispatchTable[cellKey{req.Action, kind}]
	if !ok {
		res.Unsupported = true
		p.details["unsupported"] = true
		logger.Warn().Msg("moderation: action unsupported for target kind")
		if err := d.record(ctx, p); err != nil {
			return res, err
		}
		res.Audited = true
		dispatchCount.WithLabelValues(string(req.Action), string(kind), "unsupported").Inc()
		return res, nil
	}

	if req.Action == domain.ActionPause {
		until := p.now.Add(time.Duration(req.DurationDays) * 24 * time.Hour)
		p.details["pause_end_at"] = until.UTC().Format(time.RFC3339)
	}

	if c.auditFirst {
		if err := d.record(ctx, p); err != nil {
			dispatchCount.WithLabelValues(string(req.Action), string(kind), "audit_failed").Inc()
			return res, err
		}
		res.Audited = true
	}

	mutErr := d.run(ctx, c, p, &res, logger)

	if !c.auditFirst {
		if err := d.record(ctx, p); err != nil {
			dispatchCount.WithLabelValues(string(req.Action), string(kind), "audit_failed").Inc()
			return res, errors.Join(mutErr, err)
		}
		res.Audited = true
	}

	d.publish(ctx, p)
	if d.forget != nil && owner.Known() && touches(p, tableProfiles) {
		d.forget(owner.ID)
	}

	if mutErr != nil {
		dispatchCount.WithLabelValues(string(req.Action), string(kind), "failed").Inc()
		d.announce(ctx, p, mutErr)
		return res, mutErr
	}

	outcome := "ok"
	if len(res.CascadeErrors) > 0 {
		outcome = "partial"
	}
	dispatchCount.WithLabelValues(string(req.Action), string(kind), outcome).Inc()
	switch req.Action {
	case domain.ActionBan, domain.ActionPause, domain.ActionForceDelete:
		d.announce(ctx, p, nil)
	}
	return res, nil
}

// run executes the cell's steps in order. A failing primary step stops the
// run and is returned; failing cascades are recorded and skipped.
func (d *Dispatcher) run(ctx context.Context, c cell, p *plan, res *Result, logger zerolog.Logger) error {
	affected := make(map[string]int64)
	var cascadeMsgs []string

	for i, st := range c.steps {
		primary := i == 0
		outcome := StepOutcome{Name: st.name, Primary: primary}

		if st.when != nil && !st.when(p) {
			outcome.Skipped = true
			res.Steps = append(res.Steps, outcome)
			continue
		}

		n, err := st.run(ctx, d.stores, p)
		if err != nil {
			outcome.Error = err.Error()
			res.Steps = append(res.Steps, outcome)
			mErr := &MutationError{
				Action:     p.req.Action,
				TargetID:   res.TargetID,
				TargetKind: p.kind,
				Step:       st.name,
				Err:        err,
			}
			if primary {
				logger.Error().Err(err).Str("step", st.name).Msg("moderation: primary step failed")
				p.details["failed_step"] = st.name
				p.details["error"] = err.Error()
				return mErr
			}
			ev := logger.Warn()
			if isNotFound(err) {
				ev = logger.Info()
			}
			ev.Err(err).Str("step", st.name).Msg("moderation: cascade step failed")
			res.CascadeErrors = append(res.CascadeErrors, mErr)
			cascadeMsgs = append(cascadeMsgs, st.name+": "+err.Error())
			continue
		}

		p.touch(st.table)
		outcome.Affected = n
		res.Steps = append(res.Steps, outcome)
		if !primary {
			affected[st.name] = n
		}
	}

	if len(affected) > 0 {
		p.details["affected"] = affected
	}
	if len(cascadeMsgs) > 0 {
		p.details["cascade_errors"] = cascadeMsgs
	}
	return nil
}

func validate(req Request, owner domain.Owner, prior domain.Visibility) error {
	switch req.Action {
	case domain.ActionEdit:
		if strings.TrimSpace(req.Detail) == "" {
			return ErrEditRejected
		}
	case domain.ActionPause:
		if !owner.Known() {
			return ErrOwnerUnresolved
		}
		if req.DurationDays <= 0 {
			return ErrInvalidDuration
		}
	case domain.ActionBan, domain.ActionShadowban, domain.ActionUnpause:
		if !owner.Known() {
			return ErrOwnerUnresolved
		}
	case domain.ActionRestore:
		switch prior {
		case "", domain.VisibilityBanned, domain.VisibilityDeleted, domain.VisibilityShadowbanned:
		default:
			return fmt.Errorf("%w: visibility is %q", ErrNotRestorable, prior)
		}
	}
	return nil
}

func baseDetails(req Request) map[string]any {
	details := make(map[string]any)
	switch req.Action {
	case domain.ActionEdit:
		details["new_content"] = req.Detail
		if prev, ok := previousContent(req.Target); ok {
			details["previous_content"] = prev
		}
	case domain.ActionPause:
		details["duration_days"] = req.DurationDays
		if req.Detail != "" {
			details["reason"] = req.Detail
		}
	default:
		if req.Detail != "" {
			details["reason"] = req.Detail
		}
	}
	if prior, ok := req.Target.PriorVisibility(); ok {
		details["prior_visibility"] = string(prior)
	}
	return details
}

func previousContent(t domain.Target) (string, bool) {
	switch v := t.(type) {
	case domain.Session:
		return v.Content, true
	case domain.ContentItem:
		return v.Content, true
	}
	return "", false
}

func (d *Dispatcher) record(ctx context.Context, p *plan) error {
	entry := &domain.AuditEntry{
		ID:            uuid.New(),
		ActorID:       p.req.Actor.ID,
		ActorName:     p.req.Actor.Name,
		Action:        string(p.req.Action),
		TargetID:      p.req.Target.TargetID(),
		TargetType:    string(p.kind),
		OwnerUserID:   p.owner.ID,
		OwnerUsername: p.owner.Username,
		Details:       p.details,
		CreatedAt:     p.now,
	}
	if err := d.stores.Audit.Record(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", entry.Action).Str("target_id", entry.TargetID).
			Msg("moderation: audit write failed")
		return fmt.Errorf("moderation.Dispatcher.record: %w: %w", ErrAuditWriteFailed, err)
	}
	return nil
}

type tableSignal struct {
	Table    string `json:"table"`
	Action   string `json:"action"`
	TargetID string `json:"target_id"`
}

func (d *Dispatcher) publish(ctx context.Context, p *plan) {
	if d.publisher == nil {
		return
	}
	for table := range p.touched {
		payload, err := json.Marshal(tableSignal{Table: table, Action: string(p.req.Action), TargetID: p.req.Target.TargetID()})
		if err != nil {
			continue
		}
		if err := d.publisher.Publish(ctx, d.channel(table), payload); err != nil {
			log.Warn().Err(err).Str("table", table).Msg("moderation: push signal failed")
		}
	}
}

func (d *Dispatcher) announce(ctx context.Context, p *plan, err error) {
	if d.announcer == nil {
		return
	}
	ev := Event{
		Action:     p.req.Action,
		TargetID:   p.req.Target.TargetID(),
		TargetKind: p.kind,
		Owner:      p.owner,
		ActorName:  p.req.Actor.Name,
		Details:    p.details,
		Err:        err,
	}
	if aErr := d.announcer.Announce(ctx, ev); aErr != nil {
		log.Warn().Err(aErr).Str("action", string(p.req.Action)).Msg("moderation: announce failed")
	}
}

func touches(p *plan, table string) bool {
	_, ok := p.touched[table]
	return ok
}

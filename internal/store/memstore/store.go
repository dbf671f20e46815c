// Package memstore is an in-process implementation of every repository the
// console consumes. It backs local runs without Postgres and the package tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/ghostmode/internal/domain"
)

// Store holds every table in memory behind a single lock.
type Store struct {
	mu sync.RWMutex

	profiles       map[string]*domain.Profile
	media          map[domain.ContentKind]map[string]*domain.MediaContent
	ads            map[string]*domain.DatingAd
	messages       map[string]*domain.DirectMessage
	streams        map[string]*domain.LiveStream
	calls          map[string]*domain.Call
	reports        []*domain.Report
	flagged        []*domain.FlaggedContent
	notifications  []*domain.Notification
	audit          []*domain.AuditEntry
	admins         map[uuid.UUID]*domain.AdminUser
	surveillance   map[uuid.UUID]domain.SurveillanceState
	failures       map[string]error
	operationCount map[string]int
}

func New() *Store {
	media := make(map[domain.ContentKind]map[string]*domain.MediaContent)
	for _, k := range domain.MediaKinds() {
		media[k] = make(map[string]*domain.MediaContent)
	}
	return &Store{
		profiles:       make(map[string]*domain.Profile),
		media:          media,
		ads:            make(map[string]*domain.DatingAd),
		messages:       make(map[string]*domain.DirectMessage),
		streams:        make(map[string]*domain.LiveStream),
		calls:          make(map[string]*domain.Call),
		admins:         make(map[uuid.UUID]*domain.AdminUser),
		surveillance:   make(map[uuid.UUID]domain.SurveillanceState),
		failures:       make(map[string]error),
		operationCount: make(map[string]int),
	}
}

// Fail makes every later call of op (e.g. "profiles.Suspend") return err.
// A nil err clears the failure.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Invocations returns how many times op was invoked, failed calls included.
func (s *Store) Invocations(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operationCount[op]
}

// enter records the call and returns the injected failure, if any. Caller holds mu.
func (s *Store) enter(op string) error {
	s.operationCount[op]++
	if err, ok := s.failures[op]; ok {
		return fmt.Errorf("memstore.%s: %w", op, err)
	}
	return nil
}

func (s *Store) Profiles() domain.ProfileRepository                  { return (*profileRepo)(s) }
func (s *Store) MediaContent() domain.MediaContentRepository         { return (*mediaRepo)(s) }
func (s *Store) DatingAds() domain.DatingAdRepository                { return (*adRepo)(s) }
func (s *Store) DirectMessages() domain.DirectMessageRepository      { return (*messageRepo)(s) }
func (s *Store) LiveStreams() domain.LiveStreamRepository            { return (*streamRepo)(s) }
func (s *Store) Calls() domain.CallRepository                      { return (*callRepo)(s) }
func (s *Store) Reports() domain.ReportRepository                    { return (*reportRepo)(s) }
func (s *Store) FlaggedContent() domain.FlaggedContentRepository     { return (*flaggedRepo)(s) }
func (s *Store) Notifications() domain.NotificationRepository        { return (*notificationRepo)(s) }
func (s *Store) Audit() domain.AuditRepository                       { return (*auditRepo)(s) }
func (s *Store) AdminUsers() domain.AdminUserRepository              { return (*adminRepo)(s) }
func (s *Store) Surveillance() domain.SurveillanceStore              { return (*surveillanceRepo)(s) }

// ---------------------------------------------------------------------------
// Seeding and inspection helpers
// ---------------------------------------------------------------------------

func (s *Store) PutProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = &p
}

func (s *Store) Profile(id string) (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return domain.Profile{}, false
	}
	return *p, true
}

func (s *Store) PutMedia(m domain.MediaContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[m.Kind][m.ID] = &m
}

func (s *Store) Media(kind domain.ContentKind, id string) (domain.MediaContent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.media[kind][id]
	if !ok {
		return domain.MediaContent{}, false
	}
	return *m, true
}

func (s *Store) PutAd(a domain.DatingAd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads[a.ID] = &a
}

func (s *Store) Ad(id string) (domain.DatingAd, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.ads[id]
	if !ok {
		return domain.DatingAd{}, false
	}
	return *a, true
}

func (s *Store) PutMessage(m domain.DirectMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ID] = &m
}

func (s *Store) Message(id string) (domain.DirectMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return domain.DirectMessage{}, false
	}
	return *m, true
}

func (s *Store) PutStream(l domain.LiveStream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[l.ID] = &l
}

func (s *Store) Stream(id string) (domain.LiveStream, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.streams[id]
	if !ok {
		return domain.LiveStream{}, false
	}
	return *l, true
}

func (s *Store) PutCall(c domain.Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[c.ID] = &c
}

func (s *Store) PutReport(r domain.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, &r)
}

func (s *Store) PutFlagged(f domain.FlaggedContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flagged = append(s.flagged, &f)
}

func (s *Store) PutAdmin(u domain.AdminUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[u.ID] = &u
}

// AuditEntries returns a copy of the audit log in insertion order.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditEntry, 0, len(s.audit))
	for _, e := range s.audit {
		out = append(out, *e)
	}
	return out
}

func (s *Store) ReportRows() []domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out
}

func (s *Store) NotificationRows() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, *n)
	}
	return out
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

type profileRepo Store

func (r *profileRepo) GetByIDs(_ context.Context, ids []string) (map[string]*domain.Profile, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("profiles.GetByIDs"); err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *profileRepo) Suspend(_ context.Context, id string, at time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("profiles.Suspend"); err != nil {
		return err
	}
	p, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("memstore.profiles.Suspend: %w", domain.ErrNotFound)
	}
	if !p.IsSuspended {
		p.IsSuspended = true
		p.SuspendedAt = &at
	}
	return nil
}

func (r *profileRepo) Unsuspend(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("profiles.Unsuspend"); err != nil {
		return err
	}
	p, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("memstore.profiles.Unsuspend: %w", domain.ErrNotFound)
	}
	p.IsSuspended = false
	p.SuspendedAt = nil
	return nil
}

func (r *profileRepo) Pause(_ context.Context, id string, at, until time.Time, reason string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("profiles.Pause"); err != nil {
		return err
	}
	p, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("memstore.profiles.Pause: %w", domain.ErrNotFound)
	}
	p.IsPaused = true
	p.PausedAt = &at
	p.PauseEndAt = &until
	p.PauseReason = reason
	return nil
}

func (r *profileRepo) Unpause(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("profiles.Unpause"); err != nil {
		return err
	}
	p, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("memstore.profiles.Unpause: %w", domain.ErrNotFound)
	}
	p.IsPaused = false
	p.PausedAt = nil
	p.PauseEndAt = nil
	p.PauseReason = ""
	return nil
}

// ---------------------------------------------------------------------------
// Media content (posts, stories, videos, audios)
// ---------------------------------------------------------------------------

type mediaRepo Store

func (r *mediaRepo) table(kind domain.ContentKind) (map[string]*domain.MediaContent, error) {
	t, ok := r.media[kind]
	if !ok {
		return nil, fmt.Errorf("memstore.media: unsupported kind %q", kind)
	}
	return t, nil
}

func (r *mediaRepo) ListRecent(_ context.Context, kind domain.ContentKind, f domain.ActivityFilter) ([]*domain.MediaContent, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.ListRecent." + string(kind)); err != nil {
		return nil, err
	}
	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	var out []*domain.MediaContent
	for _, m := range t {
		if !f.Since.IsZero() && m.CreatedAt.Before(f.Since) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, f.Limit), nil
}

func (r *mediaRepo) GetByID(_ context.Context, kind domain.ContentKind, id string) (*domain.MediaContent, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.GetByID"); err != nil {
		return nil, err
	}
	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	m, ok := t[id]
	if !ok {
		return nil, fmt.Errorf("memstore.media.GetByID: %w", domain.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (r *mediaRepo) Hide(_ context.Context, kind domain.ContentKind, id string, v domain.Visibility) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.Hide"); err != nil {
		return err
	}
	t, err := r.table(kind)
	if err != nil {
		return err
	}
	m, ok := t[id]
	if !ok {
		return fmt.Errorf("memstore.media.Hide: %w", domain.ErrNotFound)
	}
	hideMedia(m, v)
	return nil
}

func (r *mediaRepo) Reinstate(_ context.Context, kind domain.ContentKind, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.Reinstate"); err != nil {
		return err
	}
	t, err := r.table(kind)
	if err != nil {
		return err
	}
	m, ok := t[id]
	if !ok {
		return fmt.Errorf("memstore.media.Reinstate: %w", domain.ErrNotFound)
	}
	reinstateMedia(m)
	return nil
}

func (r *mediaRepo) HideByOwner(_ context.Context, kind domain.ContentKind, userID string, from []domain.Visibility, v domain.Visibility) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.HideByOwner." + string(kind)); err != nil {
		return 0, err
	}
	t, err := r.table(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, m := range t {
		if mediaOwner(m) != userID || !visibilityMatches(m.Visibility, from, v) {
			continue
		}
		hideMedia(m, v)
		n++
	}
	return n, nil
}

func (r *mediaRepo) ReinstateByOwner(_ context.Context, kind domain.ContentKind, userID string, from domain.Visibility) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.ReinstateByOwner." + string(kind)); err != nil {
		return 0, err
	}
	t, err := r.table(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, m := range t {
		if mediaOwner(m) != userID || m.Visibility != from {
			continue
		}
		reinstateMedia(m)
		n++
	}
	return n, nil
}

func (r *mediaRepo) UpdateContent(_ context.Context, kind domain.ContentKind, id, content string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.UpdateContent"); err != nil {
		return err
	}
	t, err := r.table(kind)
	if err != nil {
		return err
	}
	m, ok := t[id]
	if !ok {
		return fmt.Errorf("memstore.media.UpdateContent: %w", domain.ErrNotFound)
	}
	if m.OriginalContent == nil {
		orig := m.Content
		m.OriginalContent = &orig
	}
	m.Content = content
	return nil
}

func (r *mediaRepo) Delete(_ context.Context, kind domain.ContentKind, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("media.Delete"); err != nil {
		return err
	}
	t, err := r.table(kind)
	if err != nil {
		return err
	}
	if _, ok := t[id]; !ok {
		return fmt.Errorf("memstore.media.Delete: %w", domain.ErrNotFound)
	}
	delete(t, id)
	return nil
}

func mediaOwner(m *domain.MediaContent) string {
	if m.CreatorID != nil && *m.CreatorID != "" {
		return *m.CreatorID
	}
	return m.UserID
}

func visibilityMatches(v domain.Visibility, from []domain.Visibility, to domain.Visibility) bool {
	if len(from) == 0 {
		return v != domain.VisibilityDeleted && v != to
	}
	for _, f := range from {
		if v == f {
			return true
		}
	}
	return false
}

func hideMedia(m *domain.MediaContent, v domain.Visibility) {
	if !m.Visibility.Moderated() {
		prev := m.Visibility
		m.PreModerationVisibility = &prev
	}
	m.Visibility = v
}

func reinstateMedia(m *domain.MediaContent) {
	m.Visibility = domain.VisibilityPublic
	if m.PreModerationVisibility != nil {
		m.Visibility = *m.PreModerationVisibility
	}
	m.PreModerationVisibility = nil
}

// ---------------------------------------------------------------------------
// Dating ads
// ---------------------------------------------------------------------------

type adRepo Store

func (r *adRepo) ListRecent(_ context.Context, f domain.ActivityFilter) ([]*domain.DatingAd, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.ListRecent"); err != nil {
		return nil, err
	}
	var out []*domain.DatingAd
	for _, a := range s.ads {
		if !f.Since.IsZero() && a.CreatedAt.Before(f.Since) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, f.Limit), nil
}

func (r *adRepo) GetByID(_ context.Context, id string) (*domain.DatingAd, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.GetByID"); err != nil {
		return nil, err
	}
	a, ok := s.ads[id]
	if !ok {
		return nil, fmt.Errorf("memstore.ads.GetByID: %w", domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (r *adRepo) Hide(_ context.Context, id, moderationStatus string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.Hide"); err != nil {
		return err
	}
	a, ok := s.ads[id]
	if !ok {
		return fmt.Errorf("memstore.ads.Hide: %w", domain.ErrNotFound)
	}
	hideAd(a, moderationStatus)
	return nil
}

func (r *adRepo) Reinstate(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.Reinstate"); err != nil {
		return err
	}
	a, ok := s.ads[id]
	if !ok {
		return fmt.Errorf("memstore.ads.Reinstate: %w", domain.ErrNotFound)
	}
	reinstateAd(a)
	return nil
}

func (r *adRepo) HideByOwner(_ context.Context, userID string, from []string, moderationStatus string) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.HideByOwner"); err != nil {
		return 0, err
	}
	var n int64
	for _, a := range s.ads {
		if a.UserID != userID || !statusMatches(a.ModerationStatus, from, moderationStatus) {
			continue
		}
		hideAd(a, moderationStatus)
		n++
	}
	return n, nil
}

func (r *adRepo) ReinstateByOwner(_ context.Context, userID, from string) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.ReinstateByOwner"); err != nil {
		return 0, err
	}
	var n int64
	for _, a := range s.ads {
		if a.UserID != userID || a.ModerationStatus != from {
			continue
		}
		reinstateAd(a)
		n++
	}
	return n, nil
}

func (r *adRepo) UpdateDescription(_ context.Context, id, description string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.UpdateDescription"); err != nil {
		return err
	}
	a, ok := s.ads[id]
	if !ok {
		return fmt.Errorf("memstore.ads.UpdateDescription: %w", domain.ErrNotFound)
	}
	if a.OriginalDescription == nil {
		orig := a.Description
		a.OriginalDescription = &orig
	}
	a.Description = description
	return nil
}

func (r *adRepo) Delete(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ads.Delete"); err != nil {
		return err
	}
	if _, ok := s.ads[id]; !ok {
		return fmt.Errorf("memstore.ads.Delete: %w", domain.ErrNotFound)
	}
	delete(s.ads, id)
	return nil
}

func statusMatches(status string, from []string, to string) bool {
	if len(from) == 0 {
		return status != domain.AdStatusDeleted && status != to
	}
	for _, f := range from {
		if status == f {
			return true
		}
	}
	return false
}

func hideAd(a *domain.DatingAd, status string) {
	if !domain.AdStatusModerated(a.ModerationStatus) {
		prevStatus, prevActive := a.ModerationStatus, a.IsActive
		a.PreModerationStatus = &prevStatus
		a.PreModerationActive = &prevActive
	}
	a.IsActive = false
	a.ModerationStatus = status
}

func reinstateAd(a *domain.DatingAd) {
	a.ModerationStatus, a.IsActive = domain.AdStatusApproved, true
	if a.PreModerationStatus != nil {
		a.ModerationStatus = *a.PreModerationStatus
	}
	if a.PreModerationActive != nil {
		a.IsActive = *a.PreModerationActive
	}
	a.PreModerationStatus, a.PreModerationActive = nil, nil
}

// ---------------------------------------------------------------------------
// Direct messages
// ---------------------------------------------------------------------------

type messageRepo Store

func (r *messageRepo) ListRecent(_ context.Context, f domain.ActivityFilter) ([]*domain.DirectMessage, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("messages.ListRecent"); err != nil {
		return nil, err
	}
	var out []*domain.DirectMessage
	for _, m := range s.messages {
		if !f.Since.IsZero() && m.CreatedAt.Before(f.Since) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, f.Limit), nil
}

func (r *messageRepo) GetByID(_ context.Context, id string) (*domain.DirectMessage, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("messages.GetByID"); err != nil {
		return nil, err
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("memstore.messages.GetByID: %w", domain.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (r *messageRepo) Redact(_ context.Context, id, replacement string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("messages.Redact"); err != nil {
		return err
	}
	m, ok := s.messages[id]
	if !ok {
		return fmt.Errorf("memstore.messages.Redact: %w", domain.ErrNotFound)
	}
	if m.OriginalContent == nil {
		orig := m.Content
		m.OriginalContent = &orig
	}
	m.Content = replacement
	return nil
}

func (r *messageRepo) RestoreOriginal(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("messages.RestoreOriginal"); err != nil {
		return err
	}
	m, ok := s.messages[id]
	if !ok {
		return fmt.Errorf("memstore.messages.RestoreOriginal: %w", domain.ErrNotFound)
	}
	if m.OriginalContent != nil {
		m.Content = *m.OriginalContent
		m.OriginalContent = nil
	}
	return nil
}

func (r *messageRepo) Delete(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("messages.Delete"); err != nil {
		return err
	}
	if _, ok := s.messages[id]; !ok {
		return fmt.Errorf("memstore.messages.Delete: %w", domain.ErrNotFound)
	}
	delete(s.messages, id)
	return nil
}

// ---------------------------------------------------------------------------
// Live streams and calls
// ---------------------------------------------------------------------------

type streamRepo Store

func (r *streamRepo) ListRecent(_ context.Context, f domain.ActivityFilter) ([]*domain.LiveStream, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("streams.ListRecent"); err != nil {
		return nil, err
	}
	var out []*domain.LiveStream
	for _, l := range s.streams {
		if !f.Since.IsZero() && l.CreatedAt.Before(f.Since) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, f.Limit), nil
}

func (r *streamRepo) GetByID(_ context.Context, id string) (*domain.LiveStream, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("streams.GetByID"); err != nil {
		return nil, err
	}
	l, ok := s.streams[id]
	if !ok {
		return nil, fmt.Errorf("memstore.streams.GetByID: %w", domain.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (r *streamRepo) End(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("streams.End"); err != nil {
		return err
	}
	l, ok := s.streams[id]
	if !ok {
		return fmt.Errorf("memstore.streams.End: %w", domain.ErrNotFound)
	}
	if l.Status != "ended" {
		now := time.Now()
		l.Status = "ended"
		l.EndedAt = &now
	}
	return nil
}

func (r *streamRepo) EndByOwner(_ context.Context, userID string) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("streams.EndByOwner"); err != nil {
		return 0, err
	}
	var n int64
	now := time.Now()
	for _, l := range s.streams {
		if l.UserID == userID && l.Status == "live" {
			l.Status = "ended"
			l.EndedAt = &now
			n++
		}
	}
	return n, nil
}

type callRepo Store

func (r *callRepo) ListRecent(_ context.Context, f domain.ActivityFilter) ([]*domain.Call, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("calls.ListRecent"); err != nil {
		return nil, err
	}
	var out []*domain.Call
	for _, c := range s.calls {
		if !f.Since.IsZero() && c.CreatedAt.Before(f.Since) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, f.Limit), nil
}

func (r *callRepo) GetByID(_ context.Context, id string) (*domain.Call, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("calls.GetByID"); err != nil {
		return nil, err
	}
	c, ok := s.calls[id]
	if !ok {
		return nil, fmt.Errorf("memstore.calls.GetByID: %w", domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *callRepo) End(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("calls.End"); err != nil {
		return err
	}
	c, ok := s.calls[id]
	if !ok {
		return fmt.Errorf("memstore.calls.End: %w", domain.ErrNotFound)
	}
	if c.Status != "ended" {
		now := time.Now()
		c.Status = "ended"
		c.EndedAt = &now
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reports, flagged content, notifications
// ---------------------------------------------------------------------------

type reportRepo Store

func (r *reportRepo) Create(_ context.Context, rep *domain.Report) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("reports.Create"); err != nil {
		return err
	}
	cp := *rep
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		rep.ID = cp.ID
	}
	s.reports = append(s.reports, &cp)
	return nil
}

func (r *reportRepo) ListPending(_ context.Context, lim int) ([]*domain.Report, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("reports.ListPending"); err != nil {
		return nil, err
	}
	var out []*domain.Report
	for _, rep := range s.reports {
		if rep.Status == domain.ReportStatusPending {
			cp := *rep
			out = append(out, &cp)
		}
	}
	return limit(out, lim), nil
}

type flaggedRepo Store

func (r *flaggedRepo) ListPending(_ context.Context, lim int) ([]*domain.FlaggedContent, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("flagged.ListPending"); err != nil {
		return nil, err
	}
	var out []*domain.FlaggedContent
	for _, f := range s.flagged {
		if f.Status == "pending" {
			cp := *f
			out = append(out, &cp)
		}
	}
	return limit(out, lim), nil
}

type notificationRepo Store

func (r *notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("notifications.Create"); err != nil {
		return err
	}
	cp := *n
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		n.ID = cp.ID
	}
	s.notifications = append(s.notifications, &cp)
	return nil
}

// ---------------------------------------------------------------------------
// Audit log
// ---------------------------------------------------------------------------

type auditRepo Store

func (r *auditRepo) Record(_ context.Context, entry *domain.AuditEntry) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("audit.Record"); err != nil {
		return err
	}
	cp := *entry
	s.audit = append(s.audit, &cp)
	return nil
}

func (r *auditRepo) List(_ context.Context, lim, offset int) ([]*domain.AuditEntry, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.AuditEntry, 0, len(s.audit))
	for i := len(s.audit) - 1; i >= 0; i-- {
		cp := *s.audit[i]
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	return limit(out[offset:], lim), nil
}

func (r *auditRepo) ListByTarget(_ context.Context, targetID string) ([]*domain.AuditEntry, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].TargetID == targetID {
			cp := *s.audit[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Admin users and surveillance state
// ---------------------------------------------------------------------------

type adminRepo Store

func (r *adminRepo) Create(_ context.Context, u *domain.AdminUser) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if existing.Email == u.Email {
			return fmt.Errorf("memstore.admins.Create: %w", domain.ErrConflict)
		}
	}
	cp := *u
	s.admins[u.ID] = &cp
	return nil
}

func (r *adminRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.admins[id]
	if !ok {
		return nil, fmt.Errorf("memstore.admins.GetByID: %w", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *adminRepo) GetByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.admins {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("memstore.admins.GetByEmail: %w", domain.ErrNotFound)
}

func (r *adminRepo) SetGhostMode(_ context.Context, id uuid.UUID, enabled bool) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.admins[id]
	if !ok {
		return fmt.Errorf("memstore.admins.SetGhostMode: %w", domain.ErrNotFound)
	}
	u.GhostMode = enabled
	u.UpdatedAt = time.Now()
	return nil
}

func (r *adminRepo) List(_ context.Context) ([]*domain.AdminUser, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.AdminUser, 0, len(s.admins))
	for _, u := range s.admins {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type surveillanceRepo Store

func (r *surveillanceRepo) Get(_ context.Context, adminID uuid.UUID) (domain.SurveillanceState, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("surveillance.Get"); err != nil {
		return domain.SurveillanceState{}, err
	}
	return s.surveillance[adminID], nil
}

func (r *surveillanceRepo) Put(_ context.Context, adminID uuid.UUID, state domain.SurveillanceState) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("surveillance.Put"); err != nil {
		return err
	}
	s.surveillance[adminID] = state
	return nil
}

func (r *surveillanceRepo) Clear(_ context.Context, adminID uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("surveillance.Clear"); err != nil {
		return err
	}
	delete(s.surveillance, adminID)
	return nil
}

func limit[T any](in []T, n int) []T {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}

// Package alerts merges pending reports and flagged content into one
// recency-ordered alert feed.
package alerts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/domain"
)

var refreshErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ghostmode_alerts_source_errors",
	Help: "Number of alert source reads which failed",
}, []string{"source"})

const (
	sourceReports = "reports"
	sourceFlagged = "flagged_content"
)

// AlertFeed is the result of one refresh. Degraded names the sources that failed.
type AlertFeed struct {
	Alerts      []domain.Alert `json:"alerts"`
	Degraded    []string       `json:"degraded_sources"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type Builder struct {
	reports  domain.ReportRepository
	flagged  domain.FlaggedContentRepository
	profiles *activity.ProfileDirectory
	limit    int
}

func NewBuilder(reports domain.ReportRepository, flagged domain.FlaggedContentRepository, profiles *activity.ProfileDirectory, limit int) *Builder {
	return &Builder{reports: reports, flagged: flagged, profiles: profiles, limit: limit}
}

// Refresh reads both sources concurrently. A failing source is logged and
// listed in Degraded; only cancellation fails the refresh.
func (b *Builder) Refresh(ctx context.Context) (AlertFeed, error) {
	var (
		reports  []*domain.Report
		flagged  []*domain.FlaggedContent
		mu       sync.Mutex
		degraded []string
	)
	fail := func(source string, err error) {
		refreshErrors.WithLabelValues(source).Inc()
		log.Error().Err(err).Str("source", source).Msg("alerts: source read failed")
		mu.Lock()
		degraded = append(degraded, source)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		rows, err := b.reports.ListPending(ctx, b.limit)
		if err != nil {
			if ctx.Err() == nil {
				fail(sourceReports, err)
			}
			return nil
		}
		reports = rows
		return nil
	})
	g.Go(func() error {
		rows, err := b.flagged.ListPending(ctx, b.limit)
		if err != nil {
			if ctx.Err() == nil {
				fail(sourceFlagged, err)
			}
			return nil
		}
		flagged = rows
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return AlertFeed{}, fmt.Errorf("alerts.Builder.Refresh: %w", err)
	}

	ids := make([]string, 0, len(reports)+len(flagged))
	for _, r := range reports {
		ids = append(ids, r.ReportedUserID)
	}
	for _, f := range flagged {
		ids = append(ids, f.UserID)
	}
	profiles := b.profiles.Lookup(ctx, ids)

	out := make([]domain.Alert, 0, len(reports)+len(flagged))
	for _, r := range reports {
		out = append(out, FromReport(r, usernameOf(profiles, r.ReportedUserID)))
	}
	for _, f := range flagged {
		out = append(out, FromFlagged(f, usernameOf(profiles, f.UserID)))
	}
	SortByRecency(out)

	sort.Strings(degraded)
	if degraded == nil {
		degraded = []string{}
	}
	return AlertFeed{Alerts: out, Degraded: degraded, GeneratedAt: time.Now()}, nil
}

// FromReport normalizes a pending report. Urgent reports are high severity,
// the rest medium.
func FromReport(r *domain.Report, username string) domain.Alert {
	severity := domain.SeverityMedium
	if r.IsUrgent {
		severity = domain.SeverityHigh
	}
	reason := r.Reason
	if reason == "" {
		reason = r.Description
	}
	return domain.Alert{
		ID:          r.ID,
		Kind:        domain.AlertViolation,
		UserID:      r.ReportedUserID,
		Username:    username,
		ContentType: r.ContentType,
		ContentID:   r.ContentID,
		Reason:      reason,
		Severity:    severity,
		CreatedAt:   r.CreatedAt,
		Urgent:      r.IsUrgent,
	}
}

// FromFlagged normalizes a flagged-content row, keeping its own severity.
func FromFlagged(f *domain.FlaggedContent, username string) domain.Alert {
	severity := f.Severity
	if severity == "" {
		severity = domain.SeverityLow
	}
	return domain.Alert{
		ID:          f.ID,
		Kind:        domain.AlertRisk,
		UserID:      f.UserID,
		Username:    username,
		ContentType: f.ContentType,
		ContentID:   f.ContentID,
		Reason:      f.Reason,
		Severity:    severity,
		CreatedAt:   f.CreatedAt,
		Urgent:      severity == domain.SeverityHigh,
	}
}

// SortByRecency orders alerts by created_at, newest first.
func SortByRecency(alerts []domain.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
}

func usernameOf(profiles map[string]domain.Profile, id string) string {
	if p, ok := profiles[id]; ok && p.Username != "" {
		return p.Username
	}
	return domain.DefaultUsername
}

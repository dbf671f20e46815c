package alerts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/alerts"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/store/memstore"
)

var base = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newBuilder(t *testing.T) (*alerts.Builder, *memstore.Store) {
	t.Helper()

	s := memstore.New()
	profiles := activity.NewProfileDirectory(s.Profiles(), 16, time.Minute)
	return alerts.NewBuilder(s.Reports(), s.FlaggedContent(), profiles, 100), s
}

func seed(s *memstore.Store) {
	s.PutProfile(domain.Profile{ID: "u1", Username: "alice"})
	s.PutReport(domain.Report{ID: "r1", ReportedUserID: "u1", ContentType: "post", ContentID: "p1", Reason: "spam", Status: domain.ReportStatusPending, CreatedAt: base.Add(1 * time.Minute)})
	s.PutReport(domain.Report{ID: "r2", ReportedUserID: "u2", ContentType: "chat", ContentID: "m1", Reason: "threat", Status: domain.ReportStatusPending, IsUrgent: true, CreatedAt: base.Add(5 * time.Minute)})
	s.PutReport(domain.Report{ID: "r3", ReportedUserID: "u2", Status: "reviewed", CreatedAt: base.Add(9 * time.Minute)})
	s.PutFlagged(domain.FlaggedContent{ID: "f1", UserID: "u1", ContentType: "video", ContentID: "v1", Reason: "nudity", Severity: domain.SeverityLow, Status: "pending", CreatedAt: base.Add(3 * time.Minute)})
	s.PutFlagged(domain.FlaggedContent{ID: "f2", UserID: "u3", ContentType: "ad", ContentID: "ad1", Reason: "scam", Severity: domain.SeverityHigh, Status: "pending", CreatedAt: base.Add(7 * time.Minute)})
}

func TestRefresh_MergesAndSorts(t *testing.T) {
	t.Parallel()

	b, s := newBuilder(t)
	seed(s)

	feed, err := b.Refresh(t.Context())
	require.NoError(t, err)
	assert.Empty(t, feed.Degraded)
	require.Len(t, feed.Alerts, 4)

	ids := make([]string, 0, len(feed.Alerts))
	for i, a := range feed.Alerts {
		ids = append(ids, a.ID)
		if i > 0 {
			assert.False(t, a.CreatedAt.After(feed.Alerts[i-1].CreatedAt), "alerts not ordered at %d", i)
		}
	}
	assert.Equal(t, []string{"f2", "r2", "f1", "r1"}, ids)
}

func TestRefresh_Severity(t *testing.T) {
	t.Parallel()

	b, s := newBuilder(t)
	seed(s)

	feed, err := b.Refresh(t.Context())
	require.NoError(t, err)

	byID := make(map[string]domain.Alert)
	for _, a := range feed.Alerts {
		byID[a.ID] = a
	}

	tests := []struct {
		id       string
		kind     domain.AlertKind
		severity domain.Severity
		username string
	}{
		{"r1", domain.AlertViolation, domain.SeverityMedium, "alice"},
		{"r2", domain.AlertViolation, domain.SeverityHigh, domain.DefaultUsername},
		{"f1", domain.AlertRisk, domain.SeverityLow, "alice"},
		{"f2", domain.AlertRisk, domain.SeverityHigh, domain.DefaultUsername},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()

			a := byID[tt.id]
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, tt.severity, a.Severity)
			assert.Equal(t, tt.username, a.Username)
		})
	}
}

func TestRefresh_PartialFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		failOp   string
		degraded string
		wantKind domain.AlertKind
	}{
		{"reports down", "reports.ListPending", "reports", domain.AlertRisk},
		{"flagged down", "flagged.ListPending", "flagged_content", domain.AlertViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, s := newBuilder(t)
			seed(s)
			s.Fail(tt.failOp, errors.New("timeout"))

			feed, err := b.Refresh(t.Context())
			require.NoError(t, err)
			assert.Equal(t, []string{tt.degraded}, feed.Degraded)
			require.Len(t, feed.Alerts, 2)
			for _, a := range feed.Alerts {
				assert.Equal(t, tt.wantKind, a.Kind)
			}
		})
	}

	t.Run("both down", func(t *testing.T) {
		t.Parallel()

		b, s := newBuilder(t)
		s.Fail("reports.ListPending", errors.New("timeout"))
		s.Fail("flagged.ListPending", errors.New("timeout"))

		feed, err := b.Refresh(t.Context())
		require.NoError(t, err)
		assert.Empty(t, feed.Alerts)
		assert.Equal(t, []string{"flagged_content", "reports"}, feed.Degraded)
	})
}

func TestRefresh_Cancelled(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := b.Refresh(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromReport_FallsBackToDescription(t *testing.T) {
	t.Parallel()

	a := alerts.FromReport(&domain.Report{ID: "r", Description: "free text"}, "x")
	assert.Equal(t, "free text", a.Reason)
	assert.False(t, a.Urgent)
}

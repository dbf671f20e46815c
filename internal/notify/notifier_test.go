package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/messenger"
	"github.com/gosuda/ghostmode/internal/moderation"
	"github.com/gosuda/ghostmode/internal/notify"
)

// --- mocks ---

type sentNotice struct {
	channelID string
	notice    messenger.Notice
}

type mockMessenger struct {
	platform string
	sent     []sentNotice
	err      error
}

func (m *mockMessenger) SendMessage(context.Context, string, string) (messenger.MessageID, error) {
	return "", nil
}

func (m *mockMessenger) SendNotice(_ context.Context, channelID string, n messenger.Notice) (messenger.MessageID, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentNotice{channelID: channelID, notice: n})
	return "ts", nil
}

func (m *mockMessenger) Platform() string { return m.platform }

func banEvent() moderation.Event {
	return moderation.Event{
		Action:     domain.ActionBan,
		TargetID:   "p1",
		TargetKind: domain.TargetPost,
		Owner:      domain.Owner{ID: "u1", Username: "alice"},
		ActorName:  "root",
		Details:    map[string]any{"reason": "spam"},
	}
}

// --- Announce tests ---

func TestBroadcaster_Announce(t *testing.T) {
	t.Parallel()

	t.Run("sends to every route", func(t *testing.T) {
		t.Parallel()

		m := &mockMessenger{platform: "slack"}
		reg := notify.NewRegistry()
		reg.Register(m)
		b := notify.New(reg,
			notify.Route{Platform: "slack", ChannelID: "C-ops"},
			notify.Route{Platform: "slack", ChannelID: "C-trust"},
		)

		require.NoError(t, b.Announce(t.Context(), banEvent()))
		require.Len(t, m.sent, 2)
		assert.Equal(t, "C-ops", m.sent[0].channelID)
		assert.Equal(t, "C-trust", m.sent[1].channelID)
		assert.Equal(t, "ban on post p1", m.sent[0].notice.Title)
	})

	t.Run("unknown platform is reported but other routes still receive", func(t *testing.T) {
		t.Parallel()

		m := &mockMessenger{platform: "slack"}
		reg := notify.NewRegistry()
		reg.Register(m)
		b := notify.New(reg,
			notify.Route{Platform: "telegram", ChannelID: "T1"},
			notify.Route{Platform: "slack", ChannelID: "C-ops"},
		)

		err := b.Announce(t.Context(), banEvent())
		require.Error(t, err)
		assert.ErrorIs(t, err, notify.ErrPlatformNotFound)
		assert.Len(t, m.sent, 1)
	})

	t.Run("send failure is wrapped", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		reg.Register(&mockMessenger{platform: "slack", err: errors.New("not_in_channel")})
		b := notify.New(reg, notify.Route{Platform: "slack", ChannelID: "C-ops"})

		err := b.Announce(t.Context(), banEvent())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not_in_channel")
		assert.Contains(t, err.Error(), "slack/C-ops")
	})

	t.Run("no routes is a no-op", func(t *testing.T) {
		t.Parallel()

		b := notify.New(notify.NewRegistry())
		assert.NoError(t, b.Announce(t.Context(), banEvent()))
	})
}

func TestNoticeFor(t *testing.T) {
	t.Parallel()

	t.Run("ban is a warning with owner and reason", func(t *testing.T) {
		t.Parallel()

		n := notify.NoticeFor(banEvent())
		assert.Equal(t, messenger.LevelWarning, n.Level)
		assert.Contains(t, n.Fields, messenger.Field{Label: "Owner", Value: "alice (u1)"})
		assert.Contains(t, n.Fields, messenger.Field{Label: "Actor", Value: "root"})
		assert.Contains(t, n.Fields, messenger.Field{Label: "Reason", Value: "spam"})
		assert.Empty(t, n.Footer)
	})

	t.Run("pause lists duration and end", func(t *testing.T) {
		t.Parallel()

		e := banEvent()
		e.Action = domain.ActionPause
		e.Details = map[string]any{"duration_days": 7, "pause_end_at": "2026-06-08T10:00:00Z"}

		n := notify.NoticeFor(e)
		assert.Equal(t, messenger.LevelInfo, n.Level)
		assert.Contains(t, n.Fields, messenger.Field{Label: "Duration", Value: "7 days"})
		assert.Contains(t, n.Fields, messenger.Field{Label: "Until", Value: "2026-06-08T10:00:00Z"})
	})

	t.Run("failure is an error notice", func(t *testing.T) {
		t.Parallel()

		e := banEvent()
		e.Action = domain.ActionDelete
		e.Err = errors.New("connection reset")

		n := notify.NoticeFor(e)
		assert.Equal(t, messenger.LevelError, n.Level)
		assert.Equal(t, "delete failed on post p1", n.Title)
		assert.Contains(t, n.Fields, messenger.Field{Label: "Error", Value: "connection reset"})
	})

	t.Run("cascade errors become the footer", func(t *testing.T) {
		t.Parallel()

		e := banEvent()
		e.Details["cascade_errors"] = []string{"hide_videos: timeout"}

		n := notify.NoticeFor(e)
		assert.Equal(t, "cascade errors: hide_videos: timeout", n.Footer)
	})
}

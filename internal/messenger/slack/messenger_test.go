package slack_test

import (
	"errors"
	"testing"

	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/messenger"
	gmslack "github.com/gosuda/ghostmode/internal/messenger/slack"
)

// --- mock SlackAPI ---

type mockSlackAPI struct {
	postMsgChannel string
	postMsgTS      string
	postMsgErr     error
	postMsgOpts    []slacklib.MsgOption
}

func (m *mockSlackAPI) PostMessage(channelID string, options ...slacklib.MsgOption) (ch, ts string, err error) {
	m.postMsgChannel = channelID
	m.postMsgOpts = options
	if m.postMsgErr != nil {
		return "", "", m.postMsgErr
	}
	return m.postMsgChannel, m.postMsgTS, nil
}

// --- SlackMessenger tests ---

func TestSlackMessenger_SendMessage(t *testing.T) {
	t.Parallel()

	t.Run("success returns message timestamp as MessageID", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{postMsgTS: "1234567890.123456"}
		m := gmslack.NewSlackMessenger(api)

		msgID, err := m.SendMessage(t.Context(), "C123", "hello world")

		require.NoError(t, err)
		assert.Equal(t, messenger.MessageID("1234567890.123456"), msgID)
		assert.Equal(t, "C123", api.postMsgChannel)
	})

	t.Run("error wraps Slack API error", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{postMsgErr: errors.New("channel_not_found")}
		m := gmslack.NewSlackMessenger(api)

		msgID, err := m.SendMessage(t.Context(), "C999", "hello")

		require.Error(t, err)
		assert.Empty(t, msgID)
		assert.Contains(t, err.Error(), "slack.SlackMessenger.SendMessage")
		assert.Contains(t, err.Error(), "channel_not_found")
	})
}

func TestSlackMessenger_SendNotice(t *testing.T) {
	t.Parallel()

	t.Run("posts text fallback and blocks", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{postMsgTS: "1.5"}
		m := gmslack.NewSlackMessenger(api)

		msgID, err := m.SendNotice(t.Context(), "C-ops", messenger.Notice{
			Title:  "ban on video v1",
			Fields: []messenger.Field{{Label: "Owner", Value: "alice"}},
		})

		require.NoError(t, err)
		assert.Equal(t, messenger.MessageID("1.5"), msgID)
		assert.Equal(t, "C-ops", api.postMsgChannel)
		assert.Len(t, api.postMsgOpts, 2)
	})

	t.Run("error wraps Slack API error", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{postMsgErr: errors.New("not_in_channel")}
		m := gmslack.NewSlackMessenger(api)

		_, err := m.SendNotice(t.Context(), "C-ops", messenger.Notice{Title: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "slack.SlackMessenger.SendNotice")
	})
}

func TestSlackMessenger_Platform(t *testing.T) {
	t.Parallel()

	m := gmslack.NewSlackMessenger(&mockSlackAPI{})
	assert.Equal(t, "slack", m.Platform())
}

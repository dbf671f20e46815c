package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/ghostmode/internal/messenger"
)

// SlackAPI abstracts the subset of the Slack client used by SlackMessenger.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackMessenger implements messenger.Messenger for Slack.
type SlackMessenger struct {
	api SlackAPI
}

var _ messenger.Messenger = (*SlackMessenger)(nil) //nolint:gochecknoglobals // compile-time check

func NewSlackMessenger(api SlackAPI) *SlackMessenger {
	return &SlackMessenger{api: api}
}

// SendMessage posts a text message and returns the message timestamp as MessageID.
func (m *SlackMessenger) SendMessage(_ context.Context, channelID, text string) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessage(channelID, slacklib.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.SendMessage: %w", err)
	}

	return messenger.MessageID(ts), nil
}

// SendNotice posts a Block Kit rendering of n. The plain text doubles as the
// notification fallback.
func (m *SlackMessenger) SendNotice(_ context.Context, channelID string, n messenger.Notice) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessage(channelID,
		slacklib.MsgOptionText(n.Text(), false),
		slacklib.MsgOptionBlocks(BuildNoticeBlocks(n)...),
	)
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.SendNotice: %w", err)
	}

	return messenger.MessageID(ts), nil
}

func (m *SlackMessenger) Platform() string {
	return "slack"
}

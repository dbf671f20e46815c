package messenger

import "context"

// MessageID uniquely identifies a message within a messenger platform.
type MessageID string

// Level grades how loudly a notice should render.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Field is one labelled value of a notice.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Notice is a structured operations message, such as a moderation outcome.
type Notice struct {
	Title  string  `json:"title"`
	Level  Level   `json:"level"`
	Fields []Field `json:"fields,omitempty"`
	Footer string  `json:"footer,omitempty"`
}

// Text renders the notice as plain text for platforms without rich layouts.
func (n Notice) Text() string {
	text := n.Title
	for _, f := range n.Fields {
		text += "\n" + f.Label + ": " + f.Value
	}
	if n.Footer != "" {
		text += "\n" + n.Footer
	}
	return text
}

// Messenger abstracts posting to an operations chat channel.
type Messenger interface {
	// SendMessage posts a text message to a channel and returns its platform message ID.
	SendMessage(ctx context.Context, channelID, text string) (MessageID, error)

	// SendNotice posts a structured notice to a channel.
	SendNotice(ctx context.Context, channelID string, n Notice) (MessageID, error)

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}

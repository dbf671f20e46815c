package slack

import (
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/ghostmode/internal/messenger"
)

func levelPrefix(l messenger.Level) string {
	switch l {
	case messenger.LevelError:
		return ":rotating_light: "
	case messenger.LevelWarning:
		return ":warning: "
	default:
		return ""
	}
}

// BuildNoticeBlocks builds Block Kit blocks for a notice: a title section, a
// two-column field section when fields are present and a context footer.
func BuildNoticeBlocks(n messenger.Notice) []slacklib.Block {
	title := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, levelPrefix(n.Level)+"*"+n.Title+"*", false, false),
		nil,
		nil,
	)
	blocks := []slacklib.Block{title}

	if len(n.Fields) > 0 {
		fields := make([]*slacklib.TextBlockObject, 0, len(n.Fields))
		for _, f := range n.Fields {
			fields = append(fields, slacklib.NewTextBlockObject(slacklib.MarkdownType, "*"+f.Label+":*\n"+f.Value, false, false))
		}
		blocks = append(blocks, slacklib.NewSectionBlock(nil, fields, nil))
	}

	if n.Footer != "" {
		blocks = append(blocks, slacklib.NewContextBlock("",
			slacklib.NewTextBlockObject(slacklib.MarkdownType, n.Footer, false, false),
		))
	}

	return blocks
}

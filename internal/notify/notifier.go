// Package notify broadcasts notable moderation outcomes to operations channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/messenger"
	"github.com/gosuda/ghostmode/internal/moderation"
)

// ErrPlatformNotFound is returned when a route names an unregistered platform.
var ErrPlatformNotFound = errors.New("notify: platform not found") //nolint:gochecknoglobals // sentinel error

// MessengerRegistry maps platform names to Messenger implementations.
type MessengerRegistry interface {
	Get(platform string) (messenger.Messenger, bool)
}

// Route is one destination channel on one platform.
type Route struct {
	Platform  string
	ChannelID string
}

// Broadcaster posts moderation events to every configured route.
type Broadcaster struct {
	messengers MessengerRegistry
	routes     []Route
}

var _ moderation.Announcer = (*Broadcaster)(nil) //nolint:gochecknoglobals // compile-time check

func New(messengers MessengerRegistry, routes ...Route) *Broadcaster {
	return &Broadcaster{messengers: messengers, routes: routes}
}

// Announce sends e to every route. Each route is tried; the joined error lists
// the routes that failed.
func (b *Broadcaster) Announce(ctx context.Context, e moderation.Event) error {
	notice := NoticeFor(e)

	var errs []error
	for _, r := range b.routes {
		m, ok := b.messengers.Get(r.Platform)
		if !ok {
			errs = append(errs, fmt.Errorf("notify.Broadcaster.Announce: platform %q: %w", r.Platform, ErrPlatformNotFound))
			continue
		}
		if _, err := m.SendNotice(ctx, r.ChannelID, notice); err != nil {
			errs = append(errs, fmt.Errorf("notify.Broadcaster.Announce: %s/%s: %w", r.Platform, r.ChannelID, err))
			continue
		}
		log.Debug().Str("platform", r.Platform).Str("channel", r.ChannelID).
			Str("action", string(e.Action)).Msg("notify: moderation event broadcast")
	}

	return errors.Join(errs...)
}

// NoticeFor renders a moderation event.
func NoticeFor(e moderation.Event) messenger.Notice {
	n := messenger.Notice{
		Title: fmt.Sprintf("%s on %s %s", e.Action, e.TargetKind, e.TargetID),
		Level: messenger.LevelInfo,
	}
	switch e.Action {
	case domain.ActionBan, domain.ActionForceDelete:
		n.Level = messenger.LevelWarning
	}
	if e.Err != nil {
		n.Title = fmt.Sprintf("%s failed on %s %s", e.Action, e.TargetKind, e.TargetID)
		n.Level = messenger.LevelError
	}

	n.Fields = append(n.Fields,
		messenger.Field{Label: "Owner", Value: e.Owner.Username + " (" + e.Owner.ID + ")"},
		messenger.Field{Label: "Actor", Value: e.ActorName},
	)
	if reason, ok := e.Details["reason"].(string); ok && reason != "" {
		n.Fields = append(n.Fields, messenger.Field{Label: "Reason", Value: reason})
	}
	if days, ok := e.Details["duration_days"].(int); ok {
		n.Fields = append(n.Fields, messenger.Field{Label: "Duration", Value: strconv.Itoa(days) + " days"})
	}
	if until, ok := e.Details["pause_end_at"].(string); ok {
		n.Fields = append(n.Fields, messenger.Field{Label: "Until", Value: until})
	}
	if e.Err != nil {
		n.Fields = append(n.Fields, messenger.Field{Label: "Error", Value: e.Err.Error()})
	}
	if cascade, ok := e.Details["cascade_errors"].([]string); ok && len(cascade) > 0 {
		n.Footer = "cascade errors: " + strings.Join(cascade, "; ")
	}

	return n
}

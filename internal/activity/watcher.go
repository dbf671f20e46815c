package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/ghostmode/internal/domain"
)

// Subscriber delivers push signals published on the given channels.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan []byte, func(), error)
}

// Watcher turns table push signals into full re-aggregations. Signals carry no
// payload the feed depends on; every signal re-runs Aggregate.
type Watcher struct {
	agg     *Aggregator
	sub     Subscriber
	channel func(table string) string
	settle  time.Duration
}

// NewWatcher creates a watcher. Signals arriving within settle of each other
// are coalesced into one re-aggregation.
func NewWatcher(agg *Aggregator, sub Subscriber, channel func(table string) string, settle time.Duration) *Watcher {
	return &Watcher{agg: agg, sub: sub, channel: channel, settle: settle}
}

// Watch emits the feed for class once, then again after every push signal on
// the class's tables, until ctx is cancelled, the subscription closes or emit
// fails.
func (w *Watcher) Watch(ctx context.Context, class domain.ActivityClass, term string, emit func(Feed) error) error {
	tables, err := w.agg.Tables(class)
	if err != nil {
		return err
	}
	channels := make([]string, 0, len(tables))
	for _, t := range tables {
		channels = append(channels, w.channel(t))
	}

	signals, cleanup, err := w.sub.Subscribe(ctx, channels...)
	if err != nil {
		return fmt.Errorf("activity.Watcher.Watch: %w", err)
	}
	defer cleanup()

	if err := w.push(ctx, class, term, "initial", emit); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-signals:
			if !ok {
				return nil
			}
		}

		if !w.coalesce(ctx, signals) {
			return nil
		}
		if err := w.push(ctx, class, term, "push", emit); err != nil {
			return err
		}
	}
}

// coalesce swallows further signals until settle has passed. It reports false
// when the watch should end.
func (w *Watcher) coalesce(ctx context.Context, signals <-chan []byte) bool {
	if w.settle <= 0 {
		return true
	}
	timer := time.NewTimer(w.settle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-signals:
			if !ok {
				return false
			}
		case <-timer.C:
			return true
		}
	}
}

func (w *Watcher) push(ctx context.Context, class domain.ActivityClass, term, trigger string, emit func(Feed) error) error {
	feed, err := w.agg.aggregate(ctx, class, term, trigger)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	if err := emit(feed); err != nil {
		log.Debug().Err(err).Str("class", string(class)).Msg("activity: feed emit failed")
		return fmt.Errorf("activity.Watcher.Watch: emit: %w", err)
	}
	return nil
}

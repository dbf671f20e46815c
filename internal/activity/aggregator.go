// Package activity reads the platform's activity tables and normalizes them
// into one recency-ordered feed.
package activity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gosuda/ghostmode/internal/domain"
)

var ErrUnknownClass = errors.New("activity: unknown activity class")

// FetchError records a source that failed during an aggregation pass.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("activity: source %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Feed is the result of one aggregation pass. Degraded lists sources whose
// rows are missing because their fetch failed.
type Feed struct {
	Class       domain.ActivityClass `json:"class"`
	Sessions    []domain.Session     `json:"sessions"`
	Degraded    []string             `json:"degraded_sources"`
	GeneratedAt time.Time            `json:"generated_at"`

	Errors []*FetchError `json:"-"`
}

// Options bound the fetch window of every source.
type Options struct {
	Window time.Duration
	Limit  int
}

// Aggregator runs the sources selected by an activity class concurrently and
// merges their sessions.
type Aggregator struct {
	sources []Source
	opts    Options
	now     func() time.Time
}

func NewAggregator(opts Options, sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, opts: opts, now: time.Now}
}

// Aggregate builds the feed for class. The only error besides cancellation is
// ErrUnknownClass; failing sources are logged and reported on the feed.
func (a *Aggregator) Aggregate(ctx context.Context, class domain.ActivityClass) (Feed, error) {
	return a.aggregate(ctx, class, "", "pull")
}

// Search is Aggregate narrowed to sessions whose username or content contains term.
func (a *Aggregator) Search(ctx context.Context, class domain.ActivityClass, term string) (Feed, error) {
	return a.aggregate(ctx, class, term, "pull")
}

func (a *Aggregator) aggregate(ctx context.Context, class domain.ActivityClass, term, trigger string) (Feed, error) {
	selected, err := a.selectSources(class)
	if err != nil {
		return Feed{}, err
	}
	aggregationCount.WithLabelValues(string(class), trigger).Inc()

	filter := domain.ActivityFilter{Limit: a.opts.Limit, Search: term}
	if a.opts.Window > 0 {
		filter.Since = a.now().Add(-a.opts.Window)
	}

	results := make([][]domain.Session, len(selected))
	var (
		mu     sync.Mutex
		failed []*FetchError
	)

	// A plain group: one failing source must not cancel its siblings.
	var g errgroup.Group
	for i, src := range selected {
		g.Go(func() error {
			start := time.Now()
			sessions, err := src.Fetch(ctx, filter)
			sourceFetchDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				sourceFetchErrors.WithLabelValues(src.Name()).Inc()
				log.Error().Err(err).Str("source", src.Name()).Str("class", string(class)).
					Msg("activity: source fetch failed")
				mu.Lock()
				failed = append(failed, &FetchError{Source: src.Name(), Err: err})
				mu.Unlock()
				return nil
			}
			results[i] = sessions
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Feed{}, fmt.Errorf("activity.Aggregator.Aggregate: %w", err)
	}

	merged := make([]domain.Session, 0)
	for _, sessions := range results {
		for _, s := range sessions {
			if matches(s, term) {
				merged = append(merged, s)
			}
		}
	}
	SortByRecency(merged)

	sort.Slice(failed, func(i, j int) bool { return failed[i].Source < failed[j].Source })
	degraded := make([]string, 0, len(failed))
	for _, f := range failed {
		degraded = append(degraded, f.Source)
	}

	return Feed{
		Class:       class,
		Sessions:    merged,
		Degraded:    degraded,
		GeneratedAt: a.now(),
		Errors:      failed,
	}, nil
}

// Tables lists the backing tables read for class.
func (a *Aggregator) Tables(class domain.ActivityClass) ([]string, error) {
	selected, err := a.selectSources(class)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, s := range selected {
		out = append(out, s.Tables()...)
	}
	return out, nil
}

func (a *Aggregator) selectSources(class domain.ActivityClass) ([]Source, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("activity.Aggregator: %w: %q", ErrUnknownClass, class)
	}
	if class == domain.ClassAll {
		return a.sources, nil
	}
	var out []Source
	for _, s := range a.sources {
		if s.Class() == class {
			out = append(out, s)
		}
	}
	return out, nil
}

// SortByRecency orders sessions by start time (creation time when never
// started), newest first.
func SortByRecency(sessions []domain.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].SortTime().After(sessions[j].SortTime())
	})
}

func matches(s domain.Session, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(s.Username), term) ||
		strings.Contains(strings.ToLower(s.Content), term)
}

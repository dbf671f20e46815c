package activity_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/domain"
)

type mockSubscriber struct {
	mu       sync.Mutex
	channels []string
	signals  chan []byte
	err      error
}

func (m *mockSubscriber) Subscribe(_ context.Context, channels ...string) (<-chan []byte, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, nil, m.err
	}
	m.channels = append(m.channels, channels...)
	return m.signals, func() {}, nil
}

func tableChannel(table string) string { return "table:" + table }

func TestWatcher_EmitsInitialThenOnSignal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	sub := &mockSubscriber{signals: make(chan []byte, 8)}
	w := activity.NewWatcher(f.agg, sub, tableChannel, 0)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	feeds := make(chan activity.Feed, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, domain.ClassStreams, "", func(feed activity.Feed) error {
			feeds <- feed
			return nil
		})
	}()

	first := <-feeds
	require.Len(t, first.Sessions, 1)

	f.store.PutStream(domain.LiveStream{ID: "ls2", UserID: "u2", Status: "live", CreatedAt: at(50)})
	sub.signals <- []byte(`{"table":"live_streams"}`)

	second := <-feeds
	require.Len(t, second.Sessions, 2)
	assert.Equal(t, "ls2", second.Sessions[0].ID)

	cancel()
	require.NoError(t, <-done)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	assert.Equal(t, []string{"table:live_streams"}, sub.channels)
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	sub := &mockSubscriber{signals: make(chan []byte, 8)}
	w := activity.NewWatcher(f.agg, sub, tableChannel, 50*time.Millisecond)

	for range 5 {
		sub.signals <- []byte("x")
	}

	var (
		mu    sync.Mutex
		count int
	)
	ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
	defer cancel()

	err := w.Watch(ctx, domain.ClassContent, "", func(activity.Feed) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, count, "initial feed plus one coalesced refresh")
}

func TestWatcher_StopsOnClosedSubscription(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sub := &mockSubscriber{signals: make(chan []byte)}
	close(sub.signals)

	w := activity.NewWatcher(f.agg, sub, tableChannel, 0)
	err := w.Watch(t.Context(), domain.ClassAll, "", func(activity.Feed) error { return nil })
	require.NoError(t, err)
}

func TestWatcher_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	t.Run("unknown class", func(t *testing.T) {
		t.Parallel()

		w := activity.NewWatcher(f.agg, &mockSubscriber{signals: make(chan []byte)}, tableChannel, 0)
		err := w.Watch(t.Context(), domain.ActivityClass("radio"), "", func(activity.Feed) error { return nil })
		require.ErrorIs(t, err, activity.ErrUnknownClass)
	})

	t.Run("subscribe failure", func(t *testing.T) {
		t.Parallel()

		subErr := errors.New("redis down")
		w := activity.NewWatcher(f.agg, &mockSubscriber{err: subErr}, tableChannel, 0)
		err := w.Watch(t.Context(), domain.ClassAll, "", func(activity.Feed) error { return nil })
		require.ErrorIs(t, err, subErr)
	})

	t.Run("emit failure ends the watch", func(t *testing.T) {
		t.Parallel()

		emitErr := errors.New("client gone")
		w := activity.NewWatcher(f.agg, &mockSubscriber{signals: make(chan []byte)}, tableChannel, 0)
		err := w.Watch(t.Context(), domain.ClassAll, "", func(activity.Feed) error { return emitErr })
		require.ErrorIs(t, err, emitErr)
	})
}

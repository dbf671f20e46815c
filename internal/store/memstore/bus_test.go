package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/store/memstore"
)

func TestBus_DeliversToSubscribedChannels(t *testing.T) {
	t.Parallel()

	bus := memstore.NewBus()
	msgs, cleanup, err := bus.Subscribe(t.Context(), "table:posts", "table:calls")
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, bus.Publish(t.Context(), "table:calls", []byte("x")))
	require.NoError(t, bus.Publish(t.Context(), "table:stories", []byte("ignored")))

	select {
	case got := <-msgs:
		assert.Equal(t, []byte("x"), got)
	case <-time.After(time.Second):
		t.Fatal("signal not delivered")
	}

	select {
	case got := <-msgs:
		t.Fatalf("unexpected signal %q", got)
	default:
	}
}

func TestBus_ClosesOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	bus := memstore.NewBus()
	msgs, cleanup, err := bus.Subscribe(ctx, "table:posts")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}

	cleanup()
	require.NoError(t, bus.Publish(t.Context(), "table:posts", []byte("late")))
}

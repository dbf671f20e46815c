package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/api/ws"
	"github.com/gosuda/ghostmode/internal/domain"
)

type mockWatcher struct {
	watchFunc func(ctx context.Context, class domain.ActivityClass, term string, emit func(activity.Feed) error) error
}

func (m *mockWatcher) Watch(ctx context.Context, class domain.ActivityClass, term string, emit func(activity.Feed) error) error {
	return m.watchFunc(ctx, class, term, emit)
}

func TestServeActivity_StreamsFeeds(t *testing.T) {
	t.Parallel()

	watcher := &mockWatcher{
		watchFunc: func(ctx context.Context, class domain.ActivityClass, term string, emit func(activity.Feed) error) error {
			assert.Equal(t, domain.ClassStreams, class)
			assert.Equal(t, "alice", term)
			for _, id := range []string{"ls1", "ls2"} {
				if err := emit(activity.Feed{Class: class, Sessions: []domain.Session{{ID: id, Type: domain.SessionStream}}}); err != nil {
					return err
				}
			}
			<-ctx.Done()
			return nil
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(ws.NewHub(watcher).ServeActivity))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?class=streams&q=alice"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	for _, want := range []string{"ls1", "ls2"} {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)

		var f activity.Feed
		require.NoError(t, json.Unmarshal(data, &f))
		require.Len(t, f.Sessions, 1)
		assert.Equal(t, want, f.Sessions[0].ID)
	}

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))
}

func TestServeActivity_UnknownClass(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub(&mockWatcher{})
	rec := httptest.NewRecorder()

	hub.ServeActivity(rec, httptest.NewRequest(http.MethodGet, "/ws/activity?class=payouts", http.NoBody))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/server/middleware"
)

const writeTimeout = 10 * time.Second

// FeedWatcher is satisfied by *activity.Watcher.
type FeedWatcher interface {
	Watch(ctx context.Context, class domain.ActivityClass, term string, emit func(activity.Feed) error) error
}

// Hub serves live activity feeds over WebSocket.
type Hub struct {
	watcher FeedWatcher
}

func NewHub(watcher FeedWatcher) *Hub {
	return &Hub{watcher: watcher}
}

// ServeActivity streams the feed for ?class= (default all), narrowed by ?q=.
// The full feed is sent on connect and again after every change to the
// class's tables.
func (h *Hub) ServeActivity(w http.ResponseWriter, r *http.Request) {
	class := domain.ActivityClass(r.URL.Query().Get("class"))
	if class == "" {
		class = domain.ClassAll
	}
	if !class.Valid() {
		http.Error(w, "unknown activity class", http.StatusBadRequest)
		return
	}
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles their close frames.
	ctx := conn.CloseRead(r.Context())

	logger := log.With().Str("class", string(class)).Logger()
	if adminID, ok := middleware.AdminIDFromContext(r.Context()); ok {
		logger = logger.With().Str("admin_id", adminID.String()).Logger()
	}
	logger.Debug().Msg("ws: activity feed opened")

	err = h.watcher.Watch(ctx, class, term, func(f activity.Feed) error {
		if f.Sessions == nil {
			f.Sessions = []domain.Session{}
		}
		payload, err := json.Marshal(f)
		if err != nil {
			return err
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return conn.Write(wctx, websocket.MessageText, payload)
	})
	if err != nil {
		logger.Debug().Err(err).Msg("ws: activity feed ended")
		_ = conn.Close(websocket.StatusInternalError, "feed unavailable")
		return
	}

	_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
}

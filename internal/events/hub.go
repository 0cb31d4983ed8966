package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/olahol/melody"

	"budgetly/internal/logger"
)

const sessionUserKey = "user_id"

// Hub pushes events to the owner's open WebSocket sessions.
type Hub struct {
	m *melody.Melody
}

// NewHub creates a hub with keep-alive settings suited to proxied hosting.
// Browser upgrades are accepted only from allowedOrigins; requests without an
// Origin header are not from a browser and pass.
func NewHub(allowedOrigins []string) *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 4096
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second
	m.Upgrader.CheckOrigin = originChecker(allowedOrigins)

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		logger.Get().Debugw("websocket connected", "user_id", userID, "sessions", m.Len())
	})
	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		logger.Get().Debugw("websocket disconnected", "user_id", userID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		userID, _ := s.Get(sessionUserKey)
		logger.Get().Warnw("websocket error", "user_id", userID, "error", err)
	})

	return &Hub{m: m}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// Serve upgrades the request and tags the session with the authenticated user.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]any{sessionUserKey: userID})
}

// Publish implements Publisher.
func (h *Hub) Publish(_ context.Context, event Event) {
	body, err := event.JSON()
	if err != nil {
		logPublishError("websocket", event, err)
		return
	}

	err = h.m.BroadcastFilter(body, func(s *melody.Session) bool {
		id, ok := s.Get(sessionUserKey)
		return ok && id == event.UserID
	})
	if err != nil {
		logPublishError("websocket", event, err)
	}
}

// Sessions reports the number of open sessions.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}

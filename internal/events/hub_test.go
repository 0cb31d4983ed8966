package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseUint(r.URL.Query().Get("user"), 10, 32)
		_ = hub.Serve(w, r, uint(id))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func hubURL(srv *httptest.Server, userID int) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.Itoa(userID)
}

func dialUser(t *testing.T, srv *httptest.Server, userID int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(hubURL(srv, userID), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSessions(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Sessions() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d sessions, have %d", n, hub.Sessions())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDeliversOnlyToOwner(t *testing.T) {
	hub := NewHub([]string{"http://localhost:3000"})
	t.Cleanup(func() { hub.Close() })
	srv := newHubServer(t, hub)

	owner := dialUser(t, srv, 1)
	other := dialUser(t, srv, 2)
	waitForSessions(t, hub, 2)

	hub.Publish(context.Background(), New(ExpenseCreated, 1, 99, map[string]any{"amount": 12.5}))

	owner.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, body, err := owner.ReadMessage()
	if err != nil {
		t.Fatalf("owner did not receive the event: %v", err)
	}
	var got Event
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("invalid event body: %v", err)
	}
	if got.Type != ExpenseCreated || got.UserID != 1 || got.ResourceID != 99 {
		t.Errorf("unexpected event %+v", got)
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("another user's session must not receive the event")
	}
}

func TestHubChecksOrigin(t *testing.T) {
	hub := NewHub([]string{"http://localhost:3000/"})
	t.Cleanup(func() { hub.Close() })
	srv := newHubServer(t, hub)

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{name: "allowed", origin: "http://localhost:3000", ok: true},
		{name: "foreign", origin: "https://evil.example", ok: false},
		{name: "no_origin", origin: "", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(hubURL(srv, 1), header)
			if tt.ok {
				if err != nil {
					t.Fatalf("expected upgrade, got %v", err)
				}
				conn.Close()
				return
			}
			if err == nil {
				conn.Close()
				t.Fatal("expected the upgrade to be refused")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("expected 403, got %v", resp)
			}
		})
	}
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const (
	aliceID = "11111111-1111-4111-8111-111111111111"
	bobID   = "22222222-2222-4222-8222-222222222222"
	carolID = "33333333-3333-4333-8333-333333333333"
)

// scriptedServer fakes the Chirp API surface for client tests: canned REST
// responses plus a websocket endpoint the test can push events through.
type scriptedServer struct {
	mu         sync.Mutex
	srv        *httptest.Server
	authHeader string
	markedSeen []string
	history    []map[string]any
	conn       *websocket.Conn
	connReady  chan struct{}
}

func newScriptedServer(t *testing.T) *scriptedServer {
	t.Helper()

	s := &scriptedServer{connReady: make(chan struct{})}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()

	handle(mux, "POST", "/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"userData": map[string]any{"id": aliceID, "fullName": "Alice", "email": "alice@example.com"},
			"token":    "scripted-token",
		})
	})

	handle(mux, "GET", "/api/messages/users", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.authHeader = r.Header.Get("Authorization")
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"users": []map[string]any{
				{"id": bobID, "fullName": "Bob"},
				{"id": carolID, "fullName": "Carol"},
			},
			"unseenMessages": map[string]int{bobID: 3},
		})
	})

	handle(mux, "GET", "/api/messages/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		history := s.history
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": history})
	})

	handle(mux, "POST", "/api/messages/send/", func(w http.ResponseWriter, r *http.Request) {
		receiverID := strings.TrimPrefix(r.URL.Path, "/api/messages/send/")

		var input struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&input)

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"newMessage": map[string]any{
				"id":         "sent-1",
				"senderId":   aliceID,
				"receiverId": receiverID,
				"text":       input.Text,
				"seen":       false,
				"createdAt":  time.Now().Format(time.RFC3339),
			},
		})
	})

	handle(mux, "PUT", "/api/messages/mark/", func(w http.ResponseWriter, r *http.Request) {
		messageID := strings.TrimPrefix(r.URL.Path, "/api/messages/mark/")

		s.mu.Lock()
		s.markedSeen = append(s.markedSeen, messageID)
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": map[string]any{"id": messageID, "seen": true},
		})
	})

	handle(mux, "GET", "/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		close(s.connReady)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

// handle registers a method-restricted route; ServeMux method patterns like
// "POST /path" need Go 1.22, which is newer than the toolchain here.
func handle(mux *http.ServeMux, method, path string, fn http.HandlerFunc) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// push sends one event frame to the connected client.
func (s *scriptedServer) push(t *testing.T, event string, payload any) {
	t.Helper()

	select {
	case <-s.connReady:
	case <-time.After(3 * time.Second):
		t.Fatal("no websocket connection arrived")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteJSON(map[string]any{"event": event, "payload": payload}); err != nil {
		t.Fatalf("pushing %s event: %v", event, err)
	}
}

func (s *scriptedServer) markedSeenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.markedSeen...)
}

func loggedInClient(t *testing.T, s *scriptedServer) *Client {
	t.Helper()

	c := New(s.srv.URL)
	if _, err := c.Login(context.Background(), "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return c
}

func waitFor(t *testing.T, what string, check func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for !check() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLoginStoresIdentityAndToken(t *testing.T) {
	s := newScriptedServer(t)
	c := loggedInClient(t, s)

	if c.UserID() != aliceID {
		t.Errorf("expected user id %q, got %q", aliceID, c.UserID())
	}

	if _, _, err := c.Users(context.Background()); err != nil {
		t.Fatalf("Users: %v", err)
	}

	s.mu.Lock()
	header := s.authHeader
	s.mu.Unlock()
	if header != "Bearer scripted-token" {
		t.Errorf("expected the bearer token on requests, got %q", header)
	}
}

func TestUsersReplacesUnseenCounts(t *testing.T) {
	s := newScriptedServer(t)
	c := loggedInClient(t, s)

	_, unseen, err := c.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}

	if unseen[bobID] != 3 {
		t.Errorf("expected 3 unseen from bob, got %d", unseen[bobID])
	}
	if got := c.UnseenCounts(); got[bobID] != 3 {
		t.Errorf("local counters not replaced: %v", got)
	}
}

func TestRosterEventUpdatesSnapshot(t *testing.T) {
	s := newScriptedServer(t)
	c := loggedInClient(t, s)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	s.push(t, "getOnlineUsers", []string{aliceID, bobID})

	waitFor(t, "the roster", func() bool {
		roster := c.Roster()
		return len(roster) == 2 && roster[0] == aliceID && roster[1] == bobID
	})
}

func TestPushedMessageForOpenConversation(t *testing.T) {
	s := newScriptedServer(t)
	c := loggedInClient(t, s)

	if _, err := c.OpenConversation(context.Background(), bobID); err != nil {
		t.Fatalf("OpenConversation: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	s.push(t, "newMessage", map[string]any{
		"id":         "pushed-1",
		"senderId":   bobID,
		"receiverId": aliceID,
		"text":       "hi alice",
		"seen":       false,
	})

	waitFor(t, "the appended message", func() bool {
		conversation := c.Conversation()
		return len(conversation) == 1 && conversation[0].ID == "pushed-1"
	})

	// The open conversation immediately acknowledges the message.
	waitFor(t, "the seen acknowledgement", func() bool {
		marked := s.markedSeenIDs()
		return len(marked) == 1 && marked[0] == "pushed-1"
	})

	if counts := c.UnseenCounts(); counts[bobID] != 0 {
		t.Errorf("an open conversation must not accumulate unseen counts, got %v", counts)
	}
}

func TestPushedMessageForClosedConversation(t *testing.T) {
	s := newScriptedServer(t)
	c := loggedInClient(t, s)

	if _, err := c.OpenConversation(context.Background(), bobID); err != nil {
		t.Fatalf("OpenConversation: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	s.push(t, "newMessage", map[string]any{
		"id":         "pushed-2",
		"senderId":   carolID,
		"receiverId": aliceID,
		"text":       "hi from carol",
		"seen":       false,
	})

	waitFor(t, "the unseen counter", func() bool {
		return c.UnseenCounts()[carolID] == 1
	})

	if len(c.Conversation()) != 0 {
		t.Error("a message from another sender must not land in the open conversation")
	}
	if len(s.markedSeenIDs()) != 0 {
		t.Error("a closed conversation must not acknowledge messages")
	}
}

func TestOpenConversationClearsUnseen(t *testing.T) {
	s := newScriptedServer(t)
	c := loggedInClient(t, s)

	if _, _, err := c.Users(context.Background()); err != nil {
		t.Fatalf("Users: %v", err)
	}
	if c.UnseenCounts()[bobID] != 3 {
		t.Fatal("precondition failed: expected unseen messages from bob")
	}

	s.mu.Lock()
	s.history = []map[string]any{
		{"id": "h1", "senderId": bobID, "receiverId": aliceID, "text": "old", "seen": true},
	}
	s.mu.Unlock()

	messages, err := c.OpenConversation(context.Background(), bobID)
	if err != nil {
		t.Fatalf("OpenConversation: %v", err)
	}

	if len(messages) != 1 || messages[0].ID != "h1" {
		t.Errorf("unexpected history: %v", messages)
	}
	if got := c.UnseenCounts()[bobID]; got != 0 {
		t.Errorf("expected the counter cleared, got %d", got)
	}
}

func TestSendAppendsToOpenConversation(t *testing.T) {
	s := newScriptedServer(t)
	c := loggedInClient(t, s)

	if _, err := c.OpenConversation(context.Background(), bobID); err != nil {
		t.Fatalf("OpenConversation: %v", err)
	}

	sent, err := c.Send(context.Background(), bobID, "hello bob", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.Text != "hello bob" {
		t.Errorf("unexpected sent text %q", sent.Text)
	}

	conversation := c.Conversation()
	if len(conversation) != 1 || conversation[0].ID != "sent-1" {
		t.Errorf("expected the sent message appended, got %v", conversation)
	}
}

func TestServerErrorSurfacesAsAPIError(t *testing.T) {
	mux := http.NewServeMux()
	handle(mux, "POST", "/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "Invalid credentials.",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "alice@example.com", "wrong")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.Status)
	}
	if apiErr.Message != "Invalid credentials." {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestConnectRequiresLogin(t *testing.T) {
	s := newScriptedServer(t)
	c := New(s.srv.URL)

	if err := c.Connect(context.Background()); err == nil {
		t.Error("expected an error before login")
	}
}

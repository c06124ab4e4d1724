package rtc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newTestHub starts a hub with a websocket endpoint that registers every
// connection under the userId query parameter, mirroring the production
// channel handler.
func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client := NewClient(hub, conn, r.URL.Query().Get("userId"))
		go client.WritePump()
		hub.Register(client)
		client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	return hub, srv
}

func dialUser(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?userId=" + userID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", userID, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent reads frames until one of the wanted type arrives.
func readEvent(t *testing.T, conn *websocket.Conn, want EventType) json.RawMessage {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	conn.SetReadDeadline(deadline)

	for {
		var envelope struct {
			Event   EventType       `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&envelope); err != nil {
			t.Fatalf("waiting for %s event: %v", want, err)
		}
		if envelope.Event == want {
			return envelope.Payload
		}
	}
}

func readRoster(t *testing.T, conn *websocket.Conn) []string {
	t.Helper()

	payload := readEvent(t, conn, EventOnlineUsers)
	var roster []string
	if err := json.Unmarshal(payload, &roster); err != nil {
		t.Fatalf("decoding roster payload: %v", err)
	}
	return roster
}

func equalRoster(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func waitForRoster(t *testing.T, conn *websocket.Conn, want []string) {
	t.Helper()

	// Roster pushes are full snapshots, so skipping stale ones is safe.
	for i := 0; i < 10; i++ {
		if equalRoster(readRoster(t, conn), want) {
			return
		}
	}
	t.Fatalf("roster never reached %v", want)
}

const (
	userAlice = "11111111-1111-4111-8111-111111111111"
	userBob   = "22222222-2222-4222-8222-222222222222"
)

func TestConnectBroadcastsRoster(t *testing.T) {
	_, srv := newTestHub(t)

	alice := dialUser(t, srv, userAlice)
	waitForRoster(t, alice, []string{userAlice})

	bob := dialUser(t, srv, userBob)
	waitForRoster(t, bob, []string{userAlice, userBob})

	// The earlier connection gets the same snapshot.
	waitForRoster(t, alice, []string{userAlice, userBob})
}

func TestDisconnectBroadcastsShrunkRoster(t *testing.T) {
	_, srv := newTestHub(t)

	alice := dialUser(t, srv, userAlice)
	bob := dialUser(t, srv, userBob)
	waitForRoster(t, alice, []string{userAlice, userBob})

	bob.Close()

	waitForRoster(t, alice, []string{userAlice})
}

func TestDeliverToConnectedReceiver(t *testing.T) {
	hub, srv := newTestHub(t)

	bob := dialUser(t, srv, userBob)
	waitForRoster(t, bob, []string{userBob})

	message := map[string]string{"id": "m1", "text": "hello"}
	if !hub.Deliver(userBob, message) {
		t.Fatal("Deliver reported a miss for a connected receiver")
	}

	payload := readEvent(t, bob, EventNewMessage)

	var got map[string]string
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decoding message payload: %v", err)
	}
	if got["text"] != "hello" {
		t.Errorf(`expected text "hello", got %q`, got["text"])
	}
}

func TestDeliverMissesAbsentReceiver(t *testing.T) {
	hub, srv := newTestHub(t)

	alice := dialUser(t, srv, userAlice)
	waitForRoster(t, alice, []string{userAlice})

	if hub.Deliver(userBob, map[string]string{"id": "m1"}) {
		t.Error("Deliver must report a miss for an offline receiver")
	}
}

func TestSecondConnectionReplacesFirst(t *testing.T) {
	hub, srv := newTestHub(t)

	first := dialUser(t, srv, userAlice)
	waitForRoster(t, first, []string{userAlice})

	second := dialUser(t, srv, userAlice)
	waitForRoster(t, second, []string{userAlice})

	// The first connection receives the session-replaced close code.
	first.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, _, err := first.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		if !websocket.IsCloseError(err, WsCloseCodeReplaced) {
			t.Fatalf("expected close code %d, got %v (%T)", WsCloseCodeReplaced, err, closeErr)
		}
		break
	}

	// Delivery reaches the surviving connection.
	if !hub.Deliver(userAlice, map[string]string{"id": "m1", "text": "still here"}) {
		t.Fatal("Deliver reported a miss after the replacement")
	}
	readEvent(t, second, EventNewMessage)
}

func TestStaleDisconnectKeepsSuccessor(t *testing.T) {
	hub, srv := newTestHub(t)

	first := dialUser(t, srv, userAlice)
	waitForRoster(t, first, []string{userAlice})

	second := dialUser(t, srv, userAlice)
	waitForRoster(t, second, []string{userAlice})

	// The kicked connection's disconnect must not evict its successor.
	first.Close()
	time.Sleep(100 * time.Millisecond)

	if hub.Lookup(userAlice) == nil {
		t.Fatal("successor connection was evicted by the stale disconnect")
	}

	if !equalRoster(hub.Snapshot(), []string{userAlice}) {
		t.Errorf("unexpected roster after stale disconnect: %v", hub.Snapshot())
	}
}

func TestSnapshotSorted(t *testing.T) {
	_, srv := newTestHub(t)

	bob := dialUser(t, srv, userBob)
	waitForRoster(t, bob, []string{userBob})

	alice := dialUser(t, srv, userAlice)
	waitForRoster(t, alice, []string{userAlice, userBob})
}

func TestPushAfterCloseReportsMiss(t *testing.T) {
	c := NewClient(nil, nil, userAlice)

	c.closeSend()

	if c.push([]byte("late frame")) {
		t.Error("push after the queue closed must report a miss")
	}

	// A second close is a no-op.
	c.closeSend()
}

func TestDeliverDuringReconnectChurn(t *testing.T) {
	hub, srv := newTestHub(t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Deliver(userAlice, map[string]string{"id": "m", "text": "x"})
			}
		}
	}()

	// Each dial kicks the previous connection for the same user while the
	// delivery goroutine keeps pushing. A miss is fine; a panic is not.
	for i := 0; i < 25; i++ {
		conn := dialUser(t, srv, userAlice)
		time.Sleep(2 * time.Millisecond)
		conn.Close()
	}

	close(stop)
	wg.Wait()
}

func TestStopClosesConnections(t *testing.T) {
	hub, srv := newTestHub(t)

	alice := dialUser(t, srv, userAlice)
	waitForRoster(t, alice, []string{userAlice})

	hub.Stop()

	alice.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := alice.ReadMessage(); err != nil {
			break
		}
	}

	if len(hub.Snapshot()) != 0 {
		t.Errorf("expected an empty registry after Stop, got %v", hub.Snapshot())
	}
}

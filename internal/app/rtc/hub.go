/*
Package rtc contains the real-time subsystem: the presence registry of live
connections and the per-connection delivery channel used to push new-message
and roster events.

This file defines the Hub, which owns the user-to-connection mapping. All
mutations flow through its run loop; register and unregister both trigger a
broadcast of the full online roster to every live connection.
*/
package rtc

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"chirp/internal/pkg/logx"
)

// Hub is the presence registry: at most one live connection per user id in
// this process. Presence is not persisted; a restart empties the registry
// and everyone appears offline until they reconnect.
type Hub struct {
	// clients maps user id to the live connection, guarded by mu so request
	// goroutines can Lookup and Snapshot while the run loop mutates.
	clients map[string]*Client

	mu sync.RWMutex

	// register queues incoming connections for the run loop.
	register chan *Client

	// unregister queues disconnecting clients for the run loop.
	unregister chan *Client

	// stopChan terminates the run loop.
	stopChan chan struct{}

	// wg waits for the run loop during shutdown.
	wg sync.WaitGroup

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub. Call Run in a goroutine before registering clients.
func NewHub() *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
		logger:     hubLogger,
	}
	h.wg.Add(1)
	return h
}

// Run is the hub's event loop. It serializes every presence mutation and
// broadcasts the roster after each one.
func (h *Hub) Run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Presence hub started.")

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
			h.broadcastRoster()

		case client := <-h.unregister:
			if h.removeClient(client) {
				h.broadcastRoster()
			}

		case <-h.stopChan:
			h.closeAll()
			h.logger.Info().Msg("Presence hub stopped.")
			return
		}
	}
}

// addClient stores the connection. A prior connection for the same user id
// is kicked and replaced: last connection wins.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()

	if existing, ok := h.clients[client.userID]; ok {
		h.logger.Warn().
			Str("client_id", client.userID).
			Msg("User already connected. Replacing the old connection.")

		existing.Kick("Signed in from another connection.")
	}

	h.clients[client.userID] = client
	total := len(h.clients)

	h.mu.Unlock()

	h.logger.Info().
		Str("client_id", client.userID).
		Int("online", total).
		Msg("Client registered.")
}

// removeClient deletes the mapping only when it still points at this exact
// client, so a replaced connection's late disconnect cannot evict its
// successor. Reports whether the roster changed.
func (h *Hub) removeClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.clients[client.userID]
	if !ok {
		h.logger.Warn().
			Str("client_id", client.userID).
			Msg("Unregister for unknown client.")
		return false
	}

	if current != client {
		h.logger.Info().
			Str("stale_client_id", client.userID).
			Msg("Ignoring unregister for stale connection.")
		return false
	}

	delete(h.clients, client.userID)
	client.closeSend()

	h.logger.Info().
		Str("client_id", client.userID).
		Int("online", len(h.clients)).
		Msg("Client unregistered.")
	return true
}

// closeAll shuts down every client send queue and empties the registry.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		client.closeSend()
	}
	h.clients = make(map[string]*Client)
}

// broadcastRoster pushes the full online roster to every live connection.
// O(n) per presence change, which is fine at single-process scale.
func (h *Hub) broadcastRoster() {
	roster := h.Snapshot()

	frame, err := encodeEvent(EventOnlineUsers, roster)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode roster event.")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.push(frame)
	}
}

// Register hands a new connection to the run loop.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopChan:
		client.conn.Close()
	}
}

// Unregister hands a disconnecting client to the run loop.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopChan:
	}
}

// Lookup returns the live connection for a user id, or nil when offline.
func (h *Hub) Lookup(userID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.clients[userID]
}

// Snapshot returns the sorted set of currently online user ids.
func (h *Hub) Snapshot() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roster := make([]string, 0, len(h.clients))
	for id := range h.clients {
		roster = append(roster, id)
	}
	sort.Strings(roster)
	return roster
}

// Deliver pushes a newMessage event to the receiver's connection if one is
// registered. Fire-and-forget: a miss or full queue is reported and dropped,
// never retried. Durability lives in the store, not the channel.
func (h *Hub) Deliver(receiverID string, message any) bool {
	client := h.Lookup(receiverID)
	if client == nil {
		return false
	}

	frame, err := encodeEvent(EventNewMessage, message)
	if err != nil {
		h.logger.Error().Err(err).
			Str("receiver_id", receiverID).
			Msg("Failed to encode newMessage event.")
		return false
	}

	return client.push(frame)
}

// Stop terminates the run loop, closing every live send queue, and waits for
// it to finish.
func (h *Hub) Stop() {
	select {
	case <-h.stopChan:
	default:
		close(h.stopChan)
	}
	h.wg.Wait()
}

/*
Package rtc contains the real-time subsystem: the presence registry of live
connections and the per-connection delivery channel used to push new-message
and roster events.

This file defines the Client struct, one per live WebSocket connection. It
owns the read and write pumps, the heartbeat, and the buffered send queue.
*/
package rtc

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chirp/internal/pkg/logx"
)

const (
	// timeout for writes to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// inbound frames are liveness-only; anything larger is a protocol error.
	maxInboundSize = 512

	// sendQueueSize bounds the per-client outbound queue. A full queue drops
	// the push; the message is still in the store.
	sendQueueSize = 256

	// WsCloseCodeReplaced is a custom close code (4000-4999 range) signaling
	// that the session was replaced by a newer connection for the same user.
	WsCloseCodeReplaced = 4001
)

// frame is one queued outbound write: the WebSocket message type plus its
// payload. Close frames ride the same queue so the write pump stays the
// connection's only writer.
type frame struct {
	messageType int
	data        []byte
}

// Client represents one live WebSocket connection tagged with a user id.
type Client struct {
	// hub is the presence registry this client registers with.
	hub *Hub

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	// userID is the identity tag supplied at connect time.
	userID string

	// send queues outbound frames for the write pump.
	send chan frame

	// mu guards closed. Enqueues and the close both take it, so a frame can
	// never be sent on the queue after it closes.
	mu sync.Mutex

	// closed is set once the send queue is shut down; later pushes report a
	// miss instead of touching the channel.
	closed bool

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	clientLogger := logx.Logger().With().
		Str("client_id", userID).
		Logger()

	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan frame, sendQueueSize),
		logger: clientLogger,
	}
}

// UserID returns the identity tag of this connection.
func (c *Client) UserID() string {
	return c.userID
}

// ReadPump drains inbound frames to service the heartbeat and detect
// closure. All application traffic to the server travels over REST, so
// inbound payloads are discarded. Exiting unregisters the client.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxInboundSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection read ended unexpectedly")
			}
			break
		}
	}
}

// cleanupOnDisconnect unregisters the client and closes the connection when
// the read pump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes queued frames to the connection and keeps the heartbeat
// alive. A closed send queue terminates the pump with a close frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case queued, ok := <-c.send:
			if !c.writeQueuedFrame(queued, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send queue.
// Returns false when the pump should terminate.
func (c *Client) writeQueuedFrame(queued frame, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(queued.messageType, queued.data); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	// A close frame is the last thing this connection says.
	return queued.messageType != websocket.CloseMessage
}

// writePingMessage sends a heartbeat Ping.
// Returns false when the pump should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue queues one frame for the write pump. Fire-and-forget: a closed or
// full queue drops the frame and reports false. The mutex makes the closed
// check and the channel send atomic against closeSend, so a disconnect
// racing a delivery degrades to a miss instead of a send on a closed channel.
func (c *Client) enqueue(queued frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- queued:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame")
		return false
	}
}

// push queues a text frame for delivery.
func (c *Client) push(message []byte) bool {
	return c.enqueue(frame{messageType: websocket.TextMessage, data: message})
}

// closeSend closes the send queue exactly once. Frames already queued are
// still drained by the write pump before it terminates.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Kick queues a session-replaced close frame and shuts the send queue down.
// The frame travels through the write pump like every other outbound write,
// keeping the pump the connection's single writer. Used when a newer
// connection claims the same user id.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeReplaced).
		Str("reason", reason).
		Msg("Closing connection: session replaced.")

	closeMessage := websocket.FormatCloseMessage(WsCloseCodeReplaced, reason)
	c.enqueue(frame{messageType: websocket.CloseMessage, data: closeMessage})

	c.closeSend()
}

/*
Package client is a Go client for the Chirp server.

It wraps the REST surface and the real-time channel, and reconciles the two:
pushed messages land in the locally cached conversation when it is open, or
bump the local unseen counter when it is not. Local unseen counts are a
best-effort cache; each sidebar fetch replaces them with the server's view.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// User mirrors the server's account representation.
type User struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Bio        string    `json:"bio"`
	ProfilePic string    `json:"profilePic,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Message mirrors the server's message representation.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"createdAt"`
}

// APIError is a server-reported failure: the uniform
// {"success": false, "message": ...} body plus the HTTP status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
}

// Client talks to one Chirp server on behalf of one authenticated user.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu       sync.Mutex
	token    string
	userID   string
	openConv string
	messages []Message
	roster   []string
	unseen   map[string]int
	conn     *websocket.Conn
	done     chan struct{}
}

// New returns a Client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		unseen:  map[string]int{},
	}
}

// Signup registers a new account and stores the issued token.
func (c *Client) Signup(ctx context.Context, fullName, email, password, bio string) (User, error) {
	var out struct {
		UserData User   `json:"userData"`
		Token    string `json:"token"`
	}

	body := map[string]string{"fullName": fullName, "email": email, "password": password, "bio": bio}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", body, &out); err != nil {
		return User{}, err
	}

	c.mu.Lock()
	c.token = out.Token
	c.userID = out.UserData.ID
	c.mu.Unlock()

	return out.UserData, nil
}

// Login authenticates and stores the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var out struct {
		UserData User   `json:"userData"`
		Token    string `json:"token"`
	}

	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return User{}, err
	}

	c.mu.Lock()
	c.token = out.Token
	c.userID = out.UserData.ID
	c.mu.Unlock()

	return out.UserData, nil
}

// Connect opens the real-time channel and starts the event loop.
// Login or Signup must have succeeded first.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()

	if userID == "" {
		return fmt.Errorf("connect: not authenticated")
	}

	wsURL, err := c.websocketURL(userID)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	c.conn = conn
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.readLoop(conn, done)

	return nil
}

// websocketURL derives the channel URL from the REST base URL.
func (c *Client) websocketURL(userID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("connect: invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("connect: unsupported scheme %q", u.Scheme)
	}

	u.Path = "/ws"
	u.RawQuery = url.Values{"userId": {userID}}.Encode()
	return u.String(), nil
}

// readLoop consumes pushed events until the connection closes.
func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		var envelope struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}

		if err := conn.ReadJSON(&envelope); err != nil {
			return
		}

		switch envelope.Event {
		case "newMessage":
			var msg Message
			if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
				continue
			}
			c.handleNewMessage(msg)

		case "getOnlineUsers":
			var roster []string
			if err := json.Unmarshal(envelope.Payload, &roster); err != nil {
				continue
			}
			c.mu.Lock()
			c.roster = roster
			c.mu.Unlock()
		}
	}
}

// handleNewMessage reconciles a pushed message with local state. A message
// for the open conversation is appended and immediately marked seen; any
// other sender just bumps the local unseen counter.
func (c *Client) handleNewMessage(msg Message) {
	c.mu.Lock()

	if c.openConv != "" && msg.SenderID == c.openConv {
		c.messages = append(c.messages, msg)
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Best effort; the next history fetch performs the transition anyway.
		_, _ = c.MarkSeen(ctx, msg.ID)
		return
	}

	c.unseen[msg.SenderID]++
	c.mu.Unlock()
}

// Users fetches all other users and the authoritative unseen-count map,
// replacing the local best-effort counters.
func (c *Client) Users(ctx context.Context) ([]User, map[string]int, error) {
	var out struct {
		Users          []User         `json:"users"`
		UnseenMessages map[string]int `json:"unseenMessages"`
	}

	if err := c.doJSON(ctx, http.MethodGet, "/api/messages/users", nil, &out); err != nil {
		return nil, nil, err
	}

	if out.UnseenMessages == nil {
		out.UnseenMessages = map[string]int{}
	}

	c.mu.Lock()
	c.unseen = make(map[string]int, len(out.UnseenMessages))
	for id, n := range out.UnseenMessages {
		c.unseen[id] = n
	}
	c.mu.Unlock()

	return out.Users, out.UnseenMessages, nil
}

// OpenConversation fetches the full history with the other user and makes it
// the open conversation. The server marks unseen messages from that user as
// seen, so the local counter resets.
func (c *Client) OpenConversation(ctx context.Context, otherID string) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}

	if err := c.doJSON(ctx, http.MethodGet, "/api/messages/"+otherID, nil, &out); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.openConv = otherID
	c.messages = append([]Message(nil), out.Messages...)
	delete(c.unseen, otherID)
	c.mu.Unlock()

	return out.Messages, nil
}

// CloseConversation clears the open conversation; subsequent pushes from its
// sender count as unseen again.
func (c *Client) CloseConversation() {
	c.mu.Lock()
	c.openConv = ""
	c.messages = nil
	c.mu.Unlock()
}

// Send submits a message. text may be empty when image (a data URL) is set.
// The sent message is appended locally when its conversation is open.
func (c *Client) Send(ctx context.Context, receiverID, text, image string) (Message, error) {
	var out struct {
		NewMessage Message `json:"newMessage"`
	}

	body := map[string]string{}
	if text != "" {
		body["text"] = text
	}
	if image != "" {
		body["image"] = image
	}

	if err := c.doJSON(ctx, http.MethodPost, "/api/messages/send/"+receiverID, body, &out); err != nil {
		return Message{}, err
	}

	c.mu.Lock()
	if c.openConv == receiverID {
		c.messages = append(c.messages, out.NewMessage)
	}
	c.mu.Unlock()

	return out.NewMessage, nil
}

// MarkSeen marks a single message as seen.
func (c *Client) MarkSeen(ctx context.Context, messageID string) (Message, error) {
	var out struct {
		Message Message `json:"message"`
	}

	if err := c.doJSON(ctx, http.MethodPut, "/api/messages/mark/"+messageID, nil, &out); err != nil {
		return Message{}, err
	}
	return out.Message, nil
}

// Roster returns the last pushed online roster.
func (c *Client) Roster() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.roster...)
}

// UnseenCounts returns a copy of the local unseen-count map.
func (c *Client) UnseenCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, len(c.unseen))
	for id, n := range c.unseen {
		counts[id] = n
	}
	return counts
}

// Conversation returns a copy of the open conversation's message list.
func (c *Client) Conversation() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// UserID returns the authenticated user's id, empty before login.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Close shuts the real-time channel down and waits for the event loop.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	if done != nil {
		<-done
	}
	return err
}

// doJSON performs one REST call with the bearer token attached and decodes
// the response body into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	var probe struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	decoder := json.NewDecoder(res.Body)
	raw := json.RawMessage{}
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}

	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}

	if !probe.Success {
		return &APIError{Status: res.StatusCode, Message: probe.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}
	return nil
}

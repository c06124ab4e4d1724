package rtc

import "encoding/json"

// EventType names a server-to-client event on the real-time channel.
type EventType string

const (
	// EventNewMessage carries a freshly persisted message to its receiver.
	EventNewMessage EventType = "newMessage"

	// EventOnlineUsers carries the full roster of online user ids. It is
	// always the complete set, never a delta.
	EventOnlineUsers EventType = "getOnlineUsers"
)

// Event is the wire envelope for every frame pushed over the channel.
type Event struct {
	Event   EventType `json:"event"`
	Payload any       `json:"payload"`
}

// encodeEvent marshals an event envelope for transmission.
func encodeEvent(eventType EventType, payload any) ([]byte, error) {
	return json.Marshal(Event{Event: eventType, Payload: payload})
}

package chat

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Event names on the live channel.
const (
	EventAddUser     = "addUser"     // client -> server, data: user id
	EventSendMessage = "sendMessage" // client -> server, data: Outgoing
	EventGetMessage  = "getMessage"  // server -> client, data: Incoming
)

// Envelope is one text frame on the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outgoing is a transient message pushed to the recipient's live channel.
type Outgoing struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

// Incoming is a transient message pushed by the server.
type Incoming struct {
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

// EncodeEvent marshals an envelope for event carrying data.
func EncodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", event, err)
	}
	return frame, nil
}

// DecodeEvent splits a frame into its envelope.
func DecodeEvent(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event name")
	}
	return env, nil
}

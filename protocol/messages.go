package protocol

import "encoding/json"

// Message types
const (
	TypePing   = "ping"
	TypePong   = "pong"
	TypeStatus = "status"
	TypeReset  = "reset"
	TypeError  = "error"
)

// Error codes
const (
	ErrInvalidMessage = "INVALID_MESSAGE"
	ErrUnknownType    = "UNKNOWN_TYPE"
)

// Message is the base envelope for all WebSocket messages
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PingPayload for ping messages
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// PongPayload for pong messages
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// InfoChannel is a live diagnostic value.
type InfoChannel struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// InfoRow is one name/value row of the diagnostics table.
type InfoRow struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StatusPayload carries the engine diagnostics and the channel values of the last cycle.
type StatusPayload struct {
	Info     []InfoChannel `json:"info"`
	Table    []InfoRow     `json:"table"`
	Error    string        `json:"error,omitempty"`
	Channels []float32     `json:"channels"`
}

// ErrorPayload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a new message with the given type and payload
func NewMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// ParsePayload unmarshals the payload into the given struct
func (m *Message) ParsePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

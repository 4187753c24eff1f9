// Package streaming defines the messages pushed to live viewer clients.
package streaming

import (
	"encoding/json"
	"fmt"
)

// Message type constants of the live stream.
const (
	TypeStatus = "status"
	TypeError  = "error"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is sent before the server closes a stream it cannot serve.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// Unmarshal decodes an envelope and its payload into out.
func Unmarshal(data []byte, out any) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("unmarshal envelope: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return env.Type, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
	}
	return env.Type, nil
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebSocketMessageType represents message type constants
type WebSocketMessageType string

const (
	EventMessage WebSocketMessageType = "event"
	ErrorMessage WebSocketMessageType = "error"
	PongMessage  WebSocketMessageType = "pong"
)

// StandardMessage is the envelope sent to websocket clients.
type StandardMessage struct {
	ID        string               `json:"id"`
	Type      WebSocketMessageType `json:"type"`
	Event     string               `json:"event,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   json.RawMessage      `json:"payload"`
}

func NewStandardMessage(msgType WebSocketMessageType, event string, payload json.RawMessage) *StandardMessage {
	return &StandardMessage{
		ID:        uuid.New().String(),
		Type:      msgType,
		Event:     event,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// FromEvent wraps a domain event for delivery to the actor's clients.
func FromEvent(e *Event) *StandardMessage {
	return NewStandardMessage(EventMessage, e.Event, e.Data)
}

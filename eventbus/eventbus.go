package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event is the payload published to the audit topic.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher is the abstraction over the audit event transport.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NewEvent wraps a typed audit event (see package events) into an Event.
func NewEvent(id, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Event{ID: id, Type: eventType, Payload: data}, nil
}

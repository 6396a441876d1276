// Package events defines the audit events the pipeline publishes. Every
// pipeline outcome is recorded here, including partial successes that the
// user-facing response reports as a failure.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	ContentGenerationCompleted EventType = "content.generation_completed"
	ContentGenerationFailed    EventType = "content.generation_failed"
	ContentDeleted             EventType = "content.deleted"
)

// BaseEvent is the envelope shared by all audit events.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func NewBaseEvent(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    "postforge",
		Version:   "1.0",
	}
}

// ContentGenerationCompletedEvent records a persisted generation, with the
// per-format failure reasons preserved for auditing.
type ContentGenerationCompletedEvent struct {
	BaseEvent
	ContentID        string            `json:"content_id"`
	UserID           string            `json:"user_id"`
	SucceededFormats []string          `json:"succeeded_formats"`
	FailedFormats    map[string]string `json:"failed_formats,omitempty"`
	StorageBytes     int64             `json:"storage_bytes"`
	DurationMs       int64             `json:"duration_ms"`
}

// ContentGenerationFailedEvent records a request that produced no durable
// record. PartialFormats lists formats that had succeeded before the
// request failed, so they are not silently discarded from the audit trail.
type ContentGenerationFailedEvent struct {
	BaseEvent
	UserID         string            `json:"user_id"`
	Reason         string            `json:"reason"`
	PartialFormats []string          `json:"partial_formats,omitempty"`
	FailedFormats  map[string]string `json:"failed_formats,omitempty"`
	DurationMs     int64             `json:"duration_ms"`
}

// ContentDeletedEvent records an explicit user delete.
type ContentDeletedEvent struct {
	BaseEvent
	ContentID     string `json:"content_id"`
	UserID        string `json:"user_id"`
	BytesReleased int64  `json:"bytes_released"`
}

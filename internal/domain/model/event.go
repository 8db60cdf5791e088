package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventStatus tracks delivery of an outbox event.
type EventStatus string

const (
	EventStatusNew        EventStatus = "new"
	EventStatusProcessing EventStatus = "processing"
	EventStatusSent       EventStatus = "sent"
	EventStatusFailed     EventStatus = "failed"
)

// Event topics.
const (
	TopicInvoicePaid       = "invoice.paid"
	TopicBonusCredited     = "bonus.credited"
	TopicBookmarksArchived = "bookmarks.archived"
	TopicTrackArchived     = "track.archived"
	TopicArchiveConflict   = "archive.conflict"
)

// Event is a domain event stored in the outbox until relayed.
type Event struct {
	ID        uuid.UUID
	Topic     string
	Key       string
	Payload   []byte
	Status    EventStatus
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEvent builds a new outbox event with a JSON payload.
func NewEvent(topic, key string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return Event{
		ID:      uuid.New(),
		Topic:   topic,
		Key:     key,
		Payload: body,
		Status:  EventStatusNew,
	}, nil
}

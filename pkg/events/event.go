package events

import (
	"context"
	"time"
)

// Event types published on the bus, as the suffix of "events.<type>"
const (
	TypeTurnCompleted     = "chat.turn_completed"
	TypeSessionReset      = "chat.session_reset"
	TypeDocumentsIngested = "documents.ingested"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is implemented by the NATS publisher and by NopPublisher
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event; used when no bus is configured
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

func NewTurnCompleted(sessionID, model string, failed bool, chunks int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"model":      model,
			"failed":     failed,
			"chunks":     chunks,
		},
		OccurredAt: at,
	}
}

func NewSessionReset(sessionID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:       TypeSessionReset,
		Data:       map[string]interface{}{"session_id": sessionID},
		OccurredAt: at,
	}
}

func NewDocumentsIngested(paths []string, chunks int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentsIngested,
		Data: map[string]interface{}{
			"paths":  paths,
			"chunks": chunks,
		},
		OccurredAt: at,
	}
}

package eventsourcing

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain event describing a change that has happened to an aggregate.
type Event interface {
	AggregateID() string
	EventType() string
}

// EventMetadata travels with every committed event.
//
// CorrelationID is shared by every event and command derived from one
// originating request. CausationID points at the message that directly
// triggered the event; it is empty for events that start a chain.
type EventMetadata struct {
	EventType     string            `json:"eventType"`
	EventID       uuid.UUID         `json:"eventId"`
	CorrelationID uuid.UUID         `json:"correlationId"`
	CausationID   uuid.NullUUID     `json:"causationId"`
	Timestamp     time.Time         `json:"timestamp"`
	Headers       map[string]string `json:"headers,omitempty"`
}

// Envelope pairs a domain event with its metadata and its position in the stream.
// Version is 1-based: the first event of a stream has Version 1.
type Envelope struct {
	StreamID string
	Version  uint64
	Event    Event
	Metadata EventMetadata
}

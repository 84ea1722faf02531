package eventsourcing

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	streamIDKey      ctxKey = "streamID"
	eventIDKey       ctxKey = "eventID"
	versionKey       ctxKey = "version"
	metadataKey      ctxKey = "metadata"
	correlationIDKey ctxKey = "correlationID"
	causationIDKey   ctxKey = "causationID"
)

// WithEnvelope adds the context of a consumed event to ctx. Anything decided
// in reaction to the event shares its correlation id and is caused by it.
func WithEnvelope(ctx context.Context, env Envelope) context.Context {
	ctx = context.WithValue(ctx, streamIDKey, env.StreamID)
	ctx = context.WithValue(ctx, eventIDKey, env.Metadata.EventID)
	ctx = context.WithValue(ctx, versionKey, env.Version)
	ctx = context.WithValue(ctx, metadataKey, env.Metadata)
	ctx = WithCorrelationID(ctx, env.Metadata.CorrelationID)
	return WithCausationID(ctx, env.Metadata.EventID)
}

// WithCorrelationID sets the correlation id used for events appended under ctx.
func WithCorrelationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithCausationID sets the id of the message that caused the work under ctx.
func WithCausationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, causationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id or uuid.Nil if not present.
func CorrelationIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(correlationIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// CausationFromContext returns the causation id; Valid is false when absent.
func CausationFromContext(ctx context.Context) uuid.NullUUID {
	if id, ok := ctx.Value(causationIDKey).(uuid.UUID); ok && id != uuid.Nil {
		return uuid.NullUUID{UUID: id, Valid: true}
	}
	return uuid.NullUUID{}
}

// StreamIDFromContext returns the StreamID or "" if not present
func StreamIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(streamIDKey).(string); ok {
		return s
	}
	return ""
}

// EventIDFromContext returns the EventID or uuid.Nil if not present
func EventIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(eventIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// VersionFromContext returns the Version or 0 if not present
func VersionFromContext(ctx context.Context) uint64 {
	if ver, ok := ctx.Value(versionKey).(uint64); ok {
		return ver
	}
	return 0
}

// MetadataFromContext returns the consumed event's metadata.
func MetadataFromContext(ctx context.Context) (EventMetadata, bool) {
	md, ok := ctx.Value(metadataKey).(EventMetadata)
	return md, ok
}

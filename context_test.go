package eventsourcing

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type parcelScanned struct {
	ShipmentID string
}

func (e parcelScanned) AggregateID() string { return e.ShipmentID }
func (parcelScanned) EventType() string     { return "test.ParcelScanned" }

func TestContextGetters(t *testing.T) {
	eventID := uuid.New()
	correlationID := uuid.New()

	env := Envelope{
		StreamID: "stream-123",
		Event:    parcelScanned{ShipmentID: "s-456"},
		Version:  7,
		Metadata: EventMetadata{
			EventType:     "test.ParcelScanned",
			EventID:       eventID,
			CorrelationID: correlationID,
		},
	}

	ctxWithEnv := WithEnvelope(t.Context(), env)
	emptyCtx := t.Context()

	tests := []struct {
		name string
		ctx  context.Context
		fn   func(context.Context) any
		want any
	}{
		{
			name: "StreamIDFromContext with value",
			ctx:  ctxWithEnv,
			fn:   func(ctx context.Context) any { return StreamIDFromContext(ctx) },
			want: "stream-123",
		},
		{
			name: "StreamIDFromContext without value",
			ctx:  emptyCtx,
			fn:   func(ctx context.Context) any { return StreamIDFromContext(ctx) },
			want: "",
		},
		{
			name: "EventIDFromContext with value",
			ctx:  ctxWithEnv,
			fn:   func(ctx context.Context) any { return EventIDFromContext(ctx) },
			want: eventID,
		},
		{
			name: "EventIDFromContext without value",
			ctx:  emptyCtx,
			fn:   func(ctx context.Context) any { return EventIDFromContext(ctx) },
			want: uuid.Nil,
		},
		{
			name: "VersionFromContext with value",
			ctx:  ctxWithEnv,
			fn:   func(ctx context.Context) any { return VersionFromContext(ctx) },
			want: uint64(7),
		},
		{
			name: "VersionFromContext without value",
			ctx:  emptyCtx,
			fn:   func(ctx context.Context) any { return VersionFromContext(ctx) },
			want: uint64(0),
		},
		{
			name: "CorrelationIDFromContext follows the envelope",
			ctx:  ctxWithEnv,
			fn:   func(ctx context.Context) any { return CorrelationIDFromContext(ctx) },
			want: correlationID,
		},
		{
			name: "CausationFromContext is the consumed event",
			ctx:  ctxWithEnv,
			fn:   func(ctx context.Context) any { return CausationFromContext(ctx) },
			want: uuid.NullUUID{UUID: eventID, Valid: true},
		},
		{
			name: "CausationFromContext without value",
			ctx:  emptyCtx,
			fn:   func(ctx context.Context) any { return CausationFromContext(ctx) },
			want: uuid.NullUUID{},
		},
		{
			name: "CorrelationIDFromContext set explicitly",
			ctx:  WithCorrelationID(emptyCtx, correlationID),
			fn:   func(ctx context.Context) any { return CorrelationIDFromContext(ctx) },
			want: correlationID,
		},
		{
			name: "CausationFromContext ignores nil id",
			ctx:  WithCausationID(emptyCtx, uuid.Nil),
			fn:   func(ctx context.Context) any { return CausationFromContext(ctx) },
			want: uuid.NullUUID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.ctx); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	md, ok := MetadataFromContext(ctxWithEnv)
	if !ok || md.EventID != eventID {
		t.Errorf("MetadataFromContext = %v, %v", md, ok)
	}
	if _, ok := MetadataFromContext(emptyCtx); ok {
		t.Error("MetadataFromContext on empty context should report false")
	}
}

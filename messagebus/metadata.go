package messagebus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"

	es "github.com/terraskye/eventsourcing-pm"
)

// Metadata keys. The correlation id travels under Watermill's own key so
// that the CorrelationID middleware carries it.
const (
	TypeKey        = "type"
	AggregateIDKey = "aggregate_id"
	StreamIDKey    = "stream_id"
	VersionKey     = "version"
	CausationKey   = "causation_id"
	TimestampKey   = "timestamp"
	headerPrefix   = "header."
)

func envelopeMessage(env es.Envelope) (*message.Message, error) {
	payload, err := json.Marshal(env.Event)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", env.Metadata.EventType, err)
	}

	msg := message.NewMessage(env.Metadata.EventID.String(), payload)
	msg.Metadata.Set(TypeKey, env.Metadata.EventType)
	msg.Metadata.Set(AggregateIDKey, env.Event.AggregateID())
	msg.Metadata.Set(StreamIDKey, env.StreamID)
	msg.Metadata.Set(VersionKey, strconv.FormatUint(env.Version, 10))
	msg.Metadata.Set(TimestampKey, env.Metadata.Timestamp.Format(time.RFC3339Nano))
	if env.Metadata.CausationID.Valid {
		msg.Metadata.Set(CausationKey, env.Metadata.CausationID.UUID.String())
	}
	for k, v := range env.Metadata.Headers {
		msg.Metadata.Set(headerPrefix+k, v)
	}
	middleware.SetCorrelationID(env.Metadata.CorrelationID.String(), msg)
	return msg, nil
}

// newMessage builds a message outside any stream. It continues the
// correlation of ctx, or starts a new one.
func newMessage(ctx context.Context, msgType, aggregateID string, v any) (*message.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msgType, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(TypeKey, msgType)
	msg.Metadata.Set(AggregateIDKey, aggregateID)
	msg.Metadata.Set(TimestampKey, time.Now().UTC().Format(time.RFC3339Nano))

	correlation := es.CorrelationIDFromContext(ctx)
	if correlation == uuid.Nil {
		correlation = uuid.New()
	}
	middleware.SetCorrelationID(correlation.String(), msg)

	if causation := es.CausationFromContext(ctx); causation.Valid {
		msg.Metadata.Set(CausationKey, causation.UUID.String())
	}
	return msg, nil
}

// consumerContext is the context a handler runs under. Whatever the handler
// decides shares the correlation id of msg and is caused by it.
func consumerContext(msg *message.Message) context.Context {
	ctx := msg.Context()
	md := msg.Metadata

	correlation, _ := uuid.Parse(middleware.MessageCorrelationID(msg))
	id, err := uuid.Parse(msg.UUID)
	if err != nil {
		return es.WithCorrelationID(ctx, correlation)
	}

	streamID := md.Get(StreamIDKey)
	if streamID == "" {
		return es.WithCausationID(es.WithCorrelationID(ctx, correlation), id)
	}

	version, _ := strconv.ParseUint(md.Get(VersionKey), 10, 64)
	timestamp, _ := time.Parse(time.RFC3339Nano, md.Get(TimestampKey))

	var causation uuid.NullUUID
	if c, err := uuid.Parse(md.Get(CausationKey)); err == nil {
		causation = uuid.NullUUID{UUID: c, Valid: true}
	}

	var headers map[string]string
	for k, v := range md {
		if name, ok := strings.CutPrefix(k, headerPrefix); ok {
			if headers == nil {
				headers = make(map[string]string)
			}
			headers[name] = v
		}
	}

	return es.WithEnvelope(ctx, es.Envelope{
		StreamID: streamID,
		Version:  version,
		Metadata: es.EventMetadata{
			EventType:     md.Get(TypeKey),
			EventID:       id,
			CorrelationID: correlation,
			CausationID:   causation,
			Timestamp:     timestamp,
			Headers:       headers,
		},
	})
}

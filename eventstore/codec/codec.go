// Package codec turns envelopes into storable records and back.
//
// Event payloads and metadata are stored as two separate JSON documents so
// backends can index the metadata without decoding the event.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	es "github.com/terraskye/eventsourcing-pm"
)

// Record is the storage form of an envelope.
type Record struct {
	StreamID string
	Version  uint64
	EventID  uuid.UUID
	Type     string
	Data     []byte
	Metadata []byte
}

// Codec encodes with encoding/json and decodes through an event registry.
type Codec struct {
	registry *es.EventRegistry
}

func New(registry *es.EventRegistry) *Codec {
	return &Codec{registry: registry}
}

// Encode converts env, whose Version must already be assigned.
func (c *Codec) Encode(env es.Envelope) (Record, error) {
	if env.Event == nil {
		return Record{}, fmt.Errorf("encode stream %q: %w", env.StreamID, es.ErrIncompatibleEvent)
	}
	data, err := c.registry.Encode(env.Event)
	if err != nil {
		return Record{}, fmt.Errorf("encode event %s: %w", env.Event.EventType(), err)
	}

	md := env.Metadata
	if md.EventType == "" {
		md.EventType = env.Event.EventType()
	}
	if md.EventID == uuid.Nil {
		md.EventID = uuid.New()
	}
	metadata, err := json.Marshal(md)
	if err != nil {
		return Record{}, fmt.Errorf("encode metadata of %s: %w", md.EventType, err)
	}

	return Record{
		StreamID: env.StreamID,
		Version:  env.Version,
		EventID:  md.EventID,
		Type:     md.EventType,
		Data:     data,
		Metadata: metadata,
	}, nil
}

// Decode rebuilds the envelope stored in r.
func (c *Codec) Decode(r Record) (es.Envelope, error) {
	ev, err := c.registry.Decode(r.Type, r.Data)
	if err != nil {
		return es.Envelope{}, es.WrapEventStoreError(fmt.Errorf("stream %q version %d: %w", r.StreamID, r.Version, err))
	}

	var md es.EventMetadata
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &md); err != nil {
			return es.Envelope{}, es.WrapEventStoreError(fmt.Errorf("stream %q version %d: metadata: %w", r.StreamID, r.Version, err))
		}
	}
	md.EventType = r.Type
	md.EventID = r.EventID

	return es.Envelope{
		StreamID: r.StreamID,
		Version:  r.Version,
		Event:    ev,
		Metadata: md,
	}, nil
}

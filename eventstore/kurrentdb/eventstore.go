// Package kurrentdb stores streams in KurrentDB.
//
// Versions are counted from 1 while KurrentDB revisions start at 0, so an
// expected Revision(n) is sent as StreamRevision{Value: n-1}.
package kurrentdb

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kurrent-io/KurrentDB-Client-Go/kurrentdb"
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/eventstore/codec"
)

var _ es.EventStore = (*EventStore)(nil)

type EventStore struct {
	client *kurrentdb.Client
	codec  *codec.Codec
	prefix string
}

type Option func(*EventStore)

// WithStreamPrefix namespaces every stream name written and read.
func WithStreamPrefix(prefix string) Option {
	return func(s *EventStore) { s.prefix = prefix }
}

// NewEventStore creates a KurrentDB-backed eventstore.
func NewEventStore(client *kurrentdb.Client, registry *es.EventRegistry, opts ...Option) *EventStore {
	s := &EventStore{client: client, codec: codec.New(registry)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (e *EventStore) Save(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error) {
	streamID, err := es.BatchStreamID(events)
	if err != nil {
		return es.AppendResult{}, err
	}
	if len(events) == 0 {
		return es.AppendResult{Successful: true}, nil
	}

	state, err := streamState(streamID, revision)
	if err != nil {
		return es.AppendResult{}, err
	}

	data := make([]kurrentdb.EventData, len(events))
	for i, env := range events {
		rec, err := e.codec.Encode(env)
		if err != nil {
			return es.AppendResult{}, err
		}
		data[i] = kurrentdb.EventData{
			EventID:     rec.EventID,
			EventType:   rec.Type,
			ContentType: kurrentdb.ContentTypeJson,
			Data:        rec.Data,
			Metadata:    rec.Metadata,
		}
	}

	result, err := e.client.AppendToStream(ctx, e.prefix+streamID, kurrentdb.AppendToStreamOptions{
		StreamState: state,
	}, data...)
	if err != nil {
		if code, ok := errorCode(err); ok && code == kurrentdb.ErrorCodeWrongExpectedVersion {
			return es.AppendResult{StreamID: streamID}, &es.ConcurrencyError{Stream: streamID, Reason: "wrong expected version", Err: err}
		}
		return es.AppendResult{}, es.WrapEventStoreError(fmt.Errorf("append to stream %q: %w", streamID, err))
	}

	return es.AppendResult{
		Successful:          true,
		StreamID:            streamID,
		NextExpectedVersion: result.NextExpectedVersion + 1,
	}, nil
}

func (e *EventStore) LoadStream(ctx context.Context, id string) (*es.Iterator[es.Envelope], error) {
	stream, err := e.client.ReadStream(ctx, e.prefix+id, kurrentdb.ReadStreamOptions{
		Direction:      kurrentdb.Forwards,
		From:           kurrentdb.Start{},
		ResolveLinkTos: true,
	}, ^uint64(0))
	if err != nil {
		return nil, e.readError(id, err)
	}

	// the first Recv surfaces a missing stream, so it is done eagerly
	first, err := stream.Recv()
	if err != nil {
		stream.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("load stream %q: %w", id, es.ErrStreamNotFound)
		}
		return nil, e.readError(id, err)
	}

	pending := first
	iter := es.NewIteratorFunc(func(ctx context.Context) (es.Envelope, error) {
		if err := ctx.Err(); err != nil {
			return es.Envelope{}, err
		}
		resolved := pending
		pending = nil
		if resolved == nil {
			var err error
			if resolved, err = stream.Recv(); err != nil {
				if errors.Is(err, io.EOF) {
					return es.Envelope{}, io.EOF
				}
				return es.Envelope{}, e.readError(id, err)
			}
		}
		return e.decode(id, resolved)
	})
	return iter.OnClose(stream.Close), nil
}

// StreamVersion reads the last event of the stream only.
func (e *EventStore) StreamVersion(ctx context.Context, id string) (uint64, error) {
	stream, err := e.client.ReadStream(ctx, e.prefix+id, kurrentdb.ReadStreamOptions{
		Direction: kurrentdb.Backwards,
		From:      kurrentdb.End{},
	}, 1)
	if err != nil {
		return 0, e.readError(id, err)
	}
	defer stream.Close()

	last, err := stream.Recv()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("stream version %q: %w", id, es.ErrStreamNotFound)
	}
	if err != nil {
		return 0, e.readError(id, err)
	}
	return last.OriginalEvent().EventNumber + 1, nil
}

func (e *EventStore) Close() error {
	return e.client.Close()
}

func (e *EventStore) decode(id string, resolved *kurrentdb.ResolvedEvent) (es.Envelope, error) {
	recorded := resolved.OriginalEvent()
	return e.codec.Decode(codec.Record{
		StreamID: id,
		Version:  recorded.EventNumber + 1,
		EventID:  recorded.EventID,
		Type:     recorded.EventType,
		Data:     recorded.Data,
		Metadata: recorded.UserMetadata,
	})
}

func (e *EventStore) readError(id string, err error) error {
	if code, ok := errorCode(err); ok && code == kurrentdb.ErrorCodeResourceNotFound {
		return fmt.Errorf("load stream %q: %w", id, es.ErrStreamNotFound)
	}
	return es.WrapEventStoreError(fmt.Errorf("read stream %q: %w", id, err))
}

func streamState(streamID string, revision es.StreamState) (kurrentdb.StreamState, error) {
	switch rev := revision.(type) {
	case es.Any:
		return kurrentdb.Any{}, nil
	case es.NoStream:
		return kurrentdb.NoStream{}, nil
	case es.StreamExists:
		return kurrentdb.StreamExists{}, nil
	case es.Revision:
		if rev == 0 {
			return kurrentdb.NoStream{}, nil
		}
		return kurrentdb.StreamRevision{Value: uint64(rev) - 1}, nil
	default:
		return nil, fmt.Errorf("stream %q: unsupported revision type %T: %w", streamID, revision, es.ErrInvalidRevision)
	}
}

func errorCode(err error) (kurrentdb.ErrorCode, bool) {
	var kErr *kurrentdb.Error
	if errors.As(err, &kErr) {
		return kErr.Code(), true
	}
	return 0, false
}

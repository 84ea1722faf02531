package eventsourcing

import (
	"context"
)

// EventStore defines the contract for an append-only event store backend.
//
// Implementations must guarantee:
//   - Events for a given stream are stored and returned in append order.
//   - A Save whose StreamState precondition does not hold commits nothing and
//     reports a *StreamRevisionConflictError (or ErrStreamExists /
//     ErrStreamNotFound for the NoStream / StreamExists markers).
//   - A stream that was never written is reported as ErrStreamNotFound,
//     distinct from a stream that has events.
type EventStore interface {
	// Save appends all envelopes to the stream named by their StreamID.
	// All envelopes must share one StreamID (ErrInvalidEventBatch otherwise).
	Save(ctx context.Context, events []Envelope, revision StreamState) (AppendResult, error)

	// LoadStream reads a stream forward from its first event. Iteration ends
	// with a nil Err once the stream is exhausted.
	LoadStream(ctx context.Context, id string) (*Iterator[Envelope], error)

	// StreamVersion returns the number of committed events in the stream
	// without reading them, or ErrStreamNotFound.
	StreamVersion(ctx context.Context, id string) (uint64, error)

	// Close releases any resources held by the EventStore. Implementations
	// should make Close idempotent.
	Close() error
}

// AppendResult describes the outcome of an append operation.
type AppendResult struct {
	Successful          bool
	StreamID            string
	NextExpectedVersion uint64
}

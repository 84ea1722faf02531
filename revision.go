package eventsourcing

import "fmt"

// StreamState is the precondition an append is checked against.
type StreamState interface {
	streamState()
}

// Any means append without checking the current revision.
type Any struct{}

func (Any) streamState() {}

// NoStream means the stream must not exist yet.
type NoStream struct{}

func (NoStream) streamState() {}

// StreamExists means the stream must already hold at least one event.
type StreamExists struct{}

func (StreamExists) streamState() {}

// Revision matches exactly the number of events committed to the stream.
type Revision uint64

func (Revision) streamState() {}

// CheckStreamState reports whether a stream currently holding current events
// satisfies state. Backends call it inside their write critical section.
func CheckStreamState(streamID string, state StreamState, current uint64) error {
	switch rev := state.(type) {
	case Any:
		return nil
	case NoStream:
		if current != 0 {
			return fmt.Errorf("stream %q: already exists: %w", streamID, ErrStreamExists)
		}
	case StreamExists:
		if current == 0 {
			return fmt.Errorf("stream %q: should exist: %w", streamID, ErrStreamNotFound)
		}
	case Revision:
		if current != uint64(rev) {
			return StreamRevisionConflictError{
				Stream:           streamID,
				ExpectedRevision: rev,
				ActualRevision:   Revision(current),
			}
		}
	default:
		return fmt.Errorf("stream %q: unsupported revision type %T: %w", streamID, state, ErrInvalidRevision)
	}
	return nil
}

// BatchStreamID returns the stream shared by every envelope of a batch.
func BatchStreamID(events []Envelope) (string, error) {
	if len(events) == 0 {
		return "", nil
	}
	streamID := events[0].StreamID
	if streamID == "" {
		return "", fmt.Errorf("save events: %w", ErrInvalidStreamID)
	}
	for i, env := range events {
		if env.StreamID != streamID {
			return "", fmt.Errorf(
				"save events to stream %q: %w: event %d has different stream ID %q",
				streamID, ErrInvalidEventBatch, i, env.StreamID,
			)
		}
	}
	return streamID, nil
}

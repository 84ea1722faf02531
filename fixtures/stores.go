package fixtures

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	es "github.com/terraskye/eventsourcing-pm"
)

// StoreSpy is a configurable mock EventStore for testing.
// It tracks calls and allows injecting custom behavior or failures.
type StoreSpy struct {
	mu sync.Mutex

	// Function overrides for custom behavior
	LoadStreamFn    func(ctx context.Context, id string) (*es.Iterator[es.Envelope], error)
	StreamVersionFn func(ctx context.Context, id string) (uint64, error)
	SaveFn          func(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error)
	CloseFn         func() error

	// Call tracking
	LoadStreamCalls    int
	StreamVersionCalls int
	SaveCalls          int
	CloseCalls         int

	// Captured arguments from last call
	LastSaveEvents   []es.Envelope
	LastSaveRevision es.StreamState
	LastLoadStreamID string

	events map[string][]es.Envelope

	loadErr error
	saveErr error
}

// NewStoreSpy creates a new StoreSpy with default behavior.
func NewStoreSpy() *StoreSpy {
	return &StoreSpy{
		events: make(map[string][]es.Envelope),
	}
}

// WithEvents pre-populates a stream with events, numbering them from 1.
func (s *StoreSpy) WithEvents(streamID string, events ...es.Event) *StoreSpy {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.events[streamID] = append(s.events[streamID], es.Envelope{
			StreamID: streamID,
			Version:  uint64(len(s.events[streamID]) + 1),
			Event:    ev,
			Metadata: es.EventMetadata{EventType: ev.EventType(), EventID: uuid.New(), CorrelationID: uuid.New()},
		})
	}
	return s
}

// FailOnLoad configures the store to return an error on load operations.
func (s *StoreSpy) FailOnLoad(err error) *StoreSpy {
	s.loadErr = err
	return s
}

// FailOnSave configures the store to return an error on save operations.
func (s *StoreSpy) FailOnSave(err error) *StoreSpy {
	s.saveErr = err
	return s
}

// Events returns a copy of the stream as stored.
func (s *StoreSpy) Events(streamID string) []es.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]es.Envelope(nil), s.events[streamID]...)
}

// LoadStream implements EventStore.LoadStream.
func (s *StoreSpy) LoadStream(ctx context.Context, id string) (*es.Iterator[es.Envelope], error) {
	s.mu.Lock()
	s.LoadStreamCalls++
	s.LastLoadStreamID = id
	s.mu.Unlock()

	if s.LoadStreamFn != nil {
		return s.LoadStreamFn(ctx, id)
	}
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	s.mu.Lock()
	events, ok := s.events[id]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("load stream %q: %w", id, es.ErrStreamNotFound)
	}
	return es.NewSliceIterator(events), nil
}

// StreamVersion implements EventStore.StreamVersion.
func (s *StoreSpy) StreamVersion(ctx context.Context, id string) (uint64, error) {
	s.mu.Lock()
	s.StreamVersionCalls++
	s.mu.Unlock()

	if s.StreamVersionFn != nil {
		return s.StreamVersionFn(ctx, id)
	}
	if s.loadErr != nil {
		return 0, s.loadErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	events, ok := s.events[id]
	if !ok {
		return 0, fmt.Errorf("stream version %q: %w", id, es.ErrStreamNotFound)
	}
	return uint64(len(events)), nil
}

// Save implements EventStore.Save. It enforces Revision and NoStream
// preconditions against the spy's own streams.
func (s *StoreSpy) Save(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error) {
	s.mu.Lock()
	s.SaveCalls++
	s.LastSaveEvents = append([]es.Envelope(nil), events...)
	s.LastSaveRevision = revision
	s.mu.Unlock()

	if s.SaveFn != nil {
		return s.SaveFn(ctx, events, revision)
	}
	if s.saveErr != nil {
		return es.AppendResult{Successful: false}, s.saveErr
	}
	if len(events) == 0 {
		return es.AppendResult{Successful: true}, nil
	}

	streamID := events[0].StreamID

	s.mu.Lock()
	defer s.mu.Unlock()

	current := uint64(len(s.events[streamID]))
	switch rev := revision.(type) {
	case es.NoStream:
		if current != 0 {
			return es.AppendResult{}, fmt.Errorf("stream %q: %w", streamID, es.ErrStreamExists)
		}
	case es.Revision:
		if uint64(rev) != current {
			return es.AppendResult{}, es.StreamRevisionConflictError{Stream: streamID, ExpectedRevision: rev, ActualRevision: es.Revision(current)}
		}
	}

	s.events[streamID] = append(s.events[streamID], events...)

	return es.AppendResult{
		Successful:          true,
		StreamID:            streamID,
		NextExpectedVersion: current + uint64(len(events)),
	}, nil
}

// Close implements EventStore.Close.
func (s *StoreSpy) Close() error {
	s.mu.Lock()
	s.CloseCalls++
	s.mu.Unlock()

	if s.CloseFn != nil {
		return s.CloseFn()
	}
	return nil
}

// ConcurrencyConflictStore returns a StoreSpy that returns a concurrency conflict on save.
func ConcurrencyConflictStore(streamID string, expected, actual es.Revision) *StoreSpy {
	store := NewStoreSpy()
	store.SaveFn = func(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error) {
		return es.AppendResult{Successful: false}, es.StreamRevisionConflictError{
			Stream:           streamID,
			ExpectedRevision: expected,
			ActualRevision:   actual,
		}
	}
	return store
}

// FailingIterator returns an iterator that fails on the first Next.
func FailingIterator(err error) *es.Iterator[es.Envelope] {
	return es.NewIteratorFunc(func(ctx context.Context) (es.Envelope, error) {
		return es.Envelope{}, err
	})
}

// BlockingIterator returns an iterator that waits for ctx to end.
func BlockingIterator() *es.Iterator[es.Envelope] {
	return es.NewIteratorFunc(func(ctx context.Context) (es.Envelope, error) {
		<-ctx.Done()
		return es.Envelope{}, ctx.Err()
	})
}

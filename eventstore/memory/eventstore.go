package memory

import (
	"context"
	"fmt"
	"sync"

	es "github.com/terraskye/eventsourcing-pm"
)

var _ es.EventStore = (*MemoryStore)(nil)

// MemoryStore keeps streams in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]es.Envelope
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string][]es.Envelope),
	}
}

func (m *MemoryStore) Save(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return es.AppendResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return es.AppendResult{}, es.WrapEventStoreError(fmt.Errorf("store closed"))
	}
	if len(events) == 0 {
		return es.AppendResult{Successful: true}, nil
	}

	streamID, err := es.BatchStreamID(events)
	if err != nil {
		return es.AppendResult{}, err
	}

	currentVersion := uint64(len(m.events[streamID]))
	if err := es.CheckStreamState(streamID, revision, currentVersion); err != nil {
		return es.AppendResult{StreamID: streamID}, err
	}

	for _, env := range events {
		currentVersion++
		env.Version = currentVersion
		m.events[streamID] = append(m.events[streamID], env)
	}

	return es.AppendResult{
		Successful:          true,
		StreamID:            streamID,
		NextExpectedVersion: currentVersion,
	}, nil
}

func (m *MemoryStore) LoadStream(ctx context.Context, id string) (*es.Iterator[es.Envelope], error) {
	m.mu.RLock()
	events, exists := m.events[id]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("load stream %q: %w", id, es.ErrStreamNotFound)
	}
	return es.NewSliceIterator(events), nil
}

func (m *MemoryStore) StreamVersion(ctx context.Context, id string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events, exists := m.events[id]
	if !exists {
		return 0, fmt.Errorf("stream version %q: %w", id, es.ErrStreamNotFound)
	}
	return uint64(len(events)), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.events = make(map[string][]es.Envelope)
	return nil
}

// Package storetest holds the behaviour every EventStore backend must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	es "github.com/terraskye/eventsourcing-pm"
)

type OrderCreated struct {
	OrderID    string
	CustomerID string
}

func (e OrderCreated) AggregateID() string { return e.OrderID }
func (e OrderCreated) EventType() string   { return "OrderCreated" }

type ItemAdded struct {
	OrderID string
	ItemID  string
	Qty     int
}

func (e ItemAdded) AggregateID() string { return e.OrderID }
func (e ItemAdded) EventType() string   { return "ItemAdded" }

// Registry returns a registry knowing the events used by the suite.
func Registry() *es.EventRegistry {
	reg := es.NewEventRegistry()
	es.RegisterEvent[OrderCreated](reg)
	es.RegisterEvent[ItemAdded](reg)
	return reg
}

// Envelope wraps event for streamID with fresh metadata.
func Envelope(streamID string, event es.Event) es.Envelope {
	return es.Envelope{
		StreamID: streamID,
		Event:    event,
		Metadata: es.EventMetadata{
			EventType:     event.EventType(),
			EventID:       uuid.New(),
			CorrelationID: uuid.New(),
			CausationID:   uuid.NullUUID{UUID: uuid.New(), Valid: true},
			Timestamp:     time.Now().UTC().Truncate(time.Millisecond),
			Headers:       map[string]string{"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"},
		},
	}
}

// Run executes the backend conformance suite. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) es.EventStore) {
	t.Helper()

	t.Run("save and load preserves order and metadata", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		first := Envelope("order-1", OrderCreated{OrderID: "order-1", CustomerID: "cust-1"})
		second := Envelope("order-1", ItemAdded{OrderID: "order-1", ItemID: "item-1", Qty: 2})

		result, err := store.Save(ctx, []es.Envelope{first, second}, es.NoStream{})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if !result.Successful || result.NextExpectedVersion != 2 {
			t.Fatalf("unexpected result %+v", result)
		}

		loaded := loadAll(t, store, "order-1")
		if len(loaded) != 2 {
			t.Fatalf("expected 2 events, got %d", len(loaded))
		}
		if loaded[0].Version != 1 || loaded[1].Version != 2 {
			t.Errorf("expected versions 1,2 got %d,%d", loaded[0].Version, loaded[1].Version)
		}
		if got, ok := loaded[1].Event.(ItemAdded); !ok || got.Qty != 2 {
			t.Errorf("expected ItemAdded{Qty:2}, got %#v", loaded[1].Event)
		}

		md := loaded[0].Metadata
		if md.EventID != first.Metadata.EventID || md.CorrelationID != first.Metadata.CorrelationID {
			t.Errorf("metadata ids not preserved: %+v", md)
		}
		if md.CausationID != first.Metadata.CausationID {
			t.Errorf("causation not preserved: %+v", md.CausationID)
		}
		if md.EventType != "OrderCreated" {
			t.Errorf("expected event type OrderCreated, got %q", md.EventType)
		}
		if !md.Timestamp.Equal(first.Metadata.Timestamp) {
			t.Errorf("timestamp not preserved: %v != %v", md.Timestamp, first.Metadata.Timestamp)
		}
		if md.Headers["traceparent"] != first.Metadata.Headers["traceparent"] {
			t.Errorf("headers not preserved: %v", md.Headers)
		}
	})

	t.Run("missing stream is reported distinctly", func(t *testing.T) {
		store := newStore(t)

		if _, err := store.LoadStream(t.Context(), "missing"); !errors.Is(err, es.ErrStreamNotFound) {
			t.Errorf("LoadStream: expected ErrStreamNotFound, got %v", err)
		}
		if _, err := store.StreamVersion(t.Context(), "missing"); !errors.Is(err, es.ErrStreamNotFound) {
			t.Errorf("StreamVersion: expected ErrStreamNotFound, got %v", err)
		}
	})

	t.Run("stream version counts committed events", func(t *testing.T) {
		store := newStore(t)
		save(t, store, es.NoStream{}, Envelope("order-2", OrderCreated{OrderID: "order-2"}))
		save(t, store, es.Revision(1), Envelope("order-2", ItemAdded{OrderID: "order-2"}))

		version, err := store.StreamVersion(t.Context(), "order-2")
		if err != nil {
			t.Fatal(err)
		}
		if version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}
	})

	t.Run("no stream precondition fails on existing stream", func(t *testing.T) {
		store := newStore(t)
		save(t, store, es.NoStream{}, Envelope("order-3", OrderCreated{OrderID: "order-3"}))

		_, err := store.Save(t.Context(), []es.Envelope{Envelope("order-3", ItemAdded{OrderID: "order-3"})}, es.NoStream{})
		if !errors.Is(err, es.ErrStreamExists) && !errors.Is(err, es.ErrConcurrency) {
			t.Errorf("expected ErrStreamExists or a conflict, got %v", err)
		}
	})

	t.Run("wrong revision conflicts and commits nothing", func(t *testing.T) {
		store := newStore(t)
		save(t, store, es.NoStream{},
			Envelope("order-4", OrderCreated{OrderID: "order-4"}),
			Envelope("order-4", ItemAdded{OrderID: "order-4"}),
		)

		_, err := store.Save(t.Context(), []es.Envelope{
			Envelope("order-4", ItemAdded{OrderID: "order-4", ItemID: "a"}),
			Envelope("order-4", ItemAdded{OrderID: "order-4", ItemID: "b"}),
		}, es.Revision(1))
		if !errors.Is(err, es.ErrConcurrency) {
			t.Fatalf("expected concurrency conflict, got %v", err)
		}

		if loaded := loadAll(t, store, "order-4"); len(loaded) != 2 {
			t.Errorf("expected the stream to keep 2 events, got %d", len(loaded))
		}
	})

	t.Run("mixed stream batch is rejected", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Save(t.Context(), []es.Envelope{
			Envelope("order-5", OrderCreated{OrderID: "order-5"}),
			Envelope("order-6", OrderCreated{OrderID: "order-6"}),
		}, es.Any{})
		if !errors.Is(err, es.ErrInvalidEventBatch) {
			t.Errorf("expected ErrInvalidEventBatch, got %v", err)
		}
	})

	t.Run("concurrent appends at one revision have a single winner", func(t *testing.T) {
		store := newStore(t)
		save(t, store, es.NoStream{}, Envelope("order-7", OrderCreated{OrderID: "order-7"}))

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Save(context.Background(), []es.Envelope{Envelope("order-7", ItemAdded{OrderID: "order-7"})}, es.Revision(1))
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if successes != 1 {
			t.Errorf("expected exactly one successful writer, got %d", successes)
		}
	})
}

func save(t *testing.T, store es.EventStore, rev es.StreamState, events ...es.Envelope) {
	t.Helper()
	if _, err := store.Save(t.Context(), events, rev); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func loadAll(t *testing.T, store es.EventStore, id string) []es.Envelope {
	t.Helper()
	iter, err := store.LoadStream(t.Context(), id)
	if err != nil {
		t.Fatalf("load stream %q: %v", id, err)
	}
	events, err := iter.All(t.Context())
	if err != nil {
		t.Fatalf("iterate stream %q: %v", id, err)
	}
	return events
}

package eventsourcing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/eventstore/memory"
	"github.com/terraskye/eventsourcing-pm/fixtures"
)

func newCounterRepository(store es.EventStore, pub es.Publisher) *es.Repository[fixtures.Counter, fixtures.CounterEvent] {
	return es.NewRepository[fixtures.Counter, fixtures.CounterEvent](store, pub, fixtures.CounterProjection)
}

func increment(by int) es.Decision[fixtures.Counter, fixtures.CounterEvent] {
	return func(state fixtures.Counter) ([]fixtures.CounterEvent, error) {
		return []fixtures.CounterEvent{fixtures.Incremented{ID: state.StreamID, By: by}}, nil
	}
}

func TestRepository_AddEvents(t *testing.T) {
	store := memory.NewMemoryStore()
	pub := fixtures.NewPublisherSpy()
	repo := newCounterRepository(store, pub)

	events, state, err := repo.AddEvents(t.Context(), "counter-1", increment(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || state.Total != 3 {
		t.Fatalf("unexpected result: events=%v state=%+v", events, state)
	}

	_, state, err = repo.AddEvents(t.Context(), "counter-1", increment(4))
	if err != nil {
		t.Fatal(err)
	}
	if state.Total != 7 {
		t.Fatalf("expected total 7, got %d", state.Total)
	}

	stored, err := repo.GetState(t.Context(), "counter-1")
	if err != nil {
		t.Fatal(err)
	}
	if stored != state {
		t.Fatalf("returned state %+v differs from stored %+v", state, stored)
	}
	if pub.PublishCalls != 2 {
		t.Errorf("expected 2 publishes, got %d", pub.PublishCalls)
	}
}

func TestRepository_AddEventsNothingDecided(t *testing.T) {
	store := fixtures.NewStoreSpy()
	pub := fixtures.NewPublisherSpy()
	repo := newCounterRepository(store, pub)

	events, _, err := repo.AddEvents(t.Context(), "counter-1", func(fixtures.Counter) ([]fixtures.CounterEvent, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if events != nil {
		t.Errorf("expected no events, got %v", events)
	}
	if store.SaveCalls != 0 || pub.PublishCalls != 0 {
		t.Errorf("nothing decided must not save or publish, got save=%d publish=%d", store.SaveCalls, pub.PublishCalls)
	}
}

func TestRepository_AddEventsDecideError(t *testing.T) {
	store := fixtures.NewStoreSpy()
	rejected := errors.New("rejected")

	_, _, err := newCounterRepository(store, nil).AddEvents(t.Context(), "counter-1", func(fixtures.Counter) ([]fixtures.CounterEvent, error) {
		return nil, rejected
	})
	if !errors.Is(err, rejected) {
		t.Fatalf("expected decide error, got %v", err)
	}
	if store.SaveCalls != 0 {
		t.Error("a failed decision must not save")
	}
}

func TestRepository_AddEventsReturnsConflictUnchanged(t *testing.T) {
	store := fixtures.ConcurrencyConflictStore("counter-1", 0, 1)
	pub := fixtures.NewPublisherSpy()

	_, _, err := newCounterRepository(store, pub).AddEvents(t.Context(), "counter-1", increment(1))

	var conflict *es.ConcurrencyError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConcurrencyError, got %v", err)
	}
	var revision es.StreamRevisionConflictError
	if !errors.As(err, &revision) {
		t.Fatalf("expected the store conflict to be preserved, got %v", err)
	}
	if revision.ActualRevision != 1 {
		t.Errorf("expected actual revision 1, got %d", revision.ActualRevision)
	}
	if store.SaveCalls != 1 {
		t.Errorf("repository must not retry, got %d saves", store.SaveCalls)
	}
	if pub.PublishCalls != 0 {
		t.Error("a conflicting save must not publish")
	}
}

func TestRepository_AddEventsCarriesContextIDs(t *testing.T) {
	store := fixtures.NewStoreSpy()
	correlation := uuid.New()
	causation := uuid.New()

	ctx := es.WithCorrelationID(t.Context(), correlation)
	ctx = es.WithCausationID(ctx, causation)

	if _, _, err := newCounterRepository(store, nil).AddEvents(ctx, "counter-1", increment(1)); err != nil {
		t.Fatal(err)
	}

	md := store.Events("counter-1")[0].Metadata
	if md.CorrelationID != correlation {
		t.Errorf("expected correlation %s, got %s", correlation, md.CorrelationID)
	}
	if !md.CausationID.Valid || md.CausationID.UUID != causation {
		t.Errorf("expected causation %s, got %+v", causation, md.CausationID)
	}
}

func TestRepository_AddEventsFromEnvelopeContext(t *testing.T) {
	store := fixtures.NewStoreSpy()
	trigger := es.Envelope{
		StreamID: "other",
		Version:  4,
		Event:    fixtures.Reset{ID: "other"},
		Metadata: es.EventMetadata{EventID: uuid.New(), CorrelationID: uuid.New()},
	}

	ctx := es.WithEnvelope(context.Background(), trigger)
	if _, _, err := newCounterRepository(store, nil).AddEvents(ctx, "counter-1", increment(1)); err != nil {
		t.Fatal(err)
	}

	md := store.Events("counter-1")[0].Metadata
	if md.CorrelationID != trigger.Metadata.CorrelationID {
		t.Error("correlation must follow the triggering event")
	}
	if md.CausationID.UUID != trigger.Metadata.EventID {
		t.Error("causation must be the triggering event id")
	}
}

func TestRepository_GetStateDoesNotSave(t *testing.T) {
	store := fixtures.NewStoreSpy().WithEvents("counter-1", fixtures.Incremented{ID: "counter-1", By: 2})

	state, err := newCounterRepository(store, nil).GetState(t.Context(), "counter-1")
	if err != nil {
		t.Fatal(err)
	}
	if state.Total != 2 {
		t.Fatalf("expected total 2, got %d", state.Total)
	}
	if store.SaveCalls != 0 {
		t.Error("GetState must not save")
	}
}

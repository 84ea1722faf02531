package eventsourcing

import (
	"context"
	"fmt"
)

// Decision computes the events an aggregate emits for its current state.
// Returning no events is a valid outcome and commits nothing.
type Decision[S any, E Event] func(state S) ([]E, error)

// Repository runs the read-decide-append-save cycle for one aggregate family.
//
// It never retries: a concurrency conflict is returned unchanged so the
// message bus can redeliver the trigger.
type Repository[S any, E Event] struct {
	store      EventStore
	publisher  Publisher
	projection Projection[S, E]
	options    []SessionOption
}

// NewRepository returns a repository over store. Committed events are handed
// to publisher after every successful save.
func NewRepository[S any, E Event](
	store EventStore,
	publisher Publisher,
	projection Projection[S, E],
	opts ...SessionOption,
) *Repository[S, E] {
	return &Repository[S, E]{
		store:      store,
		publisher:  publisher,
		projection: projection,
		options:    opts,
	}
}

// Open starts a new session on streamID.
func (r *Repository[S, E]) Open(streamID string) *Session[S, E] {
	return OpenSession[S, E](r.store, r.publisher, streamID, r.options...)
}

// Projection returns the projection the repository folds with.
func (r *Repository[S, E]) Projection() Projection[S, E] { return r.projection }

// GetState materialises the current state of streamID without committing anything.
func (r *Repository[S, E]) GetState(ctx context.Context, streamID string) (S, error) {
	return r.Open(streamID).GetState(ctx, r.projection)
}

// AddEvents loads streamID, applies decide and commits whatever it returns.
//
// Correlation and causation ids are taken from ctx (see WithCorrelationID and
// WithCausationID). It returns the decided events and the state after
// folding them, which delegators use to build outbound commands.
func (r *Repository[S, E]) AddEvents(ctx context.Context, streamID string, decide Decision[S, E]) ([]E, S, error) {
	session := r.Open(streamID)

	state, err := session.GetState(ctx, r.projection)
	if err != nil {
		return nil, state, err
	}

	events, err := decide(state)
	if err != nil {
		return nil, state, fmt.Errorf("add events to stream %q: decide: %w", streamID, err)
	}
	if len(events) == 0 {
		return nil, state, nil
	}

	if err := session.AppendEvents(events, CorrelationIDFromContext(ctx), CausationFromContext(ctx)); err != nil {
		return nil, state, err
	}

	for _, ev := range events {
		state = r.projection.Apply(state, ev)
	}

	if err := session.Save(ctx); err != nil {
		return nil, state, err
	}
	return events, state, nil
}

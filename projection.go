package eventsourcing

// Projection folds the events of one aggregate family into its state.
// Apply must be pure: the same events always produce the same state.
type Projection[S any, E Event] interface {
	InitialState(streamID string) S
	Apply(state S, event E) S
}

// ProjectionFuncs adapts a pair of functions to a Projection.
type ProjectionFuncs[S any, E Event] struct {
	Initial func(streamID string) S
	Fold    func(state S, event E) S
}

func (p ProjectionFuncs[S, E]) InitialState(streamID string) S { return p.Initial(streamID) }

func (p ProjectionFuncs[S, E]) Apply(state S, event E) S { return p.Fold(state, event) }

// Replay folds events over the initial state of streamID.
func Replay[S any, E Event](p Projection[S, E], streamID string, events ...E) S {
	state := p.InitialState(streamID)
	for _, ev := range events {
		state = p.Apply(state, ev)
	}
	return state
}

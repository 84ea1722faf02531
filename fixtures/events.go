package fixtures

import (
	es "github.com/terraskye/eventsourcing-pm"
)

// CounterEvent is a small closed event family used to exercise sessions.
type CounterEvent interface {
	es.Event
	isCounterEvent()
}

type Incremented struct {
	ID string
	By int
}

func (e Incremented) AggregateID() string { return e.ID }
func (e Incremented) EventType() string   { return "fixtures.Incremented" }
func (Incremented) isCounterEvent()       {}

type Reset struct {
	ID string
}

func (e Reset) AggregateID() string { return e.ID }
func (e Reset) EventType() string   { return "fixtures.Reset" }
func (Reset) isCounterEvent()       {}

// Foreign belongs to no family; it stands in for a mis-routed event.
type Foreign struct {
	ID string
}

func (e Foreign) AggregateID() string { return e.ID }
func (e Foreign) EventType() string   { return "fixtures.Foreign" }

// Counter is the state folded from CounterEvent.
type Counter struct {
	StreamID string
	Total    int
	Applied  int
}

// CounterProjection folds CounterEvent into Counter.
var CounterProjection es.Projection[Counter, CounterEvent] = es.ProjectionFuncs[Counter, CounterEvent]{
	Initial: func(streamID string) Counter { return Counter{StreamID: streamID} },
	Fold: func(state Counter, event CounterEvent) Counter {
		state.Applied++
		switch e := event.(type) {
		case Incremented:
			state.Total += e.By
		case Reset:
			state.Total = 0
		}
		return state
	},
}

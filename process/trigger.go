package process

import (
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/collection"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Trigger is one of: a process event, a manifestation event or a collection
// event. It is built once by TriggerFromEvent and carries the category of
// the process it belongs to.
type Trigger interface {
	ShipmentID() string
	Category() shipment.Category
	Event() es.Event
	trigger()
}

// ProcessTrigger is an event of the process stream itself.
type ProcessTrigger struct{ E Event }

// ManifestationTrigger is an event of the manifestation sub-process.
type ManifestationTrigger struct{ E manifestation.Event }

// CollectionTrigger is an event of the collection sub-process.
type CollectionTrigger struct{ E collection.Event }

func (t ProcessTrigger) ShipmentID() string       { return t.E.AggregateID() }
func (t ManifestationTrigger) ShipmentID() string { return t.E.AggregateID() }
func (t CollectionTrigger) ShipmentID() string    { return t.E.AggregateID() }

func (t ProcessTrigger) Category() shipment.Category       { return t.E.Category() }
func (t ManifestationTrigger) Category() shipment.Category { return t.E.Category() }
func (t CollectionTrigger) Category() shipment.Category    { return t.E.Category() }

func (t ProcessTrigger) Event() es.Event       { return t.E }
func (t ManifestationTrigger) Event() es.Event { return t.E }
func (t CollectionTrigger) Event() es.Event    { return t.E }

func (ProcessTrigger) trigger()       {}
func (ManifestationTrigger) trigger() {}
func (CollectionTrigger) trigger()    {}

// TriggerFromEvent classifies ev by event family.
func TriggerFromEvent(ev es.Event) (Trigger, error) {
	switch e := ev.(type) {
	case Event:
		return ProcessTrigger{e}, nil
	case manifestation.Event:
		return ManifestationTrigger{e}, nil
	case collection.Event:
		return CollectionTrigger{e}, nil
	}
	return nil, es.NewTriggerNotSupported("process", ev)
}

package collection

import (
	"time"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// StreamID returns the collection stream of shipmentID.
func StreamID(shipmentID string) string {
	return "Collection_" + shipmentID
}

// Status is the booking status. It is nil until the booking is initialized.
type Status interface {
	status()
}

type (
	Initialized         struct{}
	Scheduled           struct{ BookAt time.Time }
	SchedulingFailed    struct{ Failure string }
	BookingStarted      struct{}
	Booked              struct{ BookingReference string }
	BookingFailed       struct{ Failure string }
	CancellationStarted struct{ BookingReference string }
	Cancelled           struct{}
	CancellationFailed  struct{ Failure string }
)

func (Initialized) status()         {}
func (Scheduled) status()           {}
func (SchedulingFailed) status()    {}
func (BookingStarted) status()      {}
func (Booked) status()              {}
func (BookingFailed) status()       {}
func (CancellationStarted) status() {}
func (Cancelled) status()           {}
func (CancellationFailed) status()  {}

// State is the folded collection stream.
type State struct {
	ProcessCategory shipment.Category
	ShipmentID      string
	CollectionLeg   shipment.ManifestedLeg
	CollectionDate  time.Time
	TimeZone        string
	Status          Status
}

// Initialized reports whether the booking was created.
func (s State) Initialized() bool {
	return s.Status != nil
}

// Projection folds collection events.
var Projection es.Projection[State, Event] = es.ProjectionFuncs[State, Event]{
	Initial: func(string) State { return State{} },
	Fold:    apply,
}

func apply(s State, ev Event) State {
	switch e := ev.(type) {
	case CollectionBookingInitialized:
		return State{
			ProcessCategory: e.ProcessCategory,
			ShipmentID:      e.ShipmentID,
			CollectionLeg:   e.CollectionLeg,
			CollectionDate:  shipment.RecordedDate(e.CollectionDate),
			TimeZone:        e.TimeZone,
			Status:          Initialized{},
		}
	case CollectionBookingScheduled:
		s.CollectionDate = shipment.RecordedDate(e.CollectionDate)
		s.Status = Scheduled{BookAt: e.BookAt}
	case CollectionBookingSchedulingFailed:
		s.CollectionDate = shipment.RecordedDate(e.CollectionDate)
		s.Status = SchedulingFailed{Failure: e.Failure}
	case CollectionBookingWithCarrierStarted:
		s.Status = BookingStarted{}
	case CollectionBooked:
		s.Status = Booked{BookingReference: e.BookingReference}
	case CollectionBookingFailed:
		s.Status = BookingFailed{Failure: e.Failure}
	case CollectionBookingCancellationStarted:
		s.Status = CancellationStarted{BookingReference: e.BookingReference}
	case CollectionBookingCancelled:
		s.Status = Cancelled{}
	case CollectionBookingCancellationFailed:
		s.Status = CancellationFailed{Failure: e.Failure}
	}
	return s
}

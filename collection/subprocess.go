package collection

import (
	"context"
	"time"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/carrier"
	"github.com/terraskye/eventsourcing-pm/routing"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Subprocess runs collection triggers against the collection stream. Besides
// delegating, it drives the booking forward on its own: a created booking is
// scheduled after ScheduleDelay and a scheduled one is booked after
// BookDelay.
type Subprocess struct {
	repo    *es.Repository[State, Event]
	decider Decider
	sender  es.DelayedCommandSender

	ScheduleDelay time.Duration
	BookDelay     time.Duration
}

func NewSubprocess(store es.EventStore, publisher es.Publisher, sender es.DelayedCommandSender, decider Decider, opts ...es.SessionOption) *Subprocess {
	return &Subprocess{
		repo:          es.NewRepository[State, Event](store, publisher, Projection, opts...),
		decider:       decider,
		sender:        sender,
		ScheduleDelay: 200 * time.Millisecond,
		BookDelay:     5 * time.Second,
	}
}

// Handle decides on trigger, delegates the outcome and schedules the next
// step of the booking.
func (s *Subprocess) Handle(ctx context.Context, trigger Trigger) error {
	events, state, err := s.repo.AddEvents(ctx, StreamID(trigger.AggregateID()), func(state State) ([]Event, error) {
		return s.decider.Decide(state, trigger)
	})
	if err != nil {
		return err
	}
	if err := es.SendDelegated(ctx, s.sender, es.DelegatorFunc[State, Event](Delegate), state, events); err != nil {
		return err
	}

	for _, ev := range events {
		cmd := shipment.CommandBase{ShipmentID: state.ShipmentID, ProcessCategory: ev.Category()}
		switch e := ev.(type) {
		case CollectionBookingInitialized:
			s.sender.SendAfter(ctx, s.ScheduleDelay, ScheduleCollectionBooking{
				CommandBase:    cmd,
				CollectionDate: e.CollectionDate,
			})
		case CollectionBookingScheduled:
			s.sender.SendAfter(ctx, s.BookDelay, BookCollectionWithCarrier{CommandBase: cmd})
		}
	}
	return nil
}

// State returns the current state of shipmentID.
func (s *Subprocess) State(ctx context.Context, shipmentID string) (State, error) {
	return s.repo.GetState(ctx, StreamID(shipmentID))
}

// Routes registers every collection trigger with r.
func (s *Subprocess) Routes(r *routing.Router) {
	routing.On(r, handle[CreateCollectionBooking](s))
	routing.On(r, handle[ScheduleCollectionBooking](s))
	routing.On(r, handle[BookCollectionWithCarrier](s))
	routing.On(r, handle[CancelCollectionBooking](s))
	routing.On(r, func(ctx context.Context, e carrier.CollectionBookedWithCarrier) error {
		return s.Handle(ctx, CarrierBooked{e})
	})
	routing.On(r, func(ctx context.Context, e carrier.CarrierCollectionBookingFailed) error {
		return s.Handle(ctx, CarrierBookingFailed{e})
	})
	routing.On(r, func(ctx context.Context, e carrier.CollectionCancelledWithCarrier) error {
		return s.Handle(ctx, CarrierCancelled{e})
	})
}

func handle[T Trigger](s *Subprocess) func(context.Context, T) error {
	return func(ctx context.Context, t T) error {
		return s.Handle(ctx, t)
	}
}

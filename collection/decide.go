package collection

import (
	"errors"
	"fmt"
	"time"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// ErrBookingNotInitialized is returned when a booking is scheduled, booked or
// answered by the carrier before it was created. It is transient.
var ErrBookingNotInitialized = errors.New("collection booking not initialized")

// ErrUnknownScheduleResult is returned when a Scheduling returns neither a
// BookingTime nor a SchedulingFailure.
var ErrUnknownScheduleResult = errors.New("unknown schedule result")

// Decider holds the dependencies of the collection decisions.
type Decider struct {
	Scheduler Scheduling
	Clock     func() time.Time
}

func NewDecider(scheduler Scheduling) Decider {
	return Decider{Scheduler: scheduler, Clock: time.Now}
}

// Decide returns the events the trigger produces on state.
func (d Decider) Decide(state State, trigger Trigger) ([]Event, error) {
	switch t := trigger.(type) {
	case CreateCollectionBooking:
		if state.Initialized() {
			return nil, nil
		}
		return []Event{CollectionBookingInitialized{
			Base:           shipment.NewBase(t.ShipmentID, t.ProcessCategory),
			CollectionLeg:  t.CollectionLeg,
			CollectionDate: shipment.FormatDate(shipment.ParseDate(t.CollectionDate, d.now())),
			TimeZone:       t.TimeZone,
		}}, nil

	case ScheduleCollectionBooking:
		if !state.Initialized() {
			return nil, ErrBookingNotInitialized
		}
		ev, err := d.schedule(state, t)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil

	case BookCollectionWithCarrier:
		if !state.Initialized() {
			return nil, ErrBookingNotInitialized
		}
		switch state.Status.(type) {
		case Scheduled, BookingFailed:
			return []Event{CollectionBookingWithCarrierStarted{
				Base: shipment.NewBase(t.ShipmentID, t.ProcessCategory).Delegate(),
			}}, nil
		}
		return nil, nil

	case CarrierBooked:
		if !state.Initialized() {
			return nil, ErrBookingNotInitialized
		}
		return []Event{CollectionBooked{
			Base:             shipment.NewBase(t.ShipmentID, state.ProcessCategory),
			CarrierID:        state.CollectionLeg.CarrierID,
			BookingReference: t.BookingReference,
		}}, nil

	case CarrierBookingFailed:
		if !state.Initialized() {
			return nil, ErrBookingNotInitialized
		}
		return []Event{CollectionBookingFailed{
			Base:    shipment.NewBase(t.ShipmentID, state.ProcessCategory),
			Failure: t.Failure,
		}}, nil

	case CancelCollectionBooking:
		base := shipment.NewBase(t.ShipmentID, t.ProcessCategory)
		if booked, ok := state.Status.(Booked); ok {
			return []Event{CollectionBookingCancellationStarted{
				Base:             base.Delegate(),
				BookingReference: booked.BookingReference,
			}}, nil
		}
		return []Event{CollectionBookingCancellationFailed{
			Base:    base,
			Failure: fmt.Sprintf("Collection booking cannot be cancelled in status %T", state.Status),
		}}, nil

	case CarrierCancelled:
		if !state.Initialized() {
			return nil, ErrBookingNotInitialized
		}
		return []Event{CollectionBookingCancelled{
			Base:             shipment.NewBase(t.ShipmentID, state.ProcessCategory),
			BookingReference: t.BookingReference,
		}}, nil
	}

	return nil, es.NewTriggerNotSupported("collection", trigger)
}

func (d Decider) schedule(state State, cmd ScheduleCollectionBooking) (Event, error) {
	base := shipment.NewBase(cmd.ShipmentID, cmd.ProcessCategory)
	date := state.CollectionDate
	if cmd.CollectionDate != "" {
		date = shipment.ParseDate(cmd.CollectionDate, d.now())
	}
	carrierID := state.CollectionLeg.CarrierID

	loc, err := time.LoadLocation(state.TimeZone)
	if err != nil {
		return CollectionBookingSchedulingFailed{
			Base:           base,
			CarrierID:      carrierID,
			CollectionDate: shipment.FormatDate(date),
			Failure:        fmt.Sprintf("Unknown time zone %q", state.TimeZone),
		}, nil
	}

	switch r := d.Scheduler.Schedule(date, loc, d.now()).(type) {
	case BookingTime:
		return CollectionBookingScheduled{
			Base:           base,
			CarrierID:      carrierID,
			CollectionDate: shipment.FormatDate(date),
			BookAt:         r.BookAt,
		}, nil
	case SchedulingFailure:
		return CollectionBookingSchedulingFailed{
			Base:           base,
			CarrierID:      carrierID,
			CollectionDate: shipment.FormatDate(date),
			Failure:        r.Failure,
		}, nil
	default:
		return nil, fmt.Errorf("schedule collection of %q: %w: %T", cmd.ShipmentID, ErrUnknownScheduleResult, r)
	}
}

func (d Decider) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

// Package collection implements the Collection-Booking aggregate: scheduling,
// booking and cancelling the carrier collection of a manifested shipment.
package collection

import (
	"time"

	"github.com/google/uuid"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Event is the closed family of events stored in a collection stream.
type Event interface {
	es.Event
	es.Delegated
	Category() shipment.Category
	collectionEvent()
}

type CollectionBookingInitialized struct {
	shipment.Base
	CollectionLeg  shipment.ManifestedLeg `json:"collectionLeg"`
	CollectionDate string                 `json:"collectionDate"`
	TimeZone       string                 `json:"timeZone"`
}

type CollectionBookingScheduled struct {
	shipment.Base
	CarrierID      uuid.UUID `json:"carrierId"`
	CollectionDate string    `json:"collectionDate"`
	BookAt         time.Time `json:"bookAt"`
}

type CollectionBookingSchedulingFailed struct {
	shipment.Base
	CarrierID      uuid.UUID `json:"carrierId"`
	CollectionDate string    `json:"collectionDate"`
	Failure        string    `json:"failure"`
}

// CollectionBookingWithCarrierStarted is delegated: the booking is sent to
// the carrier of the collection leg.
type CollectionBookingWithCarrierStarted struct {
	shipment.Base
}

type CollectionBooked struct {
	shipment.Base
	CarrierID        uuid.UUID `json:"carrierId"`
	BookingReference string    `json:"bookingReference"`
}

type CollectionBookingFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

// CollectionBookingCancellationStarted is delegated: the cancellation is
// sent to the carrier.
type CollectionBookingCancellationStarted struct {
	shipment.Base
	BookingReference string `json:"bookingReference"`
}

type CollectionBookingCancelled struct {
	shipment.Base
	BookingReference string `json:"bookingReference"`
}

type CollectionBookingCancellationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

func (CollectionBookingInitialized) EventType() string { return "collection.CollectionBookingInitialized" }
func (CollectionBookingScheduled) EventType() string   { return "collection.CollectionBookingScheduled" }
func (CollectionBookingSchedulingFailed) EventType() string {
	return "collection.CollectionBookingSchedulingFailed"
}
func (CollectionBookingWithCarrierStarted) EventType() string {
	return "collection.CollectionBookingWithCarrierStarted"
}
func (CollectionBooked) EventType() string        { return "collection.CollectionBooked" }
func (CollectionBookingFailed) EventType() string { return "collection.CollectionBookingFailed" }
func (CollectionBookingCancellationStarted) EventType() string {
	return "collection.CollectionBookingCancellationStarted"
}
func (CollectionBookingCancelled) EventType() string { return "collection.CollectionBookingCancelled" }
func (CollectionBookingCancellationFailed) EventType() string {
	return "collection.CollectionBookingCancellationFailed"
}

func (CollectionBookingInitialized) collectionEvent()         {}
func (CollectionBookingScheduled) collectionEvent()           {}
func (CollectionBookingSchedulingFailed) collectionEvent()    {}
func (CollectionBookingWithCarrierStarted) collectionEvent()  {}
func (CollectionBooked) collectionEvent()                     {}
func (CollectionBookingFailed) collectionEvent()              {}
func (CollectionBookingCancellationStarted) collectionEvent() {}
func (CollectionBookingCancelled) collectionEvent()           {}
func (CollectionBookingCancellationFailed) collectionEvent()  {}

// RegisterEvents registers every collection event with r.
func RegisterEvents(r *es.EventRegistry) {
	es.RegisterEvent[CollectionBookingInitialized](r)
	es.RegisterEvent[CollectionBookingScheduled](r)
	es.RegisterEvent[CollectionBookingSchedulingFailed](r)
	es.RegisterEvent[CollectionBookingWithCarrierStarted](r)
	es.RegisterEvent[CollectionBooked](r)
	es.RegisterEvent[CollectionBookingFailed](r)
	es.RegisterEvent[CollectionBookingCancellationStarted](r)
	es.RegisterEvent[CollectionBookingCancelled](r)
	es.RegisterEvent[CollectionBookingCancellationFailed](r)
}

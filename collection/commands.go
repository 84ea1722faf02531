package collection

import (
	"github.com/terraskye/eventsourcing-pm/carrier"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Trigger is the closed set of messages a collection stream reacts to.
type Trigger interface {
	AggregateID() string
	collectionTrigger()
}

type CreateCollectionBooking struct {
	shipment.CommandBase
	CollectionLeg  shipment.ManifestedLeg `json:"collectionLeg"`
	CollectionDate string                 `json:"collectionDate"`
	TimeZone       string                 `json:"timeZone"`
}

type ScheduleCollectionBooking struct {
	shipment.CommandBase
	CollectionDate string `json:"collectionDate"`
}

type BookCollectionWithCarrier struct {
	shipment.CommandBase
}

type CancelCollectionBooking struct {
	shipment.CommandBase
}

func (CreateCollectionBooking) CommandType() string   { return "collection.CreateCollectionBooking" }
func (ScheduleCollectionBooking) CommandType() string { return "collection.ScheduleCollectionBooking" }
func (BookCollectionWithCarrier) CommandType() string { return "collection.BookCollectionWithCarrier" }
func (CancelCollectionBooking) CommandType() string   { return "collection.CancelCollectionBooking" }

// CarrierBooked wraps a carrier booking confirmation as a trigger.
type CarrierBooked struct {
	carrier.CollectionBookedWithCarrier
}

// CarrierBookingFailed wraps a carrier booking refusal as a trigger.
type CarrierBookingFailed struct {
	carrier.CarrierCollectionBookingFailed
}

// CarrierCancelled wraps a carrier cancellation confirmation as a trigger.
type CarrierCancelled struct {
	carrier.CollectionCancelledWithCarrier
}

func (CreateCollectionBooking) collectionTrigger()   {}
func (ScheduleCollectionBooking) collectionTrigger() {}
func (BookCollectionWithCarrier) collectionTrigger() {}
func (CancelCollectionBooking) collectionTrigger()   {}
func (CarrierBooked) collectionTrigger()             {}
func (CarrierBookingFailed) collectionTrigger()      {}
func (CarrierCancelled) collectionTrigger()          {}

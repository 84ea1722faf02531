// Package carrier holds the messages exchanged with carrier integrations and
// a stub responder that answers them.
package carrier

import (
	"github.com/google/uuid"

	"github.com/terraskye/eventsourcing-pm/shipment"
)

// ManifestShipmentWithCarrier asks a carrier to accept one leg of a shipment.
type ManifestShipmentWithCarrier struct {
	ShipmentID string    `json:"shipmentId"`
	CarrierID  uuid.UUID `json:"carrierId"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	Collection string    `json:"collection"`
}

func (c ManifestShipmentWithCarrier) AggregateID() string { return c.ShipmentID }
func (ManifestShipmentWithCarrier) CommandType() string   { return "carrier.ManifestShipmentWithCarrier" }

// BookCollectionWithCarrier asks a carrier to collect a shipment.
type BookCollectionWithCarrier struct {
	ShipmentID string    `json:"shipmentId"`
	CarrierID  uuid.UUID `json:"carrierId"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	Collection string    `json:"collection"`
}

func (c BookCollectionWithCarrier) AggregateID() string { return c.ShipmentID }
func (BookCollectionWithCarrier) CommandType() string   { return "carrier.BookCollectionWithCarrier" }

// CancelCollectionWithCarrier asks a carrier to cancel a booked collection.
type CancelCollectionWithCarrier struct {
	ShipmentID       string    `json:"shipmentId"`
	CarrierID        uuid.UUID `json:"carrierId"`
	BookingReference string    `json:"bookingReference"`
}

func (c CancelCollectionWithCarrier) AggregateID() string { return c.ShipmentID }
func (CancelCollectionWithCarrier) CommandType() string   { return "carrier.CancelCollectionWithCarrier" }

// ShipmentManifestedWithCarrier reports a leg accepted by the carrier.
type ShipmentManifestedWithCarrier struct {
	ShipmentID     string    `json:"shipmentId"`
	CarrierID      uuid.UUID `json:"carrierId"`
	TrackingNumber string    `json:"trackingNumber"`
}

func (e ShipmentManifestedWithCarrier) AggregateID() string { return e.ShipmentID }
func (ShipmentManifestedWithCarrier) EventType() string     { return "carrier.ShipmentManifestedWithCarrier" }

// ShipmentCarrierManifestationFailed reports a leg rejected by the carrier.
type ShipmentCarrierManifestationFailed struct {
	ShipmentID string    `json:"shipmentId"`
	CarrierID  uuid.UUID `json:"carrierId"`
	Failure    string    `json:"failure"`
}

func (e ShipmentCarrierManifestationFailed) AggregateID() string { return e.ShipmentID }
func (ShipmentCarrierManifestationFailed) EventType() string {
	return "carrier.ShipmentCarrierManifestationFailed"
}

// CollectionBookedWithCarrier reports a collection booked by the carrier.
type CollectionBookedWithCarrier struct {
	ShipmentID       string    `json:"shipmentId"`
	CarrierID        uuid.UUID `json:"carrierId"`
	BookingReference string    `json:"bookingReference"`
}

func (e CollectionBookedWithCarrier) AggregateID() string { return e.ShipmentID }
func (CollectionBookedWithCarrier) EventType() string     { return "carrier.CollectionBookedWithCarrier" }

// CarrierCollectionBookingFailed reports a collection the carrier refused.
type CarrierCollectionBookingFailed struct {
	ShipmentID string    `json:"shipmentId"`
	CarrierID  uuid.UUID `json:"carrierId"`
	Failure    string    `json:"failure"`
}

func (e CarrierCollectionBookingFailed) AggregateID() string { return e.ShipmentID }
func (CarrierCollectionBookingFailed) EventType() string     { return "carrier.CarrierCollectionBookingFailed" }

// CollectionCancelledWithCarrier reports a cancelled collection.
type CollectionCancelledWithCarrier struct {
	ShipmentID       string    `json:"shipmentId"`
	CarrierID        uuid.UUID `json:"carrierId"`
	BookingReference string    `json:"bookingReference"`
}

func (e CollectionCancelledWithCarrier) AggregateID() string { return e.ShipmentID }
func (CollectionCancelledWithCarrier) EventType() string     { return "carrier.CollectionCancelledWithCarrier" }

// ManifestLeg builds the manifestation request for leg.
func ManifestLeg(shipmentID string, leg shipment.Leg) ManifestShipmentWithCarrier {
	return ManifestShipmentWithCarrier{
		ShipmentID: shipmentID,
		CarrierID:  leg.CarrierID,
		Sender:     leg.Sender,
		Receiver:   leg.Receiver,
		Collection: leg.Collection,
	}
}

// BookLeg builds the booking request for leg.
func BookLeg(shipmentID string, leg shipment.Leg) BookCollectionWithCarrier {
	return BookCollectionWithCarrier{
		ShipmentID: shipmentID,
		CarrierID:  leg.CarrierID,
		Sender:     leg.Sender,
		Receiver:   leg.Receiver,
		Collection: leg.Collection,
	}
}

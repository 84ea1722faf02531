// Package shipment holds the models shared by every aggregate of the
// shipment process and by the messages they exchange.
package shipment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of collection dates.
const DateLayout = "2006-01-02"

// DocumentsBaseURL is where generated shipment documents are stored.
const DocumentsBaseURL = "https://shipment-documents.net"

// Category names the process definition that drives a shipment. It is chosen
// once when the process starts and carried on every message afterwards.
type Category string

func (c Category) String() string { return string(c) }

// Leg is one carrier-operated part of a shipment.
type Leg struct {
	CarrierID  uuid.UUID `json:"carrierId"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	Collection string    `json:"collection"`
}

// ManifestedLeg is a leg the carrier has accepted.
type ManifestedLeg struct {
	Leg
	TrackingNumber string `json:"trackingNumber"`
	LabelsDocument string `json:"labelsDocument,omitempty"`
}

// Manifested returns the leg as manifested under trackingNumber.
func (l Leg) Manifested(trackingNumber string) ManifestedLeg {
	return ManifestedLeg{Leg: l, TrackingNumber: trackingNumber}
}

// Documents are the locations of the generated shipment documents. Empty
// means not generated.
type Documents struct {
	Labels           string `json:"labels,omitempty"`
	CustomsInvoice   string `json:"customsInvoice,omitempty"`
	Receipt          string `json:"receipt,omitempty"`
	CombinedDocument string `json:"combinedDocument,omitempty"`
}

// DocumentLocation returns where document of the given kind is stored for
// shipmentID, e.g. "labels" or "customs-invoice".
func DocumentLocation(shipmentID, document string) string {
	return fmt.Sprintf("%s/%s/%s", DocumentsBaseURL, shipmentID, document)
}

// Base is embedded in every aggregate event. Delegated marks events that
// require an outbound command.
type Base struct {
	ShipmentID      string   `json:"shipmentId"`
	ProcessCategory Category `json:"processCategory"`
	Delegated       bool     `json:"delegated,omitempty"`
}

func (b Base) AggregateID() string { return b.ShipmentID }
func (b Base) IsDelegated() bool   { return b.Delegated }
func (b Base) Category() Category  { return b.ProcessCategory }

// Delegate returns b marked as requiring an outbound command.
func (b Base) Delegate() Base {
	b.Delegated = true
	return b
}

// NewBase returns the event base for shipmentID under category.
func NewBase(shipmentID string, category Category) Base {
	return Base{ShipmentID: shipmentID, ProcessCategory: category}
}

// CommandBase is embedded in every aggregate command.
type CommandBase struct {
	ShipmentID      string   `json:"shipmentId"`
	ProcessCategory Category `json:"processCategory"`
}

func (c CommandBase) AggregateID() string { return c.ShipmentID }

// ParseDate parses a collection date. An empty or malformed value falls back
// to the day after now, in UTC.
func ParseDate(value string, now time.Time) time.Time {
	if d, err := time.Parse(DateLayout, value); err == nil {
		return d
	}
	y, m, d := now.UTC().AddDate(0, 0, 1).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecordedDate parses a collection date read back from an event. Dates are
// normalized before they are recorded, so a malformed value yields the zero
// time rather than a date derived from the clock.
func RecordedDate(value string) time.Time {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}
	}
	return d
}

// FormatDate formats a collection date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

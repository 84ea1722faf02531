// Package manifestation implements the Manifestation-And-Documents aggregate:
// sequential per-carrier manifestation of a shipment's legs and generation of
// its documents.
package manifestation

import (
	"github.com/google/uuid"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Event is the closed family of events stored in a manifestation stream.
type Event interface {
	es.Event
	es.Delegated
	Category() shipment.Category
	manifestationEvent()
}

type ShipmentInitialized struct {
	shipment.Base
	Legs []shipment.Leg `json:"legs"`
}

type CustomsInvoiceGenerated struct {
	shipment.Base
	DocumentLocation string `json:"documentLocation"`
}

type CustomsInvoiceGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

// ShipmentLegManifestationStarted is delegated: the leg of CarrierID is sent
// to its carrier.
type ShipmentLegManifestationStarted struct {
	shipment.Base
	CarrierID uuid.UUID `json:"carrierId"`
}

type ShipmentLegManifested struct {
	shipment.Base
	CarrierID      uuid.UUID `json:"carrierId"`
	TrackingNumber string    `json:"trackingNumber"`
}

type ShipmentLegManifestationFailed struct {
	shipment.Base
	CarrierID uuid.UUID `json:"carrierId"`
	Failure   string    `json:"failure"`
}

type ShipmentManifested struct {
	shipment.Base
	ManifestedLegs []shipment.ManifestedLeg `json:"manifestedLegs"`
}

type ShipmentManifestationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type ShipmentLabelsGenerated struct {
	shipment.Base
	DocumentLocation string `json:"documentLocation"`
}

type ShipmentLabelsGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type ShipmentReceiptGenerated struct {
	shipment.Base
	DocumentLocation string `json:"documentLocation"`
}

type ShipmentReceiptGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type ShipmentCombinedDocumentGenerated struct {
	shipment.Base
	DocumentLocation string `json:"documentLocation"`
}

type ShipmentCombinedDocumentGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

func (ShipmentInitialized) EventType() string            { return "manifestation.ShipmentInitialized" }
func (CustomsInvoiceGenerated) EventType() string        { return "manifestation.CustomsInvoiceGenerated" }
func (CustomsInvoiceGenerationFailed) EventType() string { return "manifestation.CustomsInvoiceGenerationFailed" }
func (ShipmentLegManifestationStarted) EventType() string {
	return "manifestation.ShipmentLegManifestationStarted"
}
func (ShipmentLegManifested) EventType() string { return "manifestation.ShipmentLegManifested" }
func (ShipmentLegManifestationFailed) EventType() string {
	return "manifestation.ShipmentLegManifestationFailed"
}
func (ShipmentManifested) EventType() string          { return "manifestation.ShipmentManifested" }
func (ShipmentManifestationFailed) EventType() string { return "manifestation.ShipmentManifestationFailed" }
func (ShipmentLabelsGenerated) EventType() string     { return "manifestation.ShipmentLabelsGenerated" }
func (ShipmentLabelsGenerationFailed) EventType() string {
	return "manifestation.ShipmentLabelsGenerationFailed"
}
func (ShipmentReceiptGenerated) EventType() string { return "manifestation.ShipmentReceiptGenerated" }
func (ShipmentReceiptGenerationFailed) EventType() string {
	return "manifestation.ShipmentReceiptGenerationFailed"
}
func (ShipmentCombinedDocumentGenerated) EventType() string {
	return "manifestation.ShipmentCombinedDocumentGenerated"
}
func (ShipmentCombinedDocumentGenerationFailed) EventType() string {
	return "manifestation.ShipmentCombinedDocumentGenerationFailed"
}

func (ShipmentInitialized) manifestationEvent()                      {}
func (CustomsInvoiceGenerated) manifestationEvent()                  {}
func (CustomsInvoiceGenerationFailed) manifestationEvent()           {}
func (ShipmentLegManifestationStarted) manifestationEvent()          {}
func (ShipmentLegManifested) manifestationEvent()                    {}
func (ShipmentLegManifestationFailed) manifestationEvent()           {}
func (ShipmentManifested) manifestationEvent()                       {}
func (ShipmentManifestationFailed) manifestationEvent()              {}
func (ShipmentLabelsGenerated) manifestationEvent()                  {}
func (ShipmentLabelsGenerationFailed) manifestationEvent()           {}
func (ShipmentReceiptGenerated) manifestationEvent()                 {}
func (ShipmentReceiptGenerationFailed) manifestationEvent()          {}
func (ShipmentCombinedDocumentGenerated) manifestationEvent()        {}
func (ShipmentCombinedDocumentGenerationFailed) manifestationEvent() {}

// RegisterEvents registers every manifestation event with r.
func RegisterEvents(r *es.EventRegistry) {
	es.RegisterEvent[ShipmentInitialized](r)
	es.RegisterEvent[CustomsInvoiceGenerated](r)
	es.RegisterEvent[CustomsInvoiceGenerationFailed](r)
	es.RegisterEvent[ShipmentLegManifestationStarted](r)
	es.RegisterEvent[ShipmentLegManifested](r)
	es.RegisterEvent[ShipmentLegManifestationFailed](r)
	es.RegisterEvent[ShipmentManifested](r)
	es.RegisterEvent[ShipmentManifestationFailed](r)
	es.RegisterEvent[ShipmentLabelsGenerated](r)
	es.RegisterEvent[ShipmentLabelsGenerationFailed](r)
	es.RegisterEvent[ShipmentReceiptGenerated](r)
	es.RegisterEvent[ShipmentReceiptGenerationFailed](r)
	es.RegisterEvent[ShipmentCombinedDocumentGenerated](r)
	es.RegisterEvent[ShipmentCombinedDocumentGenerationFailed](r)
}

// Package process implements the Shipment-Process saga: the process manager
// that drives manifestation, documents and collection booking of a shipment
// through a decision table selected once per shipment.
package process

import (
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Event is the closed family of events stored in a process stream. The
// *Started events of the stages are delegated: each starts its stage in a
// sub-process.
type Event interface {
	es.Event
	es.Delegated
	Category() shipment.Category
	processEvent()
}

type ShipmentProcessStarted struct {
	shipment.Base
	Legs           []shipment.Leg `json:"legs"`
	CollectionDate string         `json:"collectionDate"`
	TimeZone       string         `json:"timeZone"`
}

type ShipmentProcessCompletionChecked struct {
	shipment.Base
}

type ShipmentProcessCompleted struct {
	shipment.Base
}

type ShipmentProcessFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type ManifestationAndDocumentsStarted struct {
	shipment.Base
}

type ManifestationAndDocumentsCompleted struct {
	shipment.Base
}

type ManifestationAndDocumentsFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type CustomsInvoiceGenerationStarted struct {
	shipment.Base
}

type CustomsInvoiceGenerationCompleted struct {
	shipment.Base
	CustomsInvoice string `json:"customsInvoice"`
}

type CustomsInvoiceGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type ShipmentManifestationStarted struct {
	shipment.Base
}

type ShipmentManifestationCompleted struct {
	shipment.Base
	ManifestedLegs []shipment.ManifestedLeg `json:"manifestedLegs"`
}

type ShipmentManifestationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type ShipmentLabelsGenerationStarted struct {
	shipment.Base
}

type ShipmentLabelsGenerationCompleted struct {
	shipment.Base
	ShipmentLabels string `json:"shipmentLabels"`
}

type ShipmentLabelsGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type ReceiptGenerationStarted struct {
	shipment.Base
}

type ReceiptGenerationCompleted struct {
	shipment.Base
	Receipt string `json:"receipt"`
}

type ReceiptGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type CombinedDocumentGenerationStarted struct {
	shipment.Base
}

type CombinedDocumentGenerationCompleted struct {
	shipment.Base
	CombinedDocument string `json:"combinedDocument"`
}

type CombinedDocumentGenerationFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

type CollectionBookingStarted struct {
	shipment.Base
}

type CollectionBookingCompleted struct {
	shipment.Base
	BookingReference string `json:"bookingReference"`
}

type CollectionBookingFailed struct {
	shipment.Base
	Failure string `json:"failure"`
}

func (ShipmentProcessStarted) EventType() string { return "process.ShipmentProcessStarted" }
func (ShipmentProcessCompletionChecked) EventType() string { return "process.ShipmentProcessCompletionChecked" }
func (ShipmentProcessCompleted) EventType() string { return "process.ShipmentProcessCompleted" }
func (ShipmentProcessFailed) EventType() string { return "process.ShipmentProcessFailed" }
func (ManifestationAndDocumentsStarted) EventType() string { return "process.ManifestationAndDocumentsStarted" }
func (ManifestationAndDocumentsCompleted) EventType() string { return "process.ManifestationAndDocumentsCompleted" }
func (ManifestationAndDocumentsFailed) EventType() string { return "process.ManifestationAndDocumentsFailed" }
func (CustomsInvoiceGenerationStarted) EventType() string { return "process.CustomsInvoiceGenerationStarted" }
func (CustomsInvoiceGenerationCompleted) EventType() string { return "process.CustomsInvoiceGenerationCompleted" }
func (CustomsInvoiceGenerationFailed) EventType() string { return "process.CustomsInvoiceGenerationFailed" }
func (ShipmentManifestationStarted) EventType() string { return "process.ShipmentManifestationStarted" }
func (ShipmentManifestationCompleted) EventType() string { return "process.ShipmentManifestationCompleted" }
func (ShipmentManifestationFailed) EventType() string { return "process.ShipmentManifestationFailed" }
func (ShipmentLabelsGenerationStarted) EventType() string { return "process.ShipmentLabelsGenerationStarted" }
func (ShipmentLabelsGenerationCompleted) EventType() string { return "process.ShipmentLabelsGenerationCompleted" }
func (ShipmentLabelsGenerationFailed) EventType() string { return "process.ShipmentLabelsGenerationFailed" }
func (ReceiptGenerationStarted) EventType() string { return "process.ReceiptGenerationStarted" }
func (ReceiptGenerationCompleted) EventType() string { return "process.ReceiptGenerationCompleted" }
func (ReceiptGenerationFailed) EventType() string { return "process.ReceiptGenerationFailed" }
func (CombinedDocumentGenerationStarted) EventType() string { return "process.CombinedDocumentGenerationStarted" }
func (CombinedDocumentGenerationCompleted) EventType() string { return "process.CombinedDocumentGenerationCompleted" }
func (CombinedDocumentGenerationFailed) EventType() string { return "process.CombinedDocumentGenerationFailed" }
func (CollectionBookingStarted) EventType() string { return "process.CollectionBookingStarted" }
func (CollectionBookingCompleted) EventType() string { return "process.CollectionBookingCompleted" }
func (CollectionBookingFailed) EventType() string { return "process.CollectionBookingFailed" }

func (ShipmentProcessStarted) processEvent() {}
func (ShipmentProcessCompletionChecked) processEvent() {}
func (ShipmentProcessCompleted) processEvent() {}
func (ShipmentProcessFailed) processEvent() {}
func (ManifestationAndDocumentsStarted) processEvent() {}
func (ManifestationAndDocumentsCompleted) processEvent() {}
func (ManifestationAndDocumentsFailed) processEvent() {}
func (CustomsInvoiceGenerationStarted) processEvent() {}
func (CustomsInvoiceGenerationCompleted) processEvent() {}
func (CustomsInvoiceGenerationFailed) processEvent() {}
func (ShipmentManifestationStarted) processEvent() {}
func (ShipmentManifestationCompleted) processEvent() {}
func (ShipmentManifestationFailed) processEvent() {}
func (ShipmentLabelsGenerationStarted) processEvent() {}
func (ShipmentLabelsGenerationCompleted) processEvent() {}
func (ShipmentLabelsGenerationFailed) processEvent() {}
func (ReceiptGenerationStarted) processEvent() {}
func (ReceiptGenerationCompleted) processEvent() {}
func (ReceiptGenerationFailed) processEvent() {}
func (CombinedDocumentGenerationStarted) processEvent() {}
func (CombinedDocumentGenerationCompleted) processEvent() {}
func (CombinedDocumentGenerationFailed) processEvent() {}
func (CollectionBookingStarted) processEvent() {}
func (CollectionBookingCompleted) processEvent() {}
func (CollectionBookingFailed) processEvent() {}

// RegisterEvents registers every process event with r.
func RegisterEvents(r *es.EventRegistry) {
	es.RegisterEvent[ShipmentProcessStarted](r)
	es.RegisterEvent[ShipmentProcessCompletionChecked](r)
	es.RegisterEvent[ShipmentProcessCompleted](r)
	es.RegisterEvent[ShipmentProcessFailed](r)
	es.RegisterEvent[ManifestationAndDocumentsStarted](r)
	es.RegisterEvent[ManifestationAndDocumentsCompleted](r)
	es.RegisterEvent[ManifestationAndDocumentsFailed](r)
	es.RegisterEvent[CustomsInvoiceGenerationStarted](r)
	es.RegisterEvent[CustomsInvoiceGenerationCompleted](r)
	es.RegisterEvent[CustomsInvoiceGenerationFailed](r)
	es.RegisterEvent[ShipmentManifestationStarted](r)
	es.RegisterEvent[ShipmentManifestationCompleted](r)
	es.RegisterEvent[ShipmentManifestationFailed](r)
	es.RegisterEvent[ShipmentLabelsGenerationStarted](r)
	es.RegisterEvent[ShipmentLabelsGenerationCompleted](r)
	es.RegisterEvent[ShipmentLabelsGenerationFailed](r)
	es.RegisterEvent[ReceiptGenerationStarted](r)
	es.RegisterEvent[ReceiptGenerationCompleted](r)
	es.RegisterEvent[ReceiptGenerationFailed](r)
	es.RegisterEvent[CombinedDocumentGenerationStarted](r)
	es.RegisterEvent[CombinedDocumentGenerationCompleted](r)
	es.RegisterEvent[CombinedDocumentGenerationFailed](r)
	es.RegisterEvent[CollectionBookingStarted](r)
	es.RegisterEvent[CollectionBookingCompleted](r)
	es.RegisterEvent[CollectionBookingFailed](r)
}

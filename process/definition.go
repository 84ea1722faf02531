package process

import (
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/collection"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

const (
	Domestic      shipment.Category = "domestic-1.0"
	International shipment.Category = "international-1.0"
	Default       shipment.Category = "default-1.0"
)

// Definition is one variant of the process: the decision table consulted for
// every trigger of a shipment of Category.
type Definition struct {
	Category shipment.Category
	Decide   func(state State, trigger Trigger) ([]Event, error)
}

// DomesticV1 runs manifestation and documents without a customs invoice.
func DomesticV1() Definition {
	return Definition{Category: Domestic, Decide: table{}.decide}
}

// InternationalV1 generates a customs invoice before manifestation.
func InternationalV1() Definition {
	return Definition{Category: International, Decide: table{customsInvoice: true}.decide}
}

// DefaultV1 is the fallback process; it follows InternationalV1.
func DefaultV1() Definition {
	return Definition{Category: Default, Decide: table{customsInvoice: true}.decide}
}

type table struct {
	customsInvoice bool
}

func (tb table) decide(state State, trigger Trigger) ([]Event, error) {
	if state.Finished() {
		return nil, nil
	}

	switch t := trigger.(type) {
	case ProcessTrigger:
		return tb.onProcessEvent(state, t)
	case ManifestationTrigger:
		return tb.onManifestationEvent(t)
	case CollectionTrigger:
		return tb.onCollectionEvent(t)
	}
	return nil, es.NewTriggerNotSupported("process", trigger)
}

func (tb table) onProcessEvent(state State, t ProcessTrigger) ([]Event, error) {
	base := shipment.NewBase(t.ShipmentID(), t.Category())
	started := base.Delegate()

	switch e := t.E.(type) {
	case ShipmentProcessStarted:
		return one(ManifestationAndDocumentsStarted{Base: started})
	case ManifestationAndDocumentsStarted:
		if tb.customsInvoice {
			return one(CustomsInvoiceGenerationStarted{Base: started})
		}
		return one(ShipmentManifestationStarted{Base: started})

	case CustomsInvoiceGenerationStarted:
		if tb.customsInvoice {
			return nil, nil
		}
	case CustomsInvoiceGenerationCompleted:
		if tb.customsInvoice {
			return one(ShipmentManifestationStarted{Base: started})
		}
	case CustomsInvoiceGenerationFailed:
		if tb.customsInvoice {
			return one(ManifestationAndDocumentsFailed{Base: base, Failure: e.Failure})
		}

	case ShipmentManifestationStarted:
		return nil, nil
	case ShipmentManifestationCompleted:
		return one(ShipmentLabelsGenerationStarted{Base: started})
	case ShipmentManifestationFailed:
		return one(ManifestationAndDocumentsFailed{Base: base, Failure: e.Failure})

	case ShipmentLabelsGenerationStarted:
		return nil, nil
	case ShipmentLabelsGenerationCompleted:
		return one(ReceiptGenerationStarted{Base: started})
	case ShipmentLabelsGenerationFailed:
		return one(ManifestationAndDocumentsFailed{Base: base, Failure: e.Failure})

	case ReceiptGenerationStarted:
		return nil, nil
	case ReceiptGenerationCompleted:
		return one(CombinedDocumentGenerationStarted{Base: started})
	case ReceiptGenerationFailed:
		return one(ManifestationAndDocumentsFailed{Base: base, Failure: e.Failure})

	case CombinedDocumentGenerationStarted:
		return nil, nil
	case CombinedDocumentGenerationCompleted:
		return one(ManifestationAndDocumentsCompleted{Base: base})
	case CombinedDocumentGenerationFailed:
		return one(ManifestationAndDocumentsFailed{Base: base, Failure: e.Failure})

	case ManifestationAndDocumentsCompleted:
		return one(CollectionBookingStarted{Base: started})
	case ManifestationAndDocumentsFailed:
		return one(ShipmentProcessFailed{Base: base, Failure: e.Failure})

	case CollectionBookingStarted:
		return nil, nil
	case CollectionBookingCompleted:
		return one(ShipmentProcessCompletionChecked{Base: base})
	case CollectionBookingFailed:
		return one(ShipmentProcessFailed{Base: base, Failure: e.Failure})

	case ShipmentProcessCompletionChecked:
		if state.Stages.ManifestationAndDocuments.IsCompletedOrNotRequired() &&
			state.Stages.CollectionBooking.IsCompletedOrNotRequired() {
			return one(ShipmentProcessCompleted{Base: base})
		}
		return nil, nil
	}

	return nil, es.NewTriggerNotSupported("process", t.E)
}

func (tb table) onManifestationEvent(t ManifestationTrigger) ([]Event, error) {
	base := shipment.NewBase(t.ShipmentID(), t.Category())

	switch e := t.E.(type) {
	case manifestation.ShipmentManifested:
		return one(ShipmentManifestationCompleted{Base: base, ManifestedLegs: e.ManifestedLegs})
	case manifestation.ShipmentManifestationFailed:
		return one(ShipmentManifestationFailed{Base: base, Failure: e.Failure})
	case manifestation.ShipmentLabelsGenerated:
		return one(ShipmentLabelsGenerationCompleted{Base: base, ShipmentLabels: e.DocumentLocation})
	case manifestation.ShipmentLabelsGenerationFailed:
		return one(ShipmentLabelsGenerationFailed{Base: base, Failure: e.Failure})
	case manifestation.ShipmentReceiptGenerated:
		return one(ReceiptGenerationCompleted{Base: base, Receipt: e.DocumentLocation})
	case manifestation.ShipmentReceiptGenerationFailed:
		return one(ReceiptGenerationFailed{Base: base, Failure: e.Failure})
	case manifestation.ShipmentCombinedDocumentGenerated:
		return one(CombinedDocumentGenerationCompleted{Base: base, CombinedDocument: e.DocumentLocation})
	case manifestation.ShipmentCombinedDocumentGenerationFailed:
		return one(CombinedDocumentGenerationFailed{Base: base, Failure: e.Failure})
	case manifestation.CustomsInvoiceGenerated:
		if tb.customsInvoice {
			return one(CustomsInvoiceGenerationCompleted{Base: base, CustomsInvoice: e.DocumentLocation})
		}
	case manifestation.CustomsInvoiceGenerationFailed:
		if tb.customsInvoice {
			return one(CustomsInvoiceGenerationFailed{Base: base, Failure: e.Failure})
		}
	}
	return nil, es.NewTriggerNotSupported("process", t.E)
}

func (tb table) onCollectionEvent(t CollectionTrigger) ([]Event, error) {
	base := shipment.NewBase(t.ShipmentID(), t.Category())

	switch e := t.E.(type) {
	case collection.CollectionBooked:
		return one(CollectionBookingCompleted{Base: base, BookingReference: e.BookingReference})
	case collection.CollectionBookingFailed:
		return one(CollectionBookingFailed{Base: base, Failure: e.Failure})
	case collection.CollectionBookingSchedulingFailed:
		return one(CollectionBookingFailed{Base: base, Failure: e.Failure})
	}
	return nil, es.NewTriggerNotSupported("process", t.E)
}

func one(ev Event) ([]Event, error) {
	return []Event{ev}, nil
}

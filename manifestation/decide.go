package manifestation

import (
	"errors"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// ErrShipmentNotInitialized is returned when manifestation is requested, or a
// carrier replies, for a shipment that was not created yet. It is transient: the CreateShipment may
// still be in flight.
var ErrShipmentNotInitialized = errors.New("shipment not initialized")

// Decide returns the events the trigger produces on state.
func Decide(state State, trigger Trigger) ([]Event, error) {
	switch t := trigger.(type) {
	case CreateShipment:
		if state.Initialized() {
			return nil, nil
		}
		return []Event{ShipmentInitialized{
			Base: shipment.NewBase(t.ShipmentID, t.ProcessCategory),
			Legs: t.Legs,
		}}, nil

	case GenerateCustomsInvoice:
		return []Event{CustomsInvoiceGenerated{
			Base:             shipment.NewBase(t.ShipmentID, t.ProcessCategory),
			DocumentLocation: shipment.DocumentLocation(t.ShipmentID, "customs-invoice"),
		}}, nil

	case ManifestShipment:
		if !state.Initialized() {
			return nil, ErrShipmentNotInitialized
		}
		return continueOrComplete(state, t.ProcessCategory), nil

	case ShipmentLegManifested:
		return continueOrComplete(state, t.ProcessCategory), nil

	case CarrierManifested:
		if !state.Initialized() {
			return nil, ErrShipmentNotInitialized
		}
		return []Event{ShipmentLegManifested{
			Base:           shipment.NewBase(t.ShipmentID, state.ProcessCategory),
			CarrierID:      t.CarrierID,
			TrackingNumber: t.TrackingNumber,
		}}, nil

	case CarrierManifestationFailed:
		if !state.Initialized() {
			return nil, ErrShipmentNotInitialized
		}
		base := shipment.NewBase(t.ShipmentID, state.ProcessCategory)
		return []Event{
			ShipmentLegManifestationFailed{Base: base, CarrierID: t.CarrierID, Failure: t.Failure},
			ShipmentManifestationFailed{Base: base, Failure: t.Failure},
		}, nil

	case GenerateShipmentLabels:
		return []Event{ShipmentLabelsGenerated{
			Base:             shipment.NewBase(t.ShipmentID, t.ProcessCategory),
			DocumentLocation: shipment.DocumentLocation(t.ShipmentID, "labels"),
		}}, nil

	case GenerateShipmentReceipt:
		return []Event{ShipmentReceiptGenerated{
			Base:             shipment.NewBase(t.ShipmentID, t.ProcessCategory),
			DocumentLocation: shipment.DocumentLocation(t.ShipmentID, "receipt"),
		}}, nil

	case GenerateCombinedDocument:
		return []Event{ShipmentCombinedDocumentGenerated{
			Base:             shipment.NewBase(t.ShipmentID, t.ProcessCategory),
			DocumentLocation: shipment.DocumentLocation(t.ShipmentID, "combined-document"),
		}}, nil
	}

	return nil, es.NewTriggerNotSupported("manifestation", trigger)
}

// continueOrComplete starts the first leg that has no manifested record, or
// completes the manifestation when every leg has one.
func continueOrComplete(state State, category shipment.Category) []Event {
	base := shipment.NewBase(state.ShipmentID, category)

	pending := state.PendingLegs()
	if len(pending) == 0 {
		return []Event{ShipmentManifested{Base: base, ManifestedLegs: state.ManifestedLegs}}
	}
	return []Event{ShipmentLegManifestationStarted{
		Base:      base.Delegate(),
		CarrierID: pending[0].CarrierID,
	}}
}

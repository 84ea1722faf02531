package manifestation

import (
	"slices"

	"github.com/google/uuid"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// StreamID returns the manifestation stream of shipmentID.
func StreamID(shipmentID string) string {
	return shipmentID + "-Shipment"
}

// State is the folded manifestation stream.
type State struct {
	ProcessCategory shipment.Category
	ShipmentID      string
	Legs            []shipment.Leg
	ManifestedLegs  []shipment.ManifestedLeg
	Documents       shipment.Documents
}

// Initialized reports whether the shipment was created.
func (s State) Initialized() bool {
	return s.ShipmentID != ""
}

// Leg returns the leg operated by carrierID.
func (s State) Leg(carrierID uuid.UUID) (shipment.Leg, bool) {
	for _, l := range s.Legs {
		if l.CarrierID == carrierID {
			return l, true
		}
	}
	return shipment.Leg{}, false
}

// PendingLegs returns the legs without a manifested record for their carrier,
// in shipment order.
func (s State) PendingLegs() []shipment.Leg {
	var pending []shipment.Leg
	for _, l := range s.Legs {
		if !slices.ContainsFunc(s.ManifestedLegs, func(m shipment.ManifestedLeg) bool {
			return m.CarrierID == l.CarrierID
		}) {
			pending = append(pending, l)
		}
	}
	return pending
}

// Projection folds manifestation events.
var Projection es.Projection[State, Event] = es.ProjectionFuncs[State, Event]{
	Initial: func(string) State { return State{} },
	Fold:    apply,
}

func apply(s State, ev Event) State {
	switch e := ev.(type) {
	case ShipmentInitialized:
		return State{
			ProcessCategory: e.ProcessCategory,
			ShipmentID:      e.ShipmentID,
			Legs:            slices.Clone(e.Legs),
		}
	case CustomsInvoiceGenerated:
		s.Documents.CustomsInvoice = e.DocumentLocation
	case CustomsInvoiceGenerationFailed:
		s.Documents.CustomsInvoice = ""
	case ShipmentLegManifested:
		s.ManifestedLegs = withManifestedLeg(s, e.CarrierID, e.TrackingNumber)
	case ShipmentManifested:
		s.ManifestedLegs = slices.Clone(e.ManifestedLegs)
	case ShipmentManifestationFailed:
		s.ManifestedLegs = nil
	case ShipmentLabelsGenerated:
		s.Documents.Labels = e.DocumentLocation
	case ShipmentLabelsGenerationFailed:
		s.Documents.Labels = ""
	case ShipmentReceiptGenerated:
		s.Documents.Receipt = e.DocumentLocation
	case ShipmentReceiptGenerationFailed:
		s.Documents.Receipt = ""
	case ShipmentCombinedDocumentGenerated:
		s.Documents.CombinedDocument = e.DocumentLocation
	case ShipmentCombinedDocumentGenerationFailed:
		s.Documents.CombinedDocument = ""
	}
	return s
}

// withManifestedLeg replaces the manifested record of carrierID, or appends
// one built from its leg. It never mutates the slice held by s.
func withManifestedLeg(s State, carrierID uuid.UUID, trackingNumber string) []shipment.ManifestedLeg {
	leg, ok := s.Leg(carrierID)
	if !ok {
		leg = shipment.Leg{CarrierID: carrierID}
	}
	out := slices.Clone(s.ManifestedLegs)
	for i, m := range out {
		if m.CarrierID == carrierID {
			out[i] = leg.Manifested(trackingNumber)
			return out
		}
	}
	return append(out, leg.Manifested(trackingNumber))
}

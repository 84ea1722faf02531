package process

import (
	"fmt"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/collection"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Delegate maps every delegated stage start to the command that starts the
// stage in its sub-process.
func Delegate(state State, ev Event) (es.Command, bool, error) {
	cmd := shipment.CommandBase{ShipmentID: ev.AggregateID(), ProcessCategory: ev.Category()}

	switch ev.(type) {
	case ManifestationAndDocumentsStarted:
		return manifestation.CreateShipment{CommandBase: cmd, Legs: state.Input.Legs}, true, nil
	case CustomsInvoiceGenerationStarted:
		return manifestation.GenerateCustomsInvoice{CommandBase: cmd}, true, nil
	case ShipmentManifestationStarted:
		return manifestation.ManifestShipment{CommandBase: cmd}, true, nil
	case ShipmentLabelsGenerationStarted:
		return manifestation.GenerateShipmentLabels{CommandBase: cmd}, true, nil
	case ReceiptGenerationStarted:
		return manifestation.GenerateShipmentReceipt{CommandBase: cmd}, true, nil
	case CombinedDocumentGenerationStarted:
		return manifestation.GenerateCombinedDocument{CommandBase: cmd}, true, nil
	case CollectionBookingStarted:
		if len(state.Outcome.ManifestedLegs) == 0 {
			return nil, false, &es.ConcurrencyError{
				Stream: StreamID(cmd.ShipmentID),
				Reason: fmt.Sprintf("Concurrency exception while processing shipment %s, no manifested legs to book a collection for", cmd.ShipmentID),
			}
		}
		return collection.CreateCollectionBooking{
			CommandBase:    cmd,
			CollectionLeg:  state.Outcome.ManifestedLegs[0],
			CollectionDate: shipment.FormatDate(state.Input.CollectionDate),
			TimeZone:       state.Input.TimeZone,
		}, true, nil
	}
	return nil, false, nil
}

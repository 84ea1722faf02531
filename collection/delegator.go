package collection

import (
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/carrier"
)

// Delegate maps the delegated collection events to carrier requests.
func Delegate(state State, ev Event) (es.Command, bool, error) {
	switch e := ev.(type) {
	case CollectionBookingWithCarrierStarted:
		return carrier.BookLeg(e.ShipmentID, state.CollectionLeg.Leg), true, nil
	case CollectionBookingCancellationStarted:
		return carrier.CancelCollectionWithCarrier{
			ShipmentID:       e.ShipmentID,
			CarrierID:        state.CollectionLeg.CarrierID,
			BookingReference: e.BookingReference,
		}, true, nil
	}
	return nil, false, nil
}

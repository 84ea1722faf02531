package manifestation

import (
	"fmt"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/carrier"
)

// Delegate maps ShipmentLegManifestationStarted to the carrier request for
// the started leg.
func Delegate(state State, ev Event) (es.Command, bool, error) {
	started, ok := ev.(ShipmentLegManifestationStarted)
	if !ok {
		return nil, false, nil
	}

	leg, ok := state.Leg(started.CarrierID)
	if !ok {
		return nil, false, &es.ConcurrencyError{
			Stream: StreamID(state.ShipmentID),
			Reason: fmt.Sprintf("no leg for carrier %s", started.CarrierID),
		}
	}
	return carrier.ManifestLeg(started.ShipmentID, leg), true, nil
}

package process

import (
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// ProcessShipment starts the shipment process. It carries no category: the
// category is chosen by classification when the process starts.
type ProcessShipment struct {
	ShipmentID     string         `json:"shipmentId"`
	Legs           []shipment.Leg `json:"legs"`
	CollectionDate string         `json:"collectionDate"`
	TimeZone       string         `json:"timeZone"`
}

func (c ProcessShipment) AggregateID() string { return c.ShipmentID }
func (ProcessShipment) CommandType() string   { return "process.ProcessShipment" }

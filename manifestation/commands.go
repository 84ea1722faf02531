package manifestation

import (
	"github.com/terraskye/eventsourcing-pm/carrier"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// Trigger is the closed set of messages a manifestation stream reacts to:
// its commands, the carrier replies and its own ShipmentLegManifested.
type Trigger interface {
	AggregateID() string
	manifestationTrigger()
}

type CreateShipment struct {
	shipment.CommandBase
	Legs []shipment.Leg `json:"legs"`
}

type ManifestShipment struct {
	shipment.CommandBase
}

type GenerateShipmentLabels struct {
	shipment.CommandBase
}

type GenerateCustomsInvoice struct {
	shipment.CommandBase
}

type GenerateCombinedDocument struct {
	shipment.CommandBase
}

type GenerateShipmentReceipt struct {
	shipment.CommandBase
}

func (CreateShipment) CommandType() string           { return "manifestation.CreateShipment" }
func (ManifestShipment) CommandType() string         { return "manifestation.ManifestShipment" }
func (GenerateShipmentLabels) CommandType() string   { return "manifestation.GenerateShipmentLabels" }
func (GenerateCustomsInvoice) CommandType() string   { return "manifestation.GenerateCustomsInvoice" }
func (GenerateCombinedDocument) CommandType() string { return "manifestation.GenerateCombinedDocument" }
func (GenerateShipmentReceipt) CommandType() string  { return "manifestation.GenerateShipmentReceipt" }

// CarrierManifested wraps a carrier acceptance as a trigger.
type CarrierManifested struct {
	carrier.ShipmentManifestedWithCarrier
}

// CarrierManifestationFailed wraps a carrier rejection as a trigger.
type CarrierManifestationFailed struct {
	carrier.ShipmentCarrierManifestationFailed
}

func (CreateShipment) manifestationTrigger()             {}
func (ManifestShipment) manifestationTrigger()           {}
func (GenerateShipmentLabels) manifestationTrigger()     {}
func (GenerateCustomsInvoice) manifestationTrigger()     {}
func (GenerateCombinedDocument) manifestationTrigger()   {}
func (GenerateShipmentReceipt) manifestationTrigger()    {}
func (CarrierManifested) manifestationTrigger()          {}
func (CarrierManifestationFailed) manifestationTrigger() {}
func (ShipmentLegManifested) manifestationTrigger()      {}

package process_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/collection"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/process"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

func TestDelegate(t *testing.T) {
	base := shipment.NewBase("s1", process.International).Delegate()
	cmdBase := shipment.CommandBase{ShipmentID: "s1", ProcessCategory: process.International}
	state := process.State{
		Category:   process.International,
		ShipmentID: "s1",
		Input: process.Input{
			Legs:           []shipment.Leg{gbLeg, deLeg},
			CollectionDate: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
			TimeZone:       "Europe/Berlin",
		},
		Outcome: process.Outcome{ManifestedLegs: []shipment.ManifestedLeg{gbLeg.Manifested("T1"), deLeg.Manifested("T2")}},
	}

	tests := []struct {
		ev   process.Event
		want es.Command
	}{
		{process.ManifestationAndDocumentsStarted{Base: base}, manifestation.CreateShipment{CommandBase: cmdBase, Legs: state.Input.Legs}},
		{process.CustomsInvoiceGenerationStarted{Base: base}, manifestation.GenerateCustomsInvoice{CommandBase: cmdBase}},
		{process.ShipmentManifestationStarted{Base: base}, manifestation.ManifestShipment{CommandBase: cmdBase}},
		{process.ShipmentLabelsGenerationStarted{Base: base}, manifestation.GenerateShipmentLabels{CommandBase: cmdBase}},
		{process.ReceiptGenerationStarted{Base: base}, manifestation.GenerateShipmentReceipt{CommandBase: cmdBase}},
		{process.CombinedDocumentGenerationStarted{Base: base}, manifestation.GenerateCombinedDocument{CommandBase: cmdBase}},
		{process.CollectionBookingStarted{Base: base}, collection.CreateCollectionBooking{
			CommandBase:    cmdBase,
			CollectionLeg:  gbLeg.Manifested("T1"),
			CollectionDate: "2024-03-11",
			TimeZone:       "Europe/Berlin",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.ev.EventType(), func(t *testing.T) {
			cmd, ok, err := process.Delegate(state, tt.ev)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, cmd)
		})
	}

	_, ok, err := process.Delegate(state, process.ShipmentProcessCompleted{Base: base})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelegate_CollectionWithoutManifestedLegs(t *testing.T) {
	state := process.State{Category: process.Domestic, ShipmentID: "s1"}

	_, _, err := process.Delegate(state, process.CollectionBookingStarted{Base: shipment.NewBase("s1", process.Domestic).Delegate()})
	require.ErrorIs(t, err, es.ErrConcurrency)

	var ce *es.ConcurrencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Process_s1", ce.Stream)
	assert.Contains(t, ce.Reason, "no manifested legs")
}

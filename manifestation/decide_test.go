package manifestation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/carrier"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

const category shipment.Category = "international-1.0"

var (
	carrierA = uuid.MustParse("c62bee76-3e7a-4ce3-87dd-a5eb11678815")
	carrierB = uuid.MustParse("9d6d28f2-fbee-4e53-aeac-2c3b3ba98d28")

	legA = shipment.Leg{CarrierID: carrierA, Sender: "GB-sender1", Receiver: "GB-receiver1", Collection: "GB-collection1"}
	legB = shipment.Leg{CarrierID: carrierB, Sender: "DE-sender2", Receiver: "DE-receiver2", Collection: "DE-collection2"}
)

func cmdBase(id string) shipment.CommandBase {
	return shipment.CommandBase{ShipmentID: id, ProcessCategory: category}
}

func initialized(id string, legs ...shipment.Leg) manifestation.State {
	return es.Replay(manifestation.Projection, manifestation.StreamID(id), manifestation.Event(manifestation.ShipmentInitialized{
		Base: shipment.NewBase(id, category),
		Legs: legs,
	}))
}

func TestDecide_ContinueOrComplete(t *testing.T) {
	t.Run("first leg starts", func(t *testing.T) {
		state := initialized("s1", legA, legB)

		events, err := manifestation.Decide(state, manifestation.ManifestShipment{CommandBase: cmdBase("s1")})
		require.NoError(t, err)
		require.Len(t, events, 1)

		started, ok := events[0].(manifestation.ShipmentLegManifestationStarted)
		require.True(t, ok, "got %T", events[0])
		assert.Equal(t, carrierA, started.CarrierID)
		assert.True(t, started.IsDelegated())
	})

	t.Run("second leg starts once the first is manifested", func(t *testing.T) {
		state := initialized("s1", legA, legB)
		state = manifestation.Projection.Apply(state, manifestation.ShipmentLegManifested{
			Base: shipment.NewBase("s1", category), CarrierID: carrierA, TrackingNumber: "TA",
		})

		events, err := manifestation.Decide(state, manifestation.ShipmentLegManifested{
			Base: shipment.NewBase("s1", category), CarrierID: carrierA, TrackingNumber: "TA",
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, carrierB, events[0].(manifestation.ShipmentLegManifestationStarted).CarrierID)
	})

	t.Run("all legs manifested completes", func(t *testing.T) {
		state := initialized("s1", legA, legB)
		for _, c := range []uuid.UUID{carrierA, carrierB} {
			state = manifestation.Projection.Apply(state, manifestation.ShipmentLegManifested{
				Base: shipment.NewBase("s1", category), CarrierID: c, TrackingNumber: "T-" + c.String(),
			})
		}

		events, err := manifestation.Decide(state, manifestation.ManifestShipment{CommandBase: cmdBase("s1")})
		require.NoError(t, err)
		require.Len(t, events, 1)

		done, ok := events[0].(manifestation.ShipmentManifested)
		require.True(t, ok, "got %T", events[0])
		assert.False(t, done.IsDelegated())
		require.Len(t, done.ManifestedLegs, 2)
		assert.Equal(t, legA.Manifested("T-"+carrierA.String()), done.ManifestedLegs[0])
		assert.Equal(t, legB.Manifested("T-"+carrierB.String()), done.ManifestedLegs[1])
	})
}

func TestDecide_ManifestBeforeCreate(t *testing.T) {
	_, err := manifestation.Decide(manifestation.State{}, manifestation.ManifestShipment{CommandBase: cmdBase("s1")})
	require.ErrorIs(t, err, manifestation.ErrShipmentNotInitialized)
	assert.False(t, es.IsPermanent(err))
}

func TestDecide_CreateIsIdempotent(t *testing.T) {
	cmd := manifestation.CreateShipment{CommandBase: cmdBase("s1"), Legs: []shipment.Leg{legA}}

	events, err := manifestation.Decide(manifestation.State{}, cmd)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []shipment.Leg{legA}, events[0].(manifestation.ShipmentInitialized).Legs)

	events, err = manifestation.Decide(initialized("s1", legA), cmd)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecide_CarrierReplies(t *testing.T) {
	state := initialized("s1", legA)

	events, err := manifestation.Decide(state, manifestation.CarrierManifested{
		ShipmentManifestedWithCarrier: carrier.ShipmentManifestedWithCarrier{ShipmentID: "s1", CarrierID: carrierA, TrackingNumber: "T1"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	leg := events[0].(manifestation.ShipmentLegManifested)
	assert.Equal(t, "T1", leg.TrackingNumber)
	assert.Equal(t, category, leg.ProcessCategory)

	events, err = manifestation.Decide(state, manifestation.CarrierManifestationFailed{
		ShipmentCarrierManifestationFailed: carrier.ShipmentCarrierManifestationFailed{ShipmentID: "s1", CarrierID: carrierA, Failure: "nope"},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.IsType(t, manifestation.ShipmentLegManifestationFailed{}, events[0])
	assert.Equal(t, "nope", events[1].(manifestation.ShipmentManifestationFailed).Failure)
}

func TestDecide_CarrierRepliesBeforeCreate(t *testing.T) {
	replies := []manifestation.Trigger{
		manifestation.CarrierManifested{
			ShipmentManifestedWithCarrier: carrier.ShipmentManifestedWithCarrier{ShipmentID: "s1", CarrierID: carrierA, TrackingNumber: "T1"},
		},
		manifestation.CarrierManifestationFailed{
			ShipmentCarrierManifestationFailed: carrier.ShipmentCarrierManifestationFailed{ShipmentID: "s1", CarrierID: carrierA, Failure: "nope"},
		},
	}

	for _, reply := range replies {
		events, err := manifestation.Decide(manifestation.State{}, reply)
		require.ErrorIs(t, err, manifestation.ErrShipmentNotInitialized, "%T", reply)
		assert.Empty(t, events)
		assert.False(t, es.IsPermanent(err))
	}
}

func TestDecide_Documents(t *testing.T) {
	state := initialized("s1", legA)

	tests := []struct {
		trigger manifestation.Trigger
		want    string
	}{
		{manifestation.GenerateCustomsInvoice{CommandBase: cmdBase("s1")}, "https://shipment-documents.net/s1/customs-invoice"},
		{manifestation.GenerateShipmentLabels{CommandBase: cmdBase("s1")}, "https://shipment-documents.net/s1/labels"},
		{manifestation.GenerateShipmentReceipt{CommandBase: cmdBase("s1")}, "https://shipment-documents.net/s1/receipt"},
		{manifestation.GenerateCombinedDocument{CommandBase: cmdBase("s1")}, "https://shipment-documents.net/s1/combined-document"},
	}

	for _, tt := range tests {
		events, err := manifestation.Decide(state, tt.trigger)
		require.NoError(t, err)
		require.Len(t, events, 1)
		state = manifestation.Projection.Apply(state, events[0])
	}
	docs := state.Documents

	assert.Equal(t, tests[0].want, docs.CustomsInvoice)
	assert.Equal(t, tests[1].want, docs.Labels)
	assert.Equal(t, tests[2].want, docs.Receipt)
	assert.Equal(t, tests[3].want, docs.CombinedDocument)
}

func TestDecide_UnknownTrigger(t *testing.T) {
	var notSupported *es.TriggerNotSupportedError
	_, err := manifestation.Decide(manifestation.State{}, nil)
	require.ErrorAs(t, err, &notSupported)
	assert.True(t, es.IsPermanent(err))
}

func TestDelegate(t *testing.T) {
	state := initialized("s1", legA, legB)

	cmd, ok, err := manifestation.Delegate(state, manifestation.ShipmentLegManifestationStarted{
		Base: shipment.NewBase("s1", category).Delegate(), CarrierID: carrierB,
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, carrier.ManifestShipmentWithCarrier{
		ShipmentID: "s1", CarrierID: carrierB, Sender: legB.Sender, Receiver: legB.Receiver, Collection: legB.Collection,
	}, cmd)

	_, ok, err = manifestation.Delegate(state, manifestation.ShipmentManifested{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = manifestation.Delegate(state, manifestation.ShipmentLegManifestationStarted{CarrierID: uuid.New()})
	assert.ErrorIs(t, err, es.ErrConcurrency)
}

package process_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraskye/eventsourcing-pm/process"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

func TestView(t *testing.T) {
	state := process.State{
		Category:   process.International,
		ShipmentID: "s1",
		Step:       "process.ShipmentProcessCompleted",
		Input:      process.Input{CollectionDate: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), TimeZone: "Europe/Berlin"},
		Outcome: process.Outcome{
			ManifestedLegs:             []shipment.ManifestedLeg{gbLeg.Manifested("T1"), deLeg.Manifested("T2")},
			Documents:                  shipment.Documents{Labels: "l"},
			CollectionBookingReference: "REF",
		},
	}

	v := process.View(state)
	assert.Equal(t, "T1, T2", v.TrackingNumbers)
	assert.Equal(t, "2024-03-11", v.CollectionDate)
	assert.Equal(t, "international-1.0", v.ProcessCategory)
	assert.Equal(t, "REF", v.CollectionBookingReference)
	assert.Equal(t, "l", v.Documents.Labels)
}

func TestStatusQueryHandler(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	q := process.NewStatusQueryHandler(h.manager)

	_, err := q.HandleQuery(ctx, process.StatusQuery{ShipmentID: "s1"})
	assert.ErrorIs(t, err, process.ErrProcessNotFound)

	require.NoError(t, h.manager.InitializeProcess(ctx, processShipment(gbLeg)))
	v, err := q.HandleQuery(ctx, process.StatusQuery{ShipmentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", v.ShipmentID)
	assert.Equal(t, "Europe/London", v.TimeZone)
	assert.Equal(t, "", v.TrackingNumbers)
	assert.Equal(t, process.Started, v.Stages.OverallProcess.Kind)

	// queries never append
	assert.Len(t, h.pub.Published, 1)
}

func TestProjection_RecordedCollectionDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{"well formed", "2024-03-11", time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)},
		{"malformed", "11/03/2024", time.Time{}},
		{"empty", "", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			started := process.ShipmentProcessStarted{
				Base:           shipment.NewBase("s1", process.Domestic),
				Legs:           []shipment.Leg{gbLeg},
				CollectionDate: tt.date,
				TimeZone:       "Europe/London",
			}
			state := process.Projection.Apply(process.Projection.InitialState("ShipmentProcess_s1"), started)
			assert.True(t, tt.want.Equal(state.Input.CollectionDate), "got %s", state.Input.CollectionDate)
		})
	}
}

package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/fixtures"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/process"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

func TestDefaultRegistry(t *testing.T) {
	r := process.DefaultRegistry()
	assert.Equal(t, []shipment.Category{process.Default, process.Domestic, process.International}, r.Categories())

	def, err := r.Lookup(process.Domestic)
	require.NoError(t, err)
	assert.Equal(t, process.Domestic, def.Category)

	_, err = r.Lookup("express-2.0")
	assert.ErrorIs(t, err, process.ErrUnknownCategory)
	assert.ErrorIs(t, err, es.ErrTriggerNotSupported)
}

func TestNewRegistry_Validates(t *testing.T) {
	tests := []struct {
		name string
		defs []process.Definition
	}{
		{"empty category", []process.Definition{{Decide: process.DomesticV1().Decide}}},
		{"no table", []process.Definition{{Category: "x"}}},
		{"duplicate", []process.Definition{process.DomesticV1(), process.DomesticV1()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := process.NewRegistry(tt.defs...)
			assert.Error(t, err)
		})
	}
}

func TestClassify(t *testing.T) {
	_, err := process.Classify(nil)
	assert.ErrorIs(t, err, process.ErrNoLegs)
	assert.ErrorIs(t, err, es.ErrInvalidCommand)

	c, err := process.Classify([]shipment.Leg{gbLeg})
	require.NoError(t, err)
	assert.Equal(t, process.Domestic, c)

	c, err = process.Classify([]shipment.Leg{gbLeg, deLeg})
	require.NoError(t, err)
	assert.Equal(t, process.International, c)
}

func TestTriggerFromEvent(t *testing.T) {
	base := shipment.NewBase("s1", process.International)

	tr, err := process.TriggerFromEvent(process.ShipmentProcessStarted{Base: base})
	require.NoError(t, err)
	assert.IsType(t, process.ProcessTrigger{}, tr)
	assert.Equal(t, "s1", tr.ShipmentID())
	assert.Equal(t, process.International, tr.Category())

	tr, err = process.TriggerFromEvent(manifestation.ShipmentManifested{Base: base})
	require.NoError(t, err)
	assert.IsType(t, process.ManifestationTrigger{}, tr)
	assert.Equal(t, "manifestation.ShipmentManifested", tr.Event().EventType())

	_, err = process.TriggerFromEvent(fixtures.Incremented{ID: "s1"})
	assert.ErrorIs(t, err, es.ErrTriggerNotSupported)
}

package process_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/collection"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/process"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

var (
	carrier1 = uuid.MustParse("c62bee76-3e7a-4ce3-87dd-a5eb11678815")
	carrier2 = uuid.MustParse("9d6d28f2-fbee-4e53-aeac-2c3b3ba98d28")

	gbLeg = shipment.Leg{CarrierID: carrier1, Sender: "GB-sender1", Receiver: "GB-receiver1", Collection: "GB-collection1"}
	deLeg = shipment.Leg{CarrierID: carrier2, Sender: "DE-sender2", Receiver: "GB-receiver2", Collection: "DE-collection2"}
)

// flow drives one decision table the way the bus does: every event the
// process records is fed back to it as a trigger until nothing new happens.
type flow struct {
	t        *testing.T
	def      process.Definition
	state    process.State
	recorded []process.Event
}

func newFlow(t *testing.T, def process.Definition, legs ...shipment.Leg) *flow {
	f := &flow{t: t, def: def, state: process.Projection.InitialState(process.StreamID("s1"))}
	f.record(process.ShipmentProcessStarted{
		Base:           shipment.NewBase("s1", def.Category),
		Legs:           legs,
		CollectionDate: "2024-03-11",
		TimeZone:       "Europe/London",
	})
	return f
}

func (f *flow) base() shipment.Base {
	return shipment.NewBase("s1", f.def.Category)
}

func (f *flow) record(events ...process.Event) {
	queue := events
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		f.state = process.Projection.Apply(f.state, ev)
		f.recorded = append(f.recorded, ev)

		next, err := f.def.Decide(f.state, process.ProcessTrigger{E: ev})
		require.NoError(f.t, err, ev.EventType())
		queue = append(queue, next...)
	}
}

func (f *flow) trigger(tr process.Trigger) {
	events, err := f.def.Decide(f.state, tr)
	require.NoError(f.t, err)
	f.record(events...)
}

func (f *flow) types() []string {
	out := make([]string, 0, len(f.recorded))
	for _, ev := range f.recorded {
		out = append(out, ev.EventType())
	}
	return out
}

func (f *flow) documents() {
	f.trigger(process.ManifestationTrigger{E: manifestation.ShipmentLabelsGenerated{Base: f.base(), DocumentLocation: "labels-url"}})
	f.trigger(process.ManifestationTrigger{E: manifestation.ShipmentReceiptGenerated{Base: f.base(), DocumentLocation: "receipt-url"}})
	f.trigger(process.ManifestationTrigger{E: manifestation.ShipmentCombinedDocumentGenerated{Base: f.base(), DocumentLocation: "combined-url"}})
}

func (f *flow) manifested() {
	f.trigger(process.ManifestationTrigger{E: manifestation.ShipmentManifested{
		Base:           f.base(),
		ManifestedLegs: []shipment.ManifestedLeg{gbLeg.Manifested("T1")},
	}})
}

func TestDomestic_HappyPath(t *testing.T) {
	f := newFlow(t, process.DomesticV1(), gbLeg)
	assert.Equal(t, []string{
		"process.ShipmentProcessStarted",
		"process.ManifestationAndDocumentsStarted",
		"process.ShipmentManifestationStarted",
	}, f.types())

	f.manifested()
	f.documents()
	assert.Equal(t, process.Started, f.state.Stages.CollectionBooking.Kind)
	assert.Equal(t, process.Completed, f.state.Stages.ManifestationAndDocuments.Kind)
	assert.Equal(t, process.NotStarted, f.state.Stages.CustomsInvoiceGeneration.Kind)

	f.trigger(process.CollectionTrigger{E: collection.CollectionBooked{Base: f.base(), CarrierID: carrier1, BookingReference: "REF1"}})

	assert.Equal(t, process.Completed, f.state.Stages.OverallProcess.Kind)
	assert.True(t, f.state.Finished())
	assert.Equal(t, "REF1", f.state.Outcome.CollectionBookingReference)
	assert.Equal(t, shipment.Documents{Labels: "labels-url", Receipt: "receipt-url", CombinedDocument: "combined-url"}, f.state.Outcome.Documents)
	assert.Equal(t, process.Step("process.ShipmentProcessCompleted"), f.state.Step)
	assert.NotContains(t, f.types(), "process.CustomsInvoiceGenerationStarted")
}

func TestInternational_GeneratesCustomsInvoiceFirst(t *testing.T) {
	f := newFlow(t, process.InternationalV1(), gbLeg, deLeg)
	assert.Equal(t, "process.CustomsInvoiceGenerationStarted", f.recorded[len(f.recorded)-1].EventType())
	assert.Equal(t, process.NotStarted, f.state.Stages.ShipmentManifestation.Kind)

	f.trigger(process.ManifestationTrigger{E: manifestation.CustomsInvoiceGenerated{Base: f.base(), DocumentLocation: "invoice-url"}})
	assert.Equal(t, process.Started, f.state.Stages.ShipmentManifestation.Kind)
	assert.Equal(t, "invoice-url", f.state.Outcome.Documents.CustomsInvoice)

	f.manifested()
	f.documents()
	f.trigger(process.CollectionTrigger{E: collection.CollectionBooked{Base: f.base(), BookingReference: "REF2"}})
	assert.Equal(t, process.Completed, f.state.Stages.OverallProcess.Kind)
}

func TestFailures_FailTheProcess(t *testing.T) {
	tests := []struct {
		name  string
		def   process.Definition
		fail  func(f *flow)
		stage func(s process.Stages) process.StageStatus
	}{
		{
			name: "customs invoice",
			def:  process.InternationalV1(),
			fail: func(f *flow) {
				f.trigger(process.ManifestationTrigger{E: manifestation.CustomsInvoiceGenerationFailed{Base: f.base(), Failure: "boom"}})
			},
			stage: func(s process.Stages) process.StageStatus { return s.CustomsInvoiceGeneration },
		},
		{
			name: "manifestation",
			def:  process.DomesticV1(),
			fail: func(f *flow) {
				f.trigger(process.ManifestationTrigger{E: manifestation.ShipmentManifestationFailed{Base: f.base(), Failure: "boom"}})
			},
			stage: func(s process.Stages) process.StageStatus { return s.ShipmentManifestation },
		},
		{
			name: "labels",
			def:  process.DomesticV1(),
			fail: func(f *flow) {
				f.manifested()
				f.trigger(process.ManifestationTrigger{E: manifestation.ShipmentLabelsGenerationFailed{Base: f.base(), Failure: "boom"}})
			},
			stage: func(s process.Stages) process.StageStatus { return s.ShipmentLabels },
		},
		{
			name: "collection booking",
			def:  process.DomesticV1(),
			fail: func(f *flow) {
				f.manifested()
				f.documents()
				f.trigger(process.CollectionTrigger{E: collection.CollectionBookingFailed{Base: f.base(), Failure: "boom"}})
			},
			stage: func(s process.Stages) process.StageStatus { return s.CollectionBooking },
		},
		{
			name: "collection scheduling",
			def:  process.DomesticV1(),
			fail: func(f *flow) {
				f.manifested()
				f.documents()
				f.trigger(process.CollectionTrigger{E: collection.CollectionBookingSchedulingFailed{Base: f.base(), Failure: "boom"}})
			},
			stage: func(s process.Stages) process.StageStatus { return s.CollectionBooking },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlow(t, tt.def, gbLeg)
			tt.fail(f)

			assert.Equal(t, process.StageFailed("boom"), tt.stage(f.state.Stages))
			assert.Equal(t, process.StageFailed("boom"), f.state.Stages.OverallProcess)
			assert.True(t, f.state.Finished())
		})
	}
}

func TestFinishedProcess_DecidesNothing(t *testing.T) {
	f := newFlow(t, process.DomesticV1(), gbLeg)
	f.manifested()
	f.documents()
	f.trigger(process.CollectionTrigger{E: collection.CollectionBookingFailed{Base: f.base(), Failure: "carrier said no"}})
	require.True(t, f.state.Finished())

	// a late booking after the failure changes nothing
	events, err := f.def.Decide(f.state, process.CollectionTrigger{E: collection.CollectionBooked{Base: f.base(), BookingReference: "late"}})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCompletionChecked_RequiresBothStages(t *testing.T) {
	def := process.DomesticV1()
	base := shipment.NewBase("s1", process.Domestic)
	state := process.Projection.Apply(process.Projection.InitialState("Process_s1"), process.ShipmentProcessStarted{Base: base, Legs: []shipment.Leg{gbLeg}})
	state.Stages.CollectionBooking = process.StageCompleted()

	events, err := def.Decide(state, process.ProcessTrigger{E: process.ShipmentProcessCompletionChecked{Base: base}})
	require.NoError(t, err)
	assert.Empty(t, events, "manifestation and documents still running")

	state.Stages.ManifestationAndDocuments = process.StageNotRequired()
	events, err = def.Decide(state, process.ProcessTrigger{E: process.ShipmentProcessCompletionChecked{Base: base}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.IsType(t, process.ShipmentProcessCompleted{}, events[0])
}

func TestDomestic_RejectsCustomsInvoiceEvents(t *testing.T) {
	f := newFlow(t, process.DomesticV1(), gbLeg)

	_, err := f.def.Decide(f.state, process.ManifestationTrigger{E: manifestation.CustomsInvoiceGenerated{Base: f.base()}})
	assert.ErrorIs(t, err, es.ErrTriggerNotSupported)

	_, err = f.def.Decide(f.state, process.ProcessTrigger{E: process.CustomsInvoiceGenerationStarted{Base: f.base()}})
	assert.ErrorIs(t, err, es.ErrTriggerNotSupported)
}

func TestDecide_UnrelatedSubprocessEvent(t *testing.T) {
	f := newFlow(t, process.InternationalV1(), gbLeg, deLeg)

	_, err := f.def.Decide(f.state, process.ManifestationTrigger{E: manifestation.ShipmentInitialized{Base: f.base()}})
	assert.ErrorIs(t, err, es.ErrTriggerNotSupported)
	assert.True(t, es.IsPermanent(err))

	_, err = f.def.Decide(f.state, process.CollectionTrigger{E: collection.CollectionBookingScheduled{Base: f.base()}})
	assert.ErrorIs(t, err, es.ErrTriggerNotSupported)
}

func TestStartedEvents_AreDelegated(t *testing.T) {
	f := newFlow(t, process.InternationalV1(), gbLeg, deLeg)
	f.trigger(process.ManifestationTrigger{E: manifestation.CustomsInvoiceGenerated{Base: f.base(), DocumentLocation: "x"}})
	f.manifested()
	f.documents()

	for _, ev := range f.recorded {
		_, isCompletion := ev.(process.ShipmentProcessCompletionChecked)
		started := strings.HasSuffix(ev.EventType(), "Started")
		if isCompletion || ev.EventType() == "process.ShipmentProcessStarted" {
			assert.False(t, ev.IsDelegated(), ev.EventType())
			continue
		}
		assert.Equal(t, started, ev.IsDelegated(), ev.EventType())
	}
}

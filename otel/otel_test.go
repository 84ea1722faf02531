package otel_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/eventstore/memory"
	"github.com/terraskye/eventsourcing-pm/fixtures"
	esotel "github.com/terraskye/eventsourcing-pm/otel"
	"github.com/terraskye/eventsourcing-pm/routing"
)

var recorder = tracetest.NewSpanRecorder()

func TestMain(m *testing.M) {
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	otel.SetTextMapPropagator(propagation.TraceContext{})
	os.Exit(m.Run())
}

func span(t *testing.T, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range recorder.Ended() {
		if s.Name() == name {
			return s
		}
	}
	t.Fatalf("no span %q", name)
	return nil
}

func envelope(streamID string) es.Envelope {
	return es.Envelope{
		StreamID: streamID,
		Event:    fixtures.Incremented{ID: streamID, By: 1},
		Metadata: es.EventMetadata{
			EventType:     "fixtures.Incremented",
			EventID:       uuid.New(),
			CorrelationID: uuid.New(),
		},
	}
}

func TestTelemetryStore_SaveCarriesTraceContext(t *testing.T) {
	ctx := context.Background()
	store := esotel.WithEventStoreTelemetry(memory.NewMemoryStore())

	ctx, parent := otel.Tracer("test").Start(ctx, "request")
	_, err := store.Save(ctx, []es.Envelope{envelope("otel-1")}, es.NoStream{})
	parent.End()
	require.NoError(t, err)

	iter, err := store.LoadStream(context.Background(), "otel-1")
	require.NoError(t, err)
	loaded, err := iter.All(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Contains(t, loaded[0].Metadata.Headers, "traceparent")

	save := span(t, "EventStore.Save")
	assert.Equal(t, parent.SpanContext().TraceID(), save.SpanContext().TraceID())
	span(t, "EventStore.LoadStream")
}

func TestTelemetryStore_MissingStreamIsNotAnError(t *testing.T) {
	store := esotel.WithEventStoreTelemetry(memory.NewMemoryStore())

	_, err := store.LoadStream(context.Background(), "otel-missing")
	require.ErrorIs(t, err, es.ErrStreamNotFound)

	for _, s := range recorder.Ended() {
		if s.Name() == "EventStore.LoadStream" {
			assert.NotEqual(t, codes.Error, s.Status().Code)
		}
	}
}

type ping struct{ ID string }

func (p ping) AggregateID() string { return p.ID }
func (ping) CommandType() string   { return "otel.Ping" }

func TestTriggerTelemetry(t *testing.T) {
	boom := errors.New("boom")
	var result error

	r := routing.New(esotel.WithTriggerTelemetry())
	routing.On(r, func(context.Context, ping) error { return result })

	result = es.ErrConcurrency
	assert.ErrorIs(t, r.Handle(context.Background(), ping{ID: "p1"}), es.ErrConcurrency)
	assert.NotEqual(t, codes.Error, lastSpan(t, "trigger.handle otel.Ping").Status().Code)

	result = boom
	assert.ErrorIs(t, r.Handle(context.Background(), ping{ID: "p1"}), boom)
	assert.Equal(t, codes.Error, lastSpan(t, "trigger.handle otel.Ping").Status().Code)
}

func TestTriggerTelemetry_ContinuesStoredTrace(t *testing.T) {
	ctx, parent := otel.Tracer("test").Start(context.Background(), "origin")
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	parent.End()

	env := envelope("otel-2")
	env.Metadata.Headers = carrier

	r := routing.New(esotel.WithTriggerTelemetry())
	routing.On(r, func(context.Context, fixtures.Incremented) error { return nil })
	require.NoError(t, r.Handle(es.WithEnvelope(context.Background(), env), env.Event))

	handled := lastSpan(t, "trigger.handle fixtures.Incremented")
	assert.Equal(t, parent.SpanContext().TraceID(), handled.SpanContext().TraceID())
}

type lookup struct{}

func (lookup) QueryType() string { return "otel.Lookup" }

func TestQueryTelemetry(t *testing.T) {
	h := esotel.WithQueryTelemetry(es.NewQueryHandlerFunc(func(context.Context, lookup) (int, error) {
		return 7, nil
	}))

	got, err := h.HandleQuery(context.Background(), lookup{})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, codes.Ok, lastSpan(t, "query.handle otel.Lookup").Status().Code)
}

func lastSpan(t *testing.T, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	ended := recorder.Ended()
	for i := len(ended) - 1; i >= 0; i-- {
		if ended[i].Name() == name {
			return ended[i]
		}
	}
	t.Fatalf("no span %q", name)
	return nil
}

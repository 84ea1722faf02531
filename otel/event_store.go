package otel

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	es "github.com/terraskye/eventsourcing-pm"
)

var _ es.EventStore = (*TelemetryStore)(nil)

type TelemetryStore struct {
	next es.EventStore
	cfg  config
}

// WithEventStoreTelemetry traces and measures every store operation. Saved
// envelopes carry the trace context in their headers so consumers can
// continue the trace.
func WithEventStoreTelemetry(next es.EventStore, options ...Option) *TelemetryStore {
	return &TelemetryStore{next: next, cfg: newConfig(options)}
}

// Save with metrics + span
func (t *TelemetryStore) Save(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error) {
	streamID, _ := es.BatchStreamID(events)

	ctx, span := tracer.Start(ctx, "EventStore.Save",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.cfg.attributes(ctx,
			AttrOperation.String("save"),
			AttrStreamID.String(streamID),
			AttrEventCount.Int(len(events)),
		)...),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if len(carrier) > 0 {
		for i := range events {
			headers := make(map[string]string, len(events[i].Metadata.Headers)+len(carrier))
			for k, v := range events[i].Metadata.Headers {
				headers[k] = v
			}
			for k, v := range carrier {
				headers[k] = v
			}
			events[i].Metadata.Headers = headers
		}
	}

	start := time.Now()
	result, err := t.next.Save(ctx, events, revision)

	attrs := metric.WithAttributes(AttrOperation.String("save"))
	EventStoreDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	EventStoreSaves.Add(ctx, 1)

	if err != nil {
		EventStoreErrors.Add(ctx, 1, attrs)
		if errors.Is(err, es.ErrConcurrency) {
			ConcurrencyConflicts.Add(ctx, 1)
			span.AddEvent("concurrency_conflict")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	EventsAppended.Add(ctx, int64(len(events)))
	span.SetAttributes(AttrStreamVersion.Int64(int64(result.NextExpectedVersion)))
	return result, nil
}

// LoadStream traces the read until the iterator is drained.
func (t *TelemetryStore) LoadStream(ctx context.Context, id string) (*es.Iterator[es.Envelope], error) {
	ctx, span := tracer.Start(ctx, "EventStore.LoadStream",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.cfg.attributes(ctx, AttrOperation.String("load"), AttrStreamID.String(id))...),
	)
	start := time.Now()
	EventStoreLoads.Add(ctx, 1)

	iter, err := t.next.LoadStream(ctx, id)
	if err != nil {
		// a missing stream is the initial state, not a failure
		if !errors.Is(err, es.ErrStreamNotFound) {
			EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("load")))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		return iter, err
	}

	var count int64
	done := false
	finish := func(err error) {
		if done {
			return
		}
		done = true
		EventStoreDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(AttrOperation.String("load")))
		EventsLoaded.Add(ctx, count)
		span.SetAttributes(AttrEventCount.Int64(count))
		if err != nil {
			EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("load")))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}

	return es.NewIteratorFunc(func(ctx context.Context) (es.Envelope, error) {
		if !iter.Next(ctx) {
			err := iter.Err()
			finish(err)
			if err == nil {
				return es.Envelope{}, io.EOF
			}
			return es.Envelope{}, err
		}
		count++
		return iter.Value(), nil
	}).OnClose(func() {
		iter.Close()
		finish(nil)
	}), nil
}

func (t *TelemetryStore) StreamVersion(ctx context.Context, id string) (uint64, error) {
	ctx, span := tracer.Start(ctx, "EventStore.StreamVersion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.cfg.attributes(ctx, AttrOperation.String("version"), AttrStreamID.String(id))...),
	)
	defer span.End()

	v, err := t.next.StreamVersion(ctx, id)
	if err != nil && !errors.Is(err, es.ErrStreamNotFound) {
		EventStoreErrors.Add(ctx, 1, metric.WithAttributes(AttrOperation.String("version")))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

// Close just forwards
func (t *TelemetryStore) Close() error {
	return t.next.Close()
}

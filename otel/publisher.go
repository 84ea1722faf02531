package otel

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	es "github.com/terraskye/eventsourcing-pm"
)

// WithPublishTelemetry traces handing committed events to the bus.
func WithPublishTelemetry(next es.Publisher) es.Publisher {
	return es.PublisherFunc(func(ctx context.Context, events []es.Envelope) error {
		streamID, _ := es.BatchStreamID(events)

		ctx, span := tracer.Start(ctx, "events.publish",
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(
				AttrStreamID.String(streamID),
				AttrEventCount.Int(len(events)),
			),
		)
		defer span.End()

		if err := next.Publish(ctx, events); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		for _, env := range events {
			EventsPublished.Add(ctx, 1, metric.WithAttributes(AttrEventType.String(env.Metadata.EventType)))
		}
		return nil
	})
}

package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/routing"
)

// WithTriggerTelemetry is a routing middleware that traces and measures
// every command and event handled.
//
// When the trigger is a consumed event, the span continues the trace that
// was stored in the event's headers on save. Optimistic concurrency
// conflicts are counted separately; they are retried by the bus and do not
// mark the span as failed.
func WithTriggerTelemetry(options ...Option) routing.Middleware {
	cfg := newConfig(options)

	return func(msgType string, next routing.Handler) routing.Handler {
		typeAttr := metric.WithAttributes(AttrTriggerType.String(msgType))

		return func(ctx context.Context, msg any) error {
			md, consumed := es.MetadataFromContext(ctx)
			if consumed && len(md.Headers) > 0 {
				ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(md.Headers))
			}

			attrs := cfg.attributes(ctx,
				AttrTriggerType.String(msgType),
				AttrCorrelationID.String(es.CorrelationIDFromContext(ctx).String()),
			)
			if a, ok := msg.(interface{ AggregateID() string }); ok {
				attrs = append(attrs, AttrAggregateID.String(a.AggregateID()))
			}
			if consumed {
				attrs = append(attrs,
					AttrEventID.String(md.EventID.String()),
					AttrStreamID.String(es.StreamIDFromContext(ctx)),
					AttrStreamVersion.Int64(int64(es.VersionFromContext(ctx))),
				)
			}

			ctx, span := tracer.Start(ctx, fmt.Sprintf("trigger.handle %s", msgType),
				trace.WithSpanKind(trace.SpanKindConsumer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			TriggersInFlight.Add(ctx, 1, typeAttr)
			defer TriggersInFlight.Add(ctx, -1, typeAttr)

			start := time.Now()
			err := next(ctx, msg)
			TriggersDuration.Record(ctx, float64(time.Since(start).Milliseconds()), typeAttr)

			if err == nil {
				span.SetStatus(codes.Ok, "")
				TriggersHandled.Add(ctx, 1, typeAttr)
				return nil
			}

			TriggersFailed.Add(ctx, 1, typeAttr)
			if errors.Is(err, es.ErrConcurrency) {
				ConcurrencyConflicts.Add(ctx, 1, typeAttr)
				span.AddEvent("concurrency_conflict")
				return err
			}

			span.SetAttributes(AttrPermanent.Bool(es.IsPermanent(err)))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
}

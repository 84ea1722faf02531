package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	es "github.com/terraskye/eventsourcing-pm"
)

// WithQueryTelemetry runs each query of next in a span named after its
// query type and records the query metrics.
//
//	status := WithQueryTelemetry(process.NewStatusQueryHandler(manager))
func WithQueryTelemetry[T es.Query, R any](next es.QueryHandler[T, R], options ...Option) es.QueryHandler[T, R] {
	cfg := newConfig(options)

	return es.NewQueryHandlerFunc(func(ctx context.Context, qry T) (R, error) {
		queryType := qry.QueryType()
		typeAttr := metric.WithAttributes(AttrQueryType.String(queryType))

		ctx, span := tracer.Start(ctx, "query.handle "+queryType,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(cfg.attributes(ctx, AttrQueryType.String(queryType))...),
		)
		defer span.End()

		QueriesInFlight.Add(ctx, 1, typeAttr)
		defer QueriesInFlight.Add(ctx, -1, typeAttr)

		start := time.Now()
		result, err := next.HandleQuery(ctx, qry)
		QueriesDuration.Record(ctx, float64(time.Since(start).Milliseconds()), typeAttr)

		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			QueriesFailed.Add(ctx, 1, typeAttr)
			return result, err
		}

		span.SetStatus(codes.Ok, "")
		QueriesHandled.Add(ctx, 1, typeAttr)
		return result, nil
	})
}

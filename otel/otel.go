// Package otel instruments the event store, the publisher, trigger dispatch
// and queries with OpenTelemetry spans and metrics.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/terraskye/eventsourcing-pm"

const (
	AttrTriggerType = attribute.Key("eventsourcing.trigger.type")
	AttrAggregateID = attribute.Key("eventsourcing.aggregate.id")

	AttrStreamID      = attribute.Key("eventsourcing.stream.id")
	AttrStreamVersion = attribute.Key("eventsourcing.stream.version")

	AttrEventType     = attribute.Key("eventsourcing.event.type")
	AttrEventID       = attribute.Key("eventsourcing.event.id")
	AttrEventCount    = attribute.Key("eventsourcing.events.count")
	AttrCorrelationID = attribute.Key("eventsourcing.correlation.id")

	AttrQueryType = attribute.Key("eventsourcing.query.type")

	AttrOperation = attribute.Key("eventsourcing.operation")
	AttrPermanent = attribute.Key("eventsourcing.error.permanent")
)

var (
	meter  = otel.Meter(instrumentationName)
	tracer = otel.Tracer(instrumentationName)

	latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

	TriggersHandled  = counter("eventsourcing.triggers.handled", "Commands and events handled", "{trigger}")
	TriggersFailed   = counter("eventsourcing.triggers.failed", "Commands and events whose handler failed", "{trigger}")
	TriggersInFlight = upDown("eventsourcing.triggers.in_flight", "Triggers being handled", "{trigger}")
	TriggersDuration = histogram("eventsourcing.triggers.duration", "Trigger handling duration")

	EventsAppended  = counter("eventsourcing.events.appended", "Events appended to streams", "{event}")
	EventsLoaded    = counter("eventsourcing.events.loaded", "Events read back from streams", "{event}")
	EventsPublished = counter("eventsourcing.events.published", "Committed events handed to the bus", "{event}")

	QueriesHandled  = counter("eventsourcing.queries.handled", "Queries answered", "{query}")
	QueriesFailed   = counter("eventsourcing.queries.failed", "Queries that returned an error", "{query}")
	QueriesInFlight = upDown("eventsourcing.queries.in_flight", "Queries being answered", "{query}")
	QueriesDuration = histogram("eventsourcing.queries.duration", "Query duration")

	EventStoreSaves    = counter("eventsourcing.eventstore.saves", "Save calls", "{operation}")
	EventStoreLoads    = counter("eventsourcing.eventstore.loads", "LoadStream calls", "{operation}")
	EventStoreErrors   = counter("eventsourcing.eventstore.errors", "Failed event store calls", "{error}")
	EventStoreDuration = histogram("eventsourcing.eventstore.duration", "Event store call duration")

	// ConcurrencyConflicts counts rejected appends. Each one is retried by
	// the bus, so a steady rate points at a hot stream.
	ConcurrencyConflicts = counter("eventsourcing.concurrency.conflicts", "Appends rejected by the expected version", "{conflict}")
)

// Instrument errors are dropped: the meter still returns a usable no-op
// instrument alongside them.

func counter(name, description, unit string) metric.Int64Counter {
	c, _ := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	return c
}

func upDown(name, description, unit string) metric.Int64UpDownCounter {
	c, _ := meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	return c
}

func histogram(name, description string) metric.Float64Histogram {
	h, _ := meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	)
	return h
}

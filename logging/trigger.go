package logging

import (
	"context"

	"github.com/sirupsen/logrus"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/routing"
)

// WithTriggerLogging is a routing middleware that logs each dispatch and
// its failure. Commands are logged at info level, consumed events at debug.
func WithTriggerLogging(logger *logrus.Entry) routing.Middleware {
	return func(msgType string, next routing.Handler) routing.Handler {
		return func(ctx context.Context, msg any) error {
			var aggregateID string
			if a, ok := msg.(interface{ AggregateID() string }); ok {
				aggregateID = a.AggregateID()
			}

			l := logger.WithFields(logrus.Fields{
				"correlation_id": es.CorrelationIDFromContext(ctx),
				"causation_id":   es.CausationFromContext(ctx).UUID,
			})
			if _, consumed := es.MetadataFromContext(ctx); consumed {
				l = l.WithFields(logrus.Fields{
					"stream_id": es.StreamIDFromContext(ctx),
					"version":   es.VersionFromContext(ctx),
				})
				l.Debugf("Dispatch: %s (aggregateID: %s)", msgType, aggregateID)
			} else {
				l.Infof("Dispatch: %s (aggregateID: %s)", msgType, aggregateID)
			}

			err := next(ctx, msg)
			if err != nil {
				l.WithField("permanent", es.IsPermanent(err)).
					Errorf("Dispatch failed: %s (aggregateID: %s): %v", msgType, aggregateID, err)
			}
			return err
		}
	}
}

package logging

import (
	"context"

	"github.com/sirupsen/logrus"

	es "github.com/terraskye/eventsourcing-pm"
)

// WithPublishLogging logs every committed event handed to next.
func WithPublishLogging(logger *logrus.Entry, next es.Publisher) es.Publisher {
	return es.PublisherFunc(func(ctx context.Context, events []es.Envelope) error {
		for _, env := range events {
			logger.WithFields(logrus.Fields{
				"stream_id":      env.StreamID,
				"version":        env.Version,
				"event_id":       env.Metadata.EventID,
				"correlation_id": env.Metadata.CorrelationID,
			}).Debugf("Publish: %s", env.Metadata.EventType)
		}

		err := next.Publish(ctx, events)
		if err != nil {
			logger.WithError(err).Errorf("Publish failed: %d events", len(events))
		}
		return err
	})
}

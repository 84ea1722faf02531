package logging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	es "github.com/terraskye/eventsourcing-pm"
)

// WithQueryLogging logs every query of next at debug level with its
// duration. Failures are logged as warnings since a query never changes
// state; the caller decides how to answer them.
func WithQueryLogging[T es.Query, R any](logger *logrus.Entry, next es.QueryHandler[T, R]) es.QueryHandler[T, R] {
	return es.NewQueryHandlerFunc(func(ctx context.Context, qry T) (R, error) {
		start := time.Now()
		log := logger.WithField("query", qry.QueryType())

		result, err := next.HandleQuery(ctx, qry)

		log = log.WithField("elapsed", time.Since(start))
		if err != nil {
			log.WithError(err).Warnf("Query failed: %s", qry.QueryType())
			return result, err
		}
		log.Debugf("Query: %s", qry.QueryType())
		return result, nil
	})
}

package eventsourcing

import (
	"context"
	"fmt"
)

// QueryGateway runs queries of type T against the handler registered on a
// QueryBus. It implements QueryHandler[T, R], so it can stand in wherever a
// handler is expected.
type QueryGateway[T Query, R any] struct {
	bus *QueryBus
}

func NewQueryGateway[T Query, R any](bus *QueryBus) QueryGateway[T, R] {
	return QueryGateway[T, R]{bus: bus}
}

// HandleQuery looks the handler up at call time, so handlers may be
// registered after the gateway is created.
func (g QueryGateway[T, R]) HandleQuery(ctx context.Context, qry T) (R, error) {
	var zero R

	h, ok := g.bus.lookup(qry.QueryType())
	if !ok {
		return zero, fmt.Errorf("query %s: %w", qry.QueryType(), ErrHandlerNotFound)
	}

	handler, ok := h.(QueryHandler[T, R])
	if !ok {
		return zero, fmt.Errorf("query %s: handler %T does not return %T", qry.QueryType(), h, zero)
	}

	return handler.HandleQuery(ctx, qry)
}

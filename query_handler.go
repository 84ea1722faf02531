package eventsourcing

import (
	"context"
)

// Query is a read-only request against a projection of one or more streams.
// Handling a query never appends events.
type Query interface {
	QueryType() string
}

// QueryHandler answers queries of type T with results of type R.
//
// Example Usage:
//
//	handler := NewQueryHandlerFunc(func(ctx context.Context, q StatusQuery) (Outcome, error) {
//	    return repo.GetState(ctx, q.StreamID)
//	})
type QueryHandler[T Query, R any] interface {
	HandleQuery(ctx context.Context, qry T) (R, error)
}

// QueryHandlerFunc adapts an ordinary function to a QueryHandler.
type QueryHandlerFunc[T Query, R any] func(ctx context.Context, qry T) (R, error)

// HandleQuery calls f.
func (f QueryHandlerFunc[T, R]) HandleQuery(ctx context.Context, qry T) (R, error) {
	return f(ctx, qry)
}

// NewQueryHandlerFunc creates a QueryHandler from a function.
func NewQueryHandlerFunc[T Query, R any](fn func(ctx context.Context, qry T) (R, error)) QueryHandler[T, R] {
	return QueryHandlerFunc[T, R](fn)
}

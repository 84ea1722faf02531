package eventsourcing

import (
	"fmt"
	"sync"
)

// QueryBus is a registry of query handlers keyed by QueryType. Handlers are
// executed through a typed QueryGateway.
//
// Example Usage:
//
//	bus := NewQueryBus()
//	RegisterQueryHandler(bus, NewQueryHandlerFunc(func(ctx context.Context, q StatusQuery) (StatusView, error) {
//	    return view(ctx, q.ShipmentID)
//	}))
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[string]any
}

func NewQueryBus() *QueryBus {
	return &QueryBus{
		handlers: make(map[string]any),
	}
}

// RegisterQueryHandler registers handler for the QueryType of T.
//
// Panics if a handler is already registered for that query type.
func RegisterQueryHandler[T Query, R any](bus *QueryBus, handler QueryHandler[T, R]) {
	var zero T
	queryType := zero.QueryType()

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if _, exists := bus.handlers[queryType]; exists {
		panic(fmt.Sprintf("handler already registered for query type %s", queryType))
	}
	bus.handlers[queryType] = handler
}

func (b *QueryBus) lookup(queryType string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.handlers[queryType]
	return h, ok
}

// Package routing dispatches inbound messages by type name to exactly one
// handler.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	es "github.com/terraskye/eventsourcing-pm"
)

// Handler handles one decoded message.
type Handler func(ctx context.Context, msg any) error

// Middleware decorates the handler of msgType.
type Middleware func(msgType string, next Handler) Handler

type route struct {
	decode func(payload []byte) (any, error)
	handle Handler
}

// Router maps message type names to handlers. Routes are registered at
// startup; registering a name twice panics.
type Router struct {
	mu         sync.RWMutex
	routes     map[string]route
	middleware []Middleware
}

func New(middleware ...Middleware) *Router {
	return &Router{
		routes:     make(map[string]route),
		middleware: middleware,
	}
}

// Use appends middleware. The first middleware is the outermost.
func (r *Router) Use(middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// On routes messages of type T, named by TypeName, to fn.
func On[T any](r *Router, fn func(ctx context.Context, msg T) error) {
	var zero T
	OnNamed(r, TypeName(zero), fn)
}

// OnNamed routes messages named name to fn, decoding their payload into T.
//
// Panics if name is empty or already routed.
func OnNamed[T any](r *Router, name string, fn func(ctx context.Context, msg T) error) {
	if name == "" {
		panic("routing: cannot route an empty message type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[name]; exists {
		panic(fmt.Sprintf("routing: message type already routed: %s", name))
	}

	r.routes[name] = route{
		decode: func(payload []byte) (any, error) {
			var msg T
			if err := json.Unmarshal(payload, &msg); err != nil {
				return nil, err
			}
			return msg, nil
		},
		handle: func(ctx context.Context, msg any) error {
			m, ok := msg.(T)
			if !ok {
				return &es.TriggerNotSupportedError{Aggregate: name, Trigger: fmt.Sprintf("%T", msg)}
			}
			return fn(ctx, m)
		},
	}
}

// Types returns the routed type names in sorted order.
func (r *Router) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch decodes payload as msgType and runs its handler.
func (r *Router) Dispatch(ctx context.Context, msgType string, payload []byte) error {
	rt, handler, err := r.lookup(msgType)
	if err != nil {
		return err
	}

	msg, err := rt.decode(payload)
	if err != nil {
		return fmt.Errorf("decode %s: %w: %v", msgType, es.ErrMalformedMessage, err)
	}
	return handler(ctx, msg)
}

// Handle runs the handler of an already decoded message.
func (r *Router) Handle(ctx context.Context, msg any) error {
	_, handler, err := r.lookup(TypeName(msg))
	if err != nil {
		return err
	}
	return handler(ctx, msg)
}

func (r *Router) lookup(msgType string) (route, Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[msgType]
	if !ok {
		return route{}, nil, &es.TriggerNotSupportedError{Aggregate: "router", Trigger: msgType}
	}

	h := rt.handle
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](msgType, h)
	}
	return rt, h, nil
}

// TypeName returns the routing name of a command or event, or "" for any
// other value.
func TypeName(msg any) string {
	switch m := msg.(type) {
	case es.Command:
		return m.CommandType()
	case es.Event:
		return m.EventType()
	}
	return ""
}

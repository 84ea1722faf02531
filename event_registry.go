package eventsourcing

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrEventNotRegistered is returned when a stored event type has no decoder.
var ErrEventNotRegistered = errors.New("event not registered")

// EventRegistry maps stored event type names to decoders. Backends use it to
// turn persisted payloads back into concrete event values.
//
// A registry is built once at startup and shared by every store:
//
//	reg := NewEventRegistry()
//	RegisterEvent[OrderPlaced](reg)
//	store := sqlite.NewEventStore(db, reg)
type EventRegistry struct {
	mu       sync.RWMutex
	decoders map[string]func(data []byte) (Event, error)
}

func NewEventRegistry() *EventRegistry {
	return &EventRegistry{decoders: make(map[string]func(data []byte) (Event, error))}
}

// RegisterEvent registers T under the name returned by its EventType method.
//
// Panics if the name is already registered.
func RegisterEvent[T Event](r *EventRegistry) {
	var zero T
	RegisterEventByName[T](r, zero.EventType())
}

// RegisterEventByName registers T under a custom name.
//
// Panics if the name is empty or already registered.
func RegisterEventByName[T Event](r *EventRegistry, name string) {
	if name == "" {
		panic("cannot register event under an empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[name]; exists {
		panic(fmt.Sprintf("event already registered: %s", name))
	}

	r.decoders[name] = func(data []byte) (Event, error) {
		var ev T
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	}
}

// Decode rebuilds the event stored under name.
func (r *EventRegistry) Decode(name string, data []byte) (Event, error) {
	r.mu.RLock()
	decode, ok := r.decoders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("decode %q: %w", name, ErrEventNotRegistered)
	}
	ev, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return ev, nil
}

// Encode serialises an event payload.
func (r *EventRegistry) Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", ev.EventType(), err)
	}
	return data, nil
}

// Names returns the registered names in sorted order.
func (r *EventRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

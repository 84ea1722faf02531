package process

import (
	"errors"
	"fmt"
	"slices"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// ErrUnknownCategory is returned for a category no definition is registered
// under. It is a wiring defect, never retried.
var ErrUnknownCategory = fmt.Errorf("unknown process category: %w", es.ErrTriggerNotSupported)

// ErrNoLegs is returned when a shipment without legs is classified.
var ErrNoLegs = fmt.Errorf("shipment has no legs: %w", es.ErrInvalidCommand)

// Registry maps categories to definitions. It is immutable once built.
type Registry struct {
	definitions map[shipment.Category]Definition
}

// NewRegistry builds a registry of defs. Categories must be unique and
// non-empty, and every definition needs a decision table.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{definitions: make(map[shipment.Category]Definition, len(defs))}
	for _, d := range defs {
		if d.Category == "" {
			return nil, errors.New("process definition without category")
		}
		if d.Decide == nil {
			return nil, fmt.Errorf("process definition %q has no decision table", d.Category)
		}
		if _, exists := r.definitions[d.Category]; exists {
			return nil, fmt.Errorf("process definition %q registered twice", d.Category)
		}
		r.definitions[d.Category] = d
	}
	return r, nil
}

// DefaultRegistry holds DomesticV1, InternationalV1 and DefaultV1.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DomesticV1(), InternationalV1(), DefaultV1())
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition of category.
func (r *Registry) Lookup(category shipment.Category) (Definition, error) {
	d, ok := r.definitions[category]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return d, nil
}

// Categories returns the registered categories in sorted order.
func (r *Registry) Categories() []shipment.Category {
	out := make([]shipment.Category, 0, len(r.definitions))
	for c := range r.definitions {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Classifier selects the category of a new shipment.
type Classifier func(legs []shipment.Leg) (shipment.Category, error)

// Classify selects Domestic for a single leg and International for more.
func Classify(legs []shipment.Leg) (shipment.Category, error) {
	switch n := len(legs); {
	case n == 0:
		return "", ErrNoLegs
	case n == 1:
		return Domestic, nil
	default:
		return International, nil
	}
}

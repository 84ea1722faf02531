package fixtures

import (
	"context"
	"sync"

	es "github.com/terraskye/eventsourcing-pm"
)

// PublisherSpy records every batch handed to it.
type PublisherSpy struct {
	mu sync.Mutex

	PublishFn func(ctx context.Context, events []es.Envelope) error

	PublishCalls int
	Published    []es.Envelope

	err error
}

func NewPublisherSpy() *PublisherSpy {
	return &PublisherSpy{}
}

// FailWith makes every Publish return err after recording the batch.
func (p *PublisherSpy) FailWith(err error) *PublisherSpy {
	p.err = err
	return p
}

// Publish implements eventsourcing.Publisher.
func (p *PublisherSpy) Publish(ctx context.Context, events []es.Envelope) error {
	p.mu.Lock()
	p.PublishCalls++
	p.Published = append(p.Published, events...)
	p.mu.Unlock()

	if p.PublishFn != nil {
		return p.PublishFn(ctx, events)
	}
	return p.err
}

// Events returns the published domain events in order.
func (p *PublisherSpy) Events() []es.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]es.Event, len(p.Published))
	for i, env := range p.Published {
		out[i] = env.Event
	}
	return out
}

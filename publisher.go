package eventsourcing

import "context"

// Publisher hands committed events to the message bus. It is only invoked
// after the events are durable.
type Publisher interface {
	Publish(ctx context.Context, events []Envelope) error
}

// PublisherFunc adapts an ordinary function to a Publisher.
type PublisherFunc func(ctx context.Context, events []Envelope) error

func (f PublisherFunc) Publish(ctx context.Context, events []Envelope) error {
	return f(ctx, events)
}

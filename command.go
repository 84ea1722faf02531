package eventsourcing

import (
	"context"
	"time"
)

// Command is an intent addressed to a single aggregate. CommandType is the
// stable message name the bus routes on.
type Command interface {
	AggregateID() string
	CommandType() string
}

// CommandSender dispatches commands to whoever consumes them. Correlation and
// causation are taken from ctx.
type CommandSender interface {
	Send(ctx context.Context, cmds ...Command) error
}

// DelayedCommandSender can also dispatch a command after a delay. The send
// happens in the background and outlives ctx cancellation.
type DelayedCommandSender interface {
	CommandSender
	SendAfter(ctx context.Context, delay time.Duration, cmd Command)
}

// EventPublisher publishes events that are not backed by a stream, such as
// replies from an external integration.
type EventPublisher interface {
	PublishEvents(ctx context.Context, events ...Event) error
}

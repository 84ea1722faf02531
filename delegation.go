package eventsourcing

import (
	"context"
	"fmt"
)

// Delegated is implemented by events that may require an outbound command.
type Delegated interface {
	IsDelegated() bool
}

// Delegator translates a delegated event into the command a collaborator
// must receive. ok is false when the event needs no command.
type Delegator[S any, E Event] interface {
	Delegate(state S, event E) (cmd Command, ok bool, err error)
}

// DelegatorFunc adapts an ordinary function to a Delegator.
type DelegatorFunc[S any, E Event] func(state S, event E) (Command, bool, error)

func (f DelegatorFunc[S, E]) Delegate(state S, event E) (Command, bool, error) {
	return f(state, event)
}

// SendDelegated sends the command for every delegated event, in order, using
// state as the context the commands are built from. It stops at the first
// failure.
func SendDelegated[S any, E Event](ctx context.Context, sender CommandSender, d Delegator[S, E], state S, events []E) error {
	for _, ev := range events {
		del, ok := any(ev).(Delegated)
		if !ok || !del.IsDelegated() {
			continue
		}

		cmd, ok, err := d.Delegate(state, ev)
		if err != nil {
			return fmt.Errorf("delegate %s: %w", ev.EventType(), err)
		}
		if !ok {
			continue
		}
		if err := sender.Send(ctx, cmd); err != nil {
			return fmt.Errorf("send %s for %s: %w", cmd.CommandType(), ev.EventType(), err)
		}
	}
	return nil
}

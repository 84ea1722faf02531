package fixtures

import (
	"context"
	"sync"
	"time"

	es "github.com/terraskye/eventsourcing-pm"
)

// Delayed is a command recorded by SenderSpy.SendAfter.
type Delayed struct {
	Delay   time.Duration
	Command es.Command
}

// SenderSpy records outbound commands and events instead of dispatching them.
type SenderSpy struct {
	mu sync.Mutex

	SendFn func(ctx context.Context, cmds ...es.Command) error

	Sent      []es.Command
	Delayed   []Delayed
	Events    []es.Event
	Contexts  []context.Context
	SendCalls int

	err error
}

func NewSenderSpy() *SenderSpy {
	return &SenderSpy{}
}

// FailWith makes every Send and PublishEvents return err.
func (s *SenderSpy) FailWith(err error) *SenderSpy {
	s.err = err
	return s
}

// Send implements eventsourcing.CommandSender.
func (s *SenderSpy) Send(ctx context.Context, cmds ...es.Command) error {
	s.mu.Lock()
	s.SendCalls++
	s.Contexts = append(s.Contexts, ctx)
	if s.err == nil {
		s.Sent = append(s.Sent, cmds...)
	}
	s.mu.Unlock()

	if s.SendFn != nil {
		return s.SendFn(ctx, cmds...)
	}
	return s.err
}

// SendAfter implements eventsourcing.DelayedCommandSender. The command is
// recorded, never sent.
func (s *SenderSpy) SendAfter(_ context.Context, delay time.Duration, cmd es.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delayed = append(s.Delayed, Delayed{Delay: delay, Command: cmd})
}

// PublishEvents implements eventsourcing.EventPublisher.
func (s *SenderSpy) PublishEvents(_ context.Context, events ...es.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.Events = append(s.Events, events...)
	return nil
}

// Commands returns a copy of the sent commands.
func (s *SenderSpy) Commands() []es.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]es.Command(nil), s.Sent...)
}

// PublishedEvents returns a copy of the published events.
func (s *SenderSpy) PublishedEvents() []es.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]es.Event(nil), s.Events...)
}

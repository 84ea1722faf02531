package eventsourcing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// DefaultDeadline bounds every store call made by a session.
const DefaultDeadline = 30 * time.Second

var now = time.Now

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	deadline time.Duration
	clock    func() time.Time
}

// WithDeadline overrides DefaultDeadline for store calls.
func WithDeadline(d time.Duration) SessionOption {
	return func(o *sessionOptions) { o.deadline = d }
}

// WithClock sets the clock used to timestamp appended events.
func WithClock(clock func() time.Time) SessionOption {
	return func(o *sessionOptions) { o.clock = clock }
}

// Session is a single-use unit of work against one stream.
//
// The stream is read lazily: nothing touches the store until GetState or
// Save. A session commits at most once; after a successful Save it is locked
// and rejects further appends.
type Session[S any, E Event] struct {
	store     EventStore
	publisher Publisher
	streamID  string
	opts      sessionOptions

	committed []Envelope
	pending   []Envelope
	saved     []Envelope // the batch committed by Save

	loaded  bool // committed holds the full stream
	known   bool // version is the stream's committed version
	exists  bool
	version uint64
	locked  bool
}

// OpenSession binds a session to streamID. The publisher may be nil for
// read-only use.
func OpenSession[S any, E Event](store EventStore, publisher Publisher, streamID string, opts ...SessionOption) *Session[S, E] {
	o := sessionOptions{deadline: DefaultDeadline, clock: now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Session[S, E]{
		store:     store,
		publisher: publisher,
		streamID:  streamID,
		opts:      o,
	}
}

// StreamID returns the stream the session is bound to.
func (s *Session[S, E]) StreamID() string { return s.streamID }

// GetState folds the committed events, then the pending ones, through p.
// The stream is read from the store on the first call only.
func (s *Session[S, E]) GetState(ctx context.Context, p Projection[S, E]) (S, error) {
	var zero S
	if err := s.load(ctx); err != nil {
		return zero, err
	}

	state := p.InitialState(s.streamID)
	for _, envs := range [][]Envelope{s.committed, s.pending} {
		for _, env := range envs {
			ev, ok := env.Event.(E)
			if !ok {
				return zero, s.incompatible(env.Event)
			}
			state = p.Apply(state, ev)
		}
	}
	return state, nil
}

// AppendEvents buffers events for the next Save. A nil correlationID starts
// a new correlation shared by the whole batch.
func (s *Session[S, E]) AppendEvents(events []E, correlationID uuid.UUID, causationID uuid.NullUUID) error {
	if s.locked {
		return fmt.Errorf("append to stream %q: %w", s.streamID, ErrSessionLocked)
	}
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}

	envs := make([]Envelope, 0, len(events))
	for _, ev := range events {
		if any(ev) == nil {
			return s.incompatible(nil)
		}
		envs = append(envs, Envelope{
			StreamID: s.streamID,
			Event:    ev,
			Metadata: EventMetadata{
				EventType:     ev.EventType(),
				EventID:       uuid.New(),
				CorrelationID: correlationID,
				CausationID:   causationID,
				Timestamp:     s.opts.clock().UTC(),
			},
		})
	}
	s.pending = append(s.pending, envs...)
	return nil
}

// Save commits the pending events with an expected-version precondition and
// then publishes them. It is a no-op when nothing is pending.
func (s *Session[S, E]) Save(ctx context.Context) error {
	if s.locked {
		return fmt.Errorf("save stream %q: %w", s.streamID, ErrSessionLocked)
	}
	if len(s.pending) == 0 {
		return nil
	}
	if s.streamID == "" {
		return fmt.Errorf("save stream: %w", ErrInvalidStreamID)
	}

	if !s.known {
		if err := s.readVersion(ctx); err != nil {
			return err
		}
	}

	var expected StreamState = NoStream{}
	if s.exists {
		expected = Revision(s.version)
	}
	for i := range s.pending {
		s.pending[i].Version = s.version + uint64(i) + 1
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.deadline)
	_, err := s.store.Save(callCtx, s.pending, expected)
	cancel()
	if err != nil {
		if errors.Is(err, ErrConcurrency) || errors.Is(err, ErrStreamExists) {
			return &ConcurrencyError{Stream: s.streamID, Err: err}
		}
		return fmt.Errorf("save stream %q: %w", s.streamID, timeout(err))
	}

	s.locked = true
	s.version += uint64(len(s.pending))
	s.exists = true
	s.saved, s.pending = s.pending, nil
	if s.loaded {
		s.committed = append(s.committed, s.saved...)
	}

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, s.GetNewEvents()); err != nil {
		return fmt.Errorf("publish stream %q: %w", s.streamID, timeout(err))
	}
	return nil
}

// GetAllEvents returns the whole stream as the session sees it: the
// committed events followed by the pending ones. The stream is read from the
// store on the first call unless GetState already read it.
func (s *Session[S, E]) GetAllEvents(ctx context.Context) ([]Envelope, error) {
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	all := make([]Envelope, 0, len(s.committed)+len(s.pending))
	all = append(all, s.committed...)
	return append(all, s.pending...), nil
}

// GetNewEvents returns the events appended through this session, pending
// before Save and committed after it.
func (s *Session[S, E]) GetNewEvents() []Envelope {
	if s.locked {
		return append([]Envelope(nil), s.saved...)
	}
	return append([]Envelope(nil), s.pending...)
}

func (s *Session[S, E]) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if s.streamID == "" {
		return fmt.Errorf("load stream: %w", ErrInvalidStreamID)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.deadline)
	defer cancel()

	iter, err := s.store.LoadStream(callCtx, s.streamID)
	if errors.Is(err, ErrStreamNotFound) {
		s.loaded, s.known, s.exists, s.version = true, true, false, 0
		return nil
	}
	if err != nil {
		return fmt.Errorf("load stream %q: %w", s.streamID, timeout(err))
	}
	defer iter.Close()

	var committed []Envelope
	for iter.Next(callCtx) {
		env := iter.Value()
		if _, ok := env.Event.(E); !ok {
			return s.incompatible(env.Event)
		}
		committed = append(committed, env)
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("load stream %q: %w", s.streamID, timeout(err))
	}

	s.committed = committed
	s.loaded, s.known = true, true
	s.exists = len(committed) > 0
	s.version = uint64(len(committed))
	return nil
}

func (s *Session[S, E]) readVersion(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.deadline)
	defer cancel()

	version, err := s.store.StreamVersion(callCtx, s.streamID)
	switch {
	case errors.Is(err, ErrStreamNotFound):
		s.exists, s.version = false, 0
	case err != nil:
		return fmt.Errorf("read version of stream %q: %w", s.streamID, timeout(err))
	default:
		s.exists, s.version = version > 0, version
	}
	s.known = true
	return nil
}

func (s *Session[S, E]) incompatible(ev Event) error {
	name := "<nil>"
	if ev != nil {
		name = ev.EventType()
	}
	return &IncompatibleEventError{
		Stream:    s.streamID,
		EventType: name,
		Family:    reflect.TypeFor[E]().String(),
	}
}

func timeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

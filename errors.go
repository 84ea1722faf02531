package eventsourcing

import (
	"errors"
	"fmt"
)

var (
	// ErrConcurrency marks every optimistic concurrency failure.
	ErrConcurrency = errors.New("concurrency conflict")

	// ErrStreamNotFound is returned when a stream holds no events.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrStreamExists is returned when a NoStream append hits an existing stream.
	ErrStreamExists = errors.New("stream already exists")

	ErrInvalidRevision   = errors.New("invalid revision")
	ErrInvalidEventBatch = errors.New("invalid event batch")
	ErrInvalidStreamID   = errors.New("invalid stream id")

	// ErrIncompatibleEvent is returned when an event does not belong to the
	// event family of the aggregate reading or writing the stream.
	ErrIncompatibleEvent = errors.New("incompatible event")

	// ErrSessionLocked is returned when a session is used after a successful Save.
	ErrSessionLocked = errors.New("session locked")

	// ErrTriggerNotSupported is returned when no decision exists for a trigger.
	ErrTriggerNotSupported = errors.New("trigger not supported")

	// ErrTimeout is returned when a store or bus call exceeds its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrMalformedMessage is returned when an inbound payload cannot be decoded.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrInvalidCommand is returned when a command fails validation.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrHandlerNotFound is returned when no query handler is registered for
	// a query type.
	ErrHandlerNotFound = errors.New("handler not found")
)

// StreamRevisionConflictError is reported by a backend when the expected
// revision of an append does not match the stream.
type StreamRevisionConflictError struct {
	Stream           string
	ExpectedRevision Revision
	ActualRevision   Revision
}

func (e StreamRevisionConflictError) Error() string {
	return fmt.Sprintf("concurrency conflict on stream %q: (expected version %d, actual %d)",
		e.Stream, e.ExpectedRevision, e.ActualRevision)
}

func (e StreamRevisionConflictError) Is(target error) bool {
	return target == ErrConcurrency
}

// ConcurrencyError is the conflict surfaced to aggregate handlers. It names
// the stream whose precondition failed, or the causal rule that was broken.
type ConcurrencyError struct {
	Stream string
	Reason string
	Err    error
}

func (e *ConcurrencyError) Error() string {
	msg := fmt.Sprintf("concurrency exception on stream %q", e.Stream)
	if e.Reason != "" {
		msg += ", " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConcurrencyError) Unwrap() error { return e.Err }

func (e *ConcurrencyError) Is(target error) bool {
	return target == ErrConcurrency
}

// IncompatibleEventError names the offending event type and stream.
type IncompatibleEventError struct {
	Stream    string
	EventType string
	Family    string
}

func (e *IncompatibleEventError) Error() string {
	return fmt.Sprintf("stream %q: event %s is not a %s: %v", e.Stream, e.EventType, e.Family, ErrIncompatibleEvent)
}

func (e *IncompatibleEventError) Unwrap() error { return ErrIncompatibleEvent }

// TriggerNotSupportedError is returned by a decision function that has no
// entry for the trigger it received.
type TriggerNotSupportedError struct {
	Aggregate string
	Trigger   string
}

func (e *TriggerNotSupportedError) Error() string {
	return fmt.Sprintf("%s: trigger %s: %v", e.Aggregate, e.Trigger, ErrTriggerNotSupported)
}

func (e *TriggerNotSupportedError) Unwrap() error { return ErrTriggerNotSupported }

// NewTriggerNotSupported builds a TriggerNotSupportedError for the given trigger value.
func NewTriggerNotSupported(aggregate string, trigger any) error {
	return &TriggerNotSupportedError{Aggregate: aggregate, Trigger: fmt.Sprintf("%T", trigger)}
}

// EventStoreError wraps failures raised by a backend itself.
type EventStoreError struct {
	Err error
}

func (e *EventStoreError) Error() string {
	return fmt.Sprintf("eventstore error: %v", e.Err)
}

func (e *EventStoreError) Unwrap() error {
	return e.Err
}

func WrapEventStoreError(err error) error {
	if err == nil {
		return nil
	}
	return &EventStoreError{Err: err}
}

// IsPermanent reports whether err is a wiring or programming defect that a
// retry cannot fix.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrIncompatibleEvent) ||
		errors.Is(err, ErrSessionLocked) ||
		errors.Is(err, ErrTriggerNotSupported) ||
		errors.Is(err, ErrMalformedMessage) ||
		errors.Is(err, ErrInvalidCommand)
}

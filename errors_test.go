package eventsourcing

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "StreamRevisionConflictError",
			err: StreamRevisionConflictError{
				Stream:           "stream-123",
				ExpectedRevision: Revision(5),
				ActualRevision:   Revision(7),
			},
			want: `concurrency conflict on stream "stream-123": (expected version 5, actual 7)`,
		},
		{
			name: "ConcurrencyError with reason",
			err:  &ConcurrencyError{Stream: "Process_42", Reason: "no manifested legs"},
			want: `concurrency exception on stream "Process_42", no manifested legs`,
		},
		{
			name: "TriggerNotSupportedError",
			err:  NewTriggerNotSupported("collection", parcelScanned{}),
			want: "collection: trigger eventsourcing.parcelScanned: trigger not supported",
		},
		{
			name: "IncompatibleEventError",
			err:  &IncompatibleEventError{Stream: "s-1", EventType: "other", Family: "manifestation.Event"},
			want: `stream "s-1": event other is not a manifestation.Event: incompatible event`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	conflict := &ConcurrencyError{Stream: "s", Err: StreamRevisionConflictError{Stream: "s"}}

	if !errors.Is(conflict, ErrConcurrency) {
		t.Error("ConcurrencyError should match ErrConcurrency")
	}
	var rev StreamRevisionConflictError
	if !errors.As(conflict, &rev) {
		t.Error("ConcurrencyError should unwrap to StreamRevisionConflictError")
	}

	permanent := []error{
		fmt.Errorf("wrapped: %w", ErrSessionLocked),
		NewTriggerNotSupported("process", 1),
		&IncompatibleEventError{},
	}
	for _, err := range permanent {
		if !IsPermanent(err) {
			t.Errorf("IsPermanent(%v) = false, want true", err)
		}
	}

	transient := []error{conflict, ErrTimeout, context.DeadlineExceeded, WrapEventStoreError(errors.New("io"))}
	for _, err := range transient {
		if IsPermanent(err) {
			t.Errorf("IsPermanent(%v) = true, want false", err)
		}
	}
}

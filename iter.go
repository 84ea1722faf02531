package eventsourcing

import (
	"context"
	"errors"
	"io"
)

// Iterator is a pull iterator. The producing function returns io.EOF once
// exhausted; any other error stops iteration and is reported by Err.
type Iterator[T any] struct {
	nextFunc func(ctx context.Context) (T, error)
	closer   func()
	current  T
	err      error
	done     bool
}

// NewIteratorFunc creates an Iterator from a function producing the next item.
func NewIteratorFunc[T any](next func(ctx context.Context) (T, error)) *Iterator[T] {
	return &Iterator[T]{nextFunc: next}
}

// NewSliceIterator iterates over a copy of items.
func NewSliceIterator[T any](items []T) *Iterator[T] {
	items = append([]T(nil), items...)
	index := 0
	return NewIteratorFunc(func(ctx context.Context) (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if index >= len(items) {
			return zero, io.EOF
		}
		item := items[index]
		index++
		return item, nil
	})
}

// OnClose registers fn to run once when the iterator is closed or exhausted.
func (it *Iterator[T]) OnClose(fn func()) *Iterator[T] {
	it.closer = fn
	return it
}

// Next advances the iterator. It returns false once the iterator is done or
// an error occurred.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.done {
		return false
	}

	var zero T
	it.current, it.err = it.nextFunc(ctx)
	if it.err != nil {
		it.current = zero
		if errors.Is(it.err, io.EOF) {
			it.err = nil
		}
		it.Close()
		return false
	}
	return true
}

// Value returns the current item.
func (it *Iterator[T]) Value() T {
	return it.current
}

// Err returns the error that stopped iteration, or nil if it ran to completion.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Close stops the iterator and releases the underlying resources.
func (it *Iterator[T]) Close() {
	if it.done {
		return
	}
	it.done = true
	if it.closer != nil {
		it.closer()
	}
}

// All consumes the iterator and returns all items in a slice.
func (it *Iterator[T]) All(ctx context.Context) ([]T, error) {
	var results []T
	for it.Next(ctx) {
		results = append(results, it.Value())
	}
	return results, it.Err()
}

package paged

import (
	"context"
	"iter"
)

// State is the lifecycle of an Iterator.
type State int

const (
	StateNotStarted  State = iota // Before Next is called.
	StateEnumerating              // At least one Next call, not finished.
	StateCompleted                // Source exhausted.
	StateFaulted                  // Stopped by a data or source error.
	StateCancelled                // Stopped because the context was done.
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateEnumerating:
		return "enumerating"
	case StateCompleted:
		return "completed"
	case StateFaulted:
		return "faulted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Iterator is a pull-style cursor over a Sequence. Close must be called when
// the caller stops before the iterator reaches a terminal state.
type Iterator[T any] struct {
	next   func() (T, error, bool)
	stop   func()
	state  State
	value  T
	err    error
	closed bool
}

// Iterate starts a pull iterator over seq.
func Iterate[T any](ctx context.Context, seq Sequence[T]) *Iterator[T] {
	if seq == nil {
		panic(nilArg("Iterate", "seq"))
	}
	next, stop := iter.Pull2(seq.All(ctx))
	return &Iterator[T]{next: next, stop: stop}
}

// Next advances to the next element. It returns false once the iterator is
// completed, faulted, cancelled or closed.
func (it *Iterator[T]) Next() bool {
	if it.closed || it.terminal() {
		return false
	}
	it.state = StateEnumerating

	v, err, ok := it.next()
	switch {
	case !ok:
		it.finish(StateCompleted, nil)
		return false
	case err != nil && IsCancelled(err):
		it.finish(StateCancelled, err)
		return false
	case err != nil:
		it.finish(StateFaulted, err)
		return false
	}
	it.value = v
	return true
}

// Value returns the current element.
func (it *Iterator[T]) Value() T {
	return it.value
}

// Err returns the error that ended the iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// State returns the lifecycle state.
func (it *Iterator[T]) State() State {
	return it.state
}

// Close releases the underlying enumeration. It is safe to call repeatedly.
func (it *Iterator[T]) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.stop()
}

func (it *Iterator[T]) terminal() bool {
	return it.state == StateCompleted || it.state == StateFaulted || it.state == StateCancelled
}

func (it *Iterator[T]) finish(state State, err error) {
	var zero T
	it.state = state
	it.err = err
	it.value = zero
	it.stop()
}

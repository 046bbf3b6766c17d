package paged

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by operators.
var (
	// ErrInvalidArgument is wrapped by every ArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptySequence is returned by terminal operators that need at least one element.
	ErrEmptySequence = errors.New("sequence contains no elements")

	// ErrOverflow is returned when checked integer accumulation overflows.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrNilInnerSequence is returned when a flatten selector yields a nil sequence.
	ErrNilInnerSequence = errors.New("selector returned a nil inner sequence")

	// ErrMoreThanOne is returned by Single when the sequence has several elements.
	ErrMoreThanOne = errors.New("sequence contains more than one element")

	// ErrOutOfRange is returned by ElementAt for an index past the end.
	ErrOutOfRange = errors.New("index out of range")
)

// ArgumentError is the panic value raised when an operator is built with an
// invalid argument. Validation happens when the operator is called, never
// during enumeration.
type ArgumentError struct {
	Op     string
	Arg    string
	Reason string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("paged.%s: %s %s", e.Op, e.Arg, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func nilArg(op, arg string) *ArgumentError {
	return &ArgumentError{Op: op, Arg: arg, Reason: "must not be nil"}
}

func badArg(op, arg, reason string) *ArgumentError {
	return &ArgumentError{Op: op, Arg: arg, Reason: reason}
}

// IsCancelled reports whether err ended an enumeration because its context
// was cancelled or timed out, as opposed to a data fault.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// cancelled returns a wrapped context error once ctx is done.
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enumeration stopped: %w", err)
	}
	return nil
}

package paged

import (
	"context"
	"iter"
)

// lazy builds an operator whose pagination forwards to src. body runs once per
// enumeration; emit reports false once the consumer has stopped, after which
// body must return. An error returned by body is yielded unless the consumer
// already stopped.
func lazy[T, R any](src Sequence[T], body func(ctx context.Context, emit func(R) bool) error) *Adapter[R] {
	return forward(src, func(ctx context.Context) iter.Seq2[R, error] {
		return func(yield func(R, error) bool) {
			stopped := false
			emit := func(r R) bool {
				if !yield(r, nil) {
					stopped = true
					return false
				}
				return true
			}
			if err := body(ctx, emit); err != nil && !stopped {
				var zero R
				yield(zero, err)
			}
		}
	})
}

// walk drains src, checking ctx once per element. fn returns false to stop
// early. The error that ended the enumeration is returned, nil otherwise.
func walk[T any](ctx context.Context, src Sequence[T], fn func(T) (bool, error)) error {
	for item, err := range src.All(ctx) {
		if err != nil {
			return err
		}
		if err := cancelled(ctx); err != nil {
			return err
		}
		more, err := fn(item)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// collect materializes src.
func collect[T any](ctx context.Context, src Sequence[T]) ([]T, error) {
	var out []T
	err := walk(ctx, src, func(item T) (bool, error) {
		out = append(out, item)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mustSource rejects a nil interface and a nil *Adapter. Nil pointers of
// other Sequence implementations are not detected here; they fail when
// enumerated.
func mustSource[T any](op string, src Sequence[T]) {
	if src == nil {
		panic(nilArg(op, "src"))
	}
	if a, ok := src.(*Adapter[T]); ok && a == nil {
		panic(nilArg(op, "src"))
	}
}

func mustFunc(op, name string, isNil bool) {
	if isNil {
		panic(nilArg(op, name))
	}
}

package paged

import (
	"context"
	"fmt"
	"iter"
)

// Filter returns the elements for which predicate returns true.
//
// Pagination is forwarded unchanged from src.
func Filter[T any](src Sequence[T], predicate func(T) bool) *Adapter[T] {
	mustSource("Filter", src)
	mustFunc("Filter", "predicate", predicate == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			if !predicate(item) {
				return true, nil
			}
			return emit(item), nil
		})
	})
}

// FilterCtx is Filter with a context-aware predicate that may fail. A
// predicate error ends the enumeration.
func FilterCtx[T any](src Sequence[T], predicate func(context.Context, T) (bool, error)) *Adapter[T] {
	mustSource("FilterCtx", src)
	mustFunc("FilterCtx", "predicate", predicate == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			keep, err := predicate(ctx, item)
			if err != nil || !keep {
				return err == nil, err
			}
			return emit(item), nil
		})
	})
}

// OfType returns the elements of src whose dynamic type is R.
func OfType[R, T any](src Sequence[T]) *Adapter[R] {
	mustSource("OfType", src)

	return lazy(src, func(ctx context.Context, emit func(R) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			r, ok := any(item).(R)
			if !ok {
				return true, nil
			}
			return emit(r), nil
		})
	})
}

// Map transforms each element with fn.
func Map[T, R any](src Sequence[T], fn func(T) R) *Adapter[R] {
	mustSource("Map", src)
	mustFunc("Map", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(R) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			return emit(fn(item)), nil
		})
	})
}

// MapIndexed is Map with the zero-based element index.
func MapIndexed[T, R any](src Sequence[T], fn func(int, T) R) *Adapter[R] {
	mustSource("MapIndexed", src)
	mustFunc("MapIndexed", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(R) bool) error {
		i := 0
		return walk(ctx, src, func(item T) (bool, error) {
			r := fn(i, item)
			i++
			return emit(r), nil
		})
	})
}

// MapCtx transforms each element with a context-aware function that may
// fail. The first error ends the enumeration.
func MapCtx[T, R any](src Sequence[T], fn func(context.Context, T) (R, error)) *Adapter[R] {
	mustSource("MapCtx", src)
	mustFunc("MapCtx", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(R) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			r, err := fn(ctx, item)
			if err != nil {
				return false, err
			}
			return emit(r), nil
		})
	})
}

// Tap calls fn for every element before passing it on unchanged.
func Tap[T any](src Sequence[T], fn func(T)) *Adapter[T] {
	mustSource("Tap", src)
	mustFunc("Tap", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			fn(item)
			return emit(item), nil
		})
	})
}

// FlatMap flattens the iter.Seq returned by fn for each element. A nil inner
// sequence is a data error.
func FlatMap[T, R any](src Sequence[T], fn func(T) iter.Seq[R]) *Adapter[R] {
	mustSource("FlatMap", src)
	mustFunc("FlatMap", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(R) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			inner := fn(item)
			if inner == nil {
				return false, fmt.Errorf("paged.FlatMap: %w", ErrNilInnerSequence)
			}
			for r := range inner {
				if err := cancelled(ctx); err != nil {
					return false, err
				}
				if !emit(r) {
					return false, nil
				}
			}
			return true, nil
		})
	})
}

// FlatMapSlice flattens the slice returned by fn for each element. A nil
// slice is treated as empty.
func FlatMapSlice[T, R any](src Sequence[T], fn func(T) []R) *Adapter[R] {
	mustSource("FlatMapSlice", src)
	mustFunc("FlatMapSlice", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(R) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			for _, r := range fn(item) {
				if !emit(r) {
					return false, nil
				}
			}
			return true, nil
		})
	})
}

// FlatMapSeq flattens the Sequence returned by fn for each element. A nil
// inner sequence is a data error; errors from inner sequences end the
// enumeration.
func FlatMapSeq[T, R any](src Sequence[T], fn func(T) Sequence[R]) *Adapter[R] {
	mustSource("FlatMapSeq", src)
	mustFunc("FlatMapSeq", "fn", fn == nil)

	return FlatMapCtx(src, func(_ context.Context, item T) (Sequence[R], error) {
		return fn(item), nil
	})
}

// FlatMapCtx flattens the Sequence returned by a context-aware selector that
// may fail.
func FlatMapCtx[T, R any](src Sequence[T], fn func(context.Context, T) (Sequence[R], error)) *Adapter[R] {
	mustSource("FlatMapCtx", src)
	mustFunc("FlatMapCtx", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(R) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			inner, err := fn(ctx, item)
			if err != nil {
				return false, err
			}
			if inner == nil {
				return false, fmt.Errorf("paged.FlatMapSeq: %w", ErrNilInnerSequence)
			}
			more := true
			err = walk(ctx, inner, func(r R) (bool, error) {
				more = emit(r)
				return more, nil
			})
			return more, err
		})
	})
}

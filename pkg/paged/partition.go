package paged

import (
	"context"
)

// Skip bypasses the first n elements. It panics when n is negative.
func Skip[T any](src Sequence[T], n int) *Adapter[T] {
	mustSource("Skip", src)
	if n < 0 {
		panic(badArg("Skip", "n", "must not be negative"))
	}

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		seen := 0
		return walk(ctx, src, func(item T) (bool, error) {
			if seen < n {
				seen++
				return true, nil
			}
			return emit(item), nil
		})
	})
}

// Take returns at most the first n elements and never pulls element n+1 from
// src. n == 0 yields nothing without enumerating src; a negative n panics.
func Take[T any](src Sequence[T], n int) *Adapter[T] {
	mustSource("Take", src)
	if n < 0 {
		panic(badArg("Take", "n", "must not be negative"))
	}

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		if n == 0 {
			return nil
		}
		taken := 0
		return walk(ctx, src, func(item T) (bool, error) {
			taken++
			return emit(item) && taken < n, nil
		})
	})
}

// SkipWhile bypasses elements while predicate holds and yields the rest.
func SkipWhile[T any](src Sequence[T], predicate func(T) bool) *Adapter[T] {
	mustSource("SkipWhile", src)
	mustFunc("SkipWhile", "predicate", predicate == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		skipping := true
		return walk(ctx, src, func(item T) (bool, error) {
			if skipping && predicate(item) {
				return true, nil
			}
			skipping = false
			return emit(item), nil
		})
	})
}

// TakeWhile yields elements while predicate holds.
func TakeWhile[T any](src Sequence[T], predicate func(T) bool) *Adapter[T] {
	mustSource("TakeWhile", src)
	mustFunc("TakeWhile", "predicate", predicate == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		return walk(ctx, src, func(item T) (bool, error) {
			if !predicate(item) {
				return false, nil
			}
			return emit(item), nil
		})
	})
}

// Chunk splits src into consecutive slices of size elements. The last chunk
// may be shorter. It panics when size < 1.
func Chunk[T any](src Sequence[T], size int) *Adapter[[]T] {
	mustSource("Chunk", src)
	if size < 1 {
		panic(badArg("Chunk", "size", "must be at least 1"))
	}

	return lazy(src, func(ctx context.Context, emit func([]T) bool) error {
		buf := make([]T, 0, size)
		err := walk(ctx, src, func(item T) (bool, error) {
			buf = append(buf, item)
			if len(buf) < size {
				return true, nil
			}
			out := buf
			buf = make([]T, 0, size)
			return emit(out), nil
		})
		if err != nil {
			return err
		}
		if len(buf) > 0 {
			emit(buf)
		}
		return nil
	})
}

// Concat yields src followed by each of others. Pagination is forwarded from
// src.
func Concat[T any](src Sequence[T], others ...Sequence[T]) *Adapter[T] {
	mustSource("Concat", src)
	for _, o := range others {
		if o == nil {
			panic(nilArg("Concat", "others"))
		}
	}

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		for _, s := range append([]Sequence[T]{src}, others...) {
			more := true
			err := walk(ctx, s, func(item T) (bool, error) {
				more = emit(item)
				return more, nil
			})
			if err != nil || !more {
				return err
			}
		}
		return nil
	})
}

// DefaultIfEmpty yields src, or value alone when src is empty.
func DefaultIfEmpty[T any](src Sequence[T], value T) *Adapter[T] {
	mustSource("DefaultIfEmpty", src)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		empty := true
		err := walk(ctx, src, func(item T) (bool, error) {
			empty = false
			return emit(item), nil
		})
		if err == nil && empty {
			emit(value)
		}
		return err
	})
}

// Append yields src followed by value.
func Append[T any](src Sequence[T], value T) *Adapter[T] {
	mustSource("Append", src)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		more := true
		err := walk(ctx, src, func(item T) (bool, error) {
			more = emit(item)
			return more, nil
		})
		if err == nil && more {
			emit(value)
		}
		return err
	})
}

// Prepend yields value followed by src.
func Prepend[T any](src Sequence[T], value T) *Adapter[T] {
	mustSource("Prepend", src)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		if err := cancelled(ctx); err != nil {
			return err
		}
		if !emit(value) {
			return nil
		}
		return walk(ctx, src, func(item T) (bool, error) {
			return emit(item), nil
		})
	})
}

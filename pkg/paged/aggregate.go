package paged

import (
	"cmp"
	"context"
	"fmt"
)

// Aggregate folds src with fn, seeding the accumulator with the first
// element. An empty source is ErrEmptySequence.
func Aggregate[T any](ctx context.Context, src Sequence[T], fn func(acc, item T) T) (T, error) {
	mustSource("Aggregate", src)
	mustFunc("Aggregate", "fn", fn == nil)

	var (
		acc  T
		have bool
	)
	err := walk(ctx, src, func(item T) (bool, error) {
		if have {
			acc = fn(acc, item)
		} else {
			acc, have = item, true
		}
		return true, nil
	})
	if err != nil {
		return acc, err
	}
	if !have {
		return acc, emptyErr("Aggregate")
	}
	return acc, nil
}

// AggregateSeed folds src with fn starting from seed.
func AggregateSeed[T, A any](ctx context.Context, src Sequence[T], seed A, fn func(acc A, item T) A) (A, error) {
	mustSource("AggregateSeed", src)
	mustFunc("AggregateSeed", "fn", fn == nil)

	acc := seed
	err := walk(ctx, src, func(item T) (bool, error) {
		acc = fn(acc, item)
		return true, nil
	})
	return acc, err
}

// Count returns the number of elements in src.
func Count[T any](ctx context.Context, src Sequence[T]) (int64, error) {
	mustSource("Count", src)
	return countWhere(ctx, src, func(T) bool { return true })
}

// CountBy returns the number of elements matching predicate.
func CountBy[T any](ctx context.Context, src Sequence[T], predicate func(T) bool) (int64, error) {
	mustSource("CountBy", src)
	mustFunc("CountBy", "predicate", predicate == nil)
	return countWhere(ctx, src, predicate)
}

func countWhere[T any](ctx context.Context, src Sequence[T], predicate func(T) bool) (int64, error) {
	var n int64
	err := walk(ctx, src, func(item T) (bool, error) {
		if predicate(item) {
			n++
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Any reports whether src has at least one element. It pulls at most one.
func Any[T any](ctx context.Context, src Sequence[T]) (bool, error) {
	mustSource("Any", src)
	return findFirst(ctx, src, func(T) bool { return true })
}

// AnyMatch reports whether any element satisfies predicate.
func AnyMatch[T any](ctx context.Context, src Sequence[T], predicate func(T) bool) (bool, error) {
	mustSource("AnyMatch", src)
	mustFunc("AnyMatch", "predicate", predicate == nil)
	return findFirst(ctx, src, predicate)
}

// AllMatch reports whether every element satisfies predicate. It is true
// for an empty source.
func AllMatch[T any](ctx context.Context, src Sequence[T], predicate func(T) bool) (bool, error) {
	mustSource("AllMatch", src)
	mustFunc("AllMatch", "predicate", predicate == nil)
	found, err := findFirst(ctx, src, func(item T) bool { return !predicate(item) })
	return !found && err == nil, err
}

// Contains reports whether value occurs in src.
func Contains[T comparable](ctx context.Context, src Sequence[T], value T) (bool, error) {
	mustSource("Contains", src)
	return findFirst(ctx, src, func(item T) bool { return item == value })
}

func findFirst[T any](ctx context.Context, src Sequence[T], predicate func(T) bool) (bool, error) {
	found := false
	err := walk(ctx, src, func(item T) (bool, error) {
		found = predicate(item)
		return !found, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// First returns the first element. An empty source is ErrEmptySequence.
func First[T any](ctx context.Context, src Sequence[T]) (T, error) {
	mustSource("First", src)
	v, ok, err := first(ctx, src)
	if err == nil && !ok {
		err = emptyErr("First")
	}
	return v, err
}

// FirstOrDefault returns the first element, or def when src is empty.
func FirstOrDefault[T any](ctx context.Context, src Sequence[T], def T) (T, error) {
	mustSource("FirstOrDefault", src)
	v, ok, err := first(ctx, src)
	if err != nil {
		return v, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func first[T any](ctx context.Context, src Sequence[T]) (T, bool, error) {
	var (
		v  T
		ok bool
	)
	err := walk(ctx, src, func(item T) (bool, error) {
		v, ok = item, true
		return false, nil
	})
	return v, ok, err
}

// Last returns the last element. An empty source is ErrEmptySequence.
func Last[T any](ctx context.Context, src Sequence[T]) (T, error) {
	mustSource("Last", src)
	v, ok, err := last(ctx, src)
	if err == nil && !ok {
		err = emptyErr("Last")
	}
	return v, err
}

// LastOrDefault returns the last element, or def when src is empty.
func LastOrDefault[T any](ctx context.Context, src Sequence[T], def T) (T, error) {
	mustSource("LastOrDefault", src)
	v, ok, err := last(ctx, src)
	if err != nil {
		return v, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func last[T any](ctx context.Context, src Sequence[T]) (T, bool, error) {
	var (
		v  T
		ok bool
	)
	err := walk(ctx, src, func(item T) (bool, error) {
		v, ok = item, true
		return true, nil
	})
	return v, ok, err
}

// Single returns the only element of src. It fails with ErrEmptySequence or
// ErrMoreThanOne and never pulls more than two elements.
func Single[T any](ctx context.Context, src Sequence[T]) (T, error) {
	mustSource("Single", src)

	var (
		v T
		n int
	)
	err := walk(ctx, src, func(item T) (bool, error) {
		n++
		if n > 1 {
			return false, fmt.Errorf("paged.Single: %w", ErrMoreThanOne)
		}
		v = item
		return true, nil
	})
	var zero T
	switch {
	case err != nil:
		return zero, err
	case n == 0:
		return zero, emptyErr("Single")
	}
	return v, nil
}

// ElementAt returns the element at the zero-based index. An index past the
// end is ErrOutOfRange; a negative index panics.
func ElementAt[T any](ctx context.Context, src Sequence[T], index int) (T, error) {
	mustSource("ElementAt", src)
	if index < 0 {
		panic(badArg("ElementAt", "index", "must not be negative"))
	}

	var (
		v     T
		found bool
		i     int
	)
	err := walk(ctx, src, func(item T) (bool, error) {
		if i == index {
			v, found = item, true
			return false, nil
		}
		i++
		return true, nil
	})
	if err != nil {
		return v, err
	}
	if !found {
		return v, fmt.Errorf("paged.ElementAt: index %d: %w", index, ErrOutOfRange)
	}
	return v, nil
}

// Min returns the smallest element. An empty source is ErrEmptySequence.
func Min[T cmp.Ordered](ctx context.Context, src Sequence[T]) (T, error) {
	mustSource("Min", src)
	return extreme(ctx, "Min", src, identity[T], -1)
}

// Max returns the largest element. An empty source is ErrEmptySequence.
func Max[T cmp.Ordered](ctx context.Context, src Sequence[T]) (T, error) {
	mustSource("Max", src)
	return extreme(ctx, "Max", src, identity[T], 1)
}

// MinBy returns the first element with the smallest key.
func MinBy[T any, K cmp.Ordered](ctx context.Context, src Sequence[T], key func(T) K) (T, error) {
	mustSource("MinBy", src)
	mustFunc("MinBy", "key", key == nil)
	return extreme(ctx, "MinBy", src, key, -1)
}

// MaxBy returns the first element with the largest key.
func MaxBy[T any, K cmp.Ordered](ctx context.Context, src Sequence[T], key func(T) K) (T, error) {
	mustSource("MaxBy", src)
	mustFunc("MaxBy", "key", key == nil)
	return extreme(ctx, "MaxBy", src, key, 1)
}

// extreme keeps the first element whose key compares as sign against the
// current best.
func extreme[T any, K cmp.Ordered](ctx context.Context, op string, src Sequence[T], key func(T) K, sign int) (T, error) {
	var (
		best    T
		bestKey K
		have    bool
	)
	err := walk(ctx, src, func(item T) (bool, error) {
		k := key(item)
		if !have || cmp.Compare(k, bestKey) == sign {
			best, bestKey, have = item, k, true
		}
		return true, nil
	})
	var zero T
	switch {
	case err != nil:
		return zero, err
	case !have:
		return zero, emptyErr(op)
	}
	return best, nil
}

// ForEach calls fn for every element. An error from fn stops the
// enumeration and is returned.
func ForEach[T any](ctx context.Context, src Sequence[T], fn func(T) error) error {
	mustSource("ForEach", src)
	mustFunc("ForEach", "fn", fn == nil)

	return walk(ctx, src, func(item T) (bool, error) {
		if err := fn(item); err != nil {
			return false, err
		}
		return true, nil
	})
}

func emptyErr(op string) error {
	return fmt.Errorf("paged.%s: %w", op, ErrEmptySequence)
}

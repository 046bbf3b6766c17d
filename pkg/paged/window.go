package paged

import (
	"cmp"
	"context"
	"slices"
)

// Pair is two consecutive elements.
type Pair[T any] struct {
	Previous T `json:"previous"`
	Current  T `json:"current"`
}

// Window yields overlapping windows of size consecutive elements, one per
// element once the window is full. When src ends before a window ever filled
// the shorter remainder is yielded once; otherwise no partial window follows
// the full ones. Each yielded slice is a fresh copy. It panics when size < 1.
func Window[T any](src Sequence[T], size int) *Adapter[[]T] {
	mustSource("Window", src)
	if size < 1 {
		panic(badArg("Window", "size", "must be at least 1"))
	}

	return lazy(src, func(ctx context.Context, emit func([]T) bool) error {
		buf := make([]T, 0, size)
		filled := false
		err := walk(ctx, src, func(item T) (bool, error) {
			if len(buf) == size {
				buf = append(buf[:0], buf[1:]...)
			}
			buf = append(buf, item)
			if len(buf) < size {
				return true, nil
			}
			filled = true
			return emit(slices.Clone(buf)), nil
		})
		if err != nil {
			return err
		}
		if !filled && len(buf) > 0 {
			emit(buf)
		}
		return nil
	})
}

// WindowedSum yields the running sum of selector over each full window. It
// never yields a partial window. Integer overflow ends the enumeration with
// ErrOverflow.
func WindowedSum[T any, N Number](src Sequence[T], size int, selector func(T) N) *Adapter[N] {
	mustSource("WindowedSum", src)
	mustFunc("WindowedSum", "selector", selector == nil)
	if size < 1 {
		panic(badArg("WindowedSum", "size", "must be at least 1"))
	}

	return lazy(src, func(ctx context.Context, emit func(N) bool) error {
		return windowSums(ctx, "WindowedSum", src, size, selector, emit)
	})
}

// WindowedAverage yields the mean of selector over each full window.
func WindowedAverage[T any, N Number](src Sequence[T], size int, selector func(T) N) *Adapter[float64] {
	mustSource("WindowedAverage", src)
	mustFunc("WindowedAverage", "selector", selector == nil)
	if size < 1 {
		panic(badArg("WindowedAverage", "size", "must be at least 1"))
	}

	return lazy(src, func(ctx context.Context, emit func(float64) bool) error {
		return windowSums(ctx, "WindowedAverage", src, size, selector, func(sum N) bool {
			return emit(float64(sum) / float64(size))
		})
	})
}

func windowSums[T any, N Number](
	ctx context.Context,
	op string,
	src Sequence[T],
	size int,
	selector func(T) N,
	emit func(N) bool,
) error {
	buf := make([]N, 0, size)
	if isFloat[N]() {
		// A running float total drifts once large and small values mix.
		return walk(ctx, src, func(item T) (bool, error) {
			if len(buf) == size {
				buf = append(buf[:0], buf[1:]...)
			}
			buf = append(buf, selector(item))
			if len(buf) < size {
				return true, nil
			}
			var sum N
			for _, v := range buf {
				sum += v
			}
			return emit(sum), nil
		})
	}

	var sum N
	return walk(ctx, src, func(item T) (bool, error) {
		v := selector(item)
		var ok bool
		if len(buf) == size {
			if sum, ok = subChecked(sum, buf[0]); !ok {
				return false, overflow(op)
			}
			buf = append(buf[:0], buf[1:]...)
		}
		if sum, ok = addChecked(sum, v); !ok {
			return false, overflow(op)
		}
		buf = append(buf, v)
		if len(buf) < size {
			return true, nil
		}
		return emit(sum), nil
	})
}

// WindowedMin yields the smallest selector value of each full window.
func WindowedMin[T any, K cmp.Ordered](src Sequence[T], size int, selector func(T) K) *Adapter[K] {
	mustSource("WindowedMin", src)
	mustFunc("WindowedMin", "selector", selector == nil)
	if size < 1 {
		panic(badArg("WindowedMin", "size", "must be at least 1"))
	}
	return windowReduce(src, size, selector, func(b []K) K { return slices.Min(b) })
}

// WindowedMax yields the largest selector value of each full window.
func WindowedMax[T any, K cmp.Ordered](src Sequence[T], size int, selector func(T) K) *Adapter[K] {
	mustSource("WindowedMax", src)
	mustFunc("WindowedMax", "selector", selector == nil)
	if size < 1 {
		panic(badArg("WindowedMax", "size", "must be at least 1"))
	}
	return windowReduce(src, size, selector, func(b []K) K { return slices.Max(b) })
}

func windowReduce[T any, K cmp.Ordered](src Sequence[T], size int, selector func(T) K, reduce func([]K) K) *Adapter[K] {
	return lazy(src, func(ctx context.Context, emit func(K) bool) error {
		buf := make([]K, 0, size)
		return walk(ctx, src, func(item T) (bool, error) {
			if len(buf) == size {
				buf = append(buf[:0], buf[1:]...)
			}
			buf = append(buf, selector(item))
			if len(buf) < size {
				return true, nil
			}
			return emit(reduce(buf)), nil
		})
	})
}

// Pairwise yields each element together with its predecessor, so a source of
// n elements produces max(n-1, 0) pairs.
func Pairwise[T any](src Sequence[T]) *Adapter[Pair[T]] {
	mustSource("Pairwise", src)

	return lazy(src, func(ctx context.Context, emit func(Pair[T]) bool) error {
		var (
			prev T
			have bool
		)
		return walk(ctx, src, func(item T) (bool, error) {
			if !have {
				prev, have = item, true
				return true, nil
			}
			p := Pair[T]{Previous: prev, Current: item}
			prev = item
			return emit(p), nil
		})
	})
}

// Scan yields running accumulations of src. The first element seeds the
// accumulator and is yielded as-is, so n elements produce n values.
func Scan[T any](src Sequence[T], fn func(acc, item T) T) *Adapter[T] {
	mustSource("Scan", src)
	mustFunc("Scan", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		var (
			acc  T
			have bool
		)
		return walk(ctx, src, func(item T) (bool, error) {
			if have {
				acc = fn(acc, item)
			} else {
				acc, have = item, true
			}
			return emit(acc), nil
		})
	})
}

// ScanSeed yields seed and then every running accumulation, so n elements
// produce n+1 values.
func ScanSeed[T, A any](src Sequence[T], seed A, fn func(acc A, item T) A) *Adapter[A] {
	mustSource("ScanSeed", src)
	mustFunc("ScanSeed", "fn", fn == nil)

	return lazy(src, func(ctx context.Context, emit func(A) bool) error {
		if err := cancelled(ctx); err != nil {
			return err
		}
		acc := seed
		if !emit(acc) {
			return nil
		}
		return walk(ctx, src, func(item T) (bool, error) {
			acc = fn(acc, item)
			return emit(acc), nil
		})
	})
}

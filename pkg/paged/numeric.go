package paged

import (
	"context"
	"fmt"
)

// Integer is the set of built-in integer types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float is the set of built-in floating-point types.
type Float interface {
	~float32 | ~float64
}

// Number is any type the numeric operators accept.
type Number interface {
	Integer | Float
}

// addChecked returns a+b and false when the integer sum wrapped. Float sums
// never report overflow.
func addChecked[N Number](a, b N) (N, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return s, false
	}
	return s, true
}

// subChecked returns a-b and false when the integer difference wrapped.
func subChecked[N Number](a, b N) (N, bool) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return d, false
	}
	return d, true
}

func isFloat[N Number]() bool {
	return N(1)/N(2) != 0
}

func overflow(op string) error {
	return fmt.Errorf("paged.%s: %w", op, ErrOverflow)
}

// Sum adds the elements of src in their own type. An integer overflow is
// reported as ErrOverflow. The sum of an empty sequence is zero.
func Sum[N Number](ctx context.Context, src Sequence[N]) (N, error) {
	mustSource("Sum", src)
	return sumOf(ctx, "Sum", src, identity[N])
}

// SumBy adds selector(item) over src.
func SumBy[T any, N Number](ctx context.Context, src Sequence[T], selector func(T) N) (N, error) {
	mustSource("SumBy", src)
	mustFunc("SumBy", "selector", selector == nil)
	return sumOf(ctx, "SumBy", src, selector)
}

// SumNullable adds the non-nil elements of src.
func SumNullable[N Number](ctx context.Context, src Sequence[*N]) (N, error) {
	mustSource("SumNullable", src)
	return sumOf(ctx, "SumNullable", src, func(p *N) N {
		if p == nil {
			return 0
		}
		return *p
	})
}

func sumOf[T any, N Number](ctx context.Context, op string, src Sequence[T], selector func(T) N) (N, error) {
	var sum N
	err := walk(ctx, src, func(item T) (bool, error) {
		var ok bool
		if sum, ok = addChecked(sum, selector(item)); !ok {
			return false, overflow(op)
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// Average returns the arithmetic mean of src. Integers accumulate in a
// checked int64; an empty sequence is ErrEmptySequence.
func Average[N Number](ctx context.Context, src Sequence[N]) (float64, error) {
	mustSource("Average", src)
	return averageOf(ctx, "Average", src, func(v N) (N, bool) { return v, true })
}

// AverageBy returns the mean of selector(item) over src.
func AverageBy[T any, N Number](ctx context.Context, src Sequence[T], selector func(T) N) (float64, error) {
	mustSource("AverageBy", src)
	mustFunc("AverageBy", "selector", selector == nil)
	return averageOf(ctx, "AverageBy", src, func(item T) (N, bool) { return selector(item), true })
}

// AverageNullable returns the mean of the non-nil elements of src. The
// second result is false when src holds no non-nil element.
func AverageNullable[N Number](ctx context.Context, src Sequence[*N]) (float64, bool, error) {
	mustSource("AverageNullable", src)
	avg, err := averageOf(ctx, "AverageNullable", src, func(p *N) (N, bool) {
		if p == nil {
			return 0, false
		}
		return *p, true
	})
	switch {
	case err == nil:
		return avg, true, nil
	case err == ErrEmptySequence:
		return 0, false, nil
	default:
		return 0, false, err
	}
}

// averageOf returns ErrEmptySequence unwrapped so AverageNullable can map it
// to an absent result.
func averageOf[T any, N Number](ctx context.Context, op string, src Sequence[T], value func(T) (N, bool)) (float64, error) {
	var (
		count int64
		isum  int64
		fsum  float64
		float = isFloat[N]()
	)
	err := walk(ctx, src, func(item T) (bool, error) {
		v, ok := value(item)
		if !ok {
			return true, nil
		}
		count++
		if float {
			fsum += float64(v)
			return true, nil
		}
		iv := int64(v)
		if iv < 0 && v > 0 {
			return false, overflow(op)
		}
		if isum, ok = addChecked(isum, iv); !ok {
			return false, overflow(op)
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrEmptySequence
	}
	if float {
		return fsum / float64(count), nil
	}
	return float64(isum) / float64(count), nil
}

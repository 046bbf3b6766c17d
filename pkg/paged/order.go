package paged

import (
	"cmp"
	"context"
	"slices"
)

// OrderBy sorts src ascending by key. The sort is stable and src is fully
// materialized on the first pull.
func OrderBy[T any, K cmp.Ordered](src Sequence[T], key func(T) K) *Adapter[T] {
	mustSource("OrderBy", src)
	mustFunc("OrderBy", "key", key == nil)

	return sorted(src, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
}

// OrderByDescending sorts src descending by key. Equal keys keep their
// source order.
func OrderByDescending[T any, K cmp.Ordered](src Sequence[T], key func(T) K) *Adapter[T] {
	mustSource("OrderByDescending", src)
	mustFunc("OrderByDescending", "key", key == nil)

	return sorted(src, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
}

// SortFunc sorts src with compare, following slices.SortStableFunc.
func SortFunc[T any](src Sequence[T], compare func(a, b T) int) *Adapter[T] {
	mustSource("SortFunc", src)
	mustFunc("SortFunc", "compare", compare == nil)

	return sorted(src, compare)
}

// Reverse yields src in reverse order.
func Reverse[T any](src Sequence[T]) *Adapter[T] {
	mustSource("Reverse", src)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		items, err := collect(ctx, src)
		if err != nil {
			return err
		}
		slices.Reverse(items)
		return replay(ctx, items, emit)
	})
}

func sorted[T any](src Sequence[T], compare func(a, b T) int) *Adapter[T] {
	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		items, err := collect(ctx, src)
		if err != nil {
			return err
		}
		slices.SortStableFunc(items, compare)
		return replay(ctx, items, emit)
	})
}

// replay emits a materialized buffer, still honouring cancellation.
func replay[T any](ctx context.Context, items []T, emit func(T) bool) error {
	for _, item := range items {
		if err := cancelled(ctx); err != nil {
			return err
		}
		if !emit(item) {
			return nil
		}
	}
	return nil
}

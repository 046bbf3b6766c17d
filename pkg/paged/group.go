package paged

import (
	"context"
)

// Group is one key and its elements in source order.
type Group[K comparable, T any] struct {
	Key   K   `json:"key"`
	Items []T `json:"items"`
}

// GroupBy partitions src by key. Groups are yielded in first-seen key order
// once src is exhausted.
func GroupBy[T any, K comparable](src Sequence[T], key func(T) K) *Adapter[Group[K, T]] {
	mustSource("GroupBy", src)
	mustFunc("GroupBy", "key", key == nil)

	return lazy(src, func(ctx context.Context, emit func(Group[K, T]) bool) error {
		var order []K
		groups := make(map[K][]T)
		err := walk(ctx, src, func(item T) (bool, error) {
			k := key(item)
			if _, ok := groups[k]; !ok {
				order = append(order, k)
			}
			groups[k] = append(groups[k], item)
			return true, nil
		})
		if err != nil {
			return err
		}
		for _, k := range order {
			if !emit(Group[K, T]{Key: k, Items: groups[k]}) {
				return nil
			}
		}
		return nil
	})
}

// GroupByAggregate folds each group into a single value without keeping the
// group's elements. init seeds the accumulator from the first element of a
// group and update folds every later element into it. Results are yielded in
// first-seen key order.
func GroupByAggregate[T any, K comparable, A any](
	src Sequence[T],
	key func(T) K,
	init func(T) A,
	update func(acc *A, item T),
) *Adapter[A] {
	mustSource("GroupByAggregate", src)
	mustFunc("GroupByAggregate", "key", key == nil)
	mustFunc("GroupByAggregate", "init", init == nil)
	mustFunc("GroupByAggregate", "update", update == nil)

	return lazy(src, func(ctx context.Context, emit func(A) bool) error {
		var order []K
		accs := make(map[K]*A)
		err := walk(ctx, src, func(item T) (bool, error) {
			k := key(item)
			if acc, ok := accs[k]; ok {
				update(acc, item)
				return true, nil
			}
			acc := init(item)
			accs[k] = &acc
			order = append(order, k)
			return true, nil
		})
		if err != nil {
			return err
		}
		for _, k := range order {
			if !emit(*accs[k]) {
				return nil
			}
		}
		return nil
	})
}

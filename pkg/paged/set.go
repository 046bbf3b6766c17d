package paged

import (
	"context"
)

func identity[T any](v T) T { return v }

// Distinct yields each element the first time it is seen.
func Distinct[T comparable](src Sequence[T]) *Adapter[T] {
	mustSource("Distinct", src)
	return DistinctBy(src, identity[T])
}

// DistinctBy yields the first element seen for each key.
func DistinctBy[T any, K comparable](src Sequence[T], key func(T) K) *Adapter[T] {
	mustSource("DistinctBy", src)
	mustFunc("DistinctBy", "key", key == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		seen := make(map[K]struct{})
		return walk(ctx, src, distinctStep(seen, key, emit))
	})
}

// Union yields the distinct elements of src followed by the distinct
// elements of other not already seen. Pagination is forwarded from src.
func Union[T comparable](src, other Sequence[T]) *Adapter[T] {
	mustSource("Union", src)
	mustFunc("Union", "other", other == nil)
	return UnionBy(src, other, identity[T])
}

// UnionBy is Union comparing elements by key.
func UnionBy[T any, K comparable](src, other Sequence[T], key func(T) K) *Adapter[T] {
	mustSource("UnionBy", src)
	mustFunc("UnionBy", "other", other == nil)
	mustFunc("UnionBy", "key", key == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		seen := make(map[K]struct{})
		more := true
		step := distinctStep(seen, key, func(item T) bool {
			more = emit(item)
			return more
		})
		if err := walk(ctx, src, step); err != nil || !more {
			return err
		}
		return walk(ctx, other, step)
	})
}

// Intersect yields the distinct elements of src that also occur in other,
// in src order. other is materialized first.
func Intersect[T comparable](src, other Sequence[T]) *Adapter[T] {
	mustSource("Intersect", src)
	mustFunc("Intersect", "other", other == nil)
	return IntersectBy(src, other, identity[T])
}

// IntersectBy is Intersect comparing elements by key.
func IntersectBy[T any, K comparable](src, other Sequence[T], key func(T) K) *Adapter[T] {
	mustSource("IntersectBy", src)
	mustFunc("IntersectBy", "other", other == nil)
	mustFunc("IntersectBy", "key", key == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		keep, err := keySet(ctx, other, key)
		if err != nil {
			return err
		}
		return walk(ctx, src, func(item T) (bool, error) {
			k := key(item)
			if _, ok := keep[k]; !ok {
				return true, nil
			}
			delete(keep, k)
			return emit(item), nil
		})
	})
}

// Except yields the distinct elements of src that do not occur in other, in
// src order. other is materialized first.
func Except[T comparable](src, other Sequence[T]) *Adapter[T] {
	mustSource("Except", src)
	mustFunc("Except", "other", other == nil)
	return ExceptBy(src, other, identity[T])
}

// ExceptBy is Except comparing elements by key.
func ExceptBy[T any, K comparable](src, other Sequence[T], key func(T) K) *Adapter[T] {
	mustSource("ExceptBy", src)
	mustFunc("ExceptBy", "other", other == nil)
	mustFunc("ExceptBy", "key", key == nil)

	return lazy(src, func(ctx context.Context, emit func(T) bool) error {
		seen, err := keySet(ctx, other, key)
		if err != nil {
			return err
		}
		return walk(ctx, src, distinctStep(seen, key, emit))
	})
}

// distinctStep emits items whose key is not yet in seen and records it.
func distinctStep[T any, K comparable](seen map[K]struct{}, key func(T) K, emit func(T) bool) func(T) (bool, error) {
	return func(item T) (bool, error) {
		k := key(item)
		if _, dup := seen[k]; dup {
			return true, nil
		}
		seen[k] = struct{}{}
		return emit(item), nil
	}
}

func keySet[T any, K comparable](ctx context.Context, src Sequence[T], key func(T) K) (map[K]struct{}, error) {
	set := make(map[K]struct{})
	err := walk(ctx, src, func(item T) (bool, error) {
		set[key(item)] = struct{}{}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

package paged

import (
	"context"
)

// ToSlice materializes src. An empty source yields a non-nil empty slice.
func ToSlice[T any](ctx context.Context, src Sequence[T]) ([]T, error) {
	mustSource("ToSlice", src)

	items, err := collect(ctx, src)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ToMap materializes src keyed by key. Later elements overwrite earlier ones
// with the same key.
func ToMap[T any, K comparable, V any](ctx context.Context, src Sequence[T], key func(T) K, value func(T) V) (map[K]V, error) {
	mustSource("ToMap", src)
	mustFunc("ToMap", "key", key == nil)
	mustFunc("ToMap", "value", value == nil)

	out := make(map[K]V)
	err := walk(ctx, src, func(item T) (bool, error) {
		out[key(item)] = value(item)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToLookup materializes src grouped by key, each group in source order.
func ToLookup[T any, K comparable](ctx context.Context, src Sequence[T], key func(T) K) (map[K][]T, error) {
	mustSource("ToLookup", src)
	mustFunc("ToLookup", "key", key == nil)

	out := make(map[K][]T)
	err := walk(ctx, src, func(item T) (bool, error) {
		k := key(item)
		out[k] = append(out[k], item)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToPage materializes src together with its descriptor. The descriptor is
// read before enumeration, so it describes the page as requested rather than
// the position reached by a refresh strategy.
func ToPage[T any](ctx context.Context, src Sequence[T]) (Page[T], error) {
	mustSource("ToPage", src)

	p, err := src.Pagination(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	items, err := ToSlice(ctx, src)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Pagination: p}, nil
}

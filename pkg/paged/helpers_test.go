package paged

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func of[T any](items ...T) *Adapter[T] {
	return FromSlice(items, pagination.MustNew(10, 1))
}

func drain[T any](t *testing.T, seq Sequence[T]) []T {
	t.Helper()
	out, err := ToSlice(context.Background(), seq)
	require.NoError(t, err)
	return out
}

// tracked is a source that records how far it was pulled and whether its
// enumeration was released.
type tracked[T any] struct {
	items    []T
	failAt   int
	pulled   int
	started  bool
	released bool
}

func (s *tracked[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		s.started = true
		defer func() { s.released = true }()
		for i, item := range s.items {
			if s.failAt > 0 && i+1 == s.failAt {
				var zero T
				yield(zero, errBoom)
				return
			}
			s.pulled++
			if !yield(item, nil) {
				return
			}
		}
	}
}

func (s *tracked[T]) Pagination(context.Context) (pagination.Pagination, error) {
	return pagination.MustNew(10, 3, pagination.WithTotalCount(99)), nil
}

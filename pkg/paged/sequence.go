package paged

import (
	"context"
	"iter"

	"github.com/Sternrassler/pagedseq/pkg/pagination"
)

// Sequence is a lazily produced element sequence bundled with an accessor for
// its pagination descriptor.
//
// All returns a fresh iterator on every call. The first non-nil error ends the
// iteration; a cancelled context surfaces as an error for which IsCancelled
// reports true. Iterators are not safe for concurrent use.
//
// Pagination returns a consistent snapshot when called repeatedly before
// enumeration starts.
type Sequence[T any] interface {
	All(ctx context.Context) iter.Seq2[T, error]
	Pagination(ctx context.Context) (pagination.Pagination, error)
}

// Untyped is implemented by sequences that can enumerate their elements as
// interface values. The JSON bridge uses it when the element type is only
// known at runtime.
type Untyped interface {
	Untyped(ctx context.Context) iter.Seq2[any, error]
	Pagination(ctx context.Context) (pagination.Pagination, error)
}

// ItemsFunc produces the elements of a sequence for one enumeration.
type ItemsFunc[T any] func(ctx context.Context) iter.Seq2[T, error]

// PaginationFunc resolves the pagination descriptor of a sequence.
type PaginationFunc func(ctx context.Context) (pagination.Pagination, error)

// Static returns a PaginationFunc that always reports p.
func Static(p pagination.Pagination) PaginationFunc {
	return func(context.Context) (pagination.Pagination, error) {
		return p, nil
	}
}

// Page is one materialized page: its items and the descriptor they came with.
type Page[T any] struct {
	Items      []T                   `json:"items"`
	Pagination pagination.Pagination `json:"pagination"`
}

package paged

import (
	"context"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Adapter is the concrete Sequence. It wraps an items function and a
// pagination function and keeps the exposed snapshot current while items are
// yielded, according to its refresh strategy.
type Adapter[T any] struct {
	items    ItemsFunc[T]
	paginate PaginationFunc
	strategy pagination.Strategy
	forward  bool
	upstream interface {
		Current() (pagination.Pagination, bool)
	}
	closer io.Closer
	logger *zerolog.Logger

	// mu guards resolution of base; reads of base and current are lock-free.
	mu      sync.Mutex
	base    atomic.Pointer[pagination.Pagination]
	current atomic.Pointer[pagination.Pagination]
}

var (
	_ Sequence[int] = (*Adapter[int])(nil)
	_ Untyped       = (*Adapter[int])(nil)
)

// Option configures an Adapter built by New.
type Option func(*adapterOptions)

type adapterOptions struct {
	strategy pagination.Strategy
	closer   io.Closer
	logger   *zerolog.Logger
	prefetch int
}

// WithStrategy selects how CurrentPage advances during enumeration.
func WithStrategy(s pagination.Strategy) Option {
	return func(o *adapterOptions) {
		o.strategy = s
	}
}

// WithCloser attaches a resource released by Adapter.Close.
func WithCloser(c io.Closer) Option {
	return func(o *adapterOptions) {
		o.closer = c
	}
}

// WithLogger sets the logger used for enumeration diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *adapterOptions) {
		o.logger = &logger
	}
}

// WithPrefetch lets FromPages fetch up to n pages ahead of the consumer.
// n <= 0 disables prefetching. Other constructors ignore it.
func WithPrefetch(n int) Option {
	return func(o *adapterOptions) {
		o.prefetch = n
	}
}

// New wraps items and paginate into an Adapter. It panics with an
// *ArgumentError when either function is nil.
func New[T any](items ItemsFunc[T], paginate PaginationFunc, opts ...Option) *Adapter[T] {
	if items == nil {
		panic(nilArg("New", "items"))
	}
	if paginate == nil {
		panic(nilArg("New", "paginate"))
	}

	var o adapterOptions
	for _, opt := range opts {
		opt(&o)
	}

	return &Adapter[T]{
		items:    items,
		paginate: paginate,
		strategy: o.strategy,
		closer:   o.closer,
		logger:   o.logger,
	}
}

// forward builds the adapter returned by operators: its pagination is read
// from src on every call and never cached.
func forward[T, R any](src Sequence[T], items ItemsFunc[R]) *Adapter[R] {
	a := &Adapter[R]{
		items:    items,
		paginate: src.Pagination,
		forward:  true,
	}
	if up, ok := src.(interface {
		Current() (pagination.Pagination, bool)
	}); ok {
		a.upstream = up
	}
	return a
}

// FromSlice returns a sequence over items with a fixed descriptor. The slice
// is not copied.
func FromSlice[T any](items []T, p pagination.Pagination, opts ...Option) *Adapter[T] {
	return New(func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}, Static(p), opts...)
}

// FromSeq returns a sequence over seq with a fixed descriptor.
func FromSeq[T any](seq iter.Seq[T], p pagination.Pagination, opts ...Option) *Adapter[T] {
	if seq == nil {
		panic(nilArg("FromSeq", "seq"))
	}
	return New(func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			for item := range seq {
				if !yield(item, nil) {
					return
				}
			}
		}
	}, Static(p), opts...)
}

// FromSeq2 returns a sequence over a fallible seq with a lazily resolved descriptor.
func FromSeq2[T any](seq iter.Seq2[T, error], paginate PaginationFunc, opts ...Option) *Adapter[T] {
	if seq == nil {
		panic(nilArg("FromSeq2", "seq"))
	}
	return New(func(ctx context.Context) iter.Seq2[T, error] {
		return seq
	}, paginate, opts...)
}

// Empty returns a sequence with no elements and the empty descriptor.
func Empty[T any]() *Adapter[T] {
	return FromSlice[T](nil, pagination.Empty())
}

// Pagination returns the current snapshot, resolving it on first use. For
// adapters produced by operators it forwards to the upstream sequence.
func (a *Adapter[T]) Pagination(ctx context.Context) (pagination.Pagination, error) {
	if a.forward {
		return a.paginate(ctx)
	}
	if p := a.current.Load(); p != nil {
		return *p, nil
	}
	return a.resolve(ctx)
}

// Current returns the latest snapshot without blocking. The second result is
// false until pagination has been resolved.
func (a *Adapter[T]) Current() (pagination.Pagination, bool) {
	if a.forward {
		if a.upstream != nil {
			return a.upstream.Current()
		}
		return pagination.Pagination{}, false
	}
	if p := a.current.Load(); p != nil {
		return *p, true
	}
	return pagination.Pagination{}, false
}

// Strategy returns the refresh strategy.
func (a *Adapter[T]) Strategy() pagination.Strategy {
	return a.strategy
}

// resolve calls the pagination function once; failures are not cached.
func (a *Adapter[T]) resolve(ctx context.Context) (pagination.Pagination, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p := a.base.Load(); p != nil {
		return *a.current.Load(), nil
	}

	p, err := a.paginate(ctx)
	if err != nil {
		return pagination.Pagination{}, err
	}
	a.base.Store(&p)
	a.current.Store(&p)
	return p, nil
}

// All enumerates the wrapped items, checking ctx once per element.
func (a *Adapter[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		track := !a.forward && a.strategy != pagination.StrategyNone

		var base pagination.Pagination
		if track {
			if _, err := a.resolve(ctx); err != nil {
				yield(zero, err)
				return
			}
			base = *a.base.Load()
			a.current.Store(&base)
		}

		var yielded int64
		for item, err := range a.items(ctx) {
			if err != nil {
				a.trace(err, yielded)
				yield(zero, err)
				return
			}
			if err := cancelled(ctx); err != nil {
				a.trace(err, yielded)
				yield(zero, err)
				return
			}
			if !yield(item, nil) {
				return
			}
			yielded++
			if track && a.strategy.Moves(base, yielded) {
				next := a.strategy.Advance(base, yielded)
				a.current.Store(&next)
			}
		}
	}
}

// Untyped enumerates the elements as interface values.
func (a *Adapter[T]) Untyped(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for item, err := range a.All(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Close releases the resource attached with WithCloser, if any.
func (a *Adapter[T]) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *Adapter[T]) trace(err error, yielded int64) {
	if a.forward {
		return
	}
	logger := log.Logger
	if a.logger != nil {
		logger = *a.logger
	}
	event := logger.Warn()
	if IsCancelled(err) {
		event = logger.Debug()
	}
	event.
		Err(err).
		Int64("items_yielded", yielded).
		Str("strategy", a.strategy.String()).
		Msg("Enumeration stopped")
}

package paged

import (
	"context"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/rs/zerolog/log"
)

// PageFetcher loads one page. page is 1-based; prev is the descriptor of the
// previous page (empty for the first) so cursor-based sources can read its
// continuation token.
type PageFetcher[T any] func(ctx context.Context, page int, prev pagination.Pagination) (Sequence[T], error)

// FromPages walks pages in order. The first page is fetched once and shared
// between Pagination and every enumeration; walking stops when a page is
// empty or its descriptor reports no next page. Pages other than the first
// are closed after they are drained when they implement io.Closer; the first
// page is closed by Adapter.Close.
//
// With WithPrefetch(n) and a first page that reports its total page count,
// up to n later pages are fetched concurrently ahead of the consumer. Items
// are still yielded in page order.
func FromPages[T any](fetch PageFetcher[T], opts ...Option) *Adapter[T] {
	if fetch == nil {
		panic(nilArg("FromPages", "fetch"))
	}
	var o adapterOptions
	for _, opt := range opts {
		opt(&o)
	}
	w := &pageWalker[T]{fetch: fetch, prefetch: o.prefetch}
	return New[T](w.items, w.pagination, append([]Option{WithCloser(w)}, opts...)...)
}

type pageWalker[T any] struct {
	fetch    PageFetcher[T]
	prefetch int

	mu    sync.Mutex
	first Sequence[T]
}

func (w *pageWalker[T]) firstPage(ctx context.Context) (Sequence[T], error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.first != nil {
		return w.first, nil
	}
	page, err := w.fetch(ctx, 1, pagination.Empty())
	if err != nil {
		return nil, fmt.Errorf("fetch page 1: %w", err)
	}
	if page == nil {
		return nil, fmt.Errorf("fetch page 1: %w", ErrNilInnerSequence)
	}
	w.first = page
	return page, nil
}

func (w *pageWalker[T]) pagination(ctx context.Context) (pagination.Pagination, error) {
	first, err := w.firstPage(ctx)
	if err != nil {
		return pagination.Pagination{}, err
	}
	return first.Pagination(ctx)
}

func (w *pageWalker[T]) items(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		page, err := w.firstPage(ctx)
		if err != nil {
			yield(zero, err)
			return
		}

		var ahead *prefetcher[T]
		defer func() {
			if ahead != nil {
				ahead.stop()
			}
		}()

		for number := 1; ; number++ {
			count := 0
			for item, err := range page.All(ctx) {
				if err != nil {
					w.release(page)
					yield(zero, err)
					return
				}
				count++
				if !yield(item, nil) {
					w.release(page)
					return
				}
			}

			desc, err := page.Pagination(ctx)
			w.release(page)
			if err != nil {
				yield(zero, err)
				return
			}
			if count == 0 || !desc.HasNextPage() {
				return
			}
			if err := cancelled(ctx); err != nil {
				yield(zero, err)
				return
			}

			if number == 1 && w.prefetch >= 1 {
				if total, ok := desc.TotalPages(); ok && total >= 2 {
					// Prefetched pages are addressed by number only; page 1's
					// token would point every one of them at page 2.
					ahead = startPrefetch(ctx, w.fetch, 2, int(total), w.prefetch, desc.WithContinuationToken(""))
				}
			}

			next := number + 1
			if ahead != nil && ahead.covers(next) {
				page, err = ahead.get(ctx, next)
			} else {
				page, err = w.fetch(ctx, next, desc)
			}
			if err != nil {
				yield(zero, fmt.Errorf("fetch page %d: %w", next, err))
				return
			}
			if page == nil {
				yield(zero, fmt.Errorf("fetch page %d: %w", next, ErrNilInnerSequence))
				return
			}
		}
	}
}

func (w *pageWalker[T]) release(page Sequence[T]) {
	w.mu.Lock()
	first := w.first
	w.mu.Unlock()

	if any(page) == any(first) {
		return
	}
	closePage(page)
}

// Close releases the cached first page.
func (w *pageWalker[T]) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.first == nil {
		return nil
	}
	c, ok := w.first.(io.Closer)
	w.first = nil
	if !ok {
		return nil
	}
	return c.Close()
}

func closePage[T any](page Sequence[T]) {
	if c, ok := page.(io.Closer); ok {
		_ = c.Close()
	}
}

type fetched[T any] struct {
	page Sequence[T]
	err  error
}

// prefetcher fetches pages [from, to] with a bounded worker pool. At most
// workers pages are outstanding (in flight or fetched but not yet taken).
type prefetcher[T any] struct {
	from, to int
	slots    []chan fetched[T]
	tokens   chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func startPrefetch[T any](ctx context.Context, fetch PageFetcher[T], from, to, workers int, prev pagination.Pagination) *prefetcher[T] {
	ctx, cancel := context.WithCancel(ctx)
	p := &prefetcher[T]{
		from:   from,
		to:     to,
		slots:  make([]chan fetched[T], to-from+1),
		tokens: make(chan struct{}, workers),
		cancel: cancel,
	}
	for i := range p.slots {
		p.slots[i] = make(chan fetched[T], 1)
	}

	log.Debug().
		Int("from", from).
		Int("to", to).
		Int("workers", workers).
		Msg("Starting page prefetch")

	// Tokens are taken in page order so the page the consumer waits for is
	// always queued before later ones.
	queue := make(chan int)
	go func() {
		defer close(queue)
		for page := from; page <= to; page++ {
			select {
			case p.tokens <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case queue <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	for range min(workers, len(p.slots)) {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for page := range queue {
				seq, err := fetch(ctx, page, prev)
				p.slots[page-from] <- fetched[T]{page: seq, err: err}
			}
		}()
	}
	return p
}

func (p *prefetcher[T]) covers(page int) bool {
	return page >= p.from && page <= p.to
}

func (p *prefetcher[T]) get(ctx context.Context, page int) (Sequence[T], error) {
	select {
	case r := <-p.slots[page-p.from]:
		<-p.tokens
		return r.page, r.err
	case <-ctx.Done():
		return nil, cancelled(ctx)
	}
}

// stop cancels outstanding fetches and closes pages nobody consumed.
func (p *prefetcher[T]) stop() {
	p.cancel()
	p.wg.Wait()
	for _, slot := range p.slots {
		select {
		case r := <-slot:
			if r.page != nil {
				closePage(r.page)
			}
		default:
		}
	}
}

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Sternrassler/pagedseq/pkg/jsonbridge"
	"github.com/Sternrassler/pagedseq/pkg/paged"
	"github.com/Sternrassler/pagedseq/pkg/pagination"
)

// PageFetcher fetches one page of an endpoint. *Client implements it.
type PageFetcher interface {
	FetchPage(ctx context.Context, endpoint string, page int, prev pagination.Pagination) (*http.Response, error)
}

// Pages walks endpoint page by page as a single sequence of T.
//
// Page 1 is fetched once and shared between Pagination and every
// enumeration. The walk ends at the last page reported by the total count,
// when a page carries neither a total nor a continuation token, or at the
// first empty page. Each page body is closed once its items are drained.
// Pass paged.WithPrefetch to fetch later pages concurrently.
func Pages[T any](c PageFetcher, endpoint string, opts ...paged.Option) *paged.Adapter[T] {
	if c == nil {
		panic("client.Pages: nil fetcher")
	}

	fetch := func(ctx context.Context, page int, prev pagination.Pagination) (paged.Sequence[T], error) {
		resp, err := c.FetchPage(ctx, endpoint, page, prev)
		if err != nil {
			return nil, err
		}
		r, err := jsonbridge.FromResponse[T](resp)
		if err != nil {
			return nil, err
		}
		// Read the body now so prefetched pages are complete when handed over.
		if _, err := r.Pagination(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("read page %d of %s: %w", page, endpoint, err)
		}
		pagesFetched.Inc()
		return r, nil
	}

	return paged.FromPages[T](fetch, opts...)
}

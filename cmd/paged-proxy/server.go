package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/pagedseq/pkg/client"
	"github.com/Sternrassler/pagedseq/pkg/jsonbridge"
	"github.com/Sternrassler/pagedseq/pkg/metrics"
	"github.com/Sternrassler/pagedseq/pkg/paged"
)

const pagesPrefix = "/pages"

func newMux(upstream client.PageFetcher, prefetch int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle(pagesPrefix+"/", jsonbridge.Handler(func(r *http.Request) (paged.Sequence[json.RawMessage], error) {
		return pagesSequence(r, upstream, prefetch)
	}))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// pagesSequence walks the upstream endpoint named by the request path and
// applies the skip and take query parameters.
func pagesSequence(r *http.Request, upstream client.PageFetcher, prefetch int) (paged.Sequence[json.RawMessage], error) {
	endpoint := strings.TrimPrefix(r.URL.Path, pagesPrefix)
	if endpoint == "" || endpoint == "/" {
		return nil, badRequest("missing upstream endpoint")
	}

	q := r.URL.Query()
	skip, err := intParam(q, "skip")
	if err != nil {
		return nil, err
	}
	take, err := intParam(q, "take")
	if err != nil {
		return nil, err
	}

	var opts []paged.Option
	if prefetch > 0 {
		opts = append(opts, paged.WithPrefetch(prefetch))
	}
	pages := client.Pages[json.RawMessage](upstream, endpoint, opts...)

	var seq paged.Sequence[json.RawMessage] = pages
	if skip > 0 {
		seq = paged.Skip(seq, skip)
	}
	if q.Has("take") {
		seq = paged.Take(seq, take)
	}
	return closing[json.RawMessage]{Sequence: seq, Closer: pages}, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest(fmt.Sprintf("%s must be a non-negative integer, got %q", name, v))
	}
	return n, nil
}

// closing releases the upstream page walk once the response is written.
type closing[T any] struct {
	paged.Sequence[T]
	io.Closer
}

type badRequest string

func (e badRequest) Error() string { return string(e) }

func (e badRequest) HTTPStatus() int { return http.StatusBadRequest }

package jsonbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Sternrassler/pagedseq/pkg/paged"
	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/buger/jsonparser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mode is the top-level shape of a parsed document.
type Mode int

const (
	// ModeEnvelope is an object with an "items" array and an optional
	// "pagination" block.
	ModeEnvelope Mode = iota

	// ModeArray is a bare top-level array.
	ModeArray

	// ModeSingle is any other value, read as a single item.
	ModeSingle
)

// String returns the mode name used in logs and metrics.
func (m Mode) String() string {
	switch m {
	case ModeEnvelope:
		return "envelope"
	case ModeArray:
		return "array"
	case ModeSingle:
		return "single"
	default:
		return "unknown"
	}
}

// Pagination response headers read when the body carries no usable block.
const (
	HeaderPageSize          = "X-Page-Size"
	HeaderCurrentPage       = "X-Current-Page"
	HeaderTotalCount        = "X-Total-Count"
	HeaderContinuationToken = "X-Continuation-Token"
	HeaderPages             = "X-Pages"
)

// document is the parsed body. items reference the body bytes.
type document struct {
	mode       Mode
	items      [][]byte
	pagination pagination.Pagination
	nulls      int
}

// Reader is a paged.Sequence over a JSON response body. The body is read and
// parsed once, on the first call to All, Pagination or Mode; items are
// decoded lazily during enumeration.
type Reader[T any] struct {
	body   io.ReadCloser
	header http.Header
	logger zerolog.Logger

	// mu guards initialization and Close only.
	mu     sync.Mutex
	doc    atomic.Pointer[document]
	err    error
	closed atomic.Bool
}

var (
	_ paged.Sequence[int] = (*Reader[int])(nil)
	_ io.Closer           = (*Reader[int])(nil)
)

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

type readerOptions struct {
	header http.Header
	logger *zerolog.Logger
}

// WithHeaders supplies response headers used as a pagination fallback.
func WithHeaders(h http.Header) ReaderOption {
	return func(o *readerOptions) {
		o.header = h
	}
}

// WithLogger sets the logger for skipped items and parse diagnostics.
func WithLogger(logger zerolog.Logger) ReaderOption {
	return func(o *readerOptions) {
		o.logger = &logger
	}
}

// NewReader wraps body. The Reader owns body and closes it on Close.
func NewReader[T any](body io.ReadCloser, opts ...ReaderOption) *Reader[T] {
	if body == nil {
		body = io.NopCloser(http.NoBody)
	}
	var o readerOptions
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.With().Str("component", "jsonbridge").Logger()
	if o.logger != nil {
		logger = *o.logger
	}
	return &Reader[T]{
		body:   body,
		header: o.header,
		logger: logger,
	}
}

// FromResponse wraps a response body and its headers. A non-2xx response is
// closed and returned as a *StatusError.
func FromResponse[T any](resp *http.Response, opts ...ReaderOption) (*Reader[T], error) {
	if resp == nil {
		return nil, errors.New("jsonbridge: nil response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(snippet),
		}
	}
	return NewReader[T](resp.Body, append([]ReaderOption{WithHeaders(resp.Header)}, opts...)...), nil
}

// Mode reports the detected document shape.
func (r *Reader[T]) Mode(ctx context.Context) (Mode, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return doc.mode, nil
}

// Pagination returns the descriptor extracted from the document.
func (r *Reader[T]) Pagination(ctx context.Context) (pagination.Pagination, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return pagination.Pagination{}, err
	}
	return doc.pagination, nil
}

// All decodes and yields the items. Null items and items that do not decode
// into T are skipped.
func (r *Reader[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		doc, err := r.load(ctx)
		if err != nil {
			yield(zero, err)
			return
		}

		for i, raw := range doc.items {
			if err := ctx.Err(); err != nil {
				yield(zero, fmt.Errorf("jsonbridge: %w", err))
				return
			}
			if r.closed.Load() {
				yield(zero, ErrClosed)
				return
			}

			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				itemsSkipped.WithLabelValues("decode").Inc()
				r.logger.Debug().
					Err(err).
					Int("index", i).
					Str("mode", doc.mode.String()).
					Msg("Skipping undecodable item")
				continue
			}
			itemsDecoded.Inc()
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Sequence wraps the reader in a paged.Adapter so refresh strategies apply.
// Closing the adapter closes the reader.
func (r *Reader[T]) Sequence(opts ...paged.Option) *paged.Adapter[T] {
	return paged.New[T](r.All, r.Pagination, append([]paged.Option{paged.WithCloser(r)}, opts...)...)
}

// Close releases the parsed document and closes the body. Later calls to
// All, Pagination or Mode fail with ErrClosed.
func (r *Reader[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Swap(true) {
		return nil
	}
	r.doc.Store(nil)
	return r.body.Close()
}

// load returns the parsed document, reading the body on first use.
func (r *Reader[T]) load(ctx context.Context) (*document, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if doc := r.doc.Load(); doc != nil {
		return doc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil, ErrClosed
	}
	if doc := r.doc.Load(); doc != nil {
		return doc, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("jsonbridge: %w", err)
	}

	data, err := io.ReadAll(r.body)
	if err != nil {
		// Read failures are not cached.
		return nil, fmt.Errorf("jsonbridge: read body: %w", err)
	}

	doc, err := parse(data, r.header)
	if err != nil {
		malformedDocuments.Inc()
		r.err = err
		return nil, err
	}
	documentsParsed.WithLabelValues(doc.mode.String()).Inc()
	if doc.nulls > 0 {
		itemsSkipped.WithLabelValues("null").Add(float64(doc.nulls))
		r.logger.Debug().Int("count", doc.nulls).Msg("Skipping null items")
	}
	r.logger.Debug().
		Str("mode", doc.mode.String()).
		Int("items", len(doc.items)).
		Str("pagination", doc.pagination.String()).
		Msg("Document parsed")

	r.doc.Store(doc)
	return doc, nil
}

// parse detects the document shape and extracts raw items and pagination.
func parse(data []byte, header http.Header) (*document, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedDocument)
	}

	_, kind, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &document{mode: ModeSingle}
	switch kind {
	case jsonparser.Object:
		if _, itemsKind, _, err := jsonparser.Get(data, "items"); err == nil && itemsKind == jsonparser.Array {
			doc.mode = ModeEnvelope
			if err := collectItems(doc, data, "items"); err != nil {
				return nil, err
			}
			p, ok := paginationBlock(data)
			if !ok {
				p = paginationHeaders(header, len(doc.items))
			}
			doc.pagination = p
			return doc, nil
		}
	case jsonparser.Array:
		doc.mode = ModeArray
		if err := collectItems(doc, data); err != nil {
			return nil, err
		}
		doc.pagination = paginationHeaders(header, len(doc.items))
		return doc, nil
	case jsonparser.Null:
		doc.nulls = 1
		doc.pagination = pagination.Empty()
		return doc, nil
	}

	doc.items = [][]byte{data}
	doc.pagination = pagination.Empty()
	return doc, nil
}

func collectItems(doc *document, data []byte, keys ...string) error {
	var walkErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, kind jsonparser.ValueType, _ int, err error) {
		if walkErr != nil {
			return
		}
		if err != nil {
			walkErr = err
			return
		}
		switch kind {
		case jsonparser.Null:
			doc.nulls++
		case jsonparser.String:
			// jsonparser strips the quotes from string values.
			quoted := make([]byte, 0, len(value)+2)
			quoted = append(quoted, '"')
			quoted = append(quoted, value...)
			doc.items = append(doc.items, append(quoted, '"'))
		default:
			doc.items = append(doc.items, value)
		}
	}, keys...)
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return fmt.Errorf("%w: items: %v", ErrMalformedDocument, err)
	}
	return nil
}

// wirePagination tells absent fields from zero values; values are validated
// by pagination.New.
type wirePagination struct {
	PageSize          *int    `json:"pageSize"`
	CurrentPage       *int    `json:"currentPage"`
	TotalCount        *int64  `json:"totalCount"`
	ContinuationToken *string `json:"continuationToken"`
}

// paginationBlock reads the "pagination" sibling of "items". ok is false
// when the block is missing or unusable.
func paginationBlock(data []byte) (pagination.Pagination, bool) {
	raw, kind, _, err := jsonparser.Get(data, "pagination")
	if err != nil || kind != jsonparser.Object {
		return pagination.Pagination{}, false
	}
	var w wirePagination
	if err := json.Unmarshal(raw, &w); err != nil || w.PageSize == nil {
		return pagination.Pagination{}, false
	}
	current := 1
	if w.CurrentPage != nil {
		current = *w.CurrentPage
	}
	var opts []pagination.Option
	if w.TotalCount != nil {
		opts = append(opts, pagination.WithTotalCount(*w.TotalCount))
	}
	if w.ContinuationToken != nil {
		opts = append(opts, pagination.WithContinuationToken(*w.ContinuationToken))
	}
	p, err := pagination.New(*w.PageSize, current, opts...)
	if err != nil {
		return pagination.Pagination{}, false
	}
	return p, true
}

// paginationHeaders builds a descriptor from response headers. X-Pages
// without X-Total-Count is converted to a total of pages*pageSize, where the
// page size falls back to the number of items on this page.
func paginationHeaders(h http.Header, items int) pagination.Pagination {
	if h == nil {
		return pagination.Empty()
	}
	pageSize, hasSize := headerInt(h, HeaderPageSize)
	if !hasSize {
		pageSize = items
	}
	current, ok := headerInt(h, HeaderCurrentPage)
	if !ok {
		current = 1
	}

	var opts []pagination.Option
	total, hasTotal := headerInt(h, HeaderTotalCount)
	pages, hasPages := headerInt(h, HeaderPages)
	switch {
	case hasTotal:
		opts = append(opts, pagination.WithTotalCount(int64(total)))
	case hasPages && pageSize > 0:
		opts = append(opts, pagination.WithTotalCount(int64(pages)*int64(pageSize)))
	}
	token := h.Get(HeaderContinuationToken)
	if token != "" {
		opts = append(opts, pagination.WithContinuationToken(token))
	}
	if !hasSize && !hasTotal && !hasPages && token == "" {
		return pagination.Empty()
	}

	p, err := pagination.New(pageSize, current, opts...)
	if err != nil {
		return pagination.Empty()
	}
	return p
}

func headerInt(h http.Header, name string) (int, bool) {
	v := h.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

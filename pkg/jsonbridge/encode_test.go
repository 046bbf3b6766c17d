package jsonbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sternrassler/pagedseq/pkg/paged"
	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Price float64  `json:"price"`
}

func TestEncodeEnvelope(t *testing.T) {
	p := pagination.MustNew(2, 1, pagination.WithTotalCount(3))
	var buf bytes.Buffer

	err := Encode[int](context.Background(), &buf, paged.FromSlice([]int{1, 2}, p))
	require.NoError(t, err)
	assert.JSONEq(t, `{"pagination":{"pageSize":2,"currentPage":1,"totalCount":3},"items":[1,2]}`, buf.String())

	buf.Reset()
	require.NoError(t, Encode[int](context.Background(), &buf, paged.Empty[int]()))
	assert.JSONEq(t, `{"pagination":{"pageSize":0,"currentPage":0},"items":[]}`, buf.String())
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []order
		page  pagination.Pagination
	}{
		{
			name:  "total count",
			items: []order{{ID: 1, Name: "a", Tags: []string{"x"}, Price: 1.5}, {ID: 2, Name: "b \"q\""}},
			page:  pagination.MustNew(2, 4, pagination.WithTotalCount(40)),
		},
		{
			name:  "continuation token",
			items: []order{{ID: 3, Name: "c"}},
			page:  pagination.MustNew(1, 1, pagination.WithContinuationToken("next/é")),
		},
		{
			name:  "empty page",
			items: []order{},
			page:  pagination.MustNew(10, 1, pagination.WithTotalCount(0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			var buf bytes.Buffer
			require.NoError(t, Encode[order](ctx, &buf, paged.FromSlice(tt.items, tt.page)))

			r := NewReader[order](io.NopCloser(&buf))
			defer r.Close()

			page, err := paged.ToPage[order](ctx, r)
			require.NoError(t, err)
			assert.True(t, tt.page.Equal(page.Pagination), "got %s want %s", page.Pagination, tt.page)
			assert.Equal(t, tt.items, page.Items)
		})
	}
}

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() error {
	f.flushes++
	return nil
}

func TestEncodeFlushesPerItem(t *testing.T) {
	w := &flushRecorder{}
	require.NoError(t, Encode[int](context.Background(), w, paged.FromSlice([]int{1, 2, 3}, pagination.Empty())))
	assert.Equal(t, 4, w.flushes)
}

func TestEncodeStopsOnSourceError(t *testing.T) {
	boom := errors.New("boom")
	seq := paged.MapCtx(paged.FromSlice([]int{1, 2}, pagination.Empty()), func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})

	var buf bytes.Buffer
	err := Encode[int](context.Background(), &buf, seq)
	assert.ErrorIs(t, err, boom)
}

func TestHandler(t *testing.T) {
	h := Handler(func(r *http.Request) (paged.Sequence[order], error) {
		switch r.URL.Query().Get("case") {
		case "upstream":
			return nil, fmt.Errorf("load: %w", &StatusError{StatusCode: http.StatusNotFound})
		case "broken":
			return nil, errors.New("boom")
		}
		return paged.FromSlice([]order{{ID: 1, Name: "a"}}, pagination.MustNew(1, 1)), nil
	})

	tests := []struct {
		name   string
		query  string
		status int
		body   string
	}{
		{"ok", "", http.StatusOK, `{"pagination":{"pageSize":1,"currentPage":1},"items":[{"id":1,"name":"a","price":0}]}`},
		{"upstream status", "?case=upstream", http.StatusNotFound, `{"error":"load: unexpected status 404"}`},
		{"generic error", "?case=broken", http.StatusBadGateway, `{"error":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders"+tt.query, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	Register[order](reg)
	Register[order](reg)

	ctx := context.Background()
	p := pagination.MustNew(5, 1)

	var typed bytes.Buffer
	require.NoError(t, reg.Encode(ctx, &typed, paged.FromSlice([]order{{ID: 9}}, p)))
	assert.JSONEq(t, `{"pagination":{"pageSize":5,"currentPage":1},"items":[{"id":9,"name":"","price":0}]}`, typed.String())

	// Unregistered element type falls back to the untyped path.
	var untyped bytes.Buffer
	require.NoError(t, reg.Encode(ctx, &untyped, paged.FromSlice([]string{"x", "y"}, p)))
	assert.JSONEq(t, `{"pagination":{"pageSize":5,"currentPage":1},"items":["x","y"]}`, untyped.String())

	err := reg.Encode(ctx, &bytes.Buffer{}, []int{1, 2})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	err = reg.Encode(ctx, &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestRegistryEncodesReaderOutput(t *testing.T) {
	ctx := context.Background()
	src := `{"pagination":{"pageSize":2,"currentPage":1,"totalCount":2},"items":[{"id":1,"name":"a","price":2}]}`

	reg := NewRegistry()
	Register[json.RawMessage](reg)

	var out bytes.Buffer
	r := NewReader[json.RawMessage](io.NopCloser(bytes.NewBufferString(src)))
	require.NoError(t, reg.Encode(ctx, &out, r))
	assert.JSONEq(t, src, out.String())
}

// Package testutil provides a mock paged JSON API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// PageMode selects how MockAPI describes pagination.
type PageMode int

const (
	// EnvelopeMode serves {"pagination": {...}, "items": [...]} with a total count.
	EnvelopeMode PageMode = iota

	// HeaderMode serves a bare array and X-Page-Size / X-Current-Page /
	// X-Total-Count headers.
	HeaderMode

	// CursorMode serves envelopes carrying a continuation token instead of a
	// total; the token is the next page number.
	CursorMode

	// TotalCursorMode serves envelopes carrying both a total count and a
	// continuation token. A token in the request wins over "page".
	TotalCursorMode
)

// MockResponse is a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// PagedEndpoint describes items served page by page.
type PagedEndpoint struct {
	Items    []any
	PageSize int
	Mode     PageMode

	// MaxAge sets Cache-Control max-age when positive; each page also carries
	// an ETag and answers matching If-None-Match with 304.
	MaxAge time.Duration

	// FailPage answers that page with FailStatus.
	FailPage   int
	FailStatus int
}

// MockAPI is a configurable mock upstream.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount      int
	conditionalCount  int
	pageRequests      map[int]int
	lastRequestHeader http.Header
}

// NewMockAPI starts a mock server. Unknown paths answer 404.
func NewMockAPI() *MockAPI {
	m := &MockAPI{
		handlers:     make(map[string]http.HandlerFunc),
		pageRequests: make(map[int]int),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requestCount++
		m.lastRequestHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			m.conditionalCount++
		}
		handler, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		handler(w, r)
	}))

	return m
}

// URL returns the server base URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// SetHandler installs handler for path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse answers path with resp.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPaged serves ep at path. Pages are selected with the "page" and
// "pageSize" query parameters, or "continuationToken" in the cursor modes.
func (m *MockAPI) SetPaged(path string, ep PagedEndpoint) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := queryInt(q.Get("page"), 1)
		if (ep.Mode == CursorMode || ep.Mode == TotalCursorMode) && q.Get("continuationToken") != "" {
			page = queryInt(q.Get("continuationToken"), page)
		}
		size := queryInt(q.Get("pageSize"), ep.PageSize)
		if size < 1 {
			size = 10
		}

		m.mu.Lock()
		m.pageRequests[page]++
		m.mu.Unlock()

		if ep.FailPage == page {
			http.Error(w, `{"error":"injected failure"}`, ep.FailStatus)
			return
		}

		etag := fmt.Sprintf(`"page-%d-%d"`, page, size)
		w.Header().Set("Content-Type", "application/json")
		if ep.MaxAge > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(ep.MaxAge.Seconds())))
			w.Header().Set("ETag", etag)
			if r.Header.Get("If-None-Match") == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}

		from := min((page-1)*size, len(ep.Items))
		to := min(from+size, len(ep.Items))
		items := ep.Items[from:to]
		if items == nil {
			items = []any{}
		}

		var body any
		switch ep.Mode {
		case HeaderMode:
			w.Header().Set("X-Page-Size", strconv.Itoa(size))
			w.Header().Set("X-Current-Page", strconv.Itoa(page))
			w.Header().Set("X-Total-Count", strconv.Itoa(len(ep.Items)))
			body = items
		case CursorMode:
			block := map[string]any{"pageSize": size, "currentPage": page}
			if to < len(ep.Items) {
				block["continuationToken"] = strconv.Itoa(page + 1)
			}
			body = map[string]any{"pagination": block, "items": items}
		case TotalCursorMode:
			block := map[string]any{"pageSize": size, "currentPage": page, "totalCount": len(ep.Items)}
			if to < len(ep.Items) {
				block["continuationToken"] = strconv.Itoa(page + 1)
			}
			body = map[string]any{"pagination": block, "items": items}
		default:
			body = map[string]any{
				"pagination": map[string]any{"pageSize": size, "currentPage": page, "totalCount": len(ep.Items)},
				"items":      items,
			}
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(body)
	})
}

func queryInt(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Ints returns 1..n as items for SetPaged.
func Ints(n int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

// RequestCount returns the number of requests served.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of conditional requests served.
func (m *MockAPI) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// PageRequests returns how often page was requested across paged endpoints.
func (m *MockAPI) PageRequests(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageRequests[page]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// Reset clears the counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.pageRequests = make(map[int]int)
	m.lastRequestHeader = nil
}

// NewServerErrorResponse returns a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewRateLimitResponse returns a 429 response with a one second Retry-After.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"rate limit exceeded"}`,
		Headers:    map[string]string{"Content-Type": "application/json", "Retry-After": "1"},
	}
}

package pagination

import (
	"errors"
	"fmt"
)

// Validation errors returned by New and the option helpers.
var (
	// ErrInvalidPageSize is returned when the page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrInvalidPage is returned when the current page is below 1.
	ErrInvalidPage = errors.New("current page must be >= 1")

	// ErrInvalidTotalCount is returned for a negative total count.
	ErrInvalidTotalCount = errors.New("total count must be non-negative")
)

// Pagination is a snapshot of page size, current page, total count and
// continuation token. Values are never mutated in place; the With* methods
// return modified copies.
type Pagination struct {
	// PageSize is the number of items per page. Zero marks the empty descriptor.
	PageSize int `json:"pageSize"`

	// CurrentPage is the 1-based page number.
	CurrentPage int `json:"currentPage"`

	// TotalCount is the total number of items across all pages, if known.
	TotalCount *int64 `json:"totalCount,omitempty"`

	// ContinuationToken is an opaque cursor for the next page, if any.
	ContinuationToken *string `json:"continuationToken,omitempty"`
}

// Option configures a descriptor built by New.
type Option func(*Pagination) error

// WithTotalCount sets the total item count.
func WithTotalCount(n int64) Option {
	return func(p *Pagination) error {
		if n < 0 {
			return fmt.Errorf("%w (got %d)", ErrInvalidTotalCount, n)
		}
		p.TotalCount = &n
		return nil
	}
}

// WithContinuationToken sets the continuation token.
func WithContinuationToken(token string) Option {
	return func(p *Pagination) error {
		p.ContinuationToken = &token
		return nil
	}
}

// New builds a validated descriptor.
func New(pageSize, currentPage int, opts ...Option) (Pagination, error) {
	if pageSize <= 0 {
		return Pagination{}, fmt.Errorf("%w (got %d)", ErrInvalidPageSize, pageSize)
	}
	if currentPage < 1 {
		return Pagination{}, fmt.Errorf("%w (got %d)", ErrInvalidPage, currentPage)
	}

	p := Pagination{PageSize: pageSize, CurrentPage: currentPage}
	for _, opt := range opts {
		if err := opt(&p); err != nil {
			return Pagination{}, err
		}
	}
	return p, nil
}

// MustNew is like New but panics on invalid input. Intended for literals in
// tests and examples.
func MustNew(pageSize, currentPage int, opts ...Option) Pagination {
	p, err := New(pageSize, currentPage, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Empty returns the sentinel used when pagination cannot be determined.
func Empty() Pagination {
	return Pagination{}
}

// IsEmpty reports whether p is the empty sentinel.
func (p Pagination) IsEmpty() bool {
	return p.PageSize == 0
}

// TotalPages returns ceil(TotalCount / PageSize). The second result is false
// when the total count is unknown or the descriptor is empty.
func (p Pagination) TotalPages() (int64, bool) {
	if p.TotalCount == nil || p.PageSize <= 0 {
		return 0, false
	}
	size := int64(p.PageSize)
	return (*p.TotalCount + size - 1) / size, true
}

// HasNextPage reports whether another page is expected after CurrentPage.
func (p Pagination) HasNextPage() bool {
	if p.ContinuationToken != nil && *p.ContinuationToken != "" {
		return true
	}
	if total, ok := p.TotalPages(); ok {
		return int64(p.CurrentPage) < total
	}
	return false
}

// WithCurrentPage returns a copy with CurrentPage set to page.
func (p Pagination) WithCurrentPage(page int) Pagination {
	out := p.clone()
	out.CurrentPage = page
	return out
}

// WithTotalCount returns a copy with TotalCount set to n.
func (p Pagination) WithTotalCount(n int64) Pagination {
	out := p.clone()
	out.TotalCount = &n
	return out
}

// WithContinuationToken returns a copy with ContinuationToken set to token.
// An empty token clears it.
func (p Pagination) WithContinuationToken(token string) Pagination {
	out := p.clone()
	if token == "" {
		out.ContinuationToken = nil
	} else {
		out.ContinuationToken = &token
	}
	return out
}

// Equal reports structural equality; optional fields compare by value.
func (p Pagination) Equal(other Pagination) bool {
	if p.PageSize != other.PageSize || p.CurrentPage != other.CurrentPage {
		return false
	}
	if (p.TotalCount == nil) != (other.TotalCount == nil) {
		return false
	}
	if p.TotalCount != nil && *p.TotalCount != *other.TotalCount {
		return false
	}
	if (p.ContinuationToken == nil) != (other.ContinuationToken == nil) {
		return false
	}
	return p.ContinuationToken == nil || *p.ContinuationToken == *other.ContinuationToken
}

// String renders the descriptor for logs.
func (p Pagination) String() string {
	if p.IsEmpty() {
		return "pagination(empty)"
	}
	total := "?"
	if p.TotalCount != nil {
		total = fmt.Sprintf("%d", *p.TotalCount)
	}
	return fmt.Sprintf("pagination(page=%d size=%d total=%s)", p.CurrentPage, p.PageSize, total)
}

func (p Pagination) clone() Pagination {
	out := Pagination{PageSize: p.PageSize, CurrentPage: p.CurrentPage}
	if p.TotalCount != nil {
		n := *p.TotalCount
		out.TotalCount = &n
	}
	if p.ContinuationToken != nil {
		s := *p.ContinuationToken
		out.ContinuationToken = &s
	}
	return out
}

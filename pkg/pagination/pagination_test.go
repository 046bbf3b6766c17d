package pagination

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		page     int
		opts     []Option
		wantErr  error
	}{
		{
			name:     "valid",
			pageSize: 10,
			page:     1,
		},
		{
			name:     "zero page size",
			pageSize: 0,
			page:     1,
			wantErr:  ErrInvalidPageSize,
		},
		{
			name:     "page below one",
			pageSize: 10,
			page:     0,
			wantErr:  ErrInvalidPage,
		},
		{
			name:     "negative total",
			pageSize: 10,
			page:     1,
			opts:     []Option{WithTotalCount(-1)},
			wantErr:  ErrInvalidTotalCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.pageSize, tt.page, tt.opts...)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPagination_TotalPages(t *testing.T) {
	tests := []struct {
		name   string
		p      Pagination
		want   int64
		wantOK bool
	}{
		{
			name:   "exact division",
			p:      MustNew(10, 1, WithTotalCount(100)),
			want:   10,
			wantOK: true,
		},
		{
			name:   "remainder rounds up",
			p:      MustNew(10, 1, WithTotalCount(101)),
			want:   11,
			wantOK: true,
		},
		{
			name:   "zero total",
			p:      MustNew(10, 1, WithTotalCount(0)),
			want:   0,
			wantOK: true,
		},
		{
			name:   "unknown total",
			p:      MustNew(10, 1),
			wantOK: false,
		},
		{
			name:   "empty sentinel",
			p:      Empty(),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.p.TotalPages()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("TotalPages() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPagination_HasNextPage(t *testing.T) {
	tests := []struct {
		name string
		p    Pagination
		want bool
	}{
		{"first of three", MustNew(10, 1, WithTotalCount(30)), true},
		{"last page", MustNew(10, 3, WithTotalCount(30)), false},
		{"token present", MustNew(10, 1, WithContinuationToken("next")), true},
		{"empty token", MustNew(10, 1, WithContinuationToken("")), false},
		{"nothing known", MustNew(10, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.HasNextPage(); got != tt.want {
				t.Errorf("HasNextPage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPagination_Immutability(t *testing.T) {
	base := MustNew(10, 1, WithTotalCount(50), WithContinuationToken("a"))

	moved := base.WithCurrentPage(3)
	if base.CurrentPage != 1 {
		t.Errorf("base CurrentPage changed to %d", base.CurrentPage)
	}
	if moved.CurrentPage != 3 {
		t.Errorf("moved CurrentPage = %d, want 3", moved.CurrentPage)
	}

	*moved.TotalCount = 999
	if *base.TotalCount != 50 {
		t.Errorf("base TotalCount aliased: %d", *base.TotalCount)
	}

	cleared := base.WithContinuationToken("")
	if cleared.ContinuationToken != nil {
		t.Error("empty token should clear ContinuationToken")
	}
	if base.ContinuationToken == nil || *base.ContinuationToken != "a" {
		t.Error("base token changed")
	}
}

func TestPagination_Equal(t *testing.T) {
	a := MustNew(10, 2, WithTotalCount(40))
	b := MustNew(10, 2, WithTotalCount(40))
	c := MustNew(10, 2)
	d := MustNew(10, 2, WithTotalCount(40), WithContinuationToken("x"))

	if !a.Equal(b) {
		t.Error("structurally equal descriptors should be Equal")
	}
	if a.Equal(c) {
		t.Error("missing total count should not be Equal")
	}
	if a.Equal(d) {
		t.Error("token difference should not be Equal")
	}
	if !Empty().Equal(Pagination{}) {
		t.Error("Empty() should equal zero value")
	}
}

func TestPagination_JSON(t *testing.T) {
	p := MustNew(25, 2, WithTotalCount(60), WithContinuationToken("tok"))

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"pageSize":25,"currentPage":2,"totalCount":60,"continuationToken":"tok"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Pagination
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(p) {
		t.Errorf("round trip = %v, want %v", back, p)
	}

	data, _ = json.Marshal(MustNew(5, 1))
	if string(data) != `{"pageSize":5,"currentPage":1}` {
		t.Errorf("optional fields should be omitted, got %s", data)
	}
}

func TestStrategy_Advance(t *testing.T) {
	base := MustNew(3, 1, WithTotalCount(9))

	tests := []struct {
		name     string
		strategy Strategy
		yielded  int64
		wantPage int
	}{
		{"none never moves", StrategyNone, 7, 1},
		{"per page before boundary", StrategyPerPage, 2, 1},
		{"per page at boundary", StrategyPerPage, 3, 2},
		{"per page two pages", StrategyPerPage, 7, 3},
		{"per item", StrategyPerItem, 4, 5},
		{"nothing yielded", StrategyPerItem, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.Advance(base, tt.yielded)
			if got.CurrentPage != tt.wantPage {
				t.Errorf("Advance(%d) page = %d, want %d", tt.yielded, got.CurrentPage, tt.wantPage)
			}
		})
	}

	if got := StrategyPerItem.Advance(Empty(), 5); !got.IsEmpty() || got.CurrentPage != 0 {
		t.Errorf("empty descriptor should not advance, got %v", got)
	}
}

func TestStrategy_Moves(t *testing.T) {
	base := MustNew(2, 1)
	if StrategyPerPage.Moves(base, 1) {
		t.Error("per page should not move mid-page")
	}
	if !StrategyPerPage.Moves(base, 2) {
		t.Error("per page should move at page boundary")
	}
	if !StrategyPerItem.Moves(base, 1) {
		t.Error("per item should move on every item")
	}
	if StrategyNone.Moves(base, 2) {
		t.Error("none should never move")
	}
}

func TestStrategy_String(t *testing.T) {
	if StrategyPerPage.String() != "per_page" || StrategyPerItem.String() != "per_item" ||
		StrategyNone.String() != "none" || Strategy(42).String() != "unknown" {
		t.Error("unexpected strategy names")
	}
}

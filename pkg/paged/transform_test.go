package paged

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"testing"

	"github.com/Sternrassler/pagedseq/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterAndMap(t *testing.T) {
	seq := Map(Filter(of(1, 2, 3, 4, 5, 6), func(v int) bool { return v%2 == 0 }), strconv.Itoa)
	assert.Equal(t, []string{"2", "4", "6"}, drain(t, seq))
}

func TestOperatorsForwardPagination(t *testing.T) {
	src := &tracked[int]{items: []int{1, 2, 3}}
	want, _ := src.Pagination(context.Background())

	tests := []struct {
		name string
		seq  interface {
			Pagination(context.Context) (pagination.Pagination, error)
		}
	}{
		{"filter", Filter[int](src, func(int) bool { return false })},
		{"map", Map[int](src, strconv.Itoa)},
		{"window", Window[int](src, 2)},
		{"chunk", Chunk[int](src, 2)},
		{"distinct", Distinct[int](src)},
		{"orderby", OrderBy[int](src, func(v int) int { return -v })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.seq.Pagination(context.Background())
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
	assert.Zero(t, src.pulled, "pagination must not enumerate the source")
}

func TestOperatorsAreLazy(t *testing.T) {
	src := &tracked[int]{items: []int{1, 2, 3}}
	seq := Map(Filter[int](src, func(int) bool { return true }), func(v int) int { return v * 2 })
	assert.Zero(t, src.pulled)

	assert.Equal(t, []int{2, 4, 6}, drain(t, seq))
	assert.Equal(t, 3, src.pulled)
}

func TestFilterCtxError(t *testing.T) {
	seq := FilterCtx(of(1, 2, 3), func(_ context.Context, v int) (bool, error) {
		if v == 2 {
			return false, errBoom
		}
		return true, nil
	})
	_, err := ToSlice(context.Background(), seq)
	assert.ErrorIs(t, err, errBoom)
}

func TestOfType(t *testing.T) {
	seq := OfType[string](of[any](1, "a", 2.5, "b"))
	assert.Equal(t, []string{"a", "b"}, drain(t, seq))
}

func TestMapIndexedAndTap(t *testing.T) {
	var seen []int
	seq := MapIndexed(Tap(of("a", "b"), func(s string) { seen = append(seen, len(s)) }),
		func(i int, s string) string { return fmt.Sprintf("%d:%s", i, s) })
	assert.Equal(t, []string{"0:a", "1:b"}, drain(t, seq))
	assert.Equal(t, []int{1, 1}, seen)
}

func TestMapCtxStopsOnError(t *testing.T) {
	src := &tracked[int]{items: []int{1, 2, 3}}
	seq := MapCtx[int](src, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, errBoom
		}
		return v, nil
	})
	got, err := ToSlice(context.Background(), seq)
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, got)
	assert.True(t, src.released)
}

func TestFlatMap(t *testing.T) {
	seq := FlatMap(of(1, 2, 3), func(v int) iter.Seq[int] {
		return slices.Values(slices.Repeat([]int{v}, v))
	})
	assert.Equal(t, []int{1, 2, 2, 3, 3, 3}, drain(t, seq))
}

func TestFlatMapNilInnerIsError(t *testing.T) {
	tests := []struct {
		name string
		seq  Sequence[int]
	}{
		{"seq", FlatMap(of(1, 2), func(v int) iter.Seq[int] {
			if v == 2 {
				return nil
			}
			return slices.Values([]int{v})
		})},
		{"sequence", FlatMapSeq(of(1, 2), func(v int) Sequence[int] {
			if v == 2 {
				return nil
			}
			return of(v)
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			var err error
			for v, e := range tt.seq.All(context.Background()) {
				if e != nil {
					err = e
					break
				}
				got = append(got, v)
			}
			assert.Equal(t, []int{1}, got)
			assert.ErrorIs(t, err, ErrNilInnerSequence)
		})
	}
}

func TestFlatMapSliceNilIsEmpty(t *testing.T) {
	seq := FlatMapSlice(of(1, 2, 3), func(v int) []int {
		if v == 2 {
			return nil
		}
		return []int{v, v}
	})
	assert.Equal(t, []int{1, 1, 3, 3}, drain(t, seq))
}

func TestFlatMapSeqPropagatesInnerError(t *testing.T) {
	seq := FlatMapSeq(of(1), func(int) Sequence[int] {
		return &tracked[int]{items: []int{1, 2}, failAt: 2}
	})
	_, err := ToSlice(context.Background(), seq)
	assert.ErrorIs(t, err, errBoom)
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name string
		seq  Sequence[int]
		want []int
	}{
		{"skip", Skip(of(1, 2, 3, 4), 2), []int{3, 4}},
		{"skip zero", Skip(of(1, 2), 0), []int{1, 2}},
		{"skip past end", Skip(of(1, 2), 5), []int{}},
		{"take", Take(of(1, 2, 3, 4), 2), []int{1, 2}},
		{"take zero", Take(of(1, 2), 0), []int{}},
		{"take past end", Take(of(1, 2), 5), []int{1, 2}},
		{"skip while", SkipWhile(of(1, 2, 3, 1), func(v int) bool { return v < 3 }), []int{3, 1}},
		{"take while", TakeWhile(of(1, 2, 3, 1), func(v int) bool { return v < 3 }), []int{1, 2}},
		{"concat", Concat(of(1), of(2, 3), Empty[int](), of(4)), []int{1, 2, 3, 4}},
		{"default if empty", DefaultIfEmpty(Empty[int](), 7), []int{7}},
		{"default if not empty", DefaultIfEmpty(of(1), 7), []int{1}},
		{"append", Append(of(1, 2), 3), []int{1, 2, 3}},
		{"prepend", Prepend(of(1, 2), 0), []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, drain(t, tt.seq))
		})
	}
}

func TestTakeDoesNotOverPull(t *testing.T) {
	src := &tracked[int]{items: []int{1, 2, 3, 4}}
	assert.Equal(t, []int{1, 2}, drain(t, Take[int](src, 2)))
	assert.Equal(t, 2, src.pulled)
	assert.True(t, src.released)
}

func TestChunk(t *testing.T) {
	got := drain(t, Chunk(of(1, 2, 3, 4, 5), 2))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)
}

func TestOrdering(t *testing.T) {
	type row struct {
		name string
		age  int
	}
	rows := of(row{"c", 30}, row{"a", 20}, row{"b", 30})

	asc := drain(t, OrderBy(rows, func(r row) int { return r.age }))
	assert.Equal(t, []row{{"a", 20}, {"c", 30}, {"b", 30}}, asc)

	desc := drain(t, OrderByDescending(rows, func(r row) int { return r.age }))
	assert.Equal(t, []row{{"c", 30}, {"b", 30}, {"a", 20}}, desc)

	byName := drain(t, SortFunc(rows, func(a, b row) int { return cmpString(a.name, b.name) }))
	assert.Equal(t, "a", byName[0].name)

	assert.Equal(t, []int{3, 2, 1}, drain(t, Reverse(of(1, 2, 3))))
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func TestGroupBy(t *testing.T) {
	words := of("apple", "bob", "avocado", "cat", "banana")
	groups := drain(t, GroupBy(words, func(s string) byte { return s[0] }))

	require.Len(t, groups, 3)
	assert.Equal(t, Group[byte, string]{Key: 'a', Items: []string{"apple", "avocado"}}, groups[0])
	assert.Equal(t, byte('b'), groups[1].Key)
	assert.Equal(t, byte('c'), groups[2].Key)

	type total struct {
		key byte
		sum int
	}
	totals := drain(t, GroupByAggregate(words,
		func(s string) byte { return s[0] },
		func(s string) total { return total{key: s[0], sum: len(s)} },
		func(acc *total, s string) { acc.sum += len(s) },
	))
	assert.Equal(t, []total{{'a', 12}, {'b', 9}, {'c', 3}}, totals)
}

func TestSetOperators(t *testing.T) {
	tests := []struct {
		name string
		seq  Sequence[int]
		want []int
	}{
		{"distinct", Distinct(of(1, 2, 1, 3, 2)), []int{1, 2, 3}},
		{"union", Union(of(1, 2, 2), of(3, 2, 4, 4)), []int{1, 2, 3, 4}},
		{"intersect", Intersect(of(1, 2, 2, 3, 4), of(4, 2, 2)), []int{2, 4}},
		{"except", Except(of(1, 2, 2, 3, 1), of(2)), []int{1, 3}},
		{"union empty", Union(Empty[int](), of(1, 1)), []int{1}},
		{"intersect empty", Intersect(of(1, 2), Empty[int]()), []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := drain(t, tt.seq)
			assert.Equal(t, tt.want, got)
			assert.Len(t, slices.Compact(slices.Sorted(slices.Values(got))), len(got), "duplicate emitted")
		})
	}
}

func TestSetOperatorsByKey(t *testing.T) {
	key := func(s string) int { return len(s) }
	assert.Equal(t, []string{"a", "bb"}, drain(t, DistinctBy(of("a", "bb", "c"), key)))
	assert.Equal(t, []string{"a", "bb", "ccc"}, drain(t, UnionBy(of("a", "bb"), of("x", "ccc"), key)))
	assert.Equal(t, []string{"bb"}, drain(t, IntersectBy(of("a", "bb", "cc"), of("zz"), key)))
	assert.Equal(t, []string{"a"}, drain(t, ExceptBy(of("a", "bb", "c"), of("zz"), key)))
}

func TestZip(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want []string
	}{
		{"equal", []int{1, 2}, []int{10, 20}, []string{"1-10", "2-20"}},
		{"a shorter", []int{1}, []int{10, 20}, []string{"1-10"}},
		{"b shorter", []int{1, 2, 3}, []int{10}, []string{"1-10"}},
		{"b empty", []int{1, 2}, nil, []string{}},
		{"a empty", nil, []int{1}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &tracked[int]{items: tt.a}
			b := &tracked[int]{items: tt.b}
			got := drain(t, Zip[int, int](a, b, func(x, y int) string { return fmt.Sprintf("%d-%d", x, y) }))
			assert.Equal(t, tt.want, got)
			assert.True(t, a.started || b.started, "neither side enumerated")
			assert.Equal(t, a.started, a.released, "a started but not released")
			assert.Equal(t, b.started, b.released, "b started but not released")
		})
	}
}

func TestZipReleasesOnEarlyExit(t *testing.T) {
	a := &tracked[int]{items: []int{1, 2, 3}}
	b := &tracked[int]{items: []int{1, 2, 3}}
	zipped := Zip[int, int](a, b, func(x, y int) int { return x + y })

	for range zipped.All(context.Background()) {
		break
	}
	assert.True(t, a.released)
	assert.True(t, b.released)
}

func TestSourceErrorEndsEnumeration(t *testing.T) {
	src := &tracked[int]{items: []int{1, 2, 3}, failAt: 3}
	var got []int
	var err error
	for v, e := range Map[int](src, func(v int) int { return v }).All(context.Background()) {
		if e != nil {
			err = e
			continue
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
	assert.True(t, errors.Is(err, errBoom))
	assert.False(t, IsCancelled(err))
}

func TestCancellationIsDistinct(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	seq := Map(of(1, 2, 3), func(v int) int {
		if v == 1 {
			cancel()
		}
		return v
	})

	got, err := ToSlice(ctx, seq)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArgumentValidationPanics(t *testing.T) {
	var nilSeq Sequence[int]
	tests := []struct {
		name string
		call func()
	}{
		{"filter nil source", func() { Filter(nilSeq, func(int) bool { return true }) }},
		{"filter nil adapter", func() { Filter[int]((*Adapter[int])(nil), func(int) bool { return true }) }},
		{"filter nil predicate", func() { Filter[int](of(1), nil) }},
		{"map nil fn", func() { Map[int, int](of(1), nil) }},
		{"window zero", func() { Window(of(1), 0) }},
		{"windowed sum zero", func() { WindowedSum(of(1), 0, func(v int) int { return v }) }},
		{"chunk zero", func() { Chunk(of(1), 0) }},
		{"skip negative", func() { Skip(of(1), -1) }},
		{"take negative", func() { Take(of(1), -1) }},
		{"zip nil other", func() { Zip[int, int, int](of(1), nil, func(a, b int) int { return a }) }},
		{"sum nil source", func() { _, _ = Sum(context.Background(), nilSeq) }},
		{"element at negative", func() { _, _ = ElementAt(context.Background(), of(1), -1) }},
		{"new nil items", func() { New[int](nil, Static(pagination.Empty())) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r, "expected panic")
				err, ok := r.(error)
				require.True(t, ok)
				assert.ErrorIs(t, err, ErrInvalidArgument)
				var argErr *ArgumentError
				assert.ErrorAs(t, err, &argErr)
			}()
			tt.call()
		})
	}
}

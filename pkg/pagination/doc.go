// Package pagination defines the immutable pagination descriptor shared by
// paged sequences, their sources and the JSON bridge.
//
// A descriptor carries page size, current page, an optional total count and an
// optional continuation token:
//
//	p, err := pagination.New(50, 1, pagination.WithTotalCount(1234))
//	pages, _ := p.TotalPages() // 25
//
// The zero value (see Empty) is the sentinel used when pagination cannot be
// determined, for example when a response carries a malformed pagination block.
//
// The wire shape is the JSON object
//
//	{"pageSize":50,"currentPage":1,"totalCount":1234,"continuationToken":"abc"}
//
// where totalCount and continuationToken are omitted when absent.
//
// Strategy controls how a streaming adapter moves CurrentPage while items are
// yielded: once per PageSize items (StrategyPerPage) or once per item
// (StrategyPerItem).
package pagination

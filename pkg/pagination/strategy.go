package pagination

// Strategy selects how a streaming adapter refreshes the exposed snapshot
// while items are yielded.
type Strategy int

const (
	// StrategyNone keeps the snapshot resolved before enumeration.
	StrategyNone Strategy = iota

	// StrategyPerPage advances CurrentPage once every PageSize yielded items.
	StrategyPerPage

	// StrategyPerItem advances CurrentPage once per yielded item.
	StrategyPerItem
)

// String returns the strategy name used in logs.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyPerPage:
		return "per_page"
	case StrategyPerItem:
		return "per_item"
	default:
		return "unknown"
	}
}

// Advance returns the snapshot after yielded items have been produced from
// base. The empty descriptor is never advanced.
func (s Strategy) Advance(base Pagination, yielded int64) Pagination {
	if base.IsEmpty() || yielded <= 0 {
		return base
	}
	switch s {
	case StrategyPerPage:
		return base.WithCurrentPage(base.CurrentPage + int(yielded/int64(base.PageSize)))
	case StrategyPerItem:
		return base.WithCurrentPage(base.CurrentPage + int(yielded))
	default:
		return base
	}
}

// Moves reports whether Advance may change the page after yielded items.
func (s Strategy) Moves(base Pagination, yielded int64) bool {
	switch s {
	case StrategyPerPage:
		return !base.IsEmpty() && yielded > 0 && yielded%int64(base.PageSize) == 0
	case StrategyPerItem:
		return !base.IsEmpty() && yielded > 0
	default:
		return false
	}
}

// Package paged provides lazy, cancellable sequences that carry a pagination
// descriptor alongside their elements, and a set of composable operators over
// them.
//
// A Sequence is enumerated with range over All(ctx):
//
//	seq := paged.FromSlice(items, pagination.MustNew(25, 1))
//	evens := paged.Filter(seq, func(v int) bool { return v%2 == 0 })
//	for v, err := range evens.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(v)
//	}
//
// Operators returning *Adapter are lazy: nothing is pulled from the source
// until the result is enumerated. Their Pagination forwards to the source, so
// a filtered sequence reports the upstream totals rather than a recomputed
// count. Terminal operators (Sum, Count, ToSlice, ...) enumerate immediately.
//
// Operators validate their arguments when called and panic with an
// *ArgumentError on misuse. Errors met during enumeration are yielded as the
// final element; cancellation is reported with an error for which
// IsCancelled is true, which callers can tell apart from data faults.
package paged

package paged

import (
	"context"
	"iter"
)

// Zip combines elements of a and b pairwise with fn and stops as soon as
// either side is exhausted. Both enumerations are released when Zip returns,
// including on early exit, error or cancellation. Pagination is forwarded
// from a.
func Zip[A, B, R any](a Sequence[A], b Sequence[B], fn func(A, B) R) *Adapter[R] {
	mustSource("Zip", a)
	mustFunc("Zip", "other", b == nil)
	mustFunc("Zip", "fn", fn == nil)

	return lazy(a, func(ctx context.Context, emit func(R) bool) error {
		nextA, stopA := iter.Pull2(a.All(ctx))
		defer stopA()
		nextB, stopB := iter.Pull2(b.All(ctx))
		defer stopB()

		for {
			if err := cancelled(ctx); err != nil {
				return err
			}
			va, err, ok := nextA()
			if !ok {
				return nil
			}
			if err != nil {
				return err
			}
			vb, err, ok := nextB()
			if !ok {
				return nil
			}
			if err != nil {
				return err
			}
			if !emit(fn(va, vb)) {
				return nil
			}
		}
	})
}

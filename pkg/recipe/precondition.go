package recipe

import (
	"context"

	"github.com/recast-dev/recast/pkg/tree"
)

// Check decorates the delegate visitor with guard visitors: each guard's
// matching logic runs first, and the delegate only runs where every guard
// matched. A guard matches by returning a non-nil tree; nil means no match
// and leaves the input untouched. This is pure decoration: it changes no
// stored state, only the visitor graph handed to the execution engine.
func Check(delegate tree.Visitor, guards ...tree.Visitor) tree.Visitor {
	if len(guards) == 0 {
		return delegate
	}

	return tree.VisitorFunc(func(ctx context.Context, t tree.Tree) (tree.Tree, error) {
		for _, guard := range guards {
			res, err := guard.Visit(ctx, t)
			if err != nil {
				return nil, err
			}
			if res == nil {
				return t, nil
			}
		}
		return delegate.Visit(ctx, t)
	})
}

// CheckScanning decorates a scanning recipe's scan-phase visitor the same way
// Check decorates a plain visitor, preserving the accumulator wiring.
func CheckScanning(r ScanningRecipe, guards ...tree.Visitor) tree.Visitor {
	return Check(r.ScanningVisitor(r.Accumulator()), guards...)
}

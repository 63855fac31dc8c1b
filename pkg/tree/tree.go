// Package tree defines the contracts between the recipe catalog and the
// execution engine that walks source trees. The catalog never inspects trees
// or visitors; it only wraps and sequences them.
package tree

import "context"

// Tree is an opaque handle to a parsed source tree.
type Tree any

// Visitor walks a source tree and returns the (possibly transformed) tree.
//
// A visitor used as a precondition guard signals "no match" by returning a nil
// tree with a nil error; any non-nil result counts as a match.
type Visitor interface {
	Visit(ctx context.Context, t Tree) (Tree, error)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(ctx context.Context, t Tree) (Tree, error)

func (f VisitorFunc) Visit(ctx context.Context, t Tree) (Tree, error) {
	return f(ctx, t)
}

// Noop returns the input tree unchanged. Recipes that only compose other
// recipes use it as their own visitor.
var Noop Visitor = VisitorFunc(func(_ context.Context, t Tree) (Tree, error) {
	return t, nil
})

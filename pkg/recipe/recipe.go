// Package recipe defines the named, composable units of source transformation
// managed by the catalog: natively implemented recipes, declaratively composed
// recipes loaded from data files, and the descriptors that describe both.
package recipe

import (
	"github.com/hashicorp/go-multierror"

	"github.com/recast-dev/recast/pkg/tree"
)

// Recipe is a named, composable unit of source transformation. Natively
// implemented recipes register zero-argument factories with the registry;
// declarative recipes are loaded from YAML sources and wired after all
// sources have been parsed.
type Recipe interface {
	// Name returns the globally unique dotted identity, e.g.
	// "org.example.format.TabsToSpaces".
	Name() string

	DisplayName() string
	Description() string
	Tags() []string

	// Visitor returns the opaque tree visitor handle executed by the engine.
	// The catalog never inspects it; it only wraps or sequences it.
	Visitor() tree.Visitor

	// Recipes returns the ordered composition list.
	Recipes() []Recipe

	// Validate reports nil when the recipe is fully wired and usable.
	Validate() error
}

// ScanningRecipe is a recipe whose visitor needs a whole-tree scan phase
// first, carrying an accumulator between the two phases. The engine drives
// both phases; the catalog only decorates them.
type ScanningRecipe interface {
	Recipe

	Accumulator() any
	ScanningVisitor(acc any) tree.Visitor
}

// composite is the anonymous wrapper returned by environment activation: a
// recipe whose only job is to sequence its children.
type composite struct {
	name        string
	displayName string
	children    []Recipe
}

// NewComposite returns a recipe that composes the given children in order.
func NewComposite(name, displayName string, children ...Recipe) Recipe {
	return &composite{name: name, displayName: displayName, children: children}
}

func (c *composite) Name() string         { return c.name }
func (c *composite) DisplayName() string  { return c.displayName }
func (c *composite) Description() string  { return "" }
func (c *composite) Tags() []string       { return nil }
func (c *composite) Visitor() tree.Visitor { return tree.Noop }
func (c *composite) Recipes() []Recipe    { return c.children }

func (c *composite) Validate() error {
	var result *multierror.Error
	for _, child := range c.children {
		if err := child.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

package recipe

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/recast-dev/recast/pkg/tree"
)

// Reference is one entry of a declarative recipe's composition list. It is a
// two-state value: unresolved (name only) until the second loading pass binds
// it to a concrete recipe from the global pool.
type Reference struct {
	name   string
	recipe Recipe
}

// Unresolved returns a reference holding only the target's name.
func Unresolved(name string) Reference {
	return Reference{name: name}
}

// Resolved returns a reference already bound to a concrete recipe, e.g. when
// a native factory was found during the first pass.
func Resolved(r Recipe) Reference {
	return Reference{name: r.Name(), recipe: r}
}

func (r Reference) Name() string { return r.name }

// Recipe returns the bound recipe, or false while the reference is unresolved.
func (r Reference) Recipe() (Recipe, bool) {
	return r.recipe, r.recipe != nil
}

// DeclarativeRecipe is a recipe composed from other recipes by reference in a
// declarative source. It starts Unwired, holding name-only references, and
// transitions exactly once to Initialized via Initialize, after which every
// reference is either bound or recorded as a validation failure.
type DeclarativeRecipe struct {
	name          string
	displayName   string
	description   string
	tags          []string
	source        string
	effort        time.Duration
	options       []OptionDescriptor
	preconditions []tree.Visitor

	uses        []Reference
	initialized bool
	validation  error
}

func NewDeclarative(name string) *DeclarativeRecipe {
	return &DeclarativeRecipe{name: name}
}

func (r *DeclarativeRecipe) WithDisplayName(s string) *DeclarativeRecipe {
	r.displayName = s
	return r
}

func (r *DeclarativeRecipe) WithDescription(s string) *DeclarativeRecipe {
	r.description = s
	return r
}

func (r *DeclarativeRecipe) WithTags(tags []string) *DeclarativeRecipe {
	r.tags = tags
	return r
}

func (r *DeclarativeRecipe) WithSource(source string) *DeclarativeRecipe {
	r.source = source
	return r
}

func (r *DeclarativeRecipe) WithEstimatedEffort(d time.Duration) *DeclarativeRecipe {
	r.effort = d
	return r
}

func (r *DeclarativeRecipe) WithOptions(options []OptionDescriptor) *DeclarativeRecipe {
	r.options = options
	return r
}

func (r *DeclarativeRecipe) WithPrecondition(guard tree.Visitor) *DeclarativeRecipe {
	r.preconditions = append(r.preconditions, guard)
	return r
}

// Use appends an already-constructed recipe to the composition list.
func (r *DeclarativeRecipe) Use(child Recipe) {
	r.uses = append(r.uses, Resolved(child))
}

// Defer appends a name-only reference to be bound during Initialize. This is
// the normal case for references to recipes declared in other sources.
func (r *DeclarativeRecipe) Defer(name string) {
	r.uses = append(r.uses, Unresolved(name))
}

// Initialize binds every deferred reference by exact name match against the
// global pool of recipes discovered across all sources. Unresolvable names
// accumulate on the recipe's validation result instead of short-circuiting.
// The transition is one-way; subsequent calls are no-ops.
func (r *DeclarativeRecipe) Initialize(pool []Recipe) {
	if r.initialized {
		return
	}
	r.initialized = true

	byName := make(map[string]Recipe, len(pool))
	for _, p := range pool {
		if _, ok := byName[p.Name()]; !ok {
			byName[p.Name()] = p
		}
	}

	var result *multierror.Error
	for i, use := range r.uses {
		if _, ok := use.Recipe(); ok {
			continue
		}
		target, ok := byName[use.Name()]
		if !ok {
			result = multierror.Append(result, &InvalidReferenceError{
				Recipe: r.name,
				Index:  i,
				Source: r.source,
				Ref:    use.Name(),
			})
			continue
		}
		r.uses[i] = Resolved(target)
	}

	r.validation = result.ErrorOrNil()
}

func (r *DeclarativeRecipe) Name() string        { return r.name }
func (r *DeclarativeRecipe) DisplayName() string { return r.displayName }
func (r *DeclarativeRecipe) Description() string { return r.description }
func (r *DeclarativeRecipe) Tags() []string      { return r.tags }
func (r *DeclarativeRecipe) Source() string      { return r.source }

func (r *DeclarativeRecipe) Visitor() tree.Visitor {
	if len(r.preconditions) > 0 {
		return Check(tree.Noop, r.preconditions...)
	}
	return tree.Noop
}

// References returns the composition list in its current state.
func (r *DeclarativeRecipe) References() []Reference {
	return r.uses
}

// Recipes returns the bound composition list. Before Initialize it is empty.
func (r *DeclarativeRecipe) Recipes() []Recipe {
	var out []Recipe
	for _, use := range r.uses {
		if child, ok := use.Recipe(); ok {
			out = append(out, child)
		}
	}
	return out
}

// Validate reports an error until the recipe has been initialized and every
// reference resolved.
func (r *DeclarativeRecipe) Validate() error {
	if !r.initialized {
		return &UninitializedError{Recipe: r.name}
	}
	return r.validation
}

func (r *DeclarativeRecipe) Descriptor() Descriptor {
	d := Descriptor{
		Name:            r.name,
		DisplayName:     r.displayName,
		Description:     r.description,
		Tags:            r.tags,
		EstimatedEffort: r.effort,
		Options:         r.options,
		Source:          r.source,
	}
	for _, child := range r.Recipes() {
		d.Recipes = append(d.Recipes, Describe(child))
	}
	return d
}

// UninitializedError reports use of a declarative recipe whose composition
// was never wired.
type UninitializedError struct {
	Recipe string
}

func (e *UninitializedError) Error() string {
	return fmt.Sprintf("recipe %q used before initialization", e.Recipe)
}

// InvalidReferenceError reports one composition entry that names a recipe
// which does not exist anywhere in the global pool.
type InvalidReferenceError struct {
	Recipe string // owning recipe
	Index  int    // position in the composition list
	Source string // declaring source locator
	Ref    string // the offending name
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("recipe %q: recipeList[%d] references %q, which does not exist (declared in %s)",
		e.Recipe, e.Index, e.Ref, e.Source)
}

package category

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/recast-dev/recast/pkg/recipe"
)

// Tree is one node of the category tree: a descriptor, ordered child nodes
// and the recipes that live directly at this namespace, keyed by the group
// they were loaded under.
//
// Every node serializes access through its own lock; descending calls acquire
// the child's lock only after releasing their own. Writers on unrelated
// subtrees therefore don't contend, and a reader observes each node as of its
// own lock acquisition. Whole-tree snapshots are not atomic across nodes,
// which is acceptable because loads are idempotent replace-by-group
// operations.
type Tree[G comparable] struct {
	mu         sync.Mutex
	descriptor Descriptor
	subtrees   []*Tree[G]
	recipes    map[G][]recipe.Descriptor
}

// Build returns an empty tree: a single root node with an empty package name.
func Build[G comparable]() *Tree[G] {
	return newNode[G](Descriptor{
		DisplayName: "Root",
		Root:        true,
		Priority:    LowestPriority,
	})
}

func newNode[G comparable](d Descriptor) *Tree[G] {
	return &Tree[G]{
		descriptor: d,
		recipes:    make(map[G][]recipe.Descriptor),
	}
}

func (t *Tree[G]) Descriptor() Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.descriptor
}

// PutAll atomically replaces everything owned by group with the given
// recipes, materializing category levels from the supplied descriptors or
// synthesizing them when absent. Repeated loads of the same group therefore
// never accumulate duplicates.
func (t *Tree[G]) PutAll(group G, recipes []recipe.Descriptor, categories []Descriptor) {
	byPackage := make(map[string]Descriptor, len(categories))
	for _, c := range categories {
		byPackage[c.PackageName] = c
	}

	t.RemoveAll(group)
	for _, r := range recipes {
		t.add(group, r, byPackage)
	}
}

// RemoveAll strips every entry owned by group from this node and all
// descendants.
func (t *Tree[G]) RemoveAll(group G) {
	t.mu.Lock()
	delete(t.recipes, group)
	children := slices.Clone(t.subtrees)
	t.mu.Unlock()

	for _, child := range children {
		child.RemoveAll(group)
	}
}

// add places the recipe at the node owning its package, creating at most one
// intermediate level per call. Descending one level at a time means category
// descriptors supplied out of order, or only partially, still materialize
// correctly.
func (t *Tree[G]) add(group G, r recipe.Descriptor, categories map[string]Descriptor) {
	target := r.Package()

	t.mu.Lock()
	pkg := t.descriptor.PackageName

	if target == pkg {
		t.recipes[group] = append(t.recipes[group], r)
		t.mu.Unlock()
		return
	}

	if !isDescendant(pkg, target) {
		t.mu.Unlock()
		return
	}

	var next *Tree[G]
	for _, child := range t.subtrees {
		cp := child.descriptor.PackageName
		if cp == target || isDescendant(cp, target) {
			next = child
			break
		}
	}

	if next == nil {
		childPkg := childPackage(pkg, target)
		desc, ok := categories[childPkg]
		if !ok {
			desc = synthesize(childPkg)
		}
		desc.PackageName = childPkg
		next = newNode[G](desc)
		t.subtrees = append(t.subtrees, next)
	}
	t.mu.Unlock()

	next.add(group, r, categories)
}

// isDescendant reports whether pkg strictly contains target.
func isDescendant(pkg, target string) bool {
	if pkg == "" {
		return target != ""
	}
	return strings.HasPrefix(target, pkg+".")
}

// childPackage extends pkg by the next segment of target only, up to the next
// dot boundary.
func childPackage(pkg, target string) string {
	rest := target
	if pkg != "" {
		rest = target[len(pkg)+1:]
	}
	seg, _, _ := strings.Cut(rest, ".")
	if pkg == "" {
		return seg
	}
	return pkg + "." + seg
}

// Category resolves a category path, one dotted segment at a time. A segment
// equal to "core" short-circuits to the synthetic self-entries category when
// the node has direct entries.
func (t *Tree[G]) Category(path ...string) (*Tree[G], bool) {
	node, err := t.category(flatten(path))
	return node, err == nil
}

// CategoryOrError behaves like Category but reports which segment was missing
// and from which node.
func (t *Tree[G]) CategoryOrError(path ...string) (*Tree[G], error) {
	return t.category(flatten(path))
}

func (t *Tree[G]) category(segments []string) (*Tree[G], error) {
	if len(segments) == 0 {
		return t, nil
	}
	head := segments[0]

	if strings.EqualFold(head, CoreName) {
		if core := t.coreCategory(); core != nil {
			return core.category(segments[1:])
		}
	}

	t.mu.Lock()
	var next *Tree[G]
	for _, child := range t.subtrees {
		if lastSegment(child.descriptor.PackageName) == head {
			next = child
			break
		}
	}
	pkg := t.descriptor.PackageName
	t.mu.Unlock()

	if next == nil {
		return nil, &NotFoundError{Segment: head, Package: pkg}
	}
	return next.category(segments[1:])
}

// Subtrees returns the child categories, ordered by priority then package
// name. A node holding both direct entries and children gains a synthetic
// "core" pseudo-child exposing exactly its own direct entries; the
// pseudo-child is recomputed per read and never persisted.
func (t *Tree[G]) Subtrees() []*Tree[G] {
	t.mu.Lock()
	children := slices.Clone(t.subtrees)
	hasDirect := len(t.recipes) > 0
	t.mu.Unlock()

	slices.SortStableFunc(children, func(a, b *Tree[G]) int {
		da, db := a.Descriptor(), b.Descriptor()
		if c := cmp.Compare(da.Priority, db.Priority); c != 0 {
			return c
		}
		return strings.Compare(da.PackageName, db.PackageName)
	})

	if hasDirect && len(children) > 0 {
		if core := t.coreCategory(); core != nil {
			children = append([]*Tree[G]{core}, children...)
		}
	}
	return children
}

// coreCategory materializes the transient pseudo-category holding this node's
// own direct entries, or nil when there are none.
func (t *Tree[G]) coreCategory() *Tree[G] {
	t.mu.Lock()
	defer t.mu.Unlock()

	empty := true
	for _, rs := range t.recipes {
		if len(rs) > 0 {
			empty = false
			break
		}
	}
	if empty {
		return nil
	}

	pkg := t.descriptor.PackageName
	corePkg := CoreName
	if pkg != "" {
		corePkg = pkg + "." + CoreName
	}

	core := newNode[G](Descriptor{
		DisplayName: "Core",
		PackageName: corePkg,
		Priority:    LowestPriority,
		Synthetic:   true,
	})
	for g, rs := range t.recipes {
		core.recipes[g] = slices.Clone(rs)
	}
	return core
}

// Recipe finds a recipe descriptor by its dotted identity. When two groups
// hold a recipe with the same name in the same category, which one wins is
// unspecified; callers must not rely on the tie order.
func (t *Tree[G]) Recipe(id string) (recipe.Descriptor, bool) {
	node, ok := t.recipeNode(id)
	if !ok {
		return recipe.Descriptor{}, false
	}

	node.mu.Lock()
	defer node.mu.Unlock()
	for _, rs := range node.recipes {
		for _, r := range rs {
			if r.Name == id {
				return r, true
			}
		}
	}
	return recipe.Descriptor{}, false
}

// RecipeGroup reports which group a recipe was loaded under.
func (t *Tree[G]) RecipeGroup(id string) (G, bool) {
	var zero G
	node, ok := t.recipeNode(id)
	if !ok {
		return zero, false
	}

	node.mu.Lock()
	defer node.mu.Unlock()
	for g, rs := range node.recipes {
		for _, r := range rs {
			if r.Name == id {
				return g, true
			}
		}
	}
	return zero, false
}

func (t *Tree[G]) recipeNode(id string) (*Tree[G], bool) {
	pkg := recipe.Descriptor{Name: id}.Package()
	if pkg == "" {
		return t, true
	}
	node, err := t.category(strings.Split(pkg, "."))
	return node, err == nil
}

// Recipes returns the union of this node's direct entries across all groups
// and every descendant's recipes, depth-first with groups before subtrees,
// deduplicated by descriptor equality.
func (t *Tree[G]) Recipes() []recipe.Descriptor {
	var out []recipe.Descriptor
	t.collect(&out)
	return out
}

func (t *Tree[G]) collect(out *[]recipe.Descriptor) {
	t.mu.Lock()
	var direct []recipe.Descriptor
	for _, rs := range t.recipes {
		direct = append(direct, rs...)
	}
	children := slices.Clone(t.subtrees)
	t.mu.Unlock()

	for _, r := range direct {
		if !slices.ContainsFunc(*out, r.Equal) {
			*out = append(*out, r)
		}
	}
	for _, child := range children {
		child.collect(out)
	}
}

func flatten(path []string) []string {
	var out []string
	for _, p := range path {
		for _, seg := range strings.Split(p, ".") {
			if seg != "" {
				out = append(out, seg)
			}
		}
	}
	return out
}

package category_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/recast-dev/recast/pkg/category"
	"github.com/recast-dev/recast/pkg/recipe"
)

func desc(name string) recipe.Descriptor {
	return recipe.Descriptor{Name: name, DisplayName: name}
}

func TestPutAllIsGroupScoped(t *testing.T) {
	tree := category.Build[string]()
	r := desc("org.example.Shared")

	tree.PutAll("g1", []recipe.Descriptor{r}, nil)
	tree.PutAll("g2", []recipe.Descriptor{r}, nil)
	tree.RemoveAll("g1")

	all := tree.Recipes()
	if len(all) != 1 || all[0].Name != "org.example.Shared" {
		t.Fatalf("expected recipe to survive removal of the other group, got %v", all)
	}
}

func TestPutAllReplacesWithoutAccumulating(t *testing.T) {
	tree := category.Build[string]()

	tree.PutAll("g", []recipe.Descriptor{desc("org.example.A"), desc("org.example.B")}, nil)
	tree.PutAll("g", []recipe.Descriptor{desc("org.example.C")}, nil)

	all := tree.Recipes()
	if len(all) != 1 || all[0].Name != "org.example.C" {
		t.Fatalf("expected exactly the second set, got %v", all)
	}
}

func TestAddMaterializesLevelsOneAtATime(t *testing.T) {
	tree := category.Build[string]()
	supplied := []category.Descriptor{
		{PackageName: "org.example", DisplayName: "Example Recipes", Description: "d"},
	}

	tree.PutAll("g", []recipe.Descriptor{desc("org.example.cleanup.RemoveUnused")}, supplied)

	node, ok := tree.Category("org", "example")
	if !ok {
		t.Fatal("expected org.example to exist")
	}
	if got := node.Descriptor(); got.DisplayName != "Example Recipes" || got.Synthetic {
		t.Fatalf("supplied descriptor not used: %+v", got)
	}

	// org and org.example.cleanup had no supplied descriptor and must be
	// synthesized with a capitalized last segment.
	org, ok := tree.Category("org")
	if !ok {
		t.Fatal("expected org to exist")
	}
	if got := org.Descriptor(); got.DisplayName != "Org" || !got.Synthetic {
		t.Fatalf("unexpected synthesized descriptor: %+v", got)
	}

	cleanup, ok := tree.Category("org.example.cleanup")
	if !ok {
		t.Fatal("expected org.example.cleanup to exist")
	}
	if got := cleanup.Descriptor(); got.DisplayName != "Cleanup" {
		t.Fatalf("unexpected synthesized descriptor: %+v", got)
	}
}

func TestSyntheticCoreCategory(t *testing.T) {
	tree := category.Build[string]()
	tree.PutAll("g", []recipe.Descriptor{
		desc("org.example.Direct"),
		desc("org.example.sub.Nested"),
	}, nil)

	node, ok := tree.Category("org.example")
	if !ok {
		t.Fatal("expected org.example to exist")
	}

	subtrees := node.Subtrees()
	if len(subtrees) != 2 {
		t.Fatalf("expected core + sub, got %d subtrees", len(subtrees))
	}

	core := subtrees[0]
	if d := core.Descriptor(); !d.Synthetic || d.PackageName != "org.example.core" {
		t.Fatalf("expected synthetic core first, got %+v", d)
	}
	coreRecipes := core.Recipes()
	if len(coreRecipes) != 1 || coreRecipes[0].Name != "org.example.Direct" {
		t.Fatalf("core must hold exactly the direct entries, got %v", coreRecipes)
	}

	// Navigation short-circuits to the same pseudo-category.
	viaPath, ok := node.Category("core")
	if !ok {
		t.Fatal("expected core navigation to work")
	}
	if got := viaPath.Recipes(); len(got) != 1 || got[0].Name != "org.example.Direct" {
		t.Fatalf("unexpected core entries: %v", got)
	}

	// The pseudo-child is never persisted: repeated reads recompute it.
	if len(node.Subtrees()) != 2 {
		t.Fatal("core category must not be persisted as a real child")
	}
}

func TestRecipeLookup(t *testing.T) {
	tree := category.Build[string]()
	tree.PutAll("g", []recipe.Descriptor{desc("org.example.A"), desc("TopLevel")}, nil)

	if r, ok := tree.Recipe("org.example.A"); !ok || r.Name != "org.example.A" {
		t.Fatalf("lookup failed: %v %v", r, ok)
	}
	if r, ok := tree.Recipe("TopLevel"); !ok || r.Name != "TopLevel" {
		t.Fatalf("root-level lookup failed: %v %v", r, ok)
	}
	if _, ok := tree.Recipe("org.example.Missing"); ok {
		t.Fatal("expected miss for unknown recipe")
	}

	if g, ok := tree.RecipeGroup("org.example.A"); !ok || g != "g" {
		t.Fatalf("unexpected group: %v %v", g, ok)
	}
}

func TestCategoryOrError(t *testing.T) {
	tree := category.Build[string]()
	tree.PutAll("g", []recipe.Descriptor{desc("org.example.A")}, nil)

	if _, err := tree.CategoryOrError("org", "example"); err != nil {
		t.Fatal(err)
	}

	_, err := tree.CategoryOrError("org", "nope")
	var nf *category.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Segment != "nope" || nf.Package != "org" {
		t.Fatalf("error must name the missing segment and the node searched: %+v", nf)
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestRecipesDeduplicates(t *testing.T) {
	tree := category.Build[string]()
	r := desc("org.example.A")

	tree.PutAll("g1", []recipe.Descriptor{r}, nil)
	tree.PutAll("g2", []recipe.Descriptor{r}, nil)

	if all := tree.Recipes(); len(all) != 1 {
		t.Fatalf("expected deduplication by descriptor equality, got %v", all)
	}
}

func TestConcurrentLoadAndQuery(t *testing.T) {
	tree := category.Build[int]()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				tree.PutAll(g, []recipe.Descriptor{
					desc(fmt.Sprintf("org.g%d.R%d", g, i)),
					desc(fmt.Sprintf("org.shared.R%d", i)),
				}, nil)
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = tree.Recipes()
				_, _ = tree.Category("org", "shared")
			}
		}()
	}
	wg.Wait()

	// After all writers settle, every group's final put must be visible.
	for g := range 8 {
		if _, ok := tree.Recipe(fmt.Sprintf("org.g%d.R24", g)); !ok {
			t.Fatalf("missing final recipe for group %d", g)
		}
	}
}

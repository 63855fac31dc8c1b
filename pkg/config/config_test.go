package config_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/recast-dev/recast/internal/util"
	"github.com/recast-dev/recast/pkg/config"
	"github.com/recast-dev/recast/pkg/license"
	"github.com/recast-dev/recast/pkg/recipe"
	"github.com/recast-dev/recast/pkg/registry"
	"github.com/recast-dev/recast/pkg/tree"
)

type native struct {
	name string
}

func (n *native) Name() string             { return n.name }
func (n *native) DisplayName() string      { return n.name }
func (n *native) Description() string      { return "" }
func (n *native) Tags() []string           { return nil }
func (n *native) Visitor() tree.Visitor    { return tree.Noop }
func (n *native) Recipes() []recipe.Recipe { return nil }
func (n *native) Validate() error          { return nil }

func TestYAMLLoaderParsesRecipeAndProfile(t *testing.T) {
	src := `
type: recast.dev/v1/recipe
name: org.example.cleanup.Composite
displayName: Cleanup
description: Tidies things up.
tags: [cleanup, format]
license: Apache License Version 2.0
estimatedEffortPerOccurrence: 5m
options:
  - name: indentSize
    type: int
    required: true
recipeList:
  - org.example.cleanup.Native
  - org.example.cleanup.Missing
---
type: recast.dev/v1/profile
name: strict
configure:
  org.example.cleanup.Composite:
    indentSize: 2
---
type: recast.dev/v2/unknown
whatever: true
`

	reg := registry.New()
	reg.Register("org.example.cleanup.Native", func() recipe.Recipe {
		return &native{name: "org.example.cleanup.Native"}
	})

	l := config.NewYAMLLoader("catalog.yml", strings.NewReader(src)).WithRegistry(reg)
	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	recipes := l.Recipes()
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}

	d := recipe.Describe(recipes[0])
	if d.Name != "org.example.cleanup.Composite" || d.DisplayName != "Cleanup" {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
	if d.EstimatedEffort != 5*time.Minute {
		t.Fatalf("unexpected effort: %v", d.EstimatedEffort)
	}
	if d.Source != "catalog.yml" {
		t.Fatalf("unexpected source: %q", d.Source)
	}
	if len(d.Options) != 1 || d.Options[0].Name != "indentSize" || !d.Options[0].Required {
		t.Fatalf("unexpected options: %+v", d.Options)
	}

	profiles := l.Profiles()
	expProfiles := []config.Profile{{
		Name: "strict",
		Configure: map[string]any{
			"org.example.cleanup.Composite": map[string]any{
				"indentSize": uint64(2),
			},
		},
	}}
	if diff := cmp.Diff(expProfiles, profiles); diff != "" {
		t.Fatalf("unexpected profiles (-want +got):\n%s", diff)
	}

	if exp := []license.License{license.Apache2}; !cmp.Equal(exp, l.Licenses()) {
		t.Fatalf("unexpected licenses: %v", l.Licenses())
	}
}

func TestYAMLLoaderDefersUnknownReferences(t *testing.T) {
	src := `
type: recast.dev/v1/recipe
name: org.example.Composite
recipeList:
  - org.example.Native
  - org.example.Missing
`

	reg := registry.New()
	reg.Register("org.example.Native", func() recipe.Recipe {
		return &native{name: "org.example.Native"}
	})

	l := config.NewYAMLLoader("test.yml", strings.NewReader(src)).WithRegistry(reg)
	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	r := l.Recipes()[0]

	// Before initialization only the eagerly constructed child is bound.
	if got := r.Recipes(); len(got) != 1 || got[0].Name() != "org.example.Native" {
		t.Fatalf("unexpected children before initialization: %v", got)
	}

	dr, ok := r.(*recipe.DeclarativeRecipe)
	if !ok {
		t.Fatalf("expected declarative recipe, got %T", r)
	}
	dr.Initialize([]recipe.Recipe{&native{name: "org.example.Missing"}})

	if got := dr.Recipes(); len(got) != 2 || got[1].Name() != "org.example.Missing" {
		t.Fatalf("unexpected children after initialization: %v", got)
	}
	if err := dr.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestYAMLLoaderRejectsMalformedDocuments(t *testing.T) {
	cases := []struct {
		note string
		src  string
		doc  int
	}{
		{"missing name", "type: recast.dev/v1/recipe\n", 0},
		{"missing type", "name: org.example.X\n", 0},
		{"bad effort", "type: recast.dev/v1/recipe\nname: org.example.X\nestimatedEffortPerOccurrence: soon\n", 0},
		{"bad license", "type: recast.dev/v1/recipe\nname: org.example.X\nlicense: WTFPL\n", 0},
		{"second doc", "type: recast.dev/v1/profile\nname: ok\n---\ntype: recast.dev/v1/recipe\n", 1},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			l := config.NewYAMLLoader("bad.yml", strings.NewReader(tc.src))
			err := l.Load(context.Background())
			var perr *config.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected parse error, got %v", err)
			}
			if perr.Source != "bad.yml" || perr.Doc != tc.doc {
				t.Fatalf("unexpected error location: %+v", perr)
			}
		})
	}
}

func TestMergeProfiles(t *testing.T) {
	profiles := []config.Profile{
		{Name: "strict", Configure: map[string]any{
			"org.example.*": map[string]any{"indentSize": 4, "style": "tabs"},
		}},
		{Name: "lenient", Configure: map[string]any{
			"org.example.*": map[string]any{"indentSize": 8},
		}},
		{Name: "strict", Configure: map[string]any{
			"org.example.*": map[string]any{"style": "spaces"},
			"org.other.*":   map[string]any{"enabled": true},
		}},
	}

	merged, err := config.MergeProfiles(profiles, false)
	if err != nil {
		t.Fatal(err)
	}

	exp := []config.Profile{
		{Name: "strict", Configure: map[string]any{
			"org.example.*": map[string]any{"indentSize": 4, "style": "spaces"},
			"org.other.*":   map[string]any{"enabled": true},
		}},
		{Name: "lenient", Configure: map[string]any{
			"org.example.*": map[string]any{"indentSize": 8},
		}},
	}
	if diff := cmp.Diff(exp, merged); diff != "" {
		t.Fatalf("unexpected merge (-want +got):\n%s", diff)
	}
}

func TestMergeProfilesConflictError(t *testing.T) {
	profiles := []config.Profile{
		{Name: "strict", Configure: map[string]any{"a": map[string]any{"b": 1}}},
		{Name: "strict", Configure: map[string]any{"a": map[string]any{"b": 2}}},
	}

	if _, err := config.MergeProfiles(profiles, true); err == nil {
		t.Fatal("expected conflict error")
	} else if !strings.Contains(err.Error(), "strict/a/b") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScanPath(t *testing.T) {
	fsys := util.MapFS(map[string]string{
		"catalog/cleanup.yml":       "type: recast.dev/v1/recipe\nname: org.example.A\n",
		"catalog/profiles.yaml":     "type: recast.dev/v1/profile\nname: strict\n",
		"catalog/README.md":         "not a document",
		"catalog/vendor/skip.yml":   "type: recast.dev/v1/recipe\nname: org.vendor.B\n",
		"elsewhere/unreachable.yml": "type: recast.dev/v1/recipe\nname: org.else.C\n",
	})

	loaders, err := config.ScanPath(fsys, "catalog", nil, []string{"catalog/vendor/**"})
	if err != nil {
		t.Fatal(err)
	}

	var sources []string
	for _, l := range loaders {
		if err := l.Load(context.Background()); err != nil {
			t.Fatal(err)
		}
		sources = append(sources, l.Source())
	}

	exp := []string{"catalog/cleanup.yml", "catalog/profiles.yaml"}
	if diff := cmp.Diff(exp, sources); diff != "" {
		t.Fatalf("unexpected sources (-want +got):\n%s", diff)
	}

	if loaders[0].Recipes()[0].Name() != "org.example.A" {
		t.Fatal("expected recipe from cleanup.yml")
	}
	if loaders[1].Profiles()[0].Name != "strict" {
		t.Fatal("expected profile from profiles.yaml")
	}
}

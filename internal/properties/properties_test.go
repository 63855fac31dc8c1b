package properties

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPattern(t *testing.T) {
	cases := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"*", "anything", true},
		{"*", "", false},
		{"*", "two.segments", false},
		{"com.example", "com.example", true},
		{"com.example", "com.examples", false},
		{"Change*", "ChangeType", true},
		{"Change*", "Change", false},
	}

	for _, tc := range cases {
		if got := Pattern(tc.pattern).MatchString(tc.input); got != tc.match {
			t.Errorf("Pattern(%q).MatchString(%q) = %v, want %v", tc.pattern, tc.input, got, tc.match)
		}
	}
}

func TestResolveDottedKey(t *testing.T) {
	config := map[string]any{"a.b.c.prop": "x"}

	got := Resolve(config, "a.b.c")
	want := map[string]any{"prop": "x"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveNestedMaps(t *testing.T) {
	config := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"prop": "y",
				},
			},
		},
	}

	got := Resolve(config, "a.b.c")
	want := map[string]any{"prop": "y"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveDottedKeyWinsOverNested(t *testing.T) {
	config := map[string]any{
		"a.b.c.prop": "x",
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"prop": "y",
				},
			},
		},
	}

	got := Resolve(config, "a.b.c")
	want := map[string]any{"prop": "x"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveWildcardSegment(t *testing.T) {
	config := map[string]any{
		"a": map[string]any{
			"*": map[string]any{
				"c": map[string]any{
					"prop": 1,
				},
			},
		},
	}

	if got := Resolve(config, "a.xyz.c"); len(got) != 1 || got["prop"] != 1 {
		t.Errorf("expected wildcard to match one-or-more characters, got %v", got)
	}

	// `*` requires at least one character, so a.c must not match a.*.c.
	if got := Resolve(config, "a.c"); len(got) != 0 {
		t.Errorf("expected no match for a.c, got %v", got)
	}
}

func TestResolveMultiSegmentNestedKey(t *testing.T) {
	config := map[string]any{
		"org.example": map[string]any{
			"flag": true,
		},
	}

	got := Resolve(config, "org.example")
	want := map[string]any{"flag": true}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveDottedKeyPeeling(t *testing.T) {
	// The key extends past the target: the tail re-nests under the peeled
	// segments instead of being dropped.
	config := map[string]any{"a.b.c.sub.prop": "v"}

	got := Resolve(config, "a.b.c")
	want := map[string]any{"sub": map[string]any{"prop": "v"}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveEmptyTarget(t *testing.T) {
	config := map[string]any{"a.b.prop": "x"}

	if got := Resolve(config, ""); len(got) != 0 {
		t.Errorf("expected empty result for empty target, got %v", got)
	}
}

func TestResolveUnrelatedKeys(t *testing.T) {
	config := map[string]any{
		"x.y.prop": "x",
		"x": map[string]any{
			"prop": "nested",
		},
	}

	if got := Resolve(config, "a.b"); len(got) != 0 {
		t.Errorf("expected no properties for unrelated target, got %v", got)
	}
}

// Package category organizes recipe descriptors into a hierarchical namespace
// tree. Recipes are keyed by the opaque group they were loaded under, so a
// reloaded source replaces exactly its own entries.
package category

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/recast-dev/recast/internal/util"
)

const (
	// CoreName names the synthetic pseudo-category that holds a namespace's
	// own direct recipes when the namespace also has subcategories.
	CoreName = "core"

	// LowestPriority orders a category after every explicitly prioritized
	// one. Lower values take precedence.
	LowestPriority = math.MaxInt32
)

// Descriptor is the immutable description of one category (namespace node).
type Descriptor struct {
	DisplayName string   `json:"displayName" yaml:"displayName"`
	PackageName string   `json:"packageName" yaml:"packageName"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Root        bool     `json:"root,omitempty" yaml:"root,omitempty"`
	Priority    int      `json:"priority,omitempty" yaml:"priority,omitempty"`
	Synthetic   bool     `json:"-" yaml:"-"`
}

func (d Descriptor) Equal(other Descriptor) bool {
	return d.DisplayName == other.DisplayName &&
		d.PackageName == other.PackageName &&
		d.Description == other.Description &&
		d.Root == other.Root &&
		d.Priority == other.Priority &&
		d.Synthetic == other.Synthetic &&
		util.SetEqual(d.Tags, other.Tags, func(s string) string { return s }, func(a, b string) bool { return a == b })
}

// synthesize builds the placeholder descriptor for a namespace level no
// supplied descriptor covers: capitalized last segment, nothing else.
func synthesize(packageName string) Descriptor {
	return Descriptor{
		DisplayName: capitalize(lastSegment(packageName)),
		PackageName: packageName,
		Priority:    LowestPriority,
		Synthetic:   true,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lastSegment(pkg string) string {
	if i := strings.LastIndex(pkg, "."); i >= 0 {
		return pkg[i+1:]
	}
	return pkg
}

// NotFoundError reports navigation to a category that does not exist, naming
// the missing segment and the node it was missing from.
type NotFoundError struct {
	Segment string
	Package string // package of the node searched; empty for the root
}

func (e *NotFoundError) Error() string {
	if e.Package == "" {
		return fmt.Sprintf("category %q not found in the root category", e.Segment)
	}
	return fmt.Sprintf("category %q not found in %q", e.Segment, e.Package)
}

package recipe

import (
	"reflect"
	"slices"
	"strings"
	"time"
)

// OptionDescriptor describes one configurable option of a recipe.
type OptionDescriptor struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	DisplayName string   `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Example     string   `json:"example,omitempty" yaml:"example,omitempty"`
	Valid       []string `json:"valid,omitempty" yaml:"valid,omitempty"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Value       any      `json:"value,omitempty" yaml:"value,omitempty"`
}

func (o OptionDescriptor) Equal(other OptionDescriptor) bool {
	return o.Name == other.Name &&
		o.Type == other.Type &&
		o.Required == other.Required &&
		slices.Equal(o.Valid, other.Valid) &&
		reflect.DeepEqual(o.Value, other.Value)
}

// Descriptor is the immutable catalog entry for a recipe. Equality is
// identity-based: name plus options.
type Descriptor struct {
	Name            string             `json:"name" yaml:"name"`
	DisplayName     string             `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description     string             `json:"description,omitempty" yaml:"description,omitempty"`
	Tags            []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	EstimatedEffort time.Duration      `json:"estimatedEffortPerOccurrence,omitempty" yaml:"estimatedEffortPerOccurrence,omitempty"`
	Options         []OptionDescriptor `json:"options,omitempty" yaml:"options,omitempty"`
	Recipes         []Descriptor       `json:"recipeList,omitempty" yaml:"recipeList,omitempty"`
	Source          string             `json:"source,omitempty" yaml:"source,omitempty"`
}

func (d Descriptor) Equal(other Descriptor) bool {
	return d.Name == other.Name &&
		slices.EqualFunc(d.Options, other.Options, OptionDescriptor.Equal)
}

// Package returns the dotted namespace the recipe belongs to: its name with
// the last segment stripped. Recipes without a namespace live at the root.
func (d Descriptor) Package() string {
	if i := strings.LastIndex(d.Name, "."); i >= 0 {
		return d.Name[:i]
	}
	return ""
}

// Describer lets a recipe supply its own descriptor, e.g. declarative recipes
// whose options and composition came from the source document.
type Describer interface {
	Descriptor() Descriptor
}

// Describe computes the descriptor for a recipe, recursing through its
// composition list. Recipes that implement Describer are taken at their word.
func Describe(r Recipe) Descriptor {
	if d, ok := r.(Describer); ok {
		return d.Descriptor()
	}

	d := Descriptor{
		Name:        r.Name(),
		DisplayName: r.DisplayName(),
		Description: r.Description(),
		Tags:        slices.Clone(r.Tags()),
	}
	for _, child := range r.Recipes() {
		d.Recipes = append(d.Recipes, Describe(child))
	}
	return d
}

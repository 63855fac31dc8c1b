package environment

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/recast-dev/recast/internal/logging"
	"github.com/recast-dev/recast/internal/properties"
	"github.com/recast-dev/recast/pkg/category"
	"github.com/recast-dev/recast/pkg/config"
	"github.com/recast-dev/recast/pkg/license"
	"github.com/recast-dev/recast/pkg/recipe"
)

// Environment is the assembled catalog. It is immutable after Build; all
// queries are safe for concurrent use.
type Environment struct {
	pool       []recipe.Recipe
	byName     map[string]recipe.Recipe
	tree       *category.Tree[string]
	profiles   []config.Profile
	ledger     *license.Ledger
	configurer recipe.Configurer
	log        *logging.Logger
}

// Recipes returns every loaded recipe: natives in name order, then each
// source's recipes in document order.
func (e *Environment) Recipes() []recipe.Recipe {
	return e.pool
}

// Recipe looks up one recipe by its dotted name.
func (e *Environment) Recipe(name string) (recipe.Recipe, bool) {
	r, ok := e.byName[name]
	return r, ok
}

// CategoryTree returns the catalog's category tree, grouped by source.
func (e *Environment) CategoryTree() *category.Tree[string] {
	return e.tree
}

// Profiles returns the names of the merged configuration profiles.
func (e *Environment) Profiles() []string {
	names := make([]string, 0, len(e.profiles))
	for _, p := range e.profiles {
		names = append(names, p.Name)
	}
	return names
}

// Descriptors computes the descriptor of every recipe. When profileName is
// non-empty, option values default from the profile's configuration resolved
// against each recipe's name.
func (e *Environment) Descriptors(profileName string) ([]recipe.Descriptor, error) {
	var configure map[string]any
	if profileName != "" {
		p, ok := e.profile(profileName)
		if !ok {
			return nil, &UnknownProfileError{Name: profileName}
		}
		configure = p.Configure
	}

	out := make([]recipe.Descriptor, 0, len(e.pool))
	for _, r := range e.pool {
		d := recipe.Describe(r)
		if configure != nil {
			applyOptionValues(&d, properties.Resolve(configure, d.Name))
		}
		out = append(out, d)
	}
	return out, nil
}

// Activate composes the named recipes into a single composite. When
// profileName is non-empty, the profile's resolved configuration is applied to
// each activated recipe before composition.
func (e *Environment) Activate(profileName string, names ...string) (recipe.Recipe, error) {
	var configure map[string]any
	if profileName != "" {
		p, ok := e.profile(profileName)
		if !ok {
			return nil, &UnknownProfileError{Name: profileName}
		}
		configure = p.Configure
	}

	children := make([]recipe.Recipe, 0, len(names))
	for _, name := range names {
		r, ok := e.byName[name]
		if !ok {
			return nil, &UnknownRecipeError{Name: name}
		}
		if configure != nil {
			props := properties.Resolve(configure, name)
			if len(props) > 0 {
				if err := e.configurer.Configure(r, props); err != nil {
					return nil, fmt.Errorf("failed to configure %s: %w", name, err)
				}
				e.log.Debugf("configured %s with %d properties", name, len(props))
			}
		}
		children = append(children, r)
	}

	return recipe.NewComposite("recast.Activation", "Activated recipes", children...), nil
}

// Validate aggregates the validation failures of every loaded recipe.
func (e *Environment) Validate() error {
	var result *multierror.Error
	for _, r := range e.pool {
		if err := r.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Requirements returns the license requirements registered during Build, or
// nil when the build ran without a ledger.
func (e *Environment) Requirements() []license.Requirement {
	if e.ledger == nil {
		return nil
	}
	return e.ledger.Requirements()
}

// VerifyLicenses checks every required license against the ledger.
func (e *Environment) VerifyLicenses() error {
	if e.ledger == nil {
		return nil
	}
	return e.ledger.Verify()
}

func (e *Environment) profile(name string) (config.Profile, bool) {
	for _, p := range e.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return config.Profile{}, false
}

// applyOptionValues defaults descriptor option values from a resolved
// property map. Properties without a matching option are ignored here; they
// still apply at activation.
func applyOptionValues(d *recipe.Descriptor, props map[string]any) {
	for i := range d.Options {
		if v, ok := props[d.Options[i].Name]; ok {
			d.Options[i].Value = v
		}
	}
}

// UnknownRecipeError reports activation of a name absent from the catalog.
type UnknownRecipeError struct {
	Name string
}

func (e *UnknownRecipeError) Error() string {
	return fmt.Sprintf("recipe %s is not in the catalog", e.Name)
}

// UnknownProfileError reports a reference to a profile no source defined.
type UnknownProfileError struct {
	Name string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("profile %s is not defined by any source", e.Name)
}

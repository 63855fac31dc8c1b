// Package config loads declarative recipe and profile definitions from YAML
// sources and turns them into catalog inputs. Documents are discriminated by
// their top-level "type" field; unrecognized types are ignored so that newer
// sources remain loadable.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/recast-dev/recast/internal/logging"
	"github.com/recast-dev/recast/pkg/license"
	"github.com/recast-dev/recast/pkg/recipe"
	"github.com/recast-dev/recast/pkg/registry"
)

const (
	// RecipeKind discriminates a declarative recipe composition document.
	RecipeKind = "recast.dev/v1/recipe"
	// ProfileKind discriminates a configuration profile document.
	ProfileKind = "recast.dev/v1/profile"
)

// Profile is a named configuration tree. Keys are glob patterns over dotted
// recipe names; values are nested maps or scalar option values.
type Profile struct {
	Name      string
	Configure map[string]any
}

// Loader supplies the catalog inputs parsed from one declarative source.
//
// Load is called exactly once per loader and may run in parallel with other
// loaders' Load calls; the accessors are only read after every loader has
// completed.
type Loader interface {
	Load(ctx context.Context) error
	Source() string
	Recipes() []recipe.Recipe
	Profiles() []Profile
	Licenses() []license.License
}

// YAMLLoader parses one multi-document YAML source.
type YAMLLoader struct {
	source string
	open   func() (io.ReadCloser, error)
	reg    registry.Source
	log    *logging.Logger

	recipes  []recipe.Recipe
	profiles []Profile
	licenses []license.License
}

// NewYAMLLoader wraps a reader holding declarative YAML documents. The source
// string is the locator attached to everything parsed from it.
func NewYAMLLoader(source string, r io.Reader) *YAMLLoader {
	return &YAMLLoader{
		source: source,
		open:   func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		log:    logging.Discard(),
	}
}

// WithRegistry supplies the native recipe factories consulted for eager
// construction of composition references.
func (l *YAMLLoader) WithRegistry(src registry.Source) *YAMLLoader {
	l.reg = src
	return l
}

func (l *YAMLLoader) WithLogger(log *logging.Logger) *YAMLLoader {
	l.log = log
	return l
}

func (l *YAMLLoader) Source() string              { return l.source }
func (l *YAMLLoader) Recipes() []recipe.Recipe    { return l.recipes }
func (l *YAMLLoader) Profiles() []Profile         { return l.profiles }
func (l *YAMLLoader) Licenses() []license.License { return l.licenses }

type recipeDocument struct {
	Name                         string                    `yaml:"name"`
	DisplayName                  string                    `yaml:"displayName"`
	Description                  string                    `yaml:"description"`
	Tags                         []string                  `yaml:"tags"`
	License                      string                    `yaml:"license"`
	EstimatedEffortPerOccurrence string                    `yaml:"estimatedEffortPerOccurrence"`
	Options                      []recipe.OptionDescriptor `yaml:"options"`
	RecipeList                   []string                  `yaml:"recipeList"`
}

type profileDocument struct {
	Name      string         `yaml:"name"`
	Configure map[string]any `yaml:"configure"`
}

// Load parses every document in the source. Malformed documents are hard
// failures carrying the source locator and document index. Composition
// references are not resolved here: names without a native factory are
// deferred for the second pass.
func (l *YAMLLoader) Load(_ context.Context) error {
	rc, err := l.open()
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", l.source, err)
	}
	defer rc.Close()

	bs, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("failed to read source %s: %w", l.source, err)
	}

	var factories map[string]registry.Factory
	if l.reg != nil {
		factories = l.reg.Factories()
	}

	dec := yaml.NewDecoder(bytes.NewReader(bs))
	for i := 0; ; i++ {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &ParseError{Source: l.source, Doc: i, Err: err}
		}
		if doc == nil {
			continue
		}

		m, ok := doc.(map[string]any)
		if !ok {
			return &ParseError{Source: l.source, Doc: i, Err: errors.New("expected a mapping document")}
		}
		if err := Validate(m); err != nil {
			return &ParseError{Source: l.source, Doc: i, Err: err}
		}

		switch m["type"] {
		case RecipeKind:
			if err := l.loadRecipe(i, m, factories); err != nil {
				return err
			}
		case ProfileKind:
			if err := l.loadProfile(i, m); err != nil {
				return err
			}
		default:
			l.log.Debugf("%s: ignoring document %d of type %v", l.source, i, m["type"])
		}
	}
}

func (l *YAMLLoader) loadRecipe(i int, m map[string]any, factories map[string]registry.Factory) error {
	var doc recipeDocument
	if err := decodeDocument(m, &doc); err != nil {
		return &ParseError{Source: l.source, Doc: i, Err: err}
	}

	r := recipe.NewDeclarative(doc.Name).
		WithDisplayName(doc.DisplayName).
		WithDescription(doc.Description).
		WithTags(doc.Tags).
		WithOptions(doc.Options).
		WithSource(l.source)

	if doc.EstimatedEffortPerOccurrence != "" {
		effort, err := time.ParseDuration(doc.EstimatedEffortPerOccurrence)
		if err != nil {
			return &ParseError{Source: l.source, Doc: i, Err: fmt.Errorf("invalid estimated effort: %w", err)}
		}
		r.WithEstimatedEffort(effort)
	}

	lic := license.Apache2
	if doc.License != "" {
		parsed, ok := license.Parse(doc.License)
		if !ok {
			return &ParseError{Source: l.source, Doc: i, Err: fmt.Errorf("unknown license %q", doc.License)}
		}
		lic = parsed
	}
	if !containsLicense(l.licenses, lic) {
		l.licenses = append(l.licenses, lic)
	}

	for _, name := range doc.RecipeList {
		if f, ok := factories[name]; ok {
			r.Use(f())
		} else {
			r.Defer(name)
		}
	}

	l.recipes = append(l.recipes, r)
	return nil
}

func (l *YAMLLoader) loadProfile(i int, m map[string]any) error {
	var doc profileDocument
	if err := decodeDocument(m, &doc); err != nil {
		return &ParseError{Source: l.source, Doc: i, Err: err}
	}

	l.profiles = append(l.profiles, Profile{Name: doc.Name, Configure: doc.Configure})
	return nil
}

// decodeDocument round-trips an already-validated document through YAML to
// reuse the struct field mapping.
func decodeDocument(m map[string]any, out any) error {
	bs, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bs, out)
}

func containsLicense(haystack []license.License, needle license.License) bool {
	for _, l := range haystack {
		if l == needle {
			return true
		}
	}
	return false
}

// ParseError reports a malformed declarative document, attaching the source
// locator and the document's index within it.
type ParseError struct {
	Source string
	Doc    int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: document %d: %v", e.Source, e.Doc, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

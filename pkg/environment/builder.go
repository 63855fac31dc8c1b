// Package environment assembles the recipe catalog: it loads declarative
// sources in parallel, wires composition references against the pool of native
// and declarative recipes, builds the category tree, merges configuration
// profiles, and collects the license requirements of everything loaded.
package environment

import (
	"context"
	"io"
	"io/fs"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	internalfs "github.com/recast-dev/recast/internal/fs"
	"github.com/recast-dev/recast/internal/logging"
	"github.com/recast-dev/recast/internal/progress"
	"github.com/recast-dev/recast/pkg/category"
	"github.com/recast-dev/recast/pkg/config"
	"github.com/recast-dev/recast/pkg/license"
	"github.com/recast-dev/recast/pkg/recipe"
	"github.com/recast-dev/recast/pkg/registry"
)

// NativeGroup is the category tree group holding recipes constructed from
// registered factories rather than loaded from a declarative source.
const NativeGroup = "native"

type scan struct {
	fsys     fs.FS
	dir      string
	included []string
	excluded []string
}

// Builder accumulates recipe sources and build options.
type Builder struct {
	loaders        []config.Loader
	scans          []scan
	reg            *registry.Registry
	log            *logging.Logger
	progressW      io.Writer
	ledger         *license.Ledger
	configurer     recipe.Configurer
	strictProfiles bool
}

func NewBuilder() *Builder {
	return &Builder{
		log:        logging.Discard(),
		configurer: recipe.MapConfigurer{},
	}
}

// Load adds explicit resource loaders.
func (b *Builder) Load(loaders ...config.Loader) *Builder {
	b.loaders = append(b.loaders, loaders...)
	return b
}

// Scan queues a search-path walk for declarative sources. The walk happens at
// Build so that scan failures surface alongside load failures.
func (b *Builder) Scan(fsys fs.FS, dir string, included, excluded []string) *Builder {
	b.scans = append(b.scans, scan{fsys: fsys, dir: dir, included: included, excluded: excluded})
	return b
}

// WithRegistry supplies the native recipe factories. They seed the resolution
// pool and are consulted for eager construction while parsing.
func (b *Builder) WithRegistry(reg *registry.Registry) *Builder {
	b.reg = reg
	return b
}

func (b *Builder) WithLogger(log *logging.Logger) *Builder {
	b.log = log
	return b
}

// WithProgress renders a progress bar to w while sources load.
func (b *Builder) WithProgress(w io.Writer) *Builder {
	b.progressW = w
	return b
}

// WithLedger records the licenses required by loaded sources. Verification
// stays with the caller; Build only registers requirements.
func (b *Builder) WithLedger(l *license.Ledger) *Builder {
	b.ledger = l
	return b
}

// WithStrictProfiles makes conflicting scalar values in same-named profiles a
// build failure instead of last-source-wins.
func (b *Builder) WithStrictProfiles() *Builder {
	b.strictProfiles = true
	return b
}

// Build runs the two-pass load. Pass 1 parses every source in parallel and
// ends at a hard barrier; pass 2 initializes every declarative recipe against
// the full pool. Validation failures of individual recipes do not fail the
// build; they surface through Environment.Validate.
func (b *Builder) Build(ctx context.Context) (*Environment, error) {
	loaders := slices.Clone(b.loaders)
	for _, s := range b.scans {
		scanned, err := config.ScanPath(s.fsys, s.dir, s.included, s.excluded)
		if err != nil {
			return nil, err
		}
		if len(scanned) == 0 {
			b.warnEmptyScan(s)
		}
		for _, l := range scanned {
			loaders = append(loaders, l.WithRegistry(b.reg).WithLogger(b.log))
		}
	}

	bar := progress.New(b.progressW, len(loaders), "loading recipe sources")
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range loaders {
		g.Go(func() error {
			defer bar.Add(1)
			if err := l.Load(gctx); err != nil {
				return err
			}
			b.log.Debugf("loaded %s: %d recipes, %d profiles", l.Source(), len(l.Recipes()), len(l.Profiles()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	bar.Finish()

	var natives []recipe.Recipe
	if b.reg != nil {
		factories := b.reg.Factories()
		for _, name := range slices.Sorted(maps.Keys(factories)) {
			natives = append(natives, factories[name]())
		}
	}

	pool := slices.Clone(natives)
	for _, l := range loaders {
		pool = append(pool, l.Recipes()...)
	}

	for _, r := range pool {
		if dr, ok := r.(*recipe.DeclarativeRecipe); ok {
			dr.Initialize(pool)
		}
	}

	tree := category.Build[string]()
	tree.PutAll(NativeGroup, describeAll(natives), nil)
	for _, l := range loaders {
		tree.PutAll(l.Source(), describeAll(l.Recipes()), nil)
	}

	var allProfiles []config.Profile
	for _, l := range loaders {
		allProfiles = append(allProfiles, l.Profiles()...)
	}
	profiles, err := config.MergeProfiles(allProfiles, b.strictProfiles)
	if err != nil {
		return nil, err
	}

	if b.ledger != nil {
		for _, l := range loaders {
			for _, lic := range l.Licenses() {
				b.ledger.Require(lic, l.Source())
			}
		}
	}

	byName := make(map[string]recipe.Recipe, len(pool))
	for _, r := range pool {
		if _, ok := byName[r.Name()]; !ok {
			byName[r.Name()] = r
		}
	}

	return &Environment{
		pool:       pool,
		byName:     byName,
		tree:       tree,
		profiles:   profiles,
		ledger:     b.ledger,
		configurer: b.configurer,
		log:        b.log,
	}, nil
}

// warnEmptyScan distinguishes a search path with no files at all from one
// whose files were just filtered out or not recipe documents.
func (b *Builder) warnEmptyScan(s scan) {
	sub, err := fs.Sub(s.fsys, s.dir)
	if err != nil {
		return
	}
	if ok, err := internalfs.FSContainsFiles(sub); err == nil && !ok {
		b.log.Warnf("search path %s contains no files", s.dir)
		return
	}
	b.log.Debugf("search path %s has no recipe documents", s.dir)
}

func describeAll(recipes []recipe.Recipe) []recipe.Descriptor {
	out := make([]recipe.Descriptor, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, recipe.Describe(r))
	}
	return out
}

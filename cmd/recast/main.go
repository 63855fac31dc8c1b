// Command recast inspects and verifies a declarative recipe catalog: it scans
// search paths for recipe and profile documents, prints the assembled catalog,
// and manages license acceptance.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"

	"github.com/recast-dev/recast/internal/logging"
	"github.com/recast-dev/recast/pkg/environment"
	"github.com/recast-dev/recast/pkg/license"
	"github.com/recast-dev/recast/pkg/registry"
)

var logLevelIds = map[logging.Level][]string{
	logging.Debug: {"debug"},
	logging.Info:  {"info"},
	logging.Warn:  {"warn", "warning"},
	logging.Error: {"error"},
}

type options struct {
	logLevel    logging.Level
	searchPaths []string
	included    []string
	excluded    []string
	profile     string
	recastDir   string
}

func main() {
	opts := options{logLevel: logging.Info}

	root := &cobra.Command{
		Use:          "recast",
		Short:        "Inspect and verify a declarative recipe catalog",
		SilenceUsage: true,
	}

	addCatalogFlags(root.PersistentFlags(), &opts)

	root.AddCommand(
		recipesCommand(&opts),
		describeCommand(&opts),
		licensesCommand(&opts),
		schemaCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCatalogFlags(fs *pflag.FlagSet, opts *options) {
	fs.Var(
		enumflag.New(&opts.logLevel, "level", logLevelIds, enumflag.EnumCaseInsensitive),
		"log-level",
		"log level: debug, info, warn, error")
	fs.StringSliceVar(&opts.searchPaths, "search-path", []string{"."}, "directories scanned for recipe documents")
	fs.StringSliceVar(&opts.included, "include", nil, "glob patterns of files to include")
	fs.StringSliceVar(&opts.excluded, "exclude", nil, "glob patterns of files to exclude")
	fs.StringVar(&opts.profile, "profile", "", "configuration profile applied to option defaults")
	fs.StringVar(&opts.recastDir, "recast-dir", defaultRecastDir(), "directory holding the license ledger and key")
}

func defaultRecastDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recast"
	}
	return filepath.Join(home, ".recast")
}

// buildEnvironment assembles the catalog from the configured search paths.
// The accept list only matters for `licenses verify`; everywhere else it is
// empty and restricted licenses simply stay unaccepted until verified.
func buildEnvironment(cmd *cobra.Command, opts *options, acceptList []string) (*environment.Environment, error) {
	log := logging.NewLogger(logging.Config{Level: opts.logLevel, Output: cmd.ErrOrStderr()})

	ledger, err := license.Open(opts.recastDir, license.WithAcceptList(acceptList))
	if err != nil {
		return nil, err
	}

	b := environment.NewBuilder().
		WithRegistry(registry.Default).
		WithLogger(log).
		WithLedger(ledger).
		WithProgress(cmd.ErrOrStderr())

	for _, dir := range opts.searchPaths {
		b.Scan(os.DirFS(dir), ".", opts.included, opts.excluded)
	}

	env, err := b.Build(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return env, nil
}

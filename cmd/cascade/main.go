package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outfieldlabs/cascade/internal/config"
	"github.com/outfieldlabs/cascade/internal/element"
	"github.com/outfieldlabs/cascade/internal/overrides"
	"github.com/outfieldlabs/cascade/internal/render"
	"github.com/outfieldlabs/cascade/internal/repository"
	"github.com/outfieldlabs/cascade/internal/resolve"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version string

// Exit codes per spec.
const (
	exitSuccess      = 0
	exitResolveError = 1
	exitUsageError   = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitUsageError)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		overrideArg []string
		skipMissing bool
		format      string
		searchPath  []string
	)

	cmd := &cobra.Command{
		Use:   "cascade --config <path> [flags]",
		Short: "Resolve a primary config plus overrides into an ordered defaults list",
		Long: `cascade resolves a primary configuration plus a list of command-line
overrides into a deterministic, ordered list of config references.

Examples:
  cascade --config app.yaml
  cascade --config app.yaml --set db=postgres --set +logging=verbose
  cascade --config app.yaml --search-path ./conf --search-path ./conf/defaults
  cascade --config app.yaml --format json`,
		Args: cobra.NoArgs,
		// Silence default Cobra error/usage printing so we control exit codes.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.Config{}
			if cmd.Flags().Changed("format") {
				cli.Format = format
			}
			if cmd.Flags().Changed("search-path") {
				cli.SearchPath = searchPath
			}
			if cmd.Flags().Changed("skip-missing") {
				cli.SkipMissing = &skipMissing
			}
			return run(cmd, runOpts{
				config:      configPath,
				overrideArg: overrideArg,
				cli:         cli,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to the primary config file (required)")
	flags.StringArrayVarP(&overrideArg, "set", "s", nil, "override in the form group=option, +group=option, or ~group (repeatable)")
	flags.BoolVar(&skipMissing, "skip-missing", false, "treat an unspecified mandatory ('???') choice as skip-load instead of an error")
	flags.StringVar(&format, "format", "text", "output format (text|json)")
	flags.StringArrayVar(&searchPath, "search-path", nil, "root directory to search for config groups (repeatable, first match wins); falls back to the .cascade.yml / ~/.config/cascade/config.yml search_path, then the config file's own directory")

	return cmd
}

type runOpts struct {
	config      string
	overrideArg []string
	cli         config.Config
}

func run(cmd *cobra.Command, opts runOpts) error {
	if opts.config == "" {
		fmt.Fprintln(os.Stderr, "Error: --config is required")
		os.Exit(exitUsageError)
	}

	repoRoot := filepath.Dir(opts.config)
	cfg, err := config.Load(repoRoot, opts.cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		os.Exit(exitUsageError)
	}

	if cfg.Format != "text" && cfg.Format != "json" {
		fmt.Fprintf(os.Stderr, "Error: --format must be 'text' or 'json', got %q\n", cfg.Format)
		os.Exit(exitUsageError)
	}
	skipMissing := cfg.SkipMissing != nil && *cfg.SkipMissing

	roots := cfg.SearchPath
	if len(roots) == 0 {
		roots = []string{repoRoot}
	}
	repo := repository.NewFSRepository(roots...)

	primaryName := strings.TrimSuffix(filepath.Base(opts.config), filepath.Ext(opts.config))
	primary := element.DefaultElement{ConfigName: primaryName, Primary: true}

	records, err := overrides.GrammarParser{}.Parse(opts.overrideArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsageError)
	}
	overrideElems, err := resolve.ConvertOverridesToDefaults(records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsageError)
	}

	seed := append([]element.DefaultElement{primary}, overrideElems...)
	list, err := resolve.ExpandDefaultsList(seed, repo, skipMissing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitResolveError)
	}

	if cfg.Format == "json" {
		if err := render.RenderJSON(os.Stdout, list); err != nil {
			fmt.Fprintf(os.Stderr, "Error: rendering JSON: %v\n", err)
			os.Exit(exitResolveError)
		}
		return nil
	}
	render.RenderText(os.Stdout, list)
	return nil
}

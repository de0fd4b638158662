// Package cli implements the callscope command-line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/callscope/pkg/buildinfo"
	"github.com/matzehuels/callscope/pkg/config"
	apperrors "github.com/matzehuels/callscope/pkg/errors"
	"github.com/matzehuels/callscope/pkg/explorer"
	graphio "github.com/matzehuels/callscope/pkg/io"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = config.AppName

	// defaultTop is the default number of chains listed by inspect.
	defaultTop = 5
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is bound to the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Callscope explores call graphs",
		Long: `Callscope is a CLI tool for exploring large call graphs: collapse and expand
callers and callees, isolate one function's neighborhood, and lay out what
remains grouped by package.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/callscope/config.toml)")

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

// loadConfig reads the --config file, or the default config file when present.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "show_isolated", cfg.View.ShowIsolated)
	return cfg, nil
}

// openExplorer imports the graph file at path into a new Explorer.
func (c *CLI) openExplorer(path string, cfg config.Config) (*explorer.Explorer, error) {
	prog := newProgress(c.Logger)
	doc, err := graphio.Import(path)
	if err != nil {
		return nil, err
	}

	x := explorer.New(explorer.WithLogger(c.Logger), explorer.WithConfig(cfg))
	nodes, edges := doc.Graph()
	if err := x.Load(nodes, edges); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	prog.done(fmt.Sprintf("Loaded %s", path))
	return x, nil
}

// applyOps parses and applies --op operations in order.
func applyOps(x *explorer.Explorer, raw []string) error {
	ops, err := explorer.ParseOperations(raw)
	if err != nil {
		return err
	}
	for _, op := range ops {
		x.Apply(op)
	}
	return nil
}

// viewFlags are shared by the view and render commands.
type viewFlags struct {
	ops          []string
	output       string
	showIsolated bool
	depth        int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.ops, "op", nil, "operation to apply, repeatable (e.g. collapse-all, expand:main.main:outgoing)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&f.showIsolated, "show-isolated", false, "show nodes without any calls")
	cmd.Flags().IntVar(&f.depth, "depth", 0, "maximum call depth below entry points (0 for unlimited)")
}

// prepare loads config and graph, applies the isolated-node policy and the
// operations, and returns the resulting explorer.
func (c *CLI) prepare(cmd *cobra.Command, path string, f *viewFlags) (*explorer.Explorer, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("show-isolated") {
		cfg.View.ShowIsolated = f.showIsolated
	}
	if cmd.Flags().Changed("depth") {
		if f.depth < 0 {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "--depth must not be negative, got %d", f.depth)
		}
		cfg.View.MaxDepth = f.depth
	}

	x, err := c.openExplorer(path, cfg)
	if err != nil {
		return nil, err
	}
	if err := applyOps(x, f.ops); err != nil {
		return nil, err
	}
	return x, nil
}

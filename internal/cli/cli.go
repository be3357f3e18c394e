// Package cli implements the gridview command-line interface.
//
// Every command loads a pipeline configuration (TOML, YAML or JSON), or a
// built-in demo grid when none is given, and opens it through a
// [pipeline.Runner]:
//   - layout: run the configured steps and print the snapshot
//   - view: browse the grid interactively in the terminal
//   - serve: expose a live grid over HTTP for inspection
//   - tree: export the row hierarchy and realized window with graphviz
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridview/pkg/buildinfo"
	"github.com/matzehuels/gridview/pkg/cache"
	"github.com/matzehuels/gridview/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "gridview"

	// defaultAddr is the listen address of the HTTP inspector.
	defaultAddr = "127.0.0.1:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// demoConfig is the grid shown when no config file is given: a frozen
// title, a header per container and a two-column row over generated rows.
const demoConfig = `
[template]
columns = ["6", "*"]
rows = ["1", "1", "1"]
frozen = { top = 1 }

[[template.bindings]]
name = "title"
class = "scalar"
range = [0, 0, 2, 1]
text = "gridview demo"

[[template.bindings]]
name = "index"
class = "block"
range = [0, 1, 1, 2]
text = "#"

[[template.bindings]]
name = "name"
class = "row"
range = [1, 1]
field = "name"

[[template.bindings]]
name = "value"
class = "row"
range = [1, 2]
field = "index"

[source]
kind = "memory"
rows = 1000
`

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
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
		Use:          appName,
		Short:        "Gridview lays out virtualized data grids",
		Long:         `Gridview lays out large row collections in a template grid, realizing only the rows in view. It runs layouts headlessly, browses them in the terminal and serves them for inspection.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Pages of remote sources
// are cached in memory for the life of the process.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	var pages cache.Cache = cache.NewMemoryCache()
	if noCache {
		pages = cache.NewNullCache()
	}
	return pipeline.NewRunner(pages, nil, c.Logger)
}

// =============================================================================
// Config Flags
// =============================================================================

// configFlags are the config overrides shared by every command.
type configFlags struct {
	width   float64
	height  float64
	rows    int
	noCache bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width in cells (default: config or terminal)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "viewport height in cells (default: config or terminal)")
	cmd.Flags().IntVar(&f.rows, "rows", 0, "number of generated rows (memory source)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the page cache of remote sources")
}

// loadConfig reads the config named by args, or the demo config, and
// applies the flag overrides.
func (c *CLI) loadConfig(ctx context.Context, args []string, f configFlags) (*pipeline.Config, error) {
	var (
		cfg *pipeline.Config
		err error
	)
	if len(args) > 0 {
		cfg, err = pipeline.LoadConfig(args[0])
	} else {
		loggerFromContext(ctx).Debug("no config given, using the demo grid")
		cfg, err = pipeline.ParseConfig([]byte(demoConfig), "toml")
	}
	if err != nil {
		return nil, err
	}
	if f.width > 0 {
		cfg.Viewport.Width = f.width
	}
	if f.height > 0 {
		cfg.Viewport.Height = f.height
	}
	if f.rows > 0 {
		cfg.Source.Rows = f.rows
	}
	cfg.Logger = c.Logger
	return cfg, nil
}

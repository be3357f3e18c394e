package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/pipeline"
	"github.com/matzehuels/gridview/pkg/snapshot"
)

// Output formats of the layout command.
const (
	formatJSON  = "json"
	formatTable = "table"
)

// layoutCommand creates the layout command: run a config headlessly and
// print the resulting snapshot.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags      configFlags
		output     string
		format     string
		placements bool
	)

	cmd := &cobra.Command{
		Use:   "layout [config]",
		Short: "Lay out a grid and print its snapshot",
		Long: `Lay out a grid and print its snapshot.

The layout command opens the grid described by a config file (TOML, YAML or
JSON, chosen by extension), runs its steps and prints what the engine
realized: the logical position, measured tracks, the realized containers
and, with --placements, where every element is drawn.

Without a config the built-in demo grid is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			if placements {
				cfg.Placements = true
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), cfg, flags.noCache, output, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to a file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, table")
	cmd.Flags().BoolVar(&placements, "placements", false, "include element placements")

	return cmd
}

// runLayout executes cfg and writes the snapshot in the requested format.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, cfg *pipeline.Config, noCache bool, output, format string) error {
	if format != formatJSON && format != formatTable {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json or table)", format)
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger, "layout")
	spin := newSpinnerWithContext(ctx, os.Stderr, "laying out grid")
	spin.Start()
	result, err := c.newRunner(noCache).Execute(ctx, cfg)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Laid out rows", "rows", result.Stats.Rows, "realized", result.Stats.Realized)

	if output != "" {
		if err := errors.ValidatePath(output); err != nil {
			return err
		}
		if format == formatTable {
			if err := os.WriteFile(output, []byte(renderSummary(result.Snapshot)), 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
			}
		} else if err := snapshot.WriteFile(output, result.Snapshot); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
		}
		printSuccess(w, "Snapshot written")
		printFile(w, output)
		printStats(w, result.Stats)
		return nil
	}

	if format == formatTable {
		fmt.Fprint(w, renderSummary(result.Snapshot))
		printStats(w, result.Stats)
		return nil
	}
	return snapshot.Write(w, result.Snapshot)
}

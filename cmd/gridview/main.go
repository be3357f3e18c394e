// Command gridview lays out, browses and serves virtualized data grids.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridview/internal/cli"
	"github.com/matzehuels/gridview/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	os.Exit(exitCode(err))
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Flags are parsed before the pre-run, so the level is settled here.
	inner := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if inner != nil {
			inner(cmd, args)
		}
	}

	return root.ExecuteContext(ctx)
}

// exitCode reports err on stderr and maps it to a process status:
// 130 after an interrupt, 2 for bad input or configuration, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if stderrors.Is(err, context.Canceled) {
		return 130
	}
	fmt.Fprintln(os.Stderr, "gridview:", errors.UserMessage(err))
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidTemplate:
		return 2
	default:
		return 1
	}
}

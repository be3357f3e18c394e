package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/pipeline"
	"github.com/matzehuels/gridview/pkg/render/dot"
)

// treeOptions holds the tree command flags.
type treeOptions struct {
	output      string
	field       string
	maxRows     int
	leftToRight bool
	scale       float64
}

// treeCommand creates the tree command: export the row hierarchy and the
// realized window as a diagram.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		flags configFlags
		opts  treeOptions
	)

	cmd := &cobra.Command{
		Use:   "tree [config]",
		Short: "Export the row hierarchy as a Graphviz diagram",
		Long: `Export the row hierarchy as a Graphviz diagram.

Rows are drawn in presentation order with an edge from every child to its
parent. Realized containers are drawn as clusters; isolated ones are dashed.
The format follows the output extension: .dot, .svg, .pdf or .png. PDF and
PNG require rsvg-convert. Without -o the DOT source is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), cfg, flags.noCache, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.dot, .svg, .pdf, .png)")
	cmd.Flags().StringVar(&opts.field, "field", pipeline.DefaultField, "row value shown in each node (empty shows the row ID)")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 200, "maximum rows drawn (0 draws all loaded rows)")
	cmd.Flags().BoolVar(&opts.leftToRight, "lr", false, "lay the diagram out left to right")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")

	return cmd
}

// runTree opens cfg, runs its steps and writes the diagram.
func (c *CLI) runTree(ctx context.Context, w io.Writer, cfg *pipeline.Config, noCache bool, opts treeOptions) error {
	prog := newProgress(loggerFromContext(ctx), "tree")
	sess, err := c.newRunner(noCache).Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.Run(ctx, cfg.Steps); err != nil {
		return err
	}

	src := dot.ToDOT(sess.Engine, dot.Options{
		Field:       opts.field,
		MaxRows:     opts.maxRows,
		LeftToRight: opts.leftToRight,
	})
	if opts.output == "" {
		_, err := io.WriteString(w, src)
		return err
	}

	data, err := renderDiagram(src, opts.output, opts.scale)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}
	n := sess.Rows.Len()
	if opts.maxRows > 0 {
		n = min(n, opts.maxRows)
	}
	prog.done("Exported rows", "rows", n, "output", opts.output)
	printSuccess(w, "Diagram written")
	printFile(w, opts.output)
	return nil
}

// renderDiagram renders DOT source in the format named by the extension
// of path.
func renderDiagram(src, path string, scale float64) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		return []byte(src), nil
	case ".svg":
		return dot.RenderSVG(src)
	case ".pdf":
		return dot.RenderPDF(src)
	case ".png":
		return dot.RenderPNG(src, scale)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported diagram format %q (want .dot, .svg, .pdf or .png)", ext)
	}
}

package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridview/pkg/layout"
	"github.com/matzehuels/gridview/pkg/realize"
	"github.com/matzehuels/gridview/pkg/render"
	"github.com/matzehuels/gridview/pkg/rows"
)

// Options configures diagram generation.
type Options struct {
	// Field is the row value shown under the row ordinal. Empty shows the
	// row ID.
	Field string
	// MaxRows caps the rows drawn. 0 draws every loaded row.
	MaxRows int
	// LeftToRight lays the sequence out horizontally.
	LeftToRight bool
}

// ToDOT converts the engine's rows and realized containers to Graphviz
// DOT source.
func ToDOT(e *layout.Engine, opts Options) string {
	rm := e.Rows()
	real := e.Realization()

	n := rm.Len()
	if opts.MaxRows > 0 {
		n = min(n, opts.MaxRows)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	drawn := make(map[int]bool)
	for _, v := range real.Window() {
		writeCluster(&buf, v.Ordinal, v.Rows, false, opts, drawn, n)
	}
	for _, v := range real.Isolated() {
		writeCluster(&buf, v.Ordinal, v.Rows, true, opts, drawn, n)
	}
	for i := 0; i < n; i++ {
		if drawn[i] {
			continue
		}
		if p := rm.Loaded(i); p != nil {
			fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(i), strings.Join(attrs(p, opts), ", "))
		}
	}

	buf.WriteString("\n")
	var parents []int // ordinal of the last row seen at each depth
	for i := 0; i < n; i++ {
		p := rm.Loaded(i)
		if p == nil {
			parents = parents[:0]
			continue
		}
		if p.Depth > 0 && p.Depth <= len(parents) {
			fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(parents[p.Depth-1]), nodeID(i))
		}
		parents = append(parents[:min(p.Depth, len(parents))], i)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, k int, rvs []realize.RowView, isolated bool, opts Options, drawn map[int]bool, n int) {
	style := "rounded"
	if isolated {
		style = "rounded,dashed"
	}
	fmt.Fprintf(buf, "  subgraph cluster_%d {\n", k)
	fmt.Fprintf(buf, "    label=%q;\n    style=%q;\n    color=steelblue;\n", fmt.Sprintf("container %d", k), style)
	for _, rv := range rvs {
		p := rv.Presenter
		if p.Ordinal >= n {
			continue
		}
		drawn[p.Ordinal] = true
		fmt.Fprintf(buf, "    %s [%s];\n", nodeID(p.Ordinal), strings.Join(attrs(p, opts), ", "))
	}
	buf.WriteString("  }\n")
}

func nodeID(ordinal int) string { return "r" + strconv.Itoa(ordinal) }

func attrs(p *rows.Presenter, opts Options) []string {
	text := p.ID
	if opts.Field != "" {
		if v := p.Value(opts.Field); v != nil {
			text = fmt.Sprint(v)
		}
	}
	out := []string{fmt.Sprintf("label=%q", fmt.Sprintf("%d\n%s", p.Ordinal, text))}
	switch {
	case p.IsEditing():
		out = append(out, "fillcolor=lightyellow")
	case p.IsSelected():
		out = append(out, "fillcolor=lightblue")
	}
	if p.IsCurrent() {
		out = append(out, "penwidth=3")
	}
	return out
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one sized
// to the view box.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT source to PDF via SVG. Requires librsvg.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source to PNG via SVG at the given scale.
// Requires librsvg.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/layout"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/template"
)

func treeEngine(t *testing.T) *layout.Engine {
	t.Helper()
	ctx := context.Background()
	src := rows.NewMemorySource(
		map[string]any{"name": "alpha"},
		map[string]any{"name": "beta"},
	)
	alpha, _ := src.Row(ctx, 0)
	child, err := src.AddChild(alpha.ID, map[string]any{"name": "alpha.1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.AddChild(child.ID, map[string]any{"name": "alpha.1.a"}); err != nil {
		t.Fatal(err)
	}

	rm, err := rows.NewManager(src, rows.WithRecursive(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := rm.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := rm.Expand(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := rm.Expand(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := rm.SetCurrent(ctx, 1); err != nil {
		t.Fatal(err)
	}

	tmpl, err := template.NewBuilder().
		AddColumn(grid.Fixed(100)).
		AddRow(grid.Auto()).
		AddBinding(grid.Cell(0, 0), &template.Row{ID: "name", New: func() template.Element { return new(int) }}).
		SetRecursive(true).
		Seal()
	if err != nil {
		t.Fatal(err)
	}
	e, err := layout.New(tmpl, rm, layout.WithMeasurer(layout.MeasurerFunc(
		func(template.Element, grid.Size) grid.Size { return grid.Size{Height: 10} },
	)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	if _, err := e.Measure(ctx, grid.Size{Width: 100, Height: 20}); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestToDOT(t *testing.T) {
	src := ToDOT(treeEngine(t), Options{Field: "name"})

	for _, want := range []string{
		"subgraph cluster_0",
		"subgraph cluster_1",
		`label="container 0"`,
		"r0 -> r1;",
		"r1 -> r2;",
		`"2\nalpha.1.a"`,
		"penwidth=3",
		"r3 [",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %q:\n%s", want, src)
		}
	}
	if strings.Contains(src, "-> r3") {
		t.Error("top-level row drawn with a parent edge")
	}
	if strings.Contains(src, "subgraph cluster_3") {
		t.Error("row 3 is outside the viewport but drawn as realized")
	}
}

func TestToDOTMaxRows(t *testing.T) {
	src := ToDOT(treeEngine(t), Options{MaxRows: 2, LeftToRight: true})
	if !strings.Contains(src, "rankdir=LR") {
		t.Error("LeftToRight not applied")
	}
	if strings.Contains(src, "r2 ") || strings.Contains(src, "r3 ") {
		t.Errorf("rows past MaxRows drawn:\n%s", src)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(treeEngine(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output is not SVG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if plain := []byte("<svg></svg>"); !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

package snapshot

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/layout"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/template"
)

type label struct{ text string }

func newEngine(t *testing.T, n int) *layout.Engine {
	t.Helper()
	tmpl, err := template.NewBuilder().
		AddColumn(grid.Fixed(80)).
		AddRows(grid.Fixed(10), grid.Auto()).
		AddBinding(grid.Cell(0, 0), &template.Scalar{ID: "header", New: func() template.Element { return &label{} }}).
		AddBinding(grid.Cell(0, 1), &template.Row{
			ID:  "name",
			New: func() template.Element { return &label{} },
			OnSetup: func(el template.Element, p *rows.Presenter) {
				el.(*label).text = p.ID
			},
		}).
		SetFrozen(0, 1, 0, 0).
		Seal()
	if err != nil {
		t.Fatal(err)
	}

	values := make([]map[string]any, n)
	rm, err := rows.NewManager(rows.NewMemorySource(values...))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := rm.Load(ctx); err != nil {
		t.Fatal(err)
	}
	e, err := layout.New(tmpl, rm, layout.WithMeasurer(layout.MeasurerFunc(
		func(template.Element, grid.Size) grid.Size { return grid.Size{Width: 80, Height: 10} },
	)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	if _, err := e.Measure(ctx, grid.Size{Width: 80, Height: 40}); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCapture(t *testing.T) {
	e := newEngine(t, 20)
	if err := e.Rows().SetCurrent(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := Capture(e, Options{Placements: true})

	if s.Rows != 20 || s.Containers != 20 {
		t.Errorf("rows/containers = %d/%d, want 20/20", s.Rows, s.Containers)
	}
	if s.Position.Region != "head" {
		t.Errorf("position region = %s, want head", s.Position.Region)
	}
	if got := s.Extent.Height; got != 210 {
		t.Errorf("extent = %g, want 210", got)
	}
	var ordinals []int
	for _, c := range s.Window {
		ordinals = append(ordinals, c.Ordinal)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, ordinals); diff != "" {
		t.Errorf("window ordinals (-want +got):\n%s", diff)
	}
	if !s.Window[1].Rows[0].Current {
		t.Error("row 1 not marked current")
	}
	if s.Current.Container != 1 || s.Current.Placement != "within" {
		t.Errorf("current = %+v", s.Current)
	}

	var header *Placement
	for i := range s.Placements {
		if s.Placements[i].Binding == "header" {
			header = &s.Placements[i]
		}
	}
	if header == nil || header.Zone != "frozen-start" {
		t.Errorf("header placement = %+v, want frozen", header)
	}
	for _, p := range s.Placements {
		if !p.Visible() {
			t.Errorf("hidden placement %+v captured", p)
		}
	}
}

func TestWriteRead(t *testing.T) {
	s := Capture(newEngine(t, 5), Options{})

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("Read(Write(s)) (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := WriteFile(path, s); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); err != nil {
		t.Errorf("ReadFile() error = %v", err)
	}
	if _, err := Read(bytes.NewBufferString("{")); err == nil {
		t.Error("Read() should fail on truncated input")
	}
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/layout"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/template"
)

// Cell is the element every configured binding creates: one line of text
// in a terminal grid, one cell per column.
type Cell struct {
	Binding string
	Class   template.Class
	Text    string

	// Row state, set for row bindings only.
	Ordinal  int
	Depth    int
	Current  bool
	Selected bool
	Editing  bool
	Expanded bool
}

// Line returns the text indented by the row depth.
func (c *Cell) Line() string {
	return strings.Repeat("  ", c.Depth) + c.Text
}

// Width returns the display width of Line in cells.
func (c *Cell) Width() int { return runewidth.StringWidth(c.Line()) }

func (c *Cell) bindRow(p *rows.Presenter, field string) {
	c.Ordinal = p.Ordinal
	c.Depth = p.Depth
	c.Current = p.IsCurrent()
	c.Selected = p.IsSelected()
	c.Editing = p.IsEditing()
	c.Expanded = p.IsExpanded()
	if v := p.Value(field); v != nil {
		c.Text = fmt.Sprint(v)
	} else {
		c.Text = ""
	}
}

// BuildTemplate seals the template a config declares. Every binding
// creates *Cell elements.
func BuildTemplate(tc TemplateConfig) (*template.Template, error) {
	b := template.NewBuilder()
	for _, s := range tc.Columns {
		l, opts, err := ParseTrack(s)
		if err != nil {
			return nil, err
		}
		b.AddColumn(l, opts...)
	}
	for _, s := range tc.Rows {
		l, opts, err := ParseTrack(s)
		if err != nil {
			return nil, err
		}
		b.AddRow(l, opts...)
	}
	for _, bc := range tc.Bindings {
		b.AddBinding(bc.GridRange(), newBinding(bc))
	}
	if tc.Orientation == "horizontal" {
		b.SetOrientation(template.Horizontal)
	}
	if tc.BlockDimension > 0 {
		b.SetBlockDimension(tc.BlockDimension)
	}
	b.SetFrozen(tc.Frozen.Left, tc.Frozen.Top, tc.Frozen.Right, tc.Frozen.Bottom)
	var stc [2]bool
	for _, a := range tc.SizeToContent {
		if a == "x" {
			stc[grid.X] = true
		} else {
			stc[grid.Y] = true
		}
	}
	b.SetSizeToContent(stc[grid.X], stc[grid.Y])
	b.SetRecursive(tc.Recursive)
	return b.Seal()
}

func newBinding(bc BindingConfig) template.Binding {
	name := bc.Name
	reset := func(el template.Element) { *el.(*Cell) = Cell{Binding: name, Class: el.(*Cell).Class} }

	switch bc.Class {
	case ClassScalar:
		return &template.Scalar{
			ID:      name,
			New:     func() template.Element { return &Cell{Binding: name, Class: template.ClassScalar} },
			OnSetup: func(el template.Element) { el.(*Cell).Text = bc.Text },
		}
	case ClassBlock:
		label := func(el template.Element, ctx template.BlockContext) {
			c := el.(*Cell)
			c.Ordinal = ctx.Ordinal
			c.Text = strings.TrimSpace(fmt.Sprintf("%s %d", bc.Text, ctx.Ordinal))
		}
		return &template.Block{
			ID:        name,
			New:       func() template.Element { return &Cell{Binding: name, Class: template.ClassBlock} },
			OnSetup:   label,
			OnRefresh: label,
			OnCleanup: reset,
		}
	default:
		bind := func(el template.Element, p *rows.Presenter) { el.(*Cell).bindRow(p, bc.Field) }
		return &template.Row{
			ID:        name,
			New:       func() template.Element { return &Cell{Binding: name, Class: template.ClassRow} },
			OnSetup:   bind,
			OnRefresh: bind,
			OnCleanup: reset,
		}
	}
}

// TextMeasurer measures *Cell elements as one line of terminal text: the
// display width of the line by one cell. Wrapping is not supported.
func TextMeasurer() layout.Measurer {
	return layout.MeasurerFunc(func(el template.Element, _ grid.Size) grid.Size {
		c, ok := el.(*Cell)
		if !ok {
			return grid.Size{}
		}
		return grid.Size{Width: float64(c.Width()), Height: 1}
	})
}

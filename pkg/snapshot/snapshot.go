package snapshot

import (
	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/layout"
	"github.com/matzehuels/gridview/pkg/realize"
)

// Snapshot is the serialized state of an engine after a pass.
type Snapshot struct {
	Orientation    string     `json:"orientation" bson:"orientation"`
	BlockDimension int        `json:"block_dimension" bson:"block_dimension"`
	Rows           int        `json:"rows" bson:"rows"`
	Containers     int        `json:"containers" bson:"containers"`
	Viewport       grid.Size  `json:"viewport" bson:"viewport"`
	Extent         grid.Size  `json:"extent" bson:"extent"`
	Offset         grid.Point `json:"offset" bson:"offset"`
	Position       Position   `json:"position" bson:"position"`

	Columns []Track `json:"columns" bson:"columns"`
	Lines   []Track `json:"lines" bson:"lines"` // template rows

	Window   []Container `json:"window" bson:"window"`
	Isolated []Container `json:"isolated,omitempty" bson:"isolated,omitempty"`
	Current  Current     `json:"current" bson:"current"`

	Placements []Placement `json:"placements,omitempty" bson:"placements,omitempty"`
}

// Position is a logical scroll position.
type Position struct {
	Region    string  `json:"region" bson:"region"`
	Track     int     `json:"track" bson:"track"`
	Container int     `json:"container" bson:"container"`
	Fraction  float64 `json:"fraction" bson:"fraction"`
}

// Track is one template column or row with its measured length.
type Track struct {
	Length   string  `json:"length" bson:"length"`
	Measured float64 `json:"measured" bson:"measured"`
}

// Container is a realized container.
type Container struct {
	Ordinal int     `json:"ordinal" bson:"ordinal"`
	Length  float64 `json:"length" bson:"length"`
	Pinned  bool    `json:"pinned,omitempty" bson:"pinned,omitempty"`
	Rows    []Row   `json:"rows" bson:"rows"`
}

// Row is a row shown by a container.
type Row struct {
	Ordinal  int    `json:"ordinal" bson:"ordinal"`
	ID       string `json:"id" bson:"id"`
	Depth    int    `json:"depth,omitempty" bson:"depth,omitempty"`
	Current  bool   `json:"current,omitempty" bson:"current,omitempty"`
	Selected bool   `json:"selected,omitempty" bson:"selected,omitempty"`
	Editing  bool   `json:"editing,omitempty" bson:"editing,omitempty"`
	Expanded bool   `json:"expanded,omitempty" bson:"expanded,omitempty"`
}

// Current describes the current row's container.
type Current struct {
	Container int    `json:"container" bson:"container"`
	Placement string `json:"placement" bson:"placement"`
}

// Placement is where an element is drawn.
type Placement struct {
	Binding   string    `json:"binding" bson:"binding"`
	Class     string    `json:"class" bson:"class"`
	Container int       `json:"container" bson:"container"`
	Row       int       `json:"row" bson:"row"`
	Rect      grid.Rect `json:"rect" bson:"rect"`
	Clip      grid.Rect `json:"clip" bson:"clip"`
	Zone      string    `json:"zone,omitempty" bson:"zone,omitempty"`
}

// Visible reports whether any of the element is inside the viewport.
func (p Placement) Visible() bool { return !p.Clip.IsEmpty() }

// Options selects what Capture records.
type Options struct {
	// Placements includes the placement of every realized element.
	Placements bool
	// HiddenPlacements keeps placements that are entirely clipped.
	HiddenPlacements bool
}

// Capture records the engine's state after its last pass.
func Capture(e *layout.Engine, opts Options) Snapshot {
	tmpl := e.Template()
	real := e.Realization()
	pos := e.Position()

	s := Snapshot{
		Orientation:    tmpl.Orientation().String(),
		BlockDimension: tmpl.BlockDimension(),
		Rows:           e.Rows().Len(),
		Containers:     real.ContainerCount(),
		Viewport:       e.Viewport(),
		Extent:         e.Extent(),
		Offset:         e.Offset(),
		Position: Position{
			Region:    pos.Region.String(),
			Track:     pos.Track,
			Container: pos.Container,
			Fraction:  pos.Fraction,
		},
		Columns: tracks(e.Tracks(grid.X)),
		Lines:   tracks(e.Tracks(grid.Y)),
		Current: Current{Container: real.Current(), Placement: real.Placement().String()},
	}
	for _, v := range real.Window() {
		s.Window = append(s.Window, container(real, v))
	}
	for _, v := range real.Isolated() {
		s.Isolated = append(s.Isolated, container(real, v))
	}

	if opts.Placements {
		for _, p := range e.Arrange() {
			if !opts.HiddenPlacements && !p.Visible() {
				continue
			}
			s.Placements = append(s.Placements, placement(p))
		}
	}
	return s
}

func tracks(ts *grid.Tracks) []Track {
	out := make([]Track, ts.Len())
	for i := range out {
		out[i] = Track{Length: ts.At(i).Length.String(), Measured: ts.Measured(i)}
	}
	return out
}

func container(real *realize.Manager, v *realize.ContainerView) Container {
	c := Container{Ordinal: v.Ordinal, Length: v.Length, Pinned: real.Pinned(v.Ordinal)}
	for _, rv := range v.Rows {
		p := rv.Presenter
		c.Rows = append(c.Rows, Row{
			Ordinal:  p.Ordinal,
			ID:       p.ID,
			Depth:    p.Depth,
			Current:  p.IsCurrent(),
			Selected: p.IsSelected(),
			Editing:  p.IsEditing(),
			Expanded: p.IsExpanded(),
		})
	}
	return c
}

func placement(p layout.Placement) Placement {
	out := Placement{
		Binding:   p.Binding,
		Class:     p.Class.String(),
		Container: p.Container,
		Row:       p.Row,
		Rect:      p.Rect,
		Clip:      p.Clip,
	}
	switch {
	case p.Main != layout.ZoneScroll:
		out.Zone = p.Main.String()
	case p.Cross != layout.ZoneScroll:
		out.Zone = p.Cross.String()
	}
	return out
}

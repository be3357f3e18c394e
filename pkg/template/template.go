package template

import (
	"slices"

	"github.com/matzehuels/gridview/pkg/grid"
)

// Orientation selects the repeat (scroll) axis.
type Orientation int

const (
	// Vertical stacks containers along Y; rows of a block flow along X.
	Vertical Orientation = iota
	// Horizontal stacks containers along X; rows of a block flow along Y.
	Horizontal
)

// Main returns the axis containers repeat along.
func (o Orientation) Main() grid.Axis {
	if o == Horizontal {
		return grid.X
	}
	return grid.Y
}

// Cross returns the axis perpendicular to Main.
func (o Orientation) Cross() grid.Axis { return o.Main().Other() }

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Placement is a binding placed on a grid range.
type Placement[B Binding] struct {
	Range   grid.GridRange
	Binding B
}

// Frozen holds the frozen track counts of the four grid edges.
type Frozen struct {
	Left, Top, Right, Bottom int
}

// Template is a sealed, immutable grid description. Build one with a
// Builder.
type Template struct {
	orientation    Orientation
	tracks         [2][]grid.Track
	scalars        []Placement[*Scalar]
	blocks         []Placement[*Block]
	rows           []Placement[*Row]
	leading        []Placement[*Scalar]
	trailing       []Placement[*Scalar]
	rowRange       grid.GridRange
	blockRange     grid.GridRange
	blockDimension int
	frozen         Frozen
	sizeToContent  [2]bool
	recursive      bool
}

// Orientation returns the template orientation.
func (t *Template) Orientation() Orientation { return t.orientation }

// Main returns the repeat axis.
func (t *Template) Main() grid.Axis { return t.orientation.Main() }

// Cross returns the flow axis.
func (t *Template) Cross() grid.Axis { return t.orientation.Cross() }

// Tracks returns a fresh, sealed track collection for axis a. Each layout
// engine owns its own measured state.
func (t *Template) Tracks(a grid.Axis) *grid.Tracks {
	c := grid.NewTracks(t.tracks[a]...)
	c.Seal()
	return c
}

// TrackCount returns the number of declared tracks on axis a.
func (t *Template) TrackCount(a grid.Axis) int { return len(t.tracks[a]) }

// Track returns the declaration of track i on axis a.
func (t *Template) Track(a grid.Axis, i int) grid.Track { return t.tracks[a][i] }

// Scalars returns every scalar placement in declaration order.
func (t *Template) Scalars() []Placement[*Scalar] { return slices.Clone(t.scalars) }

// LeadingScalars returns the scalars placed before the block range on the
// main axis.
func (t *Template) LeadingScalars() []Placement[*Scalar] { return slices.Clone(t.leading) }

// TrailingScalars returns the scalars placed after the block range on the
// main axis.
func (t *Template) TrailingScalars() []Placement[*Scalar] { return slices.Clone(t.trailing) }

// Blocks returns the block placements.
func (t *Template) Blocks() []Placement[*Block] { return slices.Clone(t.blocks) }

// Rows returns the row placements.
func (t *Template) Rows() []Placement[*Row] { return slices.Clone(t.rows) }

// RowRange returns the union of all row binding ranges.
func (t *Template) RowRange() grid.GridRange { return t.rowRange }

// BlockRange returns the union of the row range and all block binding
// ranges. Its main span is what repeats once per container.
func (t *Template) BlockRange() grid.GridRange { return t.blockRange }

// BlockDimension returns how many rows one container holds.
func (t *Template) BlockDimension() int { return t.blockDimension }

// Flowing reports whether rows of a block flow along the cross axis.
func (t *Template) Flowing() bool { return t.blockDimension > 1 }

// Frozen returns the frozen counts as declared.
func (t *Template) Frozen() Frozen { return t.frozen }

// FrozenHead returns the frozen track count at the start of the main axis.
func (t *Template) FrozenHead() int {
	if t.orientation == Horizontal {
		return t.frozen.Left
	}
	return t.frozen.Top
}

// FrozenTail returns the frozen track count at the end of the main axis.
func (t *Template) FrozenTail() int {
	if t.orientation == Horizontal {
		return t.frozen.Right
	}
	return t.frozen.Bottom
}

// FrozenCrossStart returns the frozen track count at the start of the
// cross axis.
func (t *Template) FrozenCrossStart() int {
	if t.orientation == Horizontal {
		return t.frozen.Top
	}
	return t.frozen.Left
}

// FrozenCrossEnd returns the frozen track count at the end of the cross
// axis.
func (t *Template) FrozenCrossEnd() int {
	if t.orientation == Horizontal {
		return t.frozen.Bottom
	}
	return t.frozen.Right
}

// SizeToContent reports whether axis a sizes to its content.
func (t *Template) SizeToContent(a grid.Axis) bool { return t.sizeToContent[a] }

// Recursive reports whether rows form a self-referencing hierarchy.
func (t *Template) Recursive() bool { return t.recursive }

// Head returns the main-axis tracks before the block range.
func (t *Template) Head() grid.Range {
	return grid.Range{Start: 0, End: t.blockRange.Along(t.Main()).Start}
}

// BlockSpan returns the main-axis tracks repeated per container.
func (t *Template) BlockSpan() grid.Range { return t.blockRange.Along(t.Main()) }

// Tail returns the main-axis tracks after the block range.
func (t *Template) Tail() grid.Range {
	return grid.Range{Start: t.blockRange.Along(t.Main()).End, End: len(t.tracks[t.Main()])}
}

// RowCrossSpan returns the cross-axis tracks one row occupies. When the
// template flows they repeat BlockDimension times.
func (t *Template) RowCrossSpan() grid.Range { return t.rowRange.Along(t.Cross()) }

// ContainerCount returns how many containers present n rows.
func (t *Template) ContainerCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + t.blockDimension - 1) / t.blockDimension
}

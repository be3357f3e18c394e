package grid

import "fmt"

// Range is a half-open run [Start, End) of track indices on one axis.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of tracks in r.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty reports whether r contains no tracks.
func (r Range) IsEmpty() bool { return r.End <= r.Start }

// Contains reports whether index i lies in r.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// ContainsRange reports whether o lies entirely in r. An empty o is
// contained by any r.
func (r Range) ContainsRange(o Range) bool {
	if o.IsEmpty() {
		return true
	}
	return o.Start >= r.Start && o.End <= r.End
}

// Overlaps reports whether r and o share at least one index.
func (r Range) Overlaps(o Range) bool {
	return !r.IsEmpty() && !o.IsEmpty() && r.Start < o.End && o.Start < r.End
}

// Union returns the smallest range covering r and o.
func (r Range) Union(o Range) Range {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Range{Start: min(r.Start, o.Start), End: max(r.End, o.End)}
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// GridRange is an axis-aligned rectangle of tracks: columns [Left, Right)
// and rows [Top, Bottom).
type GridRange struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Cell returns the range covering the single cell (col, row).
func Cell(col, row int) GridRange {
	return GridRange{Left: col, Top: row, Right: col + 1, Bottom: row + 1}
}

// Span returns the range from cell (c0, r0) through cell (c1, r1) inclusive.
func Span(c0, r0, c1, r1 int) GridRange {
	return GridRange{Left: min(c0, c1), Top: min(r0, r1), Right: max(c0, c1) + 1, Bottom: max(r0, r1) + 1}
}

// Columns returns the column span.
func (g GridRange) Columns() Range { return Range{Start: g.Left, End: g.Right} }

// Rows returns the row span.
func (g GridRange) Rows() Range { return Range{Start: g.Top, End: g.Bottom} }

// Along returns the span on axis a (columns for X, rows for Y).
func (g GridRange) Along(a Axis) Range {
	if a == X {
		return g.Columns()
	}
	return g.Rows()
}

// IsEmpty reports whether g covers no cell.
func (g GridRange) IsEmpty() bool { return g.Right <= g.Left || g.Bottom <= g.Top }

// Contains reports whether cell (col, row) lies in g.
func (g GridRange) Contains(col, row int) bool {
	return col >= g.Left && col < g.Right && row >= g.Top && row < g.Bottom
}

// ContainsRange reports whether o lies entirely in g.
func (g GridRange) ContainsRange(o GridRange) bool {
	if o.IsEmpty() {
		return true
	}
	return o.Left >= g.Left && o.Right <= g.Right && o.Top >= g.Top && o.Bottom <= g.Bottom
}

// Intersects reports whether g and o share at least one cell.
func (g GridRange) Intersects(o GridRange) bool {
	return g.Columns().Overlaps(o.Columns()) && g.Rows().Overlaps(o.Rows())
}

// Union returns the smallest range covering g and o.
func (g GridRange) Union(o GridRange) GridRange {
	if g.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return g
	}
	return GridRange{
		Left:   min(g.Left, o.Left),
		Top:    min(g.Top, o.Top),
		Right:  max(g.Right, o.Right),
		Bottom: max(g.Bottom, o.Bottom),
	}
}

// Intersect returns the overlap of g and o, or the zero range.
func (g GridRange) Intersect(o GridRange) GridRange {
	r := GridRange{
		Left:   max(g.Left, o.Left),
		Top:    max(g.Top, o.Top),
		Right:  min(g.Right, o.Right),
		Bottom: min(g.Bottom, o.Bottom),
	}
	if r.IsEmpty() {
		return GridRange{}
	}
	return r
}

func (g GridRange) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", g.Left, g.Top, g.Right, g.Bottom)
}

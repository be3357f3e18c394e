package grid

import (
	"fmt"
	"math"
)

// Axis identifies one of the two grid axes.
type Axis int

const (
	// X is the horizontal axis (columns).
	X Axis = iota
	// Y is the vertical axis (rows).
	Y
)

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == X {
		return Y
	}
	return X
}

func (a Axis) String() string {
	if a == X {
		return "x"
	}
	return "y"
}

// Size is a width/height pair. Either component may be +Inf to request
// size-to-content measurement on that axis.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Get returns the component along axis a.
func (s Size) Get(a Axis) float64 {
	if a == X {
		return s.Width
	}
	return s.Height
}

// With returns a copy of s with the component along a replaced.
func (s Size) With(a Axis, v float64) Size {
	if a == X {
		s.Width = v
	} else {
		s.Height = v
	}
	return s
}

// IsInf reports whether the component along a is unbounded.
func (s Size) IsInf(a Axis) bool { return math.IsInf(s.Get(a), 1) }

func (s Size) String() string { return fmt.Sprintf("%gx%g", s.Width, s.Height) }

// Point is a position in host coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Get returns the coordinate along axis a.
func (p Point) Get(a Axis) float64 {
	if a == X {
		return p.X
	}
	return p.Y
}

// With returns a copy of p with the coordinate along a replaced.
func (p Point) With(a Axis, v float64) Point {
	if a == X {
		p.X = v
	} else {
		p.Y = v
	}
	return p
}

// Rect is an axis-aligned rectangle in host coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromAxes builds a rectangle from a main-axis and a cross-axis span.
// main names the axis the start/length pair (ms, ml) lies on.
func RectFromAxes(main Axis, ms, ml, cs, cl float64) Rect {
	if main == Y {
		return Rect{X: cs, Y: ms, Width: cl, Height: ml}
	}
	return Rect{X: ms, Y: cs, Width: ml, Height: cl}
}

// Right returns the exclusive right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Start returns the leading edge along axis a.
func (r Rect) Start(a Axis) float64 {
	if a == X {
		return r.X
	}
	return r.Y
}

// Length returns the extent along axis a.
func (r Rect) Length(a Axis) float64 {
	if a == X {
		return r.Width
	}
	return r.Height
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.Right(), o.Right())
	y1 := math.Min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

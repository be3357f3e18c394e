package grid

import (
	"math"

	"github.com/matzehuels/gridview/pkg/errors"
)

// Track is the immutable declaration of one column or row.
// Max == 0 means the track is unbounded.
type Track struct {
	Ordinal int
	Length  Length
	Min     float64
	Max     float64
}

// Upper returns the effective upper bound (+Inf when unbounded).
func (t Track) Upper() float64 {
	if t.Max <= 0 {
		return math.Inf(1)
	}
	return math.Max(t.Max, t.Min)
}

// Clamp restricts v to [Min, Upper()].
func (t Track) Clamp(v float64) float64 {
	if v < t.Min {
		return t.Min
	}
	if u := t.Upper(); v > u {
		return u
	}
	return v
}

// Initial returns the measured length a track starts a layout pass with.
// Fixed tracks take their value; auto tracks (and star tracks measured as
// auto) start at Min and grow; star tracks start at zero pending
// distribution.
func (t Track) Initial(sizeToContent bool) float64 {
	switch {
	case t.Length.IsFixed():
		return t.Clamp(t.Length.Value)
	case t.Length.IsStar() && !sizeToContent:
		return 0
	default:
		return t.Clamp(0)
	}
}

// Tracks is the ordered track collection of one axis. Declarations are
// fixed once the owning template is sealed; measured lengths change on
// every layout pass and offsets are recomputed lazily.
type Tracks struct {
	tracks   []Track
	measured []float64
	offsets  []float64 // prefix sums, len(tracks)+1, valid when !dirty
	dirty    bool
	sealed   bool
}

// NewTracks creates a collection from declarations. Ordinals are assigned
// from position.
func NewTracks(tracks ...Track) *Tracks {
	c := &Tracks{dirty: true}
	for _, t := range tracks {
		c.Append(t)
	}
	return c
}

// Append adds a declaration and returns its ordinal.
func (c *Tracks) Append(t Track) int {
	if c.sealed {
		panic(errors.Violation("tracks: append after seal"))
	}
	t.Ordinal = len(c.tracks)
	c.tracks = append(c.tracks, t)
	c.measured = append(c.measured, 0)
	c.dirty = true
	return t.Ordinal
}

// Seal forbids further declaration changes.
func (c *Tracks) Seal() { c.sealed = true }

// Len returns the number of tracks.
func (c *Tracks) Len() int { return len(c.tracks) }

// At returns the declaration of track i.
func (c *Tracks) At(i int) Track { return c.tracks[i] }

// SetLength changes the declared length of track i. It is only legal
// before the collection is sealed.
func (c *Tracks) SetLength(i int, l Length) {
	if c.sealed {
		panic(errors.Violation("tracks: SetLength(%d) after seal", i))
	}
	c.tracks[i].Length = l
}

// Measured returns the measured length of track i.
func (c *Tracks) Measured(i int) float64 { return c.measured[i] }

// SetMeasured stores a measured length, clamped to the track bounds.
func (c *Tracks) SetMeasured(i int, v float64) {
	v = c.tracks[i].Clamp(v)
	if c.measured[i] != v {
		c.measured[i] = v
		c.dirty = true
	}
}

// Grow raises the measured length of track i to desired when larger.
// It reports whether the measured length changed.
func (c *Tracks) Grow(i int, desired float64) bool {
	v := c.tracks[i].Clamp(desired)
	if v <= c.measured[i] {
		return false
	}
	c.measured[i] = v
	c.dirty = true
	return true
}

// Classify splits tracks by how they are measured. When the axis sizes to
// content, star tracks have nothing to share and are measured as auto.
func (c *Tracks) Classify(sizeToContent bool) (auto, star []int) {
	for i, t := range c.tracks {
		switch {
		case t.Length.IsAuto():
			auto = append(auto, i)
		case t.Length.IsStar() && sizeToContent:
			auto = append(auto, i)
		case t.Length.IsStar():
			star = append(star, i)
		}
	}
	return auto, star
}

// InitMeasured resets every measured length to its starting value.
func (c *Tracks) InitMeasured(sizeToContent bool) {
	for i, t := range c.tracks {
		c.measured[i] = t.Initial(sizeToContent)
	}
	c.dirty = true
}

// DistributeStar divides what remains of available among the star tracks.
//
// mult reports how many times a track repeats on the axis (flowed row
// ranges repeat their cross tracks); nil means every track counts once.
// The remainder is clamped to zero unless the axis sizes to content. An
// infinite available length leaves star tracks at their minimum. This is a
// single pass: clamping one track never redistributes to the others.
func (c *Tracks) DistributeStar(available float64, sizeToContent bool, mult func(int) float64) {
	if mult == nil {
		mult = func(int) float64 { return 1 }
	}
	_, star := c.Classify(sizeToContent)
	if len(star) == 0 {
		return
	}

	if math.IsInf(available, 1) {
		for _, i := range star {
			c.SetMeasured(i, c.tracks[i].Min)
		}
		return
	}

	remainder := available
	var weights float64
	for i, t := range c.tracks {
		if t.Length.IsStar() && !sizeToContent {
			weights += mult(i) * t.Length.Value
			continue
		}
		remainder -= mult(i) * c.measured[i]
	}
	if !sizeToContent && remainder < 0 {
		remainder = 0
	}

	for _, i := range star {
		share := 0.0
		if weights > 0 {
			share = remainder * c.tracks[i].Length.Value / weights
		}
		c.SetMeasured(i, share)
	}
}

// Offset returns the start offset of track i (0 <= i <= Len()).
func (c *Tracks) Offset(i int) float64 {
	c.refresh()
	return c.offsets[i]
}

// Total returns the sum of all measured lengths.
func (c *Tracks) Total() float64 { return c.Offset(len(c.tracks)) }

// SpanLength returns the summed measured length of r.
func (c *Tracks) SpanLength(r Range) float64 {
	if r.IsEmpty() {
		return 0
	}
	return c.Offset(r.End) - c.Offset(r.Start)
}

// Dirty reports whether offsets are pending recomputation.
func (c *Tracks) Dirty() bool { return c.dirty }

func (c *Tracks) refresh() {
	if !c.dirty && len(c.offsets) == len(c.tracks)+1 {
		return
	}
	if cap(c.offsets) < len(c.tracks)+1 {
		c.offsets = make([]float64, len(c.tracks)+1)
	} else {
		c.offsets = c.offsets[:len(c.tracks)+1]
	}
	var sum float64
	for i, m := range c.measured {
		c.offsets[i] = sum
		sum += m
	}
	c.offsets[len(c.tracks)] = sum
	c.dirty = false
}

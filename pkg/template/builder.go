package template

import (
	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
)

// TrackOption adjusts a track declaration.
type TrackOption func(*grid.Track)

// Min sets the lower clamp of a track.
func Min(v float64) TrackOption { return func(t *grid.Track) { t.Min = v } }

// Max sets the upper clamp of a track; zero means unbounded.
func Max(v float64) TrackOption { return func(t *grid.Track) { t.Max = v } }

type placed struct {
	rng     grid.GridRange
	binding Binding
}

// Builder assembles a Template. Every method returns the builder so calls
// chain; Seal validates and returns the immutable result. Mutating a
// builder after a successful Seal panics.
//
//	tmpl, err := template.NewBuilder().
//	    AddColumns(grid.Fixed(100), grid.Star(1)).
//	    AddRows(grid.Auto()).
//	    AddBinding(grid.Cell(0, 0), &template.Row{ID: "name", New: newLabel}).
//	    AddBinding(grid.Cell(1, 0), &template.Row{ID: "value", New: newLabel}).
//	    Seal()
type Builder struct {
	orientation    Orientation
	tracks         [2]*grid.Tracks
	bindings       []placed
	blockDimension int
	frozen         Frozen
	sizeToContent  [2]bool
	recursive      bool
	sealed         bool
}

// NewBuilder returns an empty vertical builder with block dimension 1.
func NewBuilder() *Builder {
	return &Builder{
		tracks:         [2]*grid.Tracks{grid.NewTracks(), grid.NewTracks()},
		blockDimension: 1,
	}
}

func (b *Builder) mutate(op string) {
	if b.sealed {
		panic(errors.Violation("template: %s after seal", op))
	}
}

// AddColumn appends a column.
func (b *Builder) AddColumn(l grid.Length, opts ...TrackOption) *Builder {
	b.mutate("AddColumn")
	b.tracks[grid.X].Append(newTrack(l, opts))
	return b
}

// AddColumns appends one column per length.
func (b *Builder) AddColumns(ls ...grid.Length) *Builder {
	for _, l := range ls {
		b.AddColumn(l)
	}
	return b
}

// AddRow appends a row track.
func (b *Builder) AddRow(l grid.Length, opts ...TrackOption) *Builder {
	b.mutate("AddRow")
	b.tracks[grid.Y].Append(newTrack(l, opts))
	return b
}

// AddRows appends one row track per length.
func (b *Builder) AddRows(ls ...grid.Length) *Builder {
	for _, l := range ls {
		b.AddRow(l)
	}
	return b
}

func newTrack(l grid.Length, opts []TrackOption) grid.Track {
	t := grid.Track{Length: l}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// SetLength changes the declared length of track i on axis a.
func (b *Builder) SetLength(a grid.Axis, i int, l grid.Length) *Builder {
	b.mutate("SetLength")
	b.tracks[a].SetLength(i, l)
	return b
}

// AddBinding places a binding on r.
func (b *Builder) AddBinding(r grid.GridRange, binding Binding) *Builder {
	b.mutate("AddBinding")
	b.bindings = append(b.bindings, placed{rng: r, binding: binding})
	return b
}

// SetOrientation selects the repeat axis.
func (b *Builder) SetOrientation(o Orientation) *Builder {
	b.mutate("SetOrientation")
	b.orientation = o
	return b
}

// SetBlockDimension sets how many rows one container holds.
func (b *Builder) SetBlockDimension(n int) *Builder {
	b.mutate("SetBlockDimension")
	b.blockDimension = n
	return b
}

// SetFrozen sets the frozen track counts of the four edges.
func (b *Builder) SetFrozen(left, top, right, bottom int) *Builder {
	b.mutate("SetFrozen")
	b.frozen = Frozen{Left: left, Top: top, Right: right, Bottom: bottom}
	return b
}

// SetSizeToContent makes an axis size to its content instead of the
// available length.
func (b *Builder) SetSizeToContent(x, y bool) *Builder {
	b.mutate("SetSizeToContent")
	b.sizeToContent = [2]bool{x, y}
	return b
}

// SetRecursive marks rows as a self-referencing hierarchy.
func (b *Builder) SetRecursive(on bool) *Builder {
	b.mutate("SetRecursive")
	b.recursive = on
	return b
}

// Seal validates the declaration and returns the immutable template. A
// failed Seal leaves the builder open so the caller can correct it.
func (b *Builder) Seal() (*Template, error) {
	b.mutate("Seal")
	t := &Template{
		orientation:    b.orientation,
		blockDimension: b.blockDimension,
		frozen:         b.frozen,
		sizeToContent:  b.sizeToContent,
		recursive:      b.recursive,
	}
	for a := range b.tracks {
		n := b.tracks[a].Len()
		t.tracks[a] = make([]grid.Track, n)
		for i := 0; i < n; i++ {
			t.tracks[a][i] = b.tracks[a].At(i)
		}
	}
	if err := validate(t, b.bindings); err != nil {
		return nil, err
	}
	b.sealed = true
	for _, c := range b.tracks {
		c.Seal()
	}
	return t, nil
}

package grid

import (
	"fmt"
	"math"
)

// LengthKind selects how a track is sized.
type LengthKind int

const (
	// KindFixed tracks have a constant pixel length.
	KindFixed LengthKind = iota
	// KindStar tracks share the remaining space by weight.
	KindStar
	// KindAuto tracks size to the largest element placed solely in them.
	KindAuto
)

func (k LengthKind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindStar:
		return "star"
	case KindAuto:
		return "auto"
	default:
		return fmt.Sprintf("LengthKind(%d)", int(k))
	}
}

// Length is a track length declaration. Value holds pixels for fixed tracks
// and the weight for star tracks; it is ignored for auto tracks.
type Length struct {
	Kind  LengthKind `json:"kind"`
	Value float64    `json:"value,omitempty"`
}

// Fixed returns a fixed pixel length. Negative values are treated as zero.
func Fixed(px float64) Length { return Length{Kind: KindFixed, Value: math.Max(px, 0)} }

// Star returns a proportional length. A non-positive weight is treated as 1.
func Star(weight float64) Length {
	if weight <= 0 {
		weight = 1
	}
	return Length{Kind: KindStar, Value: weight}
}

// Auto returns a size-to-content length.
func Auto() Length { return Length{Kind: KindAuto} }

// IsFixed reports whether l is a fixed length.
func (l Length) IsFixed() bool { return l.Kind == KindFixed }

// IsStar reports whether l is a proportional length.
func (l Length) IsStar() bool { return l.Kind == KindStar }

// IsAuto reports whether l is a size-to-content length.
func (l Length) IsAuto() bool { return l.Kind == KindAuto }

func (l Length) String() string {
	switch l.Kind {
	case KindFixed:
		return fmt.Sprintf("%gpx", l.Value)
	case KindStar:
		if l.Value == 1 {
			return "*"
		}
		return fmt.Sprintf("%g*", l.Value)
	default:
		return "auto"
	}
}

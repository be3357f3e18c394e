package layout

import "fmt"

// Region is the part of the main axis a logical position lies in.
type Region int

const (
	// RegionHead covers the main tracks before the repeated block.
	RegionHead Region = iota
	// RegionRepeat covers the containers.
	RegionRepeat
	// RegionTail covers the main tracks after the last container.
	RegionTail
)

func (r Region) String() string {
	switch r {
	case RegionHead:
		return "head"
	case RegionRepeat:
		return "repeat"
	default:
		return "tail"
	}
}

// Position is a logical scroll position: the content point shown at the
// scroll origin, the first pixel after the frozen head.
//
// Track is relative to the region: an index into the head tracks, the
// block tracks of Container, or the tail tracks. Fraction is the offset
// into that track as a share of its length. Positions stay meaningful
// while lengths change, which pixel offsets would not.
type Position struct {
	Region    Region  `json:"region"`
	Track     int     `json:"track"`
	Container int     `json:"container"`
	Fraction  float64 `json:"fraction"`
}

func (p Position) String() string {
	if p.Region == RegionRepeat {
		return fmt.Sprintf("%s[%d].%d+%.2f", p.Region, p.Container, p.Track, p.Fraction)
	}
	return fmt.Sprintf("%s.%d+%.2f", p.Region, p.Track, p.Fraction)
}

// cursor is a position in pixels within one unit of the main axis: the
// whole head, one container, or the whole tail.
type cursor struct {
	region Region
	k      int
	off    float64
}

// locate converts an offset within a run of track lengths into a track
// index and fraction. An offset at or past the end lands at the end of the
// last track.
func locate(ls []float64, off float64) (int, float64) {
	if len(ls) == 0 {
		return 0, 0
	}
	for i, l := range ls {
		if off < l {
			if l <= 0 {
				return i, 0
			}
			return i, max(off, 0) / l
		}
		off -= l
	}
	return len(ls) - 1, 1
}

// offsetOf is the inverse of locate.
func offsetOf(ls []float64, track int, fraction float64) float64 {
	if len(ls) == 0 {
		return 0
	}
	track = max(0, min(track, len(ls)-1))
	var off float64
	for _, l := range ls[:track] {
		off += l
	}
	return off + fraction*ls[track]
}

func sum(ls []float64) float64 {
	var s float64
	for _, l := range ls {
		s += l
	}
	return s
}

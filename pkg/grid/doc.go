// Package grid provides the static track model of a gridview template.
//
// A grid is two ordered collections of tracks, columns along X and rows
// along Y. Every track declares a [Length] (fixed pixels, a proportional
// star weight, or auto) and an optional Min/Max clamp. During layout
// the owning engine writes a measured length into each track; offsets are
// prefix sums of measured lengths and are recomputed lazily, on the first
// read after an invalidation, never eagerly.
//
// # Star distribution
//
// [Tracks.DistributeStar] is a single pass. The fixed and auto-measured
// lengths are subtracted from the available length, and the remainder is
// divided among star tracks by weight and clamped to each track's bounds.
// A track clamped to its maximum does not hand leftover space back to its
// siblings:
//
//	cols := grid.NewTracks(
//	    grid.Track{Length: grid.Fixed(100)},
//	    grid.Track{Length: grid.Star(1)},
//	    grid.Track{Length: grid.Star(3), Max: 120},
//	)
//	cols.InitMeasured(false)
//	cols.DistributeStar(500, false, nil)
//	// measured: 100, 100, 120  (the 300 computed for track 2 is clamped)
//
// # Ranges
//
// [Range] is a half-open run of track indices on one axis and [GridRange]
// is the axis-aligned rectangle of tracks every binding is placed on.
// Both are immutable values.
package grid

// Package snapshot is the wire format of a laid-out grid.
//
// A [Snapshot] records what an [layout.Engine] decided in its last pass:
// viewport, extent and offset, the logical scroll position, measured
// tracks, the realized containers with the rows they show, and a
// placement for every realized element. It is what `gridview layout`
// prints and what the HTTP inspector serves.
//
//	{
//	  "viewport": {"width": 200, "height": 100},
//	  "extent": {"width": 200, "height": 160},
//	  "offset": {"x": 0, "y": 30},
//	  "position": {"region": "repeat", "container": 3, "track": 0, "fraction": 0},
//	  "window": [{"ordinal": 3, "length": 10, "rows": [...]}, ...],
//	  ...
//	}
//
// Use [Capture] to take a snapshot and [Write]/[Read] to move it across a
// process boundary. Snapshots are plain values; the engine holds no
// reference to them.
package snapshot

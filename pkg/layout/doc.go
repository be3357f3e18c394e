// Package layout is the scroll and layout manager of gridview.
//
// An [Engine] receives an available size from the host, realizes the
// containers needed to fill it, measures tracks, and publishes viewport,
// extent and offset for a scrollbar. It never measures the whole dataset:
// containers that have not been realized are estimated from the average
// length of those that have.
//
// # Pipeline
//
// Each pass runs the same steps in a fixed order:
//
//  1. push current values into realized elements;
//  2. initialize cross and main tracks, distribute cross star lengths and
//     grow auto tracks from scalar elements;
//  3. keep the current row's container and any container a frozen region
//     reaches into realized;
//  4. resolve the pending scroll request into a logical [Position] and
//     fill the window forward from it, moving back when the content ends
//     before the viewport does, then trim containers outside the viewport;
//  5. compute viewport, then extent, then offset.
//
// # Positions
//
// The scroll position is logical: a region (head, repeat or tail), a track
// and a fraction of it, plus a container ordinal in the repeat region.
// Translating it to pixels is exact inside the realized window and
// estimated elsewhere. Measured container lengths are kept in Fenwick
// trees so the estimate costs O(log n).
//
// # Frozen regions
//
// Frozen head and tail tracks on the main axis, and frozen start and end
// tracks on the cross axis, are placed at fixed viewport positions by
// [Engine.Arrange] regardless of the offset.
//
// # Scheduling
//
// Invalidate marks the engine dirty and posts a single refresh through the
// [Scheduler]. Repeated invalidations collapse; Refresh or Measure cancel
// the posted callback. Invalidations raised while a pass runs are deferred
// to a new post instead of running inline.
package layout

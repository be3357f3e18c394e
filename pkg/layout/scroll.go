package layout

import (
	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
)

// scrollRequest is the scroll input accumulated since the last pass. A
// target replaces any earlier request; relative deltas add up.
type scrollRequest struct {
	to                *Position
	containerFraction float64
	intoView          int
	delta             float64
}

func (e *Engine) requestScroll(update func(r *scrollRequest)) {
	if e.request == nil {
		e.request = &scrollRequest{intoView: -1}
	}
	update(e.request)
	e.generation++
	e.Invalidate()
}

// ScrollBy scrolls by a pixel delta. The main component moves the logical
// position, realizing the containers it crosses; the cross component is a
// plain offset clamped to the content.
func (e *Engine) ScrollBy(dx, dy float64) {
	main := e.tmpl.Main()
	dMain, dCross := dy, dx
	if main == grid.X {
		dMain, dCross = dx, dy
	}
	if dCross != 0 {
		cross := e.tmpl.Cross()
		e.offset = e.offset.With(cross, e.offset.Get(cross)+dCross)
	}
	if dMain == 0 {
		if dCross != 0 {
			e.Invalidate()
		}
		return
	}
	e.requestScroll(func(r *scrollRequest) { r.delta += dMain })
}

// ScrollTo scrolls so that fraction of main track is at the scroll
// origin. track counts the virtual main axis: head tracks, then every
// container's block tracks, then tail tracks.
func (e *Engine) ScrollTo(track int, fraction float64) {
	count := e.containerCount()
	head := e.tmpl.Head().Len()
	block := e.tmpl.BlockSpan().Len()
	total := head + count*block + e.tmpl.Tail().Len()
	if track < 0 || track >= total {
		panic(errors.Violation("layout: ScrollTo(%d) outside [0,%d)", track, total))
	}

	var p Position
	switch {
	case track < head:
		p = Position{Region: RegionHead, Track: track}
	case track < head+count*block:
		t := track - head
		p = Position{Region: RegionRepeat, Container: t / block, Track: t % block}
	default:
		p = Position{Region: RegionTail, Track: track - head - count*block}
	}
	p.Fraction = clamp(fraction, 0, 1)
	e.requestScroll(func(r *scrollRequest) {
		*r = scrollRequest{to: &p, intoView: -1}
	})
}

// ScrollToContainer scrolls so that container k, offset by fraction of
// its length, is at the scroll origin.
func (e *Engine) ScrollToContainer(k int, fraction float64) {
	if n := e.containerCount(); k < 0 || k >= n {
		panic(errors.Violation("layout: ScrollToContainer(%d) outside [0,%d)", k, n))
	}
	p := Position{Region: RegionRepeat, Container: k}
	e.requestScroll(func(r *scrollRequest) {
		*r = scrollRequest{to: &p, containerFraction: clamp(fraction, 0, 1), intoView: -1}
	})
}

// ScrollIntoView scrolls the least distance that shows container k, or its
// start when it is longer than the viewport.
func (e *Engine) ScrollIntoView(k int) {
	if n := e.containerCount(); k < 0 || k >= n {
		panic(errors.Violation("layout: ScrollIntoView(%d) outside [0,%d)", k, n))
	}
	e.requestScroll(func(r *scrollRequest) {
		*r = scrollRequest{intoView: k}
	})
}

// ScrollToCurrent brings the current row's container into view.
func (e *Engine) ScrollToCurrent() {
	if cur := e.rows.Current(); cur >= 0 {
		e.ScrollIntoView(cur / e.tmpl.BlockDimension())
	}
}

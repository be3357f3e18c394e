package layout

import (
	"math"

	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/realize"
)

// geometry is the main-axis summary of one pass.
type geometry struct {
	count int // containers
	head  grid.Range
	block grid.Range
	tail  grid.Range

	headLen float64
	tailLen float64
	avg     float64 // estimated length of an unmeasured container

	fhl float64 // frozen head length
	ftl float64 // frozen tail length

	viewport   float64 // main viewport
	scrollable float64 // viewport minus both frozen lengths
}

func (e *Engine) sizeToContent(a grid.Axis) bool {
	return e.tmpl.SizeToContent(a) || e.available.IsInf(a)
}

// slots returns how many rows sit side by side on the cross axis.
func (e *Engine) slots() int {
	if e.tmpl.Flowing() {
		return e.tmpl.BlockDimension()
	}
	return 1
}

// =============================================================================
// Cross axis
// =============================================================================

// The cross axis is virtual when rows flow: the row range's cross tracks
// repeat once per slot, so track i of slot s sits at crossPos(i, s).

func (e *Engine) rowCrossLength() float64 { return e.cross.SpanLength(e.tmpl.RowCrossSpan()) }

func (e *Engine) crossPos(i, slot int) float64 {
	n := e.slots()
	rc := e.tmpl.RowCrossSpan()
	switch {
	case n == 1 || i < rc.Start:
		return e.cross.Offset(i)
	case i < rc.End:
		return e.cross.Offset(i) + float64(slot)*e.rowCrossLength()
	default:
		return e.cross.Offset(i) + float64(n-1)*e.rowCrossLength()
	}
}

// crossSpan returns the start and length of r between slots s0 and s1.
func (e *Engine) crossSpan(r grid.Range, s0, s1 int) (float64, float64) {
	start := e.crossPos(r.Start, s0)
	last := r.End - 1
	end := e.crossPos(last, s1) + e.cross.Measured(last)
	return start, end - start
}

func (e *Engine) crossTotal() float64 {
	return e.cross.Total() + float64(e.slots()-1)*e.rowCrossLength()
}

func (e *Engine) crossMultiplicity(i int) float64 {
	if e.tmpl.RowCrossSpan().Contains(i) {
		return float64(e.slots())
	}
	return 1
}

func (e *Engine) crossIsAuto(i int) bool {
	l := e.cross.At(i).Length
	return l.IsAuto() || (l.IsStar() && e.sizeToContent(e.tmpl.Cross()))
}

func (e *Engine) distributeCross() {
	a := e.tmpl.Cross()
	e.cross.DistributeStar(e.available.Get(a), e.sizeToContent(a), e.crossMultiplicity)
}

// =============================================================================
// Element measurement
// =============================================================================

// availableFor returns the space offered to an element on r in slots
// [s0, s1]. An axis whose span contains a track that sizes to content is
// offered +Inf.
func (e *Engine) availableFor(r grid.GridRange, s0, s1 int, blockLengths []float64) grid.Size {
	main, cross := e.tmpl.Main(), e.tmpl.Cross()

	mainAvail := 0.0
	mr := r.Along(main)
	bs := e.tmpl.BlockSpan()
	for t := mr.Start; t < mr.End; t++ {
		if !e.main.At(t).Length.IsFixed() {
			mainAvail = math.Inf(1)
			break
		}
		if blockLengths != nil && bs.Contains(t) {
			mainAvail += blockLengths[t-bs.Start]
		} else {
			mainAvail += e.main.Measured(t)
		}
	}

	cr := r.Along(cross)
	crossAvail := math.Inf(1)
	auto := false
	for t := cr.Start; t < cr.End; t++ {
		if e.crossIsAuto(t) {
			auto = true
			break
		}
	}
	if !auto {
		_, crossAvail = e.crossSpan(cr, s0, s1)
	}
	return grid.Size{}.With(main, mainAvail).With(cross, crossAvail)
}

// growCross raises a single auto cross track to hold desired.
func (e *Engine) growCross(r grid.GridRange, desired grid.Size) {
	cr := r.Along(e.tmpl.Cross())
	if cr.Len() == 1 && e.crossIsAuto(cr.Start) {
		e.cross.Grow(cr.Start, desired.Get(e.tmpl.Cross()))
	}
}

// measureScalars measures scalar elements and grows the auto head and
// tail tracks and auto cross tracks they sit in alone.
func (e *Engine) measureScalars() {
	main := e.tmpl.Main()
	sizeMain := e.sizeToContent(main)
	leading, trailing := e.realize.Scalars()
	for _, sv := range append(leading, trailing...) {
		r := sv.Placement.Range
		sv.Desired = e.measurer.Measure(sv.Element, e.availableFor(r, 0, e.slots()-1, nil))
		if mr := r.Along(main); mr.Len() == 1 {
			l := e.main.At(mr.Start).Length
			if l.IsAuto() || (l.IsStar() && sizeMain) {
				e.main.Grow(mr.Start, sv.Desired.Get(main))
			}
		}
		e.growCross(r, sv.Desired)
	}
}

// measureView measures the elements of a realized container and records
// its per-track and total main lengths. Auto block tracks grow to the
// largest element placed in them alone.
func (e *Engine) measureView(v *realize.ContainerView) {
	main := e.tmpl.Main()
	bs := e.tmpl.BlockSpan()
	sizeMain := e.sizeToContent(main)
	for j := range v.Lengths {
		v.Lengths[j] = e.main.At(bs.Start + j).Initial(sizeMain)
	}

	grow := func(r grid.GridRange, desired grid.Size) {
		mr := r.Along(main)
		if mr.Len() != 1 || !e.main.At(mr.Start).Length.IsAuto() {
			return
		}
		j := mr.Start - bs.Start
		v.Lengths[j] = max(v.Lengths[j], e.main.At(mr.Start).Clamp(desired.Get(main)))
	}

	for i := range v.Rows {
		rv := &v.Rows[i]
		for j, p := range e.tmpl.Rows() {
			rv.Desired[j] = e.measurer.Measure(rv.Elements[j], e.availableFor(p.Range, i, i, v.Lengths))
			grow(p.Range, rv.Desired[j])
		}
	}
	for j, p := range e.tmpl.Blocks() {
		v.BlockDesired[j] = e.measurer.Measure(v.Blocks[j], e.availableFor(p.Range, 0, e.slots()-1, v.Lengths))
		grow(p.Range, v.BlockDesired[j])
	}

	v.Length = sum(v.Lengths)
	v.Measured = true
	e.lengths.set(v.Ordinal, v.Length)
}

// growCrossFromContainers applies the cross desired sizes recorded while
// measuring realized containers.
func (e *Engine) growCrossFromContainers() {
	for _, v := range e.realize.Realized() {
		for _, rv := range v.Rows {
			for j, p := range e.tmpl.Rows() {
				e.growCross(p.Range, rv.Desired[j])
			}
		}
		for j, p := range e.tmpl.Blocks() {
			e.growCross(p.Range, v.BlockDesired[j])
		}
	}
}

// =============================================================================
// Main axis summary
// =============================================================================

func (e *Engine) computeGeometry() geometry {
	main := e.tmpl.Main()
	g := geometry{
		count: e.containerCount(),
		head:  e.tmpl.Head(),
		block: e.tmpl.BlockSpan(),
		tail:  e.tmpl.Tail(),
	}
	g.headLen = e.main.SpanLength(g.head)
	g.tailLen = e.main.SpanLength(g.tail)
	g.avg = e.lengths.average(e.main.SpanLength(g.block))

	fh, ft := e.tmpl.FrozenHead(), e.tmpl.FrozenTail()
	if fh <= g.head.Len() {
		g.fhl = e.main.Offset(fh)
	} else {
		g.fhl = g.headLen
		if v := e.realize.View(0); v != nil && g.count > 0 {
			g.fhl += sum(v.Lengths[:fh-g.head.Len()])
		}
	}
	if ft <= g.tail.Len() {
		n := e.main.Len()
		g.ftl = e.main.Offset(n) - e.main.Offset(n-ft)
	} else {
		g.ftl = g.tailLen
		if v := e.realize.View(g.count - 1); v != nil && g.count > 0 {
			g.ftl += sum(v.Lengths[g.block.Len()-(ft-g.tail.Len()):])
		}
	}

	g.viewport = e.available.Get(main)
	if e.sizeToContent(main) {
		g.viewport = math.Inf(1)
	}
	g.scrollable = max(0, g.viewport-g.fhl-g.ftl)
	return g
}

// extentOf returns the estimated total main length.
func (e *Engine) extentOf(g *geometry) float64 {
	return g.headLen + e.lengths.extent(g.avg) + g.tailLen
}

// containerStart returns the estimated content position of container k.
func (e *Engine) containerStart(g *geometry, k int) float64 {
	return g.headLen + e.lengths.estimate(k, g.avg)
}

// distributeMainStars sizes star head and tail tracks from what the
// containers leave of the viewport.
func (e *Engine) distributeMainStars(g *geometry) {
	main := e.tmpl.Main()
	if e.sizeToContent(main) {
		return
	}
	available := g.viewport - e.lengths.extent(g.avg)
	block := g.block
	e.main.DistributeStar(available, false, func(i int) float64 {
		if block.Contains(i) {
			return 0
		}
		return 1
	})
}

package layout

import (
	"math"

	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/realize"
	"github.com/matzehuels/gridview/pkg/template"
)

// Zone is the part of the viewport an element is drawn in along one axis.
type Zone int

const (
	// ZoneScroll elements move with the scroll offset.
	ZoneScroll Zone = iota
	// ZoneFrozenStart elements stay at the start of the viewport.
	ZoneFrozenStart
	// ZoneFrozenEnd elements stay at the end of the viewport.
	ZoneFrozenEnd
)

func (z Zone) String() string {
	switch z {
	case ZoneFrozenStart:
		return "frozen-start"
	case ZoneFrozenEnd:
		return "frozen-end"
	default:
		return "scroll"
	}
}

// Placement is where the host draws one realized element. Rect is in
// viewport coordinates; Clip is the part of Rect inside the element's
// zone and is empty when nothing of it is visible.
type Placement struct {
	Element   template.Element
	Binding   string
	Class     template.Class
	Container int // -1 for scalars
	Row       int // row ordinal for row bindings, else -1
	Rect      grid.Rect
	Clip      grid.Rect
	Main      Zone
	Cross     Zone
}

// Visible reports whether any of the element is inside the viewport.
func (p Placement) Visible() bool { return !p.Clip.IsEmpty() }

// axisSpan is an element's content span on one axis plus its distance
// from the content end, used to anchor frozen-end elements.
type axisSpan struct {
	start, length, fromEnd float64
	zone                   Zone
}

// Arrange returns a placement for every realized element in child order,
// using the results of the last pass.
func (e *Engine) Arrange() []Placement {
	var out []Placement
	for _, child := range e.realize.Children() {
		switch c := child.(type) {
		case *realize.ScalarView:
			out = append(out, e.placeScalar(c))
		case *realize.ContainerView:
			out = e.placeContainer(out, c)
		}
	}
	return out
}

func (e *Engine) placeScalar(sv *realize.ScalarView) Placement {
	r := sv.Placement.Range
	mr := r.Along(e.tmpl.Main())
	g := &e.geom
	nm := e.main.Len()

	ms := axisSpan{length: e.main.SpanLength(mr)}
	if sv.Leading {
		ms.start = e.main.Offset(mr.Start)
		if mr.End <= e.tmpl.FrozenHead() {
			ms.zone = ZoneFrozenStart
		}
	} else {
		ms.start = g.headLen + e.lengths.extent(g.avg) + e.main.Offset(mr.Start) - e.main.Offset(g.tail.Start)
		ms.fromEnd = e.main.Offset(nm) - e.main.Offset(mr.Start)
		if mr.Start >= nm-e.tmpl.FrozenTail() {
			ms.zone = ZoneFrozenEnd
		}
	}
	return e.place(sv.Element, sv.Placement.Binding, -1, -1, r, ms, 0, e.slots()-1)
}

func (e *Engine) placeContainer(out []Placement, v *realize.ContainerView) []Placement {
	g := &e.geom
	bs := g.block
	start := e.containerStart(g, v.Ordinal)

	span := func(r grid.GridRange) axisSpan {
		mr := r.Along(e.tmpl.Main())
		j0, j1 := mr.Start-bs.Start, mr.End-bs.Start
		before := sum(v.Lengths[:j0])
		s := axisSpan{
			start:   start + before,
			length:  sum(v.Lengths[j0:j1]),
			fromEnd: v.Length - before + g.tailLen,
		}
		fh := e.tmpl.FrozenHead() - g.head.Len()
		ft := e.tmpl.FrozenTail() - g.tail.Len()
		switch {
		case v.Ordinal == 0 && fh > 0 && j1 <= fh:
			s.zone = ZoneFrozenStart
		case v.Ordinal == g.count-1 && ft > 0 && j0 >= bs.Len()-ft:
			s.zone = ZoneFrozenEnd
		}
		return s
	}

	for j, p := range e.tmpl.Blocks() {
		out = append(out, e.place(v.Blocks[j], p.Binding, v.Ordinal, -1, p.Range, span(p.Range), 0, e.slots()-1))
	}
	for i, rv := range v.Rows {
		for j, p := range e.tmpl.Rows() {
			out = append(out, e.place(rv.Elements[j], p.Binding, v.Ordinal, rv.Presenter.Ordinal, p.Range, span(p.Range), i, i))
		}
	}
	return out
}

func (e *Engine) place(el template.Element, b template.Binding, container, row int, r grid.GridRange, ms axisSpan, s0, s1 int) Placement {
	main, cross := e.tmpl.Main(), e.tmpl.Cross()

	cs := axisSpan{}
	cs.start, cs.length = e.crossSpan(r.Along(cross), s0, s1)
	cs.fromEnd = e.crossTotal() - cs.start
	cr := r.Along(cross)
	nc := e.cross.Len()
	switch {
	case cr.End <= e.tmpl.FrozenCrossStart():
		cs.zone = ZoneFrozenStart
	case cr.Start >= nc-e.tmpl.FrozenCrossEnd():
		cs.zone = ZoneFrozenEnd
	}
	crossFrozen := [2]float64{
		e.cross.Offset(e.tmpl.FrozenCrossStart()),
		e.cross.Total() - e.cross.Offset(nc-e.tmpl.FrozenCrossEnd()),
	}
	mainFrozen := [2]float64{e.geom.fhl, e.geom.ftl}

	mPos, mClip0, mClip1 := e.screen(ms, main, mainFrozen)
	cPos, cClip0, cClip1 := e.screen(cs, cross, crossFrozen)

	rect := grid.RectFromAxes(main, mPos, ms.length, cPos, cs.length)
	zone := grid.RectFromAxes(main, mClip0, mClip1-mClip0, cClip0, cClip1-cClip0)
	return Placement{
		Element:   el,
		Binding:   b.Name(),
		Class:     b.Class(),
		Container: container,
		Row:       row,
		Rect:      rect,
		Clip:      rect.Intersect(zone),
		Main:      ms.zone,
		Cross:     cs.zone,
	}
}

// screen maps a content span to its viewport start and returns the clip
// interval of its zone. frozen holds the frozen start and end lengths.
func (e *Engine) screen(s axisSpan, a grid.Axis, frozen [2]float64) (pos, clip0, clip1 float64) {
	end := math.Min(e.viewport.Get(a), e.extent.Get(a))
	switch s.zone {
	case ZoneFrozenStart:
		return s.start, 0, frozen[0]
	case ZoneFrozenEnd:
		return end - s.fromEnd, end - frozen[1], end
	default:
		return s.start - e.offset.Get(a), frozen[0], end - frozen[1]
	}
}

package layout

import (
	"context"
	"math"
	"time"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/observability"
	"github.com/matzehuels/gridview/pkg/realize"
)

// errSuperseded stops a fill when a newer scroll request arrives while it
// runs. The fill restarts from the newest request.
var errSuperseded = errors.New(errors.ErrCodeInternal, "layout: fill superseded by a newer scroll request")

// filler walks the main axis unit by unit (head, each container, tail),
// realizing and measuring containers as the walk reaches them.
type filler struct {
	e     *Engine
	g     *geometry
	gen   uint64
	watch bool
}

// superseded reports whether a newer scroll request arrived.
func (f *filler) superseded() bool { return f.watch && f.e.generation != f.gen }

// ensure puts container k into the window and measures it. Adjacent
// ordinals extend the window; any other ordinal replaces it.
func (f *filler) ensure(ctx context.Context, k int) (*realize.ContainerView, error) {
	rm := f.e.realize
	span := rm.Span()
	var (
		v   *realize.ContainerView
		err error
	)
	switch {
	case span.Contains(k):
		v = rm.View(k)
	case span.IsEmpty():
		v, err = rm.Realize(ctx, k)
	case k == span.End:
		v, err = rm.RealizeNext(ctx)
	case k == span.Start-1:
		v, err = rm.RealizePrev(ctx)
	default:
		v, err = rm.Relocate(ctx, k)
	}
	if err != nil {
		return nil, err
	}
	if !v.Measured {
		f.e.measureView(v)
	}
	if f.superseded() {
		return nil, errSuperseded
	}
	return v, nil
}

func (f *filler) unitLen(c cursor) float64 {
	switch c.region {
	case RegionHead:
		return f.g.headLen
	case RegionTail:
		return f.g.tailLen
	}
	if v := f.e.realize.View(c.k); v != nil {
		return v.Length
	}
	return f.e.lengths.length(c.k, f.g.avg)
}

// abs returns the content position of c.
func (f *filler) abs(c cursor) float64 {
	switch c.region {
	case RegionHead:
		return c.off
	case RegionTail:
		return f.g.headLen + f.e.lengths.extent(f.g.avg) + c.off
	}
	return f.e.containerStart(f.g, c.k) + c.off
}

// next returns the start of the unit after c.
func (f *filler) next(ctx context.Context, c cursor) (cursor, bool, error) {
	var k int
	switch c.region {
	case RegionTail:
		return c, false, nil
	case RegionHead:
		k = 0
	default:
		k = c.k + 1
	}
	if k >= f.g.count {
		return cursor{region: RegionTail}, true, nil
	}
	if _, err := f.ensure(ctx, k); err != nil {
		return c, false, err
	}
	return cursor{region: RegionRepeat, k: k}, true, nil
}

// prev returns the end of the unit before c.
func (f *filler) prev(ctx context.Context, c cursor) (cursor, bool, error) {
	var k int
	switch c.region {
	case RegionHead:
		return c, false, nil
	case RegionTail:
		k = f.g.count - 1
	default:
		k = c.k - 1
	}
	if k < 0 {
		return cursor{region: RegionHead, off: f.g.headLen}, true, nil
	}
	v, err := f.ensure(ctx, k)
	if err != nil {
		return c, false, err
	}
	return cursor{region: RegionRepeat, k: k, off: v.Length}, true, nil
}

// walk moves c by delta pixels, realizing every container it crosses.
// It stops at either end of the content. Moving forward onto a unit
// boundary lands at the start of the next unit.
func (f *filler) walk(ctx context.Context, c cursor, delta float64) (cursor, error) {
	for {
		l := f.unitLen(c)
		if delta >= 0 {
			if c.off+delta < l || delta == 0 {
				c.off += delta
				return c, nil
			}
			n, ok, err := f.next(ctx, c)
			if err != nil {
				return c, err
			}
			if !ok {
				c.off = l
				return c, nil
			}
			delta -= l - c.off
			c = n
			continue
		}
		if c.off+delta >= 0 {
			c.off += delta
			return c, nil
		}
		p, ok, err := f.prev(ctx, c)
		if err != nil {
			return c, err
		}
		if !ok {
			c.off = 0
			return c, nil
		}
		delta += c.off
		c = p
	}
}

// jump moves c by delta using estimated container positions, realizing
// only the container it lands in.
func (f *filler) jump(ctx context.Context, c cursor, delta float64) (cursor, error) {
	x := f.abs(c) + delta
	return f.at(ctx, math.Max(0, math.Min(x, f.e.extentOf(f.g))))
}

// at returns the cursor at content position x.
func (f *filler) at(ctx context.Context, x float64) (cursor, error) {
	g := f.g
	if x < g.headLen {
		return cursor{region: RegionHead, off: x}, nil
	}
	x -= g.headLen
	if ce := f.e.lengths.extent(g.avg); x >= ce || g.count == 0 {
		return cursor{region: RegionTail, off: math.Min(x-ce, g.tailLen)}, nil
	}
	k := f.e.lengths.find(x, g.avg)
	within := x - f.e.lengths.estimate(k, g.avg)
	est := f.e.lengths.length(k, g.avg)
	v, err := f.ensure(ctx, k)
	if err != nil {
		return cursor{}, err
	}
	frac := 0.0
	if est > 0 {
		frac = math.Min(within/est, 1)
	}
	return cursor{region: RegionRepeat, k: k, off: frac * v.Length}, nil
}

// scroll applies a relative delta, walking when the distance is short and
// jumping by estimate when it spans many viewports.
func (f *filler) scroll(ctx context.Context, c cursor, delta float64) (cursor, error) {
	vp := f.g.viewport
	if !math.IsInf(vp, 1) && vp > 0 && math.Abs(delta) > jumpViewports*vp {
		return f.jump(ctx, c, delta)
	}
	return f.walk(ctx, c, delta)
}

// cursorAt converts a logical position, realizing its container.
func (f *filler) cursorAt(ctx context.Context, p Position) (cursor, error) {
	g := f.g
	e := f.e
	switch {
	case p.Region == RegionHead || (p.Region == RegionRepeat && g.count == 0 && p.Container <= 0):
		if p.Region != RegionHead {
			return cursor{region: RegionHead}, nil
		}
		return cursor{region: RegionHead, off: offsetOf(e.trackLengths(g.head), p.Track, p.Fraction)}, nil
	case p.Region == RegionRepeat && g.count > 0:
		k := max(0, min(p.Container, g.count-1))
		v, err := f.ensure(ctx, k)
		if err != nil {
			return cursor{}, err
		}
		track, frac := p.Track, p.Fraction
		if p.Container >= g.count {
			track, frac = len(v.Lengths)-1, 1
		}
		return cursor{region: RegionRepeat, k: k, off: offsetOf(v.Lengths, track, frac)}, nil
	default:
		if p.Region == RegionRepeat {
			return cursor{region: RegionTail}, nil
		}
		return cursor{region: RegionTail, off: offsetOf(e.trackLengths(g.tail), p.Track, p.Fraction)}, nil
	}
}

// position converts c back to a logical position.
func (f *filler) position(c cursor) Position {
	switch c.region {
	case RegionHead:
		t, frac := locate(f.e.trackLengths(f.g.head), c.off)
		return Position{Region: RegionHead, Track: t, Fraction: frac}
	case RegionTail:
		t, frac := locate(f.e.trackLengths(f.g.tail), c.off)
		return Position{Region: RegionTail, Track: t, Fraction: frac}
	}
	var ls []float64
	if v := f.e.realize.View(c.k); v != nil {
		ls = v.Lengths
	}
	t, frac := locate(ls, c.off)
	return Position{Region: RegionRepeat, Container: c.k, Track: t, Fraction: frac}
}

// origin returns the scroll origin: the first content point after the
// frozen head.
func (f *filler) origin(ctx context.Context) (cursor, error) {
	g := f.g
	fh := f.e.tmpl.FrozenHead()
	if fh <= g.head.Len() || g.count == 0 {
		return cursor{region: RegionHead, off: math.Min(g.fhl, g.headLen)}, nil
	}
	v, err := f.ensure(ctx, 0)
	if err != nil {
		return cursor{}, err
	}
	return cursor{region: RegionRepeat, k: 0, off: sum(v.Lengths[:fh-g.head.Len()])}, nil
}

func (f *filler) clampOrigin(ctx context.Context, c cursor) (cursor, error) {
	if f.abs(c) >= f.g.fhl {
		return c, nil
	}
	return f.origin(ctx)
}

// resolve turns the pending scroll request, or the stored position, into
// a cursor.
func (f *filler) resolve(ctx context.Context) (cursor, error) {
	e := f.e
	req := e.request
	e.request = nil

	base := e.pos
	if req != nil && req.to != nil {
		base = *req.to
	}
	if req != nil && req.intoView >= 0 {
		return f.intoView(ctx, base, req.intoView)
	}

	c, err := f.cursorAt(ctx, base)
	if err != nil {
		return c, err
	}
	if req == nil {
		return c, nil
	}
	delta := req.delta
	if req.to != nil && req.to.Region == RegionRepeat && req.containerFraction > 0 {
		delta += req.containerFraction * f.unitLen(c)
	}
	if delta != 0 {
		return f.scroll(ctx, c, delta)
	}
	return c, nil
}

// intoView returns a cursor that shows container k whole, or as much of it
// as fits, moving as little as possible from base.
func (f *filler) intoView(ctx context.Context, base Position, k int) (cursor, error) {
	cur, err := f.cursorAt(ctx, base)
	if err != nil {
		return cur, err
	}
	top := f.abs(cur)
	if _, err := f.ensure(ctx, k); err != nil {
		return cur, err
	}
	start := f.e.containerStart(f.g, k)
	l := f.unitLen(cursor{region: RegionRepeat, k: k})
	c := cursor{region: RegionRepeat, k: k}
	switch {
	case start < top:
		return c, nil
	case start+l > top+f.g.scrollable:
		return f.walk(ctx, c, math.Min(0, l-f.g.scrollable))
	default:
		return f.cursorAt(ctx, base)
	}
}

// fillForward realizes containers after c until the scrollable viewport is
// covered. When the content ends first, c moves back so the viewport stays
// full, realizing containers before it.
func (f *filler) fillForward(ctx context.Context, c cursor) (cursor, error) {
	g := f.g
	need := g.scrollable + g.ftl
	covered := f.unitLen(c) - c.off
	u := c
	for covered < need {
		n, ok, err := f.next(ctx, u)
		if err != nil {
			return c, err
		}
		if !ok {
			break
		}
		u = n
		covered += f.unitLen(u)
	}
	if u.region != RegionTail || math.IsInf(g.scrollable, 1) {
		return c, nil
	}
	if remaining := covered - g.ftl; remaining < g.scrollable {
		return f.walk(ctx, c, remaining-g.scrollable)
	}
	return c, nil
}

// trim virtualizes window containers that lie wholly outside the viewport
// plus one frozen-head length of margin on each side.
func (f *filler) trim(ctx context.Context, c cursor) {
	g := f.g
	if math.IsInf(g.scrollable, 1) {
		return
	}
	rm := f.e.realize
	top := f.abs(c) - g.fhl
	bottom := f.abs(c) + g.scrollable + g.fhl
	keep := func(v *realize.ContainerView) bool {
		return c.region == RegionRepeat && v.Ordinal == c.k
	}
	for w := rm.Window(); len(w) > 1; w = w[1:] {
		v := w[0]
		if keep(v) || f.e.containerStart(g, v.Ordinal)+v.Length > top {
			break
		}
		rm.Virtualize(ctx, v)
	}
	for w := rm.Window(); len(w) > 1; w = w[:len(w)-1] {
		v := w[len(w)-1]
		if keep(v) || f.e.containerStart(g, v.Ordinal) < bottom {
			break
		}
		rm.Virtualize(ctx, v)
	}
}

// place runs one fill attempt.
func (f *filler) place(ctx context.Context) (cursor, error) {
	c, err := f.resolve(ctx)
	if err != nil {
		return c, err
	}
	if c, err = f.clampOrigin(ctx, c); err != nil {
		return c, err
	}
	if c, err = f.fillForward(ctx, c); err != nil {
		return c, err
	}
	if c, err = f.clampOrigin(ctx, c); err != nil {
		return c, err
	}
	f.trim(ctx, c)
	return c, nil
}

// =============================================================================
// Layout pass
// =============================================================================

// trackLengths returns the measured lengths of main tracks r.
func (e *Engine) trackLengths(r grid.Range) []float64 {
	out := make([]float64, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		out = append(out, e.main.Measured(i))
	}
	return out
}

// pass runs the layout pipeline: tracks, isolation, fill, then viewport,
// extent and offset in that order.
func (e *Engine) pass(ctx context.Context) (err error) {
	start := time.Now()
	count := e.containerCount()
	observability.Layout().OnMeasureStart(ctx, count)
	defer func() {
		observability.Layout().OnMeasureComplete(ctx, len(e.realize.Realized()), time.Since(start), err)
	}()

	main, cross := e.tmpl.Main(), e.tmpl.Cross()

	if e.structural {
		e.realize.Clear(ctx)
		e.lengths.resize(count, e.keepLengths)
		e.structural = false
	} else if e.lengths.size() != count {
		e.lengths.resize(count, count)
	}

	e.pushValues()

	e.cross.InitMeasured(e.sizeToContent(cross))
	e.distributeCross()
	e.main.InitMeasured(e.sizeToContent(main))
	e.measureScalars()
	e.distributeCross()

	if err := e.isolate(ctx, count); err != nil {
		return err
	}
	for _, v := range e.realize.Realized() {
		e.measureView(v)
	}

	g := e.computeGeometry()
	c, err := e.fill(ctx, &g)
	if err != nil {
		return err
	}

	e.growCrossFromContainers()
	e.distributeCross()
	e.distributeMainStars(&g)
	g = e.computeGeometry()
	e.geom = g

	f := &filler{e: e, g: &g}
	if c, err = f.cursorAt(ctx, e.pos); err != nil {
		return err
	}

	// viewport, then extent, then offset
	e.viewport = e.available
	e.extent = e.extent.With(main, e.extentOf(&g)).With(cross, e.crossTotal())
	for _, a := range []grid.Axis{main, cross} {
		if e.viewport.IsInf(a) || e.tmpl.SizeToContent(a) {
			e.viewport = e.viewport.With(a, e.extent.Get(a))
		}
	}
	prev := e.offset
	e.offset = e.offset.With(main, clamp(f.abs(c)-g.fhl, 0, e.extent.Get(main)-e.viewport.Get(main)))
	e.offset = e.offset.With(cross, clamp(e.offset.Get(cross), 0, e.extent.Get(cross)-e.viewport.Get(cross)))
	if e.offset != prev {
		observability.Layout().OnScroll(ctx, e.offset.Get(main), e.extent.Get(main))
	}

	span := e.realize.Span()
	e.logger.Debug("fill",
		"first", span.Start, "last", span.End-1,
		"position", e.pos.String(),
		"extent", e.extent.Get(main), "offset", e.offset.Get(main))
	return nil
}

// fill places the window, restarting when a binding hook issues a newer
// scroll request mid-fill. A failed fill keeps its scroll request pending
// for the next pass.
func (e *Engine) fill(ctx context.Context, g *geometry) (cursor, error) {
	span := e.realize.Span()
	for attempt := 0; ; attempt++ {
		req := e.request
		f := &filler{e: e, g: g, gen: e.generation, watch: attempt < maxRestarts}
		c, err := f.place(ctx)
		if err == errSuperseded {
			e.logger.Debug("fill superseded", "attempt", attempt)
			continue
		}
		if err != nil {
			if e.request == nil {
				e.request = req
			}
			if rerr := e.restoreWindow(ctx, span); rerr != nil {
				e.logger.Warn("window not restored after failed fill", "window", span.String(), "err", rerr)
			}
			return c, err
		}
		e.pos = f.position(c)
		return c, nil
	}
}

// restoreWindow brings the window back to span after a failed fill.
func (e *Engine) restoreWindow(ctx context.Context, span grid.Range) error {
	rm := e.realize
	cur := rm.Span()
	if cur == span {
		return nil
	}
	if span.IsEmpty() {
		rm.VirtualizeAll(ctx)
		return nil
	}
	if cur.IsEmpty() || !cur.Overlaps(span) {
		if _, err := rm.Relocate(ctx, span.Start); err != nil {
			return err
		}
	}
	for w := rm.Window(); w[0].Ordinal < span.Start; w = rm.Window() {
		rm.Virtualize(ctx, w[0])
	}
	for w := rm.Window(); w[len(w)-1].Ordinal >= span.End; w = rm.Window() {
		rm.Virtualize(ctx, w[len(w)-1])
	}
	for rm.Span().Start > span.Start {
		if _, err := rm.RealizePrev(ctx); err != nil {
			return err
		}
	}
	for rm.Span().End < span.End {
		if _, err := rm.RealizeNext(ctx); err != nil {
			return err
		}
	}
	for _, v := range rm.Window() {
		if !v.Measured {
			e.measureView(v)
		}
	}
	return nil
}

// isolate pins the containers frozen regions reach into and keeps the
// current row's container realized.
func (e *Engine) isolate(ctx context.Context, count int) error {
	var pins []int
	if count > 0 {
		if e.tmpl.FrozenHead() > e.tmpl.Head().Len() {
			pins = append(pins, 0)
		}
		if e.tmpl.FrozenTail() > e.tmpl.Tail().Len() {
			pins = append(pins, count-1)
		}
	}
	if err := e.realize.SetPinned(ctx, pins...); err != nil {
		return err
	}
	current := -1
	if r := e.rows.Current(); r >= 0 {
		current = r / e.tmpl.BlockDimension()
	}
	return e.realize.SetCurrentContainer(ctx, current)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}

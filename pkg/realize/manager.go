package realize

import (
	"context"
	"slices"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/observability"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/template"
)

// Placement locates the current container relative to the window.
type Placement int

const (
	// None means there is no current container.
	None Placement = iota
	// Alone means the window is empty and the current container is
	// realized by itself.
	Alone
	// BeforeList means the current container precedes the window.
	BeforeList
	// WithinList means the current container is part of the window.
	WithinList
	// AfterList means the current container follows the window.
	AfterList
)

func (p Placement) String() string {
	switch p {
	case Alone:
		return "alone"
	case BeforeList:
		return "before"
	case WithinList:
		return "within"
	case AfterList:
		return "after"
	default:
		return "none"
	}
}

// Manager owns the arena of container views, their pool, and the realized
// window: a contiguous ascending run of container ordinals.
//
// Besides the window, the current container and the pinned containers
// (first or last container reached by a frozen region) stay realized when
// they fall outside it. These isolated views are kept in the panel at the
// position their ordinal implies, before or after the window.
//
// Calls that break the window contract panic with a CONTRACT_VIOLATION
// error. Row source failures are returned after rolling back.
type Manager struct {
	tmpl  *template.Template
	rows  *rows.Manager
	panel Panel

	arena    []*ContainerView
	free     []int
	window   []*ContainerView
	isolated []*ContainerView
	current  int
	pinned   map[int]bool

	leading  []*ScalarView
	trailing []*ScalarView
	children []Child
}

// NewManager creates a manager and the scalar views of tmpl. Until a panel
// is attached the children are tracked but not published.
func NewManager(tmpl *template.Template, rm *rows.Manager) *Manager {
	m := &Manager{
		tmpl:    tmpl,
		rows:    rm,
		panel:   nopPanel{},
		current: -1,
		pinned:  make(map[int]bool),
	}
	for _, p := range tmpl.LeadingScalars() {
		m.leading = append(m.leading, newScalarView(p, true))
	}
	for _, p := range tmpl.TrailingScalars() {
		m.trailing = append(m.trailing, newScalarView(p, false))
	}
	for _, s := range m.leading {
		m.children = append(m.children, s)
	}
	for _, s := range m.trailing {
		m.children = append(m.children, s)
	}
	return m
}

func newScalarView(p template.Placement[*template.Scalar], leading bool) *ScalarView {
	el := template.NewElement(p.Binding)
	p.Binding.Setup(el)
	return &ScalarView{Placement: p, Element: el, Leading: leading}
}

type nopPanel struct{}

func (nopPanel) Insert(int, Child) {}
func (nopPanel) Remove(int)        {}

// SetPanel moves every child to p. A nil panel detaches.
func (m *Manager) SetPanel(p Panel) {
	for i := len(m.children) - 1; i >= 0; i-- {
		m.panel.Remove(i)
	}
	if p == nil {
		p = nopPanel{}
	}
	m.panel = p
	for i, c := range m.children {
		m.panel.Insert(i, c)
	}
}

// Template returns the template the views are built from.
func (m *Manager) Template() *template.Template { return m.tmpl }

// ContainerCount returns the number of containers over the current rows.
func (m *Manager) ContainerCount() int { return m.tmpl.ContainerCount(m.rows.Len()) }

// Children returns the expected host child order.
func (m *Manager) Children() []Child { return slices.Clone(m.children) }

// Scalars returns the leading and trailing scalar views.
func (m *Manager) Scalars() (leading, trailing []*ScalarView) {
	return slices.Clone(m.leading), slices.Clone(m.trailing)
}

// Window returns the realized window in ordinal order.
func (m *Manager) Window() []*ContainerView { return slices.Clone(m.window) }

// Span returns the window ordinals as a half-open range.
func (m *Manager) Span() grid.Range {
	if len(m.window) == 0 {
		return grid.Range{}
	}
	return grid.Range{Start: m.first(), End: m.last() + 1}
}

// Isolated returns the views realized outside the window, by ordinal.
func (m *Manager) Isolated() []*ContainerView { return slices.Clone(m.isolated) }

// Realized returns every realized view in ordinal order.
func (m *Manager) Realized() []*ContainerView {
	out := make([]*ContainerView, 0, len(m.window)+len(m.isolated))
	for _, c := range m.children {
		if v, ok := c.(*ContainerView); ok {
			out = append(out, v)
		}
	}
	return out
}

// View returns the realized view of ordinal k, or nil.
func (m *Manager) View(k int) *ContainerView {
	if i := m.windowIndex(k); i >= 0 {
		return m.window[i]
	}
	if i := m.isolatedIndex(k); i >= 0 {
		return m.isolated[i]
	}
	return nil
}

// Current returns the current container ordinal, or -1.
func (m *Manager) Current() int { return m.current }

// Placement returns where the current container sits.
func (m *Manager) Placement() Placement {
	switch {
	case m.current < 0:
		return None
	case len(m.window) == 0:
		return Alone
	case m.current < m.first():
		return BeforeList
	case m.current > m.last():
		return AfterList
	default:
		return WithinList
	}
}

// Allocated returns the number of views in the arena.
func (m *Manager) Allocated() int { return len(m.arena) }

// Pooled returns the number of unbound views.
func (m *Manager) Pooled() int { return len(m.free) }

func (m *Manager) first() int { return m.window[0].Ordinal }
func (m *Manager) last() int  { return m.window[len(m.window)-1].Ordinal }

func (m *Manager) windowIndex(k int) int {
	if len(m.window) == 0 || k < m.first() || k > m.last() {
		return -1
	}
	return k - m.first()
}

func (m *Manager) isolatedIndex(k int) int {
	return slices.IndexFunc(m.isolated, func(v *ContainerView) bool { return v.Ordinal == k })
}

// keep reports whether ordinal k must stay realized outside the window.
func (m *Manager) keep(k int) bool { return k == m.current || m.pinned[k] }

// =============================================================================
// Window transitions
// =============================================================================

// Realize adds ordinal k to the window. k must be in range, not already in
// the window, and adjacent to it unless the window is empty. An isolated
// view of k joins the window as is.
func (m *Manager) Realize(ctx context.Context, k int) (*ContainerView, error) {
	if n := m.ContainerCount(); k < 0 || k >= n {
		panic(errors.Violation("realize: ordinal %d out of range [0,%d)", k, n))
	}
	if m.windowIndex(k) >= 0 {
		panic(errors.Violation("realize: ordinal %d is already realized", k))
	}
	if len(m.window) > 0 && k != m.first()-1 && k != m.last()+1 {
		panic(errors.Violation("realize: ordinal %d is not adjacent to window [%d,%d]", k, m.first(), m.last()))
	}

	var v *ContainerView
	if i := m.isolatedIndex(k); i >= 0 {
		v = m.isolated[i]
		m.isolated = slices.Delete(m.isolated, i, i+1)
	} else {
		var err error
		if v, err = m.attach(ctx, k); err != nil {
			return nil, err
		}
	}

	if len(m.window) > 0 && k < m.first() {
		m.window = slices.Insert(m.window, 0, v)
	} else {
		m.window = append(m.window, v)
	}
	return v, nil
}

// Relocate replaces the window with container k alone. k is bound before
// the old window is dropped, so a row source error leaves the window and
// the panel as they were.
func (m *Manager) Relocate(ctx context.Context, k int) (*ContainerView, error) {
	if n := m.ContainerCount(); k < 0 || k >= n {
		panic(errors.Violation("relocate: ordinal %d out of range [0,%d)", k, n))
	}
	if m.windowIndex(k) >= 0 {
		panic(errors.Violation("relocate: ordinal %d is already in the window", k))
	}

	var v *ContainerView
	if i := m.isolatedIndex(k); i >= 0 {
		v = m.isolated[i]
		m.isolated = slices.Delete(m.isolated, i, i+1)
	} else {
		var err error
		if v, err = m.attach(ctx, k); err != nil {
			return nil, err
		}
	}
	m.VirtualizeAll(ctx)
	m.window = append(m.window, v)
	return v, nil
}

// RealizeNext extends a non-empty window by one container at its end.
func (m *Manager) RealizeNext(ctx context.Context) (*ContainerView, error) {
	if len(m.window) == 0 {
		panic(errors.Violation("realizeNext: window is empty"))
	}
	if next, n := m.last()+1, m.ContainerCount(); next >= n {
		panic(errors.Violation("realizeNext: ordinal %d past container count %d", next, n))
	}
	return m.Realize(ctx, m.last()+1)
}

// RealizePrev extends a non-empty window by one container at its start.
func (m *Manager) RealizePrev(ctx context.Context) (*ContainerView, error) {
	if len(m.window) == 0 {
		panic(errors.Violation("realizePrev: window is empty"))
	}
	if m.first() == 0 {
		panic(errors.Violation("realizePrev: window already starts at 0"))
	}
	return m.Realize(ctx, m.first()-1)
}

// Virtualize removes v from an end of the window. A view that is current
// or pinned stays realized as an isolated view; any other view is unbound,
// removed from the panel and returned to the pool.
func (m *Manager) Virtualize(ctx context.Context, v *ContainerView) {
	i := -1
	if v != nil {
		i = m.windowIndex(v.Ordinal)
	}
	if i < 0 || m.window[i] != v {
		panic(errors.Violation("virtualize: view %v is not in the window", ordinalOf(v)))
	}
	if i != 0 && i != len(m.window)-1 {
		panic(errors.Violation("virtualize: ordinal %d is inside window [%d,%d]", v.Ordinal, m.first(), m.last()))
	}
	m.window = slices.Delete(m.window, i, i+1)
	if m.keep(v.Ordinal) {
		m.isolate(v)
		return
	}
	m.detach(ctx, v)
}

// VirtualizeAll empties the window. Current and pinned views stay
// realized.
func (m *Manager) VirtualizeAll(ctx context.Context) {
	for len(m.window) > 0 {
		m.Virtualize(ctx, m.window[len(m.window)-1])
	}
}

// Clear drops every realized container, isolated ones included, and
// forgets the current and pinned ordinals. It is used when the rows change
// structurally and container ordinals no longer mean the same rows.
func (m *Manager) Clear(ctx context.Context) {
	m.current = -1
	clear(m.pinned)
	m.VirtualizeAll(ctx)
	for len(m.isolated) > 0 {
		v := m.isolated[0]
		m.isolated = m.isolated[1:]
		m.detach(ctx, v)
	}
}

// SetCurrentContainer records k as the current container (-1 for none) and
// realizes it outside the window when needed. On error the previous
// current container is kept.
func (m *Manager) SetCurrentContainer(ctx context.Context, k int) error {
	if n := m.ContainerCount(); k >= n {
		panic(errors.Violation("setCurrent: ordinal %d out of range [0,%d)", k, n))
	}
	if k < 0 {
		k = -1
	}
	if k == m.current {
		return nil
	}
	if k >= 0 && m.View(k) == nil {
		v, err := m.attach(ctx, k)
		if err != nil {
			return err
		}
		m.isolate(v)
	}
	old := m.current
	m.current = k
	m.release(ctx, old)
	return nil
}

// SetPinned replaces the set of pinned ordinals, realizing newly pinned
// containers outside the window. On error the pins are unchanged.
func (m *Manager) SetPinned(ctx context.Context, ordinals ...int) error {
	n := m.ContainerCount()
	next := make(map[int]bool, len(ordinals))
	for _, k := range ordinals {
		if k < 0 || k >= n {
			panic(errors.Violation("pin: ordinal %d out of range [0,%d)", k, n))
		}
		next[k] = true
	}

	var added []*ContainerView
	for k := range next {
		if m.View(k) != nil {
			continue
		}
		v, err := m.attach(ctx, k)
		if err != nil {
			for _, a := range added {
				m.removeIsolated(ctx, a)
			}
			return err
		}
		m.isolate(v)
		added = append(added, v)
	}

	old := m.pinned
	m.pinned = next
	for k := range old {
		if !next[k] {
			m.release(ctx, k)
		}
	}
	return nil
}

// Pinned reports whether ordinal k is pinned.
func (m *Manager) Pinned(k int) bool { return m.pinned[k] }

// release drops the isolated view of k unless it must be kept.
func (m *Manager) release(ctx context.Context, k int) {
	if k < 0 || m.keep(k) {
		return
	}
	if i := m.isolatedIndex(k); i >= 0 {
		m.removeIsolated(ctx, m.isolated[i])
	}
}

func (m *Manager) removeIsolated(ctx context.Context, v *ContainerView) {
	i := slices.Index(m.isolated, v)
	m.isolated = slices.Delete(m.isolated, i, i+1)
	m.detach(ctx, v)
}

func (m *Manager) isolate(v *ContainerView) {
	i, _ := slices.BinarySearchFunc(m.isolated, v.Ordinal, func(e *ContainerView, k int) int { return e.Ordinal - k })
	m.isolated = slices.Insert(m.isolated, i, v)
}

// =============================================================================
// Binding and pooling
// =============================================================================

// attach binds a view to ordinal k and inserts it into the panel. On a row
// source error the view goes back to the pool and the panel is untouched.
func (m *Manager) attach(ctx context.Context, k int) (*ContainerView, error) {
	v, pooled := m.acquire()
	if err := m.bind(ctx, v, k); err != nil {
		m.free = append(m.free, v.slot)
		return nil, err
	}
	at := m.childIndex(k)
	m.children = slices.Insert(m.children, at, Child(v))
	m.panel.Insert(at, v)
	observability.Realize().OnRealize(ctx, k, pooled)
	return v, nil
}

// detach unbinds v, removes it from the panel and pools it.
func (m *Manager) detach(ctx context.Context, v *ContainerView) {
	at := slices.Index(m.children, Child(v))
	m.children = slices.Delete(m.children, at, at+1)
	m.panel.Remove(at)
	k := v.Ordinal
	m.unbind(v)
	m.free = append(m.free, v.slot)
	observability.Realize().OnVirtualize(ctx, k)
}

// childIndex returns the panel position of a container with ordinal k.
func (m *Manager) childIndex(k int) int {
	at := len(m.leading)
	for _, c := range m.children[len(m.leading):] {
		v, ok := c.(*ContainerView)
		if !ok || v.Ordinal > k {
			break
		}
		at++
	}
	return at
}

func (m *Manager) acquire() (*ContainerView, bool) {
	if n := len(m.free); n > 0 {
		slot := m.free[n-1]
		m.free = m.free[:n-1]
		return m.arena[slot], true
	}
	v := m.newView(len(m.arena))
	m.arena = append(m.arena, v)
	return v, false
}

func (m *Manager) newView(slot int) *ContainerView {
	rowBindings := m.tmpl.Rows()
	blocks := m.tmpl.Blocks()
	v := &ContainerView{
		slot:         slot,
		Ordinal:      -1,
		slots:        make([]RowView, m.tmpl.BlockDimension()),
		Blocks:       make([]template.Element, len(blocks)),
		BlockDesired: make([]grid.Size, len(blocks)),
		Lengths:      make([]float64, m.tmpl.BlockSpan().Len()),
	}
	for i := range v.slots {
		v.slots[i].Elements = make([]template.Element, len(rowBindings))
		v.slots[i].Desired = make([]grid.Size, len(rowBindings))
		for j, p := range rowBindings {
			v.slots[i].Elements[j] = template.NewElement(p.Binding)
		}
	}
	for j, p := range blocks {
		v.Blocks[j] = template.NewElement(p.Binding)
	}
	return v
}

func (m *Manager) bind(ctx context.Context, v *ContainerView, k int) error {
	dim := m.tmpl.BlockDimension()
	start := k * dim
	end := min(start+dim, m.rows.Len())

	presenters := make([]*rows.Presenter, 0, end-start)
	for i := start; i < end; i++ {
		p, err := m.rows.Presenter(ctx, i)
		if err != nil {
			return err
		}
		presenters = append(presenters, p)
	}

	v.Ordinal = k
	v.Reset()
	v.Rows = v.slots[:len(presenters)]
	rowBindings := m.tmpl.Rows()
	for i, p := range presenters {
		v.Rows[i].Presenter = p
		for j, rb := range rowBindings {
			rb.Binding.Setup(v.Rows[i].Elements[j], p)
		}
	}
	bc := v.BlockContext()
	for j, b := range m.tmpl.Blocks() {
		b.Binding.Setup(v.Blocks[j], bc)
	}
	return nil
}

func (m *Manager) unbind(v *ContainerView) {
	rowBindings := m.tmpl.Rows()
	for i := range v.Rows {
		for j, rb := range rowBindings {
			rb.Binding.Cleanup(v.Rows[i].Elements[j])
		}
		v.Rows[i].Presenter = nil
	}
	for j, b := range m.tmpl.Blocks() {
		b.Binding.Cleanup(v.Blocks[j])
	}
	v.Rows = v.slots[:0]
	v.Ordinal = -1
	v.Reset()
}

func ordinalOf(v *ContainerView) any {
	if v == nil {
		return nil
	}
	return v.Ordinal
}

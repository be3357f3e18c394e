package rows

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridview/pkg/errors"
)

// EventKind identifies a sequence event.
type EventKind int

const (
	// EventInserted reports Count presenters inserted at Ordinal.
	EventInserted EventKind = iota
	// EventRemoved reports Count presenters removed from Ordinal.
	EventRemoved
	// EventReset reports that the sequence was reloaded.
	EventReset
	// EventCurrentChanged reports the current row moved from Previous to
	// Ordinal. Either may be -1.
	EventCurrentChanged
	// EventFlagsChanged reports a selection, edit or expansion change on
	// the presenter at Ordinal.
	EventFlagsChanged
	// EventFailed reports an error raised while applying a source
	// notification. The sequence is unchanged.
	EventFailed
)

// Event is delivered to observers after the sequence has changed.
type Event struct {
	Kind     EventKind
	Ordinal  int
	Count    int
	Previous int
	Err      error
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecursive flattens a Hierarchical source depth-first instead of
// presenting its top-level rows only.
func WithRecursive(on bool) Option {
	return func(m *Manager) { m.recursive = on }
}

// WithLogger sets the logger for sequence changes.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager maintains the ordered sequence of presenters over a Source.
//
// In flat mode the sequence mirrors the source and presenters are created
// lazily on first access. In recursive mode top-level rows are loaded
// eagerly and expanded rows have their descendants spliced in depth-first
// pre-order. Expansion state is remembered by row ID, so re-expanding a
// row restores its expanded descendants.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	src       Source
	tree      Hierarchical
	recursive bool
	logger    *log.Logger

	seq      []*Presenter
	current  *Presenter
	expanded map[string]bool

	observers map[int]func(Event)
	nextObs   int
	unsub     func()
	notifyCtx context.Context
}

// NewManager creates a manager over src. Call Load before use.
func NewManager(src Source, opts ...Option) (*Manager, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "row source is nil")
	}
	m := &Manager{
		src:       src,
		logger:    log.New(io.Discard),
		expanded:  make(map[string]bool),
		observers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.recursive {
		tree, ok := src.(Hierarchical)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "recursive rows need a hierarchical source, got %T", src)
		}
		m.tree = tree
	}
	return m, nil
}

// Recursive reports whether the manager flattens a hierarchy.
func (m *Manager) Recursive() bool { return m.recursive }

// Source returns the underlying row source.
func (m *Manager) Source() Source { return m.src }

// Load reads the sequence from the source and subscribes to its changes on
// the first call. On error the previous sequence is kept.
func (m *Manager) Load(ctx context.Context) error {
	seq, err := m.load(ctx)
	if err != nil {
		return err
	}
	m.replace(seq)
	if m.unsub == nil {
		m.notifyCtx = context.WithoutCancel(ctx)
		m.unsub = m.src.Subscribe(m.onChange)
	}
	m.logger.Debug("rows loaded", "rows", len(seq), "recursive", m.recursive)
	return nil
}

// Close cancels the source subscription.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

func (m *Manager) load(ctx context.Context) ([]*Presenter, error) {
	n, err := m.src.Len(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRowSource, err, "read row count")
	}
	if !m.recursive {
		return make([]*Presenter, n), nil
	}
	seq := make([]*Presenter, 0, n)
	for i := 0; i < n; i++ {
		r, err := m.src.Row(ctx, i)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRowSource, err, "read row %d", i)
		}
		seq, err = m.appendTree(ctx, seq, r, 0)
		if err != nil {
			return nil, err
		}
	}
	renumber(seq, 0)
	return seq, nil
}

// appendTree appends r and, when r is remembered as expanded, its
// descendants in pre-order.
func (m *Manager) appendTree(ctx context.Context, seq []*Presenter, r Row, depth int) ([]*Presenter, error) {
	p := newPresenter(r, 0, depth)
	seq = append(seq, p)
	if !m.expanded[r.ID] {
		return seq, nil
	}
	p.set(flagExpanded, true)
	return m.appendChildren(ctx, seq, r.ID, depth+1)
}

func (m *Manager) appendChildren(ctx context.Context, seq []*Presenter, id string, depth int) ([]*Presenter, error) {
	children, err := m.tree.Children(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRowSource, err, "read children of %s", id)
	}
	for _, c := range children {
		if seq, err = m.appendTree(ctx, seq, c, depth); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func (m *Manager) replace(seq []*Presenter) {
	prev := m.currentOrdinal()
	m.seq = seq
	m.current = nil
	m.emit(Event{Kind: EventReset, Count: len(seq)})
	if prev >= 0 {
		m.emit(Event{Kind: EventCurrentChanged, Ordinal: -1, Previous: prev})
	}
}

// Len returns the length of the presented sequence.
func (m *Manager) Len() int { return len(m.seq) }

// Presenter returns the presenter at ordinal i, reading it from the source
// when it has not been loaded yet. An out-of-range ordinal is a contract
// violation.
func (m *Manager) Presenter(ctx context.Context, i int) (*Presenter, error) {
	m.check("Presenter", i)
	if p := m.seq[i]; p != nil {
		return p, nil
	}
	r, err := m.src.Row(ctx, i)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRowSource, err, "read row %d", i)
	}
	p := newPresenter(r, i, 0)
	m.seq[i] = p
	return p, nil
}

// Loaded returns the presenter at i if it has been loaded, or nil.
func (m *Manager) Loaded(i int) *Presenter {
	if i < 0 || i >= len(m.seq) {
		return nil
	}
	return m.seq[i]
}

func (m *Manager) check(op string, i int) {
	if i < 0 || i >= len(m.seq) {
		panic(errors.Violation("rows: %s(%d) out of range [0,%d)", op, i, len(m.seq)))
	}
}

// =============================================================================
// Hierarchy
// =============================================================================

// Expand splices the descendants of the row at ordinal i after it. It is a
// no-op for an already expanded row. On error the sequence is unchanged.
func (m *Manager) Expand(ctx context.Context, i int) error {
	m.requireRecursive("Expand")
	m.check("Expand", i)
	p := m.seq[i]
	if p.IsExpanded() {
		return nil
	}

	sub, err := m.appendChildren(ctx, nil, p.ID, p.Depth+1)
	if err != nil {
		return err
	}

	m.expanded[p.ID] = true
	p.set(flagExpanded, true)
	m.seq = slices.Insert(m.seq, i+1, sub...)
	renumber(m.seq, i+1)
	m.logger.Debug("expand", "ordinal", i, "descendants", len(sub))
	if len(sub) > 0 {
		m.emit(Event{Kind: EventInserted, Ordinal: i + 1, Count: len(sub)})
	}
	m.emit(Event{Kind: EventFlagsChanged, Ordinal: i})
	return nil
}

// Collapse removes the contiguous run of descendants after the row at
// ordinal i. Expansion state of the descendants is kept for the next
// Expand.
func (m *Manager) Collapse(i int) {
	m.requireRecursive("Collapse")
	m.check("Collapse", i)
	p := m.seq[i]
	if !p.IsExpanded() {
		return
	}
	end := m.subtreeEnd(i)
	p.set(flagExpanded, false)
	delete(m.expanded, p.ID)
	m.remove(i+1, end)
	m.logger.Debug("collapse", "ordinal", i, "descendants", end-i-1)
	m.emit(Event{Kind: EventFlagsChanged, Ordinal: i})
}

// Toggle expands a collapsed row and collapses an expanded one.
func (m *Manager) Toggle(ctx context.Context, i int) error {
	m.check("Toggle", i)
	if m.seq[i].IsExpanded() {
		m.Collapse(i)
		return nil
	}
	return m.Expand(ctx, i)
}

// subtreeEnd returns the ordinal after the last descendant of row i.
func (m *Manager) subtreeEnd(i int) int {
	depth := m.seq[i].Depth
	j := i + 1
	for j < len(m.seq) && m.seq[j].Depth > depth {
		j++
	}
	return j
}

func (m *Manager) requireRecursive(op string) {
	if !m.recursive {
		panic(errors.Violation("rows: %s on a flat sequence", op))
	}
}

// remove drops presenters [from, to) and renumbers the tail. A removed
// current row clears the current row.
func (m *Manager) remove(from, to int) {
	if to <= from {
		return
	}
	if c := m.current; c != nil && c.Ordinal >= from && c.Ordinal < to {
		m.current = nil
		c.set(flagCurrent|flagEditing, false)
		c.draft = nil
		defer m.emit(Event{Kind: EventCurrentChanged, Ordinal: -1, Previous: c.Ordinal})
	}
	m.seq = slices.Delete(m.seq, from, to)
	renumber(m.seq, from)
	m.emit(Event{Kind: EventRemoved, Ordinal: from, Count: to - from})
}

func renumber(seq []*Presenter, from int) {
	for k := from; k < len(seq); k++ {
		if p := seq[k]; p != nil {
			p.Ordinal = k
		}
	}
}

// =============================================================================
// Current row, editing and selection
// =============================================================================

// Current returns the ordinal of the current row, or -1.
func (m *Manager) Current() int { return m.currentOrdinal() }

// CurrentPresenter returns the current presenter, or nil.
func (m *Manager) CurrentPresenter() *Presenter { return m.current }

func (m *Manager) currentOrdinal() int {
	if m.current == nil {
		return -1
	}
	return m.current.Ordinal
}

// SetCurrent makes ordinal i the current row; -1 clears it. The previous
// current row loses its flag before the new one gains it and observers
// are notified once. A pending edit on the previous row is discarded.
func (m *Manager) SetCurrent(ctx context.Context, i int) error {
	var next *Presenter
	if i >= 0 {
		p, err := m.Presenter(ctx, i)
		if err != nil {
			return err
		}
		next = p
	}
	prev := m.current
	if prev == next {
		return nil
	}
	if prev != nil {
		prev.set(flagCurrent|flagEditing, false)
		prev.draft = nil
	}
	m.current = next
	if next != nil {
		next.set(flagCurrent, true)
	}
	prevOrdinal := -1
	if prev != nil {
		prevOrdinal = prev.Ordinal
	}
	m.emit(Event{Kind: EventCurrentChanged, Ordinal: i, Previous: prevOrdinal})
	return nil
}

// BeginEdit starts editing the row at ordinal i, which must be current.
func (m *Manager) BeginEdit(i int) {
	if m.current == nil || m.current.Ordinal != i {
		panic(errors.Violation("rows: BeginEdit(%d) on a row that is not current", i))
	}
	if m.current.IsEditing() {
		return
	}
	m.current.beginEdit()
	m.emit(Event{Kind: EventFlagsChanged, Ordinal: i})
}

// EndEdit finishes the edit on the current row at ordinal i. A committed
// edit is written back when the source implements Writer; if the write
// fails the row stays in edit mode and the error is returned.
func (m *Manager) EndEdit(ctx context.Context, i int, commit bool) error {
	p := m.current
	if p == nil || p.Ordinal != i || !p.IsEditing() {
		panic(errors.Violation("rows: EndEdit(%d) on a row that is not being edited", i))
	}
	if commit {
		if w, ok := m.src.(Writer); ok {
			if err := w.Update(ctx, p.ID, p.draft); err != nil {
				return errors.Wrap(errors.ErrCodeRowSource, err, "update row %s", p.ID)
			}
		}
	}
	p.endEdit(commit)
	m.emit(Event{Kind: EventFlagsChanged, Ordinal: i})
	return nil
}

// Select marks the row at ordinal i as selected.
func (m *Manager) Select(ctx context.Context, i int) error {
	p, err := m.Presenter(ctx, i)
	if err != nil {
		return err
	}
	if p.set(flagSelected, true) {
		m.emit(Event{Kind: EventFlagsChanged, Ordinal: i})
	}
	return nil
}

// Deselect clears the selection flag of the row at ordinal i.
func (m *Manager) Deselect(i int) {
	m.check("Deselect", i)
	if p := m.seq[i]; p != nil && p.set(flagSelected, false) {
		m.emit(Event{Kind: EventFlagsChanged, Ordinal: i})
	}
}

// SelectRange selects the rows between a and b inclusive, in either order.
func (m *Manager) SelectRange(ctx context.Context, a, b int) error {
	if a > b {
		a, b = b, a
	}
	for i := a; i <= b; i++ {
		if err := m.Select(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// ClearSelection deselects every loaded row.
func (m *Manager) ClearSelection() {
	for i, p := range m.seq {
		if p != nil && p.set(flagSelected, false) {
			m.emit(Event{Kind: EventFlagsChanged, Ordinal: i})
		}
	}
}

// Selected returns the ordinals of the selected rows in ascending order.
func (m *Manager) Selected() []int {
	var out []int
	for i, p := range m.seq {
		if p != nil && p.IsSelected() {
			out = append(out, i)
		}
	}
	return out
}

// =============================================================================
// Observers and source changes
// =============================================================================

// Observe registers fn for sequence events and returns a function that
// removes it.
func (m *Manager) Observe(fn func(Event)) func() {
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() { delete(m.observers, id) }
}

func (m *Manager) emit(ev Event) {
	ids := make([]int, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := m.observers[id]; ok {
			fn(ev)
		}
	}
}

func (m *Manager) onChange(ch Change) {
	if err := m.Apply(m.notifyCtx, ch); err != nil {
		m.logger.Warn("row source change failed", "kind", ch.Kind, "index", ch.Index, "err", err)
		m.emit(Event{Kind: EventFailed, Ordinal: ch.Index, Err: err})
	}
}

// Apply translates a source notification into a sequence splice. Errors
// leave the sequence unchanged.
func (m *Manager) Apply(ctx context.Context, ch Change) error {
	if ch.Kind == Reset {
		seq, err := m.load(ctx)
		if err != nil {
			return err
		}
		m.replace(seq)
		return nil
	}
	if m.recursive {
		return m.applyTree(ctx, ch)
	}

	switch ch.Kind {
	case Inserted:
		if ch.Index < 0 || ch.Index > len(m.seq) {
			return errors.New(errors.ErrCodeRowSource, "insert at %d outside [0,%d]", ch.Index, len(m.seq))
		}
		m.seq = slices.Insert(m.seq, ch.Index, nil)
		renumber(m.seq, ch.Index+1)
		m.emit(Event{Kind: EventInserted, Ordinal: ch.Index, Count: 1})
	case Removed:
		if ch.Index < 0 || ch.Index >= len(m.seq) {
			return errors.New(errors.ErrCodeRowSource, "remove at %d outside [0,%d)", ch.Index, len(m.seq))
		}
		m.remove(ch.Index, ch.Index+1)
	}
	return nil
}

func (m *Manager) applyTree(ctx context.Context, ch Change) error {
	if ch.Parent != "" {
		return m.reloadChildren(ctx, ch.Parent)
	}

	at, ok := m.topLevelOrdinal(ch.Index)
	switch ch.Kind {
	case Inserted:
		if !ok {
			return errors.New(errors.ErrCodeRowSource, "insert at top-level %d out of range", ch.Index)
		}
		r, err := m.src.Row(ctx, ch.Index)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRowSource, err, "read row %d", ch.Index)
		}
		sub, err := m.appendTree(ctx, nil, r, 0)
		if err != nil {
			return err
		}
		m.seq = slices.Insert(m.seq, at, sub...)
		renumber(m.seq, at)
		m.emit(Event{Kind: EventInserted, Ordinal: at, Count: len(sub)})
	case Removed:
		if !ok || at >= len(m.seq) {
			return errors.New(errors.ErrCodeRowSource, "remove at top-level %d out of range", ch.Index)
		}
		m.remove(at, m.subtreeEnd(at))
	}
	return nil
}

// topLevelOrdinal returns the ordinal of the index-th top-level row, or
// Len() when index equals the top-level count.
func (m *Manager) topLevelOrdinal(index int) (int, bool) {
	if index < 0 {
		return 0, false
	}
	n := 0
	for i, p := range m.seq {
		if p.Depth != 0 {
			continue
		}
		if n == index {
			return i, true
		}
		n++
	}
	return len(m.seq), n == index
}

// reloadChildren replaces the descendants of an expanded parent. Changes
// under collapsed or unknown parents are ignored.
func (m *Manager) reloadChildren(ctx context.Context, parent string) error {
	i := slices.IndexFunc(m.seq, func(p *Presenter) bool { return p.ID == parent })
	if i < 0 || !m.seq[i].IsExpanded() {
		return nil
	}
	p := m.seq[i]
	sub, err := m.appendChildren(ctx, nil, p.ID, p.Depth+1)
	if err != nil {
		return err
	}
	m.remove(i+1, m.subtreeEnd(i))
	m.seq = slices.Insert(m.seq, i+1, sub...)
	renumber(m.seq, i+1)
	if len(sub) > 0 {
		m.emit(Event{Kind: EventInserted, Ordinal: i + 1, Count: len(sub)})
	}
	return nil
}

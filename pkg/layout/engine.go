package layout

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/realize"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/template"
)

// Measurer reports the size an element wants within available. Either
// component of available may be +Inf.
type Measurer interface {
	Measure(el template.Element, available grid.Size) grid.Size
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(el template.Element, available grid.Size) grid.Size

// Measure calls f(el, available).
func (f MeasurerFunc) Measure(el template.Element, available grid.Size) grid.Size {
	return f(el, available)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for fill passes. Passes log at debug level.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScheduler sets where deferred refreshes are posted. Without one,
// Invalidate only marks the engine dirty and the host calls Refresh.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithMeasurer sets the element measurer. The default measures every
// element as empty.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// maxRestarts bounds how often a fill restarts because a newer scroll
// request arrived while it ran.
const maxRestarts = 8

// jumpViewports is how many viewports a relative scroll may cover before
// the engine jumps by estimate instead of realizing every container on the
// way.
const jumpViewports = 3

// Engine is the scroll and layout manager. It decides which containers
// are realized, measures tracks, and publishes viewport, extent and offset
// for a host scrollbar without measuring every container.
//
// An Engine runs on the host's event loop and is not safe for concurrent
// use. Mutations mark it dirty and post one deferred refresh; repeated
// invalidations collapse into that refresh and a synchronous Refresh or
// Measure cancels it.
type Engine struct {
	tmpl      *template.Template
	rows      *rows.Manager
	realize   *realize.Manager
	measurer  Measurer
	scheduler Scheduler
	logger    *log.Logger

	main, cross *grid.Tracks
	lengths     *lengths

	available grid.Size
	viewport  grid.Size
	extent    grid.Size
	offset    grid.Point
	geom      geometry

	pos        Position
	request    *scrollRequest
	generation uint64

	dirty       bool
	cancel      func()
	refreshing  bool
	deferred    bool
	initialized bool
	structural  bool
	keepLengths int
	err         error

	unobserve func()
}

// New creates an engine for tmpl presenting rm. The rows manager must be
// loaded and agree with the template on whether rows are recursive.
func New(tmpl *template.Template, rm *rows.Manager, opts ...Option) (*Engine, error) {
	if tmpl == nil || rm == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout: template and rows are required")
	}
	if tmpl.Recursive() != rm.Recursive() {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"layout: template recursive=%t but rows recursive=%t", tmpl.Recursive(), rm.Recursive())
	}
	e := &Engine{
		tmpl:     tmpl,
		rows:     rm,
		realize:  realize.NewManager(tmpl, rm),
		measurer: MeasurerFunc(func(template.Element, grid.Size) grid.Size { return grid.Size{} }),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		main:     tmpl.Tracks(tmpl.Main()),
		cross:    tmpl.Tracks(tmpl.Cross()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lengths = newLengths(e.containerCount())
	e.unobserve = rm.Observe(e.onRows)
	return e, nil
}

// Close stops observing the rows manager and cancels a pending refresh.
func (e *Engine) Close() {
	e.cancelPending()
	if e.unobserve != nil {
		e.unobserve()
		e.unobserve = nil
	}
}

// SetPanel attaches the host child collection. Realized children move to
// p in order.
func (e *Engine) SetPanel(p realize.Panel) { e.realize.SetPanel(p) }

// Template returns the engine's template.
func (e *Engine) Template() *template.Template { return e.tmpl }

// Rows returns the rows manager.
func (e *Engine) Rows() *rows.Manager { return e.rows }

// Realization returns the realization manager.
func (e *Engine) Realization() *realize.Manager { return e.realize }

// Tracks returns the measured tracks of axis a. Block tracks of the main
// axis hold their initial lengths; per-container lengths live on the
// container views.
func (e *Engine) Tracks(a grid.Axis) *grid.Tracks {
	if a == e.tmpl.Main() {
		return e.main
	}
	return e.cross
}

// Viewport returns the visible size from the last pass.
func (e *Engine) Viewport() grid.Size { return e.viewport }

// Extent returns the total content size from the last pass. The main
// component is estimated while some containers have never been measured.
func (e *Engine) Extent() grid.Size { return e.extent }

// Offset returns the scroll offset from the last pass.
func (e *Engine) Offset() grid.Point { return e.offset }

// Position returns the logical scroll position.
func (e *Engine) Position() Position { return e.pos }

// Dirty reports whether a refresh is pending.
func (e *Engine) Dirty() bool { return e.dirty }

func (e *Engine) containerCount() int { return e.tmpl.ContainerCount(e.rows.Len()) }

// =============================================================================
// Invalidation and refresh
// =============================================================================

// Invalidate marks the layout dirty and posts one deferred refresh. Calls
// made while a refresh runs are deferred until it finishes.
func (e *Engine) Invalidate() {
	e.dirty = true
	if e.refreshing {
		e.deferred = true
		return
	}
	e.post()
}

func (e *Engine) post() {
	if e.scheduler == nil || e.cancel != nil {
		return
	}
	e.cancel = e.scheduler.Post(func() {
		e.cancel = nil
		if err := e.Refresh(context.Background()); err != nil {
			e.logger.Error("deferred refresh failed", "err", err)
		}
	})
}

func (e *Engine) cancelPending() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Refresh runs a layout pass with the last available size and pushes
// current values into realized elements. A refresh requested from inside a
// running pass is deferred. An error raised by a row source notification
// since the last pass is returned first.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.refreshing {
		e.Invalidate()
		return nil
	}
	e.cancelPending()
	if err := e.takeErr(); err != nil {
		return err
	}
	return e.run(ctx)
}

// Measure lays the grid out in available and returns the desired size.
// Components of available may be +Inf, which sizes that axis to content.
// Called from inside a pass, it records available and defers the layout.
func (e *Engine) Measure(ctx context.Context, available grid.Size) (grid.Size, error) {
	e.available = available
	if e.refreshing {
		e.Invalidate()
		return e.desired(), nil
	}
	e.cancelPending()
	if err := e.takeErr(); err != nil {
		return grid.Size{}, err
	}
	if err := e.run(ctx); err != nil {
		return grid.Size{}, err
	}
	return e.desired(), nil
}

// EnsureInitialized runs the first layout pass if none has run yet.
func (e *Engine) EnsureInitialized(ctx context.Context) error {
	if e.initialized {
		return nil
	}
	return e.Refresh(ctx)
}

func (e *Engine) takeErr() error {
	err := e.err
	e.err = nil
	return err
}

func (e *Engine) run(ctx context.Context) error {
	e.refreshing = true
	err := e.pass(ctx)
	e.refreshing = false
	e.dirty = false
	e.initialized = true

	if e.deferred {
		e.deferred = false
		e.dirty = true
		e.post()
	}
	return err
}

func (e *Engine) desired() grid.Size {
	var d grid.Size
	for _, a := range []grid.Axis{grid.X, grid.Y} {
		if e.tmpl.SizeToContent(a) || e.available.IsInf(a) {
			d = d.With(a, e.extent.Get(a))
		} else {
			d = d.With(a, e.available.Get(a))
		}
	}
	return d
}

// =============================================================================
// Row events
// =============================================================================

func (e *Engine) onRows(ev rows.Event) {
	dim := e.tmpl.BlockDimension()
	switch ev.Kind {
	case rows.EventInserted, rows.EventRemoved:
		e.markStructural(ev.Ordinal / dim)
	case rows.EventReset:
		e.markStructural(0)
	case rows.EventFailed:
		e.err = ev.Err
	}
	e.Invalidate()
}

func (e *Engine) markStructural(from int) {
	if !e.structural || from < e.keepLengths {
		e.keepLengths = from
	}
	e.structural = true
}

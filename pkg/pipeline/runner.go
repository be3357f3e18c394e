package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridview/pkg/cache"
	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/layout"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/snapshot"
)

// Runner opens configured grids. Remote row sources share its page cache.
//
// The Runner keeps no per-run state: every Open returns an independent
// Session, so one Runner can serve several hosts.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Dispatch, when set, runs remote change notifications on the host's
	// event loop. Without it a session queues them and applies them at
	// the start of each step.
	Dispatch func(func())
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Session is one opened grid: its engine, rows and the resources behind
// them.
type Session struct {
	Config *Config
	Engine *layout.Engine
	Rows   *rows.Manager

	logger   *log.Logger
	openTime time.Duration
	deliver  func() int
	close    func()
}

// deliverer is a row source that queues change notifications until the
// host asks for them.
type deliverer interface {
	Deliver() int
}

// Open builds the template, opens the source, applies the initial row
// state and runs the first layout pass in the configured viewport.
// opts are appended to the engine options, so a host may replace the
// measurer or add a scheduler.
func (r *Runner) Open(ctx context.Context, cfg *Config, opts ...layout.Option) (_ *Session, err error) {
	start := time.Now()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	tmpl, err := BuildTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}

	src, closeSrc, err := r.OpenSource(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			closeSrc()
		}
	}()

	rm, err := rows.NewManager(src, rows.WithRecursive(cfg.Template.Recursive), rows.WithLogger(r.Logger))
	if err != nil {
		return nil, err
	}
	if err := rm.Load(ctx); err != nil {
		rm.Close()
		return nil, err
	}

	engineOpts := append([]layout.Option{
		layout.WithMeasurer(TextMeasurer()),
		layout.WithLogger(r.Logger),
	}, opts...)
	e, err := layout.New(tmpl, rm, engineOpts...)
	if err != nil {
		rm.Close()
		return nil, err
	}

	s := &Session{Config: cfg, Engine: e, Rows: rm, logger: r.Logger}
	if d, ok := src.(deliverer); ok && r.Dispatch == nil {
		s.deliver = d.Deliver
	}
	s.close = func() {
		e.Close()
		rm.Close()
		closeSrc()
	}
	defer func() {
		if err != nil {
			e.Close()
			rm.Close()
		}
	}()
	defer func() { err = errors.Recover(recover(), err) }()

	for _, i := range cfg.Expand {
		if err := rm.Expand(ctx, i); err != nil {
			return nil, err
		}
	}
	if cfg.Current != nil {
		if err := rm.SetCurrent(ctx, *cfg.Current); err != nil {
			return nil, err
		}
	}
	for _, i := range cfg.Select {
		if err := rm.Select(ctx, i); err != nil {
			return nil, err
		}
	}
	if _, err := e.Measure(ctx, cfg.Viewport.Size()); err != nil {
		return nil, err
	}
	s.openTime = time.Since(start)

	r.Logger.Info("opened grid",
		"source", cfg.Source.Kind,
		"rows", rm.Len(),
		"containers", e.Realization().ContainerCount(),
		"duration", s.openTime)
	return s, nil
}

// Close releases the engine, the row manager and the source.
func (s *Session) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

// Apply issues one step. Scroll steps only request a scroll; the next
// refresh carries it out. Row ordinals out of range are contract
// violations and panic.
func (s *Session) Apply(ctx context.Context, st Step) error {
	e, rm := s.Engine, s.Rows
	switch st.Kind {
	case StepBy:
		e.ScrollBy(st.DX, st.DY)
	case StepTo:
		e.ScrollTo(st.Track, st.Fraction)
	case StepContainer:
		e.ScrollToContainer(st.Container, st.Fraction)
	case StepIntoView:
		e.ScrollIntoView(st.Container)
	case StepCurrent:
		e.ScrollToCurrent()
	case StepSetCurrent:
		return rm.SetCurrent(ctx, st.Row)
	case StepExpand:
		return rm.Expand(ctx, st.Row)
	case StepCollapse:
		rm.Collapse(st.Row)
	case StepSelect:
		return rm.Select(ctx, st.Row)
	case StepEdit:
		if err := rm.SetCurrent(ctx, st.Row); err != nil {
			return err
		}
		rm.BeginEdit(st.Row)
		rm.CurrentPresenter().SetValue(st.Field, st.Value)
		return rm.EndEdit(ctx, st.Row, true)
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown step kind %q", st.Kind)
	}
	return nil
}

// Sync applies the remote changes queued since the last step and
// returns how many there were.
func (s *Session) Sync() int {
	if s.deliver == nil {
		return 0
	}
	return s.deliver()
}

// Step applies queued remote changes, then st, and runs the layout pass
// they requested.
func (s *Session) Step(ctx context.Context, st Step) (err error) {
	defer func() { err = errors.Recover(recover(), err) }()
	if n := s.Sync(); n > 0 {
		s.logger.Debug("applied remote changes", "count", n)
	}
	if err := s.Apply(ctx, st); err != nil {
		return err
	}
	return s.Engine.Refresh(ctx)
}

// Run applies steps in order. The first failing step stops the run
// and its error keeps the step's code.
func (s *Session) Run(ctx context.Context, steps []Step) error {
	for i, st := range steps {
		if err := s.Step(ctx, st); err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return errors.Wrap(code, err, "step %d (%s)", i, st.Kind)
		}
	}
	return nil
}

// Snapshot captures the engine state.
func (s *Session) Snapshot() snapshot.Snapshot {
	return snapshot.Capture(s.Engine, snapshot.Options{Placements: s.Config.Placements})
}

// Execute opens cfg, runs its steps and returns the final snapshot.
func (r *Runner) Execute(ctx context.Context, cfg *Config) (*Result, error) {
	sess, err := r.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	layoutStart := time.Now()
	if err := sess.Run(ctx, cfg.Steps); err != nil {
		return nil, err
	}

	result := &Result{Snapshot: sess.Snapshot()}
	result.Stats = Stats{
		Rows:       sess.Rows.Len(),
		Realized:   len(sess.Engine.Realization().Realized()),
		Allocated:  sess.Engine.Realization().Allocated(),
		OpenTime:   sess.openTime,
		LayoutTime: time.Since(layoutStart),
	}

	r.Logger.Info("ran steps",
		"steps", len(cfg.Steps),
		"realized", result.Stats.Realized,
		"duration", result.Stats.LayoutTime)
	return result, nil
}

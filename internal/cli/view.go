package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/layout"
	"github.com/matzehuels/gridview/pkg/pipeline"
	"github.com/matzehuels/gridview/pkg/template"
)

// statusLines is the number of terminal lines below the grid.
const statusLines = 1

// crossStep is how far h/l scroll along the cross axis.
const crossStep = 4

// Cell styles
var (
	cellCurrentStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Reverse(true)
	cellSelectedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	cellEditingStyle  = lipgloss.NewStyle().Foreground(colorYellow).Underline(true)
	cellBlockStyle    = lipgloss.NewStyle().Foreground(colorGray)
	cellScalarStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	statusStyle       = lipgloss.NewStyle().Foreground(colorDim)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// viewCommand creates the view command for browsing a grid interactively.
func (c *CLI) viewCommand() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "view [config]",
		Short: "Browse a grid in the terminal",
		Long: `Browse a grid in the terminal.

Keys:
  j/k, ↓/↑      move the current row
  pgdn/pgup     scroll a page
  g/G           jump to the first/last container
  h/l, ←/→      scroll along the cross axis
  space         expand or collapse the current row (recursive grids)
  enter         select or deselect the current row
  e             edit the current row (enter commits, esc cancels)
  q             quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), cfg, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runView opens cfg with a bubbletea program as the host event loop.
func (c *CLI) runView(ctx context.Context, cfg *pipeline.Config, flags configFlags) error {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	vp := viewportFor(flags, cfg.Viewport.Size())
	cfg.Viewport.Width, cfg.Viewport.Height = vp.Width, vp.Height

	// Changes that arrive before the program runs wait in the queue.
	var program atomic.Pointer[tea.Program]
	queue := &layout.Queue{}
	runner := c.newRunner(flags.noCache)
	runner.Dispatch = func(fn func()) {
		if p := program.Load(); p != nil {
			p.Send(dispatchMsg{fn: fn})
			return
		}
		queue.Post(fn)
	}

	sess, err := runner.Open(ctx, cfg, layout.WithScheduler(queue))
	if err != nil {
		return err
	}
	defer sess.Close()

	p := tea.NewProgram(newViewModel(ctx, sess, queue), tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if m, ok := final.(viewModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

// =============================================================================
// viewModel - bubbletea host of a grid session
// =============================================================================

// refreshMsg asks the model to run the engine's deferred refreshes.
type refreshMsg struct{}

// dispatchMsg carries a remote change notification onto the event loop.
type dispatchMsg struct{ fn func() }

// viewModel is the bubbletea model of the view command. The session is
// shared by every copy of the model; only the edit state is per value.
type viewModel struct {
	ctx   context.Context
	sess  *pipeline.Session
	queue *layout.Queue

	// field is the row value e edits, from the first row binding.
	field   string
	binding string

	editing bool
	buffer  string

	status   string
	err      error
	quitting bool
}

func newViewModel(ctx context.Context, sess *pipeline.Session, queue *layout.Queue) viewModel {
	m := viewModel{ctx: ctx, sess: sess, queue: queue, field: pipeline.DefaultField}
	for _, b := range sess.Config.Template.Bindings {
		if b.Class == pipeline.ClassRow {
			m.field, m.binding = b.Field, b.Name
			break
		}
	}
	return m
}

func (m viewModel) Init() tea.Cmd {
	return m.flush()
}

// flush returns a command that drains the scheduler queue when the engine
// posted a refresh.
func (m viewModel) flush() tea.Cmd {
	if m.queue.Len() == 0 {
		return nil
	}
	return func() tea.Msg { return refreshMsg{} }
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.queue.Run()
	case dispatchMsg:
		msg.fn()
	case tea.WindowSizeMsg:
		size := grid.Size{Width: float64(msg.Width), Height: float64(max(msg.Height-statusLines, 1))}
		if _, err := m.sess.Engine.Measure(m.ctx, size); err != nil {
			m.status, m.err = errors.UserMessage(err), err
		}
	case tea.KeyMsg:
		if m.editing {
			return m.updateEdit(msg)
		}
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		m.status = ""
		m.do(func() error { return m.key(msg.String()) })
	}
	return m, m.flush()
}

// do runs fn and keeps its error, or the violation it panics with, for
// the status line.
func (m *viewModel) do(fn func() error) {
	err := func() (err error) {
		defer func() { err = errors.Recover(recover(), err) }()
		return fn()
	}()
	if err != nil {
		m.status = errors.UserMessage(err)
	}
}

// key handles a navigation key.
func (m *viewModel) key(k string) error {
	e, rm := m.sess.Engine, m.sess.Rows
	page := e.Viewport().Get(e.Template().Main())

	switch k {
	case "j", "down":
		return m.moveCurrent(1)
	case "k", "up":
		return m.moveCurrent(-1)
	case "pgdown", "f":
		m.scrollMain(page)
	case "pgup", "b":
		m.scrollMain(-page)
	case "l", "right":
		m.scrollCross(crossStep)
	case "h", "left":
		m.scrollCross(-crossStep)
	case "g", "home":
		if e.Realization().ContainerCount() > 0 {
			e.ScrollToContainer(0, 0)
		}
	case "G", "end":
		if n := e.Realization().ContainerCount(); n > 0 {
			e.ScrollToContainer(n-1, 0)
		}
	case " ":
		if cur := rm.Current(); cur >= 0 && rm.Recursive() {
			return rm.Toggle(m.ctx, cur)
		}
	case "enter":
		cur := rm.Current()
		if cur < 0 {
			return nil
		}
		if rm.CurrentPresenter().IsSelected() {
			rm.Deselect(cur)
			return nil
		}
		return rm.Select(m.ctx, cur)
	case "e":
		cur := rm.Current()
		if cur < 0 {
			return nil
		}
		rm.BeginEdit(cur)
		m.editing = true
		m.buffer = ""
		if v := rm.CurrentPresenter().Value(m.field); v != nil {
			m.buffer = fmt.Sprint(v)
		}
	}
	return nil
}

func (m *viewModel) moveCurrent(delta int) error {
	rm := m.sess.Rows
	if rm.Len() == 0 {
		return nil
	}
	next := rm.Current() + delta
	if rm.Current() < 0 {
		next = 0
	}
	next = min(max(next, 0), rm.Len()-1)
	if err := rm.SetCurrent(m.ctx, next); err != nil {
		return err
	}
	m.sess.Engine.ScrollToCurrent()
	return nil
}

func (m *viewModel) scrollMain(d float64) {
	if m.sess.Engine.Template().Main() == grid.X {
		m.sess.Engine.ScrollBy(d, 0)
	} else {
		m.sess.Engine.ScrollBy(0, d)
	}
}

func (m *viewModel) scrollCross(d float64) {
	if m.sess.Engine.Template().Main() == grid.X {
		m.sess.Engine.ScrollBy(0, d)
	} else {
		m.sess.Engine.ScrollBy(d, 0)
	}
}

// updateEdit handles keys while the current row is being edited.
func (m viewModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rm := m.sess.Rows
	cur := rm.Current()
	switch msg.Type {
	case tea.KeyEnter:
		m.do(func() error {
			rm.CurrentPresenter().SetValue(m.field, m.buffer)
			return rm.EndEdit(m.ctx, cur, true)
		})
		m.editing = rm.CurrentPresenter() != nil && rm.CurrentPresenter().IsEditing()
	case tea.KeyEsc, tea.KeyCtrlC:
		m.do(func() error { return rm.EndEdit(m.ctx, cur, false) })
		m.editing = false
	case tea.KeyBackspace:
		if r := []rune(m.buffer); len(r) > 0 {
			m.buffer = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.buffer += string(msg.Runes)
	}
	return m, m.flush()
}

// =============================================================================
// Rendering
// =============================================================================

func (m viewModel) View() string {
	if m.quitting {
		return ""
	}
	e := m.sess.Engine
	vp := e.Viewport()
	cv := newCanvas(int(vp.Width), int(vp.Height))
	for _, p := range e.Arrange() {
		if !p.Visible() {
			continue
		}
		c, ok := p.Element.(*pipeline.Cell)
		if !ok {
			continue
		}
		text := c.Line()
		if m.editing && c.Editing && c.Binding == m.binding {
			text = strings.Repeat("  ", c.Depth) + m.buffer + "▏"
		}
		cv.draw(p.Rect, p.Clip, text, cellStyle(c))
	}

	var b strings.Builder
	b.WriteString(cv.String())
	b.WriteString(m.statusLine())
	return b.String()
}

func cellStyle(c *pipeline.Cell) *lipgloss.Style {
	switch {
	case c.Class == template.ClassScalar:
		return &cellScalarStyle
	case c.Class == template.ClassBlock:
		return &cellBlockStyle
	case c.Editing:
		return &cellEditingStyle
	case c.Current:
		return &cellCurrentStyle
	case c.Selected:
		return &cellSelectedStyle
	}
	return nil
}

func (m viewModel) statusLine() string {
	if m.status != "" {
		return statusErrorStyle.Render(m.status)
	}
	rm := m.sess.Rows
	if m.editing {
		return statusStyle.Render(fmt.Sprintf("editing row %d %s: ⏎ commit  esc cancel", rm.Current(), m.field))
	}
	pos := m.sess.Engine.Position()
	parts := []string{
		fmt.Sprintf("row %d/%d", rm.Current()+1, rm.Len()),
		fmt.Sprintf("%s %d", pos.Region, pos.Container),
	}
	if sel := len(rm.Selected()); sel > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", sel))
	}
	parts = append(parts, "j/k move  ⏎ select  e edit  q quit")
	return statusStyle.Render(strings.Join(parts, " · "))
}

// canvas is a grid of terminal cells the placements are drawn into.
type canvas struct {
	w, h  int
	cells [][]canvasCell
}

type canvasCell struct {
	r     rune
	cont  bool // second column of a wide rune
	style *lipgloss.Style
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: max(w, 0), h: max(h, 0)}
	c.cells = make([][]canvasCell, c.h)
	for y := range c.cells {
		c.cells[y] = make([]canvasCell, c.w)
		for x := range c.cells[y] {
			c.cells[y][x].r = ' '
		}
	}
	return c
}

// draw writes text on the first line of rect, keeping to clip. The clipped
// part of that line is painted with style.
func (c *canvas) draw(rect, clip grid.Rect, text string, style *lipgloss.Style) {
	y := round(rect.Y)
	cy0, cy1 := round(clip.Y), round(clip.Y+clip.Height)
	if y < cy0 || y >= cy1 || y < 0 || y >= c.h {
		return
	}
	x0 := round(rect.X)
	cx0 := max(round(clip.X), 0)
	cx1 := min(round(clip.X+clip.Width), c.w)
	line := c.cells[y]
	for x := max(cx0, x0); x < min(cx1, round(rect.X+rect.Width)); x++ {
		line[x] = canvasCell{r: ' ', style: style}
	}

	x := x0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x >= cx1 {
			break
		}
		if x >= cx0 && x+rw <= cx1 {
			line[x] = canvasCell{r: r, style: style}
			for i := 1; i < rw; i++ {
				line[x+i] = canvasCell{cont: true, style: style}
			}
		}
		x += rw
	}
}

// String renders the canvas, one styled run per change of style.
func (c *canvas) String() string {
	var b strings.Builder
	for _, line := range c.cells {
		var run strings.Builder
		var style *lipgloss.Style
		emit := func() {
			if run.Len() == 0 {
				return
			}
			if style != nil {
				b.WriteString(style.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for _, cell := range line {
			if cell.style != style {
				emit()
				style = cell.style
			}
			if !cell.cont {
				run.WriteRune(cell.r)
			}
		}
		emit()
		b.WriteString("\n")
	}
	return b.String()
}

func round(v float64) int { return int(math.Round(v)) }

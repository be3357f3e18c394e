package rows

import (
	"maps"

	"github.com/matzehuels/gridview/pkg/errors"
)

type flags uint8

const (
	flagCurrent flags = 1 << iota
	flagSelected
	flagEditing
	flagExpanded
)

// Presenter is the logical state of one row in the presented sequence.
//
// A presenter is created when its row enters the sequence and dropped when
// the row is removed or its parent collapses. Presenters are never rebound
// to another row. Views hold presenters; presenters hold no view.
type Presenter struct {
	ID      string
	Ordinal int
	Depth   int

	row   Row
	draft map[string]any
	flags flags
}

func newPresenter(r Row, ordinal, depth int) *Presenter {
	return &Presenter{ID: r.ID, Ordinal: ordinal, Depth: depth, row: r}
}

// Row returns the row as last read from the source or committed.
func (p *Presenter) Row() Row { return p.row }

// Value returns a value, reading the pending edit while editing.
func (p *Presenter) Value(key string) any {
	if p.draft != nil {
		if v, ok := p.draft[key]; ok {
			return v
		}
	}
	return p.row.Value(key)
}

// SetValue stages a value in the pending edit.
func (p *Presenter) SetValue(key string, v any) {
	if !p.IsEditing() {
		panic(errors.Violation("row %d: SetValue while not editing", p.Ordinal))
	}
	p.draft[key] = v
}

func (p *Presenter) IsCurrent() bool  { return p.flags&flagCurrent != 0 }
func (p *Presenter) IsSelected() bool { return p.flags&flagSelected != 0 }
func (p *Presenter) IsEditing() bool  { return p.flags&flagEditing != 0 }
func (p *Presenter) IsExpanded() bool { return p.flags&flagExpanded != 0 }

func (p *Presenter) set(f flags, on bool) bool {
	old := p.flags
	if on {
		p.flags |= f
	} else {
		p.flags &^= f
	}
	return old != p.flags
}

func (p *Presenter) beginEdit() {
	p.draft = maps.Clone(p.row.Values)
	if p.draft == nil {
		p.draft = make(map[string]any)
	}
	p.set(flagEditing, true)
}

func (p *Presenter) endEdit(commit bool) {
	if commit {
		p.row.Values = p.draft
	}
	p.draft = nil
	p.set(flagEditing, false)
}

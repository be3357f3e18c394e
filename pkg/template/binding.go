package template

import "github.com/matzehuels/gridview/pkg/rows"

// Element is a host visual element created by a binding. The engine never
// looks inside it; it only hands it to the host measurer and panel.
type Element any

// Class is the placement class of a binding.
type Class int

const (
	// ClassScalar bindings have one instance, independent of row count.
	ClassScalar Class = iota
	// ClassBlock bindings have one instance per container.
	ClassBlock
	// ClassRow bindings have one instance per data row.
	ClassRow
)

func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "scalar"
	case ClassBlock:
		return "block"
	default:
		return "row"
	}
}

// Binding is one of *Scalar, *Block or *Row. The set is closed.
type Binding interface {
	Name() string
	Class() Class
	create() Element
}

// BlockContext is what a block binding sees of its container.
type BlockContext struct {
	Ordinal int
	Rows    []*rows.Presenter
}

// Scalar binds an element that exists once per grid.
type Scalar struct {
	ID        string
	New       func() Element
	OnSetup   func(Element)
	OnRefresh func(Element)
	OnCleanup func(Element)
}

func (s *Scalar) Name() string    { return s.ID }
func (s *Scalar) Class() Class    { return ClassScalar }
func (s *Scalar) create() Element { return s.New() }

// Setup runs once after the element is created.
func (s *Scalar) Setup(el Element) {
	if s.OnSetup != nil {
		s.OnSetup(el)
	}
}

// Refresh pushes current values into the element.
func (s *Scalar) Refresh(el Element) {
	if s.OnRefresh != nil {
		s.OnRefresh(el)
	}
}

// Cleanup runs before the element is discarded.
func (s *Scalar) Cleanup(el Element) {
	if s.OnCleanup != nil {
		s.OnCleanup(el)
	}
}

// Block binds an element that exists once per container, such as a block
// header or footer. As with [Row], OnSetup must bind every value the
// element displays.
type Block struct {
	ID        string
	New       func() Element
	OnSetup   func(Element, BlockContext)
	OnRefresh func(Element, BlockContext)
	OnCleanup func(Element)
}

func (b *Block) Name() string    { return b.ID }
func (b *Block) Class() Class    { return ClassBlock }
func (b *Block) create() Element { return b.New() }

// Setup runs when the element is bound to a container.
func (b *Block) Setup(el Element, bc BlockContext) {
	if b.OnSetup != nil {
		b.OnSetup(el, bc)
	}
}

// Refresh pushes current values into the element.
func (b *Block) Refresh(el Element, bc BlockContext) {
	if b.OnRefresh != nil {
		b.OnRefresh(el, bc)
	}
}

// Cleanup runs when the element is unbound and pooled.
func (b *Block) Cleanup(el Element) {
	if b.OnCleanup != nil {
		b.OnCleanup(el)
	}
}

// Row binds an element that exists once per data row.
//
// A layout pass pushes values through OnRefresh before it fills the
// viewport, so an element realized during the pass only sees OnSetup
// until the next pass. OnSetup must therefore bind every value the
// element displays and measures; OnRefresh may repeat that work.
type Row struct {
	ID        string
	New       func() Element
	OnSetup   func(Element, *rows.Presenter)
	OnRefresh func(Element, *rows.Presenter)
	OnCleanup func(Element)
}

func (r *Row) Name() string    { return r.ID }
func (r *Row) Class() Class    { return ClassRow }
func (r *Row) create() Element { return r.New() }

// Setup runs when the element is bound to a row.
func (r *Row) Setup(el Element, p *rows.Presenter) {
	if r.OnSetup != nil {
		r.OnSetup(el, p)
	}
}

// Refresh pushes the row's current values into the element.
func (r *Row) Refresh(el Element, p *rows.Presenter) {
	if r.OnRefresh != nil {
		r.OnRefresh(el, p)
	}
}

// Cleanup runs when the element is unbound and pooled.
func (r *Row) Cleanup(el Element) {
	if r.OnCleanup != nil {
		r.OnCleanup(el)
	}
}

// NewElement creates an element for b.
func NewElement(b Binding) Element { return b.create() }

func hasFactory(b Binding) bool {
	switch b := b.(type) {
	case *Scalar:
		return b != nil && b.New != nil
	case *Block:
		return b != nil && b.New != nil
	case *Row:
		return b != nil && b.New != nil
	}
	return false
}

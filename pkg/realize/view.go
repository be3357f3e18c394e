package realize

import (
	"github.com/matzehuels/gridview/pkg/grid"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/template"
)

// Panel is the host's ordered child collection. The manager keeps it in
// the order leading scalars, containers by ascending ordinal, trailing
// scalars.
type Panel interface {
	Insert(i int, c Child)
	Remove(i int)
}

// Child is a *ScalarView or a *ContainerView.
type Child interface {
	isChild()
}

// ScalarView is the realized element of a scalar binding.
type ScalarView struct {
	Placement template.Placement[*template.Scalar]
	Element   template.Element
	Leading   bool
	Desired   grid.Size
}

// RowView holds the elements of one row slot of a container, one per row
// binding in template order.
type RowView struct {
	Presenter *rows.Presenter
	Elements  []template.Element
	Desired   []grid.Size
}

// ContainerView is a pooled container: one block of rows with its block
// elements. Views are owned by the manager's arena and rebound to other
// ordinals without reallocating elements.
type ContainerView struct {
	slot    int
	Ordinal int

	// Rows is the bound prefix of the view's row slots; a trailing block
	// may hold fewer rows than the block dimension.
	Rows  []RowView
	slots []RowView

	Blocks       []template.Element
	BlockDesired []grid.Size

	// Lengths holds the measured main-axis length of each block track;
	// Length is their sum. Both are valid while Measured is set.
	Lengths  []float64
	Length   float64
	Measured bool
}

func (*ScalarView) isChild()    {}
func (*ContainerView) isChild() {}

// Slot returns the view's arena index.
func (v *ContainerView) Slot() int { return v.slot }

// BlockContext returns what block bindings see of the view.
func (v *ContainerView) BlockContext() template.BlockContext {
	ps := make([]*rows.Presenter, len(v.Rows))
	for i, r := range v.Rows {
		ps[i] = r.Presenter
	}
	return template.BlockContext{Ordinal: v.Ordinal, Rows: ps}
}

// Reset clears the measured state.
func (v *ContainerView) Reset() {
	clear(v.Lengths)
	v.Length = 0
	v.Measured = false
	clear(v.BlockDesired)
	for i := range v.slots {
		clear(v.slots[i].Desired)
	}
}

package template

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
)

type label struct{ text string }

func newLabel() Element { return &label{} }

func row(id string) *Row       { return &Row{ID: id, New: newLabel} }
func block(id string) *Block   { return &Block{ID: id, New: newLabel} }
func scalar(id string) *Scalar { return &Scalar{ID: id, New: newLabel} }

// listBuilder is a header row, one auto data row and a footer row over
// two fixed columns.
func listBuilder() *Builder {
	return NewBuilder().
		AddColumns(grid.Fixed(100), grid.Fixed(100)).
		AddRows(grid.Fixed(20), grid.Auto(), grid.Fixed(20)).
		AddBinding(grid.Span(0, 0, 1, 0), scalar("header")).
		AddBinding(grid.Cell(0, 1), row("name")).
		AddBinding(grid.Cell(1, 1), row("value")).
		AddBinding(grid.Span(0, 2, 1, 2), scalar("footer"))
}

func TestSealDerivesRanges(t *testing.T) {
	tmpl, err := listBuilder().Seal()
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if got, want := tmpl.RowRange(), (grid.GridRange{Left: 0, Top: 1, Right: 2, Bottom: 2}); got != want {
		t.Errorf("RowRange() = %v, want %v", got, want)
	}
	if got, want := tmpl.BlockSpan(), (grid.Range{Start: 1, End: 2}); got != want {
		t.Errorf("BlockSpan() = %v, want %v", got, want)
	}
	if got, want := tmpl.Head(), (grid.Range{Start: 0, End: 1}); got != want {
		t.Errorf("Head() = %v, want %v", got, want)
	}
	if got, want := tmpl.Tail(), (grid.Range{Start: 2, End: 3}); got != want {
		t.Errorf("Tail() = %v, want %v", got, want)
	}

	names := func(ps []Placement[*Scalar]) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Binding.Name())
		}
		return out
	}
	if diff := cmp.Diff([]string{"header"}, names(tmpl.LeadingScalars())); diff != "" {
		t.Errorf("LeadingScalars (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"footer"}, names(tmpl.TrailingScalars())); diff != "" {
		t.Errorf("TrailingScalars (-want +got):\n%s", diff)
	}
	if tmpl.Main() != grid.Y || tmpl.Cross() != grid.X {
		t.Errorf("vertical template axes = %v/%v", tmpl.Main(), tmpl.Cross())
	}
}

func TestBlockRangeIncludesBlockBindings(t *testing.T) {
	tmpl, err := NewBuilder().
		AddColumns(grid.Fixed(50), grid.Fixed(50)).
		AddRows(grid.Fixed(10), grid.Auto(), grid.Fixed(5)).
		AddBinding(grid.Span(0, 0, 1, 0), block("group")).
		AddBinding(grid.Cell(0, 1), row("a")).
		AddBinding(grid.Cell(1, 1), row("b")).
		SetBlockDimension(2).
		Seal()
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if got, want := tmpl.BlockSpan(), (grid.Range{Start: 0, End: 2}); got != want {
		t.Errorf("BlockSpan() = %v, want %v", got, want)
	}
	if got := tmpl.ContainerCount(5); got != 3 {
		t.Errorf("ContainerCount(5) = %d, want 3", got)
	}
	if !tmpl.Flowing() {
		t.Error("block dimension 2 should flow")
	}
}

func TestHorizontalAxes(t *testing.T) {
	tmpl, err := NewBuilder().
		SetOrientation(Horizontal).
		AddColumns(grid.Fixed(30), grid.Auto()).
		AddRows(grid.Star(1)).
		AddBinding(grid.Cell(0, 0), scalar("caption")).
		AddBinding(grid.Cell(1, 0), row("cell")).
		SetFrozen(1, 0, 0, 0).
		Seal()
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if tmpl.Main() != grid.X {
		t.Errorf("Main() = %v, want x", tmpl.Main())
	}
	if tmpl.FrozenHead() != 1 || tmpl.FrozenCrossStart() != 0 {
		t.Errorf("frozen head/cross = %d/%d, want 1/0", tmpl.FrozenHead(), tmpl.FrozenCrossStart())
	}
}

func TestSealRules(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Builder
		rule  string
	}{
		{
			name:  "no tracks",
			build: func() *Builder { return NewBuilder().AddBinding(grid.Cell(0, 0), row("r")) },
			rule:  RuleEmptyGrid,
		},
		{
			name: "no row bindings",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(1)).AddRows(grid.Fixed(1)).
					AddBinding(grid.Cell(0, 0), scalar("s"))
			},
			rule: RuleRowRangeEmpty,
		},
		{
			name: "binding outside grid",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(1)).AddRows(grid.Fixed(1)).
					AddBinding(grid.Cell(1, 0), row("r"))
			},
			rule: RuleBindingRange,
		},
		{
			name: "duplicate names",
			build: func() *Builder {
				return listBuilder().AddBinding(grid.Cell(0, 1), scalar("name"))
			},
			rule: RuleBindingName,
		},
		{
			name: "missing factory",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(1)).AddRows(grid.Fixed(1)).
					AddBinding(grid.Cell(0, 0), &Row{ID: "r"})
			},
			rule: RuleBindingFactory,
		},
		{
			name:  "zero block dimension",
			build: func() *Builder { return listBuilder().SetBlockDimension(0) },
			rule:  RuleBlockDimension,
		},
		{
			name: "auto cross track while flowing",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Auto()).AddRows(grid.Fixed(10)).
					AddBinding(grid.Cell(0, 0), row("r")).SetBlockDimension(3)
			},
			rule: RuleFlowAutoCross,
		},
		{
			name: "star cross track sized to content while flowing",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Star(1)).AddRows(grid.Fixed(10)).
					AddBinding(grid.Cell(0, 0), row("r")).SetBlockDimension(3).SetSizeToContent(true, false)
			},
			rule: RuleFlowAutoCross,
		},
		{
			name: "star in repeated tracks",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(10)).AddRows(grid.Star(1)).
					AddBinding(grid.Cell(0, 0), row("r"))
			},
			rule: RuleMainStar,
		},
		{
			name: "star on main axis sized to content",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(10)).AddRows(grid.Star(1), grid.Auto()).
					AddBinding(grid.Cell(0, 0), scalar("s")).
					AddBinding(grid.Cell(0, 1), row("r")).SetSizeToContent(false, true)
			},
			rule: RuleMainStar,
		},
		{
			name:  "frozen cross over row range",
			build: func() *Builder { return listBuilder().SetFrozen(1, 0, 0, 0) },
			rule:  RuleFrozenCross,
		},
		{
			name: "frozen cross while flowing",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(10), grid.Fixed(10)).AddRows(grid.Fixed(10)).
					AddBinding(grid.Cell(1, 0), row("r")).SetBlockDimension(2).SetFrozen(1, 0, 0, 0)
			},
			rule: RuleFrozenCross,
		},
		{
			name:  "frozen head past first block",
			build: func() *Builder { return listBuilder().SetFrozen(0, 3, 0, 0) },
			rule:  RuleFrozenMain,
		},
		{
			name:  "frozen tail past last block",
			build: func() *Builder { return listBuilder().SetFrozen(0, 0, 0, 3) },
			rule:  RuleFrozenMain,
		},
		{
			name: "block binding over row range",
			build: func() *Builder {
				return listBuilder().AddBinding(grid.Cell(1, 1), block("b"))
			},
			rule: RuleBlockPlacement,
		},
		{
			name: "block binding straddling flowed row tracks",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(10), grid.Fixed(10), grid.Fixed(10)).
					AddRows(grid.Fixed(10), grid.Fixed(10)).
					AddBinding(grid.Span(1, 1, 2, 1), row("r")).
					AddBinding(grid.Span(0, 0, 1, 0), block("b")).
					SetBlockDimension(2)
			},
			rule: RuleBlockPlacement,
		},
		{
			name: "scalar inside repeated tracks",
			build: func() *Builder {
				return NewBuilder().AddColumns(grid.Fixed(10), grid.Fixed(10)).AddRows(grid.Auto()).
					AddBinding(grid.Cell(0, 0), row("r")).
					AddBinding(grid.Cell(1, 0), scalar("s"))
			},
			rule: RuleScalarPlacement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Seal()
			if err == nil {
				t.Fatal("Seal() error = nil, want template error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidTemplate) {
				t.Fatalf("Seal() error = %v, want INVALID_TEMPLATE", err)
			}
			var te *errors.TemplateError
			if !stderrors.As(err, &te) {
				t.Fatalf("Seal() error %v does not wrap a TemplateError", err)
			}
			if te.Rule != tt.rule {
				t.Errorf("rule = %q, want %q (%v)", te.Rule, tt.rule, err)
			}
		})
	}
}

func TestFrozenMayReachOneBlock(t *testing.T) {
	// Two head tracks, a one-track block and one tail track: a frozen head
	// of 3 pins the first container, a frozen tail of 2 the last.
	_, err := NewBuilder().
		AddColumns(grid.Fixed(100)).
		AddRows(grid.Fixed(10), grid.Fixed(10), grid.Auto(), grid.Fixed(10)).
		AddBinding(grid.Cell(0, 0), scalar("title")).
		AddBinding(grid.Cell(0, 1), scalar("header")).
		AddBinding(grid.Cell(0, 2), row("r")).
		AddBinding(grid.Cell(0, 3), scalar("footer")).
		SetFrozen(0, 3, 0, 2).
		Seal()
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
}

func TestSealedBuilderPanics(t *testing.T) {
	b := listBuilder()
	if _, err := b.Seal(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, errors.ErrCodeContractViolation) {
			t.Errorf("panic = %v, want CONTRACT_VIOLATION", r)
		}
	}()
	b.AddRow(grid.Auto())
}

func TestFailedSealLeavesBuilderOpen(t *testing.T) {
	b := listBuilder().SetBlockDimension(0)
	if _, err := b.Seal(); err == nil {
		t.Fatal("Seal() should fail")
	}
	if _, err := b.SetBlockDimension(1).Seal(); err != nil {
		t.Errorf("Seal() after fix error = %v", err)
	}
}

func TestTracksAreIndependent(t *testing.T) {
	tmpl, err := listBuilder().Seal()
	if err != nil {
		t.Fatal(err)
	}
	a, b := tmpl.Tracks(grid.Y), tmpl.Tracks(grid.Y)
	a.InitMeasured(false)
	a.Grow(1, 40)
	b.InitMeasured(false)
	if b.Measured(1) != 0 {
		t.Errorf("second collection measured = %v, want 0", b.Measured(1))
	}
}

func TestBindingHooks(t *testing.T) {
	var calls []string
	s := &Scalar{
		ID:        "s",
		New:       newLabel,
		OnSetup:   func(Element) { calls = append(calls, "setup") },
		OnRefresh: func(Element) { calls = append(calls, "refresh") },
	}
	el := NewElement(s)
	s.Setup(el)
	s.Refresh(el)
	s.Cleanup(el) // nil hook is a no-op
	if diff := cmp.Diff([]string{"setup", "refresh"}, calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if _, ok := el.(*label); !ok {
		t.Errorf("NewElement() = %T, want *label", el)
	}
}

package template

import (
	"strconv"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/grid"
)

// Rule identifiers reported in errors.TemplateError.
const (
	RuleEmptyGrid       = "empty-grid"
	RuleBindingName     = "binding-name"
	RuleBindingFactory  = "binding-factory"
	RuleBindingRange    = "binding-range"
	RuleRowRangeEmpty   = "row-range-empty"
	RuleFlowAutoCross   = "flow-auto-cross"
	RuleMainStar        = "main-star"
	RuleFrozenCross     = "frozen-cross"
	RuleFrozenMain      = "frozen-main"
	RuleBlockPlacement  = "block-placement"
	RuleScalarPlacement = "scalar-placement"
	RuleBlockDimension  = "block-dimension"
)

// validate checks the declaration and fills the derived fields of t.
func validate(t *Template, bindings []placed) error {
	main, cross := t.Main(), t.Cross()
	cols, rowTracks := len(t.tracks[grid.X]), len(t.tracks[grid.Y])

	if cols == 0 || rowTracks == 0 {
		return errors.Template(RuleEmptyGrid, "", "a template needs at least one column and one row, got %d×%d", cols, rowTracks)
	}
	if t.blockDimension < 1 {
		return errors.Template(RuleBlockDimension, "", "block dimension must be at least 1, got %d", t.blockDimension)
	}

	full := grid.GridRange{Right: cols, Bottom: rowTracks}
	seen := make(map[string]bool, len(bindings))
	for _, p := range bindings {
		if p.binding == nil {
			return errors.Template(RuleBindingName, "", "nil binding at %v", p.rng)
		}
		name := p.binding.Name()
		if name == "" {
			return errors.Template(RuleBindingName, p.rng.String(), "binding has no name")
		}
		if seen[name] {
			return errors.Template(RuleBindingName, name, "duplicate binding name")
		}
		seen[name] = true
		if !hasFactory(p.binding) {
			return errors.Template(RuleBindingFactory, name, "binding has no element factory")
		}
		if p.rng.IsEmpty() || !full.ContainsRange(p.rng) {
			return errors.Template(RuleBindingRange, name, "range %v is empty or outside the grid %v", p.rng, full)
		}

		switch b := p.binding.(type) {
		case *Scalar:
			t.scalars = append(t.scalars, Placement[*Scalar]{Range: p.rng, Binding: b})
		case *Block:
			t.blocks = append(t.blocks, Placement[*Block]{Range: p.rng, Binding: b})
		case *Row:
			t.rows = append(t.rows, Placement[*Row]{Range: p.rng, Binding: b})
			t.rowRange = t.rowRange.Union(p.rng)
		}
	}

	if len(t.rows) == 0 {
		return errors.Template(RuleRowRangeEmpty, "", "at least one row binding is required")
	}

	rowCross := t.rowRange.Along(cross)

	t.blockRange = t.rowRange
	for _, p := range t.blocks {
		name := p.Binding.Name()
		if p.Range.Intersects(t.rowRange) {
			return errors.Template(RuleBlockPlacement, name, "block binding %v overlaps the row range %v", p.Range, t.rowRange)
		}
		if t.Flowing() && !crossCompatible(p.Range.Along(cross), rowCross) {
			return errors.Template(RuleBlockPlacement, name, "flowing block binding must cover or avoid the row tracks %v", rowCross)
		}
		t.blockRange = t.blockRange.Union(p.Range)
	}

	blockMain := t.blockRange.Along(main)
	for _, p := range t.scalars {
		name := p.Binding.Name()
		span := p.Range.Along(main)
		if span.Overlaps(blockMain) {
			return errors.Template(RuleScalarPlacement, name, "scalar binding %v overlaps the repeated tracks %v", p.Range, blockMain)
		}
		if t.Flowing() && !crossCompatible(p.Range.Along(cross), rowCross) {
			return errors.Template(RuleScalarPlacement, name, "flowing scalar binding must cover or avoid the row tracks %v", rowCross)
		}
		if span.End <= blockMain.Start {
			t.leading = append(t.leading, p)
		} else {
			t.trailing = append(t.trailing, p)
		}
	}

	if err := validateLengths(t, blockMain, rowCross); err != nil {
		return err
	}
	return validateFrozen(t, blockMain, rowCross)
}

// crossCompatible reports whether span either avoids or covers rowSpan.
func crossCompatible(span, rowSpan grid.Range) bool {
	return !span.Overlaps(rowSpan) || span.ContainsRange(rowSpan)
}

func validateLengths(t *Template, blockMain, rowCross grid.Range) error {
	main, cross := t.Main(), t.Cross()

	if t.Flowing() {
		for i := rowCross.Start; i < rowCross.End; i++ {
			l := t.tracks[cross][i].Length
			if l.IsAuto() || (l.IsStar() && t.sizeToContent[cross]) {
				return errors.Template(RuleFlowAutoCross, trackName(cross, i),
					"%s track repeats across the flow and cannot size to content", l)
			}
		}
	}

	for i, tr := range t.tracks[main] {
		if !tr.Length.IsStar() {
			continue
		}
		if t.sizeToContent[main] {
			return errors.Template(RuleMainStar, trackName(main, i), "star length on a main axis that sizes to content")
		}
		if blockMain.Contains(i) {
			return errors.Template(RuleMainStar, trackName(main, i), "star length inside the repeated tracks %v", blockMain)
		}
	}
	return nil
}

func validateFrozen(t *Template, blockMain, rowCross grid.Range) error {
	f := t.frozen
	if f.Left < 0 || f.Top < 0 || f.Right < 0 || f.Bottom < 0 {
		return errors.Template(RuleFrozenMain, "", "frozen counts must not be negative: %+v", f)
	}

	crossCount := len(t.tracks[t.Cross()])
	start, end := t.FrozenCrossStart(), t.FrozenCrossEnd()
	switch {
	case t.Flowing() && (start > 0 || end > 0):
		return errors.Template(RuleFrozenCross, "", "cross-axis tracks cannot be frozen while rows flow")
	case start > rowCross.Start || end > crossCount-rowCross.End:
		return errors.Template(RuleFrozenCross, "", "frozen cross tracks (%d, %d) reach into the row tracks %v", start, end, rowCross)
	}

	mainCount := len(t.tracks[t.Main()])
	head, tail := t.FrozenHead(), t.FrozenTail()
	block := blockMain.Len()
	if head > blockMain.Start+block {
		return errors.Template(RuleFrozenMain, "", "frozen head %d reaches past the first block (%d tracks)", head, blockMain.Start+block)
	}
	if tail > mainCount-blockMain.End+block {
		return errors.Template(RuleFrozenMain, "", "frozen tail %d reaches past the last block (%d tracks)", tail, mainCount-blockMain.End+block)
	}
	return nil
}

func trackName(a grid.Axis, i int) string {
	if a == grid.X {
		return "column " + strconv.Itoa(i)
	}
	return "row " + strconv.Itoa(i)
}

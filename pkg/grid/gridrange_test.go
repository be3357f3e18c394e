package grid

import "testing"

func TestGridRange(t *testing.T) {
	a := GridRange{Left: 0, Top: 0, Right: 2, Bottom: 3}
	b := GridRange{Left: 1, Top: 2, Right: 4, Bottom: 5}
	c := GridRange{Left: 2, Top: 0, Right: 3, Bottom: 1}

	t.Run("Contains", func(t *testing.T) {
		if !a.Contains(1, 2) {
			t.Error("a should contain (1,2)")
		}
		if a.Contains(2, 2) {
			t.Error("a should not contain (2,2): right edge is exclusive")
		}
	})

	t.Run("Intersects", func(t *testing.T) {
		if !a.Intersects(b) {
			t.Error("a and b overlap at (1,2)")
		}
		if a.Intersects(c) {
			t.Error("a and c only touch")
		}
	})

	t.Run("Union", func(t *testing.T) {
		want := GridRange{Left: 0, Top: 0, Right: 4, Bottom: 5}
		if got := a.Union(b); got != want {
			t.Errorf("Union = %v, want %v", got, want)
		}
		if got := (GridRange{}).Union(c); got != c {
			t.Errorf("empty.Union(c) = %v, want %v", got, c)
		}
	})

	t.Run("Intersect", func(t *testing.T) {
		want := GridRange{Left: 1, Top: 2, Right: 2, Bottom: 3}
		if got := a.Intersect(b); got != want {
			t.Errorf("Intersect = %v, want %v", got, want)
		}
		if got := a.Intersect(c); !got.IsEmpty() {
			t.Errorf("Intersect = %v, want empty", got)
		}
	})

	t.Run("ContainsRange", func(t *testing.T) {
		if !a.ContainsRange(Cell(1, 1)) {
			t.Error("a should contain cell (1,1)")
		}
		if a.ContainsRange(b) {
			t.Error("a should not contain b")
		}
		if !a.ContainsRange(GridRange{}) {
			t.Error("an empty range is contained everywhere")
		}
	})

	t.Run("Span", func(t *testing.T) {
		want := GridRange{Left: 1, Top: 0, Right: 4, Bottom: 3}
		if got := Span(3, 2, 1, 0); got != want {
			t.Errorf("Span = %v, want %v", got, want)
		}
	})

	t.Run("Along", func(t *testing.T) {
		if got := b.Along(X); got != (Range{Start: 1, End: 4}) {
			t.Errorf("Along(X) = %v", got)
		}
		if got := b.Along(Y); got != (Range{Start: 2, End: 5}) {
			t.Errorf("Along(Y) = %v", got)
		}
	})
}

func TestRange(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Range
		overlaps bool
		union    Range
	}{
		{"disjoint", Range{0, 2}, Range{3, 4}, false, Range{0, 4}},
		{"touching", Range{0, 2}, Range{2, 4}, false, Range{0, 4}},
		{"nested", Range{0, 5}, Range{1, 2}, true, Range{0, 5}},
		{"empty", Range{3, 3}, Range{1, 2}, false, Range{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps = %v, want %v", got, tt.overlaps)
			}
			if got := tt.a.Union(tt.b); got != tt.union {
				t.Errorf("Union = %v, want %v", got, tt.union)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	o := Rect{X: 5, Y: -5, Width: 10, Height: 10}
	want := Rect{X: 5, Y: 0, Width: 5, Height: 5}
	if got := r.Intersect(o); got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}
	if got := r.Intersect(Rect{X: 20, Width: 1, Height: 1}); !got.IsEmpty() {
		t.Errorf("disjoint Intersect = %+v, want empty", got)
	}
	if got := RectFromAxes(X, 1, 2, 3, 4); got != (Rect{X: 1, Y: 3, Width: 2, Height: 4}) {
		t.Errorf("RectFromAxes(X) = %+v", got)
	}
}

package layout

import (
	"math/rand"
	"testing"
)

func TestLengthsEstimate(t *testing.T) {
	l := newLengths(10)
	if got := l.extent(5); got != 50 {
		t.Fatalf("extent() = %g, want 50", got)
	}

	l.set(2, 10)
	l.set(5, 30)
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"average", l.average(5), 20},
		{"start of 0", l.estimate(0, 20), 0},
		{"start of 3", l.estimate(3, 20), 50},
		{"start of 6", l.estimate(6, 20), 120},
		{"extent", l.extent(20), 200},
		{"known length", l.length(5, 20), 30},
		{"estimated length", l.length(4, 20), 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %g, want %g", tt.got, tt.want)
			}
		})
	}

	l.set(5, 10)
	if got := l.average(0); got != 10 {
		t.Errorf("average after update = %g, want 10", got)
	}
}

func TestLengthsFind(t *testing.T) {
	l := newLengths(5)
	for i := range 5 {
		l.set(i, 10)
	}
	tests := []struct {
		x    float64
		want int
	}{
		{-3, 0},
		{0, 0},
		{9.5, 0},
		{10, 1},
		{45, 4},
		{500, 4},
	}
	for _, tt := range tests {
		if got := l.find(tt.x, 10); got != tt.want {
			t.Errorf("find(%g) = %d, want %d", tt.x, got, tt.want)
		}
	}
	if got := newLengths(0).find(3, 10); got != -1 {
		t.Errorf("find on empty = %d, want -1", got)
	}
}

func TestLengthsResizeKeepsPrefix(t *testing.T) {
	l := newLengths(6)
	for i := range 6 {
		l.set(i, float64(i+1))
	}
	l.resize(8, 3)

	for i := range 8 {
		_, known := l.get(i)
		if known != (i < 3) {
			t.Errorf("ordinal %d known = %t after resize", i, known)
		}
	}
	if sum, n := l.prefix(8); sum != 6 || n != 3 {
		t.Errorf("prefix(8) = %g,%d, want 6,3", sum, n)
	}
}

func TestLengthsMatchesNaiveSums(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 200
	l := newLengths(n)
	vals := make([]float64, n)
	known := make([]bool, n)

	for step := 0; step < 2000; step++ {
		i := rng.Intn(n)
		v := float64(rng.Intn(50) + 1)
		l.set(i, v)
		vals[i], known[i] = v, true

		j := rng.Intn(n + 1)
		var sum float64
		var cnt int
		for k := 0; k < j; k++ {
			if known[k] {
				sum += vals[k]
				cnt++
			}
		}
		if gs, gc := l.prefix(j); gs != sum || gc != cnt {
			t.Fatalf("step %d: prefix(%d) = %g,%d, want %g,%d", step, j, gs, gc, sum, cnt)
		}
	}
}

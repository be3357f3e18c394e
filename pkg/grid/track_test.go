package grid

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func measuredOf(c *Tracks) []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Measured(i)
	}
	return out
}

func TestTrackClamp(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		in    float64
		want  float64
	}{
		{"unbounded", Track{}, 500, 500},
		{"below min", Track{Min: 20}, 5, 20},
		{"above max", Track{Max: 50}, 80, 50},
		{"max below min", Track{Min: 30, Max: 10}, 80, 30},
		{"infinite", Track{Max: 40}, math.Inf(1), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.Clamp(tt.in); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewTracks(
		Track{Length: Fixed(10)},
		Track{Length: Auto()},
		Track{Length: Star(1)},
		Track{Length: Star(2)},
	)

	auto, star := c.Classify(false)
	if diff := cmp.Diff([]int{1}, auto); diff != "" {
		t.Errorf("auto (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 3}, star); diff != "" {
		t.Errorf("star (-want +got):\n%s", diff)
	}

	auto, star = c.Classify(true)
	if diff := cmp.Diff([]int{1, 2, 3}, auto); diff != "" {
		t.Errorf("size-to-content auto (-want +got):\n%s", diff)
	}
	if len(star) != 0 {
		t.Errorf("size-to-content star = %v, want none", star)
	}
}

func TestDistributeStar(t *testing.T) {
	tests := []struct {
		name      string
		tracks    []Track
		available float64
		stc       bool
		want      []float64
	}{
		{
			name:      "proportional",
			tracks:    []Track{{Length: Fixed(100)}, {Length: Star(1)}, {Length: Star(3)}},
			available: 500,
			want:      []float64{100, 100, 300},
		},
		{
			name:      "max clamp keeps leftover",
			tracks:    []Track{{Length: Fixed(100)}, {Length: Star(1)}, {Length: Star(3), Max: 120}},
			available: 500,
			want:      []float64{100, 100, 120},
		},
		{
			name:      "negative remainder clamps to zero",
			tracks:    []Track{{Length: Fixed(300)}, {Length: Star(1)}},
			available: 200,
			want:      []float64{300, 0},
		},
		{
			name:      "min applies on zero remainder",
			tracks:    []Track{{Length: Fixed(300)}, {Length: Star(1), Min: 15}},
			available: 200,
			want:      []float64{300, 15},
		},
		{
			name:      "zero available",
			tracks:    []Track{{Length: Star(1), Min: 5, Max: 50}, {Length: Star(1)}},
			available: 0,
			want:      []float64{5, 0},
		},
		{
			name:      "infinite available",
			tracks:    []Track{{Length: Star(1), Min: 5, Max: 50}, {Length: Star(2)}},
			available: math.Inf(1),
			want:      []float64{5, 0},
		},
		{
			name:      "size to content leaves stars as auto",
			tracks:    []Track{{Length: Fixed(40)}, {Length: Star(1), Min: 7}},
			available: 400,
			stc:       true,
			want:      []float64{40, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTracks(tt.tracks...)
			c.InitMeasured(tt.stc)
			c.DistributeStar(tt.available, tt.stc, nil)
			if diff := cmp.Diff(tt.want, measuredOf(c)); diff != "" {
				t.Errorf("measured (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDistributeStarClampProperty(t *testing.T) {
	tracks := []Track{
		{Length: Star(1), Min: 10, Max: 40},
		{Length: Star(2), Min: 0, Max: 0},
		{Length: Star(0.5), Min: 25},
		{Length: Fixed(60)},
		{Length: Auto(), Min: 3},
	}
	for _, available := range []float64{0, 1, 37, 100, 250, 1e6, math.Inf(1)} {
		c := NewTracks(tracks...)
		c.InitMeasured(false)
		c.DistributeStar(available, false, nil)
		for i := range tracks {
			m := c.Measured(i)
			if m < tracks[i].Min || m > tracks[i].Upper() {
				t.Errorf("available=%v: track %d measured %v outside [%v,%v]", available, i, m, tracks[i].Min, tracks[i].Upper())
			}
		}
	}
}

func TestDistributeStarMultiplicity(t *testing.T) {
	// Track 1 repeats three times (a flowed row range), so it counts three
	// times against the available length and in the weight total.
	c := NewTracks(Track{Length: Fixed(30)}, Track{Length: Star(1)}, Track{Length: Star(1)})
	c.InitMeasured(false)
	c.DistributeStar(430, false, func(i int) float64 {
		if i == 1 {
			return 3
		}
		return 1
	})
	if diff := cmp.Diff([]float64{30, 100, 100}, measuredOf(c)); diff != "" {
		t.Errorf("measured (-want +got):\n%s", diff)
	}
}

func TestOffsetsAreLazy(t *testing.T) {
	c := NewTracks(Track{Length: Fixed(10)}, Track{Length: Fixed(20)}, Track{Length: Auto()})
	c.InitMeasured(false)
	if !c.Dirty() {
		t.Fatal("InitMeasured should invalidate offsets")
	}
	if got := c.Offset(2); got != 30 {
		t.Errorf("Offset(2) = %v, want 30", got)
	}
	if c.Dirty() {
		t.Error("reading an offset should recompute the cache")
	}

	c.Grow(2, 15)
	if !c.Dirty() {
		t.Error("Grow should invalidate offsets")
	}
	if got := c.Total(); got != 45 {
		t.Errorf("Total() = %v, want 45", got)
	}
	if got := c.SpanLength(Range{Start: 1, End: 3}); got != 35 {
		t.Errorf("SpanLength = %v, want 35", got)
	}

	if c.Grow(2, 5) {
		t.Error("Grow should not shrink")
	}
	if c.Dirty() {
		t.Error("no-op Grow should not invalidate")
	}
}

func TestSealedTracksPanic(t *testing.T) {
	c := NewTracks(Track{Length: Auto()})
	c.Seal()
	defer func() {
		if recover() == nil {
			t.Error("SetLength after Seal should panic")
		}
	}()
	c.SetLength(0, Fixed(3))
}

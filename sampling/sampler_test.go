package sampling

import (
	"testing"

	"github.com/theoremus-urban-solutions/apc-anonymizer/profile"
)

func TestUniform_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		u, err := Uniform()
		if err != nil {
			t.Fatalf("Uniform failed: %v", err)
		}
		if u < 0.0 || u >= 1.0 {
			t.Fatalf("draw %d outside [0, 1): %v", i, u)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name               string
		x, lo, hi, want int
	}{
		{name: "forces lower boundary", x: -1, lo: 0, hi: 2, want: 0},
		{name: "forces upper boundary", x: 3, lo: 0, hi: 2, want: 2},
		{name: "keeps in-range values", x: 1, lo: 0, hi: 2, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.x, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestSample_DegenerateProfileIsDeterministic(t *testing.T) {
	// Each row puts all mass on one category, so every draw must land there,
	// and out-of-range counts must clamp to the edge rows.
	p := &profile.VehicleProfile{
		Categories: []string{"foo", "bar", "baz"},
		CDF: [][]float64{
			{1.0, 1.0, 1.0},
			{0.0, 1.0, 1.0},
			{0.0, 0.0, 1.0},
		},
	}
	cases := []struct {
		count int
		want  string
	}{
		{count: -1, want: "foo"},
		{count: 0, want: "foo"},
		{count: 1, want: "bar"},
		{count: 2, want: "baz"},
		{count: 3, want: "baz"},
	}
	for _, c := range cases {
		for i := 0; i < 100; i++ {
			got, ok := Sample(p, c.count)
			if !ok {
				t.Fatalf("Sample failed for count %d", c.count)
			}
			if got != c.want {
				t.Fatalf("count %d: expected %q every time, got %q", c.count, c.want, got)
			}
		}
	}
}

func TestSample_SharedBoundaries(t *testing.T) {
	p := &profile.VehicleProfile{
		Categories: []string{"foo", "bar", "baz"},
		CDF: [][]float64{
			{0.5, 1.0, 1.0},
			{0.0, 0.5, 1.0},
		},
	}
	cases := []struct {
		count   int
		allowed map[string]bool
	}{
		{count: -1, allowed: map[string]bool{"foo": true, "bar": true}},
		{count: 0, allowed: map[string]bool{"foo": true, "bar": true}},
		{count: 1, allowed: map[string]bool{"bar": true, "baz": true}},
		{count: 2, allowed: map[string]bool{"bar": true, "baz": true}},
	}
	for _, c := range cases {
		for i := 0; i < 100; i++ {
			got, ok := Sample(p, c.count)
			if !ok {
				t.Fatalf("Sample failed for count %d", c.count)
			}
			if !c.allowed[got] {
				t.Fatalf("count %d: category %q must never be drawn", c.count, got)
			}
		}
	}
}

func TestSample_EmptyProfile(t *testing.T) {
	p := &profile.VehicleProfile{Categories: []string{"foo"}}
	if _, ok := Sample(p, 0); ok {
		t.Error("a profile without CDF rows must not produce a sample")
	}
}

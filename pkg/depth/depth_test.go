package depth

import (
	"math"
	"testing"
)

func TestToMbar(t *testing.T) {
	tests := []struct {
		name     string
		model    Model
		depthMM  int
		expected float64
		epsilon  float64
	}{
		{
			name:     "surface in seawater",
			model:    NewModel(0, 0),
			depthMM:  0,
			expected: 1013.0,
			epsilon:  0.001,
		},
		{
			name:     "ten metres seawater",
			model:    NewModel(SeawaterSalinity, DefaultSurfacePressure),
			depthMM:  10000,
			expected: 1013.0 + 1000*1.03*0.981,
			epsilon:  0.01,
		},
		{
			name:     "ten metres fresh water",
			model:    NewModel(FreshwaterSalinity, DefaultSurfacePressure),
			depthMM:  10000,
			expected: 1013.0 + 1000*0.981,
			epsilon:  0.01,
		},
		{
			name:     "altitude lake",
			model:    NewModel(FreshwaterSalinity, 900),
			depthMM:  5000,
			expected: 900.0 + 500*0.981,
			epsilon:  0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.model.ToMbar(tt.depthMM)
			if math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("expected %.3f ± %.3f, got %.3f", tt.expected, tt.epsilon, got)
			}
		})
	}
}

func TestToMbarMonotonic(t *testing.T) {
	m := NewModel(0, 0)
	prev := m.ToMbar(0)
	for d := 1000; d <= 100000; d += 1000 {
		cur := m.ToMbar(d)
		if cur < prev {
			t.Fatalf("ambient pressure decreased between %d mm and %d mm: %.3f -> %.3f", d-1000, d, prev, cur)
		}
		prev = cur
	}
}

func TestToDepthRoundTrip(t *testing.T) {
	m := NewModel(0, 0)
	for _, d := range []int{0, 1000, 10000, 42500, 100000} {
		mbar := int(math.Round(m.ToMbar(d)))
		back := m.ToDepth(mbar)
		if math.Abs(float64(back-d)) > 10 {
			t.Errorf("round trip for %d mm returned %d mm", d, back)
		}
	}
}

func TestAltitudeToPressure(t *testing.T) {
	if p := AltitudeToPressure(0); p != DefaultSurfacePressure {
		t.Errorf("sea level: expected %d, got %d", DefaultSurfacePressure, p)
	}
	// roughly 2000 m: pressure should be well below sea level but above 700 mbar
	p := AltitudeToPressure(2000)
	if p >= DefaultSurfacePressure || p < 700 {
		t.Errorf("2000 m: implausible pressure %d", p)
	}
}

package metrics

import (
	"math"
	"testing"
)

// FuzzSMAPESymmetry fuzzes SMAPE with random pairs and checks it is symmetric
// and bounded by [0, 200] for finite inputs.
func FuzzSMAPESymmetry(f *testing.F) {
	f.Add(1.0, 2.0, 3.0, 4.0)
	f.Add(0.0, 0.0, 0.0, 0.0)
	f.Add(-5.0, 5.0, 1e9, -1e9)

	f.Fuzz(func(t *testing.T, a0, a1, b0, b1 float64) {
		a := []float64{a0, a1}
		b := []float64{b0, b1}
		for _, v := range append(a, b...) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return
			}
		}
		ab, err := SMAPE(a, b)
		if err != nil {
			t.Fatal(err)
		}
		ba, err := SMAPE(b, a)
		if err != nil {
			t.Fatal(err)
		}
		if ab != ba {
			t.Fatalf("asymmetric: %v vs %v", ab, ba)
		}
		if ab < 0 || ab > 200+1e-6 {
			t.Fatalf("out of range: %v", ab)
		}
	})
}

// FuzzScale checks that the scale term is never negative.
func FuzzScale(f *testing.F) {
	f.Add(1.0, 2.0, 3.0)
	f.Add(10.0, 10.0, 10.0)

	f.Fuzz(func(t *testing.T, x0, x1, x2 float64) {
		s, err := Scale([]float64{x0, x1, x2})
		if err != nil {
			t.Fatal(err)
		}
		if s < 0 {
			t.Fatalf("negative scale %v", s)
		}
	})
}

package slew

import (
	"math"
	"testing"
)

const tolerance = 1e-4

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func assertCurve(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d points, got %d (%v)", name, len(want), len(got), got)
	}
	for i := range want {
		if !almostEqual(got[i], want[i], tolerance) {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

func TestLinearConcrete(t *testing.T) {
	assertCurve(t, "linear", ShapeLinear.Curve(0, 10, 5), []float64{0, 2, 4, 6})
}

func TestStepUpStepDown(t *testing.T) {
	assertCurve(t, "step", ShapeStepUpStepDown.Curve(1, 7, 4), []float64{7, 7, 7})
	assertCurve(t, "step down", ShapeStepUpStepDown.Curve(7, 1, 4), []float64{1, 1, 1})
}

func TestRampAndSaw(t *testing.T) {
	assertCurve(t, "ramp up", ShapeRamp.Curve(0, 10, 5), []float64{2, 4, 6, 8})
	assertCurve(t, "ramp down", ShapeRamp.Curve(10, 0, 5), []float64{0, 0, 0, 0})
	assertCurve(t, "saw up", ShapeFlatTopSaw.Curve(0, 10, 5), []float64{10, 10, 10, 10})
	assertCurve(t, "saw down", ShapeFlatTopSaw.Curve(10, 0, 5), []float64{8, 6, 4, 2})
}

func TestLogUpStepDown(t *testing.T) {
	// e - (e-s)/max(i,1) for i = 0..3
	assertCurve(t, "log up", ShapeLogUpStepDown.Curve(2, 6, 5), []float64{2, 2, 4, 6 - 4.0/3})
	assertCurve(t, "log down", ShapeLogUpStepDown.Curve(6, 2, 5), []float64{2, 2, 2, 2})
}

func TestStepUpExpDown(t *testing.T) {
	assertCurve(t, "exp down", ShapeStepUpExpDown.Curve(6, 2, 5), []float64{6, 6, 4, 2 + 4.0/3})
	// rising transitions hold count points
	assertCurve(t, "step up", ShapeStepUpExpDown.Curve(2, 6, 5), []float64{6, 6, 6, 6, 6})
}

func TestCosineShapesHitEndpoints(t *testing.T) {
	const n = 40
	for _, shape := range []Shape{ShapeSmooth, ShapeExpUpExpDown, ShapeSharkTooth, ShapeSharkToothReverse} {
		for _, pair := range [][2]float64{{1, 8}, {8, 1}, {0, 10}, {9, 0.5}} {
			w := shape.Curve(pair[0], pair[1], n)
			if len(w) != n {
				t.Fatalf("%v: expected %d points, got %d", shape, n, len(w))
			}
			if !almostEqual(w[0], pair[0], tolerance) {
				t.Errorf("%v %v: first point %v, want start %v", shape, pair, w[0], pair[0])
			}
			// the last point sits one step before stop; it must be close and on the right side
			if math.Abs(w[n-1]-pair[1]) > math.Abs(pair[1]-pair[0])/4 {
				t.Errorf("%v %v: last point %v too far from stop %v", shape, pair, w[n-1], pair[1])
			}
			lo, hi := math.Min(pair[0], pair[1]), math.Max(pair[0], pair[1])
			for i, v := range w {
				if v < lo-tolerance || v > hi+tolerance {
					t.Errorf("%v %v: point %d = %v outside [%v, %v]", shape, pair, i, v, lo, hi)
				}
			}
		}
	}
}

func TestSmoothIsMonotonic(t *testing.T) {
	w := ShapeSmooth.Curve(1, 9, 20)
	for i := 1; i < len(w); i++ {
		if w[i] < w[i-1] {
			t.Fatalf("smooth rise not monotonic at %d: %v < %v", i, w[i], w[i-1])
		}
	}
	w = ShapeSmooth.Curve(9, 1, 20)
	for i := 1; i < len(w); i++ {
		if w[i] > w[i-1] {
			t.Fatalf("smooth fall not monotonic at %d: %v > %v", i, w[i], w[i-1])
		}
	}
}

func TestEqualEndpointsAreFlat(t *testing.T) {
	for s := Shape(0); s < ShapeCount; s++ {
		w := s.Curve(4.5, 4.5, 10)
		if len(w) == 0 {
			t.Fatalf("%v: empty curve", s)
		}
		for i, v := range w {
			if !almostEqual(v, 4.5, tolerance) {
				t.Errorf("%v: point %d = %v, want 4.5", s, i, v)
			}
		}
	}
}

func TestCurvesAreRounded(t *testing.T) {
	for s := Shape(0); s < ShapeCount; s++ {
		for _, v := range s.Curve(0.123456, 8.987654, 13) {
			if r := math.Round(v*1e4) / 1e4; r != v {
				t.Errorf("%v: %v not rounded to 4 places", s, v)
			}
		}
	}
}

func TestDegenerateCounts(t *testing.T) {
	for s := Shape(0); s < ShapeCount; s++ {
		if w := s.Curve(0, 5, 0); len(w) != 0 {
			t.Errorf("%v: expected no points for count 0, got %v", s, w)
		}
		if w := s.Curve(0, 5, 1); len(w) > 1 {
			t.Errorf("%v: expected at most one point for count 1, got %v", s, w)
		}
	}
}

func TestShapeNextWraps(t *testing.T) {
	if got := ShapeSharkToothReverse.Next(); got != ShapeStepUpStepDown {
		t.Errorf("expected wrap to first shape, got %v", got)
	}
	if got := Shape(42).Next(); got != ShapeLinear {
		t.Errorf("expected invalid shape to advance from first, got %v", got)
	}
	if Shape(-1).String() != "Step" {
		t.Errorf("unexpected name %q", Shape(-1).String())
	}
}

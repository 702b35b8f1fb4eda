package slew

import (
	"testing"

	"go-melodium/hw"
)

func TestResolutionFor(t *testing.T) {
	tests := []struct {
		interval int32
		want     int
	}{
		{0, MinResolution},
		{20, MinResolution},
		{150, 10},
		{300, 20},
		{600, MaxResolution},
		{5000, MaxResolution},
	}
	for _, tt := range tests {
		if got := ResolutionFor(tt.interval); got != tt.want {
			t.Errorf("ResolutionFor(%d) = %d, want %d", tt.interval, got, tt.want)
		}
	}
}

func TestResolutionIsMonotonic(t *testing.T) {
	prev := 0
	for ms := int32(0); ms < 2000; ms += 7 {
		r := ResolutionFor(ms)
		if r < prev {
			t.Fatalf("resolution dropped from %d to %d at %dms", prev, r, ms)
		}
		prev = r
	}
}

func TestEngineReplaceDiscardsOldCurve(t *testing.T) {
	e := NewEngine(ShapeLinear)
	e.Resolution = 5
	e.Replace(0, 10)
	if v, ok := e.Next(); !ok || v != 0 {
		t.Fatalf("expected first point 0, got %v %v", v, ok)
	}
	if v, _ := e.Next(); v != 2 {
		t.Fatalf("expected 2, got %v", v)
	}

	gen := e.Replace(10, 0)
	if gen != 2 {
		t.Errorf("expected generation 2, got %d", gen)
	}
	if e.Remaining() != 4 {
		t.Errorf("expected a fresh curve of 4 points, %d remain", e.Remaining())
	}
	if v, _ := e.Next(); v != 10 {
		t.Errorf("expected new curve to start at 10, got %v", v)
	}
}

func TestEngineExhaustion(t *testing.T) {
	e := NewEngine(ShapeStepUpStepDown)
	e.Install([]float64{3})
	if _, ok := e.Next(); !ok {
		t.Fatal("expected one point")
	}
	for i := 0; i < 3; i++ {
		if v, ok := e.Next(); ok || v != 0 {
			t.Fatalf("expected exhausted curve to yield 0,false, got %v %v", v, ok)
		}
	}
	if e.Last() != 3 {
		t.Errorf("expected last emitted 3, got %v", e.Last())
	}
}

func TestEngineEmitCadence(t *testing.T) {
	var out hw.MemOutput
	e := NewEngine(ShapeLinear)
	e.Retime(300) // 20 points, one every 15ms
	e.Replace(0, 10)

	if !e.Emit(15, &out) {
		t.Fatal("expected first emission once a period elapsed")
	}
	if out.Value() != 0 {
		t.Errorf("expected 0, got %v", out.Value())
	}
	if e.Emit(20, &out) {
		t.Error("expected no emission 5ms after the last")
	}
	if !e.Emit(30, &out) {
		t.Fatal("expected second emission")
	}
	if out.Value() != 0.5 {
		t.Errorf("expected 0.5, got %v", out.Value())
	}
}

func TestEngineEmitHoldsWhenExhausted(t *testing.T) {
	var out hw.MemOutput
	e := NewEngine(ShapeStepUpStepDown)
	e.Install([]float64{7})
	e.Emit(0, &out)
	writes := out.Writes()
	for now := uint32(1); now < 10; now++ {
		if e.Emit(now, &out) {
			t.Fatal("exhausted curve should not write")
		}
	}
	if out.Value() != 7 || out.Writes() != writes {
		t.Errorf("expected output held at 7, got %v after %d writes", out.Value(), out.Writes())
	}
}

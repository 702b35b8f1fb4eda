package hw

import "testing"

func TestTicksDiffWraps(t *testing.T) {
	if d := TicksDiff(5, 0xFFFFFFFB); d != 10 {
		t.Errorf("expected 10ms across wrap, got %d", d)
	}
	if d := TicksDiff(100, 40); d != 60 {
		t.Errorf("expected 60, got %d", d)
	}
	if d := TicksDiff(40, 100); d != -60 {
		t.Errorf("expected -60, got %d", d)
	}
}

func TestMemOutputClamps(t *testing.T) {
	var o MemOutput
	o.Voltage(12)
	if o.Value() != MaxOutputVoltage {
		t.Errorf("expected clamp to %v, got %v", MaxOutputVoltage, o.Value())
	}
	o.Voltage(-1)
	if o.Value() != 0 {
		t.Errorf("expected clamp to 0, got %v", o.Value())
	}
	o.On()
	if !o.IsOn() {
		t.Error("expected gate high after On")
	}
	o.Off()
	if o.IsOn() {
		t.Error("expected gate low after Off")
	}
	if o.Writes() != 4 {
		t.Errorf("expected 4 writes, got %d", o.Writes())
	}
}

func TestReadPosition(t *testing.T) {
	tests := []struct {
		percent float64
		steps   int
		want    int
	}{
		{0, 32, 0},
		{1, 32, 31},
		{0.5, 32, 16},
		{0.999, 4, 3},
		{0.5, 0, 0},
	}
	for _, tt := range tests {
		if got := ReadPosition(NewKnob(tt.percent), tt.steps); got != tt.want {
			t.Errorf("ReadPosition(%v, %d) = %d, want %d", tt.percent, tt.steps, got, tt.want)
		}
	}
}

func TestKnobNudgeClamps(t *testing.T) {
	k := NewKnob(0.95)
	if got := k.Nudge(0.1); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := k.Nudge(-2); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestClassifyPress(t *testing.T) {
	tests := []struct {
		held int32
		want Press
	}{
		{50, PressShort},
		{300, PressShort},
		{301, PressMedium},
		{1999, PressMedium},
		{2000, PressLong},
		{4999, PressLong},
		{5000, PressHeld},
		{8000, PressHeld},
	}
	for _, tt := range tests {
		if got := ClassifyPress(tt.held); got != tt.want {
			t.Errorf("ClassifyPress(%d) = %v, want %v", tt.held, got, tt.want)
		}
	}
}

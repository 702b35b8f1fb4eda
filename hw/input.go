package hw

import (
	"math"
	"sync/atomic"
)

// AnalogIn is a knob or CV input normalized to [0, 1]
type AnalogIn interface {
	Percent() float64
}

// ReadPosition maps an input onto steps positions 0..steps-1
func ReadPosition(in AnalogIn, steps int) int {
	if steps <= 0 {
		return 0
	}
	pos := int(in.Percent() * float64(steps))
	if pos >= steps {
		pos = steps - 1
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// Knob is a settable AnalogIn. The zero value reads 0.
type Knob struct {
	bits atomic.Uint64
}

func NewKnob(percent float64) *Knob {
	k := &Knob{}
	k.Set(percent)
	return k
}

func (k *Knob) Percent() float64 {
	return math.Float64frombits(k.bits.Load())
}

// Set stores p clamped to [0, 1]
func (k *Knob) Set(p float64) {
	p = math.Max(0, math.Min(1, p))
	k.bits.Store(math.Float64bits(p))
}

// Nudge moves the knob by delta and returns the new position
func (k *Knob) Nudge(delta float64) float64 {
	k.Set(k.Percent() + delta)
	return k.Percent()
}

// Press is how long a button was held
type Press int

const (
	PressShort Press = iota
	PressMedium
	PressLong
	PressHeld // held past the long window, usually an abandoned press
)

// Press duration thresholds in milliseconds
const (
	MediumPressMs = 300
	LongPressMs   = 2000
	HeldPressMs   = 5000
)

// ClassifyPress buckets a hold duration measured between press and release
func ClassifyPress(heldMs int32) Press {
	switch {
	case heldMs >= HeldPressMs:
		return PressHeld
	case heldMs >= LongPressMs:
		return PressLong
	case heldMs > MediumPressMs:
		return PressMedium
	default:
		return PressShort
	}
}

func (p Press) String() string {
	switch p {
	case PressMedium:
		return "medium"
	case PressLong:
		return "long"
	case PressHeld:
		return "held"
	default:
		return "short"
	}
}

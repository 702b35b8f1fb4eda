package hw

import (
	"math"
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond counter that may wrap
type Clock interface {
	TicksMs() uint32
}

// TicksDiff returns now-then in milliseconds, correct across a single wrap
func TicksDiff(now, then uint32) int32 {
	return int32(now - then)
}

// SystemClock counts milliseconds since it was created
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) TicksMs() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// FakeClock is a manually advanced clock for tests and replays
type FakeClock struct {
	ms atomic.Uint32
}

func (c *FakeClock) TicksMs() uint32 {
	return c.ms.Load()
}

// Set jumps the clock to ms
func (c *FakeClock) Set(ms uint32) {
	c.ms.Store(ms)
}

// Advance moves the clock forward by ms
func (c *FakeClock) Advance(ms uint32) uint32 {
	return c.ms.Add(ms)
}

// Output is a CV jack. Voltage is clamped by the implementation.
type Output interface {
	On()
	Off()
	Voltage(v float64)
}

// Output voltage range of the hardware
const (
	MinOutputVoltage = 0.0
	MaxOutputVoltage = 10.0
)

// ClampVoltage limits v to the output range
func ClampVoltage(v float64) float64 {
	if v < MinOutputVoltage {
		return MinOutputVoltage
	}
	if v > MaxOutputVoltage {
		return MaxOutputVoltage
	}
	return v
}

// MemOutput remembers the last value written. Safe for concurrent reads.
type MemOutput struct {
	bits   atomic.Uint64
	writes atomic.Int64
}

func (o *MemOutput) On() {
	o.Voltage(MaxOutputVoltage)
}

func (o *MemOutput) Off() {
	o.Voltage(MinOutputVoltage)
}

func (o *MemOutput) Voltage(v float64) {
	o.bits.Store(math.Float64bits(ClampVoltage(v)))
	o.writes.Add(1)
}

// Value returns the last voltage written
func (o *MemOutput) Value() float64 {
	return math.Float64frombits(o.bits.Load())
}

// IsOn reports whether the output is above half scale (gate high)
func (o *MemOutput) IsOn() bool {
	return o.Value() > MaxOutputVoltage/2
}

// Writes counts calls to Voltage, On and Off
func (o *MemOutput) Writes() int64 {
	return o.writes.Load()
}

// MultiOutput fans one output out to several sinks
type MultiOutput []Output

func (m MultiOutput) On() {
	for _, o := range m {
		o.On()
	}
}

func (m MultiOutput) Off() {
	for _, o := range m {
		o.Off()
	}
}

func (m MultiOutput) Voltage(v float64) {
	for _, o := range m {
		o.Voltage(v)
	}
}

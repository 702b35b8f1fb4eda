package slew

import "go-melodium/hw"

// Resolution limits
const (
	DefaultResolution = 20
	MaxResolution     = 40
	MinResolution     = 2
	msPerPoint        = 15
)

// ResolutionFor derives the number of curve points from the time between
// clocks. Slower clocks get more points, up to MaxResolution.
func ResolutionFor(intervalMs int32) int {
	r := int(intervalMs / msPerPoint)
	if r > MaxResolution {
		r = MaxResolution
	}
	if r < MinResolution {
		r = MinResolution
	}
	return r
}

// Cursor reads one curve installed by Engine.Replace. A cursor from an older
// generation reads as exhausted.
type Cursor struct {
	gen uint64
	pos int
}

// Engine owns the active interpolation curve and paces its emission.
// It is not safe for concurrent use; the module loop is its only caller.
type Engine struct {
	Shape      Shape
	Resolution int

	curve    []float64
	cursor   Cursor
	gen      uint64
	interval int32
	lastEmit uint32
	last     float64
}

func NewEngine(shape Shape) *Engine {
	return &Engine{
		Shape:      shape.Valid(),
		Resolution: DefaultResolution,
	}
}

// Retime records the measured clock interval and recomputes the resolution
func (e *Engine) Retime(intervalMs int32) {
	e.interval = intervalMs
	e.Resolution = ResolutionFor(intervalMs)
}

// Interval is the last measured time between clocks in ms
func (e *Engine) Interval() int32 {
	return e.interval
}

// Replace discards the current curve and installs a new one built from the
// selected shape. Returns the new generation.
func (e *Engine) Replace(start, stop float64) uint64 {
	return e.Install(e.Shape.Curve(start, stop, e.Resolution))
}

// Install takes ownership of curve and resets the cursor
func (e *Engine) Install(curve []float64) uint64 {
	e.gen++
	e.curve = curve
	e.cursor = Cursor{gen: e.gen}
	return e.gen
}

// Generation counts curve replacements
func (e *Engine) Generation() uint64 {
	return e.gen
}

// Remaining reports how many points are left in the active curve
func (e *Engine) Remaining() int {
	return len(e.curve) - e.cursor.pos
}

// Next pulls the next point. ok is false once the curve is exhausted.
func (e *Engine) Next() (v float64, ok bool) {
	if e.cursor.gen != e.gen || e.cursor.pos >= len(e.curve) {
		return 0, false
	}
	v = e.curve[e.cursor.pos]
	e.cursor.pos++
	e.last = v
	return v, true
}

// Period is the time between emitted points in ms
func (e *Engine) Period() float64 {
	if e.Resolution <= 0 {
		return 0
	}
	return float64(e.interval) / float64(e.Resolution)
}

// Due reports whether enough time has passed since the last emission
func (e *Engine) Due(now uint32) bool {
	return float64(hw.TicksDiff(now, e.lastEmit)) >= e.Period()
}

// Emit writes the next point to out when one is due. An exhausted curve
// leaves the output holding its last value. Returns true if out was written.
func (e *Engine) Emit(now uint32, out hw.Output) bool {
	if !e.Due(now) {
		return false
	}
	e.lastEmit = now
	v, ok := e.Next()
	if !ok {
		return false
	}
	out.Voltage(v)
	return true
}

// Last is the most recently emitted point
func (e *Engine) Last() float64 {
	return e.last
}

package slew

import "math"

// Shape selects the curve drawn between two step voltages
type Shape int

const (
	ShapeStepUpStepDown Shape = iota
	ShapeLinear
	ShapeRamp
	ShapeFlatTopSaw
	ShapeLogUpStepDown
	ShapeStepUpExpDown
	ShapeSmooth
	ShapeExpUpExpDown
	ShapeSharkTooth
	ShapeSharkToothReverse
	ShapeCount
)

// ShapeFunc builds count-ish points moving from start to stop
type ShapeFunc func(start, stop float64, count int) []float64

var shapeFuncs = [ShapeCount]ShapeFunc{
	ShapeStepUpStepDown:    StepUpStepDown,
	ShapeLinear:            Linear,
	ShapeRamp:              Ramp,
	ShapeFlatTopSaw:        FlatTopSaw,
	ShapeLogUpStepDown:     LogUpStepDown,
	ShapeStepUpExpDown:     StepUpExpDown,
	ShapeSmooth:            Smooth,
	ShapeExpUpExpDown:      ExpUpExpDown,
	ShapeSharkTooth:        SharkTooth,
	ShapeSharkToothReverse: SharkToothReverse,
}

var shapeNames = [ShapeCount]string{
	"Step", "Linear", "Ramp", "Saw", "Log/Step",
	"Step/Exp", "Smooth", "Exp/Exp", "Shark", "Shark Rev",
}

// Next returns the following shape, wrapping after the last one
func (s Shape) Next() Shape {
	return (s.Valid() + 1) % ShapeCount
}

// Valid maps out-of-range values back to the first shape
func (s Shape) Valid() Shape {
	if s < 0 || s >= ShapeCount {
		return ShapeStepUpStepDown
	}
	return s
}

func (s Shape) String() string {
	return shapeNames[s.Valid()]
}

// Func returns the generator for s
func (s Shape) Func() ShapeFunc {
	return shapeFuncs[s.Valid()]
}

// Curve generates and rounds the points for s
func (s Shape) Curve(start, stop float64, count int) []float64 {
	return roundAll(s.Func()(start, stop, count))
}

// Output precision of every curve point
const curveDecimals = 4

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func roundAll(w []float64) []float64 {
	for i := range w {
		w[i] = round(w[i], curveDecimals)
	}
	return w
}

func hold(v float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = v
	}
	return w
}

// line returns start+(stop-start)/count*i for i in [from, to)
func line(start, stop float64, count, from, to int) []float64 {
	if to <= from || count <= 0 {
		return nil
	}
	w := make([]float64, 0, to-from)
	inc := (stop - start) / float64(count)
	for i := from; i < to; i++ {
		w = append(w, start+inc*float64(i))
	}
	return w
}

// curl is the shared log-up / exp-down expression. i is clamped to 1 so the
// first two points coincide.
func curl(start, stop float64, count int) []float64 {
	if count <= 1 {
		return nil
	}
	w := make([]float64, 0, count-1)
	for i := 0; i < count-1; i++ {
		d := float64(max(i, 1))
		w = append(w, 1-(stop-start)/d+(stop-1))
	}
	return w
}

// cosine evaluates amp + amp*cos(k*pi*(i+phase)/count) + offset for i in [0, count)
func cosine(amp, k, phase, offset float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	w := make([]float64, count)
	n := float64(count)
	for i := range w {
		w[i] = amp + amp*math.Cos(k*math.Pi*(float64(i)+phase)/n) + offset
	}
	return w
}

// StepUpStepDown jumps straight to stop and holds it
func StepUpStepDown(start, stop float64, count int) []float64 {
	return hold(stop, count-1)
}

// Linear walks evenly from start, stopping one increment short of stop
func Linear(start, stop float64, count int) []float64 {
	return line(start, stop, count, 0, count-1)
}

// Ramp rises linearly and drops instantly
func Ramp(start, stop float64, count int) []float64 {
	if stop >= start {
		return line(start, stop, count, 1, count)
	}
	return hold(stop, count-1)
}

// FlatTopSaw jumps up instantly and falls linearly
func FlatTopSaw(start, stop float64, count int) []float64 {
	if stop >= start {
		return hold(stop, count-1)
	}
	return line(start, stop, count, 1, count)
}

// LogUpStepDown curls up and drops instantly
func LogUpStepDown(start, stop float64, count int) []float64 {
	if stop >= start {
		return curl(start, stop, count)
	}
	return hold(stop, count-1)
}

// StepUpExpDown jumps up instantly and curls down. Rising transitions hold
// count points, one more than the other shapes.
func StepUpExpDown(start, stop float64, count int) []float64 {
	if stop <= start {
		return curl(start, stop, count)
	}
	return hold(stop, count)
}

// Smooth is a half cosine between start and stop
func Smooth(start, stop float64, count int) []float64 {
	amp := math.Abs(stop-start) / 2
	if start <= stop {
		return cosine(amp, 1, float64(count), start, count)
	}
	return cosine(amp, 1, 0, stop, count)
}

// ExpUpExpDown is a quarter cosine that eases in both directions
func ExpUpExpDown(start, stop float64, count int) []float64 {
	amp := math.Abs(stop - start)
	n := float64(count)
	if start <= stop {
		return cosine(amp, 0.5, 2*n, start, count)
	}
	return cosine(amp, 0.5, n, stop, count)
}

// SharkTooth rises fast then eases, and falls easing in
func SharkTooth(start, stop float64, count int) []float64 {
	amp := math.Abs(stop - start)
	n := float64(count)
	if start <= stop {
		return cosine(amp, 0.5, 3*n, start-amp, count)
	}
	return cosine(amp, 0.5, n, stop, count)
}

// SharkToothReverse mirrors SharkTooth
func SharkToothReverse(start, stop float64, count int) []float64 {
	amp := math.Abs(stop - start)
	n := float64(count)
	if start <= stop {
		return cosine(amp, 0.5, 2*n, start, count)
	}
	return cosine(amp, 0.5, 0, 1-(amp-stop+1), count)
}

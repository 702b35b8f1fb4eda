// Package render drives a sequencer against a simulated clock and writes the
// resulting jack voltages to audio or MIDI files.
package render

import (
	"errors"
	"math/rand"

	"go-melodium/hw"
	"go-melodium/sequencer"
)

var (
	ErrNoClocks      = errors.New("render needs at least one clock")
	ErrShortInterval = errors.New("clock interval must be at least 2 ms")
)

// Options describes the simulated clock
type Options struct {
	Clocks     int // rising edges to play
	IntervalMs int // time between rising edges
	GateMs     int // high time of each pulse, default half the interval
	TailMs     int // time to keep running after the last edge
	FirstStep  int
	Length     int // loop length, 0 keeps the default
}

// DefaultOptions plays four loops of sixteen steps at 120 BPM sixteenths
func DefaultOptions() Options {
	return Options{
		Clocks:     64,
		IntervalMs: 125,
		Length:     sequencer.DefaultPatternLength,
	}
}

// Frame is the six jack voltages during one millisecond
type Frame [sequencer.NumChannels]float64

// Recording holds one frame per simulated millisecond
type Recording struct {
	Frames []Frame
}

// DurationMs is the length of the recording
func (r *Recording) DurationMs() int {
	return len(r.Frames)
}

// Render plays snap through a fresh sequencer. The bank seed only matters
// when snap has no bank of its own.
func Render(snap *sequencer.Snapshot, seqOpts sequencer.Options, opts Options, seed int64) (*Recording, error) {
	if opts.Clocks < 1 {
		return nil, ErrNoClocks
	}
	// a pulse needs one millisecond high and one low
	if opts.IntervalMs < 2 {
		return nil, ErrShortInterval
	}
	if opts.GateMs <= 0 || opts.GateMs >= opts.IntervalMs {
		opts.GateMs = opts.IntervalMs / 2
	}

	var mems [sequencer.NumChannels]*hw.MemOutput
	var outs [sequencer.NumChannels]hw.Output
	for i := range mems {
		mems[i] = &hw.MemOutput{}
		outs[i] = mems[i]
	}

	seq := sequencer.New(sequencer.NewBank(rand.New(rand.NewSource(seed))), outs, sequencer.Inputs{}, nil, seqOpts)
	if err := seq.Restore(snap); err != nil {
		return nil, err
	}
	if opts.Length > 0 {
		seq.SetWindow(opts.FirstStep, opts.Length)
	}

	clock := &hw.FakeClock{}
	total := opts.Clocks*opts.IntervalMs + opts.TailMs
	rec := &Recording{Frames: make([]Frame, 0, total)}

	for ms := 0; ms < total; ms++ {
		now := clock.TicksMs()
		if ms/opts.IntervalMs < opts.Clocks {
			switch ms % opts.IntervalMs {
			case 0:
				seq.ClockRise(now)
			case opts.GateMs:
				seq.ClockFall()
			}
		}
		seq.Poll(now)

		var f Frame
		for i, m := range mems {
			f[i] = m.Value()
		}
		rec.Frames = append(rec.Frames, f)
		clock.Advance(1)
	}
	return rec, nil
}

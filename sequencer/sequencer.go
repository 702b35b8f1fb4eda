package sequencer

import (
	"go-melodium/debug"
	"go-melodium/hw"
	"go-melodium/slew"
)

// Defaults for a fresh session
const (
	DefaultPatternLength  = 16
	DefaultResetTimeoutMs = 10000
	minModulationPercent  = 0.5 // deadzone on the length modulation input, in percent
)

// Two step patterns alternate between these instead of reading the bank
var voltageExtremes = [2]float64{0, 10}

// Options configures a Sequencer
type Options struct {
	ResetTimeoutMs  int32
	SlewMode        bool // source channel driven by the slew engine instead of stepped
	CycleCode       string
	InitialPatterns int
}

// DefaultOptions matches the module's factory behaviour
func DefaultOptions() Options {
	return Options{
		ResetTimeoutMs:  DefaultResetTimeoutMs,
		SlewMode:        true,
		CycleCode:       DefaultCycleCode,
		InitialPatterns: MaxRandomPatterns,
	}
}

// Inputs are the analog controls polled every loop. Nil inputs are ignored.
type Inputs struct {
	Length    hw.AnalogIn // knob 1: pattern length
	FirstStep hw.AnalogIn // knob 2: first step of the loop window
	LengthMod hw.AnalogIn // analog in: added to the length above a deadzone
}

// Sequencer advances steps on clock edges and hands step pairs to the slew
// engine. All methods must be called from one goroutine.
type Sequencer struct {
	Bank *Bank
	Slew *slew.Engine

	outs   [NumChannels]hw.Output
	inputs Inputs
	saver  Saver
	opts   Options

	step          int
	clockStep     int
	slot          int
	patternLength int
	firstStep     int
	cycleMode     bool
	cycleCode     string
	cycleStep     int
	lastClock     uint32
	flipFlop      bool

	rerolled   bool
	rerolledAt int
	dirty      bool
}

// New creates a sequencer writing to outs. saver may be nil.
func New(bank *Bank, outs [NumChannels]hw.Output, inputs Inputs, saver Saver, opts Options) *Sequencer {
	if !ValidCycleCode(opts.CycleCode) {
		opts.CycleCode = DefaultCycleCode
	}
	if opts.ResetTimeoutMs <= 0 {
		opts.ResetTimeoutMs = DefaultResetTimeoutMs
	}
	if opts.InitialPatterns < 1 || opts.InitialPatterns > MaxRandomPatterns {
		opts.InitialPatterns = MaxRandomPatterns
	}
	return &Sequencer{
		Bank:          bank,
		Slew:          slew.NewEngine(slew.ShapeStepUpStepDown),
		outs:          outs,
		inputs:        inputs,
		saver:         saver,
		opts:          opts,
		patternLength: DefaultPatternLength,
		cycleCode:     opts.CycleCode,
		dirty:         true,
	}
}

// Restore applies a loaded snapshot, initializing the bank when the snapshot
// has none or it is malformed. Always saves the resulting state.
func (s *Sequencer) Restore(snap *Snapshot) error {
	if snap == nil {
		snap = &Snapshot{}
	}
	if err := s.Bank.Load(snap.PatternBank); err != nil {
		if len(snap.PatternBank) != 0 {
			debug.Log("state", "discarding stored bank: %v", err)
		}
		if err := s.Bank.Initialize(s.opts.InitialPatterns); err != nil {
			return err
		}
		debug.Log("state", "initialized %d pattern slots", s.Bank.NumPatterns())
	} else {
		debug.Log("state", "loaded %d pattern slots", s.Bank.NumPatterns())
	}

	s.cycleMode = snap.CycleMode
	s.Slew.Shape = snap.Shape.Valid()
	if ValidCycleCode(snap.CycleCode) {
		s.cycleCode = snap.CycleCode
	}
	s.slot = 0
	if snap.PatternSlot >= 0 && snap.PatternSlot < s.Bank.NumPatterns() {
		s.slot = snap.PatternSlot
	}
	if s.cycleMode {
		s.selectCycleSlot()
	}
	s.dirty = true
	s.save()
	return nil
}

// Snapshot captures the persisted fields
func (s *Sequencer) Snapshot() *Snapshot {
	return &Snapshot{
		PatternBank: s.Bank.Patterns(),
		CycleMode:   s.cycleMode,
		PatternSlot: s.slot,
		Shape:       s.Slew.Shape,
		CycleCode:   s.cycleCode,
	}
}

func (s *Sequencer) save() {
	if s.saver == nil {
		return
	}
	if err := s.saver.Save(s.Snapshot()); err != nil {
		debug.Log("state", "save failed: %v", err)
	}
}

// lastStep is the final step of the loop window
func (s *Sequencer) lastStep() int {
	return s.firstStep + s.patternLength - 1
}

// ClockRise handles a rising clock edge at now
func (s *Sequencer) ClockRise(now uint32) {
	debug.Log("clock", "[%d] : [0][%d][%d][%s]", s.clockStep, s.slot, s.step,
		formatVoltage(s.Bank.Read(SourceChannel, s.slot, s.step)))

	for ch, out := range s.outs {
		if out == nil {
			continue
		}
		switch {
		case ch == SourceChannel && s.opts.SlewMode:
			// driven continuously by the slew engine
		case ch == PulseChannel:
			if s.step == s.lastStep() {
				out.On()
			}
		default:
			out.Voltage(s.Bank.Read(ch, s.slot, s.step))
		}
	}

	s.advance()
	s.clockStep++
	s.dirty = true

	if s.clockStep >= 2 {
		s.Slew.Retime(hw.TicksDiff(now, s.lastClock))
		start, stop := s.slewTarget()
		s.Slew.Replace(start, stop)
	}
	s.lastClock = now

	if s.rerolled && s.clockStep >= s.rerolledAt+2 {
		s.rerolled = false
	}
}

// ClockFall handles a falling clock edge
func (s *Sequencer) ClockFall() {
	if out := s.outs[PulseChannel]; out != nil {
		out.Off()
	}
}

func (s *Sequencer) advance() {
	if s.step >= s.firstStep && s.step < MaxStepLength-1 && s.step < s.lastStep() {
		s.step++
		return
	}

	s.step = s.firstStep
	if s.cycleMode {
		s.cycleStep = (s.cycleStep + 1) % len(s.cycleCode)
		s.selectCycleSlot()
	}
}

// selectCycleSlot switches to the slot named by the cycle cursor, unless the
// bank has no such slot
func (s *Sequencer) selectCycleSlot() {
	if s.cycleStep >= len(s.cycleCode) {
		s.cycleStep = 0
	}
	slot := int(s.cycleCode[s.cycleStep] - '0')
	if slot < s.Bank.NumPatterns() {
		s.slot = slot
	}
}

// slewTarget picks the voltages to interpolate between after an advance
func (s *Sequencer) slewTarget() (start, stop float64) {
	if s.patternLength == 2 {
		s.flipFlop = !s.flipFlop
		hi := 0
		if s.flipFlop {
			hi = 1
		}
		return voltageExtremes[hi], voltageExtremes[1-hi]
	}

	next := s.step + 1
	if s.step >= s.lastStep() {
		next = s.firstStep
	}
	return s.Bank.Read(SourceChannel, s.slot, s.step), s.Bank.Read(SourceChannel, s.slot, next)
}

// Poll runs one iteration of the main loop: inputs, slew output and the
// idle timeout
func (s *Sequencer) Poll(now uint32) {
	s.ReadInputs()
	if s.opts.SlewMode {
		if out := s.outs[SourceChannel]; out != nil {
			if s.Slew.Emit(now, out) {
				debug.LogEvery(100, "slew", "emit %s", formatVoltage(s.Slew.Last()))
			}
		}
	}
	s.CheckIdle(now)
}

// CheckIdle resets playback once no clock has arrived for the reset
// timeout. Returns true when a reset happened.
func (s *Sequencer) CheckIdle(now uint32) bool {
	if s.clockStep == 0 || hw.TicksDiff(now, s.lastClock) <= s.opts.ResetTimeoutMs {
		return false
	}
	s.Reset()
	debug.Log("clock", "idle reset to step %d slot %d", s.step, s.slot)
	return true
}

// Reset returns to the first step and the head of the cycle code, as if the
// clock had been idle. The next clock edge plays the first step again.
func (s *Sequencer) Reset() {
	s.step = s.firstStep
	s.clockStep = 0
	s.cycleStep = 0
	s.selectCycleSlot()
	s.dirty = true
}

// ReadInputs recomputes the loop window from the controls
func (s *Sequencer) ReadInputs() {
	length, first := s.patternLength, s.firstStep

	if s.inputs.Length != nil {
		pos := hw.ReadPosition(s.inputs.Length, MaxStepLength)
		length = pos + 1
		if s.inputs.LengthMod != nil {
			if val := 100 * s.inputs.LengthMod.Percent(); val > minModulationPercent {
				length = min(int(MaxStepLength/100.0*val)+pos, MaxStepLength-1) + 1
			}
		}
	}
	if s.inputs.FirstStep != nil {
		first = hw.ReadPosition(s.inputs.FirstStep, MaxStepLength)
	}

	s.SetWindow(first, length)
}

// SetWindow sets the first step and length, clamping so the window fits
func (s *Sequencer) SetWindow(first, length int) {
	length = max(1, min(length, MaxStepLength))
	first = max(0, min(first, MaxStepLength-length))

	if length == s.patternLength && first == s.firstStep {
		return
	}
	s.patternLength = length
	s.firstStep = first
	if s.step < first || s.step > s.lastStep() {
		s.step = first
	}
	s.dirty = true
}

// Button1 handles a release of the first button: short selects the
// previous slot, medium the next shape, long rerolls the current slot. A
// press held past the long window counts as medium.
func (s *Sequencer) Button1(press hw.Press) {
	switch press {
	case hw.PressLong:
		if err := s.Bank.RegenerateSlot(s.slot); err != nil {
			debug.Log("button", "regenerate failed: %v", err)
			return
		}
		s.rerolled = true
		s.rerolledAt = s.clockStep
		s.dirty = true
		s.save()
	case hw.PressMedium, hw.PressHeld:
		s.Slew.Shape = s.Slew.Shape.Next()
		s.dirty = true
		s.save()
	default:
		if s.slot > 0 {
			s.slot--
			s.dirty = true
		}
	}
}

// Button2 handles a release of the second button: short selects the next
// slot, appending one at the end of the bank; medium and long presses toggle
// cycle mode. A press held past the long window counts as short.
func (s *Sequencer) Button2(press hw.Press) {
	if press == hw.PressMedium || press == hw.PressLong {
		s.ToggleCycleMode()
		return
	}

	if s.slot < s.Bank.NumPatterns()-1 {
		s.slot++
		s.dirty = true
		return
	}
	if s.slot >= MaxRandomPatterns-1 {
		return
	}
	if err := s.Bank.AppendSlot(); err != nil {
		debug.Log("button", "append slot failed: %v", err)
		return
	}
	s.slot++
	s.dirty = true
	s.save()
}

// ToggleCycleMode flips cycle mode. Enabling it restarts the cycle code.
func (s *Sequencer) ToggleCycleMode() {
	s.cycleMode = !s.cycleMode
	if s.cycleMode {
		s.cycleStep = 0
		s.selectCycleSlot()
	}
	s.dirty = true
	s.save()
}

// SetCycleCode selects the slot sequence used by cycle mode
func (s *Sequencer) SetCycleCode(code string) bool {
	if !ValidCycleCode(code) || code == s.cycleCode {
		return false
	}
	s.cycleCode = code
	s.cycleStep = 0
	if s.cycleMode {
		s.selectCycleSlot()
	}
	s.dirty = true
	s.save()
	return true
}

// TakeDirty reports whether the display needs a redraw and clears the flag
func (s *Sequencer) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// Status is a copy of everything the display shows
type Status struct {
	Step          int
	ClockStep     int
	Slot          int
	NumPatterns   int
	PatternLength int
	FirstStep     int
	CycleMode     bool
	CycleCode     string
	CycleStep     int
	Shape         slew.Shape
	SlewMode      bool
	IntervalMs    int32
	Resolution    int
	Rerolled      bool
}

func (s *Sequencer) Status() Status {
	return Status{
		Step:          s.step,
		ClockStep:     s.clockStep,
		Slot:          s.slot,
		NumPatterns:   s.Bank.NumPatterns(),
		PatternLength: s.patternLength,
		FirstStep:     s.firstStep,
		CycleMode:     s.cycleMode,
		CycleCode:     s.cycleCode,
		CycleStep:     s.cycleStep,
		Shape:         s.Slew.Shape,
		SlewMode:      s.opts.SlewMode,
		IntervalMs:    s.Slew.Interval(),
		Resolution:    s.Slew.Resolution,
		Rerolled:      s.rerolled,
	}
}

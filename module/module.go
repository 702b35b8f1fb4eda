package module

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-melodium/debug"
	"go-melodium/hw"
	"go-melodium/midi"
	"go-melodium/sequencer"
)

// Loop timing
const (
	pollInterval = time.Millisecond
	displayFPS   = 30
	eventBuffer  = 64
)

// EventKind identifies what an Event asks the loop to do
type EventKind int

const (
	EventClockRise EventKind = iota
	EventClockFall
	EventClockReset // transport start: rewind, then rise
	EventButton1
	EventButton2
	EventCycleCode
	EventPatch
	EventPorts
)

// Event is a message into the module loop
type Event struct {
	Kind    EventKind
	At      uint32   // clock time of a clock edge
	Press   hw.Press // button events
	Code    string   // EventCycleCode: a code, or "" for the next preset
	Jack    int      // EventPatch
	Target  hw.Output
	ClockIn string // EventPorts
	Output  string
}

// View is what the front panel shows
type View struct {
	sequencer.Status
	Voltages [sequencer.NumChannels]float64
	Pulse    bool
	ClockIn  string // connected clock port, "" if none
	Output   string // connected CV port, "" if none
	Dropped  uint64 // events lost to a full queue
}

// Config wires a Module
type Config struct {
	Clock   hw.Clock
	Store   sequencer.Saver // nil disables persistence
	Bank    *sequencer.Bank
	Inputs  sequencer.Inputs
	Options sequencer.Options
}

// Module owns the sequencer and is the only goroutine that touches it.
// Everything else talks to it through events.
type Module struct {
	seq   *sequencer.Sequencer
	clock hw.Clock
	saver *asyncSaver
	jacks [sequencer.NumChannels]*patchOutput

	events  chan Event
	dropped atomic.Uint64

	clockIn string
	output  string

	mu   sync.RWMutex
	view View

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// New builds a module. Call Restore before Run.
func New(cfg Config) *Module {
	m := &Module{
		clock:      cfg.Clock,
		saver:      newAsyncSaver(cfg.Store),
		events:     make(chan Event, eventBuffer),
		UpdateChan: make(chan struct{}, 1),
	}
	if m.clock == nil {
		m.clock = hw.NewSystemClock()
	}

	var outs [sequencer.NumChannels]hw.Output
	for i := range m.jacks {
		m.jacks[i] = newPatchOutput()
		outs[i] = m.jacks[i]
	}
	m.seq = sequencer.New(cfg.Bank, outs, cfg.Inputs, m.saver, cfg.Options)
	return m
}

// Restore loads a snapshot into the sequencer. Not safe once Run started.
func (m *Module) Restore(snap *sequencer.Snapshot) error {
	if err := m.seq.Restore(snap); err != nil {
		return err
	}
	m.publish()
	return nil
}

// Send queues an event without blocking, reporting false if the queue is full
func (m *Module) Send(ev Event) bool {
	select {
	case m.events <- ev:
		return true
	default:
		n := m.dropped.Add(1)
		debug.LogEvery(10, "module", "event queue full, dropped=%d", n)
		return false
	}
}

// ClockEdge forwards an edge from a MIDI clock input. Safe to call from the
// driver's callback.
func (m *Module) ClockEdge(e midi.Edge) {
	ev := Event{Kind: EventClockFall, At: m.clock.TicksMs()}
	if e.Kind == midi.Rise {
		ev.Kind = EventClockRise
		if e.Reset {
			ev.Kind = EventClockReset
		}
	}
	m.Send(ev)
}

// Tap is a clock pulse from the panel: rise now, fall on the next event
func (m *Module) Tap() {
	now := m.clock.TicksMs()
	m.Send(Event{Kind: EventClockRise, At: now})
	m.Send(Event{Kind: EventClockFall, At: now})
}

// Press forwards a button press. button is 1 or 2.
func (m *Module) Press(button int, press hw.Press) {
	kind := EventButton1
	if button == 2 {
		kind = EventButton2
	}
	m.Send(Event{Kind: kind, Press: press})
}

// Patch plugs a jack into target, or unplugs it when target is nil
func (m *Module) Patch(jack int, target hw.Output) {
	m.Send(Event{Kind: EventPatch, Jack: jack, Target: target})
}

// SetPorts records the connected port names for display
func (m *Module) SetPorts(clockIn, output string) {
	m.Send(Event{Kind: EventPorts, ClockIn: clockIn, Output: output})
}

// View returns the last published state
func (m *Module) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// Run is the main loop (blocking - run in goroutine). It returns once ctx
// is done and the last pending save has been written.
func (m *Module) Run(ctx context.Context) {
	saveCtx, stopSaver := context.WithCancel(context.Background())
	go m.saver.run(saveCtx)
	defer func() {
		stopSaver()
		<-m.saver.done
	}()

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	display := time.NewTicker(time.Second / displayFPS)
	defer display.Stop()

	debug.Log("module", "running")
	for {
		select {
		case <-ctx.Done():
			m.publish()
			debug.Log("module", "stopped")
			return
		case ev := <-m.events:
			m.handle(ev)
		case <-poll.C:
			m.seq.Poll(m.clock.TicksMs())
		case <-display.C:
			m.publish()
		}
	}
}

func (m *Module) handle(ev Event) {
	switch ev.Kind {
	case EventClockReset:
		m.seq.Reset()
		m.seq.ClockRise(ev.At)
	case EventClockRise:
		m.seq.ClockRise(ev.At)
	case EventClockFall:
		m.seq.ClockFall()
	case EventButton1:
		m.seq.Button1(ev.Press)
	case EventButton2:
		m.seq.Button2(ev.Press)
	case EventCycleCode:
		code := ev.Code
		if code == "" {
			code = sequencer.NextCycleCode(m.seq.Status().CycleCode)
		}
		if !m.seq.SetCycleCode(code) {
			debug.Log("module", "rejected cycle code %q", code)
		}
	case EventPatch:
		if ev.Jack >= 0 && ev.Jack < len(m.jacks) {
			m.jacks[ev.Jack].replug(ev.Target)
		}
	case EventPorts:
		m.clockIn = ev.ClockIn
		m.output = ev.Output
		m.publish()
	}
}

// publish copies state for the panel and pings UpdateChan when it changed
func (m *Module) publish() {
	v := View{
		Status:  m.seq.Status(),
		ClockIn: m.clockIn,
		Output:  m.output,
		Dropped: m.dropped.Load(),
	}
	for i, j := range m.jacks {
		v.Voltages[i] = j.mirror.Value()
	}
	v.Pulse = m.jacks[sequencer.PulseChannel].mirror.IsOn()

	dirty := m.seq.TakeDirty()
	m.mu.Lock()
	changed := dirty || v != m.view
	m.view = v
	m.mu.Unlock()

	if changed {
		select {
		case m.UpdateChan <- struct{}{}:
		default:
		}
	}
}

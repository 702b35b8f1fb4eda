package midi

import (
	"fmt"

	"go-melodium/config"
	"go-melodium/debug"
	"go-melodium/hw"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Divider turns a 24 PPQN timing clock into step pulses. Each step is
// Division timing clocks long with the gate high for the first half.
type Divider struct {
	Division int
	count    int
	high     bool
}

// NewDivider returns a divider, treating division < 1 as 1
func NewDivider(division int) *Divider {
	if division < 1 {
		division = 1
	}
	return &Divider{Division: division}
}

// Tick consumes one timing clock
func (d *Divider) Tick() []Edge {
	var edges []Edge
	pos := d.count % d.Division
	if pos == 0 {
		edges = append(edges, Edge{Kind: Rise})
		d.high = true
	}
	if pos == d.Division/2 && d.high {
		edges = append(edges, Edge{Kind: Fall})
		d.high = false
	}
	d.count++
	return edges
}

// Start rewinds so the next timing clock begins a step
func (d *Divider) Start() {
	d.count = 0
}

// Stop drops a gate that is still high
func (d *Divider) Stop() []Edge {
	if !d.high {
		return nil
	}
	d.high = false
	return []Edge{{Kind: Fall}}
}

// Decoder maps raw MIDI messages to clock edges for one clock source
type Decoder struct {
	source   config.ClockSource
	gateNote int
	divider  *Divider
	held     int
	reset    bool
}

// NewDecoder builds a decoder from the clock config
func NewDecoder(cfg config.ClockConfig) *Decoder {
	return &Decoder{
		source:   cfg.Source,
		gateNote: cfg.GateNote,
		divider:  NewDivider(cfg.Division),
	}
}

// Decode returns the edges carried by msg, if any
func (d *Decoder) Decode(msg gomidi.Message) []Edge {
	switch d.source {
	case config.ClockMIDI:
		return d.decodeClock(msg)
	case config.ClockNoteGate:
		return d.decodeGate(msg)
	}
	return nil
}

func (d *Decoder) decodeClock(msg gomidi.Message) []Edge {
	if len(msg) != 1 {
		return nil
	}
	switch msg[0] {
	case TimingClock:
		edges := d.divider.Tick()
		if d.reset {
			for i := range edges {
				if edges[i].Kind == Rise {
					edges[i].Reset = true
					d.reset = false
				}
			}
		}
		return edges
	case Start:
		d.divider.Start()
		d.reset = true
		return d.divider.Stop()
	case Stop:
		return d.divider.Stop()
	}
	return nil
}

func (d *Decoder) decodeGate(msg gomidi.Message) []Edge {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		if !d.matches(note) {
			return nil
		}
		d.held++
		if d.held == 1 {
			return []Edge{{Kind: Rise}}
		}
	case msg.GetNoteEnd(&channel, &note):
		if !d.matches(note) || d.held == 0 {
			return nil
		}
		d.held--
		if d.held == 0 {
			return []Edge{{Kind: Fall}}
		}
	}
	return nil
}

func (d *Decoder) matches(note uint8) bool {
	return d.gateNote < 0 || int(note) == d.gateNote
}

// ClockIn listens on a MIDI input port and hands derived clock edges and
// button presses to callbacks. The callbacks run on the driver's goroutine
// and must not block.
type ClockIn struct {
	name     string
	stopFunc func()
}

// OpenClockIn starts listening on port. Button notes are checked first so a
// note gate listening to any note does not see them.
func OpenClockIn(port drivers.In, cfg config.ClockConfig, buttons config.ButtonConfig,
	deliver func(Edge), onPress func(button int, press hw.Press)) (*ClockIn, error) {
	listen := newListener(cfg, buttons, deliver, onPress)
	stop, err := gomidi.ListenTo(port, listen, gomidi.UseTimeCode())
	if err != nil {
		return nil, fmt.Errorf("open clock input %s: %w", port.String(), err)
	}
	debug.Log("midi", "clock in %s (%s, division %d)", port.String(), cfg.Source, cfg.Division)
	return &ClockIn{name: port.String(), stopFunc: stop}, nil
}

func newListener(cfg config.ClockConfig, buttons config.ButtonConfig,
	deliver func(Edge), onPress func(button int, press hw.Press)) func(gomidi.Message, int32) {
	dec := NewDecoder(cfg)
	btn := NewButtonDecoder(buttons)
	return func(msg gomidi.Message, timestampms int32) {
		if consumed, button, press, ok := btn.Decode(msg, timestampms); consumed {
			if ok && onPress != nil {
				debug.Log("midi", "button %d %s", button, press)
				onPress(button, press)
			}
			return
		}
		for _, e := range dec.Decode(msg) {
			deliver(e)
		}
	}
}

// Name is the port name
func (c *ClockIn) Name() string {
	return c.name
}

// Close stops listening
func (c *ClockIn) Close() error {
	if c.stopFunc != nil {
		c.stopFunc()
		c.stopFunc = nil
	}
	return nil
}

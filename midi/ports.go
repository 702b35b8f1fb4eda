package midi

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-melodium/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrScanTimeout is returned when the driver does not answer a port listing
var ErrScanTimeout = errors.New("midi port scan timed out")

// scanTimeout bounds a port listing (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

// Ports is one listing of the system's MIDI ports
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// ScanPorts lists MIDI ports, giving up after the scan timeout
func ScanPorts() (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(scanTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return Ports{}, ErrScanTimeout
	}
}

// MatchPort reports whether a port name matches a configured name. Matching
// is case insensitive and by substring, so "scarlett" finds
// "Scarlett 2i4 USB:0".
func MatchPort(portName, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(portName), strings.ToLower(want))
}

// FindIn returns the first input whose name matches want
func (p Ports) FindIn(want string) drivers.In {
	for _, in := range p.In {
		if MatchPort(in.String(), want) {
			return in
		}
	}
	return nil
}

// FindOut returns the first output whose name matches want
func (p Ports) FindOut(want string) drivers.Out {
	for _, out := range p.Out {
		if MatchPort(out.String(), want) {
			return out
		}
	}
	return nil
}

// PortEvent is emitted when a watched port appears or disappears
type PortEvent struct {
	Type  PortEventType
	Name  string
	Input bool
	In    drivers.In  // set for connected clock inputs
	Out   drivers.Out // set for connected CV outputs
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

func (t PortEventType) String() string {
	if t == PortConnected {
		return "connected"
	}
	return "disconnected"
}

// PortWatcher handles hot-plug of the clock input and CV output ports
type PortWatcher struct {
	inName   string
	outName  string
	events   chan PortEvent
	pollRate time.Duration

	in  string // name of the connected input, "" if none
	out string
}

// NewPortWatcher watches for the named input and output. Either name may be
// empty to skip that direction.
func NewPortWatcher(inName, outName string) *PortWatcher {
	return &PortWatcher{
		inName:   inName,
		outName:  outName,
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of connect/disconnect events
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *PortWatcher) scan(ctx context.Context) {
	ports, err := ScanPorts()
	if err != nil {
		debug.Log("midi", "scan: %v", err)
		return
	}
	for _, ev := range w.diff(ports) {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// diff updates the connected set from a listing and returns the changes
func (w *PortWatcher) diff(ports Ports) []PortEvent {
	var events []PortEvent

	if w.inName != "" {
		in := ports.FindIn(w.inName)
		switch {
		case in != nil && w.in == "":
			w.in = in.String()
			events = append(events, PortEvent{Type: PortConnected, Name: w.in, Input: true, In: in})
		case in == nil && w.in != "":
			events = append(events, PortEvent{Type: PortDisconnected, Name: w.in, Input: true})
			w.in = ""
		}
	}

	if w.outName != "" {
		out := ports.FindOut(w.outName)
		switch {
		case out != nil && w.out == "":
			w.out = out.String()
			events = append(events, PortEvent{Type: PortConnected, Name: w.out, Out: out})
		case out == nil && w.out != "":
			events = append(events, PortEvent{Type: PortDisconnected, Name: w.out})
			w.out = ""
		}
	}

	for _, ev := range events {
		debug.Log("midi", "port %s: %s", ev.Name, ev.Type)
	}
	return events
}

package midi

import (
	"go-melodium/config"
	"go-melodium/hw"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ButtonDecoder turns note on/off pairs for the two button notes into
// classified presses. Hold time is measured with the listener's timestamps.
type ButtonDecoder struct {
	notes   [2]int
	down    [2]bool
	pressed [2]int32
}

// NewButtonDecoder builds a decoder from the button config
func NewButtonDecoder(cfg config.ButtonConfig) *ButtonDecoder {
	return &ButtonDecoder{notes: [2]int{cfg.Button1Note, cfg.Button2Note}}
}

// Decode reports whether msg belongs to a button note and, on release, which
// button (1 or 2) was pressed for how long. Messages for button notes are
// consumed even when they complete no press.
func (d *ButtonDecoder) Decode(msg gomidi.Message, tsMs int32) (consumed bool, button int, press hw.Press, ok bool) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		i := d.index(note)
		if i < 0 {
			return false, 0, 0, false
		}
		if !d.down[i] {
			d.down[i] = true
			d.pressed[i] = tsMs
		}
		return true, 0, 0, false

	case msg.GetNoteEnd(&channel, &note):
		i := d.index(note)
		if i < 0 {
			return false, 0, 0, false
		}
		if !d.down[i] {
			return true, 0, 0, false
		}
		d.down[i] = false
		return true, i + 1, hw.ClassifyPress(tsMs - d.pressed[i]), true
	}
	return false, 0, 0, false
}

func (d *ButtonDecoder) index(note uint8) int {
	for i, n := range d.notes {
		if n >= 0 && int(note) == n {
			return i
		}
	}
	return -1
}

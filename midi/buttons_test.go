package midi

import (
	"testing"

	"go-melodium/config"
	"go-melodium/hw"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestButtonDecoderClassifiesHold(t *testing.T) {
	tests := []struct {
		note   uint8
		heldMs int32
		button int
		press  hw.Press
	}{
		{48, 100, 1, hw.PressShort},
		{48, 1000, 1, hw.PressMedium},
		{50, 2500, 2, hw.PressLong},
		{50, 6000, 2, hw.PressHeld},
	}
	for _, tt := range tests {
		dec := NewButtonDecoder(config.ButtonConfig{Button1Note: 48, Button2Note: 50})
		if consumed, _, _, ok := dec.Decode(gomidi.NoteOn(0, tt.note, 100), 1000); !consumed || ok {
			t.Fatalf("note on %d: consumed %v ok %v", tt.note, consumed, ok)
		}
		consumed, button, press, ok := dec.Decode(gomidi.NoteOff(0, tt.note), 1000+tt.heldMs)
		if !consumed || !ok || button != tt.button || press != tt.press {
			t.Errorf("held %d ms: got button %d %s (ok %v), want %d %s",
				tt.heldMs, button, press, ok, tt.button, tt.press)
		}
	}
}

func TestButtonDecoderIgnoresOtherNotes(t *testing.T) {
	dec := NewButtonDecoder(config.ButtonConfig{Button1Note: 48, Button2Note: -1})
	if consumed, _, _, _ := dec.Decode(gomidi.NoteOn(0, 60, 100), 0); consumed {
		t.Error("unmapped note should pass through")
	}
	if consumed, _, _, _ := dec.Decode(gomidi.ControlChange(0, 48, 127), 0); consumed {
		t.Error("control change should pass through")
	}

	// release without a press is swallowed but reports nothing
	consumed, _, _, ok := dec.Decode(gomidi.NoteOff(0, 48), 500)
	if !consumed || ok {
		t.Errorf("stray release: consumed %v ok %v", consumed, ok)
	}

	// zero velocity note on counts as a release
	dec.Decode(gomidi.NoteOn(0, 48, 100), 0)
	if _, button, press, ok := dec.Decode(gomidi.NoteOn(0, 48, 0), 400); !ok || button != 1 || press != hw.PressMedium {
		t.Errorf("velocity 0 release: got %d %s ok %v", button, press, ok)
	}
}

func TestListenerRoutesButtonsBeforeGate(t *testing.T) {
	var edges []Edge
	type pressed struct {
		button int
		press  hw.Press
	}
	var presses []pressed
	listen := newListener(
		config.ClockConfig{Source: config.ClockNoteGate, GateNote: -1},
		config.ButtonConfig{Button1Note: 48, Button2Note: 50},
		func(e Edge) { edges = append(edges, e) },
		func(button int, press hw.Press) { presses = append(presses, pressed{button, press}) },
	)

	listen(gomidi.NoteOn(0, 50, 100), 0)
	listen(gomidi.NoteOff(0, 50), 2200)
	if len(edges) != 0 {
		t.Errorf("button note leaked into the gate: %+v", edges)
	}
	if len(presses) != 1 || presses[0] != (pressed{2, hw.PressLong}) {
		t.Errorf("presses %+v", presses)
	}

	listen(gomidi.NoteOn(0, 36, 100), 3000)
	listen(gomidi.NoteOff(0, 36), 3050)
	if k := kinds(edges); k != "RF" {
		t.Errorf("gate note should still clock, got %q", k)
	}
	if len(presses) != 1 {
		t.Errorf("gate note should not press, got %+v", presses)
	}
}

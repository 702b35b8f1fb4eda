package midi

import "testing"

func TestMatchPort(t *testing.T) {
	tests := []struct {
		port, want string
		match      bool
	}{
		{"Scarlett 2i4 USB:0", "scarlett", true},
		{"Scarlett 2i4 USB:0", "USB", true},
		{"Midi Through Port-0", "scarlett", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := MatchPort(tt.port, tt.want); got != tt.match {
			t.Errorf("MatchPort(%q, %q) = %v", tt.port, tt.want, got)
		}
	}
}

func TestWatcherReportsDisconnect(t *testing.T) {
	w := NewPortWatcher("clock", "synth")
	w.in = "Clock Box"
	w.out = "Synth Out"

	events := w.diff(Ports{})
	if len(events) != 2 {
		t.Fatalf("expected 2 disconnects, got %d", len(events))
	}
	if events[0].Type != PortDisconnected || !events[0].Input || events[0].Name != "Clock Box" {
		t.Errorf("unexpected input event %+v", events[0])
	}
	if events[1].Type != PortDisconnected || events[1].Input || events[1].Name != "Synth Out" {
		t.Errorf("unexpected output event %+v", events[1])
	}
	if len(w.diff(Ports{})) != 0 {
		t.Error("expected no repeat events")
	}
}

func TestWatcherIgnoresUnconfigured(t *testing.T) {
	w := NewPortWatcher("", "")
	if len(w.diff(Ports{})) != 0 {
		t.Error("expected no events without configured names")
	}
}

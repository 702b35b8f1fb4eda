package midi

// MIDI realtime status bytes
const (
	TimingClock uint8 = 0xF8
	Start       uint8 = 0xFA
	Continue    uint8 = 0xFB
	Stop        uint8 = 0xFC
)

// EdgeKind is the direction of a derived clock edge
type EdgeKind int

const (
	Rise EdgeKind = iota
	Fall
)

func (k EdgeKind) String() string {
	if k == Rise {
		return "rise"
	}
	return "fall"
}

// Edge is a clock transition derived from incoming MIDI
type Edge struct {
	Kind EdgeKind
	// Reset is set on the edge produced by a transport Start
	Reset bool
}

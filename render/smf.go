package render

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-melodium/config"
	"go-melodium/hw"
	"go-melodium/midi"
	"go-melodium/sequencer"
)

const ticksPerQuarter = 960

// WriteSMF writes the recording as a single track MIDI file using the same
// mapping as the live output: pitch bend plus coarse CC for the source jack,
// CCs for the stepped jacks and a note for the end of cycle pulse
func (r *Recording) WriteSMF(path string, bpm float64, out config.OutputConfig) error {
	if bpm <= 0 {
		return fmt.Errorf("invalid tempo %v", bpm)
	}
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTempo(bpm))

	ticksPerMs := ticksPerQuarter * bpm / 60000
	var lastTick uint32
	at := func(ms int) uint32 {
		tick := uint32(float64(ms) * ticksPerMs)
		delta := tick - lastTick
		lastTick = tick
		return delta
	}

	for _, ev := range r.Events(out) {
		track.Add(at(ev.Ms), ev.Msg)
	}
	track.Close(at(r.DurationMs()))

	if err := sm.Add(track); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Event is a MIDI message at a millisecond offset
type Event struct {
	Ms  int
	Msg gomidi.Message
}

// Events lists, in time order, the MIDI messages the live output would have
// sent
func (r *Recording) Events(out config.OutputConfig) []Event {
	var events []Event
	lastCC := make(map[uint8]int)
	lastBend := int32(-1 << 20)
	gate := false

	cc := func(ms int, num uint8, v float64) {
		val := midi.VoltageToCC(v)
		if prev, ok := lastCC[num]; ok && prev == int(val) {
			return
		}
		lastCC[num] = int(val)
		events = append(events, Event{ms, gomidi.ControlChange(out.Channel, num, val)})
	}

	for ms, f := range r.Frames {
		if bend := midi.VoltageToBend(f[sequencer.SourceChannel]); int32(bend) != lastBend {
			lastBend = int32(bend)
			events = append(events, Event{ms, gomidi.Pitchbend(out.Channel, bend)})
		}
		cc(ms, out.SourceCC, f[sequencer.SourceChannel])
		for i, num := range out.StepCCs {
			if i+1 >= sequencer.PulseChannel {
				break
			}
			cc(ms, num, f[i+1])
		}
		high := f[sequencer.PulseChannel] > hw.MaxOutputVoltage/2
		if high != gate {
			gate = high
			if high {
				events = append(events, Event{ms, gomidi.NoteOn(out.Channel, out.PulseNote, 127)})
			} else {
				events = append(events, Event{ms, gomidi.NoteOff(out.Channel, out.PulseNote)})
			}
		}
	}
	return events
}

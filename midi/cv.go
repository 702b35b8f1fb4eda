package midi

import (
	"context"
	"math"
	"sync/atomic"

	"go-melodium/debug"
	"go-melodium/hw"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Sender queues messages for a MIDI output so that the module loop never
// waits on the driver. When the queue is full the message is dropped.
type Sender struct {
	send    func(msg gomidi.Message) error
	queue   chan gomidi.Message
	dropped atomic.Uint64
}

// NewSender wraps a send function with a queue of size n
func NewSender(send func(msg gomidi.Message) error, n int) *Sender {
	if n < 1 {
		n = 1
	}
	return &Sender{send: send, queue: make(chan gomidi.Message, n)}
}

// Send enqueues msg, reporting false if it was dropped
func (s *Sender) Send(msg gomidi.Message) bool {
	select {
	case s.queue <- msg:
		return true
	default:
		n := s.dropped.Add(1)
		debug.LogEvery(50, "midi", "output queue full, dropped=%d", n)
		return false
	}
}

// Dropped counts messages lost to a full queue
func (s *Sender) Dropped() uint64 {
	return s.dropped.Load()
}

// Run drains the queue until ctx is done (blocking - run in goroutine)
func (s *Sender) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.queue:
			if err := s.send(msg); err != nil {
				debug.LogEvery(50, "midi", "send failed: %v", err)
			}
		}
	}
}

// VoltageToCC scales 0-10V onto a 7 bit controller value
func VoltageToCC(v float64) uint8 {
	v = hw.ClampVoltage(v)
	return uint8(math.Round(v / hw.MaxOutputVoltage * 127))
}

// VoltageToBend scales 0-10V onto the signed 14 bit pitch bend range
func VoltageToBend(v float64) int16 {
	v = hw.ClampVoltage(v)
	return int16(math.Round(v/hw.MaxOutputVoltage*16383)) - 8192
}

// CCOutput renders a stepped CV jack as a control change
type CCOutput struct {
	sender  *Sender
	channel uint8
	cc      uint8
	last    int
}

// NewCCOutput sends on channel/cc
func NewCCOutput(s *Sender, channel, cc uint8) *CCOutput {
	return &CCOutput{sender: s, channel: channel, cc: cc, last: -1}
}

func (o *CCOutput) On()  { o.Voltage(hw.MaxOutputVoltage) }
func (o *CCOutput) Off() { o.Voltage(hw.MinOutputVoltage) }

// Voltage sends the scaled value if it changed
func (o *CCOutput) Voltage(v float64) {
	val := VoltageToCC(v)
	if int(val) == o.last {
		return
	}
	if o.sender.Send(gomidi.ControlChange(o.channel, o.cc, val)) {
		o.last = int(val)
	}
}

// BendOutput renders the slewed jack as pitch bend, with a coarse CC copy for
// receivers that cannot map pitch bend
type BendOutput struct {
	sender  *Sender
	channel uint8
	coarse  *CCOutput
	last    int32
}

// NewBendOutput sends pitch bend on channel and the coarse value on cc
func NewBendOutput(s *Sender, channel, cc uint8) *BendOutput {
	return &BendOutput{
		sender:  s,
		channel: channel,
		coarse:  NewCCOutput(s, channel, cc),
		last:    math.MinInt32,
	}
}

func (o *BendOutput) On()  { o.Voltage(hw.MaxOutputVoltage) }
func (o *BendOutput) Off() { o.Voltage(hw.MinOutputVoltage) }

// Voltage sends the bend value if it changed
func (o *BendOutput) Voltage(v float64) {
	bend := VoltageToBend(v)
	if int32(bend) != o.last && o.sender.Send(gomidi.Pitchbend(o.channel, bend)) {
		o.last = int32(bend)
	}
	o.coarse.Voltage(v)
}

// GateOutput renders the end of cycle jack as a held note
type GateOutput struct {
	sender  *Sender
	channel uint8
	note    uint8
	on      bool
}

// NewGateOutput plays note on channel
func NewGateOutput(s *Sender, channel, note uint8) *GateOutput {
	return &GateOutput{sender: s, channel: channel, note: note}
}

func (o *GateOutput) On() {
	if o.on {
		return
	}
	o.on = o.sender.Send(gomidi.NoteOn(o.channel, o.note, 127))
}

func (o *GateOutput) Off() {
	if !o.on {
		return
	}
	o.on = !o.sender.Send(gomidi.NoteOff(o.channel, o.note))
}

// Voltage treats anything above half scale as high
func (o *GateOutput) Voltage(v float64) {
	if v > hw.MaxOutputVoltage/2 {
		o.On()
	} else {
		o.Off()
	}
}

package main

import (
	"context"

	"go-melodium/config"
	"go-melodium/debug"
	"go-melodium/hw"
	"go-melodium/midi"
	"go-melodium/module"
	"go-melodium/sequencer"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// outputQueue is how many MIDI messages may wait for the driver
const outputQueue = 256

// rig opens and closes MIDI ports as the watcher reports them and patches
// the module's jacks to match
type rig struct {
	mod *module.Module
	cfg *config.Config

	clockIn    *midi.ClockIn
	stopSender context.CancelFunc
	inName     string
	outName    string
}

func newRig(mod *module.Module, cfg *config.Config) *rig {
	return &rig{mod: mod, cfg: cfg}
}

func (r *rig) run(ctx context.Context, events <-chan midi.PortEvent) {
	defer r.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, ev)
		}
	}
}

func (r *rig) handle(ctx context.Context, ev midi.PortEvent) {
	switch {
	case ev.Input && ev.Type == midi.PortConnected:
		in, err := midi.OpenClockIn(ev.In, r.cfg.Clock, r.cfg.Buttons, r.mod.ClockEdge, r.mod.Press)
		if err != nil {
			debug.Log("midi", "%v", err)
			return
		}
		r.clockIn = in
		r.inName = ev.Name

	case ev.Input && ev.Type == midi.PortDisconnected:
		if r.clockIn != nil {
			r.clockIn.Close()
			r.clockIn = nil
		}
		r.inName = ""

	case ev.Type == midi.PortConnected:
		send, err := gomidi.SendTo(ev.Out)
		if err != nil {
			debug.Log("midi", "open output %s: %v", ev.Name, err)
			return
		}
		sender := midi.NewSender(send, outputQueue)
		senderCtx, stop := context.WithCancel(ctx)
		go sender.Run(senderCtx)
		r.replaceSender(stop)
		r.outName = ev.Name
		for jack, out := range jackOutputs(sender, r.cfg.Output) {
			r.mod.Patch(jack, out)
		}

	case ev.Type == midi.PortDisconnected:
		for jack := 0; jack < sequencer.NumChannels; jack++ {
			r.mod.Patch(jack, nil)
		}
		r.replaceSender(nil)
		r.outName = ""
	}
	r.mod.SetPorts(r.inName, r.outName)
}

// replaceSender stops the running sender, if any, and keeps stop for the next
func (r *rig) replaceSender(stop context.CancelFunc) {
	if r.stopSender != nil {
		r.stopSender()
	}
	r.stopSender = stop
}

func (r *rig) closeAll() {
	if r.clockIn != nil {
		r.clockIn.Close()
	}
	if r.stopSender != nil {
		r.stopSender()
	}
}

// jackOutputs maps the six jacks onto MIDI: pitch bend for the source, CCs
// for the stepped channels and a note for the end of cycle pulse
func jackOutputs(s *midi.Sender, cfg config.OutputConfig) [sequencer.NumChannels]hw.Output {
	var outs [sequencer.NumChannels]hw.Output
	outs[sequencer.SourceChannel] = midi.NewBendOutput(s, cfg.Channel, cfg.SourceCC)
	for i := 0; i < len(cfg.StepCCs) && i < sequencer.PulseChannel-1; i++ {
		outs[i+1] = midi.NewCCOutput(s, cfg.Channel, cfg.StepCCs[i])
	}
	outs[sequencer.PulseChannel] = midi.NewGateOutput(s, cfg.Channel, cfg.PulseNote)
	return outs
}

package main

import (
	"context"
	"testing"

	"go-melodium/config"
	"go-melodium/midi"
	"go-melodium/sequencer"
)

func TestJackOutputs(t *testing.T) {
	s := midi.NewSender(nil, 8)
	outs := jackOutputs(s, config.DefaultConfig().Output)

	if _, ok := outs[sequencer.SourceChannel].(*midi.BendOutput); !ok {
		t.Errorf("source jack should be pitch bend, got %T", outs[sequencer.SourceChannel])
	}
	for jack := 1; jack < sequencer.PulseChannel; jack++ {
		if _, ok := outs[jack].(*midi.CCOutput); !ok {
			t.Errorf("jack %d should be a CC, got %T", jack, outs[jack])
		}
	}
	if _, ok := outs[sequencer.PulseChannel].(*midi.GateOutput); !ok {
		t.Errorf("pulse jack should be a note, got %T", outs[sequencer.PulseChannel])
	}
}

func TestJackOutputsShortCCList(t *testing.T) {
	cfg := config.DefaultConfig().Output
	cfg.StepCCs = []uint8{20}
	outs := jackOutputs(midi.NewSender(nil, 8), cfg)
	if outs[1] == nil || outs[2] != nil {
		t.Errorf("expected only jack 1 mapped, got %v", outs)
	}
}

func TestReplaceSenderStopsPrevious(t *testing.T) {
	r := newRig(nil, config.DefaultConfig())
	first, stopFirst := context.WithCancel(context.Background())
	second, stopSecond := context.WithCancel(context.Background())

	r.replaceSender(stopFirst)
	r.replaceSender(stopSecond)
	if first.Err() == nil {
		t.Error("reconnecting the output should stop the old sender")
	}
	if second.Err() != nil {
		t.Error("new sender stopped early")
	}

	r.replaceSender(nil)
	if second.Err() == nil {
		t.Error("disconnect should stop the sender")
	}
	if r.stopSender != nil {
		t.Error("expected no sender after disconnect")
	}
}

package midi

import (
	"context"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestVoltageScaling(t *testing.T) {
	ccs := []struct {
		v    float64
		want uint8
	}{
		{-1, 0}, {0, 0}, {5, 64}, {10, 127}, {12, 127},
	}
	for _, tt := range ccs {
		if got := VoltageToCC(tt.v); got != tt.want {
			t.Errorf("VoltageToCC(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}

	bends := []struct {
		v    float64
		want int16
	}{
		{0, -8192}, {10, 8191}, {5, 0}, {20, 8191},
	}
	for _, tt := range bends {
		if got := VoltageToBend(tt.v); got != tt.want {
			t.Errorf("VoltageToBend(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func drain(s *Sender) []gomidi.Message {
	var msgs []gomidi.Message
	for {
		select {
		case m := <-s.queue:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestCCOutputSkipsRepeats(t *testing.T) {
	s := NewSender(nil, 16)
	out := NewCCOutput(s, 2, 20)
	out.Voltage(5)
	out.Voltage(5)
	out.Voltage(10)

	msgs := drain(s)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	var ch, cc, val uint8
	if !msgs[1].GetControlChange(&ch, &cc, &val) || ch != 2 || cc != 20 || val != 127 {
		t.Errorf("unexpected message % X", []byte(msgs[1]))
	}
}

func TestBendOutputSendsCoarseCopy(t *testing.T) {
	s := NewSender(nil, 16)
	out := NewBendOutput(s, 0, 19)
	out.Voltage(10)

	msgs := drain(s)
	if len(msgs) != 2 {
		t.Fatalf("expected bend and CC, got %d messages", len(msgs))
	}
	if b := []byte(msgs[0]); len(b) != 3 || b[0] != 0xE0 || b[1] != 0x7F || b[2] != 0x7F {
		t.Errorf("unexpected bend % X", b)
	}
	var ch, cc, val uint8
	if !msgs[1].GetControlChange(&ch, &cc, &val) || cc != 19 || val != 127 {
		t.Errorf("unexpected coarse CC % X", []byte(msgs[1]))
	}
}

func TestGateOutput(t *testing.T) {
	s := NewSender(nil, 16)
	out := NewGateOutput(s, 1, 60)
	out.On()
	out.On()
	out.Off()
	out.Off()
	out.Voltage(9)

	msgs := drain(s)
	if len(msgs) != 3 {
		t.Fatalf("expected on, off, on; got %d messages", len(msgs))
	}
	var ch, key, vel uint8
	if !msgs[0].GetNoteOn(&ch, &key, &vel) || ch != 1 || key != 60 || vel == 0 {
		t.Errorf("unexpected note on % X", []byte(msgs[0]))
	}
	if !msgs[1].GetNoteEnd(&ch, &key) || key != 60 {
		t.Errorf("unexpected note off % X", []byte(msgs[1]))
	}
}

func TestSenderDropsWhenFull(t *testing.T) {
	s := NewSender(nil, 1)
	if !s.Send(gomidi.NoteOn(0, 1, 1)) {
		t.Fatal("first send should queue")
	}
	if s.Send(gomidi.NoteOn(0, 2, 1)) {
		t.Error("second send should drop")
	}
	if s.Dropped() != 1 {
		t.Errorf("expected 1 dropped, got %d", s.Dropped())
	}
}

func TestSenderRun(t *testing.T) {
	var mu sync.Mutex
	var sent []gomidi.Message
	s := NewSender(func(msg gomidi.Message) error {
		mu.Lock()
		sent = append(sent, msg)
		mu.Unlock()
		return nil
	}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.Send(gomidi.ControlChange(0, 20, 1))
	s.Send(gomidi.ControlChange(0, 20, 2))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(sent)
		mu.Unlock()
		if n == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(sent) != 2 {
		t.Errorf("expected 2 sent messages, got %d", len(sent))
	}
}

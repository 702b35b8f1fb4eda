package sequencer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	MaxStepLength     = 32
	NumChannels       = 6
	SourceChannel     = 0 // feeds the slew engine
	PulseChannel      = 5 // end of cycle gate, never read as CV
	MaxRandomPatterns = 4 // bounds the bank allocation
	MaxCVVoltage      = 9 // keeps stored values single digit
	stepDecimals      = 3
)

var (
	ErrBankFull   = errors.New("pattern bank is full")
	ErrSlotRange  = errors.New("pattern slot out of range")
	ErrAllocation = errors.New("pattern bank allocation refused")
	ErrBadBank    = errors.New("malformed pattern bank")
)

// Pattern is one loop of step voltages for a single channel and slot
type Pattern [MaxStepLength]float64

// Bank holds every channel's patterns. All channels always have the same
// number of slots.
type Bank struct {
	channels [NumChannels][]Pattern
	rng      *rand.Rand
}

// NewBank creates an empty bank. A nil rng uses the shared math/rand source.
func NewBank(rng *rand.Rand) *Bank {
	return &Bank{rng: rng}
}

func (b *Bank) float64() float64 {
	if b.rng != nil {
		return b.rng.Float64()
	}
	return rand.Float64()
}

// fill samples uniform voltages in [0, MaxCVVoltage] rounded to 3 places
func (b *Bank) fill(p *Pattern) {
	scale := math.Pow(10, stepDecimals)
	for i := range p {
		p[i] = math.Round(b.float64()*MaxCVVoltage*scale) / scale
	}
}

// Initialize discards the bank and creates slots fresh patterns per channel
func (b *Bank) Initialize(slots int) error {
	if slots < 1 {
		return fmt.Errorf("initialize %d slots: %w", slots, ErrSlotRange)
	}
	if slots > MaxRandomPatterns {
		return fmt.Errorf("initialize %d slots: %w", slots, ErrAllocation)
	}
	var channels [NumChannels][]Pattern
	for ch := range channels {
		channels[ch] = make([]Pattern, slots, MaxRandomPatterns)
		for s := range channels[ch] {
			b.fill(&channels[ch][s])
		}
	}
	b.channels = channels
	return nil
}

// AppendSlot adds one new random pattern to every channel
func (b *Bank) AppendSlot() error {
	if b.NumPatterns() >= MaxRandomPatterns {
		return ErrBankFull
	}
	for ch := range b.channels {
		var p Pattern
		b.fill(&p)
		b.channels[ch] = append(b.channels[ch], p)
	}
	return nil
}

// RegenerateSlot rerolls the patterns at slot for every channel in place
func (b *Bank) RegenerateSlot(slot int) error {
	if slot < 0 || slot >= b.NumPatterns() {
		return fmt.Errorf("regenerate slot %d: %w", slot, ErrSlotRange)
	}
	for ch := range b.channels {
		b.fill(&b.channels[ch][slot])
	}
	return nil
}

// Read returns a stored voltage. Indices must be in range.
func (b *Bank) Read(channel, slot, step int) float64 {
	return b.channels[channel][slot][step]
}

// NumPatterns is the slot count shared by all channels
func (b *Bank) NumPatterns() int {
	return len(b.channels[0])
}

// Patterns returns a deep copy indexed channel, slot
func (b *Bank) Patterns() [][]Pattern {
	out := make([][]Pattern, NumChannels)
	for ch := range b.channels {
		out[ch] = append([]Pattern(nil), b.channels[ch]...)
	}
	return out
}

// Load replaces the bank with a copy of channels after validating its shape
func (b *Bank) Load(channels [][]Pattern) error {
	if len(channels) != NumChannels {
		return fmt.Errorf("%d channels: %w", len(channels), ErrBadBank)
	}
	slots := len(channels[0])
	if slots < 1 || slots > MaxRandomPatterns {
		return fmt.Errorf("%d slots: %w", slots, ErrBadBank)
	}
	var loaded [NumChannels][]Pattern
	for ch, pats := range channels {
		if len(pats) != slots {
			return fmt.Errorf("channel %d has %d slots, want %d: %w", ch, len(pats), slots, ErrBadBank)
		}
		loaded[ch] = make([]Pattern, slots, MaxRandomPatterns)
		copy(loaded[ch], pats)
	}
	b.channels = loaded
	return nil
}

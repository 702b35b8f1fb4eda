package sequencer

import (
	"strings"

	"go-melodium/slew"
)

// Snapshot is the persisted part of the sequencer
type Snapshot struct {
	PatternBank [][]Pattern `json:"patternBank"` // channel -> slot -> step
	CycleMode   bool        `json:"cycleMode"`
	PatternSlot int         `json:"patternSlot"`
	Shape       slew.Shape  `json:"shape"`
	CycleCode   string      `json:"cycleCode,omitempty"`
}

// CycleCodes are the selectable slot sequences for cycle mode
var CycleCodes = []string{
	"0000", "0101", "0001", "0011",
	"1212", "1112", "1122", "0012",
	"2323", "2223", "2233", "0123",
}

// DefaultCycleCode plays every slot in order
const DefaultCycleCode = "0123"

// ValidCycleCode reports whether code is a non-empty run of slot digits
func ValidCycleCode(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		if r < '0' || int(r-'0') >= MaxRandomPatterns {
			return false
		}
	}
	return true
}

// NextCycleCode returns the preset after code, wrapping
func NextCycleCode(code string) string {
	for i, c := range CycleCodes {
		if c == code {
			return CycleCodes[(i+1)%len(CycleCodes)]
		}
	}
	return CycleCodes[0]
}

// FormatPattern renders a pattern's first n steps for dumps
func FormatPattern(p *Pattern, n int) string {
	if n > MaxStepLength {
		n = MaxStepLength
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatVoltage(p[i]))
	}
	return b.String()
}

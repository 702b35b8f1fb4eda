package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// StepGlyphs are the runes used by the step row
type StepGlyphs struct {
	Empty    rune
	Active   rune
	Playhead rune
	First    rune
}

// StepGlyph picks the rune for step i given the loop window
func StepGlyph(i, first, length, step int, g StepGlyphs) rune {
	switch {
	case i == step:
		return g.Playhead
	case i == first:
		return g.First
	case i > first && i < first+length:
		return g.Active
	}
	return g.Empty
}

// RenderStepRow renders all steps, highlighting the loop window
func RenderStepRow(steps, first, length, step int, g StepGlyphs, active, muted lipgloss.Color) string {
	on := lipgloss.NewStyle().Foreground(active)
	off := lipgloss.NewStyle().Foreground(muted)

	var out strings.Builder
	for i := 0; i < steps; i++ {
		if i > 0 && i%8 == 0 {
			out.WriteString(" ")
		}
		glyph := string(StepGlyph(i, first, length, step, g))
		if i >= first && i < first+length {
			out.WriteString(on.Render(glyph))
		} else {
			out.WriteString(off.Render(glyph))
		}
	}
	return out.String()
}

// BarCells is how many of width cells a level v out of max fills
func BarCells(v, max float64, width int) int {
	if max <= 0 || width <= 0 {
		return 0
	}
	n := int(math.Round(v / max * float64(width)))
	if n < 0 {
		return 0
	}
	if n > width {
		return width
	}
	return n
}

// RenderBar renders a horizontal meter
func RenderBar(v, max float64, width int, full, empty rune, color, muted lipgloss.Color) string {
	n := BarCells(v, max, width)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(string(full), n)) +
		lipgloss.NewStyle().Foreground(muted).Render(strings.Repeat(string(empty), width-n))
}

// RenderCycleCode shows the code with a marker before the digit being played.
// The marker is hidden when cycling is off.
func RenderCycleCode(code string, cursor int, enabled bool, mark rune, hi, lo lipgloss.Color) string {
	hiStyle := lipgloss.NewStyle().Foreground(hi).Bold(true)
	loStyle := lipgloss.NewStyle().Foreground(lo)

	var out strings.Builder
	for i, r := range code {
		if enabled && i == cursor {
			out.WriteString(hiStyle.Render(string(mark) + string(r)))
			continue
		}
		out.WriteString(loStyle.Render(" " + string(r)))
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

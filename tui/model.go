package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-melodium/hw"
	"go-melodium/module"
	"go-melodium/sequencer"
	"go-melodium/theme"
	"go-melodium/widgets"
)

const barWidth = 24

// Knobs are the panel's analog controls, turned from the keyboard
type Knobs struct {
	Length    *hw.Knob
	FirstStep *hw.Knob
	LengthMod *hw.Knob
}

type Model struct {
	Module   *module.Module
	Knobs    Knobs
	Theme    *theme.Theme
	KnobStep float64
	quitting bool
}

type UpdateMsg struct{}

func NewModel(mod *module.Module, knobs Knobs, th *theme.Theme, knobStep float64) Model {
	if knobStep <= 0 {
		knobStep = 1.0 / sequencer.MaxStepLength
	}
	return Model{
		Module:   mod,
		Knobs:    knobs,
		Theme:    th,
		KnobStep: knobStep,
	}
}

func ListenForUpdates(mod *module.Module) tea.Cmd {
	return func() tea.Msg {
		<-mod.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Module)
}

// keyActions maps keys to front panel gestures
var keyActions = map[string]func(m *Model){
	"b": func(m *Model) { m.Module.Press(1, hw.PressShort) },
	"s": func(m *Model) { m.Module.Press(1, hw.PressMedium) },
	"r": func(m *Model) { m.Module.Press(1, hw.PressLong) },
	"n": func(m *Model) { m.Module.Press(2, hw.PressShort) },
	"c": func(m *Model) { m.Module.Press(2, hw.PressMedium) },
	"p": func(m *Model) { m.Module.Send(module.Event{Kind: module.EventCycleCode}) },
	" ": func(m *Model) { m.Module.Tap() },

	"right": func(m *Model) { nudge(m.Knobs.Length, m.KnobStep) },
	"left":  func(m *Model) { nudge(m.Knobs.Length, -m.KnobStep) },
	"up":    func(m *Model) { nudge(m.Knobs.FirstStep, m.KnobStep) },
	"down":  func(m *Model) { nudge(m.Knobs.FirstStep, -m.KnobStep) },
	"]":     func(m *Model) { nudge(m.Knobs.LengthMod, m.KnobStep) },
	"[":     func(m *Model) { nudge(m.Knobs.LengthMod, -m.KnobStep) },
}

func nudge(k *hw.Knob, delta float64) {
	if k != nil {
		k.Nudge(delta)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		if action, ok := keyActions[key]; ok {
			action(&m)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Module)
	}

	return m, nil
}

var keyHelp = []widgets.KeySection{
	{Title: "Button 1", Keys: []widgets.KeyBinding{
		{Key: "b", Desc: "previous slot"},
		{Key: "s", Desc: "next shape (medium press)"},
		{Key: "r", Desc: "regenerate slot (long press)"},
	}},
	{Title: "Button 2", Keys: []widgets.KeyBinding{
		{Key: "n", Desc: "next slot, adds one at the end"},
		{Key: "c", Desc: "cycle mode on/off (medium press)"},
	}},
	{Title: "Knobs", Keys: []widgets.KeyBinding{
		{Key: "left/right", Desc: "length"},
		{Key: "down/up", Desc: "first step"},
		{Key: "[/]", Desc: "length modulation"},
	}},
	{Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "next cycle code"},
		{Key: "space", Desc: "tap clock"},
		{Key: "q", Desc: "quit"},
	}},
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	v := m.Module.View()
	sym := m.Theme.Symbols

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	labelStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	clockIn := v.ClockIn
	if clockIn == "" {
		clockIn = "tap"
	}
	output := v.Output
	if output == "" {
		output = "none"
	}
	header := headerStyle.Render(fmt.Sprintf("go-melodium  clock:%s  out:%s", clockIn, output))
	if v.Pulse {
		header += " " + widgets.RenderPad([3]uint8(m.Theme.RGB(theme.RoleSuccess)))
	}
	if v.Dropped > 0 {
		header += warnStyle.Render(fmt.Sprintf("  dropped:%d", v.Dropped))
	}

	reroll := " "
	if v.Rerolled {
		reroll = warnStyle.Render(string(sym.Reroll))
	}
	cycle := "off"
	if v.CycleMode {
		cycle = "on "
	}
	status := fmt.Sprintf("%s %s  %s %02d/%02d  %s %02d  %s %s  %s",
		labelStyle.Render("P"), fmt.Sprintf("%d/%d", v.Slot+1, v.NumPatterns),
		labelStyle.Render("Len"), v.Step-v.FirstStep+1, v.PatternLength,
		labelStyle.Render("First"), v.FirstStep+1,
		labelStyle.Render("Shape"), fmt.Sprintf("%d %s", int(v.Shape), v.Shape),
		reroll)

	seq := fmt.Sprintf("%s%s  %s",
		labelStyle.Render("Seq"),
		widgets.RenderCycleCode(v.CycleCode, v.CycleStep, v.CycleMode, sym.CycleCursor,
			m.Theme.Cursor(), m.Theme.FG()),
		dimStyle.Render("cycle "+cycle))

	steps := widgets.RenderStepRow(sequencer.MaxStepLength, v.FirstStep, v.PatternLength, v.Step,
		widgets.StepGlyphs{
			Empty:    sym.StepEmpty,
			Active:   sym.StepActive,
			Playhead: sym.StepPlayhead,
			First:    sym.StepFirst,
		}, m.Theme.Active(), m.Theme.Muted())

	var jacks strings.Builder
	for ch, volts := range v.Voltages {
		name := fmt.Sprintf("CV%d", ch)
		switch ch {
		case sequencer.SourceChannel:
			if v.SlewMode {
				name = "SLW"
			}
		case sequencer.PulseChannel:
			name = "EOC"
		}
		jacks.WriteString(fmt.Sprintf("%s %s %5.2fV\n",
			labelStyle.Render(name),
			widgets.RenderBar(volts, hw.MaxOutputVoltage, barWidth, sym.BarFull, sym.BarEmpty,
				m.Theme.Voltage(volts), m.Theme.Muted()),
			volts))
	}

	timing := dimStyle.Render(fmt.Sprintf("interval %dms  resolution %d", v.IntervalMs, v.Resolution))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(status)
	out.WriteString("\n")
	out.WriteString(seq)
	out.WriteString("\n\n")
	out.WriteString(steps)
	out.WriteString("\n\n")
	out.WriteString(jacks.String())
	out.WriteString(timing)
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))
	return out.String()
}

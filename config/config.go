package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ClockSource selects how clock edges are derived from MIDI input
type ClockSource string

const (
	ClockMIDI     ClockSource = "midi-clock" // 24 PPQN timing clock, divided
	ClockNoteGate ClockSource = "note-gate"  // note on = rising edge, note off = falling
	ClockNone     ClockSource = "none"       // panel tap only
)

// ClockConfig defines where clock edges come from
type ClockConfig struct {
	Source   ClockSource `json:"source"`
	PortName string      `json:"portName,omitempty"`
	Division int         `json:"division,omitempty"` // timing clocks per step
	GateNote int         `json:"gateNote"`           // -1 = any note
}

// ButtonConfig maps the two panel buttons onto notes from the clock input
// port. Hold time between note on and note off picks the press class.
type ButtonConfig struct {
	Button1Note int `json:"button1Note"` // -1 = disabled
	Button2Note int `json:"button2Note"` // -1 = disabled
}

// OutputConfig maps the six CV jacks onto MIDI messages
type OutputConfig struct {
	PortName  string  `json:"portName,omitempty"`
	Channel   uint8   `json:"channel"`   // MIDI channel, 0-based
	StepCCs   []uint8 `json:"stepCCs"`   // CC numbers for jacks 1-4
	SourceCC  uint8   `json:"sourceCC"`  // coarse CC for the slewed jack, alongside pitch bend
	PulseNote uint8   `json:"pulseNote"` // note for the end of cycle jack
}

// SequencerConfig holds tuning for the step engine
type SequencerConfig struct {
	ResetTimeoutMs  int    `json:"resetTimeoutMs"`
	InitialPatterns int    `json:"initialPatterns"`
	SlewMode        bool   `json:"slewMode"`
	CycleCode       string `json:"cycleCode"`
	StatePath       string `json:"statePath,omitempty"`
}

// UIConfig stores front panel preferences
type UIConfig struct {
	PalettePath string  `json:"palettePath,omitempty"`
	KnobStep    float64 `json:"knobStep,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Clock     ClockConfig     `json:"clock"`
	Buttons   ButtonConfig    `json:"buttons"`
	Output    OutputConfig    `json:"output"`
	Sequencer SequencerConfig `json:"sequencer"`
	UI        UIConfig        `json:"ui,omitempty"`
	Debug     bool            `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Clock: ClockConfig{
			Source:   ClockMIDI,
			Division: 6, // sixteenth notes
			GateNote: -1,
		},
		Buttons: ButtonConfig{
			Button1Note: -1,
			Button2Note: -1,
		},
		Output: OutputConfig{
			Channel:   0,
			StepCCs:   []uint8{20, 21, 22, 23},
			SourceCC:  19,
			PulseNote: 60,
		},
		Sequencer: SequencerConfig{
			ResetTimeoutMs:  10000,
			InitialPatterns: 4,
			SlewMode:        true,
			CycleCode:       "0123",
		},
		UI: UIConfig{
			KnobStep: 1.0 / 32,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-melodium"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file over the defaults, so missing keys keep
// their default values
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// StatePath resolves where the sequencer snapshot lives, expanding ~
func (c *Config) StatePath() (string, error) {
	if c.Sequencer.StatePath == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "state.json"), nil
	}
	return homedir.Expand(c.Sequencer.StatePath)
}

// PalettePath resolves the theme palette file, expanding ~. Empty means the
// built in palette.
func (c *Config) PalettePath() (string, error) {
	if c.UI.PalettePath == "" {
		return "", nil
	}
	return homedir.Expand(c.UI.PalettePath)
}

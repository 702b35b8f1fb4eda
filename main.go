package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-melodium/config"
	"go-melodium/debug"
	"go-melodium/hw"
	"go-melodium/midi"
	"go-melodium/module"
	"go-melodium/sequencer"
	"go-melodium/theme"
	"go-melodium/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-melodium/config.json)")
	debugFlag := flag.Bool("debug", false, "write a debug log to ~/.config/go-melodium/debug.log")
	flag.Parse()

	if err := run(*configPath, *debugFlag); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debugFlag bool) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Debug || debugFlag {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	palettePath, err := cfg.PalettePath()
	if err != nil {
		return err
	}
	palette, err := theme.LoadOrDefault(palettePath)
	if err != nil {
		debug.Log("theme", "using built in palette: %v", err)
	}
	th := theme.New(palette)

	statePath, err := cfg.StatePath()
	if err != nil {
		return err
	}
	store := sequencer.NewStore(statePath)
	snap, err := store.Load()
	if err != nil {
		// a corrupt file is replaced by a fresh bank on the first save
		debug.Log("state", "load %s: %v", statePath, err)
		snap = &sequencer.Snapshot{}
	}

	// knobs start centered on the default window: 16 steps from step 1
	knobs := tui.Knobs{
		Length:    hw.NewKnob((sequencer.DefaultPatternLength - 0.5) / sequencer.MaxStepLength),
		FirstStep: hw.NewKnob(0),
		LengthMod: hw.NewKnob(0),
	}

	mod := module.New(module.Config{
		Clock: hw.NewSystemClock(),
		Store: store,
		Bank:  sequencer.NewBank(rand.New(rand.NewSource(time.Now().UnixNano()))),
		Inputs: sequencer.Inputs{
			Length:    knobs.Length,
			FirstStep: knobs.FirstStep,
			LengthMod: knobs.LengthMod,
		},
		Options: sequencer.Options{
			ResetTimeoutMs:  int32(cfg.Sequencer.ResetTimeoutMs),
			SlewMode:        cfg.Sequencer.SlewMode,
			CycleCode:       cfg.Sequencer.CycleCode,
			InitialPatterns: cfg.Sequencer.InitialPatterns,
		},
	})
	if err := mod.Restore(snap); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	modDone := make(chan struct{})
	go func() {
		mod.Run(ctx)
		close(modDone)
	}()
	defer func() {
		cancel()
		<-modDone // let the last save land
	}()

	clockPort := cfg.Clock.PortName
	if cfg.Clock.Source == config.ClockNone {
		clockPort = ""
	}
	watcher := midi.NewPortWatcher(clockPort, cfg.Output.PortName)
	go watcher.Run(ctx)
	go newRig(mod, cfg).run(ctx, watcher.Events())

	m := tui.NewModel(mod, knobs, th, cfg.UI.KnobStep)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

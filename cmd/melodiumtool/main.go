package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-melodium/config"
	"go-melodium/hw"
	"go-melodium/midi"
	"go-melodium/render"
	"go-melodium/sequencer"
	"go-melodium/slew"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "monitor":
		err = monitor(args)
	case "sweep":
		err = sweep(args)
	case "shapes":
		err = shapes(args)
	case "dump":
		err = dump(args)
	case "render":
		err = renderCmd(args)
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("go-melodium tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                         - List all MIDI ports")
	fmt.Println("  monitor [port]               - Print clock edges from the configured input")
	fmt.Println("  sweep [port]                 - Ramp every CV output from 0 to 10V")
	fmt.Println("  shapes [start stop count]    - Print every slew shape")
	fmt.Println("  dump [state.json]            - Print the stored pattern bank")
	fmt.Println("  render -o out.wav|out.mid    - Play the stored state into a file")
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ScanPorts()
	if err != nil {
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.In {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Out {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config unreadable (%v), using defaults\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func monitor(args []string) error {
	cfg := loadConfig()
	if len(args) > 0 {
		cfg.Clock.PortName = args[0]
	}
	ports, err := midi.ScanPorts()
	if err != nil {
		return err
	}
	in := ports.FindIn(cfg.Clock.PortName)
	if in == nil {
		return fmt.Errorf("no input matching %q", cfg.Clock.PortName)
	}

	start := time.Now()
	edges := make(chan midi.Edge, 64)
	clockIn, err := midi.OpenClockIn(in, cfg.Clock, cfg.Buttons, func(e midi.Edge) {
		select {
		case edges <- e:
		default:
		}
	}, func(button int, press hw.Press) {
		fmt.Printf("%8dms  button %d %s\n", time.Since(start).Milliseconds(), button, press)
	})
	if err != nil {
		return err
	}
	defer clockIn.Close()

	fmt.Printf("Listening on %s (%s), ctrl+c to stop\n", clockIn.Name(), cfg.Clock.Source)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-edges:
			now := time.Now()
			line := fmt.Sprintf("%8dms  %-4s", now.Sub(start).Milliseconds(), e.Kind)
			if e.Kind == midi.Rise {
				line += fmt.Sprintf("  +%dms", now.Sub(last).Milliseconds())
				last = now
			}
			if e.Reset {
				line += "  (start)"
			}
			fmt.Println(line)
		}
	}
}

func sweep(args []string) error {
	cfg := loadConfig()
	if len(args) > 0 {
		cfg.Output.PortName = args[0]
	}
	ports, err := midi.ScanPorts()
	if err != nil {
		return err
	}
	out := ports.FindOut(cfg.Output.PortName)
	if out == nil {
		return fmt.Errorf("no output matching %q", cfg.Output.PortName)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := midi.NewSender(send, 64)
	go sender.Run(ctx)

	jacks := []hw.Output{
		midi.NewBendOutput(sender, cfg.Output.Channel, cfg.Output.SourceCC),
	}
	for _, cc := range cfg.Output.StepCCs {
		jacks = append(jacks, midi.NewCCOutput(sender, cfg.Output.Channel, cc))
	}
	all := hw.MultiOutput(jacks)
	gate := midi.NewGateOutput(sender, cfg.Output.Channel, cfg.Output.PulseNote)

	fmt.Printf("Sweeping %s over 2 seconds\n", out.String())
	gate.On()
	for i := 0; i <= 100; i++ {
		all.Voltage(float64(i) / 10)
		time.Sleep(20 * time.Millisecond)
	}
	gate.Off()
	all.Off()
	time.Sleep(100 * time.Millisecond) // let the queue drain
	return nil
}

func shapes(args []string) error {
	start, stop, count := 2.0, 8.0, 20
	if len(args) == 3 {
		var err error
		if start, err = strconv.ParseFloat(args[0], 64); err != nil {
			return err
		}
		if stop, err = strconv.ParseFloat(args[1], 64); err != nil {
			return err
		}
		if count, err = strconv.Atoi(args[2]); err != nil {
			return err
		}
	}

	for s := slew.Shape(0); s < slew.ShapeCount; s++ {
		points := s.Curve(start, stop, count)
		strs := make([]string, len(points))
		for i, p := range points {
			strs[i] = strconv.FormatFloat(p, 'f', -1, 64)
		}
		fmt.Printf("%d %-18s %s\n", int(s), s, strings.Join(strs, " "))
	}
	return nil
}

func loadSnapshot(args []string) (*sequencer.Snapshot, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		var err error
		if path, err = loadConfig().StatePath(); err != nil {
			return nil, err
		}
	}
	snap, err := sequencer.NewStore(path).Load()
	if err != nil {
		return nil, err
	}
	if len(snap.PatternBank) == 0 {
		return nil, fmt.Errorf("no stored bank at %s", path)
	}
	return snap, nil
}

func dump(args []string) error {
	snap, err := loadSnapshot(args)
	if err != nil {
		return err
	}

	fmt.Printf("slot %d  cycle %v (%s)  shape %d %s\n",
		snap.PatternSlot, snap.CycleMode, snap.CycleCode, int(snap.Shape), snap.Shape.Valid())
	for ch, slots := range snap.PatternBank {
		for slot := range slots {
			fmt.Printf("ch%d s%d  %s\n", ch, slot, sequencer.FormatPattern(&slots[slot], sequencer.MaxStepLength))
		}
	}
	return nil
}

func renderCmd(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	outPath := fs.String("o", "melodium.wav", "output file, .wav or .mid")
	statePath := fs.String("state", "", "state file (default from config)")
	opts := render.DefaultOptions()
	fs.IntVar(&opts.Clocks, "clocks", opts.Clocks, "clock pulses to play")
	fs.IntVar(&opts.IntervalMs, "interval", opts.IntervalMs, "milliseconds between clocks")
	fs.IntVar(&opts.Length, "length", opts.Length, "loop length in steps")
	fs.IntVar(&opts.FirstStep, "first", opts.FirstStep, "first step of the loop")
	fs.IntVar(&opts.TailMs, "tail", 500, "milliseconds to render after the last clock")
	rate := fs.Int("rate", 48000, "wav sample rate")
	bpm := fs.Float64("bpm", 120, "midi file tempo")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var stateArgs []string
	if *statePath != "" {
		stateArgs = []string{*statePath}
	}
	snap, err := loadSnapshot(stateArgs)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	rec, err := render.Render(snap, sequencer.Options{
		ResetTimeoutMs:  int32(cfg.Sequencer.ResetTimeoutMs),
		SlewMode:        cfg.Sequencer.SlewMode,
		CycleCode:       cfg.Sequencer.CycleCode,
		InitialPatterns: cfg.Sequencer.InitialPatterns,
	}, opts, time.Now().UnixNano())
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(*outPath)) {
	case ".mid", ".midi":
		err = rec.WriteSMF(*outPath, *bpm, cfg.Output)
	default:
		err = rec.WriteWAV(*outPath, *rate)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %dms to %s\n", rec.DurationMs(), *outPath)
	return nil
}

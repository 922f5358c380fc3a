package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/cbegin/fmbeast-go"
	"github.com/cbegin/fmbeast-go/internal/control"
)

// opFlags collects repeated -op "N:name=value,..." overrides.
type opFlags []string

func (o *opFlags) String() string { return strings.Join(*o, " ") }

func (o *opFlags) Set(v string) error {
	*o = append(*o, v)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var ops opFlags
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		backend    = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		format     = flag.String("format", "f32le", "device sample format (oto only): f32le|s16le|u8")
		channels   = flag.Int("channels", 2, "device channel count (oto only): 1|2")
		renderPath = flag.String("render", "", "render to this WAV file instead of playing")
		seconds    = flag.Float64("seconds", 2, "render length in seconds")
		gate       = flag.Float64("gate", 1, "render note-off time in seconds")
	)
	flag.Var(&ops, "op", `operator override "N:name=value,..." (repeatable), e.g. "1:ratio=2,feedback=0.1"`)
	flag.Parse()

	patch, err := applyOverrides(fmbeast.DefaultPatch(), ops)
	if err != nil {
		return err
	}

	if *renderPath != "" {
		return render(*renderPath, patch, *sampleRate, *gate, *seconds)
	}

	sf, err := fmbeast.ParseSampleFormat(*format)
	if err != nil {
		return err
	}
	synth, err := fmbeast.NewSynth(*sampleRate,
		fmbeast.WithBackend(fmbeast.Backend(*backend)),
		fmbeast.WithSampleFormat(sf),
		fmbeast.WithChannels(*channels),
		fmbeast.WithPatch(patch),
	)
	if err != nil {
		return err
	}
	return interactive(synth)
}

func render(path string, patch fmbeast.Patch, sampleRate int, gate, seconds float64) error {
	if sampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return fmt.Errorf("invalid render length %v seconds", seconds)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	samples := fmbeast.RenderSamples(patch, sampleRate, gate, seconds)
	if err := fmbeast.WriteWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %d samples to %s\n", len(samples), path)
	return nil
}

func interactive(synth *fmbeast.Synth) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal (use -render for offline output)")
	}
	if err := synth.Start(); err != nil {
		return err
	}
	defer synth.Stop()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Print(strings.ReplaceAll(control.Help(), "\n", "\r\n") + "\r\n")
	return control.New(synth).Run(os.Stdin, os.Stdout)
}

func applyOverrides(patch fmbeast.Patch, ops []string) (fmbeast.Patch, error) {
	for _, arg := range ops {
		idxStr, assigns, ok := strings.Cut(arg, ":")
		if !ok {
			return patch, fmt.Errorf("invalid -op %q (expected N:name=value,...)", arg)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
		if err != nil || idx < 0 || idx >= fmbeast.NumOperators {
			return patch, fmt.Errorf("invalid -op %q: operator must be 0-%d", arg, fmbeast.NumOperators-1)
		}
		for _, kv := range strings.Split(assigns, ",") {
			name, val, ok := strings.Cut(kv, "=")
			if !ok {
				return patch, fmt.Errorf("invalid -op %q: %q is not name=value", arg, kv)
			}
			p, err := fmbeast.ParseParam(name)
			if err != nil {
				return patch, err
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				return patch, fmt.Errorf("invalid -op %q: %w", arg, err)
			}
			patch[idx] = fmbeast.WithParam(patch[idx], p, v)
		}
	}
	return patch, nil
}

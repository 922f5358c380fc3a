package fmbeast

import (
	"errors"
	"fmt"
	"math"
	"sync"

	intaudio "github.com/cbegin/fmbeast-go/internal/audio"
	intfm "github.com/cbegin/fmbeast-go/internal/fm"
)

type (
	Patch          = intfm.Patch
	OperatorParams = intfm.OperatorParams
	SampleFormat   = intaudio.Format
)

const NumOperators = intfm.NumOperators

const (
	FormatFloat32LE = intaudio.FormatFloat32LE
	FormatInt16LE   = intaudio.FormatInt16LE
	FormatUint8     = intaudio.FormatUint8
)

// DefaultPatch returns the start-up patch.
func DefaultPatch() Patch { return intfm.DefaultPatch() }

// ParseSampleFormat maps f32le, s16le or u8 to a SampleFormat.
func ParseSampleFormat(name string) (SampleFormat, error) { return intaudio.ParseFormat(name) }

type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
)

type SynthOption func(*synthConfig)

type synthConfig struct {
	backend   Backend
	format    SampleFormat
	channels  int
	patch     Patch
	sampleTap func([]float32)
}

func defaultSynthConfig() synthConfig {
	return synthConfig{
		backend:  BackendEbiten,
		format:   FormatFloat32LE,
		channels: 2,
		patch:    DefaultPatch(),
	}
}

// WithBackend selects the audio output used by Start.
func WithBackend(b Backend) SynthOption {
	return func(cfg *synthConfig) {
		cfg.backend = b
	}
}

// WithSampleFormat sets the device sample encoding. Only the oto backend
// supports formats other than f32le.
func WithSampleFormat(f SampleFormat) SynthOption {
	return func(cfg *synthConfig) {
		cfg.format = f
	}
}

// WithChannels sets the device channel count (1 or 2). The mono voice is
// copied to every channel.
func WithChannels(n int) SynthOption {
	return func(cfg *synthConfig) {
		cfg.channels = n
	}
}

func WithPatch(p Patch) SynthOption {
	return func(cfg *synthConfig) {
		cfg.patch = p
	}
}

// WithSampleTap installs a callback invoked with each rendered mono block.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) SynthOption {
	return func(cfg *synthConfig) {
		cfg.sampleTap = tap
	}
}

// Synth is a monophonic four-operator FM voice shared between an audio
// output and a controller. A single mutex serializes rendering, note events
// and parameter edits, so a parameter change lands between two blocks.
type Synth struct {
	mu         sync.Mutex
	engine     *intfm.Engine
	gate       bool
	sampleRate int
	sampleTap  func([]float32)

	ioMu     sync.Mutex
	backend  Backend
	format   SampleFormat
	channels int
	audio    intaudio.Output
}

func NewSynth(sampleRate int, opts ...SynthOption) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultSynthConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	switch cfg.backend {
	case BackendEbiten:
		if cfg.format != FormatFloat32LE {
			return nil, fmt.Errorf("ebiten backend only supports f32le (got %v)", cfg.format)
		}
	case BackendOto:
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.backend)
	}
	if _, err := intaudio.ParseFormat(cfg.format.String()); err != nil {
		return nil, err
	}
	if cfg.channels != 1 && cfg.channels != 2 {
		return nil, fmt.Errorf("channels must be 1 or 2 (got %d)", cfg.channels)
	}
	return &Synth{
		engine:     intfm.New(sampleRate, clampPatch(cfg.patch)),
		sampleRate: sampleRate,
		sampleTap:  cfg.sampleTap,
		backend:    cfg.backend,
		format:     cfg.format,
		channels:   cfg.channels,
	}, nil
}

func (s *Synth) SampleRate() int { return s.sampleRate }

// Process renders len(dst) mono samples. It is the audio output's pull
// callback and may also be called directly for offline rendering.
func (s *Synth) Process(dst []float32) {
	s.mu.Lock()
	s.engine.RenderBlock(dst)
	s.mu.Unlock()
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

func (s *Synth) NoteOn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = true
	s.engine.NoteOn()
}

func (s *Synth) NoteOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = false
	s.engine.NoteOff()
}

// ToggleNote releases a held note or starts a new one, and returns whether
// the note is now held.
func (s *Synth) ToggleNote() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = !s.gate
	if s.gate {
		s.engine.NoteOn()
	} else {
		s.engine.NoteOff()
	}
	return s.gate
}

// Gate reports whether a note is held.
func (s *Synth) Gate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

// Sounding reports whether any envelope is still producing output,
// including release tails.
func (s *Synth) Sounding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Active()
}

// SetParam clamps v to the parameter's range and applies it to operator op
// from the next rendered sample.
func (s *Synth) SetParam(op int, p Param, v float64) error {
	if op < 0 || op >= NumOperators {
		return fmt.Errorf("operator %d out of range", op)
	}
	if p < 0 || p >= numParams {
		return fmt.Errorf("unknown parameter %v", p)
	}
	if math.IsNaN(v) {
		return fmt.Errorf("%v: value is NaN", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	params := s.engine.OperatorParams(op)
	setParam(&params, p, p.Clamp(v))
	s.engine.SetOperatorParams(op, params)
	return nil
}

// Param returns operator op's current value for p, or 0 for an invalid
// operator index.
func (s *Synth) Param(op int, p Param) float64 {
	if op < 0 || op >= NumOperators {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	params := s.engine.OperatorParams(op)
	return getParam(&params, p)
}

func (s *Synth) Patch() Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Patch()
}

// SetPatch replaces every operator's parameters, clamped to controller
// ranges. Phases and envelope progress are kept.
func (s *Synth) SetPatch(p Patch) {
	p = clampPatch(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range p {
		s.engine.SetOperatorParams(i, p[i])
	}
}

// Start opens the configured audio output and begins playback.
func (s *Synth) Start() error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	if s.audio != nil {
		s.audio.Play()
		return nil
	}
	var (
		out intaudio.Output
		err error
	)
	switch s.backend {
	case BackendOto:
		out, err = intaudio.NewOtoPlayer(s.sampleRate, s.channels, s.format, s)
	default:
		out, err = intaudio.NewEbitenPlayer(s.sampleRate, s)
	}
	if err != nil {
		return fmt.Errorf("open %s output: %w", s.backend, err)
	}
	s.audio = out
	s.audio.Play()
	return nil
}

func (s *Synth) Pause() {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	if s.audio != nil {
		s.audio.Pause()
	}
}

// Stop closes the audio output. The synth keeps its state and may be
// started again.
func (s *Synth) Stop() error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	if s.audio == nil {
		return nil
	}
	err := s.audio.Stop()
	s.audio = nil
	return err
}

package fm

// NumOperators is the fixed length of the modulation chain.
const NumOperators = 4

// Carrier is the index of the audible operator. Operators 1..3 form a serial
// modulator chain 3 -> 2 -> 1 -> 0.
const Carrier = 0

// OperatorParams is the editable state of one operator and its envelope.
type OperatorParams struct {
	Frequency float64
	Amplitude float64
	Ratio     float64
	Feedback  float64
	Sync      bool
	BitDepth  int
	Attack    float64
	Decay     float64
	Sustain   float64
	Release   float64
}

// Patch holds the parameters for every operator, indexed like the chain.
type Patch [NumOperators]OperatorParams

// DefaultPatch returns the start-up patch: a 440 Hz carrier driven by three
// progressively coarser, synced modulators at golden/silver-ratio multiples.
func DefaultPatch() Patch {
	const (
		attack  = 0.01
		decay   = 0.05
		sustain = 0.6
		release = 0.2
	)
	ops := [NumOperators]struct {
		freq, amp, ratio, fb float64
		sync                 bool
		bits                 int
	}{
		{440, 1.0, 1.0, 0.0, false, 16},
		{220, 0.8, 1.618, 0.05, true, 12},
		{110, 0.6, 2.414, 0.1, true, 10},
		{55, 0.4, 3.732, 0.15, true, 8},
	}
	var p Patch
	for i, op := range ops {
		p[i] = OperatorParams{
			Frequency: op.freq,
			Amplitude: op.amp,
			Ratio:     op.ratio,
			Feedback:  op.fb,
			Sync:      op.sync,
			BitDepth:  op.bits,
			Attack:    attack,
			Decay:     decay,
			Sustain:   sustain,
			Release:   release,
		}
	}
	return p
}

// Engine renders a monophonic four-operator FM voice.
//
// Engine is not safe for concurrent use; callers that edit parameters from
// another goroutine than the one rendering must serialize access.
type Engine struct {
	sampleRate float64
	ops        [NumOperators]Operator
}

// New creates an engine rendering at sampleRate Hz. The sample rate is fixed
// for the lifetime of the engine.
func New(sampleRate int, patch Patch) *Engine {
	e := &Engine{sampleRate: float64(sampleRate)}
	for i := range e.ops {
		e.SetOperatorParams(i, patch[i])
	}
	return e
}

// SampleRate returns the render rate in Hz.
func (e *Engine) SampleRate() int { return int(e.sampleRate) }

// Operator returns the i-th operator for direct parameter access.
func (e *Engine) Operator(i int) *Operator { return &e.ops[i] }

// SetOperatorParams copies p into operator i without touching its phase or
// envelope progress.
func (e *Engine) SetOperatorParams(i int, p OperatorParams) {
	op := &e.ops[i]
	op.Frequency = p.Frequency
	op.Amplitude = p.Amplitude
	op.Ratio = p.Ratio
	op.Feedback = p.Feedback
	op.Sync = p.Sync
	op.BitDepth = p.BitDepth
	op.Env.Attack = p.Attack
	op.Env.Decay = p.Decay
	op.Env.Sustain = p.Sustain
	op.Env.Release = p.Release
}

// OperatorParams returns a copy of operator i's parameters.
func (e *Engine) OperatorParams(i int) OperatorParams {
	op := &e.ops[i]
	return OperatorParams{
		Frequency: op.Frequency,
		Amplitude: op.Amplitude,
		Ratio:     op.Ratio,
		Feedback:  op.Feedback,
		Sync:      op.Sync,
		BitDepth:  op.BitDepth,
		Attack:    op.Env.Attack,
		Decay:     op.Env.Decay,
		Sustain:   op.Env.Sustain,
		Release:   op.Env.Release,
	}
}

// Patch returns a copy of all operator parameters.
func (e *Engine) Patch() Patch {
	var p Patch
	for i := range e.ops {
		p[i] = e.OperatorParams(i)
	}
	return p
}

// NoteOn (re)starts every operator envelope.
func (e *Engine) NoteOn() {
	for i := range e.ops {
		e.ops[i].Env.NoteOn()
	}
}

// NoteOff releases every operator envelope.
func (e *Engine) NoteOff() {
	for i := range e.ops {
		e.ops[i].Env.NoteOff()
	}
}

// Active reports whether any envelope is still sounding.
func (e *Engine) Active() bool {
	for i := range e.ops {
		if e.ops[i].Env.Active() {
			return true
		}
	}
	return false
}

// RenderBlock fills dst with consecutive mono samples. Each frame samples
// every operator exactly once, deepest modulator first. An empty dst leaves
// the engine untouched.
func (e *Engine) RenderBlock(dst []float32) {
	if len(dst) == 0 {
		return
	}
	dt := 1.0 / e.sampleRate
	for i := range dst {
		dst[i] = float32(e.renderFrame(dt))
	}
}

func (e *Engine) renderFrame(dt float64) float64 {
	m3 := e.ops[3].Sample(dt, 0)
	m2 := e.ops[2].Sample(dt, m3)
	m1 := e.ops[1].Sample(dt, m2)
	return e.ops[Carrier].Sample(dt, m1)
}

package fm

// Stage is the current segment of an Envelope.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "idle"
	}
}

const (
	// envFloor is the level under which a releasing envelope is considered silent.
	envFloor = 0.0001
	// envEpsilon absorbs rounding in fixed-step accumulation (10 * 0.1 != 1).
	envEpsilon = 1e-9
)

// Envelope is a linear ADSR level generator advanced in fixed time steps.
//
// Attack, Decay and Release are durations in seconds and must be positive;
// Sustain is a level in [0, 1]. They may be changed between calls to Advance
// and take effect on the next call.
//
// Release falls at releaseLevel/Release per second, where releaseLevel is the
// level held at NoteOff, so it reaches zero within Release seconds even from
// attack or decay. Released from sustain this equals Sustain/Release.
//
// Because the envelope is integrated with the caller's step, a segment shorter
// than one step completes within a single Advance. At low sample rates very
// short attack or decay times therefore jump straight to the next stage.
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64

	stage        Stage
	level        float64
	releaseLevel float64
}

// NewEnvelope returns an idle envelope with the given segment parameters.
func NewEnvelope(attack, decay, sustain, release float64) Envelope {
	return Envelope{
		Attack:  attack,
		Decay:   decay,
		Sustain: sustain,
		Release: release,
	}
}

// NoteOn restarts the envelope from zero in the attack stage, whatever
// stage it was in.
func (e *Envelope) NoteOn() {
	e.level = 0
	e.releaseLevel = 0
	e.stage = StageAttack
}

// NoteOff moves an active envelope into release without touching its level.
// It does nothing on an idle envelope.
func (e *Envelope) NoteOff() {
	if e.stage == StageIdle {
		return
	}
	e.releaseLevel = e.level
	e.stage = StageRelease
}

// Advance moves the envelope forward by dt seconds.
func (e *Envelope) Advance(dt float64) {
	switch e.stage {
	case StageAttack:
		e.level += dt / e.Attack
		if e.level >= 1-envEpsilon {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= dt * (1 - e.Sustain) / e.Decay
		if e.level <= e.Sustain+envEpsilon {
			e.level = e.Sustain
			e.stage = StageSustain
		}
	case StageSustain:
	case StageRelease:
		// Ramp from wherever note-off happened so that release always
		// lasts at most Release seconds. From sustain this is Sustain/Release.
		e.level -= dt * e.releaseLevel / e.Release
		if e.level <= envFloor {
			e.level = 0
			e.releaseLevel = 0
			e.stage = StageIdle
		}
	case StageIdle:
	}
}

// Level returns the current output level in [0, 1].
func (e *Envelope) Level() float64 { return e.level }

// Stage returns the current envelope stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Active reports whether the envelope is sounding (any stage but idle).
func (e *Envelope) Active() bool { return e.stage != StageIdle }

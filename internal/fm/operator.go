package fm

import "math"

const twoPi = math.Pi * 2

// headroom bounds an operator's output before quantization so that stacked
// modulators cannot push the carrier past full scale.
const headroom = 0.9

// Operator is one sine oscillator of the FM chain together with its envelope,
// self-feedback, optional hard sync and output bit-crushing.
//
// All exported fields may be changed between samples. Frequency is in Hz,
// Ratio multiplies Frequency, Feedback is in [0, 1] and BitDepth sets the
// quantization step to 2^-BitDepth.
type Operator struct {
	Frequency float64
	Amplitude float64
	Ratio     float64
	Feedback  float64
	Sync      bool
	BitDepth  int
	Env       Envelope

	phase float64
}

// Sample advances the operator by dt seconds under the given modulation
// input and returns its next output sample in [-1, 1].
//
// The modulation input scales the base frequency and is added on top of the
// ratio-scaled frequency (linear FM). Feedback is taken from the running
// phase accumulator, not the previous output. Without Sync the phase is
// never wrapped, so with non-zero feedback it grows without bound.
//
// Sample mutates phase and envelope state and must be called exactly once
// per output frame.
func (o *Operator) Sample(dt, mod float64) float64 {
	freq := o.Frequency*o.Ratio + mod*o.Frequency
	fb := o.Feedback * o.phase
	o.phase += twoPi*freq*dt + fb
	if o.Sync {
		o.phase = math.Mod(o.phase, twoPi)
	}

	o.Env.Advance(dt)

	raw := o.Amplitude * o.Env.Level() * math.Sin(o.phase)
	return o.Crush(clamp(raw, -headroom, headroom))
}

// Crush quantizes s to the operator's bit depth and clamps it to [-1, 1].
// Crush(Crush(s)) == Crush(s).
func (o *Operator) Crush(s float64) float64 {
	step := math.Ldexp(1, -o.BitDepth)
	return clamp(math.Round(s/step)*step, -1, 1)
}

// Phase returns the oscillator's phase accumulator in radians.
func (o *Operator) Phase() float64 { return o.phase }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

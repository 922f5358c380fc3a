package fmbeast

import (
	"fmt"
	"math"
	"strings"

	intfm "github.com/cbegin/fmbeast-go/internal/fm"
)

// Param identifies one editable operator or envelope parameter.
type Param int

const (
	ParamFrequency Param = iota
	ParamAmplitude
	ParamRatio
	ParamFeedback
	ParamSync
	ParamBitDepth
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease
	numParams
)

// ParamInfo describes the range a controller may set a parameter to.
type ParamInfo struct {
	Name string
	Min  float64
	Max  float64
	Step float64 // nudge increment for key control
}

var paramTable = [numParams]ParamInfo{
	ParamFrequency: {"freq", 20, 2000, 5},
	ParamAmplitude: {"amp", 0, 2, 0.05},
	ParamRatio:     {"ratio", 0.1, 5, 0.01},
	ParamFeedback:  {"feedback", 0, 0.5, 0.01},
	ParamSync:      {"sync", 0, 1, 1},
	ParamBitDepth:  {"bits", 8, 16, 1},
	ParamAttack:    {"attack", 0.001, 2, 0.005},
	ParamDecay:     {"decay", 0.001, 2, 0.005},
	ParamSustain:   {"sustain", 0, 1, 0.05},
	ParamRelease:   {"release", 0.001, 2, 0.01},
}

// Params lists every parameter in display order.
func Params() []Param {
	out := make([]Param, numParams)
	for i := range out {
		out[i] = Param(i)
	}
	return out
}

func (p Param) Info() ParamInfo {
	if p < 0 || p >= numParams {
		return ParamInfo{Name: fmt.Sprintf("Param(%d)", int(p))}
	}
	return paramTable[p]
}

func (p Param) String() string { return p.Info().Name }

// Clamp limits v to the parameter's range. Integral parameters are rounded.
func (p Param) Clamp(v float64) float64 {
	info := p.Info()
	if p == ParamBitDepth || p == ParamSync {
		v = math.Round(v)
	}
	if v < info.Min {
		return info.Min
	}
	if v > info.Max {
		return info.Max
	}
	return v
}

// ParseParam looks a parameter up by name, case-insensitively.
func ParseParam(name string) (Param, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, info := range paramTable {
		if info.Name == name {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parameter %q", name)
}

// WithParam returns op with p set to v, clamped to the parameter's range.
func WithParam(op OperatorParams, p Param, v float64) OperatorParams {
	setParam(&op, p, p.Clamp(v))
	return op
}

func getParam(op *intfm.OperatorParams, p Param) float64 {
	switch p {
	case ParamFrequency:
		return op.Frequency
	case ParamAmplitude:
		return op.Amplitude
	case ParamRatio:
		return op.Ratio
	case ParamFeedback:
		return op.Feedback
	case ParamSync:
		if op.Sync {
			return 1
		}
		return 0
	case ParamBitDepth:
		return float64(op.BitDepth)
	case ParamAttack:
		return op.Attack
	case ParamDecay:
		return op.Decay
	case ParamSustain:
		return op.Sustain
	case ParamRelease:
		return op.Release
	}
	return 0
}

func setParam(op *intfm.OperatorParams, p Param, v float64) {
	switch p {
	case ParamFrequency:
		op.Frequency = v
	case ParamAmplitude:
		op.Amplitude = v
	case ParamRatio:
		op.Ratio = v
	case ParamFeedback:
		op.Feedback = v
	case ParamSync:
		op.Sync = v >= 0.5
	case ParamBitDepth:
		op.BitDepth = int(v)
	case ParamAttack:
		op.Attack = v
	case ParamDecay:
		op.Decay = v
	case ParamSustain:
		op.Sustain = v
	case ParamRelease:
		op.Release = v
	}
}

// clampPatch returns p with every field limited to its controller range.
// NaN fields fall back to the default patch.
func clampPatch(p intfm.Patch) intfm.Patch {
	def := intfm.DefaultPatch()
	for i := range p {
		for _, param := range Params() {
			v := getParam(&p[i], param)
			if math.IsNaN(v) {
				v = getParam(&def[i], param)
			}
			setParam(&p[i], param, param.Clamp(v))
		}
	}
	return p
}

package fm

import (
	"math"
	"testing"
)

func TestEnvelopeIdleIgnoresAdvance(t *testing.T) {
	for _, dt := range []float64{1e-6, 1.0 / 44100, 0.01, 1, 100} {
		e := NewEnvelope(0.01, 0.05, 0.6, 0.2)
		e.Advance(dt)
		if e.Level() != 0 || e.Stage() != StageIdle || e.Active() {
			t.Fatalf("dt=%v: idle envelope changed: level=%v stage=%v", dt, e.Level(), e.Stage())
		}
	}
}

func TestEnvelopeAttackReachesPeakOnTenthStep(t *testing.T) {
	e := NewEnvelope(0.01, 0.05, 0.6, 0.2)
	e.NoteOn()
	for i := 1; i <= 10; i++ {
		e.Advance(0.001)
		if e.Stage() == StageDecay {
			if e.Level() != 1 {
				t.Fatalf("entered decay at level %v, want 1", e.Level())
			}
			return
		}
	}
	t.Fatalf("still in %v after 10 steps, level=%v", e.Stage(), e.Level())
}

func TestEnvelopeADSRShape(t *testing.T) {
	for _, tc := range []struct {
		name                   string
		attack, decay, sustain float64
		release                float64
	}{
		{"default", 0.01, 0.05, 0.6, 0.2},
		{"slow", 0.5, 0.7, 0.3, 1.0},
		{"full sustain", 0.02, 0.02, 1.0, 0.05},
		{"zero sustain", 0.02, 0.1, 0.0, 0.05},
	} {
		t.Run(tc.name, func(t *testing.T) {
			const dt = 1.0 / 48000
			e := NewEnvelope(tc.attack, tc.decay, tc.sustain, tc.release)
			e.NoteOn()

			prev := e.Level()
			for e.Stage() == StageAttack {
				e.Advance(dt)
				if e.Level() < prev {
					t.Fatalf("attack not monotonic: %v -> %v", prev, e.Level())
				}
				prev = e.Level()
			}
			if prev != 1 {
				t.Fatalf("attack ended at %v, want 1", prev)
			}
			for e.Stage() == StageDecay {
				e.Advance(dt)
				if e.Level() > prev {
					t.Fatalf("decay not monotonic: %v -> %v", prev, e.Level())
				}
				prev = e.Level()
			}
			if e.Stage() != StageSustain {
				t.Fatalf("after decay stage=%v, want sustain", e.Stage())
			}
			for i := 0; i < 1000; i++ {
				e.Advance(dt)
				if e.Level() != tc.sustain {
					t.Fatalf("sustain level %v, want exactly %v", e.Level(), tc.sustain)
				}
			}
		})
	}
}

func TestEnvelopeReleaseTerminates(t *testing.T) {
	const dt = 1.0 / 44100
	// Note-off after this many steps lands in attack, decay and sustain.
	for _, after := range []int{0, 1, 200, 441, 2000, 10000} {
		e := NewEnvelope(0.01, 0.05, 0.6, 0.2)
		e.NoteOn()
		for i := 0; i < after; i++ {
			e.Advance(dt)
		}
		e.NoteOff()
		if e.Stage() != StageRelease {
			t.Fatalf("after=%d: stage=%v, want release", after, e.Stage())
		}

		limit := int(math.Ceil(e.Release / dt))
		prev := e.Level()
		steps := 0
		for e.Active() {
			e.Advance(dt)
			steps++
			if e.Level() > prev {
				t.Fatalf("after=%d: release not monotonic: %v -> %v", after, prev, e.Level())
			}
			prev = e.Level()
			if steps > limit {
				t.Fatalf("after=%d: release did not finish within %d steps (level %v)", after, limit, e.Level())
			}
		}
		if e.Level() != 0 || e.Stage() != StageIdle {
			t.Fatalf("after=%d: ended at level=%v stage=%v", after, e.Level(), e.Stage())
		}
	}
}

func TestEnvelopeNoteOffIdleIsNoop(t *testing.T) {
	e := NewEnvelope(0.01, 0.05, 0.6, 0.2)
	e.NoteOff()
	if e.Active() || e.Stage() != StageIdle {
		t.Fatalf("note-off re-activated idle envelope: stage=%v", e.Stage())
	}
	e.Advance(0.001)
	if e.Level() != 0 {
		t.Fatalf("level %v, want 0", e.Level())
	}
}

func TestEnvelopeRetriggerRestartsFromZero(t *testing.T) {
	e := NewEnvelope(0.01, 0.05, 0.6, 0.2)
	e.NoteOn()
	for i := 0; i < 500; i++ {
		e.Advance(0.0001)
	}
	if e.Level() == 0 {
		t.Fatal("expected non-zero level before retrigger")
	}
	e.NoteOn()
	if e.Level() != 0 || e.Stage() != StageAttack {
		t.Fatalf("retrigger: level=%v stage=%v", e.Level(), e.Stage())
	}
}

func TestEnvelopeShortSegmentsSkipInOneStep(t *testing.T) {
	e := NewEnvelope(1e-6, 0.05, 0.5, 0.2)
	e.NoteOn()
	e.Advance(1.0 / 8000)
	if e.Stage() != StageDecay || e.Level() != 1 {
		t.Fatalf("stage=%v level=%v, want decay at 1", e.Stage(), e.Level())
	}
}

func TestEnvelopeParameterChangeAppliesNextStep(t *testing.T) {
	e := NewEnvelope(1, 0.05, 0.6, 0.2)
	e.NoteOn()
	e.Advance(0.1)
	before := e.Level()
	e.Attack = 0.01
	e.Advance(0.001)
	if got := e.Level() - before; math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("step after attack change = %v, want 0.1", got)
	}
}

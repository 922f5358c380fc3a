package fmbeast

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	intaudio "github.com/cbegin/fmbeast-go/internal/audio"
	intfm "github.com/cbegin/fmbeast-go/internal/fm"
)

const renderBlockSize = 512

// RenderSamples renders seconds of mono audio for patch: the note is held
// from the start for gate seconds and then released. The engine is driven
// block by block as an audio output would. A non-positive sample rate or
// length renders nothing.
func RenderSamples(patch Patch, sampleRate int, gate, seconds float64) []float32 {
	if sampleRate <= 0 || !(seconds > 0) || math.IsInf(seconds, 1) {
		return nil
	}
	engine := intfm.New(sampleRate, clampPatch(patch))
	frames := max(int(float64(sampleRate)*seconds), 0)
	gateFrames := max(int(float64(sampleRate)*gate), 0)
	out := make([]float32, frames)

	engine.NoteOn()
	for pos := 0; pos < frames; {
		end := min(pos+renderBlockSize, frames)
		if pos < gateFrames && end > gateFrames {
			end = gateFrames
		}
		if pos == gateFrames {
			engine.NoteOff()
		}
		engine.RenderBlock(out[pos:end])
		pos = end
	}
	return out
}

// WriteWAV encodes mono samples as 16-bit PCM WAV.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(intaudio.Int16(s))
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

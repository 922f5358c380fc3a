package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// SampleSource renders mono float samples in [-1, 1].
type SampleSource interface {
	Process(dst []float32)
}

// Format is the byte encoding of samples handed to an output device.
type Format int

const (
	FormatFloat32LE Format = iota
	FormatInt16LE
	FormatUint8
)

func (f Format) String() string {
	switch f {
	case FormatFloat32LE:
		return "f32le"
	case FormatInt16LE:
		return "s16le"
	case FormatUint8:
		return "u8"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name (f32le, s16le, u8) to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "f32le", "f32":
		return FormatFloat32LE, nil
	case "s16le", "s16", "i16":
		return FormatInt16LE, nil
	case "u8":
		return FormatUint8, nil
	default:
		return 0, fmt.Errorf("unknown sample format %q (expected f32le|s16le|u8)", name)
	}
}

// BytesPerSample returns the encoded size of one sample.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatInt16LE:
		return 2
	case FormatUint8:
		return 1
	default:
		return 4
	}
}

// StreamReader pulls mono blocks from a SampleSource and encodes them as
// interleaved frames, copying each sample to every channel.
type StreamReader struct {
	mu       sync.Mutex
	source   SampleSource
	format   Format
	channels int
	buf      []float32
}

func NewStreamReader(source SampleSource, format Format, channels int) *StreamReader {
	if channels < 1 {
		channels = 1
	}
	return &StreamReader{source: source, format: format, channels: channels}
}

// Read fills p with whole frames. Trailing bytes that do not make up a full
// frame are left untouched and not counted.
func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	width := r.format.BytesPerSample()
	frameSize := width * r.channels
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]float32, frames)
	}
	r.buf = r.buf[:frames]
	r.source.Process(r.buf)

	off := 0
	for _, s := range r.buf {
		for ch := 0; ch < r.channels; ch++ {
			switch r.format {
			case FormatInt16LE:
				binary.LittleEndian.PutUint16(p[off:], uint16(Int16(s)))
			case FormatUint8:
				p[off] = Uint8(s)
			default:
				binary.LittleEndian.PutUint32(p[off:], math.Float32bits(s))
			}
			off += width
		}
	}
	return frames * frameSize, nil
}

func (r *StreamReader) Close() error { return nil }

// Int16 converts a sample in [-1, 1] to signed 16-bit PCM.
func Int16(s float32) int16 {
	return int16(clamp(s) * math.MaxInt16)
}

// Uint8 converts a sample in [-1, 1] to unsigned 8-bit PCM centred on 128.
func Uint8(s float32) uint8 {
	return uint8(int(clamp(s)*127) + 128)
}

func clamp(s float32) float32 {
	if s < -1 {
		return -1
	}
	if s > 1 {
		return 1
	}
	return s
}

package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

type constSource struct {
	value float32
	calls int
	last  int
}

func (c *constSource) Process(dst []float32) {
	c.calls++
	c.last = len(dst)
	for i := range dst {
		dst[i] = c.value
	}
}

func TestStreamReaderFloat32Stereo(t *testing.T) {
	src := &constSource{value: 0.25}
	r := NewStreamReader(src, FormatFloat32LE, 2)
	p := make([]byte, 64)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 64 {
		t.Fatalf("n = %d, want 64", n)
	}
	if src.last != 8 {
		t.Fatalf("source asked for %d frames, want 8", src.last)
	}
	for i := 0; i < n; i += 4 {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(p[i:])); got != 0.25 {
			t.Fatalf("sample at byte %d = %v, want 0.25", i, got)
		}
	}
}

func TestStreamReaderFormats(t *testing.T) {
	for _, tc := range []struct {
		name     string
		format   Format
		channels int
		value    float32
		check    func(t *testing.T, p []byte)
	}{
		{"s16 full scale", FormatInt16LE, 1, 1, func(t *testing.T, p []byte) {
			if got := int16(binary.LittleEndian.Uint16(p)); got != math.MaxInt16 {
				t.Errorf("got %d, want %d", got, math.MaxInt16)
			}
		}},
		{"s16 negative", FormatInt16LE, 2, -0.5, func(t *testing.T, p []byte) {
			for i := 0; i < 4; i += 2 {
				if got := int16(binary.LittleEndian.Uint16(p[i:])); got != -16383 {
					t.Errorf("channel %d got %d, want -16383", i/2, got)
				}
			}
		}},
		{"u8 silence", FormatUint8, 1, 0, func(t *testing.T, p []byte) {
			if p[0] != 128 {
				t.Errorf("got %d, want 128", p[0])
			}
		}},
		{"u8 extremes clamp", FormatUint8, 1, -2, func(t *testing.T, p []byte) {
			if p[0] != 1 {
				t.Errorf("got %d, want 1", p[0])
			}
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := NewStreamReader(&constSource{value: tc.value}, tc.format, tc.channels)
			p := make([]byte, tc.format.BytesPerSample()*tc.channels*4)
			n, err := r.Read(p)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if n != len(p) {
				t.Fatalf("n = %d, want %d", n, len(p))
			}
			tc.check(t, p)
		})
	}
}

func TestStreamReaderPartialFrame(t *testing.T) {
	src := &constSource{value: 0.5}
	r := NewStreamReader(src, FormatFloat32LE, 2)
	n, err := r.Read(make([]byte, 7))
	if err != nil || n != 0 {
		t.Fatalf("short read = (%d, %v), want (0, nil)", n, err)
	}
	if src.calls != 0 {
		t.Fatal("source should not render for a sub-frame read")
	}
	p := make([]byte, 20)
	n, _ = r.Read(p)
	if n != 16 {
		t.Fatalf("n = %d, want 16", n)
	}
	for _, b := range p[16:] {
		if b != 0 {
			t.Fatal("trailing partial frame was written")
		}
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"f32le": FormatFloat32LE,
		"s16le": FormatInt16LE,
		"u8":    FormatUint8,
	} {
		got, err := ParseFormat(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if got != want || got.String() != name {
			t.Errorf("parse %q = %v", name, got)
		}
	}
	if _, err := ParseFormat("u16"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

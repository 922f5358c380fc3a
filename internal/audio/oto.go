package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer drives an oto context directly, which allows choosing the device
// sample format and channel count.
type OtoPlayer struct {
	deviceOutput
}

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextErr  error
	otoOptions     oto.NewContextOptions
)

func otoFormat(f Format) (oto.Format, error) {
	switch f {
	case FormatFloat32LE:
		return oto.FormatFloat32LE, nil
	case FormatInt16LE:
		return oto.FormatSignedInt16LE, nil
	case FormatUint8:
		return oto.FormatUnsignedInt8, nil
	default:
		return 0, fmt.Errorf("unsupported sample format %v", f)
	}
}

// oto allows a single context per process; later callers must ask for the
// same configuration.
func sharedOtoContext(op oto.NewContextOptions) (*oto.Context, error) {
	otoContextOnce.Do(func() {
		otoOptions = op
		ctx, ready, err := oto.NewContext(&op)
		if err != nil {
			otoContextErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoOptions.SampleRate != op.SampleRate || otoOptions.ChannelCount != op.ChannelCount || otoOptions.Format != op.Format {
		return nil, fmt.Errorf("oto context already initialized at %d Hz/%d ch (requested %d Hz/%d ch)",
			otoOptions.SampleRate, otoOptions.ChannelCount, op.SampleRate, op.ChannelCount)
	}
	return otoContext, nil
}

// NewOtoPlayer opens a paused player writing format samples on channels
// channels. The first player fixes the process-wide device configuration.
func NewOtoPlayer(sampleRate int, channels int, format Format, source SampleSource) (*OtoPlayer, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	of, err := otoFormat(format)
	if err != nil {
		return nil, err
	}
	ctx, err := sharedOtoContext(oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       of,
	})
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, format, channels)
	return &OtoPlayer{deviceOutput{player: ctx.NewPlayer(reader), reader: reader}}, nil
}

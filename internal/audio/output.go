package audio

import "sync"

// Output is a running audio device stream fed by a StreamReader.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	Stop() error
}

// devicePlayer is the part of an ebiten or oto player an output drives.
type devicePlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// deviceOutput pairs a backend player with the reader that renders into it.
type deviceOutput struct {
	mu      sync.Mutex
	player  devicePlayer
	reader  *StreamReader
	started bool
	closed  bool
}

func (o *deviceOutput) Play() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.player.Play()
	o.started = true
}

func (o *deviceOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.player.Pause()
}

func (o *deviceOutput) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.closed && o.player.IsPlaying()
}

// Stop releases the backend player and the reader, whether or not playback
// was ever started. Later calls do nothing.
func (o *deviceOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if o.started {
		o.started = false
		o.player.Pause()
	}
	if err := o.player.Close(); err != nil {
		o.reader.Close()
		return err
	}
	return o.reader.Close()
}

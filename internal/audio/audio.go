// Package audio plays the round start and victory chimes. Audio is
// optional: when the device cannot be opened every call is a no-op.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Chimes owns the speaker mixer.
type Chimes struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64 // 0..1
	initialized bool
}

// New creates a silent, uninitialised chime player.
func New(volume float64) *Chimes {
	return &Chimes{mixer: &beep.Mixer{}, volume: volume}
}

// Init opens the speaker. Callers log the error and carry on without sound.
func (c *Chimes) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close silences anything still playing.
func (c *Chimes) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// PlayStart plays the round start chime.
func (c *Chimes) PlayStart() { c.play(StartChime(sampleRate)) }

// PlayWin plays the victory chime.
func (c *Chimes) PlayWin() { c.play(WinChime(sampleRate)) }

func (c *Chimes) play(s beep.Streamer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return false
	}
	speaker.Lock()
	c.mixer.Add(withVolume(s, c.volume))
	speaker.Unlock()
	return true
}

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(math.Min(vol, 1)), Silent: false}
}

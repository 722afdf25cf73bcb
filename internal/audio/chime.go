package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// tone is a sine oscillator with a short attack and a linear release so
// notes do not click.
type tone struct {
	freq     float64
	phase    float64
	duration int
	position int
	attack   int
	gain     float64
	rate     beep.SampleRate
}

func newTone(freq float64, d time.Duration, gain float64, rate beep.SampleRate) *tone {
	return &tone{
		freq:     freq,
		duration: rate.N(d),
		attack:   rate.N(5 * time.Millisecond),
		gain:     gain,
		rate:     rate,
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.duration {
			return i, i > 0
		}
		env := 1 - float64(t.position)/float64(t.duration)
		if t.position < t.attack {
			env *= float64(t.position) / float64(t.attack)
		}
		val := t.gain * env * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Note frequencies in Hz.
const (
	noteC5 = 523.25
	noteE5 = 659.25
	noteG5 = 783.99
	noteC6 = 1046.50
)

// StartChime is two quick rising notes.
func StartChime(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		newTone(noteC5, 90*time.Millisecond, 0.3, rate),
		newTone(noteG5, 140*time.Millisecond, 0.3, rate),
	)
}

// WinChime is a major arpeggio ending on a held octave.
func WinChime(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		newTone(noteC5, 110*time.Millisecond, 0.3, rate),
		newTone(noteE5, 110*time.Millisecond, 0.3, rate),
		newTone(noteG5, 110*time.Millisecond, 0.3, rate),
		beep.Mix(
			newTone(noteC6, 450*time.Millisecond, 0.25, rate),
			newTone(noteG5, 450*time.Millisecond, 0.15, rate),
		),
	)
}

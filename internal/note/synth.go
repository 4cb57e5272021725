package note

import (
	"context"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"pianoclips/internal/audio"
	"pianoclips/internal/keyboard"
	"pianoclips/internal/stage"
)

// partials are the relative amplitudes of the first harmonics.
var partials = []float64{1, 0.42, 0.24, 0.13, 0.07, 0.04}

const (
	attack  = 4 * time.Millisecond
	release = 40 * time.Millisecond
)

// Synth renders an additive tone: a fundamental plus decaying harmonics under
// an exponential envelope. Higher keys decay faster, as on a real piano.
type Synth struct {
	velocity int
}

// NewSynth constructs a synth playing at velocity (1..127).
func NewSynth(velocity int) *Synth {
	return &Synth{velocity: velocity}
}

// Name implements Instrument.
func (s *Synth) Name() string { return "synth" }

// Streamer returns the tone of key lasting length.
func (s *Synth) Streamer(key keyboard.Key, format beep.Format, length time.Duration) beep.Streamer {
	rate := float64(format.SampleRate)
	total := format.SampleRate.N(length)
	attackN := float64(format.SampleRate.N(attack))
	releaseN := float64(format.SampleRate.N(release))
	freq := key.Frequency()
	decay := 1.2 + freq/700

	// Harmonics above Nyquist are dropped; the fundamental always sounds.
	voiced := 1
	for voiced < len(partials) && freq*float64(voiced+1) < rate/2 {
		voiced++
	}
	var norm float64
	for _, amp := range partials[:voiced] {
		norm += amp
	}

	pos := 0
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / rate
			var v float64
			for h, amp := range partials[:voiced] {
				hf := freq * float64(h+1)
				v += amp * math.Exp(-t*decay*float64(h+1)) * math.Sin(2*math.Pi*hf*t)
			}
			v /= norm
			if p := float64(pos); p < attackN {
				v *= p / attackN
			}
			if remaining := float64(total - pos); remaining < releaseN {
				v *= remaining / releaseN
			}
			samples[i] = [2]float64{v, v}
			pos++
			n++
		}
		return n, true
	})

	return &effects.Gain{Streamer: tone, Gain: float64(s.velocity)/127 - 1}
}

// Render writes the tone to wavPath.
func (s *Synth) Render(_ context.Context, key keyboard.Key, wavPath string, format beep.Format, length time.Duration) error {
	return audio.WriteWAV(wavPath, s.Streamer(key, format, length), format)
}

// HealthCheck implements Instrument; the synth has no external requirements.
func (s *Synth) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("synth")
}

package note

import (
	"context"
	"fmt"
	"time"

	"github.com/gopxl/beep"

	"pianoclips/internal/config"
	"pianoclips/internal/keyboard"
	"pianoclips/internal/stage"
)

// Instrument renders one key to a WAV file of exactly the requested length.
type Instrument interface {
	Name() string
	Render(ctx context.Context, key keyboard.Key, wavPath string, format beep.Format, length time.Duration) error
	HealthCheck(ctx context.Context) stage.Health
}

// NewInstrument builds the instrument named by cfg.Note.Instrument.
func NewInstrument(cfg *config.Config) (Instrument, error) {
	switch cfg.Note.Instrument {
	case "synth":
		return NewSynth(cfg.Note.Velocity), nil
	case "timidity":
		return NewTimidity(cfg.Tools.Timidity, cfg.Note.Program, cfg.Note.Velocity), nil
	default:
		return nil, fmt.Errorf("unknown instrument %q", cfg.Note.Instrument)
	}
}

package speech

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pianoclips/internal/config"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// piperBaseRate is the speaking rate at which piper's length scale is 1.
const piperBaseRate = 150

// Piper drives the piper neural TTS binary with a local .onnx voice.
type Piper struct {
	binary string
	model  string
	rate   int
	run    commandRunner
}

// NewPiper constructs a piper engine.
func NewPiper(binary string, cfg config.Speech) *Piper {
	return &Piper{
		binary: strings.TrimSpace(binary),
		model:  cfg.Model,
		rate:   cfg.Rate,
		run:    defaultCommandRunner,
	}
}

// Name implements Engine.
func (p *Piper) Name() string { return "piper" }

// Voices reports the single voice held by the configured model.
func (p *Piper) Voices(context.Context) ([]Voice, error) {
	name := strings.TrimSuffix(filepath.Base(p.model), ".onnx")
	lang := name
	if i := strings.IndexByte(name, '-'); i > 0 {
		lang = name[:i]
	}
	return []Voice{{ID: p.model, Name: name, Language: lang}}, nil
}

// Synthesize pipes text to piper and writes the WAV to wavPath.
func (p *Piper) Synthesize(ctx context.Context, text, wavPath string) error {
	scale := float64(piperBaseRate) / float64(max(p.rate, 1))
	args := []string{
		"--model", p.model,
		"--output_file", wavPath,
		"--length_scale", strconv.FormatFloat(scale, 'f', 3, 64),
	}
	if _, err := p.run(ctx, strings.NewReader(text+"\n"), p.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "speech", "piper", "Speech synthesis failed", err)
	}
	return nil
}

// HealthCheck verifies the binary and the voice model.
func (p *Piper) HealthCheck(context.Context) stage.Health {
	if h := stage.BinaryHealth("speech", p.binary); !h.Ready {
		return h
	}
	if _, err := os.Stat(p.model); err != nil {
		return stage.Unhealthy("speech", "piper model unavailable: "+err.Error())
	}
	return stage.Healthy("speech")
}

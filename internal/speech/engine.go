package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"pianoclips/internal/config"
	"pianoclips/internal/stage"
)

// Voice describes one voice an engine offers.
type Voice struct {
	ID       string
	Name     string
	Language string
	Gender   string
}

// Engine synthesizes text to a WAV file.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, text, wavPath string) error
	Voices(ctx context.Context) ([]Voice, error)
	HealthCheck(ctx context.Context) stage.Health
}

// NewEngine builds the engine named by cfg.Speech.Engine.
func NewEngine(cfg *config.Config) (Engine, error) {
	switch cfg.Speech.Engine {
	case "espeak":
		return NewEspeak(cfg.Tools.Espeak, cfg.Speech), nil
	case "piper":
		return NewPiper(cfg.Tools.Piper, cfg.Speech), nil
	case "openai":
		return NewOpenAI(cfg.Speech), nil
	default:
		return nil, fmt.Errorf("unknown speech engine %q", cfg.Speech.Engine)
	}
}

// commandRunner runs name with stdin and returns stdout; tests replace it.
type commandRunner func(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout bytes.Buffer
	var stderr strings.Builder
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

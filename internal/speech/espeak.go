package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"pianoclips/internal/config"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// Espeak drives the espeak-ng command line synthesizer.
type Espeak struct {
	binary     string
	voice      string
	voiceIndex int
	language   string
	rate       int
	amplitude  int
	run        commandRunner

	mu       sync.Mutex
	resolved string
}

// NewEspeak constructs an espeak-ng engine.
func NewEspeak(binary string, cfg config.Speech) *Espeak {
	return &Espeak{
		binary:     strings.TrimSpace(binary),
		voice:      cfg.Voice,
		voiceIndex: cfg.VoiceIndex,
		language:   cfg.Language,
		rate:       cfg.Rate,
		amplitude:  int(math.Round(cfg.Volume * 100)),
		run:        defaultCommandRunner,
	}
}

// Name implements Engine.
func (e *Espeak) Name() string { return "espeak" }

// Voices lists the voices espeak-ng knows for the configured language.
func (e *Espeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := e.run(ctx, nil, e.binary, "--voices="+e.language)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "speech", "list voices", "espeak-ng voice listing failed", err)
	}
	return parseEspeakVoices(out), nil
}

// parseEspeakVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 2  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		gender := fields[2]
		if i := strings.IndexByte(gender, '/'); i >= 0 {
			gender = gender[i+1:]
		}
		voices = append(voices, Voice{
			ID:       fields[1],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: fields[1],
			Gender:   gender,
		})
	}
	return voices
}

func (e *Espeak) resolveVoice(ctx context.Context) (string, error) {
	if e.voice != "" {
		return e.voice, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resolved != "" {
		return e.resolved, nil
	}
	voices, err := e.Voices(ctx)
	if err != nil {
		return "", err
	}
	if e.voiceIndex >= len(voices) {
		return "", services.Wrap(services.ErrConfiguration, "speech", "select voice",
			fmt.Sprintf("voice_index %d out of range (%d voices for %q)", e.voiceIndex, len(voices), e.language), nil)
	}
	e.resolved = voices[e.voiceIndex].ID
	return e.resolved, nil
}

// Synthesize renders text to wavPath.
func (e *Espeak) Synthesize(ctx context.Context, text, wavPath string) error {
	voice, err := e.resolveVoice(ctx)
	if err != nil {
		return err
	}
	args := []string{
		"-v", voice,
		"-s", strconv.Itoa(e.rate),
		"-a", strconv.Itoa(e.amplitude),
		"-w", wavPath,
		"--", text,
	}
	if _, err := e.run(ctx, nil, e.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "speech", "espeak-ng", "Speech synthesis failed", err)
	}
	return nil
}

// HealthCheck implements Engine.
func (e *Espeak) HealthCheck(context.Context) stage.Health {
	return stage.BinaryHealth("speech", e.binary)
}

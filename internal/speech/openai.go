package speech

import (
	"context"
	"io"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"pianoclips/internal/config"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// openAIBaseRate is the words-per-minute rate mapped to speed 1.0.
const openAIBaseRate = 150

// OpenAI synthesizes speech through the OpenAI audio API.
type OpenAI struct {
	client *openai.Client
	model  string
	voice  string
	speed  float64
	hasKey bool
}

// NewOpenAI constructs an OpenAI speech engine.
func NewOpenAI(cfg config.Speech) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	speed := float64(cfg.Rate) / openAIBaseRate
	speed = min(max(speed, 0.25), 4.0)
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		voice:  cfg.Voice,
		speed:  speed,
		hasKey: strings.TrimSpace(cfg.APIKey) != "",
	}
}

// Name implements Engine.
func (o *OpenAI) Name() string { return "openai" }

// Voices returns the fixed OpenAI voice list.
func (o *OpenAI) Voices(context.Context) ([]Voice, error) {
	ids := []openai.SpeechVoice{
		openai.VoiceAlloy, openai.VoiceEcho, openai.VoiceFable,
		openai.VoiceOnyx, openai.VoiceNova, openai.VoiceShimmer,
	}
	voices := make([]Voice, 0, len(ids))
	for _, id := range ids {
		voices = append(voices, Voice{ID: string(id), Name: string(id), Language: "multi"})
	}
	return voices, nil
}

// Synthesize requests a WAV rendering of text and writes it to wavPath.
func (o *OpenAI) Synthesize(ctx context.Context, text, wavPath string) error {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(o.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
		Speed:          o.speed,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "speech", "openai", "Speech request failed", err)
	}
	defer resp.Close()

	f, err := os.Create(wavPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "speech", "openai", "Could not create render", err)
	}
	if _, err := io.Copy(f, resp); err != nil {
		_ = f.Close()
		return services.Wrap(services.ErrExternalTool, "speech", "openai", "Could not read speech response", err)
	}
	if err := f.Close(); err != nil {
		return services.Wrap(services.ErrExternalTool, "speech", "openai", "Could not write render", err)
	}
	return nil
}

// HealthCheck reports whether an API key is configured.
func (o *OpenAI) HealthCheck(context.Context) stage.Health {
	if !o.hasKey {
		return stage.Unhealthy("speech", "OPENAI_API_KEY not set")
	}
	return stage.Healthy("speech")
}

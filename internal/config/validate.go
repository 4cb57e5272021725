package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const maxKeyIndex = 87

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateKeyboard(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateNote(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if c.Merge.GapMS < 0 {
		return errors.New("merge.gap_ms must be zero or positive")
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if c.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be at least 1")
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		return errors.New("paths.results_dir must be set")
	}
	seen := make(map[string]string, 5)
	named := []struct{ key, value string }{
		{"paths.note_dir", c.Paths.NoteDir},
		{"paths.speech_dir", c.Paths.SpeechDir},
		{"paths.merged_dir", c.Paths.MergedDir},
		{"paths.image_dir", c.Paths.ImageDir},
		{"paths.video_dir", c.Paths.VideoDir},
	}
	for _, entry := range named {
		if strings.ContainsAny(entry.value, `/\`) || entry.value == "." || entry.value == ".." {
			return fmt.Errorf("%s must be a plain directory name, got %q", entry.key, entry.value)
		}
		if prev, ok := seen[entry.value]; ok {
			return fmt.Errorf("%s and %s must differ (both %q)", prev, entry.key, entry.value)
		}
		seen[entry.value] = entry.key
	}
	return nil
}

func (c *Config) validateKeyboard() error {
	if c.Keyboard.FirstKey < 0 || c.Keyboard.FirstKey > maxKeyIndex {
		return fmt.Errorf("keyboard.first_key must be between 0 and %d", maxKeyIndex)
	}
	if c.Keyboard.LastKey < 0 || c.Keyboard.LastKey > maxKeyIndex {
		return fmt.Errorf("keyboard.last_key must be between 0 and %d", maxKeyIndex)
	}
	if c.Keyboard.FirstKey > c.Keyboard.LastKey {
		return errors.New("keyboard.first_key must not exceed keyboard.last_key")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return errors.New("audio.sample_rate must be between 8000 and 192000")
	}
	if !strings.HasSuffix(c.Audio.Bitrate, "k") {
		return fmt.Errorf("audio.bitrate must look like 192k, got %q", c.Audio.Bitrate)
	}
	return nil
}

func (c *Config) validateNote() error {
	switch c.Note.Instrument {
	case "synth", "timidity":
	default:
		return fmt.Errorf("note.instrument must be synth or timidity, got %q", c.Note.Instrument)
	}
	if c.Note.RecordSeconds <= 0 {
		return errors.New("note.record_seconds must be positive")
	}
	if c.Note.Velocity < 1 || c.Note.Velocity > 127 {
		return errors.New("note.velocity must be between 1 and 127")
	}
	if c.Note.Program < 0 || c.Note.Program > 127 {
		return errors.New("note.program must be between 0 and 127")
	}
	return nil
}

func (c *Config) validateSpeech() error {
	switch c.Speech.Engine {
	case "espeak":
	case "piper":
		if c.Speech.Model == "" {
			return errors.New("speech.model must point to a piper .onnx voice when speech.engine is piper")
		}
	case "openai":
		if c.Speech.APIKey == "" {
			return errors.New("speech.api_key is required for the openai engine (or set OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("speech.engine must be espeak, piper or openai, got %q", c.Speech.Engine)
	}
	if c.Speech.VoiceIndex < 0 {
		return errors.New("speech.voice_index must be zero or positive")
	}
	if c.Speech.Rate < 1 {
		return errors.New("speech.rate must be positive")
	}
	if c.Speech.Volume < 0 || c.Speech.Volume > 1 {
		return errors.New("speech.volume must be between 0 and 1")
	}
	if _, err := language.Parse(c.Speech.Language); err != nil {
		return fmt.Errorf("speech.language: %w", err)
	}
	return nil
}

func (c *Config) validateImage() error {
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return errors.New("image.width and image.height must be positive")
	}
	if c.Image.FontSize <= 0 {
		return errors.New("image.font_size must be positive")
	}
	if _, err := ParseColor(c.Image.Background); err != nil {
		return fmt.Errorf("image.background: %w", err)
	}
	if _, err := ParseColor(c.Image.TextColor); err != nil {
		return fmt.Errorf("image.text_color: %w", err)
	}
	switch c.Image.Anchor {
	case "origin", "center":
	default:
		return fmt.Errorf("image.anchor must be origin or center, got %q", c.Image.Anchor)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FPS < 1 {
		return errors.New("video.fps must be at least 1")
	}
	if strings.TrimSpace(c.Video.AudioCodec) == "" || strings.TrimSpace(c.Video.VideoCodec) == "" {
		return errors.New("video.audio_codec and video.video_codec must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

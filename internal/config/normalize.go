package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeNote()
	c.normalizeSpeech()
	if err := c.normalizeImage(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeTools()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 1
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PIANOCLIPS_RESULTS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ResultsDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		c.Paths.ResultsDir = defaultResultsDir
	}
	var err error
	if c.Paths.ResultsDir, err = expandPath(strings.TrimSpace(c.Paths.ResultsDir)); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	c.Paths.NoteDir = defaultString(c.Paths.NoteDir, defaultNoteDir)
	c.Paths.SpeechDir = defaultString(c.Paths.SpeechDir, defaultSpeechDir)
	c.Paths.MergedDir = defaultString(c.Paths.MergedDir, defaultMergedDir)
	c.Paths.ImageDir = defaultString(c.Paths.ImageDir, defaultImageDir)
	c.Paths.VideoDir = defaultString(c.Paths.VideoDir, defaultVideoDir)

	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = filepath.Join(c.Paths.ResultsDir, defaultLedgerName)
	}
	if c.Paths.LedgerPath, err = expandPath(strings.TrimSpace(c.Paths.LedgerPath)); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.Bitrate = strings.ToLower(defaultString(c.Audio.Bitrate, defaultBitrate))
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeNote() {
	c.Note.Instrument = strings.ToLower(defaultString(c.Note.Instrument, defaultInstrument))
	if c.Note.RecordSeconds == 0 {
		c.Note.RecordSeconds = defaultRecordSecs
	}
	if c.Note.Velocity == 0 {
		c.Note.Velocity = defaultVelocity
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.Engine = strings.ToLower(defaultString(c.Speech.Engine, defaultEngine))
	c.Speech.Voice = strings.TrimSpace(c.Speech.Voice)
	c.Speech.Language = defaultString(c.Speech.Language, defaultLanguage)
	c.Speech.Model = strings.TrimSpace(c.Speech.Model)
	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.Rate == 0 {
		c.Speech.Rate = defaultSpeechRate
	}
	if c.Speech.Engine == "openai" {
		if c.Speech.APIKey == "" {
			if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
				c.Speech.APIKey = strings.TrimSpace(value)
			}
		}
		c.Speech.Model = defaultString(c.Speech.Model, defaultOpenAIModel)
		c.Speech.Voice = defaultString(c.Speech.Voice, defaultOpenAIVoice)
	}
	if c.Speech.Engine == "piper" && c.Speech.Model != "" {
		if expanded, err := expandPath(c.Speech.Model); err == nil {
			c.Speech.Model = expanded
		}
	}
}

func (c *Config) normalizeImage() error {
	c.Image.Background = defaultString(c.Image.Background, defaultBackground)
	c.Image.TextColor = defaultString(c.Image.TextColor, defaultTextColor)
	c.Image.Anchor = strings.ToLower(defaultString(c.Image.Anchor, defaultAnchor))
	if c.Image.FontSize == 0 {
		c.Image.FontSize = defaultFontSize
	}
	if strings.TrimSpace(c.Image.FontPath) != "" {
		var err error
		if c.Image.FontPath, err = expandPath(strings.TrimSpace(c.Image.FontPath)); err != nil {
			return fmt.Errorf("image.font_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeVideo() {
	if c.Video.FPS == 0 {
		c.Video.FPS = defaultFPS
	}
	c.Video.AudioCodec = defaultString(c.Video.AudioCodec, defaultAudioCodec)
	c.Video.VideoCodec = defaultString(c.Video.VideoCodec, defaultVideoCodec)
	c.Video.PixelFormat = defaultString(c.Video.PixelFormat, defaultPixelFormat)
}

func (c *Config) normalizeTools() {
	defaults := Default().Tools
	c.Tools.FFmpeg = defaultString(c.Tools.FFmpeg, defaults.FFmpeg)
	c.Tools.FFprobe = defaultString(c.Tools.FFprobe, defaults.FFprobe)
	c.Tools.Timidity = defaultString(c.Tools.Timidity, defaults.Timidity)
	c.Tools.Espeak = defaultString(c.Tools.Espeak, defaults.Espeak)
	c.Tools.Piper = defaultString(c.Tools.Piper, defaults.Piper)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(defaultString(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(defaultString(c.Logging.Level, defaultLogLevel))
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

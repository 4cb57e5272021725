package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the results root and per-stage subdirectory names.
type Paths struct {
	ResultsDir string `toml:"results_dir"`
	NoteDir    string `toml:"note_dir"`
	SpeechDir  string `toml:"speech_dir"`
	MergedDir  string `toml:"merged_dir"`
	ImageDir   string `toml:"image_dir"`
	VideoDir   string `toml:"video_dir"`
	LedgerPath string `toml:"ledger_path"`
}

// Keyboard restricts generation to an inclusive range of key indexes.
type Keyboard struct {
	FirstKey int `toml:"first_key"`
	LastKey  int `toml:"last_key"`
}

// Audio contains settings shared by every audio artifact.
type Audio struct {
	SampleRate int    `toml:"sample_rate"`
	Bitrate    string `toml:"bitrate"`
}

// Note contains settings for the note sound generator.
type Note struct {
	Instrument    string  `toml:"instrument"`
	RecordSeconds float64 `toml:"record_seconds"`
	Velocity      int     `toml:"velocity"`
	Program       int     `toml:"program"`
}

// Speech contains settings for the spoken label generator.
type Speech struct {
	Engine     string  `toml:"engine"`
	Voice      string  `toml:"voice"`
	VoiceIndex int     `toml:"voice_index"`
	Rate       int     `toml:"rate"`
	Volume     float64 `toml:"volume"`
	Language   string  `toml:"language"`
	// Model is the piper .onnx model path or the OpenAI speech model name.
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Merge contains settings for the audio merger.
type Merge struct {
	GapMS int `toml:"gap_ms"`
}

// Image contains settings for the label image generator.
type Image struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	FontPath   string  `toml:"font_path"`
	FontSize   float64 `toml:"font_size"`
	Background string  `toml:"background"`
	TextColor  string  `toml:"text_color"`
	Anchor     string  `toml:"anchor"`
}

// Video contains settings for the video composer.
type Video struct {
	FPS         int    `toml:"fps"`
	AudioCodec  string `toml:"audio_codec"`
	VideoCodec  string `toml:"video_codec"`
	PixelFormat string `toml:"pixel_format"`
}

// Pipeline contains orchestration settings.
type Pipeline struct {
	Workers int `toml:"workers"`
}

// Tools names the external executables the stages invoke.
type Tools struct {
	FFmpeg   string `toml:"ffmpeg"`
	FFprobe  string `toml:"ffprobe"`
	Timidity string `toml:"timidity"`
	Espeak   string `toml:"espeak"`
	Piper    string `toml:"piper"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for pianoclips.
//
// Configuration sections by subsystem:
//   - Paths: results root, stage subdirectories, ledger database
//   - Keyboard: inclusive key index range
//   - Audio: sample rate and mp3 bitrate shared by audio stages
//   - Note: instrument backend and recording length
//   - Speech: TTS engine, voice selection, rate and volume
//   - Merge: silence gap between note and speech
//   - Image: canvas, font and colours for label images
//   - Video: frame rate and codecs
//   - Pipeline: key-level worker count
//   - Tools: external binaries
//   - Logging: log format, level and optional JSON file
type Config struct {
	Paths    Paths    `toml:"paths"`
	Keyboard Keyboard `toml:"keyboard"`
	Audio    Audio    `toml:"audio"`
	Note     Note     `toml:"note"`
	Speech   Speech   `toml:"speech"`
	Merge    Merge    `toml:"merge"`
	Image    Image    `toml:"image"`
	Video    Video    `toml:"video"`
	Pipeline Pipeline `toml:"pipeline"`
	Tools    Tools    `toml:"tools"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pianoclips.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the results root and every stage directory.
func (c *Config) EnsureDirectories() error {
	dirs := append([]string{c.Paths.ResultsDir}, c.StageDirs()...)
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StageDirs returns the absolute stage directories in pipeline order.
func (c *Config) StageDirs() []string {
	root := c.Paths.ResultsDir
	return []string{
		filepath.Join(root, c.Paths.NoteDir),
		filepath.Join(root, c.Paths.SpeechDir),
		filepath.Join(root, c.Paths.MergedDir),
		filepath.Join(root, c.Paths.ImageDir),
		filepath.Join(root, c.Paths.VideoDir),
	}
}

// Gap returns the configured silence between note and speech.
func (c *Config) Gap() time.Duration {
	return time.Duration(c.Merge.GapMS) * time.Millisecond
}

// RecordDuration returns the configured note recording length.
func (c *Config) RecordDuration() time.Duration {
	return time.Duration(c.Note.RecordSeconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"pianoclips/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PIANOCLIPS_RESULTS_DIR", "")
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "pianoclips", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	if cfg.Paths.ResultsDir != filepath.Join(tempHome, "results") {
		t.Fatalf("unexpected results dir: %q", cfg.Paths.ResultsDir)
	}
	if cfg.Paths.LedgerPath != filepath.Join(tempHome, "results", "pianoclips.db") {
		t.Fatalf("unexpected ledger path: %q", cfg.Paths.LedgerPath)
	}
	if cfg.Image.Width != 1920 || cfg.Image.Height != 1080 || cfg.Image.FontSize != 100 {
		t.Fatalf("unexpected image defaults: %+v", cfg.Image)
	}
	if cfg.Speech.Rate != 150 || cfg.Speech.VoiceIndex != 0 || cfg.Speech.Engine != "espeak" {
		t.Fatalf("unexpected speech defaults: %+v", cfg.Speech)
	}
	if cfg.Video.FPS != 1 || cfg.Video.AudioCodec != "aac" {
		t.Fatalf("unexpected video defaults: %+v", cfg.Video)
	}
	if cfg.Gap() != time.Millisecond {
		t.Fatalf("unexpected gap: %v", cfg.Gap())
	}
	if cfg.RecordDuration() != 2*time.Second {
		t.Fatalf("unexpected record duration: %v", cfg.RecordDuration())
	}
	if cfg.Keyboard.FirstKey != 0 || cfg.Keyboard.LastKey != 87 {
		t.Fatalf("unexpected keyboard range: %+v", cfg.Keyboard)
	}
}

func TestLoadFromFileOverridesAndExpands(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PIANOCLIPS_RESULTS_DIR", "")

	configPath := filepath.Join(tempHome, "pianoclips.toml")
	content := `
[paths]
results_dir = "~/out"
video_dir = "clips"

[keyboard]
first_key = 39
last_key = 40

[merge]
gap_ms = 500

[image]
anchor = "CENTER"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected file to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ResultsDir != filepath.Join(tempHome, "out") {
		t.Fatalf("unexpected results dir: %q", cfg.Paths.ResultsDir)
	}
	if cfg.Paths.VideoDir != "clips" || cfg.Paths.NoteDir != "key_sounds" {
		t.Fatalf("unexpected dirs: %+v", cfg.Paths)
	}
	if cfg.Gap() != 500*time.Millisecond {
		t.Fatalf("unexpected gap: %v", cfg.Gap())
	}
	if cfg.Image.Anchor != "center" {
		t.Fatalf("expected anchor normalized to lower case, got %q", cfg.Image.Anchor)
	}
	dirs := cfg.StageDirs()
	if dirs[4] != filepath.Join(tempHome, "out", "clips") {
		t.Fatalf("unexpected video stage dir: %q", dirs[4])
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[image]\nwidht = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestResultsDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PIANOCLIPS_RESULTS_DIR", dir)
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.ResultsDir != dir {
		t.Fatalf("expected env override %q, got %q", dir, cfg.Paths.ResultsDir)
	}
}

func TestOpenAIEngineUsesEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "openai.toml")
	if err := os.WriteFile(path, []byte("[speech]\nengine = \"openai\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Speech.APIKey != "sk-test" || cfg.Speech.Model != "tts-1" || cfg.Speech.Voice != "alloy" {
		t.Fatalf("unexpected openai speech settings: %+v", cfg.Speech)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"range", func(c *config.Config) { c.Keyboard.FirstKey = 10; c.Keyboard.LastKey = 5 }, "first_key"},
		{"key bound", func(c *config.Config) { c.Keyboard.LastKey = 88 }, "last_key"},
		{"gap", func(c *config.Config) { c.Merge.GapMS = -1 }, "gap_ms"},
		{"instrument", func(c *config.Config) { c.Note.Instrument = "organ" }, "note.instrument"},
		{"engine", func(c *config.Config) { c.Speech.Engine = "sapi" }, "speech.engine"},
		{"piper model", func(c *config.Config) { c.Speech.Engine = "piper" }, "speech.model"},
		{"openai key", func(c *config.Config) { c.Speech.Engine = "openai" }, "api_key"},
		{"volume", func(c *config.Config) { c.Speech.Volume = 2 }, "speech.volume"},
		{"language", func(c *config.Config) { c.Speech.Language = "not a tag!" }, "speech.language"},
		{"colour", func(c *config.Config) { c.Image.Background = "black" }, "image.background"},
		{"anchor", func(c *config.Config) { c.Image.Anchor = "left" }, "image.anchor"},
		{"dirs collide", func(c *config.Config) { c.Paths.VideoDir = c.Paths.ImageDir }, "must differ"},
		{"dir nested", func(c *config.Config) { c.Paths.NoteDir = "a/b" }, "plain directory"},
		{"fps", func(c *config.Config) { c.Video.FPS = 0 }, "video.fps"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if decoded.Image != def.Image {
		t.Fatalf("sample image section drifted: %+v vs %+v", decoded.Image, def.Image)
	}
	if decoded.Speech.Rate != def.Speech.Rate || decoded.Merge != def.Merge || decoded.Video != def.Video {
		t.Fatal("sample speech/merge/video sections drifted from defaults")
	}
}

func TestParseColor(t *testing.T) {
	c, err := config.ParseColor("#fff")
	if err != nil || c.R != 255 || c.G != 255 || c.B != 255 || c.A != 255 {
		t.Fatalf("unexpected short colour: %+v %v", c, err)
	}
	c, err = config.ParseColor("102030")
	if err != nil || c.R != 0x10 || c.G != 0x20 || c.B != 0x30 {
		t.Fatalf("unexpected colour: %+v %v", c, err)
	}
	if _, err := config.ParseColor("#12345"); err == nil {
		t.Fatal("expected error for bad length")
	}
}

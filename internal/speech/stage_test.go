package speech

import (
	"context"
	"errors"
	"os"
	"testing"

	"pianoclips/internal/audio"
	"pianoclips/internal/config"
	"pianoclips/internal/fileutil"
	"pianoclips/internal/keyboard"
	"pianoclips/internal/layout"
	"pianoclips/internal/logging"
	"pianoclips/internal/media/ffmpeg"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

type copyEncoder struct{}

func (copyEncoder) EncodeMP3(_ context.Context, req ffmpeg.EncodeRequest) error {
	return fileutil.CopyFile(req.Input, req.Output)
}

type fakeEngine struct {
	texts []string
	empty bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Synthesize(_ context.Context, text, wavPath string) error {
	f.texts = append(f.texts, text)
	if f.empty {
		return nil
	}
	return os.WriteFile(wavPath, []byte("RIFF....WAVE"), 0o644)
}

func (f *fakeEngine) Voices(context.Context) ([]Voice, error) { return nil, nil }

func (f *fakeEngine) HealthCheck(context.Context) stage.Health { return stage.Healthy("speech") }

func newStageFixture(t *testing.T, engine Engine) (*Stage, layout.Layout) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ResultsDir = t.TempDir()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	l := layout.New(cfg.Paths)
	writer := audio.MP3Writer{Encoder: copyEncoder{}, Bitrate: "192k", SampleRate: 44100}
	return NewStage(l, engine, writer, logging.NewNop()), l
}

func TestStageSpeaksKeyName(t *testing.T) {
	engine := &fakeEngine{}
	s, l := newStageFixture(t, engine)
	item := stage.NewItem(keyboard.NewKey(1, "A#-0/Bb-0"))

	ctx := context.Background()
	if err := s.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := s.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(engine.texts) != 1 || engine.texts[0] != "A Sharp 0 B Flat 0" {
		t.Fatalf("unexpected synthesized text %v", engine.texts)
	}
	artifact, ok := item.Artifact(layout.Speech)
	if !ok || artifact.Path != l.Output(layout.Speech, 1) {
		t.Fatalf("unexpected artifact %+v", artifact)
	}
	if _, err := os.Stat(l.Path(layout.Speech, 1, layout.ExtWAV)); !os.IsNotExist(err) {
		t.Fatal("expected wav removed")
	}
}

func TestStageRejectsEmptyRender(t *testing.T) {
	s, _ := newStageFixture(t, &fakeEngine{empty: true})
	err := s.Execute(context.Background(), stage.NewItem(keyboard.NewKey(0, "A-0")))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

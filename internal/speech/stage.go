package speech

import (
	"context"
	"log/slog"

	"pianoclips/internal/audio"
	"pianoclips/internal/fileutil"
	"pianoclips/internal/layout"
	"pianoclips/internal/logging"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// Stage speaks each key's name to <speech dir>/<index>.mp3.
type Stage struct {
	layout layout.Layout
	engine Engine
	writer audio.MP3Writer
	logger *slog.Logger
}

// NewStage constructs the speech stage.
func NewStage(l layout.Layout, engine Engine, writer audio.MP3Writer, logger *slog.Logger) *Stage {
	s := &Stage{layout: l, engine: engine, writer: writer}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the speech stage's logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "speech")
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return layout.Speech }

// Prepare removes previous renders for the key.
func (s *Stage) Prepare(_ context.Context, item *stage.Item) error {
	idx := item.Key.Index
	return stage.RemoveStale(layout.Speech,
		s.layout.Path(layout.Speech, idx, layout.ExtWAV),
		s.layout.Path(layout.Speech, idx, layout.ExtMP3),
	)
}

// Execute synthesizes and encodes the spoken label.
func (s *Stage) Execute(ctx context.Context, item *stage.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	idx := item.Key.Index
	wavPath := s.layout.Path(layout.Speech, idx, layout.ExtWAV)
	mp3Path := s.layout.Output(layout.Speech, idx)

	text := Speakable(item.Key.Name)
	logger.Debug("synthesizing speech",
		logging.String("engine", s.engine.Name()),
		logging.String("text", text),
	)
	if err := s.engine.Synthesize(ctx, text, wavPath); err != nil {
		return err
	}
	if !fileutil.NonEmpty(wavPath) {
		return services.Wrap(services.ErrExternalTool, layout.Speech, s.engine.Name(),
			"Engine produced no audio at "+wavPath, nil)
	}
	if err := s.writer.Convert(ctx, layout.Speech, wavPath, mp3Path); err != nil {
		return err
	}
	artifact, err := stage.Produced(layout.Speech, mp3Path)
	if err != nil {
		return err
	}
	item.Record(layout.Speech, artifact)
	return nil
}

// HealthCheck reports the engine's readiness.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return s.engine.HealthCheck(ctx)
}

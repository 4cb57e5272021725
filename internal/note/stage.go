package note

import (
	"context"
	"log/slog"
	"time"

	"pianoclips/internal/audio"
	"pianoclips/internal/layout"
	"pianoclips/internal/logging"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// Stage records each key's note to <note dir>/<index>.mp3.
type Stage struct {
	layout     layout.Layout
	instrument Instrument
	writer     audio.MP3Writer
	length     time.Duration
	logger     *slog.Logger
}

// NewStage constructs the note stage.
func NewStage(l layout.Layout, instrument Instrument, writer audio.MP3Writer, length time.Duration, logger *slog.Logger) *Stage {
	s := &Stage{layout: l, instrument: instrument, writer: writer, length: length}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the note stage's logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "note")
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return layout.Note }

// Prepare removes previous renders for the key.
func (s *Stage) Prepare(_ context.Context, item *stage.Item) error {
	idx := item.Key.Index
	return stage.RemoveStale(layout.Note,
		s.layout.Path(layout.Note, idx, layout.ExtWAV),
		s.layout.Path(layout.Note, idx, layout.ExtMP3),
	)
}

// Execute renders and encodes the note.
func (s *Stage) Execute(ctx context.Context, item *stage.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	idx := item.Key.Index
	wavPath := s.layout.Path(layout.Note, idx, layout.ExtWAV)
	mp3Path := s.layout.Output(layout.Note, idx)

	logger.Debug("rendering note",
		logging.String("instrument", s.instrument.Name()),
		logging.Int("midi", item.Key.MIDI()),
		logging.Float64("frequency_hz", item.Key.Frequency()),
	)
	format := audio.Format(s.writer.SampleRate)
	if err := s.instrument.Render(ctx, item.Key, wavPath, format, s.length); err != nil {
		return services.Wrap(services.ErrExternalTool, layout.Note, "render", "Instrument "+s.instrument.Name()+" failed", err)
	}
	if err := s.writer.Convert(ctx, layout.Note, wavPath, mp3Path); err != nil {
		return err
	}
	artifact, err := stage.Produced(layout.Note, mp3Path)
	if err != nil {
		return err
	}
	artifact.Duration = s.length
	item.Record(layout.Note, artifact)
	return nil
}

// HealthCheck reports the instrument's readiness.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	h := s.instrument.HealthCheck(ctx)
	h.Name = layout.Note
	return h
}

package audio

import (
	"context"
	"log/slog"
	"time"

	"pianoclips/internal/layout"
	"pianoclips/internal/logging"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// MergeStage concatenates a key's note recording, a silence gap and its
// spoken label, in that order, into one mp3.
type MergeStage struct {
	layout layout.Layout
	writer MP3Writer
	gap    time.Duration
	rate   int
	logger *slog.Logger
}

// NewMergeStage constructs the merge stage.
func NewMergeStage(l layout.Layout, writer MP3Writer, gap time.Duration, logger *slog.Logger) *MergeStage {
	m := &MergeStage{layout: l, writer: writer, gap: gap, rate: writer.SampleRate}
	m.SetLogger(logger)
	return m
}

// SetLogger updates the merge stage's logging destination.
func (m *MergeStage) SetLogger(logger *slog.Logger) {
	m.logger = logging.NewComponentLogger(logger, "merge")
}

// Name implements stage.Handler.
func (m *MergeStage) Name() string { return layout.Merge }

// Prepare removes any previous merged track for the key.
func (m *MergeStage) Prepare(_ context.Context, item *stage.Item) error {
	idx := item.Key.Index
	return stage.RemoveStale(layout.Merge,
		m.layout.Path(layout.Merge, idx, layout.ExtWAV),
		m.layout.Path(layout.Merge, idx, layout.ExtMP3),
	)
}

// Execute writes <merged>/<index>.mp3.
func (m *MergeStage) Execute(ctx context.Context, item *stage.Item) error {
	logger := logging.WithContext(ctx, m.logger)
	note, err := stage.RequireInput(layout.Merge, item, layout.Note)
	if err != nil {
		return err
	}
	speech, err := stage.RequireInput(layout.Merge, item, layout.Speech)
	if err != nil {
		return err
	}

	format := Format(m.rate)
	noteBuf, err := Load(note.Path, format)
	if err != nil {
		return services.Wrap(services.ErrValidation, layout.Merge, "decode note", "Note recording unreadable", err)
	}
	speechBuf, err := Load(speech.Path, format)
	if err != nil {
		return services.Wrap(services.ErrValidation, layout.Merge, "decode speech", "Speech recording unreadable", err)
	}
	merged := Concat(format, m.gap, noteBuf, speechBuf)
	logger.Debug("merged tracks",
		logging.Int("note_samples", noteBuf.Len()),
		logging.Int("speech_samples", speechBuf.Len()),
		logging.Int("merged_samples", merged.Len()),
		logging.Duration("gap", m.gap),
	)

	out := m.layout.Output(layout.Merge, item.Key.Index)
	if err := m.writer.Write(ctx, layout.Merge, merged.Streamer(0, merged.Len()), format, out); err != nil {
		return err
	}
	artifact, err := stage.Produced(layout.Merge, out)
	if err != nil {
		return err
	}
	artifact.Duration = Length(merged)
	item.Record(layout.Merge, artifact)
	return nil
}

// HealthCheck implements stage.Handler.
func (m *MergeStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(layout.Merge)
}

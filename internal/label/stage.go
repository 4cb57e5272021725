package label

import (
	"context"
	"io"
	"log/slog"

	"pianoclips/internal/fileutil"
	"pianoclips/internal/layout"
	"pianoclips/internal/logging"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// Stage writes <image dir>/<index>.png with the raw key name.
type Stage struct {
	layout   layout.Layout
	renderer *Renderer
	logger   *slog.Logger
}

// NewStage constructs the image stage.
func NewStage(l layout.Layout, renderer *Renderer, logger *slog.Logger) *Stage {
	s := &Stage{layout: l, renderer: renderer}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the image stage's logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "label")
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return layout.Image }

// Prepare removes any previous image for the key.
func (s *Stage) Prepare(_ context.Context, item *stage.Item) error {
	return stage.RemoveStale(layout.Image, s.layout.Output(layout.Image, item.Key.Index))
}

// Execute renders the label.
func (s *Stage) Execute(ctx context.Context, item *stage.Item) error {
	path := s.layout.Output(layout.Image, item.Key.Index)
	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		return s.renderer.Encode(w, item.Key.Name)
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, layout.Image, "render", "Could not write label image", err)
	}
	artifact, err := stage.Produced(layout.Image, path)
	if err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Debug("label rendered",
		logging.String(logging.FieldArtifact, path),
		logging.SizeBytes(artifact.Size),
	)
	item.Record(layout.Image, artifact)
	return nil
}

// HealthCheck implements stage.Handler.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(layout.Image)
}

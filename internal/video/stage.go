// Package video composes a key's label image and merged audio into a
// still-frame mp4 whose length matches the audio.
package video

import (
	"context"
	"log/slog"
	"time"

	"pianoclips/internal/config"
	"pianoclips/internal/layout"
	"pianoclips/internal/logging"
	"pianoclips/internal/media/ffmpeg"
	"pianoclips/internal/media/ffprobe"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// Muxer renders a still image over an audio track.
type Muxer interface {
	MuxStill(ctx context.Context, req ffmpeg.MuxRequest) error
}

// Prober inspects a media file.
type Prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Stage writes <video dir>/<index>.mp4.
type Stage struct {
	layout  layout.Layout
	muxer   Muxer
	probe   Prober
	ffprobe string
	ffmpeg  string
	video   config.Video
	logger  *slog.Logger
}

// NewStage constructs the video stage.
func NewStage(l layout.Layout, runner *ffmpeg.Runner, ffprobeBinary string, video config.Video, logger *slog.Logger) *Stage {
	s := &Stage{
		layout:  l,
		muxer:   runner,
		probe:   ffprobe.Inspect,
		ffprobe: ffprobeBinary,
		ffmpeg:  runner.Binary(),
		video:   video,
	}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the video stage's logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "video")
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return layout.Video }

// Prepare removes any previous clip for the key.
func (s *Stage) Prepare(_ context.Context, item *stage.Item) error {
	return stage.RemoveStale(layout.Video, s.layout.Output(layout.Video, item.Key.Index))
}

// Execute probes the merged audio, muxes the clip and verifies its streams.
func (s *Stage) Execute(ctx context.Context, item *stage.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	image, err := stage.RequireInput(layout.Video, item, layout.Image)
	if err != nil {
		return err
	}
	merged, err := stage.RequireInput(layout.Video, item, layout.Merge)
	if err != nil {
		return err
	}

	duration, err := s.audioDuration(ctx, merged.Path)
	if err != nil {
		return err
	}

	out := s.layout.Output(layout.Video, item.Key.Index)
	req := ffmpeg.MuxRequest{
		Image:       image.Path,
		Audio:       merged.Path,
		Output:      out,
		FPS:         s.video.FPS,
		Duration:    duration,
		AudioCodec:  s.video.AudioCodec,
		VideoCodec:  s.video.VideoCodec,
		PixelFormat: s.video.PixelFormat,
	}
	if err := s.muxer.MuxStill(ctx, req); err != nil {
		return services.Wrap(services.ErrExternalTool, layout.Video, "mux", "ffmpeg could not build the clip", err)
	}

	result, err := s.probe(ctx, s.ffprobe, out)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, layout.Video, "verify", "ffprobe could not read the clip", err)
	}
	if err := result.ExpectStreams(1, 1); err != nil {
		return services.Wrap(services.ErrValidation, layout.Video, "verify", "Clip has unexpected streams", err)
	}

	artifact, err := stage.Produced(layout.Video, out)
	if err != nil {
		return err
	}
	artifact.Duration = duration
	logger.Debug("clip muxed",
		logging.String(logging.FieldArtifact, out),
		logging.Duration("duration", duration),
		logging.Int("fps", s.video.FPS),
		logging.Int64("container_bytes", result.SizeBytes()),
		logging.Int64("bit_rate", result.BitRate()),
	)
	item.Record(layout.Video, artifact)
	return nil
}

func (s *Stage) audioDuration(ctx context.Context, path string) (time.Duration, error) {
	result, err := s.probe(ctx, s.ffprobe, path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, layout.Video, "probe audio", "ffprobe could not read merged audio", err)
	}
	duration, err := result.Duration()
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, layout.Video, "probe audio", "Merged audio has no duration", err)
	}
	return duration, nil
}

// HealthCheck verifies ffmpeg and ffprobe are installed.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	return stage.BinaryHealth(layout.Video, s.ffmpeg, s.ffprobe)
}

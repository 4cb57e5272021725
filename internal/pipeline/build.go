package pipeline

import (
	"log/slog"

	"pianoclips/internal/audio"
	"pianoclips/internal/config"
	"pianoclips/internal/keyboard"
	"pianoclips/internal/label"
	"pianoclips/internal/layout"
	"pianoclips/internal/media/ffmpeg"
	"pianoclips/internal/note"
	"pianoclips/internal/services"
	"pianoclips/internal/speech"
	"pianoclips/internal/stage"
	"pianoclips/internal/video"
)

// Build constructs the stage handlers in execution order.
func Build(cfg *config.Config, logger *slog.Logger) ([]stage.Handler, error) {
	l := layout.New(cfg.Paths)
	runner := ffmpeg.New(cfg.Tools.FFmpeg, logger)
	writer := audio.MP3Writer{Encoder: runner, Bitrate: cfg.Audio.Bitrate, SampleRate: cfg.Audio.SampleRate}

	instrument, err := note.NewInstrument(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, layout.Note, "build", "", err)
	}
	engine, err := speech.NewEngine(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, layout.Speech, "build", "", err)
	}
	opts, err := label.OptionsFromConfig(cfg.Image)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, layout.Image, "build", "", err)
	}
	renderer, err := label.NewRenderer(opts)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, layout.Image, "load font", "", err)
	}

	return []stage.Handler{
		note.NewStage(l, instrument, writer, cfg.RecordDuration(), logger),
		speech.NewStage(l, engine, writer, logger),
		audio.NewMergeStage(l, writer, cfg.Gap(), logger),
		label.NewStage(l, renderer, logger),
		video.NewStage(l, runner, cfg.Tools.FFprobe, cfg.Video, logger),
	}, nil
}

// KeyboardFor returns the configured slice of the standard 88-key keyboard.
func KeyboardFor(cfg *config.Config) (keyboard.Keyboard, error) {
	kb, err := keyboard.Standard().Slice(cfg.Keyboard.FirstKey, cfg.Keyboard.LastKey)
	if err != nil {
		return keyboard.Keyboard{}, services.Wrap(services.ErrConfiguration, "pipeline", "keyboard", "", err)
	}
	return kb, nil
}

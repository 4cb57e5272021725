package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"pianoclips/internal/logging"
)

// CommandRunner executes name with args, returning an error that includes
// the command's stderr on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Runner invokes ffmpeg.
type Runner struct {
	binary string
	logger *slog.Logger
	run    CommandRunner
}

// New constructs a Runner for the given ffmpeg binary.
func New(binary string, logger *slog.Logger) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "ffmpeg"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (r *Runner) WithCommandRunner(run CommandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// Binary returns the configured ffmpeg executable.
func (r *Runner) Binary() string {
	return r.binary
}

// EncodeRequest describes a WAV to mp3 conversion.
type EncodeRequest struct {
	Input      string
	Output     string
	Bitrate    string
	SampleRate int
}

// EncodeArgs builds the ffmpeg argument list for an mp3 encode.
func EncodeArgs(req EncodeRequest) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", req.Input, "-vn", "-codec:a", "libmp3lame"}
	if req.Bitrate != "" {
		args = append(args, "-b:a", req.Bitrate)
	}
	if req.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(req.SampleRate))
	}
	return append(args, req.Output)
}

// EncodeMP3 converts req.Input to an mp3 at req.Output.
func (r *Runner) EncodeMP3(ctx context.Context, req EncodeRequest) error {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return errors.New("ffmpeg encode: input and output are required")
	}
	args := EncodeArgs(req)
	r.logger.Debug("encoding mp3",
		logging.String("input", req.Input),
		logging.String("output", req.Output),
		logging.String("bitrate", req.Bitrate),
	)
	if err := r.run(ctx, r.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg encode %s: %w", req.Output, err)
	}
	return nil
}

// MuxRequest describes a still-image clip.
type MuxRequest struct {
	Image       string
	Audio       string
	Output      string
	FPS         int
	Duration    time.Duration
	AudioCodec  string
	VideoCodec  string
	PixelFormat string
}

// MuxArgs builds the ffmpeg argument list for a still-image clip. The image is
// looped at FPS and the output is cut to Duration so the clip ends with the
// audio.
func MuxArgs(req MuxRequest) []string {
	fps := strconv.Itoa(max(req.FPS, 1))
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-loop", "1", "-framerate", fps, "-i", req.Image,
		"-i", req.Audio,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", req.VideoCodec,
	}
	if req.VideoCodec == "libx264" {
		args = append(args, "-tune", "stillimage")
	}
	if req.PixelFormat != "" {
		args = append(args, "-pix_fmt", req.PixelFormat)
	}
	args = append(args,
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-r", fps,
		"-c:a", req.AudioCodec,
		"-t", formatSeconds(req.Duration),
		"-movflags", "+faststart",
		req.Output,
	)
	return args
}

// MuxStill renders req.Image over req.Audio into req.Output.
func (r *Runner) MuxStill(ctx context.Context, req MuxRequest) error {
	if strings.TrimSpace(req.Image) == "" || strings.TrimSpace(req.Audio) == "" || strings.TrimSpace(req.Output) == "" {
		return errors.New("ffmpeg mux: image, audio and output are required")
	}
	if req.Duration <= 0 {
		return fmt.Errorf("ffmpeg mux: duration must be positive, got %s", req.Duration)
	}
	if req.AudioCodec == "" || req.VideoCodec == "" {
		return errors.New("ffmpeg mux: audio and video codecs are required")
	}
	r.logger.Debug("muxing still clip",
		logging.String("image", req.Image),
		logging.String("audio", req.Audio),
		logging.String("output", req.Output),
		logging.Duration("duration", req.Duration),
	)
	if err := r.run(ctx, r.binary, MuxArgs(req)...); err != nil {
		return fmt.Errorf("ffmpeg mux %s: %w", req.Output, err)
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

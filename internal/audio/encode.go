package audio

import (
	"context"
	"strings"

	"github.com/gopxl/beep"

	"pianoclips/internal/fileutil"
	"pianoclips/internal/media/ffmpeg"
	"pianoclips/internal/services"
)

// Encoder converts a WAV render into an mp3.
type Encoder interface {
	EncodeMP3(ctx context.Context, req ffmpeg.EncodeRequest) error
}

// MP3Writer turns WAV renders into mp3 artifacts with a fixed bitrate.
type MP3Writer struct {
	Encoder    Encoder
	Bitrate    string
	SampleRate int
}

// Convert encodes wavPath to mp3Path and removes wavPath once the mp3 exists.
func (w MP3Writer) Convert(ctx context.Context, stageName, wavPath, mp3Path string) error {
	req := ffmpeg.EncodeRequest{Input: wavPath, Output: mp3Path, Bitrate: w.Bitrate, SampleRate: w.SampleRate}
	if err := w.Encoder.EncodeMP3(ctx, req); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "encode mp3", "ffmpeg could not encode the render", err)
	}
	if !fileutil.NonEmpty(mp3Path) {
		return services.Wrap(services.ErrExternalTool, stageName, "encode mp3", "ffmpeg produced no output at "+mp3Path, nil)
	}
	if _, err := fileutil.RemoveIfExists(wavPath); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "remove wav", "Could not remove intermediate render", err)
	}
	return nil
}

// Write renders s to a WAV sibling of mp3Path and converts it.
func (w MP3Writer) Write(ctx context.Context, stageName string, s beep.Streamer, format beep.Format, mp3Path string) error {
	wavPath := strings.TrimSuffix(mp3Path, ".mp3") + ".wav"
	if err := WriteWAV(wavPath, s, format); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "write wav", "Could not write render", err)
	}
	return w.Convert(ctx, stageName, wavPath, mp3Path)
}

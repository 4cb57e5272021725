package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// resampleQuality trades CPU for fidelity; 4 is beep's recommended default.
const resampleQuality = 4

// Format returns the stereo 16-bit PCM format used for every render.
func Format(sampleRate int) beep.Format {
	return beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 2}
}

// Decode reads an encoded track, choosing the wav decoder for RIFF data and
// the mp3 decoder otherwise.
func Decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if isRIFF(data) {
		return wav.Decode(bytes.NewReader(data))
	}
	return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
}

func isRIFF(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// Load decodes path fully into a buffer at format's sample rate.
func Load(path string, format beep.Format) (*beep.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	stream, source, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if source.SampleRate != format.SampleRate {
		s = beep.Resample(resampleQuality, source.SampleRate, format.SampleRate, stream)
	}
	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, nil
}

// Concat joins buffers in order with gap of silence between consecutive parts.
func Concat(format beep.Format, gap time.Duration, parts ...*beep.Buffer) *beep.Buffer {
	gapSamples := format.SampleRate.N(gap)
	streams := make([]beep.Streamer, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 && gapSamples > 0 {
			streams = append(streams, beep.Silence(gapSamples))
		}
		streams = append(streams, part.Streamer(0, part.Len()))
	}
	out := beep.NewBuffer(format)
	out.Append(beep.Seq(streams...))
	return out
}

// Fit truncates buf or pads it with trailing silence to exactly d.
func Fit(buf *beep.Buffer, d time.Duration) *beep.Buffer {
	format := buf.Format()
	n := format.SampleRate.N(d)
	out := beep.NewBuffer(format)
	out.Append(beep.Take(n, beep.Seq(buf.Streamer(0, buf.Len()), beep.Silence(-1))))
	return out
}

// Length returns the playing time of buf.
func Length(buf *beep.Buffer) time.Duration {
	return buf.Format().SampleRate.D(buf.Len())
}

// WriteWAV encodes s to path as a PCM WAV file.
func WriteWAV(path string, s beep.Streamer, format beep.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := wav.Encode(f, s, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode wav %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

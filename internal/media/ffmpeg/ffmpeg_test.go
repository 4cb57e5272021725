package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"pianoclips/internal/logging"
)

type capture struct {
	name string
	args []string
	err  error
}

func (c *capture) run(_ context.Context, name string, args ...string) error {
	c.name = name
	c.args = append([]string(nil), args...)
	return c.err
}

func TestEncodeMP3Args(t *testing.T) {
	runner := New("", logging.NewNop())
	var c capture
	runner.WithCommandRunner(c.run)

	req := EncodeRequest{Input: "/r/0.wav", Output: "/r/0.mp3", Bitrate: "192k", SampleRate: 44100}
	if err := runner.EncodeMP3(context.Background(), req); err != nil {
		t.Fatalf("EncodeMP3: %v", err)
	}
	if c.name != "ffmpeg" {
		t.Fatalf("expected default binary, got %q", c.name)
	}
	joined := strings.Join(c.args, " ")
	for _, want := range []string{"-i /r/0.wav", "-codec:a libmp3lame", "-b:a 192k", "-ar 44100"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %q", want, joined)
		}
	}
	if c.args[len(c.args)-1] != "/r/0.mp3" {
		t.Fatalf("output must be last argument, got %v", c.args)
	}
}

func TestEncodeMP3WrapsRunnerError(t *testing.T) {
	runner := New("ffmpeg", logging.NewNop())
	boom := errors.New("exit status 1")
	runner.WithCommandRunner((&capture{err: boom}).run)
	err := runner.EncodeMP3(context.Background(), EncodeRequest{Input: "a.wav", Output: "a.mp3"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped runner error, got %v", err)
	}
	if err := runner.EncodeMP3(context.Background(), EncodeRequest{Input: "a.wav"}); err == nil {
		t.Fatal("expected error for missing output")
	}
}

func TestMuxArgs(t *testing.T) {
	args := MuxArgs(MuxRequest{
		Image:       "img.png",
		Audio:       "full.mp3",
		Output:      "out.mp4",
		FPS:         1,
		Duration:    3250 * time.Millisecond,
		AudioCodec:  "aac",
		VideoCodec:  "libx264",
		PixelFormat: "yuv420p",
	})
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-loop 1 -framerate 1 -i img.png",
		"-i full.mp3",
		"-c:v libx264 -tune stillimage",
		"-pix_fmt yuv420p",
		"-c:a aac",
		"-t 3.250",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %q", want, joined)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Fatalf("output must be last argument, got %v", args)
	}

	other := MuxArgs(MuxRequest{VideoCodec: "mpeg4", AudioCodec: "mp3", Duration: time.Second})
	if slices.Contains(other, "-tune") {
		t.Fatal("stillimage tune only applies to libx264")
	}
}

func TestMuxStillValidates(t *testing.T) {
	runner := New("ffmpeg", logging.NewNop())
	runner.WithCommandRunner((&capture{}).run)
	base := MuxRequest{Image: "i.png", Audio: "a.mp3", Output: "o.mp4", AudioCodec: "aac", VideoCodec: "libx264", Duration: time.Second}

	if err := runner.MuxStill(context.Background(), base); err != nil {
		t.Fatalf("MuxStill: %v", err)
	}
	zero := base
	zero.Duration = 0
	if err := runner.MuxStill(context.Background(), zero); err == nil {
		t.Fatal("expected error for zero duration")
	}
	noCodec := base
	noCodec.AudioCodec = ""
	if err := runner.MuxStill(context.Background(), noCodec); err == nil {
		t.Fatal("expected error for missing codec")
	}
}

func TestDefaultCommandRunnerIncludesStderr(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'Unknown encoder' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	runner := New(stub, logging.NewNop())
	err := runner.EncodeMP3(context.Background(), EncodeRequest{Input: "a.wav", Output: "a.mp3"})
	if err == nil || !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

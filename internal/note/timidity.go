package note

import (
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"pianoclips/internal/audio"
	"pianoclips/internal/fileutil"
	"pianoclips/internal/keyboard"
	"pianoclips/internal/stage"
)

const (
	midiResolution = smf.MetricTicks(480)
	midiTempo      = 120.0
)

// commandRunner runs an external command; tests replace it.
type commandRunner func(ctx context.Context, name string, args ...string) error

// Timidity renders a one-note MIDI file through the timidity binary.
type Timidity struct {
	binary   string
	program  uint8
	velocity uint8
	run      commandRunner
}

// NewTimidity constructs a timidity-backed instrument.
func NewTimidity(binary string, program, velocity int) *Timidity {
	return &Timidity{
		binary:   strings.TrimSpace(binary),
		program:  uint8(program),
		velocity: uint8(velocity),
		run:      defaultCommandRunner,
	}
}

// Name implements Instrument.
func (t *Timidity) Name() string { return "timidity" }

// WriteMIDI writes a single-track file holding key held for length.
func WriteMIDI(path string, key keyboard.Key, program, velocity uint8, length time.Duration) error {
	hold := uint32(math.Round(length.Seconds() * midiTempo / 60 * float64(midiResolution)))
	pitch := uint8(key.MIDI())

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(key.Name))
	track.Add(0, smf.MetaTempo(midiTempo))
	track.Add(0, midi.ProgramChange(0, program))
	track.Add(0, midi.NoteOn(0, pitch, velocity))
	track.Add(hold, midi.NoteOff(0, pitch))
	track.Close(0)

	file := smf.New()
	file.TimeFormat = midiResolution
	if err := file.Add(track); err != nil {
		return fmt.Errorf("build midi: %w", err)
	}
	if err := file.WriteFile(path); err != nil {
		return fmt.Errorf("write midi %s: %w", path, err)
	}
	return nil
}

// Render writes a MIDI file next to wavPath, renders it with timidity and
// fits the render to exactly length.
func (t *Timidity) Render(ctx context.Context, key keyboard.Key, wavPath string, format beep.Format, length time.Duration) error {
	midPath := strings.TrimSuffix(wavPath, ".wav") + ".mid"
	defer func() { _, _ = fileutil.RemoveIfExists(midPath) }()

	if err := WriteMIDI(midPath, key, t.program, t.velocity, length); err != nil {
		return err
	}
	args := []string{"-Ow", "-s", strconv.Itoa(int(format.SampleRate)), "-o", wavPath, midPath}
	if err := t.run(ctx, t.binary, args...); err != nil {
		return fmt.Errorf("timidity render: %w", err)
	}

	rendered, err := audio.Load(wavPath, format)
	if err != nil {
		return fmt.Errorf("timidity output: %w", err)
	}
	fitted := audio.Fit(rendered, length)
	return audio.WriteWAV(wavPath, fitted.Streamer(0, fitted.Len()), format)
}

// HealthCheck implements Instrument.
func (t *Timidity) HealthCheck(context.Context) stage.Health {
	return stage.BinaryHealth("timidity", t.binary)
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

package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pianoclips/internal/config"
	"pianoclips/internal/keyboard"
	"pianoclips/internal/services"
)

func TestSpeakable(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"C#4", "C Sharp 4"},
		{"Bb3", "B Flat 3"},
		{"A-5", "A5"},
		{"D/E4", "D E4"},
		{"A#-0/Bb-0", "A Sharp 0 B Flat 0"},
		{"C-4", "C4"},
		{"C##", "C Sharp  Sharp "},
		// The flat substitution is case-sensitive and not limited to accidentals.
		{"abc", "a Flat c"},
		{"B", "B"},
	}
	for _, tc := range tests {
		if got := Speakable(tc.in); got != tc.want {
			t.Errorf("Speakable(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSpeakableCoversKeyboard(t *testing.T) {
	for _, key := range keyboard.Standard().Keys() {
		text := Speakable(key.Name)
		if strings.ContainsAny(text, "#-/") {
			t.Fatalf("key %s left notation in %q", key.Name, text)
		}
		if text != Speakable(key.Name) {
			t.Fatalf("Speakable not deterministic for %s", key.Name)
		}
	}
}

type recorded struct {
	name  string
	args  []string
	stdin string
}

func fakeRunner(out []byte, err error, calls *[]recorded) commandRunner {
	return func(_ context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
		rec := recorded{name: name, args: append([]string(nil), args...)}
		if stdin != nil {
			data, _ := io.ReadAll(stdin)
			rec.stdin = string(data)
		}
		*calls = append(*calls, rec)
		return out, err
	}
}

const espeakVoices = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  en              --/M      English            gmw/en               (en-gb 2)
 2  en-gb-scotland  --/M      English_(Scotland) gmw/en-GB-scotland
 5  en-us           --/F      English_(America)  gmw/en-US            (en 3)
`

func TestParseEspeakVoices(t *testing.T) {
	voices := parseEspeakVoices([]byte(espeakVoices))
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(voices))
	}
	if voices[1].ID != "en-gb-scotland" || voices[1].Name != "English (Scotland)" || voices[1].Gender != "M" {
		t.Fatalf("unexpected voice %+v", voices[1])
	}
	if voices[2].Gender != "F" {
		t.Fatalf("unexpected gender %+v", voices[2])
	}
}

func TestEspeakSelectsVoiceByIndex(t *testing.T) {
	cfg := config.Default().Speech
	cfg.VoiceIndex = 2
	engine := NewEspeak("espeak-ng", cfg)
	var calls []recorded
	engine.run = fakeRunner([]byte(espeakVoices), nil, &calls)

	wav := filepath.Join(t.TempDir(), "0.wav")
	if err := engine.Synthesize(context.Background(), "A0", wav); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if err := engine.Synthesize(context.Background(), "B0", wav); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("expected one listing and two renders, got %d calls", len(calls))
	}
	if calls[0].args[0] != "--voices=en" {
		t.Fatalf("unexpected listing args %v", calls[0].args)
	}
	render := strings.Join(calls[1].args, " ")
	for _, want := range []string{"-v en-us", "-s 150", "-a 100", "-w " + wav, "-- A0"} {
		if !strings.Contains(render, want) {
			t.Fatalf("expected %q in %q", want, render)
		}
	}
}

func TestEspeakExplicitVoiceSkipsListing(t *testing.T) {
	cfg := config.Default().Speech
	cfg.Voice = "en-gb"
	cfg.Volume = 0.5
	engine := NewEspeak("espeak-ng", cfg)
	var calls []recorded
	engine.run = fakeRunner(nil, nil, &calls)

	if err := engine.Synthesize(context.Background(), "C4", "out.wav"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(calls) != 1 || calls[0].args[1] != "en-gb" {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if !strings.Contains(strings.Join(calls[0].args, " "), "-a 50") {
		t.Fatalf("expected amplitude 50 in %v", calls[0].args)
	}
}

func TestEspeakVoiceIndexOutOfRange(t *testing.T) {
	cfg := config.Default().Speech
	cfg.VoiceIndex = 9
	engine := NewEspeak("espeak-ng", cfg)
	var calls []recorded
	engine.run = fakeRunner([]byte(espeakVoices), nil, &calls)
	err := engine.Synthesize(context.Background(), "A0", "out.wav")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEspeakFailureIsExternalTool(t *testing.T) {
	cfg := config.Default().Speech
	cfg.Voice = "en"
	engine := NewEspeak("espeak-ng", cfg)
	var calls []recorded
	engine.run = fakeRunner(nil, errors.New("exit status 1"), &calls)
	if err := engine.Synthesize(context.Background(), "A0", "out.wav"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestPiperPipesText(t *testing.T) {
	cfg := config.Default().Speech
	cfg.Model = "/voices/en_US-lessac-medium.onnx"
	cfg.Rate = 300
	engine := NewPiper("piper", cfg)
	var calls []recorded
	engine.run = fakeRunner(nil, nil, &calls)

	if err := engine.Synthesize(context.Background(), "C Sharp 4", "/tmp/4.wav"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if calls[0].stdin != "C Sharp 4\n" {
		t.Fatalf("unexpected stdin %q", calls[0].stdin)
	}
	joined := strings.Join(calls[0].args, " ")
	for _, want := range []string{"--model /voices/en_US-lessac-medium.onnx", "--output_file /tmp/4.wav", "--length_scale 0.500"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %q", want, joined)
		}
	}
	voices, _ := engine.Voices(context.Background())
	if len(voices) != 1 || voices[0].Name != "en_US-lessac-medium" || voices[0].Language != "en_US" {
		t.Fatalf("unexpected piper voices %+v", voices)
	}
}

func TestOpenAISynthesize(t *testing.T) {
	var got struct {
		Model          string  `json:"model"`
		Input          string  `json:"input"`
		Voice          string  `json:"voice"`
		ResponseFormat string  `json:"response_format"`
		Speed          float64 `json:"speed"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF....WAVEfake"))
	}))
	defer srv.Close()

	cfg := config.Default().Speech
	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL + "/v1"
	cfg.Model = "tts-1"
	cfg.Voice = "nova"
	engine := NewOpenAI(cfg)

	wav := filepath.Join(t.TempDir(), "0.wav")
	if err := engine.Synthesize(context.Background(), "A0", wav); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	data, err := os.ReadFile(wav)
	if err != nil || string(data) != "RIFF....WAVEfake" {
		t.Fatalf("unexpected render %q err=%v", data, err)
	}
	if got.Model != "tts-1" || got.Input != "A0" || got.Voice != "nova" || got.ResponseFormat != "wav" || got.Speed != 1 {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestOpenAIErrorIsExternalTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	cfg := config.Default().Speech
	cfg.APIKey = "bad"
	cfg.BaseURL = srv.URL + "/v1"
	cfg.Model = "tts-1"
	cfg.Voice = "alloy"
	err := NewOpenAI(cfg).Synthesize(context.Background(), "A0", filepath.Join(t.TempDir(), "0.wav"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNewEngine(t *testing.T) {
	cfg := config.Default()
	for _, name := range []string{"espeak", "piper", "openai"} {
		cfg.Speech.Engine = name
		engine, err := NewEngine(&cfg)
		if err != nil || engine.Name() != name {
			t.Fatalf("NewEngine(%s) = %v, %v", name, engine, err)
		}
	}
	cfg.Speech.Engine = "sapi"
	if _, err := NewEngine(&cfg); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pianoclips/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	binDir  string
	cfg     *config.Config
}

// NewConfig produces a config whose results root lives in a per-test temp
// directory. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "results", "pianoclips.db")
	cfgVal.Keyboard.FirstKey = 0
	cfgVal.Keyboard.LastKey = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithKeyRange restricts generation to keys first..last.
func WithKeyRange(first, last int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Keyboard.FirstKey = first
		b.cfg.Keyboard.LastKey = last
	}
}

// WithWorkers sets the key-level worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Workers = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed. The stubs exit 0 without producing output.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "espeak-ng"}
		}
		for _, name := range names {
			b.writeStub(name, "exit 0\n")
		}
	}
}

// WithStubScript installs a shell stub named name on PATH whose body is
// script. The shebang is added.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		b.writeStub(name, script)
	}
}

func (b *configBuilder) writeStub(name, script string) {
	b.t.Helper()
	if b.binDir == "" {
		b.binDir = filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(b.binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		b.t.Setenv("PATH", b.binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	target := filepath.Join(b.binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ResultsDir)
}

// Package logging assembles structured slog loggers and formatting helpers used
// across the pianoclips pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with run IDs, key indexes, and stage names. Loggers are always
// injected; the package also provides a no-op logger and an in-memory
// Recorder for tests and wiring code that cannot fail.
package logging

package logging

import (
	"context"
	"log/slog"

	"pianoclips/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldKeyIndex is the standardized structured logging key for keyboard key indexes.
	FieldKeyIndex = "key_index"
	// FieldKeyName is the standardized structured logging key for full note names.
	FieldKeyName = "key_name"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for generation run identifiers.
	FieldRunID = "run_id"
	// FieldEventType classifies lifecycle records (stage_start, stage_complete, ...).
	FieldEventType = "event_type"
	// FieldArtifact is the path of the file a stage produced.
	FieldArtifact = "artifact"
	// FieldSizeBytes is the size of a produced artifact.
	FieldSizeBytes = "size_bytes"
	// FieldElapsed is the wall time a stage or run took.
	FieldElapsed = "elapsed"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	if idx, ok := services.KeyIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldKeyIndex, idx))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}

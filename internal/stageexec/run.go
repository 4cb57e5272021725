// Package stageexec runs a single stage for a single key with the shared
// lifecycle logging and ledger bookkeeping.
package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pianoclips/internal/layout"
	"pianoclips/internal/ledger"
	"pianoclips/internal/logging"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
)

// ArtifactRecorder persists produced artifacts. *ledger.Store satisfies it.
type ArtifactRecorder interface {
	RecordArtifact(context.Context, ledger.Artifact) error
}

// Options controls stage execution.
type Options struct {
	Logger   *slog.Logger
	Recorder ArtifactRecorder
	Handler  stage.Handler
	Item     *stage.Item
	RunID    string
}

// Label returns the human readable progress label of a stage.
func Label(stageName string) string {
	switch stageName {
	case layout.Note:
		return "piano key sound"
	case layout.Speech:
		return "piano key speech"
	case layout.Merge:
		return "merged audio"
	case layout.Image:
		return "piano key image"
	case layout.Video:
		return "video"
	default:
		return strings.ReplaceAll(stageName, "_", " ")
	}
}

// Run prepares and executes the handler for the item's key. Handlers are
// shared between keys, so per-key logging flows through the context.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return errors.New("stage handler unavailable")
	}
	if opts.Item == nil {
		return errors.New("stage item is required")
	}
	name := opts.Handler.Name()
	key := opts.Item.Key

	stageCtx := services.WithStage(services.WithKeyIndex(ctx, key.Index), name)
	stageLogger := logging.WithContext(stageCtx, opts.Logger).With(logging.String(logging.FieldKeyName, key.Name))

	if err := stageCtx.Err(); err != nil {
		return err
	}

	label := Label(name)
	started := time.Now()
	stageLogger.Info(
		fmt.Sprintf("Generating %s for: %s", label, key.Name),
		logging.String(logging.FieldEventType, "stage_start"),
	)

	if err := opts.Handler.Prepare(stageCtx, opts.Item); err != nil {
		return handleFailure(stageLogger, label, err)
	}
	if err := opts.Handler.Execute(stageCtx, opts.Item); err != nil {
		return handleFailure(stageLogger, label, err)
	}

	artifact, _ := opts.Item.Artifact(name)
	stageLogger.Info(
		fmt.Sprintf("DONE Generating %s for: %s", label, key.Name),
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String(logging.FieldArtifact, artifact.Path),
		logging.SizeBytes(artifact.Size),
		logging.Elapsed(time.Since(started)),
	)

	if opts.Recorder != nil && artifact.Path != "" {
		record := ledger.Artifact{
			RunID:     opts.RunID,
			KeyIndex:  key.Index,
			KeyName:   key.Name,
			Stage:     name,
			Path:      artifact.Path,
			SizeBytes: artifact.Size,
			Duration:  artifact.Duration,
		}
		if err := opts.Recorder.RecordArtifact(stageCtx, record); err != nil {
			stageLogger.Warn("failed to record artifact", logging.Error(err))
		}
	}
	return nil
}

func handleFailure(logger *slog.Logger, label string, stageErr error) error {
	logger.Error(
		"Failed generating "+label,
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", services.Kind(stageErr)),
		logging.Error(stageErr),
	)
	return stageErr
}

package stage

import (
	"context"
	"log/slog"
)

// Handler describes the contract the pipeline runner needs from each stage.
// Prepare clears stale outputs for the item's key; Execute produces the
// stage's artifact and records it on the item.
type Handler interface {
	Name() string
	Prepare(context.Context, *Item) error
	Execute(context.Context, *Item) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by handlers that accept a per-run logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

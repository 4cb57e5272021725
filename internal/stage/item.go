package stage

import (
	"time"

	"pianoclips/internal/keyboard"
)

// Artifact is a file produced by a stage.
type Artifact struct {
	Path     string
	Size     int64
	Duration time.Duration
}

// Item carries one key through the stages and collects their outputs.
type Item struct {
	Key       keyboard.Key
	artifacts map[string]Artifact
}

// NewItem starts an item for key.
func NewItem(key keyboard.Key) *Item {
	return &Item{Key: key, artifacts: make(map[string]Artifact, 5)}
}

// Record stores the artifact produced by stage.
func (i *Item) Record(stage string, artifact Artifact) {
	i.artifacts[stage] = artifact
}

// Artifact returns the artifact recorded by stage.
func (i *Item) Artifact(stage string) (Artifact, bool) {
	a, ok := i.artifacts[stage]
	return a, ok
}

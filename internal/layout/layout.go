// Package layout maps (stage, key index) pairs to artifact paths under the
// results root. Every path is deterministic: <root>/<stage dir>/<index>.<ext>.
package layout

import (
	"fmt"
	"path/filepath"
	"strconv"

	"pianoclips/internal/config"
)

// Stage names, in pipeline order.
const (
	Note   = "note"
	Speech = "speech"
	Merge  = "merge"
	Image  = "image"
	Video  = "video"
)

// Stages lists the stage names in execution order.
var Stages = []string{Note, Speech, Merge, Image, Video}

// File extensions of final and intermediate artifacts.
const (
	ExtWAV = ".wav"
	ExtMP3 = ".mp3"
	ExtPNG = ".png"
	ExtMP4 = ".mp4"
)

// Layout resolves artifact paths.
type Layout struct {
	root string
	dirs map[string]string
}

// New builds a layout from the configured results root and stage directories.
func New(paths config.Paths) Layout {
	return Layout{
		root: paths.ResultsDir,
		dirs: map[string]string{
			Note:   paths.NoteDir,
			Speech: paths.SpeechDir,
			Merge:  paths.MergedDir,
			Image:  paths.ImageDir,
			Video:  paths.VideoDir,
		},
	}
}

// Root returns the results root.
func (l Layout) Root() string {
	return l.root
}

// Dir returns the directory holding a stage's artifacts.
func (l Layout) Dir(stage string) string {
	dir, ok := l.dirs[stage]
	if !ok {
		panic(fmt.Sprintf("layout: unknown stage %q", stage))
	}
	return filepath.Join(l.root, dir)
}

// Path returns <root>/<stage dir>/<index><ext>.
func (l Layout) Path(stage string, index int, ext string) string {
	return filepath.Join(l.Dir(stage), strconv.Itoa(index)+ext)
}

// Output returns the final artifact path of a stage.
func (l Layout) Output(stage string, index int) string {
	return l.Path(stage, index, OutputExt(stage))
}

// OutputExt returns the extension of a stage's final artifact.
func OutputExt(stage string) string {
	switch stage {
	case Image:
		return ExtPNG
	case Video:
		return ExtMP4
	default:
		return ExtMP3
	}
}

// LockPath is the advisory lock guarding the results root.
func (l Layout) LockPath() string {
	return filepath.Join(l.root, ".pianoclips.lock")
}

package stage

import (
	"fmt"

	"pianoclips/internal/fileutil"
	"pianoclips/internal/services"
)

// RemoveStale deletes any previous outputs at paths so a stage always
// regenerates its artifact. Missing files are ignored.
func RemoveStale(stageName string, paths ...string) error {
	if err := fileutil.RemoveAll(paths...); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "remove stale output",
			"Could not clear previous artifact", err)
	}
	return nil
}

// RequireInput returns the artifact an earlier stage recorded on item, or a
// not-found error when it is missing or empty on disk.
func RequireInput(stageName string, item *Item, from string) (Artifact, error) {
	artifact, ok := item.Artifact(from)
	if !ok {
		return Artifact{}, services.Wrap(services.ErrNotFound, stageName, "resolve input",
			fmt.Sprintf("No %s artifact recorded for key %d", from, item.Key.Index), nil)
	}
	if !fileutil.NonEmpty(artifact.Path) {
		return Artifact{}, services.Wrap(services.ErrNotFound, stageName, "resolve input",
			fmt.Sprintf("%s artifact %s is missing or empty", from, artifact.Path), nil)
	}
	return artifact, nil
}

// Produced builds an Artifact for a file that was just written, failing when
// the file is missing or empty.
func Produced(stageName, path string) (Artifact, error) {
	size := fileutil.FileSize(path)
	if size <= 0 {
		return Artifact{}, services.Wrap(services.ErrValidation, stageName, "verify output",
			fmt.Sprintf("Expected output %s was not written", path), nil)
	}
	return Artifact{Path: path, Size: size}, nil
}

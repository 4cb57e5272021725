package preflight

import (
	"context"
	"fmt"
	"strings"

	"pianoclips/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config. The
// results directory must already exist; callers run EnsureDirectories first.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Results directory", cfg.Paths.ResultsDir))
	results = append(results, CheckFreeSpace("Free space", cfg.Paths.ResultsDir, minFreeBytes))

	for _, status := range CheckSystemDeps(cfg) {
		if status.Optional && !status.Available {
			continue
		}
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}

	if cfg.Speech.Engine == "openai" {
		results = append(results, CheckOpenAI(ctx, cfg.Speech))
	}

	return results
}

// Failed returns an error describing every failed result, or nil.
func Failed(results []Result) error {
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(failures, "; "))
}

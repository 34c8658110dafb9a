package preflight

import (
	"context"

	"github.com/andigenesis/brainrot-generator/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	results = append(results, CheckDirectoryAccess("Background pool", cfg.BackgroundPoolDir()))

	if cfg.Transform.Enabled || cfg.Overlays.Enabled {
		results = append(results, CheckOllamaFromConfig(ctx, cfg))
	}

	return results
}

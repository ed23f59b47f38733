package preflight

import (
	"context"

	"subgen/internal/config"
	"subgen/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinFreeBytes is the staging headroom required before a run starts.
// Extracted audio plus chunk segments for a long feature fit comfortably
// under this.
const MinFreeBytes = 2 << 30

// RunAll executes all preflight checks for the given config: directory
// access for every configured path, free space in staging, and the
// external tool set.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, MinFreeBytes),
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		results = append(results, result)
	}
	return results
}

// AllPassed reports whether every check in results passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

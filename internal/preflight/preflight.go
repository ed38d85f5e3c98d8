package preflight

import (
	"strings"

	"almanac/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all preflight checks for an extraction run. Only the
// source ROOT is checked; a missing category directory beneath it is the
// mirror stage's business (empty category plus a warning, never fatal).
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if strings.TrimSpace(cfg.Paths.SourceDir) != "" {
		results = append(results, CheckDirectoryReadable("Source root", cfg.Paths.SourceDir))
	}
	results = append(results, CheckDirectoryWritable("Output root", cfg.Paths.OutDir))
	if cfg.Extract.MinFreeMB > 0 {
		results = append(results, CheckFreeSpace("Output free space", cfg.Paths.OutDir, cfg.Extract.MinFreeMB))
	}
	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

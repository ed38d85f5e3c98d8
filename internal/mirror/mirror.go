package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"almanac/internal/fileutil"
	"almanac/internal/logging"
)

// Options describes one category mirror operation.
type Options struct {
	Source string
	Dest   string
	// Suffixes selects files by extension (lowercase, leading dot).
	// Empty means every regular file.
	Suffixes []string
	Logger   *slog.Logger
}

// Result reports what a mirror pass produced.
type Result struct {
	// Files holds the mirrored relative paths, slash-separated and sorted.
	Files []string
	// Warnings lists per-file problems that were skipped.
	Warnings []string
}

// Run copies every matching regular file under opts.Source into opts.Dest at
// the same relative path. The destination must be a fresh staging directory;
// clearing stale output is the caller's swap responsibility.
func Run(opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "mirror")
	result := Result{Files: []string{}}

	if err := os.MkdirAll(opts.Dest, 0o755); err != nil {
		return Result{}, fmt.Errorf("create destination %q: %w", opts.Dest, err)
	}

	info, err := os.Stat(opts.Source)
	if err != nil {
		if os.IsNotExist(err) {
			warn(&result, logger, opts.Source, "source directory missing, publishing empty category")
			return result, nil
		}
		return Result{}, fmt.Errorf("stat source %q: %w", opts.Source, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("source %q is not a directory", opts.Source)
	}

	walkErr := filepath.WalkDir(opts.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.Source {
				return err
			}
			warn(&result, logger, path, fmt.Sprintf("unreadable entry skipped: %v", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			warn(&result, logger, path, "not a regular file, skipped")
			return nil
		}
		if !matchesSuffix(path, opts.Suffixes) {
			return nil
		}

		rel, relErr := filepath.Rel(opts.Source, path)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(opts.Dest, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %q: %w", rel, err)
		}
		if err := fileutil.CopyFileVerified(path, target); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				warn(&result, logger, path, fmt.Sprintf("unreadable file skipped: %v", err))
				return nil
			}
			return fmt.Errorf("copy %q: %w", rel, err)
		}
		result.Files = append(result.Files, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return Result{}, walkErr
	}

	sort.Strings(result.Files)
	logger.Debug("mirror pass complete",
		logging.String("source", opts.Source),
		logging.Int("files", len(result.Files)),
		logging.Int("warnings", len(result.Warnings)))
	return result, nil
}

func warn(result *Result, logger *slog.Logger, path, reason string) {
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", path, reason))
	logger.Warn("skipping entry",
		logging.String("path", path),
		logging.String("reason", reason))
}

func matchesSuffix(path string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, suffix := range suffixes {
		if ext == suffix {
			return true
		}
	}
	return false
}

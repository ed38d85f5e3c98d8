package storywrap

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"almanac/internal/jsonutil"
	"almanac/internal/logging"
)

// Document is the JSON wrapper written for each story text file.
type Document struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// Options describes one wrapping pass.
type Options struct {
	// Source is the mirrored story tree to read.
	Source string
	// Dest is the staging directory receiving the story_json tree.
	Dest   string
	Logger *slog.Logger
}

// Result reports what a wrapping pass produced.
type Result struct {
	Files    []string
	Warnings []string
}

// Run wraps every .txt file under opts.Source into a Document at the parallel
// path under opts.Dest, with the extension swapped to .json. Files that are
// not valid UTF-8 are skipped with a warning; the text of valid files is
// carried through byte-exact.
func Run(opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "storywrap")
	result := Result{Files: []string{}}

	if err := os.MkdirAll(opts.Dest, 0o755); err != nil {
		return Result{}, fmt.Errorf("create destination %q: %w", opts.Dest, err)
	}

	walkErr := filepath.WalkDir(opts.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.Source {
				// Nothing mirrored for story: publish an empty tree.
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}

		rel, relErr := filepath.Rel(opts.Source, path)
		if relErr != nil {
			return relErr
		}
		relSlash := filepath.ToSlash(rel)

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			warn(&result, logger, relSlash, fmt.Sprintf("unreadable file skipped: %v", readErr))
			return nil
		}
		if !utf8.Valid(raw) {
			warn(&result, logger, relSlash, "not valid UTF-8, skipped")
			return nil
		}

		outRel := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".json"
		target := filepath.Join(opts.Dest, outRel)
		doc := Document{Path: relSlash, Text: string(raw)}
		if err := jsonutil.WriteFile(target, doc); err != nil {
			return fmt.Errorf("write %q: %w", outRel, err)
		}
		result.Files = append(result.Files, filepath.ToSlash(outRel))
		return nil
	})
	if walkErr != nil {
		return Result{}, walkErr
	}

	sort.Strings(result.Files)
	logger.Debug("wrap pass complete",
		logging.Int("files", len(result.Files)),
		logging.Int("warnings", len(result.Warnings)))
	return result, nil
}

func warn(result *Result, logger *slog.Logger, rel, reason string) {
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", rel, reason))
	logger.Warn("skipping story file",
		logging.String("path", rel),
		logging.String("reason", reason))
}

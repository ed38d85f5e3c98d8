package imagescan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"almanac/internal/logging"
)

// Options describes one scan of an image directory.
type Options struct {
	Dir string
	// Extensions selects image files (lowercase, leading dot).
	Extensions []string
	// TagTokens maps filename substrings to inferred tags. Empty means new
	// subjects start with empty tag sets.
	TagTokens map[string]string
	Logger    *slog.Logger
}

// Result reports what a scan discovered.
type Result struct {
	Manifest Manifest
	Warnings []string
}

// Scan walks the image directory and groups matching files into manifest
// entries by subject slug. Files whose names yield no subject are skipped
// with a warning.
func Scan(opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "imagescan")
	result := Result{Manifest: Manifest{}}

	tokens := make([]string, 0, len(opts.TagTokens))
	for token := range opts.TagTokens {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	walkErr := filepath.WalkDir(opts.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.Dir {
				return err
			}
			warn(&result, logger, path, fmt.Sprintf("unreadable entry skipped: %v", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if !matchesExtension(name, opts.Extensions) {
			return nil
		}

		slug := Slug(name)
		if slug == "" {
			warn(&result, logger, path, "no subject recognizable in file name, skipped")
			return nil
		}

		entry := result.Manifest[slug]
		entry.Files = append(entry.Files, name)
		entry.Tags = mergeTags(entry.Tags, inferTags(name, tokens, opts.TagTokens))
		result.Manifest[slug] = entry
		return nil
	})
	if walkErr != nil {
		return Result{}, walkErr
	}

	for slug, entry := range result.Manifest {
		sort.Strings(entry.Files)
		sort.Strings(entry.Tags)
		if entry.Tags == nil {
			entry.Tags = []string{}
		}
		result.Manifest[slug] = entry
	}

	logger.Debug("scan complete",
		logging.Int("subjects", len(result.Manifest)),
		logging.Int("warnings", len(result.Warnings)))
	return result, nil
}

func matchesExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func inferTags(name string, tokens []string, vocabulary map[string]string) []string {
	if len(tokens) == 0 {
		return nil
	}
	lower := strings.ToLower(name)
	var tags []string
	for _, token := range tokens {
		if strings.Contains(lower, token) {
			tags = append(tags, vocabulary[token])
		}
	}
	return tags
}

func mergeTags(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, tag := range existing {
		seen[tag] = struct{}{}
	}
	for _, tag := range incoming {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		existing = append(existing, tag)
	}
	return existing
}

func warn(result *Result, logger *slog.Logger, path, reason string) {
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", path, reason))
	logger.Warn("skipping image",
		logging.String("path", path),
		logging.String("reason", reason))
}

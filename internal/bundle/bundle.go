package bundle

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"almanac/internal/fileutil"
	"almanac/internal/logging"
	"almanac/internal/pipeline"
	"almanac/internal/textutil"
)

// Record is one JSONL line in a knowledge bundle.
type Record struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Source string   `json:"source,omitempty"`
	Tags   []string `json:"tags"`
	Text   string   `json:"text"`
}

// Options describes one bundle build.
type Options struct {
	// StoryRoot is the latest/story_json tree (optional).
	StoryRoot string
	// ExcelRoot is the latest/excel tree (optional).
	ExcelRoot string
	OutDir    string
	// BaseURL, when set, builds the source link for each record.
	BaseURL string
	// SizeMB caps each bundle file.
	SizeMB int
	// ExcelChunkChars splits large table encodings.
	ExcelChunkChars int
	// MaxStory / MaxExcel limit input counts; 0 means unlimited.
	MaxStory int
	MaxExcel int
	Logger   *slog.Logger
}

// Summary reports what a bundle build produced.
type Summary struct {
	Bundles  int      `json:"bundles"`
	Records  int      `json:"records"`
	Warnings []string `json:"warnings,omitempty"`
}

// Run regenerates the bundle directory from the published trees.
func Run(opts Options) (Summary, error) {
	logger := logging.NewComponentLogger(opts.Logger, "bundle")
	if opts.StoryRoot == "" && opts.ExcelRoot == "" {
		return Summary{}, pipeline.Wrap(pipeline.ErrConfiguration, "bundling", "resolve inputs",
			"at least one of story root and excel root is required", nil)
	}

	staged := opts.OutDir + ".staging"
	if err := os.RemoveAll(staged); err != nil {
		return Summary{}, pipeline.Wrap(pipeline.ErrTransient, "bundling", "clear staging", staged, err)
	}
	if err := os.MkdirAll(staged, 0o755); err != nil {
		return Summary{}, pipeline.Wrap(pipeline.ErrTransient, "bundling", "create staging", staged, err)
	}

	writer := newRotatingWriter(staged, opts.SizeMB)
	summary := Summary{}

	if opts.StoryRoot != "" {
		if err := bundleStories(opts, writer, &summary, logger); err != nil {
			return Summary{}, err
		}
	}
	if opts.ExcelRoot != "" {
		if err := bundleExcel(opts, writer, &summary, logger); err != nil {
			return Summary{}, err
		}
	}

	if err := writer.Close(); err != nil {
		return Summary{}, pipeline.Wrap(pipeline.ErrTransient, "bundling", "flush bundles", "", err)
	}
	summary.Bundles = writer.Count()

	if err := fileutil.SwapDir(staged, opts.OutDir); err != nil {
		return Summary{}, pipeline.Wrap(pipeline.ErrTransient, "bundling", "publish bundles", "", err)
	}

	logger.Info("bundles built",
		logging.Int("bundles", summary.Bundles),
		logging.Int("records", summary.Records),
		logging.Int("warnings", len(summary.Warnings)))
	return summary, nil
}

func bundleStories(opts Options, writer *rotatingWriter, summary *Summary, logger *slog.Logger) error {
	paths, err := collectFiles(opts.StoryRoot, ".json")
	if err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, "bundling", "walk story root", opts.StoryRoot, err)
	}
	// The category manifest sits at the tree root; it is not a story document.
	filtered := paths[:0]
	for _, rel := range paths {
		if rel == "index.json" {
			continue
		}
		filtered = append(filtered, rel)
	}
	paths = filtered
	if opts.MaxStory > 0 && len(paths) > opts.MaxStory {
		paths = paths[:opts.MaxStory]
	}

	for _, rel := range paths {
		raw, err := os.ReadFile(filepath.Join(opts.StoryRoot, filepath.FromSlash(rel)))
		if err != nil {
			warn(summary, logger, rel, fmt.Sprintf("unreadable story document skipped: %v", err))
			continue
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			warn(summary, logger, rel, fmt.Sprintf("unparseable story document skipped: %v", err))
			continue
		}
		text := extractText(doc)
		if strings.TrimSpace(text) == "" {
			warn(summary, logger, rel, "no extractable text, skipped")
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(rel), ".json")
		record := Record{
			ID:    "story:" + rel,
			Title: textutil.DisplayTitle(stem),
			Tags:  []string{"story"},
			Text:  text,
		}
		if opts.BaseURL != "" {
			record.Source = opts.BaseURL + "/story_json/" + rel
		}
		if err := writer.Write(record); err != nil {
			return pipeline.Wrap(pipeline.ErrTransient, "bundling", "write story record", rel, err)
		}
		summary.Records++
	}
	return nil
}

func bundleExcel(opts Options, writer *rotatingWriter, summary *Summary, logger *slog.Logger) error {
	paths, err := collectFiles(opts.ExcelRoot, ".json")
	if err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, "bundling", "walk excel root", opts.ExcelRoot, err)
	}
	// Tables live flat under excel/; the category manifest is not data.
	filtered := paths[:0]
	for _, rel := range paths {
		if rel == "index.json" {
			continue
		}
		filtered = append(filtered, rel)
	}
	paths = filtered
	if opts.MaxExcel > 0 && len(paths) > opts.MaxExcel {
		paths = paths[:opts.MaxExcel]
	}

	for _, rel := range paths {
		raw, err := os.ReadFile(filepath.Join(opts.ExcelRoot, filepath.FromSlash(rel)))
		if err != nil {
			warn(summary, logger, rel, fmt.Sprintf("unreadable table skipped: %v", err))
			continue
		}

		text := string(raw)
		var doc any
		if err := json.Unmarshal(raw, &doc); err == nil {
			if compact, err := json.Marshal(doc); err == nil {
				text = string(compact)
			}
		} else {
			warn(summary, logger, rel, "table is not valid JSON, bundling raw bytes")
		}

		stem := strings.TrimSuffix(filepath.Base(rel), ".json")
		title := textutil.DisplayTitle(stem)
		chunks := chunkString(text, opts.ExcelChunkChars)
		for part, chunk := range chunks {
			record := Record{
				ID:    fmt.Sprintf("excel:%s#%d", rel, part),
				Title: title,
				Tags:  []string{"excel"},
				Text:  chunk,
			}
			if len(chunks) > 1 {
				record.Title = fmt.Sprintf("%s (part %d/%d)", title, part+1, len(chunks))
			}
			if opts.BaseURL != "" {
				record.Source = opts.BaseURL + "/excel/" + rel
			}
			if err := writer.Write(record); err != nil {
				return pipeline.Wrap(pipeline.ErrTransient, "bundling", "write excel record", rel, err)
			}
			summary.Records++
		}
	}
	return nil
}

func collectFiles(root, suffix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), suffix) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func warn(summary *Summary, logger *slog.Logger, rel, reason string) {
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %s", rel, reason))
	logger.Warn("skipping input",
		logging.String("path", rel),
		logging.String("reason", reason))
}

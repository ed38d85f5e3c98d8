package tablesplit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"almanac/internal/fileutil"
	"almanac/internal/index"
	"almanac/internal/jsonutil"
	"almanac/internal/logging"
	"almanac/internal/pipeline"
	"almanac/internal/textutil"
)

// Options describes one split operation.
type Options struct {
	// TablePath is the keyed JSON table (entity ID to entity record).
	TablePath string
	// OutDir receives one <id>.json per entity plus index.json.
	OutDir string
	Logger *slog.Logger
}

// Result reports what a split produced.
type Result struct {
	Category string
	Files    []string
	Warnings []string
}

// Run splits the table into per-entity documents. Entity IDs that sanitize to
// nothing, or collide with an earlier ID after sanitization, are skipped with
// a warning. The output directory is fully regenerated on every run.
func Run(opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "tablesplit")
	category := tableCategory(opts.TablePath)
	result := Result{Category: category, Files: []string{}}

	raw, err := os.ReadFile(opts.TablePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, pipeline.Wrap(pipeline.ErrNotFound, "splitting", "read table", opts.TablePath, err)
		}
		return Result{}, pipeline.Wrap(pipeline.ErrTransient, "splitting", "read table", opts.TablePath, err)
	}

	var table map[string]any
	if err := json.Unmarshal(raw, &table); err != nil {
		return Result{}, pipeline.Wrap(pipeline.ErrValidation, "splitting", "parse table",
			"table must be a JSON object keyed by entity ID", err)
	}

	staged := opts.OutDir + ".staging"
	if err := os.RemoveAll(staged); err != nil {
		return Result{}, pipeline.Wrap(pipeline.ErrTransient, "splitting", "clear staging", staged, err)
	}
	if err := os.MkdirAll(staged, 0o755); err != nil {
		return Result{}, pipeline.Wrap(pipeline.ErrTransient, "splitting", "create staging", staged, err)
	}

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	used := make(map[string]string, len(ids))
	for _, id := range ids {
		slug := textutil.SanitizeToken(id)
		if slug == "" {
			warn(&result, logger, id, "entity ID sanitizes to nothing, skipped")
			continue
		}
		if prior, ok := used[slug]; ok {
			warn(&result, logger, id, fmt.Sprintf("sanitized ID collides with %q, skipped", prior))
			continue
		}
		used[slug] = id

		name := slug + ".json"
		if err := jsonutil.WriteFile(filepath.Join(staged, name), table[id]); err != nil {
			return Result{}, pipeline.Wrap(pipeline.ErrTransient, "splitting", "write entity", name, err)
		}
		result.Files = append(result.Files, name)
	}
	sort.Strings(result.Files)

	idx, err := index.BuildCategory(staged, category)
	if err != nil {
		return Result{}, pipeline.Wrap(pipeline.ErrTransient, "splitting", "build index", "", err)
	}
	if err := index.WriteCategory(staged, idx); err != nil {
		return Result{}, pipeline.Wrap(pipeline.ErrTransient, "splitting", "write index", "", err)
	}

	if err := fileutil.SwapDir(staged, opts.OutDir); err != nil {
		return Result{}, pipeline.Wrap(pipeline.ErrTransient, "splitting", "publish output", "", err)
	}

	logger.Info("table split complete",
		logging.String(logging.FieldCategory, category),
		logging.Int("entities", len(result.Files)),
		logging.Int("warnings", len(result.Warnings)))
	return result, nil
}

func warn(result *Result, logger *slog.Logger, id, reason string) {
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", id, reason))
	logger.Warn("skipping entity",
		logging.String("entity_id", id),
		logging.String("reason", reason))
}

func tableCategory(tablePath string) string {
	base := filepath.Base(tablePath)
	stem := base[:len(base)-len(filepath.Ext(base))]
	if slug := textutil.SanitizeToken(stem); slug != "" {
		return slug
	}
	return "entities"
}

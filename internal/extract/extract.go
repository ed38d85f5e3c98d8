package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"almanac/internal/config"
	"almanac/internal/fileutil"
	"almanac/internal/index"
	"almanac/internal/logging"
	"almanac/internal/mirror"
	"almanac/internal/pipeline"
	"almanac/internal/preflight"
	"almanac/internal/snapshot"
	"almanac/internal/storywrap"
)

// Stage identifies where a run is in its lifecycle.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageMirroring    Stage = "mirroring"
	StageWrapping     Stage = "wrapping"
	StageIndexing     Stage = "indexing"
	StageSnapshotting Stage = "snapshotting"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Category names under latest/.
const (
	CategoryExcel     = "excel"
	CategoryStory     = "story"
	CategoryStoryJSON = "story_json"
)

// Options configures one extraction run.
type Options struct {
	Config *config.Config
	// Wrap overrides the configured story wrapping when non-nil.
	Wrap *bool
	// SkipSnapshot publishes latest/ without writing a dated release.
	SkipSnapshot bool
	// Clock supplies run timestamps; nil means time.Now. Tests inject a
	// fixed clock so reruns are byte-identical.
	Clock  func() time.Time
	Logger *slog.Logger
}

// CategorySummary reports one published category.
type CategorySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID        string            `json:"run_id"`
	Stage        Stage             `json:"stage"`
	Categories   []CategorySummary `json:"categories"`
	SnapshotPath string            `json:"snapshot_path,omitempty"`
	GeneratedAt  string            `json:"generated_at"`
	Warnings     []string          `json:"warnings,omitempty"`
	Duration     time.Duration     `json:"duration_ns"`
}

type run struct {
	cfg     *config.Config
	opts    Options
	logger  *slog.Logger
	clock   func() time.Time
	staging string
	summary Summary

	wrapped     bool
	wrapEnabled bool
}

// Run executes the full extraction pipeline against opts.Config. Source
// problems detected by preflight abort the run before any output mutation.
func Run(ctx context.Context, opts Options) (Summary, error) {
	cfg := opts.Config
	if cfg == nil {
		return Summary{Stage: StageFailed}, pipeline.Wrap(pipeline.ErrConfiguration, "", "start run", "no configuration", nil)
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	started := clock()

	runID := uuid.New().String()
	ctx = pipeline.WithRunID(ctx, runID)
	logger := logging.NewComponentLogger(opts.Logger, "extract")

	r := &run{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
		clock:  clock,
		summary: Summary{
			RunID:       runID,
			Stage:       StageIdle,
			GeneratedAt: started.UTC().Format(time.RFC3339),
		},
	}
	r.wrapEnabled = cfg.Extract.WrapStoryJSON
	if opts.Wrap != nil {
		r.wrapEnabled = *opts.Wrap
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return r.fail(pipeline.Wrap(pipeline.ErrConfiguration, "", "prepare directories", "", err))
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return r.fail(pipeline.Wrap(pipeline.ErrTransient, "", "acquire output lock", cfg.LockPath(), err))
	}
	if !locked {
		return r.fail(pipeline.Wrap(pipeline.ErrConfiguration, "", "acquire output lock",
			"another run holds the output tree", nil))
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, check := range failed {
			details = append(details, fmt.Sprintf("%s: %s", check.Name, check.Detail))
		}
		return r.fail(pipeline.Wrap(pipeline.ErrConfiguration, "", "preflight",
			strings.Join(details, "; "), nil))
	}

	// Residue from an interrupted run is stale once we hold the lock.
	if err := os.RemoveAll(cfg.StagingDir()); err != nil {
		return r.fail(pipeline.Wrap(pipeline.ErrTransient, "", "clear staging root", "", err))
	}
	r.staging = filepath.Join(cfg.StagingDir(), runID)
	if err := os.MkdirAll(r.staging, 0o755); err != nil {
		return r.fail(pipeline.Wrap(pipeline.ErrTransient, "", "create staging root", "", err))
	}
	defer func() {
		_ = os.RemoveAll(cfg.StagingDir())
	}()

	stages := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageMirroring, r.mirrorStage},
		{StageWrapping, r.wrapStage},
		{StageIndexing, r.indexStage},
		{StageSnapshotting, r.snapshotStage},
	}
	for _, step := range stages {
		if err := r.execStage(ctx, step.stage, step.fn); err != nil {
			return r.fail(err)
		}
	}

	r.summary.Stage = StageDone
	r.summary.Duration = clock().Sub(started)
	logging.WithContext(ctx, logger).Info("run complete",
		logging.Int("categories", len(r.summary.Categories)),
		logging.Bool("snapshot", !opts.SkipSnapshot),
		logging.Int("warnings", len(r.summary.Warnings)),
		logging.Duration("duration", r.summary.Duration))
	return r.summary, nil
}

func (r *run) fail(err error) (Summary, error) {
	r.summary.Stage = StageFailed
	return r.summary, err
}

func (r *run) execStage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	r.summary.Stage = stage
	ctx = pipeline.WithStage(ctx, string(stage))
	logger := logging.WithContext(ctx, r.logger)

	started := r.clock()
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(ctx); err != nil {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Error(err),
			logging.Duration("duration", r.clock().Sub(started)))
		return err
	}
	logger.Info("stage complete",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", r.clock().Sub(started)))
	return nil
}

func (r *run) mirrorStage(ctx context.Context) error {
	categories := []struct {
		name     string
		source   string
		suffixes []string
	}{
		{CategoryExcel, r.cfg.ExcelSourceDir(), r.cfg.Extract.ExcelSuffixes},
		{CategoryStory, r.cfg.StorySourceDir(), r.cfg.Extract.StorySuffixes},
	}

	// Copy every category into staging before publishing anything, so a
	// failure partway through the stage never leaves latest mixing runs.
	type stagedCategory struct {
		name  string
		dir   string
		count int
	}
	staged := make([]stagedCategory, 0, len(categories))
	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return pipeline.Wrap(pipeline.ErrTransient, string(StageMirroring), "mirror "+category.name, "", err)
		}
		dir := filepath.Join(r.staging, category.name)
		result, err := mirror.Run(mirror.Options{
			Source:   category.source,
			Dest:     dir,
			Suffixes: category.suffixes,
			Logger:   logging.WithContext(ctx, r.logger),
		})
		if err != nil {
			return pipeline.Wrap(pipeline.ErrTransient, string(StageMirroring), "mirror "+category.name, "", err)
		}
		r.addWarnings(category.name, result.Warnings)
		staged = append(staged, stagedCategory{category.name, dir, len(result.Files)})
	}

	for _, category := range staged {
		if err := fileutil.SwapDir(category.dir, filepath.Join(r.cfg.LatestDir(), category.name)); err != nil {
			return pipeline.Wrap(pipeline.ErrTransient, string(StageMirroring), "publish "+category.name, "", err)
		}
		r.summary.Categories = append(r.summary.Categories, CategorySummary{Name: category.name, Count: category.count})
	}
	return nil
}

func (r *run) wrapStage(ctx context.Context) error {
	if !r.wrapEnabled {
		r.logger.Debug("story wrapping disabled, stage skipped")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, string(StageWrapping), "wrap story text", "", err)
	}

	staged := filepath.Join(r.staging, CategoryStoryJSON)
	result, err := storywrap.Run(storywrap.Options{
		Source: filepath.Join(r.cfg.LatestDir(), CategoryStory),
		Dest:   staged,
		Logger: logging.WithContext(ctx, r.logger),
	})
	if err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, string(StageWrapping), "wrap story text", "", err)
	}
	r.addWarnings(CategoryStoryJSON, result.Warnings)

	if err := fileutil.SwapDir(staged, filepath.Join(r.cfg.LatestDir(), CategoryStoryJSON)); err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, string(StageWrapping), "publish "+CategoryStoryJSON, "", err)
	}
	r.summary.Categories = append(r.summary.Categories, CategorySummary{Name: CategoryStoryJSON, Count: len(result.Files)})
	r.wrapped = true
	return nil
}

func (r *run) indexStage(ctx context.Context) error {
	names := []string{CategoryExcel, CategoryStory}
	if r.wrapped {
		names = append(names, CategoryStoryJSON)
	}

	indexes := make([]index.CategoryIndex, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return pipeline.Wrap(pipeline.ErrTransient, string(StageIndexing), "index "+name, "", err)
		}
		dir := filepath.Join(r.cfg.LatestDir(), name)
		idx, err := index.BuildCategory(dir, name)
		if err != nil {
			return pipeline.Wrap(pipeline.ErrTransient, string(StageIndexing), "index "+name, "", err)
		}
		if err := index.WriteCategory(dir, idx); err != nil {
			return pipeline.Wrap(pipeline.ErrTransient, string(StageIndexing), "write index for "+name, "", err)
		}
		indexes = append(indexes, idx)
	}

	root := index.NewRoot(r.clock(), indexes)
	r.summary.GeneratedAt = root.GeneratedAt
	if err := index.WriteRoot(r.cfg.LatestDir(), root); err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, string(StageIndexing), "write root index", "", err)
	}
	return nil
}

func (r *run) snapshotStage(ctx context.Context) error {
	if r.opts.SkipSnapshot {
		r.logger.Debug("snapshot skipped by request")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, string(StageSnapshotting), "snapshot latest", "", err)
	}

	path, err := snapshot.Write(r.cfg.LatestDir(), r.cfg.ReleaseDir(), r.clock())
	if err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, string(StageSnapshotting), "snapshot latest", "", err)
	}
	r.summary.SnapshotPath = path
	return nil
}

func (r *run) addWarnings(category string, warnings []string) {
	for _, warning := range warnings {
		r.summary.Warnings = append(r.summary.Warnings, category+": "+warning)
	}
}

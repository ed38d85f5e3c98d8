package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"almanac/internal/config"
	"almanac/internal/preflight"
)

func TestCheckDirectoryReadable(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryReadable("Source", dir)
	if !result.Passed {
		t.Fatalf("expected pass for %s: %s", dir, result.Detail)
	}

	missing := filepath.Join(dir, "nope")
	result = preflight.CheckDirectoryReadable("Source", missing)
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}
}

func TestCheckDirectoryWritableRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := preflight.CheckDirectoryWritable("Output", file); result.Passed {
		t.Fatal("expected failure for regular file")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := preflight.CheckFreeSpace("Space", dir, 1); !result.Passed {
		t.Fatalf("expected at least 1 MB free in temp dir: %s", result.Detail)
	}
}

func TestRunAllReportsMissingSourceRoot(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "absent")
	cfg.Paths.ExcelDir = ""
	cfg.Paths.StoryDir = ""
	cfg.Paths.OutDir = base
	cfg.Extract.MinFreeMB = 0

	failed := preflight.Failed(preflight.RunAll(&cfg))
	if len(failed) != 1 {
		t.Fatalf("expected one source root failure, got %v", failed)
	}
	if failed[0].Name != "Source root" {
		t.Fatalf("unexpected failing check: %+v", failed[0])
	}
}

func TestRunAllIgnoresMissingCategoryDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = base
	cfg.Paths.ExcelDir = ""
	cfg.Paths.StoryDir = ""
	cfg.Paths.OutDir = base
	cfg.Extract.MinFreeMB = 0

	// Neither excel/ nor story/ exists under the root; that is the mirror
	// stage's concern, not a fatal precondition.
	if failed := preflight.Failed(preflight.RunAll(&cfg)); len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
}

func TestRunAllSkipsSourceCheckWhenOnlyOverridesSet(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = ""
	cfg.Paths.ExcelDir = filepath.Join(base, "absent-excel")
	cfg.Paths.StoryDir = filepath.Join(base, "absent-story")
	cfg.Paths.OutDir = base
	cfg.Extract.MinFreeMB = 0

	if failed := preflight.Failed(preflight.RunAll(&cfg)); len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
}

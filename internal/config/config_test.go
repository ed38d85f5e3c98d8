package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"almanac/internal/config"
)

func TestLoadDefaultsWhenNoFileExists(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	clearOverrides(t)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, resolved %s", resolved)
	}
	if !filepath.IsAbs(cfg.Paths.SourceDir) || !filepath.IsAbs(cfg.Paths.OutDir) {
		t.Fatalf("paths not absolute: %q %q", cfg.Paths.SourceDir, cfg.Paths.OutDir)
	}
	if cfg.Extract.WrapStoryJSON {
		t.Fatal("wrapping should default off")
	}
	if got := cfg.ExcelSourceDir(); got != filepath.Join(cfg.Paths.SourceDir, "excel") {
		t.Fatalf("excel source dir: got %q", got)
	}
	if got := cfg.LatestDir(); got != filepath.Join(cfg.Paths.OutDir, "latest") {
		t.Fatalf("latest dir: got %q", got)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	clearOverrides(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "almanac.toml")
	content := strings.Join([]string{
		"[paths]",
		`source_dir = "~/checkout"`,
		`out_dir = "~/site"`,
		"[extract]",
		"wrap_story_json = true",
		`story_suffixes = ["TXT"]`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file at %s to be used, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Paths.SourceDir != filepath.Join(tempHome, "checkout") {
		t.Fatalf("source dir not expanded: %q", cfg.Paths.SourceDir)
	}
	if !cfg.Extract.WrapStoryJSON {
		t.Fatal("wrap_story_json not honored")
	}
	if len(cfg.Extract.StorySuffixes) != 1 || cfg.Extract.StorySuffixes[0] != ".txt" {
		t.Fatalf("suffixes not normalized: %v", cfg.Extract.StorySuffixes)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, t.TempDir())

	excel := filepath.Join(tempHome, "tables")
	out := filepath.Join(tempHome, "publish")
	t.Setenv("EXCEL_SRC", excel)
	t.Setenv("STORY_SRC", filepath.Join(tempHome, "chapters"))
	t.Setenv("OUT_DIR", out)
	t.Setenv("STORY_JSON_WRAPPER", "TRUE")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExcelSourceDir() != excel {
		t.Fatalf("EXCEL_SRC override missing: %q", cfg.ExcelSourceDir())
	}
	if cfg.Paths.OutDir != out {
		t.Fatalf("OUT_DIR override missing: %q", cfg.Paths.OutDir)
	}
	if !cfg.Extract.WrapStoryJSON {
		t.Fatal("STORY_JSON_WRAPPER=TRUE should enable wrapping")
	}
}

func TestWrapperEnvDisables(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	clearOverrides(t)
	t.Setenv("STORY_JSON_WRAPPER", "false")

	dir := t.TempDir()
	path := filepath.Join(dir, "almanac.toml")
	if err := os.WriteFile(path, []byte("[extract]\nwrap_story_json = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Extract.WrapStoryJSON {
		t.Fatal("env false should win over file true")
	}
}

func TestValidateRejectsBadBundleSize(t *testing.T) {
	cfg := config.Default()
	cfg.Bundle.SizeMB = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative bundle size")
	}
}

func TestNormalizeRepairsTagTokens(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	clearOverrides(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "almanac.toml")
	content := strings.Join([]string{
		"[images.tag_tokens]",
		`" LongHair " = "long_hair"`,
		`"" = "dropped"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Images.TagTokens["longhair"]; got != "long_hair" {
		t.Fatalf("token not lowercased/trimmed: %v", cfg.Images.TagTokens)
	}
	if len(cfg.Images.TagTokens) != 1 {
		t.Fatalf("empty token should be dropped: %v", cfg.Images.TagTokens)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s missing: %v", dir, err)
		}
	}
}

func clearOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{"EXCEL_SRC", "STORY_SRC", "OUT_DIR", "STORY_JSON_WRAPPER"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

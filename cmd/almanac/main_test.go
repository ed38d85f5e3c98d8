package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"almanac/internal/imagescan"
	"almanac/internal/jsonutil"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	sourceDir  string
	outDir     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	// The loader consults these; make sure ambient CI values cannot leak in.
	for _, name := range []string{"EXCEL_SRC", "STORY_SRC", "OUT_DIR", "STORY_JSON_WRAPPER"} {
		t.Setenv(name, "")
	}

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		sourceDir:  filepath.Join(base, "gamedata"),
		outDir:     filepath.Join(base, "docs"),
	}

	for _, dir := range []string{
		filepath.Join(env.sourceDir, "excel"),
		filepath.Join(env.sourceDir, "story"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
source_dir = %q
out_dir = %q
log_dir = %q

[extract]
wrap_story_json = true
min_free_mb = 0

[images]
dir = %q
manifest = %q

[images.tag_tokens]
skin = "skin"

[bundle]
out_dir = %q
`,
		env.sourceDir,
		env.outDir,
		filepath.Join(env.baseDir, "logs"),
		filepath.Join(env.baseDir, "images"),
		filepath.Join(env.baseDir, "image_manifest.json"),
		filepath.Join(env.baseDir, "bundles"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, configPath string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSourceFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCLIExtractAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSourceFile(t, filepath.Join(env.sourceDir, "excel", "item_table.json"), `{"a": "b"}`)
	writeSourceFile(t, filepath.Join(env.sourceDir, "story", "ch1", "01.txt"), "Hello")

	out, _, err := runCLI(t, env.configPath, []string{"extract"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(out, "complete") {
		t.Fatalf("unexpected extract output: %q", out)
	}
	if !strings.Contains(out, "story_json") {
		t.Fatalf("extract output missing wrapped category: %q", out)
	}

	if _, err := os.Stat(filepath.Join(env.outDir, "latest", "story_json", "ch1", "01.json")); err != nil {
		t.Fatal("wrapped story missing after extract")
	}

	out, _, err = runCLI(t, env.configPath, []string{"status"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "excel") || !strings.Contains(out, "Snapshots") {
		t.Fatalf("unexpected status output: %q", out)
	}

	out, _, err = runCLI(t, env.configPath, []string{"status", "--json"})
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var report struct {
		Published bool           `json:"published"`
		Categories map[string]int `json:"categories"`
		Snapshots []string       `json:"snapshots"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("status JSON: %v\n%s", err, out)
	}
	if !report.Published || report.Categories["excel"] != 1 || len(report.Snapshots) != 1 {
		t.Fatalf("unexpected status report: %+v", report)
	}
}

func TestCLIExtractNoWrapAndNoSnapshot(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSourceFile(t, filepath.Join(env.sourceDir, "story", "01.txt"), "Hello")

	out, _, err := runCLI(t, env.configPath, []string{"extract", "--no-wrap", "--no-snapshot", "--json"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var summary struct {
		Stage        string `json:"stage"`
		SnapshotPath string `json:"snapshot_path"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("summary JSON: %v\n%s", err, out)
	}
	if summary.Stage != "done" || summary.SnapshotPath != "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(env.outDir, "latest", "story_json")); !os.IsNotExist(err) {
		t.Fatal("story_json created despite --no-wrap")
	}
	if _, err := os.Stat(filepath.Join(env.outDir, "release")); !os.IsNotExist(err) {
		t.Fatal("release created despite --no-snapshot")
	}
}

func TestCLIScanImages(t *testing.T) {
	env := setupCLITestEnv(t)
	imagesDir := filepath.Join(env.baseDir, "images")
	writeSourceFile(t, filepath.Join(imagesDir, "amiya_1.png"), "png")
	writeSourceFile(t, filepath.Join(imagesDir, "amiya_skin2.png"), "png")

	manifestPath := filepath.Join(env.baseDir, "image_manifest.json")
	seed := imagescan.Manifest{
		"amiya": {Files: []string{"amiya_1.png"}, Tags: []string{"hand-tag"}},
	}
	if err := jsonutil.WriteFile(manifestPath, seed); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"scan-images"})
	if err != nil {
		t.Fatalf("scan-images: %v", err)
	}
	if !strings.Contains(out, "amiya") {
		t.Fatalf("unexpected scan output: %q", out)
	}

	merged, err := imagescan.Load(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := merged["amiya"]
	if !ok {
		t.Fatalf("manifest missing subject: %v", merged)
	}
	if len(entry.Files) != 2 {
		t.Fatalf("files = %v", entry.Files)
	}
	if !containsString(entry.Tags, "hand-tag") || !containsString(entry.Tags, "skin") {
		t.Fatalf("tags = %v", entry.Tags)
	}
}

func TestCLISplit(t *testing.T) {
	env := setupCLITestEnv(t)
	tablePath := filepath.Join(env.baseDir, "character_table.json")
	writeSourceFile(t, tablePath, `{"char_002_amiya":{"name":"Amiya"}}`)

	outDir := filepath.Join(env.baseDir, "characters")
	out, _, err := runCLI(t, env.configPath, []string{"split", "--table", tablePath, "--out", outDir})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if !strings.Contains(out, "character_table") {
		t.Fatalf("unexpected split output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "char_002_amiya.json")); err != nil {
		t.Fatal("entity file missing")
	}
}

func TestCLIBundleAfterExtract(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSourceFile(t, filepath.Join(env.sourceDir, "excel", "item_table.json"), `{"a": 1}`)
	writeSourceFile(t, filepath.Join(env.sourceDir, "story", "01.txt"), "Hello")

	if _, _, err := runCLI(t, env.configPath, []string{"extract", "--no-snapshot"}); err != nil {
		t.Fatalf("extract: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"bundle", "--json"})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	var summary struct {
		Bundles int `json:"bundles"`
		Records int `json:"records"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("bundle JSON: %v\n%s", err, out)
	}
	if summary.Records != 2 || summary.Bundles != 1 {
		t.Fatalf("unexpected bundle summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(env.baseDir, "bundles", "bundle_000.jsonl")); err != nil {
		t.Fatal("bundle file missing")
	}
}

func TestCLIConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, []string{"config", "validate"})
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}

	initPath := filepath.Join(env.baseDir, "fresh", "config.toml")
	out, _, err = runCLI(t, env.configPath, []string{"config", "init", "--path", initPath})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(initPath); err != nil {
		t.Fatal("sample config missing")
	}

	if _, _, err := runCLI(t, env.configPath, []string{"config", "init", "--path", initPath}); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, env.configPath, []string{"config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "paths.out_dir") || !strings.Contains(out, env.outDir) {
		t.Fatalf("unexpected show output: %q", out)
	}
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}

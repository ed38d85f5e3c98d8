package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	ExcelDir  string `toml:"excel_dir"`
	StoryDir  string `toml:"story_dir"`
	OutDir    string `toml:"out_dir"`
	LogDir    string `toml:"log_dir"`
}

// Extract contains configuration for the extraction pipeline.
type Extract struct {
	WrapStoryJSON bool     `toml:"wrap_story_json"`
	ExcelSuffixes []string `toml:"excel_suffixes"`
	StorySuffixes []string `toml:"story_suffixes"`
	MinFreeMB     int      `toml:"min_free_mb"`
}

// Images contains configuration for the image manifest tool.
type Images struct {
	Dir        string            `toml:"dir"`
	Manifest   string            `toml:"manifest"`
	Extensions []string          `toml:"extensions"`
	TagTokens  map[string]string `toml:"tag_tokens"`
}

// Bundle contains configuration for knowledge bundle generation.
type Bundle struct {
	OutDir          string `toml:"out_dir"`
	BaseURL         string `toml:"base_url"`
	SizeMB          int    `toml:"size_mb"`
	ExcelChunkChars int    `toml:"excel_chunk_chars"`
	MaxStory        int    `toml:"max_story"`
	MaxExcel        int    `toml:"max_excel"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Almanac.
//
// Configuration sections by subsystem:
//   - Paths: source and output directories
//   - Extract: suffix filters, optional story wrapping, preflight floor
//   - Images: manifest tool inputs and the tag token vocabulary
//   - Bundle: knowledge bundle sizing and source link base
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Extract Extract `toml:"extract"`
	Images  Images  `toml:"images"`
	Bundle  Bundle  `toml:"bundle"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/almanac/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized, with environment overrides
// applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/almanac/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("almanac.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ExcelSourceDir returns the directory holding game-data JSON tables.
func (c *Config) ExcelSourceDir() string {
	if strings.TrimSpace(c.Paths.ExcelDir) != "" {
		return c.Paths.ExcelDir
	}
	return filepath.Join(c.Paths.SourceDir, "excel")
}

// StorySourceDir returns the directory holding per-chapter story text.
func (c *Config) StorySourceDir() string {
	if strings.TrimSpace(c.Paths.StoryDir) != "" {
		return c.Paths.StoryDir
	}
	return filepath.Join(c.Paths.SourceDir, "story")
}

// LatestDir returns the always-current output tree.
func (c *Config) LatestDir() string {
	return filepath.Join(c.Paths.OutDir, "latest")
}

// ReleaseDir returns the root holding dated immutable snapshots.
func (c *Config) ReleaseDir() string {
	return filepath.Join(c.Paths.OutDir, "release")
}

// StagingDir returns the scratch root where stages assemble their output
// before swapping it into place.
func (c *Config) StagingDir() string {
	return filepath.Join(c.Paths.OutDir, ".staging")
}

// LockPath returns the lock file guarding the output tree against concurrent
// runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutDir, ".almanac.lock")
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

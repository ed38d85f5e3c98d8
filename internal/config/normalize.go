package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtract()
	if err := c.normalizeImages(); err != nil {
		return err
	}
	if err := c.normalizeBundle(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

// Environment overrides keep the variable names the CI extraction job has
// always used.
func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("EXCEL_SRC"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ExcelDir = value
	}
	if value, ok := os.LookupEnv("STORY_SRC"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StoryDir = value
	}
	if value, ok := os.LookupEnv("OUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutDir = value
	}

	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExcelDir) != "" {
		if c.Paths.ExcelDir, err = expandPath(c.Paths.ExcelDir); err != nil {
			return fmt.Errorf("paths.excel_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.StoryDir) != "" {
		if c.Paths.StoryDir, err = expandPath(c.Paths.StoryDir); err != nil {
			return fmt.Errorf("paths.story_dir: %w", err)
		}
	}
	if c.Paths.OutDir, err = expandPath(c.Paths.OutDir); err != nil {
		return fmt.Errorf("paths.out_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtract() {
	if value, ok := os.LookupEnv("STORY_JSON_WRAPPER"); ok {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes":
			c.Extract.WrapStoryJSON = true
		case "false", "0", "no":
			c.Extract.WrapStoryJSON = false
		}
	}
	c.Extract.ExcelSuffixes = normalizeSuffixes(c.Extract.ExcelSuffixes, []string{".json"})
	c.Extract.StorySuffixes = normalizeSuffixes(c.Extract.StorySuffixes, []string{".txt", ".json"})
	if c.Extract.MinFreeMB < 0 {
		c.Extract.MinFreeMB = 0
	}
}

func (c *Config) normalizeImages() error {
	var err error
	if strings.TrimSpace(c.Images.Dir) == "" {
		c.Images.Dir = defaultImagesDir
	}
	if c.Images.Dir, err = expandPath(c.Images.Dir); err != nil {
		return fmt.Errorf("images.dir: %w", err)
	}
	if strings.TrimSpace(c.Images.Manifest) == "" {
		c.Images.Manifest = defaultImageManifest
	}
	if c.Images.Manifest, err = expandPath(c.Images.Manifest); err != nil {
		return fmt.Errorf("images.manifest: %w", err)
	}
	c.Images.Extensions = normalizeSuffixes(c.Images.Extensions, []string{".jpg", ".jpeg", ".png", ".webp", ".gif"})

	if len(c.Images.TagTokens) > 0 {
		tokens := make(map[string]string, len(c.Images.TagTokens))
		for token, tag := range c.Images.TagTokens {
			token = strings.ToLower(strings.TrimSpace(token))
			tag = strings.TrimSpace(tag)
			if token == "" || tag == "" {
				continue
			}
			tokens[token] = tag
		}
		c.Images.TagTokens = tokens
	}
	return nil
}

func (c *Config) normalizeBundle() error {
	var err error
	if strings.TrimSpace(c.Bundle.OutDir) == "" {
		c.Bundle.OutDir = defaultBundleOutDir
	}
	if c.Bundle.OutDir, err = expandPath(c.Bundle.OutDir); err != nil {
		return fmt.Errorf("bundle.out_dir: %w", err)
	}
	c.Bundle.BaseURL = strings.TrimRight(strings.TrimSpace(c.Bundle.BaseURL), "/")
	if c.Bundle.SizeMB <= 0 {
		c.Bundle.SizeMB = defaultBundleSizeMB
	}
	if c.Bundle.ExcelChunkChars <= 0 {
		c.Bundle.ExcelChunkChars = defaultExcelChunkChars
	}
	if c.Bundle.MaxStory < 0 {
		c.Bundle.MaxStory = 0
	}
	if c.Bundle.MaxExcel < 0 {
		c.Bundle.MaxExcel = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeSuffixes(values []string, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return append([]string{}, fallback...)
	}
	return out
}

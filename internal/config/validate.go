package config

import (
	"errors"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtract(); err != nil {
		return err
	}
	if err := c.validateBundle(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" && (strings.TrimSpace(c.Paths.ExcelDir) == "" || strings.TrimSpace(c.Paths.StoryDir) == "") {
		return errors.New("paths.source_dir must be set unless both paths.excel_dir and paths.story_dir are")
	}
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		return errors.New("paths.out_dir must be set")
	}
	return nil
}

func (c *Config) validateExtract() error {
	if len(c.Extract.ExcelSuffixes) == 0 {
		return errors.New("extract.excel_suffixes must include at least one suffix")
	}
	if len(c.Extract.StorySuffixes) == 0 {
		return errors.New("extract.story_suffixes must include at least one suffix")
	}
	return nil
}

func (c *Config) validateBundle() error {
	if c.Bundle.SizeMB <= 0 {
		return errors.New("bundle.size_mb must be positive")
	}
	if c.Bundle.ExcelChunkChars <= 0 {
		return errors.New("bundle.excel_chunk_chars must be positive")
	}
	return nil
}

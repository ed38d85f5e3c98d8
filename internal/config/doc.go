// Package config loads, normalizes, and validates Almanac configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the environment overrides the CI
// extraction job has always used (EXCEL_SRC, STORY_SRC, OUT_DIR,
// STORY_JSON_WRAPPER). The Config type centralizes every knob the CLI needs,
// allowing source/output directories and suffix filters to be discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

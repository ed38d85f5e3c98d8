// Package storywrap converts mirrored plain-text story files into one JSON
// document each, carrying the raw text and the original relative path. The
// stage is optional; when disabled the story_json tree is never touched.
package storywrap

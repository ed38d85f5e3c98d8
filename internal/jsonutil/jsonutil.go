// Package jsonutil centralizes the JSON formatting every published artifact
// uses: two-space indent, HTML escaping off, trailing newline. Keeping one
// encoder guarantees byte-identical output across runs for identical input.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"os"

	"almanac/internal/fileutil"
)

// Marshal encodes v with the repository's canonical formatting.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile marshals v and writes it atomically to path.
func WriteFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// ReadFile decodes the JSON document at path into v.
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

package bundle

import (
	"sort"
	"strings"
)

// maxExtractedChars caps the string-leaf fallback so a pathological document
// cannot produce an unbounded record.
const maxExtractedChars = 50000

// preferredTextKeys are tried in order on a top-level JSON object before any
// fallback walking happens.
var preferredTextKeys = []string{"text", "content", "body", "value", "message"}

// extractText pulls readable text from a decoded story JSON document.
//
// Order of preference: the first non-empty preferred string field; then the
// concatenated text of rows under a "data" array; then every string leaf in
// the document, joined in key order and capped.
func extractText(doc any) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return capText(collectStringLeaves(doc))
	}

	for _, key := range preferredTextKeys {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	if rows, ok := obj["data"].([]any); ok {
		var parts []string
		for _, row := range rows {
			if text := extractRowText(row); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return capText(strings.Join(parts, "\n"))
		}
	}

	return capText(collectStringLeaves(obj))
}

func extractRowText(row any) string {
	switch v := row.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range preferredTextKeys {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func collectStringLeaves(doc any) string {
	var parts []string
	walkStringLeaves(doc, &parts)
	return strings.Join(parts, "\n")
}

func walkStringLeaves(node any, parts *[]string) {
	switch v := node.(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			*parts = append(*parts, trimmed)
		}
	case []any:
		for _, item := range v {
			walkStringLeaves(item, parts)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			walkStringLeaves(v[key], parts)
		}
	}
}

func capText(text string) string {
	if len(text) <= maxExtractedChars {
		return text
	}
	return text[:maxExtractedChars]
}

// chunkString splits s into pieces of at most size bytes, never splitting a
// UTF-8 rune.
func chunkString(s string, size int) []string {
	if size <= 0 || len(s) <= size {
		return []string{s}
	}
	var chunks []string
	for len(s) > size {
		cut := size
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

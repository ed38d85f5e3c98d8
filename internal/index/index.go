package index

import (
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"almanac/internal/jsonutil"
)

// FileName is the manifest document name written at each indexed root.
const FileName = "index.json"

// CategoryIndex lists every file mirrored for one category.
type CategoryIndex struct {
	Category string   `json:"category"`
	Count    int      `json:"count"`
	Files    []string `json:"files"`
}

// CategoryRef points a consumer from the root index at one category.
type CategoryRef struct {
	Path  string `json:"path"`
	Index string `json:"index"`
	Count int    `json:"count"`
}

// RootIndex is the single entry point a consumer reads to discover what
// exists under latest/.
type RootIndex struct {
	GeneratedAt string                 `json:"generated_at"`
	Categories  map[string]CategoryRef `json:"categories"`
}

// BuildCategory enumerates the files under dir and returns a sorted
// CategoryIndex. The manifest document itself is excluded. A missing dir
// yields an empty index so callers can still publish empty categories.
func BuildCategory(dir, category string) (CategoryIndex, error) {
	idx := CategoryIndex{Category: category, Files: []string{}}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				// Missing category directory: publish it as empty.
				return fs.SkipAll
			}
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == FileName {
			return nil
		}
		idx.Files = append(idx.Files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return CategoryIndex{}, err
	}

	sort.Strings(idx.Files)
	idx.Count = len(idx.Files)
	return idx, nil
}

// WriteCategory writes idx as dir/index.json.
func WriteCategory(dir string, idx CategoryIndex) error {
	return jsonutil.WriteFile(filepath.Join(dir, FileName), idx)
}

// NewRoot builds a RootIndex over the given category indexes. generatedAt is
// rendered UTC RFC3339 so index timestamps sort lexically.
func NewRoot(generatedAt time.Time, categories []CategoryIndex) RootIndex {
	root := RootIndex{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Categories:  make(map[string]CategoryRef, len(categories)),
	}
	for _, idx := range categories {
		root.Categories[idx.Category] = CategoryRef{
			Path:  idx.Category + "/",
			Index: idx.Category + "/" + FileName,
			Count: idx.Count,
		}
	}
	return root
}

// WriteRoot writes root as dir/index.json.
func WriteRoot(dir string, root RootIndex) error {
	return jsonutil.WriteFile(filepath.Join(dir, FileName), root)
}

// ReadRoot loads the root index document under dir.
func ReadRoot(dir string) (RootIndex, error) {
	var root RootIndex
	if err := jsonutil.ReadFile(filepath.Join(dir, FileName), &root); err != nil {
		return RootIndex{}, err
	}
	return root, nil
}

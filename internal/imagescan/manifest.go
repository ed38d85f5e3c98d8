package imagescan

import (
	"os"
	"sort"

	"almanac/internal/jsonutil"
)

// Entry holds the files and tags recorded for one subject.
type Entry struct {
	Files []string `json:"files"`
	Tags  []string `json:"tags"`
}

// Manifest maps subject slugs to their entries.
type Manifest map[string]Entry

// Load reads the manifest at path. A missing file yields an empty manifest.
func Load(path string) (Manifest, error) {
	var m Manifest
	if err := jsonutil.ReadFile(path, &m); err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return nil, err
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Write stores the manifest at path atomically.
func Write(path string, m Manifest) error {
	return jsonutil.WriteFile(path, m)
}

// Merge folds discovered entries into existing ones. File lists are unioned
// with existing order preserved and new files appended sorted; tag sets are
// unioned so hand-added tags survive; entries are never removed. Merge is
// idempotent: merge(merge(a,b), b) == merge(a,b).
func Merge(existing, discovered Manifest) Manifest {
	merged := make(Manifest, len(existing)+len(discovered))
	for slug, entry := range existing {
		merged[slug] = Entry{
			Files: append([]string{}, entry.Files...),
			Tags:  append([]string{}, entry.Tags...),
		}
	}

	slugs := make([]string, 0, len(discovered))
	for slug := range discovered {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		incoming := discovered[slug]
		current, ok := merged[slug]
		if !ok {
			merged[slug] = Entry{
				Files: sortedCopy(incoming.Files),
				Tags:  sortedCopy(incoming.Tags),
			}
			continue
		}
		current.Files = appendMissingSorted(current.Files, incoming.Files)
		current.Tags = appendMissingSorted(current.Tags, incoming.Tags)
		merged[slug] = current
	}
	return merged
}

func sortedCopy(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func appendMissingSorted(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, value := range existing {
		seen[value] = struct{}{}
	}
	var missing []string
	for _, value := range incoming {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		missing = append(missing, value)
	}
	sort.Strings(missing)
	if existing == nil {
		existing = []string{}
	}
	return append(existing, missing...)
}

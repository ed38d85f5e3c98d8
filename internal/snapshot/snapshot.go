package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"almanac/internal/fileutil"
)

// DateFormat keys snapshots by calendar date, sortable lexically.
const DateFormat = "2006-01-02"

const stagingPrefix = ".tmp-"

// Write copies latestDir into releaseRoot/<date> for the given day (UTC),
// replacing any existing snapshot for that date. Returns the snapshot path.
func Write(latestDir, releaseRoot string, day time.Time) (string, error) {
	date := day.UTC().Format(DateFormat)
	target := filepath.Join(releaseRoot, date)
	staged := filepath.Join(releaseRoot, stagingPrefix+date)

	if err := os.MkdirAll(releaseRoot, 0o755); err != nil {
		return "", fmt.Errorf("create release root: %w", err)
	}
	// Residue from an interrupted run is stale by definition.
	if err := os.RemoveAll(staged); err != nil {
		return "", fmt.Errorf("clear stale snapshot staging: %w", err)
	}

	if err := fileutil.CopyTree(latestDir, staged); err != nil {
		_ = os.RemoveAll(staged)
		return "", fmt.Errorf("copy latest tree: %w", err)
	}
	if err := fileutil.SwapDir(staged, target); err != nil {
		_ = os.RemoveAll(staged)
		return "", fmt.Errorf("publish snapshot: %w", err)
	}
	return target, nil
}

// List returns the snapshot dates present under releaseRoot, sorted ascending.
// Staging residue and stray files are ignored.
func List(releaseRoot string) ([]string, error) {
	entries, err := os.ReadDir(releaseRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dates []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), stagingPrefix) {
			continue
		}
		if _, err := time.Parse(DateFormat, entry.Name()); err != nil {
			continue
		}
		dates = append(dates, entry.Name())
	}
	sort.Strings(dates)
	return dates, nil
}

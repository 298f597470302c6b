package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoArtifact is returned when a fetch reported success but left no
	// completed file under the staging stem.
	ErrNoArtifact = errors.New("no staging artifact found")

	// ErrAmbiguousArtifact is returned when more than one completed file
	// matches the staging stem.
	ErrAmbiguousArtifact = errors.New("multiple staging artifacts found")
)

// transientExts are in-progress droppings of the fetch tool, never the
// finished artifact.
var transientExts = map[string]bool{
	".part": true,
	".ytdl": true,
}

// LocateArtifact finds the single completed file written under stem.
// Partial-download files are ignored; after that exactly one match is the
// contract — zero yields ErrNoArtifact, several yield ErrAmbiguousArtifact.
func LocateArtifact(stem string) (string, error) {
	dir := filepath.Dir(stem)
	prefix := filepath.Base(stem) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if transientExts[filepath.Ext(e.Name())] {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w under %s", ErrNoArtifact, stem)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w under %s: %d candidates", ErrAmbiguousArtifact, stem, len(found))
	}
}

// RemoveStaging deletes everything written under stem, partial files
// included. Best effort: undeletable files are skipped. Returns the number
// of files removed.
func RemoveStaging(stem string) int {
	dir := filepath.Dir(stem)
	base := filepath.Base(stem)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), base) {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}

// SweepOrphans removes staging leftovers in dir from previous runs that
// ended abnormally. A missing dir is not an error.
func SweepOrphans(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("scanning %s: %w", dir, err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".tmp") && !strings.Contains(name, ".tmp.") {
			continue
		}
		if os.Remove(filepath.Join(dir, name)) == nil {
			removed++
		}
	}
	return removed, nil
}

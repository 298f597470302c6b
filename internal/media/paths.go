// Package media resolves where downloaded items land on disk: final output
// names, collision handling, and the staging areas external tools write into.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OutputName builds the final file name for an item. Batch members carry a
// 1-based ordinal that becomes a zero-padded prefix so playlist order
// survives lexicographic sorting; ordinal 0 means a standalone item with no
// prefix.
func OutputName(title string, ordinal int, ext string) string {
	if ordinal > 0 {
		return fmt.Sprintf("%02d_%s.%s", ordinal, title, ext)
	}
	return fmt.Sprintf("%s.%s", title, ext)
}

// OutputPath joins dir and OutputName.
func OutputPath(dir, title string, ordinal int, ext string) string {
	return filepath.Join(dir, OutputName(title, ordinal, ext))
}

// ResolveCollision returns path unchanged when nothing exists there,
// otherwise a variant with a unix timestamp appended to the stem. The check
// is not atomic; a single process owns the output directory during a run.
func ResolveCollision(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%d%s", stem, time.Now().Unix(), ext)
}

// StagingStem returns the extension-less staging path for base inside dir.
// Fetch tools append their own extension to it, so every intermediate file
// an item produces shares this prefix.
func StagingStem(dir, base string) string {
	return filepath.Join(dir, base+".tmp")
}

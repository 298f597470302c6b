// Package history keeps the durable record of finished downloads: a
// newest-first JSON log capped at a fixed number of entries.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxEntries bounds the log; older entries fall off the end on every write.
const MaxEntries = 100

// Entry is one recorded batch.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Output    string    `json:"output"`
	Mode      string    `json:"mode"`
}

// Store reads and writes the history file. Writers within the process are
// serialized by a mutex; nothing guards against other processes, the file
// is owned by a single interactive session at a time.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Record prepends e and rewrites the file, keeping at most MaxEntries. A
// missing or corrupt file is treated as an empty log; history is not worth
// refusing a download over.
func (s *Store) Record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries = append([]Entry{e}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating history dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 returns
// everything.
func (s *Store) List(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (s *Store) load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

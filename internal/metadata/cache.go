// Package metadata resolves item info through yt-dlp, caching probe
// results so re-runs and previews don't hammer the tool. The cache is
// disposable derived state; deleting it only costs probe time.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS probe_cache (
	url TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_probe_cache_expires_at ON probe_cache(expires_at);
`

// Cache is a SQLite-backed TTL cache of probe payloads keyed by URL.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	c, err := NewCache(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewCache wraps an open database, ensuring the schema exists.
func NewCache(db *sql.DB) (*Cache, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensuring cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get retrieves the cached payload for url.
// Returns nil, false if not found or expired.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, bool) {
	var payload string
	var expiresAt time.Time

	err := c.db.QueryRowContext(ctx,
		"SELECT payload, expires_at FROM probe_cache WHERE url = ?", url,
	).Scan(&payload, &expiresAt)

	if err != nil || time.Now().After(expiresAt) {
		return nil, false
	}
	return []byte(payload), true
}

// Set stores a payload for url with the given TTL.
func (c *Cache) Set(ctx context.Context, url string, payload []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO probe_cache (url, payload, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		url, string(payload), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Prune removes all expired entries.
// Returns the number of entries removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM probe_cache WHERE expires_at < ?", time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}

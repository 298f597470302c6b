package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ytmv/ytmv/internal/download"
)

// Client is the slice of the yt-dlp client the resolver needs.
type Client interface {
	// Probe fetches full item info.
	Probe(ctx context.Context, url string) (*download.Info, error)
	// Title fetches only the title, the cheap degraded tier.
	Title(ctx context.Context, url string) (string, error)
}

// Resolver answers info lookups from the cache when it can and from the
// tool when it must. A failed full probe degrades to a title-only lookup
// before giving up, so a flaky metadata endpoint doesn't sink an item that
// could still download fine.
type Resolver struct {
	client Client
	cache  *Cache // nil disables caching
	ttl    time.Duration
	log    *slog.Logger
}

func NewResolver(client Client, cache *Cache, ttl time.Duration, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		client: client,
		cache:  cache,
		ttl:    ttl,
		log:    log.With("component", "metadata"),
	}
}

// Probe resolves info for url, implementing download.Prober.
func (r *Resolver) Probe(ctx context.Context, url string) (*download.Info, error) {
	if r.cache != nil {
		if payload, ok := r.cache.Get(ctx, url); ok {
			var info download.Info
			if err := json.Unmarshal(payload, &info); err == nil {
				r.log.Debug("probe cache hit", "url", url)
				return &info, nil
			}
			// Undecodable rows are stale format; fall through to a fresh probe.
		}
	}

	info, err := r.client.Probe(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		r.log.Warn("full probe failed, trying title-only lookup", "url", url, "error", err)
		title, terr := r.client.Title(ctx, url)
		if terr != nil {
			return nil, fmt.Errorf("resolving %s: %w", url, err)
		}
		// Degraded results are not cached; the next lookup deserves
		// another shot at the full probe.
		return &download.Info{Title: title}, nil
	}

	if r.cache != nil {
		if payload, err := json.Marshal(info); err == nil {
			if err := r.cache.Set(ctx, url, payload, r.ttl); err != nil {
				r.log.Warn("probe cache write failed", "url", url, "error", err)
			}
		}
	}
	return info, nil
}

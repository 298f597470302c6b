package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ytmv/ytmv/internal/config"
	"github.com/ytmv/ytmv/internal/download"
	"github.com/ytmv/ytmv/internal/ffmpeg"
	"github.com/ytmv/ytmv/internal/history"
	"github.com/ytmv/ytmv/internal/media"
	"github.com/ytmv/ytmv/internal/metadata"
	"github.com/ytmv/ytmv/internal/runner"
	"github.com/ytmv/ytmv/internal/ytdlp"
)

// deps holds the wired collaborators for one invocation.
type deps struct {
	ytdlp    *ytdlp.Client
	ffmpeg   *ffmpeg.Converter
	resolver *metadata.Resolver
	history  *history.Store
	cache    *metadata.Cache
}

func newDeps(cfg *config.Config, logger *slog.Logger) *deps {
	run := runner.ExecRunner{}
	client := ytdlp.NewClient(cfg.Tools.Ytdlp, run, cfg.Batch.MaxRetries, logger)
	converter := ffmpeg.NewConverter(cfg.Tools.Ffmpeg, run, cfg.Batch.MaxRetries, logger)

	var cache *metadata.Cache
	if cfg.Cache.Enabled {
		c, err := metadata.Open(cfg.Cache.Path)
		if err != nil {
			// The cache only saves probe time; never refuse to run over it.
			logger.Warn("probe cache unavailable", "path", cfg.Cache.Path, "error", err)
		} else {
			cache = c
		}
	}
	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	resolver := metadata.NewResolver(client, cache, ttl, logger)

	return &deps{
		ytdlp:    client,
		ffmpeg:   converter,
		resolver: resolver,
		history:  history.NewStore(cfg.History.Path),
		cache:    cache,
	}
}

func (d *deps) Close() {
	if d.cache != nil {
		d.cache.Close()
	}
}

// runBatch drives the orchestrator and renders per-item progress lines.
func runBatch(ctx context.Context, logger *slog.Logger, deps *deps, items []download.Item, opts download.Options) error {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if swept, err := media.SweepOrphans(opts.OutputDir); err != nil {
		logger.Warn("staging sweep failed", "error", err)
	} else if swept > 0 {
		logger.Info("removed stale staging files", "count", swept)
	}
	if deps.cache != nil {
		if _, err := deps.cache.Prune(ctx); err != nil {
			logger.Warn("cache prune failed", "error", err)
		}
	}

	worker := download.NewWorker(deps.resolver, deps.ytdlp, deps.ffmpeg, logger)
	batch := download.NewBatch(worker, historyRecorder{deps.history}, logger)
	batch.OnProgress(func(p download.Progress) {
		mark := "✓"
		if !p.Outcome.Success() {
			mark = "✗"
		}
		fmt.Printf("[%d/%d] %s %s\n", p.Completed, p.Total, mark, p.Outcome.Title)
	})

	fmt.Println()
	outcomes := batch.Run(ctx, items, opts)
	if ctx.Err() != nil {
		return context.Canceled
	}

	var failed []string
	done := 0
	for _, o := range outcomes {
		switch o.Status {
		case download.StatusDone:
			done++
		case download.StatusFailed:
			failed = append(failed, o.Title)
		}
	}

	fmt.Printf("\nDone: %d of %d downloaded to %s\n", done, len(outcomes), opts.OutputDir)
	if len(failed) > 0 {
		fmt.Printf("Failed (%d):\n", len(failed))
		for _, title := range failed {
			fmt.Printf("  - %s\n", title)
		}
		return fmt.Errorf("%d of %d downloads failed", len(failed), len(outcomes))
	}
	return nil
}

// historyRecorder adapts the history store to the orchestrator's port.
type historyRecorder struct {
	store *history.Store
}

func (r historyRecorder) Record(rec download.BatchRecord) error {
	return r.store.Record(history.Entry{
		Timestamp: time.Now(),
		URL:       rec.URL,
		Title:     rec.Title,
		Output:    rec.Output,
		Mode:      rec.Mode,
	})
}

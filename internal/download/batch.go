package download

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Processor turns one item into a terminal outcome. *Worker is the
// production implementation.
type Processor interface {
	Process(ctx context.Context, item Item, opts Options) Outcome
}

// Progress reports one completed item. Callbacks are serialized, so
// Completed increases monotonically from the observer's point of view.
type Progress struct {
	BatchID   string
	Completed int
	Total     int
	Outcome   Outcome
}

// Batch fans items out to a bounded worker pool, aggregates outcomes, and
// records one history entry per run.
type Batch struct {
	proc       Processor
	recorder   Recorder
	log        *slog.Logger
	onProgress func(Progress)
}

func NewBatch(proc Processor, recorder Recorder, logger *slog.Logger) *Batch {
	return &Batch{
		proc:     proc,
		recorder: recorder,
		log:      logger.With("component", "batch"),
	}
}

// OnProgress registers a callback fired once per completed item. Register
// before calling Run.
func (b *Batch) OnProgress(fn func(Progress)) {
	b.onProgress = fn
}

// Run processes the range-filtered items under opts and returns one outcome
// per scheduled item, in item order. A failing item never stops its
// siblings; canceling ctx drains the batch with canceled outcomes. The
// aggregate history entry is recorded exactly once per call, whatever the
// outcomes.
func (b *Batch) Run(ctx context.Context, items []Item, opts Options) []Outcome {
	id := uuid.NewString()
	log := b.log.With("batch_id", id)

	selected := clampRange(items, opts.RangeStart, opts.RangeEnd)
	total := len(selected)

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	log.Info("batch started",
		"source", opts.SourceURL,
		"mode", opts.Mode,
		"items", total,
		"of", len(items),
		"concurrency", concurrency)

	outcomes := make([]Outcome, total)

	var mu sync.Mutex
	completed := 0
	notify := func(out Outcome) {
		mu.Lock()
		defer mu.Unlock()
		completed++
		if b.onProgress != nil {
			b.onProgress(Progress{BatchID: id, Completed: completed, Total: total, Outcome: out})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range selected {
		i, item := i, item
		g.Go(func() error {
			out := b.proc.Process(gctx, item, opts)
			outcomes[i] = out
			notify(out)
			return nil // failures live in outcomes, never cancel the group
		})
	}
	_ = g.Wait()

	if b.recorder != nil {
		rec := aggregate(selected, outcomes, opts)
		if err := b.recorder.Record(rec); err != nil {
			log.Error("history record failed", "error", err)
		}
	}

	log.Info("batch finished",
		"done", countStatus(outcomes, StatusDone),
		"failed", countStatus(outcomes, StatusFailed),
		"canceled", countStatus(outcomes, StatusCanceled))
	return outcomes
}

// clampRange selects the 1-based inclusive [start, end] slice of items.
// Zero bounds mean unset; out-of-range bounds are clamped; an inverted
// range selects nothing.
func clampRange(items []Item, start, end int) []Item {
	if len(items) == 0 {
		return nil
	}
	if start < 1 {
		start = 1
	}
	if end < 1 || end > len(items) {
		end = len(items)
	}
	if start > end {
		return nil
	}
	return items[start-1 : end]
}

// aggregate summarizes a run as a single history record: a lone item keeps
// its own title and output path, anything else is recorded as a playlist
// against the output directory.
func aggregate(selected []Item, outcomes []Outcome, opts Options) BatchRecord {
	if len(selected) == 1 {
		return BatchRecord{
			URL:    opts.SourceURL,
			Title:  outcomes[0].Title,
			Output: outcomes[0].OutputPath,
			Mode:   string(opts.Mode),
		}
	}
	return BatchRecord{
		URL:    opts.SourceURL,
		Title:  fmt.Sprintf("Playlist (%d items)", len(selected)),
		Output: opts.OutputDir,
		Mode:   "playlist_" + string(opts.Mode),
	}
}

func countStatus(outcomes []Outcome, s Status) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

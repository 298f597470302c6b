package download

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProcess = errors.New("processing blew up")

// fakeProcessor returns canned outcomes and tracks pool pressure.
type fakeProcessor struct {
	mu       sync.Mutex
	inflight int
	maxSeen  int
	delay    time.Duration
	fail     map[string]bool
}

func (f *fakeProcessor) Process(ctx context.Context, item Item, opts Options) Outcome {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxSeen {
		f.maxSeen = f.inflight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	if ctx.Err() != nil {
		return Outcome{Item: item, Title: item.Title, Status: StatusCanceled, Err: ctx.Err()}
	}
	if f.fail[item.URL] {
		return Outcome{Item: item, Title: item.Title, Status: StatusFailed, Err: errProcess}
	}
	return Outcome{Item: item, Title: item.Title, OutputPath: "/out/" + item.Title, Status: StatusDone}
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []BatchRecord
	err     error
}

func (f *fakeRecorder) Record(rec BatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return f.err
}

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			URL:     fmt.Sprintf("https://v.example/watch?v=%d", i+1),
			Title:   fmt.Sprintf("item %d", i+1),
			Ordinal: i + 1,
		}
	}
	return items
}

func batchOpts() Options {
	return Options{
		Mode:        ModeAudio,
		AudioFormat: "m4a",
		OutputDir:   "/out",
		SourceURL:   "https://v.example/playlist?list=p1",
		Concurrency: 3,
		MaxRetries:  3,
	}
}

func TestBatchRunHappyPath(t *testing.T) {
	proc := &fakeProcessor{delay: 5 * time.Millisecond}
	rec := &fakeRecorder{}
	b := NewBatch(proc, rec, testLogger())

	items := makeItems(5)
	outcomes := b.Run(context.Background(), items, batchOpts())

	require.Len(t, outcomes, 5)
	for i, out := range outcomes {
		assert.True(t, out.Success(), "item %d: %+v", i, out)
		assert.Equal(t, items[i].URL, out.Item.URL, "outcomes must keep item order")
	}

	require.Len(t, rec.records, 1)
	assert.Equal(t, BatchRecord{
		URL:    "https://v.example/playlist?list=p1",
		Title:  "Playlist (5 items)",
		Output: "/out",
		Mode:   "playlist_audio",
	}, rec.records[0])
}

func TestBatchConcurrencyBound(t *testing.T) {
	proc := &fakeProcessor{delay: 20 * time.Millisecond}
	b := NewBatch(proc, &fakeRecorder{}, testLogger())

	opts := batchOpts()
	opts.Concurrency = 3
	outcomes := b.Run(context.Background(), makeItems(10), opts)

	require.Len(t, outcomes, 10)
	assert.LessOrEqual(t, proc.maxSeen, 3, "pool must never exceed the concurrency limit")
}

func TestBatchFailuresAreIsolated(t *testing.T) {
	items := makeItems(6)
	proc := &fakeProcessor{fail: map[string]bool{
		items[1].URL: true,
		items[4].URL: true,
	}}
	rec := &fakeRecorder{}
	b := NewBatch(proc, rec, testLogger())

	outcomes := b.Run(context.Background(), items, batchOpts())

	require.Len(t, outcomes, 6)
	assert.Equal(t, 4, countStatus(outcomes, StatusDone))
	assert.Equal(t, 2, countStatus(outcomes, StatusFailed))
	assert.ErrorIs(t, outcomes[1].Err, errProcess)
	assert.Len(t, rec.records, 1, "history is recorded once regardless of failures")
}

func TestBatchSingleItemRecord(t *testing.T) {
	proc := &fakeProcessor{}
	rec := &fakeRecorder{}
	b := NewBatch(proc, rec, testLogger())

	items := makeItems(1)
	items[0].Ordinal = 0
	opts := batchOpts()
	opts.SourceURL = items[0].URL

	outcomes := b.Run(context.Background(), items, opts)
	require.Len(t, outcomes, 1)

	require.Len(t, rec.records, 1)
	assert.Equal(t, BatchRecord{
		URL:    items[0].URL,
		Title:  "item 1",
		Output: "/out/item 1",
		Mode:   "audio",
	}, rec.records[0])
}

func TestBatchRangeFilter(t *testing.T) {
	proc := &fakeProcessor{}
	rec := &fakeRecorder{}
	b := NewBatch(proc, rec, testLogger())

	opts := batchOpts()
	opts.RangeStart = 3
	opts.RangeEnd = 6
	outcomes := b.Run(context.Background(), makeItems(10), opts)

	require.Len(t, outcomes, 4)
	for i, out := range outcomes {
		assert.Equal(t, i+3, out.Item.Ordinal, "ordinals must refer to original positions")
	}
	require.Len(t, rec.records, 1)
	assert.Equal(t, "Playlist (4 items)", rec.records[0].Title)
}

func TestBatchEmptySelectionStillRecords(t *testing.T) {
	proc := &fakeProcessor{}
	rec := &fakeRecorder{}
	b := NewBatch(proc, rec, testLogger())

	opts := batchOpts()
	opts.RangeStart = 7
	opts.RangeEnd = 3
	outcomes := b.Run(context.Background(), makeItems(10), opts)

	assert.Empty(t, outcomes)
	require.Len(t, rec.records, 1)
	assert.Equal(t, "Playlist (0 items)", rec.records[0].Title)
}

func TestClampRange(t *testing.T) {
	items := makeItems(10)

	tests := []struct {
		name       string
		start, end int
		wantFirst  int // ordinal of first selected item, 0 = empty
		wantLen    int
	}{
		{"unset", 0, 0, 1, 10},
		{"head", 0, 3, 1, 3},
		{"tail", 8, 0, 8, 3},
		{"clamped both ends", -5, 99, 1, 10},
		{"inner window", 4, 6, 4, 3},
		{"single", 5, 5, 5, 1},
		{"inverted", 7, 3, 0, 0},
		{"start beyond end of list", 11, 12, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampRange(items, tt.start, tt.end)
			require.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, got[0].Ordinal)
			}
		})
	}

	assert.Nil(t, clampRange(nil, 1, 5))
}

func TestBatchProgressEvents(t *testing.T) {
	proc := &fakeProcessor{delay: 2 * time.Millisecond}
	b := NewBatch(proc, &fakeRecorder{}, testLogger())

	var events []Progress
	b.OnProgress(func(p Progress) {
		// Callbacks are serialized by the orchestrator.
		events = append(events, p)
	})

	opts := batchOpts()
	opts.Concurrency = 2
	outcomes := b.Run(context.Background(), makeItems(5), opts)

	require.Len(t, outcomes, 5)
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Completed, "completed count must be monotonic")
		assert.Equal(t, 5, ev.Total)
		assert.NotEmpty(t, ev.BatchID)
		assert.Equal(t, events[0].BatchID, ev.BatchID)
	}
}

// blockingProcessor completes one item per token in release; without a
// token it blocks until cancellation.
type blockingProcessor struct {
	release chan struct{}
}

func (p *blockingProcessor) Process(ctx context.Context, item Item, opts Options) Outcome {
	select {
	case <-p.release:
		return Outcome{Item: item, Title: item.Title, OutputPath: "/out/" + item.Title, Status: StatusDone}
	case <-ctx.Done():
		return Outcome{Item: item, Title: item.Title, Status: StatusCanceled, Err: ctx.Err()}
	}
}

func TestBatchCancellationDrains(t *testing.T) {
	proc := &blockingProcessor{release: make(chan struct{}, 4)}
	rec := &fakeRecorder{}
	b := NewBatch(proc, rec, testLogger())

	prog := make(chan Progress, 4)
	b.OnProgress(func(p Progress) { prog <- p })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := batchOpts()
	opts.Concurrency = 2

	results := make(chan []Outcome, 1)
	go func() { results <- b.Run(ctx, makeItems(4), opts) }()

	// Two tokens: exactly two items can complete, then the interrupt hits.
	proc.release <- struct{}{}
	proc.release <- struct{}{}
	<-prog
	<-prog
	cancel()

	outcomes := <-results
	require.Len(t, outcomes, 4, "every scheduled item must yield an outcome")
	assert.Equal(t, 2, countStatus(outcomes, StatusDone))
	assert.Equal(t, 2, countStatus(outcomes, StatusCanceled))
	assert.Zero(t, countStatus(outcomes, StatusFailed))
	assert.Len(t, rec.records, 1, "history is recorded exactly once even when canceled")
}

func TestBatchRecorderFailureDoesNotBreakRun(t *testing.T) {
	proc := &fakeProcessor{}
	rec := &fakeRecorder{err: errors.New("disk full")}
	b := NewBatch(proc, rec, testLogger())

	outcomes := b.Run(context.Background(), makeItems(3), batchOpts())
	require.Len(t, outcomes, 3)
	assert.Equal(t, 3, countStatus(outcomes, StatusDone))
}

func TestBatchNilRecorder(t *testing.T) {
	b := NewBatch(&fakeProcessor{}, nil, testLogger())
	outcomes := b.Run(context.Background(), makeItems(2), batchOpts())
	assert.Len(t, outcomes, 2)
}

// Package download turns remote media items into finished local files. A
// worker drives each item through info resolution, staged fetching, and
// conversion; a batch orchestrator fans items out to a bounded pool and
// aggregates their outcomes.
package download

import (
	"context"
)

// Mode selects the target artifact class.
type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// Item is one unit of work in a batch.
type Item struct {
	URL     string
	Title   string // known up front for playlist entries, may be empty
	Ordinal int    // 1-based position in the source listing; 0 for standalone items
}

// Info is what the probe step learns about an item.
type Info struct {
	Title       string
	Duration    int // seconds
	Uploader    string
	Thumbnail   string // remote URL
	Description string
}

// Options configures a batch run. Loaded once per invocation and never
// mutated mid-batch.
type Options struct {
	Mode         Mode
	VideoQuality string // "best" or a height cap like "1080"
	AudioQuality string // bitrate, e.g. "192k"
	AudioFormat  string // m4a, mp3, flac, opus
	OutputDir    string
	SourceURL    string // the URL the batch was built from
	CookiesFile  string
	Thumbnails   bool
	Subtitles    bool
	SubtitleLang string // language code, or "auto" for generated subs
	RangeStart   int    // 1-based inclusive, 0 = from the beginning
	RangeEnd     int    // 1-based inclusive, 0 = to the end
	Concurrency  int    // parallel workers, minimum 1
	MaxRetries   int    // attempts per external command
}

// Outcome is the terminal result of one item. Status is always one of
// StatusDone, StatusFailed, StatusCanceled.
type Outcome struct {
	Item       Item
	Title      string // resolved display title
	OutputPath string // set only on success
	Status     Status
	Err        error // set unless StatusDone
}

// Success reports whether the item produced its final file.
func (o Outcome) Success() bool { return o.Status == StatusDone }

// FetchSpec tells the fetch collaborator what to produce under a staging
// stem.
type FetchSpec struct {
	Mode         Mode
	VideoQuality string
	CookiesFile  string
	StagingStem  string // extension-less path the tool writes under
}

// ConvertSpec tells the convert collaborator how to produce the final
// artifact.
type ConvertSpec struct {
	Mode          Mode
	AudioFormat   string
	AudioQuality  string
	VideoQuality  string
	Title         string
	Uploader      string
	ThumbnailPath string // local image to embed, optional
}

// BatchRecord is the aggregate history line for one finished batch.
type BatchRecord struct {
	URL    string
	Title  string
	Output string
	Mode   string
}

// Prober resolves item info before fetching.
type Prober interface {
	Probe(ctx context.Context, url string) (*Info, error)
}

// Fetcher downloads media and side assets into staging paths.
type Fetcher interface {
	// Fetch downloads the item under spec.StagingStem.
	Fetch(ctx context.Context, url string, spec FetchSpec) error
	// Thumbnail downloads the item's cover image next to destStem and
	// returns the resulting path.
	Thumbnail(ctx context.Context, url, destStem string) (string, error)
	// Subtitles downloads subtitle files next to destStem.
	Subtitles(ctx context.Context, url, destStem, lang string) error
}

// Converter produces the final artifact from a staged one.
type Converter interface {
	Convert(ctx context.Context, src, dst string, spec ConvertSpec) error
}

// Recorder persists one aggregate entry per finished batch.
type Recorder interface {
	Record(rec BatchRecord) error
}

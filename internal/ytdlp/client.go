// Package ytdlp drives the yt-dlp executable: metadata probes, playlist
// listings, and media fetches into staging paths. The tool is treated as a
// black box reached only through its command line.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytmv/ytmv/internal/download"
	"github.com/ytmv/ytmv/internal/runner"
)

var (
	// ErrToolMissing is returned by Check when the executable cannot be run.
	ErrToolMissing = errors.New("yt-dlp not available")

	// ErrNoThumbnail is returned when a thumbnail download leaves no image.
	ErrNoThumbnail = errors.New("no thumbnail produced")

	// ErrNoSubtitles is returned when a subtitle download leaves no track.
	ErrNoSubtitles = errors.New("no subtitle file produced")
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

var subtitleExts = map[string]bool{
	".vtt": true, ".srt": true,
}

// Client invokes yt-dlp. Probes, listings, and fetches go through a
// retrying runner; side-channel downloads get a single best-effort attempt.
type Client struct {
	bin     string
	run     runner.Runner
	retries int
	log     *slog.Logger
}

// NewClient creates a client for the executable at bin. retries is the
// attempt ceiling for retried commands.
func NewClient(bin string, run runner.Runner, retries int, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		bin:     bin,
		run:     run,
		retries: retries,
		log:     log.With("component", "ytdlp"),
	}
}

func (c *Client) withRetry() runner.Retry {
	return runner.Retry{Runner: c.run, Attempts: c.retries, Log: c.log}
}

// Check verifies the executable responds. Run it before any batch work;
// a missing tool is a startup failure, not a per-item one.
func (c *Client) Check(ctx context.Context) error {
	if err := c.run.Run(ctx, c.bin, "--version"); err != nil {
		return fmt.Errorf("%w at %q: %v", ErrToolMissing, c.bin, err)
	}
	return nil
}

// probeJSON is the subset of yt-dlp's JSON dump we use.
type probeJSON struct {
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail"`
	Uploader    string  `json:"uploader"`
	Description string  `json:"description"`
}

// Probe fetches full item info.
func (c *Client) Probe(ctx context.Context, url string) (*download.Info, error) {
	out, err := c.withRetry().Output(ctx, c.bin, "--dump-json", "--no-warnings", url)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", url, err)
	}

	var data probeJSON
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, fmt.Errorf("parsing probe output for %s: %w", url, err)
	}
	return &download.Info{
		Title:       data.Title,
		Duration:    int(data.Duration),
		Thumbnail:   data.Thumbnail,
		Uploader:    data.Uploader,
		Description: data.Description,
	}, nil
}

// Title fetches only the item title, the cheap degraded tier when a full
// probe keeps failing. Single attempt.
func (c *Client) Title(ctx context.Context, url string) (string, error) {
	out, err := c.run.Output(ctx, c.bin, "--get-title", "--no-warnings", url)
	if err != nil {
		return "", fmt.Errorf("fetching title of %s: %w", url, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// flatEntry is one line of a --flat-playlist dump.
type flatEntry struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Playlist lists playlist entries without resolving each one. Ordinals are
// 1-based listing positions; bare video IDs are expanded to watch URLs.
func (c *Client) Playlist(ctx context.Context, url string) ([]download.Item, error) {
	out, err := c.withRetry().Output(ctx, c.bin, "--dump-json", "--flat-playlist", "--no-warnings", url)
	if err != nil {
		return nil, fmt.Errorf("listing playlist %s: %w", url, err)
	}

	var items []download.Item
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e flatEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing playlist entry %d: %w", len(items)+1, err)
		}
		item := download.Item{
			URL:     watchURL(e),
			Title:   e.Title,
			Ordinal: len(items) + 1,
		}
		if item.Title == "" {
			item.Title = fmt.Sprintf("Video %d", item.Ordinal)
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading playlist listing: %w", err)
	}

	c.log.Debug("playlist listed", "url", url, "entries", len(items))
	return items, nil
}

func watchURL(e flatEntry) string {
	u := e.URL
	if u == "" {
		u = e.ID
	}
	if u != "" && !strings.HasPrefix(u, "http") {
		u = "https://www.youtube.com/watch?v=" + u
	}
	return u
}

// Fetch downloads url under spec.StagingStem, letting the tool pick its
// own container extension.
func (c *Client) Fetch(ctx context.Context, url string, spec download.FetchSpec) error {
	args := []string{
		"-f", FormatSelector(spec.Mode, spec.VideoQuality),
		"-o", spec.StagingStem + ".%(ext)s",
		"--newline",
		"--no-playlist",
	}
	if spec.CookiesFile != "" {
		args = append(args, "--cookies", spec.CookiesFile)
	}
	args = append(args, url)

	if err := c.withRetry().Run(ctx, c.bin, args...); err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	return nil
}

// FormatSelector maps mode and quality onto a yt-dlp format expression.
func FormatSelector(mode download.Mode, videoQuality string) string {
	if mode == download.ModeAudio {
		return "bestaudio/best"
	}
	if videoQuality == "" || videoQuality == "best" {
		return "bestvideo+bestaudio/best"
	}
	return fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best[height<=%s]", videoQuality, videoQuality)
}

// Thumbnail downloads the cover image next to destStem and normalizes it
// to destStem.jpg. Single attempt; callers treat failures as advisory.
func (c *Client) Thumbnail(ctx context.Context, url, destStem string) (string, error) {
	err := c.run.Run(ctx, c.bin, "--write-thumbnail", "--skip-download", "-o", destStem, url)
	if err != nil {
		return "", fmt.Errorf("fetching thumbnail for %s: %w", url, err)
	}

	found, err := findByExt(destStem, imageExts)
	if err != nil {
		return "", fmt.Errorf("%w for %s", ErrNoThumbnail, url)
	}
	want := destStem + ".jpg"
	if found != want {
		if err := os.Rename(found, want); err != nil {
			return "", fmt.Errorf("normalizing thumbnail name: %w", err)
		}
	}
	return want, nil
}

// Subtitles downloads subtitle files next to destStem. lang "auto" pulls
// auto-generated captions in every language.
func (c *Client) Subtitles(ctx context.Context, url, destStem, lang string) error {
	args := []string{"--write-subs"}
	if lang == "auto" {
		args = append(args, "--write-auto-subs", "--sub-lang", "all")
	} else {
		args = append(args, "--sub-lang", lang)
	}
	args = append(args, "--skip-download", "-o", destStem, url)

	if err := c.run.Run(ctx, c.bin, args...); err != nil {
		return fmt.Errorf("fetching subtitles for %s: %w", url, err)
	}
	if _, err := findByExt(destStem, subtitleExts); err != nil {
		return fmt.Errorf("%w for %s", ErrNoSubtitles, url)
	}
	return nil
}

// findByExt returns the first file next to stem whose extension is in
// exts. Directory order is lexicographic, so the pick is deterministic.
func findByExt(stem string, exts map[string]bool) (string, error) {
	dir := filepath.Dir(stem)
	prefix := filepath.Base(stem) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(e.Name()))] {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}

// IsPlaylistURL reports whether url names a playlist rather than a single
// item.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, "list=") || strings.Contains(url, "playlist?")
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytmv/ytmv/internal/config"
	"github.com/ytmv/ytmv/internal/download"
	"github.com/ytmv/ytmv/internal/ytdlp"
)

var videoQualities = []string{"best", "2160", "1440", "1080", "720", "480"}
var audioFormats = []string{"m4a", "mp3", "flac", "opus"}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)

	deps := newDeps(cfg, logger)
	defer deps.Close()

	// A missing tool should surface before the user answers ten prompts.
	if err := deps.ytdlp.Check(ctx); err != nil {
		return err
	}
	if err := deps.ffmpeg.Check(ctx); err != nil {
		return err
	}

	url := ""
	if len(args) == 1 {
		url = args[0]
	} else {
		fmt.Printf("ytmv %s\n\n", version)
		url = promptRequired("Video or playlist URL")
	}

	items, err := buildItems(cmd, deps, url)
	if err != nil {
		return err
	}

	opts := download.Options{
		SourceURL:    url,
		VideoQuality: cfg.Quality.Video,
		AudioQuality: cfg.Quality.Audio,
		AudioFormat:  cfg.Quality.AudioFormat,
		SubtitleLang: cfg.Extras.SubtitleLang,
		Concurrency:  cfg.Batch.Parallel,
		MaxRetries:   cfg.Batch.MaxRetries,
	}

	fmt.Println()
	if promptChoice("Download as:", []string{"video", "audio"}, 0) == "video" {
		opts.Mode = download.ModeVideo
		opts.VideoQuality = promptChoice("Maximum video quality:", videoQualities, indexOf(videoQualities, cfg.Quality.Video))
	} else {
		opts.Mode = download.ModeAudio
		opts.AudioFormat = promptChoice("Audio format:", audioFormats, indexOf(audioFormats, cfg.Quality.AudioFormat))
		opts.AudioQuality = promptWithDefault("Audio bitrate", cfg.Quality.Audio)
	}

	opts.Thumbnails = promptYesNo("Download thumbnails?", cfg.Extras.Thumbnails)
	if opts.Mode == download.ModeVideo {
		opts.Subtitles = promptYesNo("Download subtitles?", cfg.Extras.Subtitles)
		if opts.Subtitles {
			opts.SubtitleLang = promptWithDefault(`Subtitle language (code, or "auto")`, cfg.Extras.SubtitleLang)
		}
	}

	if len(items) > 1 && !promptYesNo(fmt.Sprintf("Download all %d items?", len(items)), true) {
		opts.RangeStart = promptInt("First item", 1)
		opts.RangeEnd = promptInt("Last item", len(items))
	}

	defaultDir := cfg.Output.VideoDir
	dirKey := "output.video_dir"
	if opts.Mode == download.ModeAudio {
		defaultDir = cfg.Output.AudioDir
		dirKey = "output.audio_dir"
	}
	opts.OutputDir = promptWithDefault("Output directory", defaultDir)
	if opts.OutputDir != defaultDir && promptYesNo("Save as default output directory?", false) {
		if err := saveDefaultDir(cfg, dirKey, opts.OutputDir); err != nil {
			fmt.Printf("  could not save default: %v\n", err)
		}
	}

	if cookies := promptWithDefault("Cookies file (blank for none)", ""); cookies != "" {
		opts.CookiesFile = cookies
	}

	printSummary(items, opts)
	if !promptYesNo("Start download?", true) {
		fmt.Println("Aborted")
		return nil
	}

	return runBatch(ctx, logger, deps, items, opts)
}

// buildItems turns the URL into the ordered work list and prints a short
// preview so the user can bail out of a wrong paste early.
func buildItems(cmd *cobra.Command, deps *deps, url string) ([]download.Item, error) {
	ctx := cmd.Context()

	if ytdlp.IsPlaylistURL(url) {
		items, err := deps.ytdlp.Playlist(ctx, url)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("playlist %s has no entries", url)
		}
		fmt.Printf("\nPlaylist with %d items:\n", len(items))
		for _, item := range items {
			if item.Ordinal > 5 {
				fmt.Printf("  ... and %d more\n", len(items)-5)
				break
			}
			fmt.Printf("  %2d. %s\n", item.Ordinal, item.Title)
		}
		return items, nil
	}

	item := download.Item{URL: url}
	info, err := deps.resolver.Probe(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		fmt.Println("\nCould not fetch info, continuing anyway")
	} else {
		item.Title = info.Title
		fmt.Printf("\nTitle:    %s\n", info.Title)
		if info.Uploader != "" {
			fmt.Printf("Uploader: %s\n", info.Uploader)
		}
		if info.Duration > 0 {
			fmt.Printf("Duration: %s\n", (time.Duration(info.Duration) * time.Second).String())
		}
	}
	return []download.Item{item}, nil
}

func saveDefaultDir(cfg *config.Config, key, dir string) error {
	if err := cfg.Set(key, dir); err != nil {
		return err
	}
	return cfg.Write(configFileTarget())
}

func printSummary(items []download.Item, opts download.Options) {
	fmt.Println("\nReady to download:")
	fmt.Printf("  Items:   %d\n", len(items))
	fmt.Printf("  Mode:    %s\n", opts.Mode)
	if opts.Mode == download.ModeVideo {
		fmt.Printf("  Quality: %s\n", opts.VideoQuality)
	} else {
		fmt.Printf("  Format:  %s @ %s\n", opts.AudioFormat, opts.AudioQuality)
	}
	if opts.RangeStart > 0 || opts.RangeEnd > 0 {
		fmt.Printf("  Range:   %d-%d\n", opts.RangeStart, opts.RangeEnd)
	}
	fmt.Printf("  Output:  %s\n", opts.OutputDir)
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}

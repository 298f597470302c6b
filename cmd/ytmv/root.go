package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytmv/ytmv/internal/config"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ytmv [url]",
	Short: "Interactive downloader for videos, audio, and playlists",
	Long: `ytmv - interactive media downloader

Walks you through downloading a single video, an audio track, or a
whole playlist with yt-dlp, converts the result with ffmpeg, and keeps
a history of everything it fetched.

Pass a URL to skip the first prompt, or run with no arguments for the
full wizard.`,
	Example: `  ytmv
  ytmv "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytmv history --search "lofi"
  ytmv config set quality.audio_format mp3`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runWizard,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (overrides discovery)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("ytmv {{.Version}}\n")
}

// loadConfig resolves the active configuration: the --config flag wins,
// then the discovery chain, then built-in defaults when no file exists.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	path, err := config.Discover()
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// configFileTarget is where `config set` and save-as-default persist to.
func configFileTarget() string {
	if configPath != "" {
		return configPath
	}
	if path, err := config.Discover(); err == nil {
		return path
	}
	return config.DefaultPath()
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Package config handles TOML configuration loading with environment
// variable substitution. The config is read once per invocation and never
// mutated mid-batch; the wizard writes it back only on explicit request.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	Quality QualityConfig `toml:"quality"`
	Extras  ExtrasConfig  `toml:"extras"`
	Batch   BatchConfig   `toml:"batch"`
	Tools   ToolsConfig   `toml:"tools"`
	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
}

type OutputConfig struct {
	VideoDir string `toml:"video_dir"`
	AudioDir string `toml:"audio_dir"`
}

type QualityConfig struct {
	Video       string `toml:"video"`        // "best" or a height cap like "1080"
	Audio       string `toml:"audio"`        // bitrate, e.g. "192k"
	AudioFormat string `toml:"audio_format"` // m4a, mp3, flac, opus
}

type ExtrasConfig struct {
	Thumbnails   bool   `toml:"thumbnails"`
	Subtitles    bool   `toml:"subtitles"`
	SubtitleLang string `toml:"subtitle_lang"` // language code, or "auto"
}

type BatchConfig struct {
	Parallel   int `toml:"parallel"`
	MaxRetries int `toml:"max_retries"`
}

type ToolsConfig struct {
	Ytdlp  string `toml:"ytdlp"`
	Ffmpeg string `toml:"ffmpeg"`
}

type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

type HistoryConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration used when no file exists.
// Loading decodes the file over this, so omitted keys keep these values.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Output: OutputConfig{
			VideoDir: filepath.Join(home, "Movies", "shorts"),
			AudioDir: filepath.Join(home, "Movies", "audios"),
		},
		Quality: QualityConfig{
			Video:       "1080",
			Audio:       "192k",
			AudioFormat: "m4a",
		},
		Extras: ExtrasConfig{
			Thumbnails:   true,
			Subtitles:    false,
			SubtitleLang: "ru",
		},
		Batch: BatchConfig{
			Parallel:   3,
			MaxRetries: 3,
		},
		Tools: ToolsConfig{
			Ytdlp:  "yt-dlp",
			Ffmpeg: "ffmpeg",
		},
		Cache: CacheConfig{
			Enabled:  true,
			Path:     filepath.Join(home, ".cache", "ytmv", "probe_cache.db"),
			TTLHours: 24,
		},
		History: HistoryConfig{
			Path: filepath.Join(home, ".ytmv_history.json"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and parses the configuration file. Missing keys fall back to
// Default values; unresolved environment variables and validation failures
// are reported together in a *ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.expandPaths()

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// expandPaths resolves a leading ~ in every directory and file value.
func (c *Config) expandPaths() {
	for _, p := range []*string{
		&c.Output.VideoDir, &c.Output.AudioDir,
		&c.Cache.Path, &c.History.Path,
	} {
		*p = expandHome(*p)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} references with environment values.
// ${VAR:-default} falls back to default when VAR is unset or empty.
// References without a default that cannot be resolved are left in place
// and reported in the returned slice.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, defaultVal := groups[1], groups[2] != "", groups[3]

		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasDefault {
			return defaultVal
		}
		missing = append(missing, name)
		return match
	})
	return result, missing
}

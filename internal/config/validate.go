// internal/config/validate.go
package config

import (
	"fmt"
	"strconv"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validAudioFormats = map[string]bool{
	"m4a": true, "mp3": true, "flac": true, "opus": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Output.VideoDir == "" {
		errs = append(errs, "output.video_dir: required")
	}
	if c.Output.AudioDir == "" {
		errs = append(errs, "output.audio_dir: required")
	}

	if !validAudioFormats[c.Quality.AudioFormat] {
		errs = append(errs, fmt.Sprintf("quality.audio_format: must be one of m4a, mp3, flac, opus; got %q", c.Quality.AudioFormat))
	}
	if q := c.Quality.Video; q != "" && q != "best" {
		if height, err := strconv.Atoi(q); err != nil || height < 1 {
			errs = append(errs, fmt.Sprintf("quality.video: must be \"best\" or a height like 1080; got %q", q))
		}
	}

	if c.Batch.Parallel < 1 {
		errs = append(errs, fmt.Sprintf("batch.parallel: must be at least 1, got %d", c.Batch.Parallel))
	}
	if c.Batch.MaxRetries < 1 {
		errs = append(errs, fmt.Sprintf("batch.max_retries: must be at least 1, got %d", c.Batch.MaxRetries))
	}

	if c.Tools.Ytdlp == "" {
		errs = append(errs, "tools.ytdlp: required")
	}
	if c.Tools.Ffmpeg == "" {
		errs = append(errs, "tools.ffmpeg: required")
	}

	if c.Cache.Enabled {
		if c.Cache.Path == "" {
			errs = append(errs, "cache.path: required when cache is enabled")
		}
		if c.Cache.TTLHours < 1 {
			errs = append(errs, fmt.Sprintf("cache.ttl_hours: must be at least 1, got %d", c.Cache.TTLHours))
		}
	}

	if c.History.Path == "" {
		errs = append(errs, "history.path: required")
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	return errs
}

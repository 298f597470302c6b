package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// field binds a dotted key to its spot in the Config struct.
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(p func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error {
			*p(c) = v
			return nil
		},
	}
}

func boolField(p func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("want true or false, got %q", v)
			}
			*p(c) = b
			return nil
		},
	}
}

func intField(p func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("want a number, got %q", v)
			}
			*p(c) = n
			return nil
		},
	}
}

// fields is the dotted-key view of Config the wizard and `ytmv config`
// speak. Every leaf of the struct is addressable here.
var fields = map[string]field{
	"output.video_dir":     stringField(func(c *Config) *string { return &c.Output.VideoDir }),
	"output.audio_dir":     stringField(func(c *Config) *string { return &c.Output.AudioDir }),
	"quality.video":        stringField(func(c *Config) *string { return &c.Quality.Video }),
	"quality.audio":        stringField(func(c *Config) *string { return &c.Quality.Audio }),
	"quality.audio_format": stringField(func(c *Config) *string { return &c.Quality.AudioFormat }),
	"extras.thumbnails":    boolField(func(c *Config) *bool { return &c.Extras.Thumbnails }),
	"extras.subtitles":     boolField(func(c *Config) *bool { return &c.Extras.Subtitles }),
	"extras.subtitle_lang": stringField(func(c *Config) *string { return &c.Extras.SubtitleLang }),
	"batch.parallel":       intField(func(c *Config) *int { return &c.Batch.Parallel }),
	"batch.max_retries":    intField(func(c *Config) *int { return &c.Batch.MaxRetries }),
	"tools.ytdlp":          stringField(func(c *Config) *string { return &c.Tools.Ytdlp }),
	"tools.ffmpeg":         stringField(func(c *Config) *string { return &c.Tools.Ffmpeg }),
	"cache.enabled":        boolField(func(c *Config) *bool { return &c.Cache.Enabled }),
	"cache.path":           stringField(func(c *Config) *string { return &c.Cache.Path }),
	"cache.ttl_hours":      intField(func(c *Config) *int { return &c.Cache.TTLHours }),
	"history.path":         stringField(func(c *Config) *string { return &c.History.Path }),
	"log.level":            stringField(func(c *Config) *string { return &c.Log.Level }),
}

// Keys returns every settable dotted key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key as a string.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", unknownKeyError(key)
	}
	return f.get(c), nil
}

// Set assigns a dotted key from its string form. The change is in-memory
// only; call Write to persist it.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return unknownKeyError(key)
	}
	old := *c // all-value struct, so a shallow copy is a full snapshot
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if errs := c.Validate(); len(errs) > 0 {
		*c = old
		return fmt.Errorf("%s: %s", key, strings.Join(errs, "; "))
	}
	return nil
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key %q, valid keys: %s", key, strings.Join(Keys(), ", "))
}

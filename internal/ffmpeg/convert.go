// Package ffmpeg drives the ffmpeg executable to turn staged downloads
// into normalized output files. Like yt-dlp, the tool is a black box
// reached only through its command line.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ytmv/ytmv/internal/download"
	"github.com/ytmv/ytmv/internal/runner"
)

// ErrToolMissing is returned by Check when the executable cannot be run.
var ErrToolMissing = errors.New("ffmpeg not available")

// audioCodec maps a target container onto codec arguments. Unknown formats
// fall back to aac at the requested bitrate.
func audioCodec(format, bitrate string) []string {
	switch format {
	case "mp3":
		return []string{"-c:a", "libmp3lame", "-b:a", bitrate}
	case "flac":
		return []string{"-c:a", "flac", "-compression_level", "8"}
	case "opus":
		return []string{"-c:a", "libopus", "-b:a", "192k"}
	default: // m4a
		return []string{"-c:a", "aac", "-b:a", bitrate}
	}
}

// embeddableFormats are the audio containers ffmpeg can carry an
// attached_pic cover stream in.
var embeddableFormats = map[string]bool{
	"m4a": true,
	"mp3": true,
}

// Converter invokes ffmpeg. Conversions go through a retrying runner; a
// failed conversion never leaves a partial output file behind.
type Converter struct {
	bin     string
	run     runner.Runner
	retries int
	log     *slog.Logger
}

// NewConverter creates a converter for the executable at bin. retries is
// the attempt ceiling for conversions.
func NewConverter(bin string, run runner.Runner, retries int, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.Default()
	}
	return &Converter{
		bin:     bin,
		run:     run,
		retries: retries,
		log:     log.With("component", "ffmpeg"),
	}
}

func (c *Converter) withRetry() runner.Retry {
	return runner.Retry{Runner: c.run, Attempts: c.retries, Log: c.log}
}

// Check verifies the executable responds. Run it before any batch work.
func (c *Converter) Check(ctx context.Context) error {
	if err := c.run.Run(ctx, c.bin, "-version"); err != nil {
		return fmt.Errorf("%w at %q: %v", ErrToolMissing, c.bin, err)
	}
	return nil
}

// Convert transcodes src into dst per spec. On failure dst is removed, so
// the final path either holds a complete file or nothing.
func (c *Converter) Convert(ctx context.Context, src, dst string, spec download.ConvertSpec) error {
	var err error
	if spec.Mode == download.ModeAudio {
		err = c.convertAudio(ctx, src, dst, spec)
	} else {
		err = c.convertVideo(ctx, src, dst, spec)
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("converting %s: %w", src, err)
	}
	return nil
}

func (c *Converter) convertAudio(ctx context.Context, src, dst string, spec download.ConvertSpec) error {
	if spec.ThumbnailPath != "" && embeddableFormats[spec.AudioFormat] {
		err := c.withRetry().Run(ctx, c.bin, audioArgs(src, dst, spec, true)...)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		// Some covers (webp, odd dimensions) break the attach pass.
		// The track itself matters more than the artwork.
		c.log.Warn("cover embed failed, converting without artwork", "error", err)
		os.Remove(dst)
	}
	return c.withRetry().Run(ctx, c.bin, audioArgs(src, dst, spec, false)...)
}

func audioArgs(src, dst string, spec download.ConvertSpec, embedCover bool) []string {
	args := []string{"-y", "-i", src}
	if embedCover {
		args = append(args, "-i", spec.ThumbnailPath, "-map", "0:a", "-map", "1")
	} else {
		args = append(args, "-vn")
	}
	args = append(args, audioCodec(spec.AudioFormat, spec.AudioQuality)...)
	if embedCover {
		args = append(args, "-c:v", "mjpeg", "-disposition:v:0", "attached_pic")
	}
	args = append(args, metadataArgs(spec)...)
	return append(args, dst)
}

func (c *Converter) convertVideo(ctx context.Context, src, dst string, spec download.ConvertSpec) error {
	args := []string{"-y", "-i", src,
		"-c:v", "libx264", "-preset", "fast",
		"-c:a", "aac", "-b:a", "192k",
		"-movflags", "+faststart",
	}
	if spec.VideoQuality != "" && spec.VideoQuality != "best" {
		// -2 keeps the width even, which libx264 requires.
		args = append(args, "-vf", "scale=-2:"+spec.VideoQuality)
	}
	args = append(args, metadataArgs(spec)...)
	args = append(args, dst)
	return c.withRetry().Run(ctx, c.bin, args...)
}

func metadataArgs(spec download.ConvertSpec) []string {
	var args []string
	if spec.Title != "" {
		args = append(args, "-metadata", "title="+spec.Title)
	}
	if spec.Uploader != "" {
		args = append(args, "-metadata", "artist="+spec.Uploader)
	}
	return args
}

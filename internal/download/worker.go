package download

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ytmv/ytmv/internal/media"
	"github.com/ytmv/ytmv/pkg/translit"
)

// Worker processes one item at a time: resolve info, fetch into staging,
// convert into place, clean up. Each item gets its own staging stem, so
// workers never contend on intermediate files.
type Worker struct {
	prober    Prober
	fetcher   Fetcher
	converter Converter
	log       *slog.Logger
}

func NewWorker(prober Prober, fetcher Fetcher, converter Converter, logger *slog.Logger) *Worker {
	return &Worker{
		prober:    prober,
		fetcher:   fetcher,
		converter: converter,
		log:       logger.With("component", "worker"),
	}
}

// Process drives item to a terminal status and returns exactly one Outcome.
// Failures are contained: a broken item never takes the batch down with it.
// A canceled context yields a canceled outcome, never a failed one.
func (w *Worker) Process(ctx context.Context, item Item, opts Options) Outcome {
	log := w.log.With("url", item.URL, "ordinal", item.Ordinal)

	status := StatusPending
	title := item.Title
	stem := ""

	advance := func(next Status) {
		if !status.CanTransitionTo(next) {
			log.Error("invalid item transition", "from", status, "to", next)
		}
		status = next
		log.Debug("item status", "status", status)
	}

	canceled := func() Outcome {
		if stem != "" {
			media.RemoveStaging(stem)
		}
		advance(StatusCanceled)
		log.Info("item canceled")
		return Outcome{Item: item, Title: title, Status: StatusCanceled, Err: ctx.Err()}
	}

	fail := func(err error) Outcome {
		if ctx.Err() != nil {
			return canceled()
		}
		if stem != "" {
			media.RemoveStaging(stem)
		}
		advance(StatusFailed)
		log.Error("item failed", "title", title, "error", err)
		return Outcome{Item: item, Title: title, Status: StatusFailed, Err: err}
	}

	if ctx.Err() != nil {
		return canceled()
	}

	// Tier one: full probe. Tier two (inside the prober): title-only.
	// Last resort: whatever title the listing gave us.
	info, err := w.prober.Probe(ctx, item.URL)
	if err != nil {
		if ctx.Err() != nil {
			return canceled()
		}
		log.Warn("info lookup failed, continuing with known title", "error", err)
		info = &Info{Title: title}
	}
	if info.Title != "" {
		title = info.Title
	}
	advance(StatusResolved)

	ext := targetExt(opts)
	outPath := media.ResolveCollision(media.OutputPath(opts.OutputDir, translit.Sanitize(title), item.Ordinal, ext))
	base := strings.TrimSuffix(filepath.Base(outPath), filepath.Ext(outPath))
	stem = media.StagingStem(opts.OutputDir, base)

	advance(StatusFetching)
	log.Info("fetching", "title", title, "output", outPath)
	err = w.fetcher.Fetch(ctx, item.URL, FetchSpec{
		Mode:         opts.Mode,
		VideoQuality: opts.VideoQuality,
		CookiesFile:  opts.CookiesFile,
		StagingStem:  stem,
	})
	if err != nil {
		return fail(err)
	}
	advance(StatusFetched)

	artifact, err := media.LocateArtifact(stem)
	if err != nil {
		return fail(err)
	}

	destStem := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	thumbPath := ""
	if opts.Thumbnails {
		thumbPath, err = w.fetcher.Thumbnail(ctx, item.URL, destStem)
		if err != nil {
			if ctx.Err() != nil {
				return canceled()
			}
			log.Warn("thumbnail fetch failed", "error", err)
			thumbPath = ""
		}
	}
	if opts.Subtitles && opts.Mode == ModeVideo {
		if err := w.fetcher.Subtitles(ctx, item.URL, destStem, opts.SubtitleLang); err != nil {
			if ctx.Err() != nil {
				return canceled()
			}
			log.Warn("subtitle fetch failed", "error", err)
		}
	}

	advance(StatusConverting)
	err = w.converter.Convert(ctx, artifact, outPath, ConvertSpec{
		Mode:          opts.Mode,
		AudioFormat:   opts.AudioFormat,
		AudioQuality:  opts.AudioQuality,
		VideoQuality:  opts.VideoQuality,
		Title:         title,
		Uploader:      info.Uploader,
		ThumbnailPath: thumbPath,
	})
	if err != nil {
		return fail(err)
	}

	media.RemoveStaging(stem)
	advance(StatusDone)
	log.Info("item done", "title", title, "output", outPath)
	return Outcome{Item: item, Title: title, OutputPath: outPath, Status: StatusDone}
}

func targetExt(opts Options) string {
	if opts.Mode == ModeAudio {
		return opts.AudioFormat
	}
	return "mp4"
}

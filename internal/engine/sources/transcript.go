package sources

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// FetchTranscript validates the URL, then fetches captions and metadata
// concurrently from one watch-page download.
//
// On a NotFound failure the returned result still carries whatever metadata
// was found so callers can show it next to the error.
func FetchTranscript(ctx context.Context, rawURL, language string) (*engine.TranscriptResult, error) {
	engine.IncrTranscriptRequests()

	videoID, err := ParseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}
	lang := engine.NormalizeLanguage(language)

	key := engine.CacheKey("transcript", videoID, lang)
	if cached, ok := engine.CacheLoadJSON[engine.TranscriptResult](ctx, key); ok {
		return &cached, nil
	}

	page, status, pageErr := engine.FetchPage(ctx, WatchURL(videoID))
	if pageErr != nil {
		slog.Warn("youtube: watch page fetch failed", slog.String("id", videoID), slog.Any("error", pageErr))
		page = nil
	} else if status != http.StatusOK {
		slog.Warn("youtube: watch page status", slog.String("id", videoID), slog.Int("status", status))
		page, pageErr = nil, statusError("watch page", status)
	}

	var (
		text string
		md   engine.VideoMetadata
	)
	// No shared cancellation: a caption failure must not drop metadata the
	// 404 response still reports.
	var g errgroup.Group
	g.Go(func() error {
		md = ExtractMetadata(ctx, videoID, page)
		return nil
	})
	g.Go(func() error {
		var err error
		text, err = fetchCaptions(ctx, videoID, page, pageErr, lang)
		return err
	})
	if err := g.Wait(); err != nil {
		engine.IncrTranscriptErrors()
		return &engine.TranscriptResult{VideoID: videoID, VideoMetadata: md}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		engine.IncrTranscriptErrors()
		return &engine.TranscriptResult{VideoID: videoID, VideoMetadata: md},
			engine.NewError(engine.KindNotFound, engine.StageTranscript, engine.MsgEmptyTranscript, engine.ErrEmptyTranscript)
	}

	res := engine.TranscriptResult{
		Transcript:       text,
		VideoID:          videoID,
		VideoMetadata:    md,
		DetectedLanguage: engine.DetectLanguage(text),
	}
	engine.CacheStoreJSON(ctx, key, res)

	slog.Info("youtube: transcript fetched",
		slog.String("id", videoID),
		slog.Int("chars", len(text)),
		slog.String("title", md.VideoTitle),
		slog.String("detected_language", res.DetectedLanguage))
	return &res, nil
}

package digest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/sources"
)

// fetchTranscript is swapped in tests.
var fetchTranscript = sources.FetchTranscript

// Digest fetches the transcript of url and summarizes it with model.
// Only the transcript stage is retried, with a fixed delay and only for
// transient or unclassified failures. An empty model selects DefaultModel.
//
// When the transcript stage fails the returned result carries whatever
// video metadata was found.
func Digest(ctx context.Context, url, model, language string) (*engine.DigestResult, error) {
	engine.IncrDigestRequests()

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if _, err := Resolve(model); err != nil {
		return nil, err
	}

	var partial *engine.TranscriptResult
	attempt := 0
	rc := engine.FixedRetryConfig(engine.Cfg.TranscriptRetries, engine.Cfg.TranscriptRetryDelay)
	tr, err := engine.RetryDo(ctx, rc, func() (*engine.TranscriptResult, error) {
		if attempt > 0 {
			engine.IncrTranscriptRetries()
		}
		attempt++
		res, err := fetchTranscript(ctx, url, language)
		if err != nil {
			partial = res
			slog.Debug("digest: transcript attempt failed",
				slog.Int("attempt", attempt), slog.String("kind", engine.KindOf(err).String()), slog.Any("error", err))
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		out := &engine.DigestResult{Model: model}
		if partial != nil {
			out.Transcript = *partial
		}
		return out, err
	}

	lang := engine.ResolveLanguage(language, tr.Transcript)
	start := time.Now()
	summary, err := Summarize(ctx, Request{Transcript: tr.Transcript, Model: model, Language: lang})
	if err != nil {
		return &engine.DigestResult{Transcript: *tr, Model: model, Language: lang}, err
	}

	slog.Info("digest: done",
		slog.String("id", tr.VideoID),
		slog.String("model", model),
		slog.String("language", lang),
		slog.Int("attempts", attempt),
		slog.Duration("summarize_elapsed", time.Since(start)))
	return &engine.DigestResult{Transcript: *tr, Summary: *summary, Model: model, Language: lang}, nil
}

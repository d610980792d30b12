package digest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/audit"
)

// Request is one summarization call. Model is mandatory; there is no
// process-wide model selection.
type Request struct {
	Transcript string
	Model      string
	Language   string
}

// Validation messages for request fields.
const (
	MsgTranscriptRequired = "Transcript is required and must be a string."
	MsgTranscriptEmpty    = "Transcript cannot be empty."
	MsgModelRequired      = "Model selection is required and must be a non-empty string."
)

// state tracks how far a request got; it is logged, never returned.
type state string

const (
	stateIdle           state = "idle"
	statePromptBuilt    state = "prompt_built"
	stateProviderCalled state = "provider_called"
	stateParseFailed    state = "parse_failed"
	stateValidateFailed state = "validate_failed"
	stateValidateOk     state = "validate_ok"
)

// Summarize runs prompt → provider → clean-and-parse → schema validation.
// It never retries.
func Summarize(ctx context.Context, req Request) (*engine.SummaryResult, error) {
	engine.IncrSummarizeRequests()

	if strings.TrimSpace(req.Transcript) == "" {
		return nil, engine.Errorf(engine.KindInvalidInput, engine.StageSummarize, MsgTranscriptEmpty)
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, engine.Errorf(engine.KindInvalidInput, engine.StageSummarize, MsgModelRequired)
	}
	family, err := Resolve(req.Model)
	if err != nil {
		return nil, err
	}
	provider := providerFor(family)

	st := stateIdle
	start := time.Now()
	lang := engine.ResolveLanguage(req.Language, req.Transcript)
	defer func() {
		slog.Info("digest: summarize finished",
			slog.String("model", req.Model),
			slog.String("provider", provider.Name()),
			slog.String("language", lang),
			slog.String("state", string(st)),
			slog.Duration("elapsed", time.Since(start)))
	}()

	prompt := BuildPrompt(req.Transcript, lang)
	st = statePromptBuilt

	engine.IncrLLMCalls()
	calledAt := time.Now().UTC()
	raw, err := provider.Generate(ctx, req.Model, prompt)
	st = stateProviderCalled
	// A configuration failure means the request never left the process.
	if family == FamilyThirdParty && engine.KindOf(err) != engine.KindConfiguration {
		audit.Record(ctx, audit.Entry{Timestamp: calledAt, Model: req.Model, Language: lang})
	}
	if err != nil {
		engine.IncrLLMErrors()
		return nil, classifyProviderError(err, provider.Name())
	}

	obj, err := engine.ParseJSONObject(raw, engine.StageSummarize)
	if err != nil {
		st = stateParseFailed
		engine.IncrParseFailures()
		slog.Warn("digest: unparseable provider output",
			slog.String("model", req.Model), slog.String("snippet", engine.Snippet(raw)))
		return nil, engine.WithProvider(err, engine.StageSummarize, provider.Name())
	}

	res, err := ValidateSummary(obj)
	if err != nil {
		st = stateValidateFailed
		engine.IncrSchemaFailures()
		return nil, engine.WithProvider(err, engine.StageSummarize, provider.Name())
	}
	st = stateValidateOk
	return res, nil
}

package digest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// Provider sends a rendered prompt to one model family and returns the raw text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, model string, p Prompt) (string, error)
}

var (
	providersMu sync.RWMutex
	providers   = map[Family]Provider{}
)

// SetProvider installs p for a family, replacing the built-in one.
func SetProvider(f Family, p Provider) {
	providersMu.Lock()
	providers[f] = p
	providersMu.Unlock()
}

// ResetProviders drops installed providers; the built-in ones are rebuilt
// from engine.Cfg on next use.
func ResetProviders() {
	providersMu.Lock()
	providers = map[Family]Provider{}
	providersMu.Unlock()
}

const defaultLLMTimeout = 120 * time.Second

// llmHTTPClient builds the client provider calls go through. It is separate
// from the page-fetch client so long generations are not cut short.
func llmHTTPClient() *http.Client {
	timeout := engine.Cfg.LLMTimeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &http.Client{Timeout: timeout}
}

func providerFor(f Family) Provider {
	providersMu.RLock()
	p, ok := providers[f]
	providersMu.RUnlock()
	if ok {
		return p
	}

	providersMu.Lock()
	defer providersMu.Unlock()
	if p, ok := providers[f]; ok {
		return p
	}
	switch f {
	case FamilyFirstParty:
		p = newGeminiProvider()
	case FamilyThirdParty:
		p = newGroqProvider()
	default:
		return nil
	}
	providers[f] = p
	return p
}

// statusCoder is implemented by provider errors that expose an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// classifyProviderError maps a raw provider failure onto the error taxonomy.
// Structured status codes win; the substring match covers clients that only
// surface the upstream message.
func classifyProviderError(err error, provider string) error {
	if err == nil {
		return nil
	}
	var e *engine.Error
	if errors.As(err, &e) {
		return engine.WithProvider(err, engine.StageSummarize, provider)
	}

	code := 0
	var sc statusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	} else {
		code = geminiStatus(err)
	}
	if code == 0 {
		code = statusFromMessage(err.Error())
	}

	out := &engine.Error{
		Kind:     engine.KindProvider,
		Stage:    engine.StageSummarize,
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
	switch {
	case code == http.StatusRequestEntityTooLarge:
		out.Condition = engine.ConditionPayloadTooLarge
	case code == http.StatusTooManyRequests:
		out.Kind = engine.KindTransient
		out.Condition = engine.ConditionRateLimited
	case code >= 500:
		out.Kind = engine.KindTransient
	case engine.IsNetworkError(err):
		out.Kind = engine.KindTransient
	}
	if out.Condition == engine.ConditionNone && tooLongMessage(err.Error()) {
		out.Condition = engine.ConditionPayloadTooLarge
	}
	return out
}

// statusFromMessage recognises the few markers upstream APIs put in error text.
func statusFromMessage(msg string) int {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "413"), strings.Contains(m, "request too large"), strings.Contains(m, "payload too large"):
		return http.StatusRequestEntityTooLarge
	case strings.Contains(m, "429"), strings.Contains(m, "rate_limit_exceeded"), strings.Contains(m, "rate limit"):
		return http.StatusTooManyRequests
	}
	return 0
}

func tooLongMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "context_length_exceeded") ||
		strings.Contains(m, "maximum context length") ||
		strings.Contains(m, "exceeds the maximum number of tokens")
}

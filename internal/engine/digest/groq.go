package digest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/anatolykoptev/go-kit/llm"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// groqProvider serves the third-party allow-set through Groq's
// OpenAI-compatible endpoint. One client per model, built on first use.
type groqProvider struct {
	mu      sync.Mutex
	clients map[string]*llm.Client
}

func newGroqProvider() *groqProvider {
	return &groqProvider{clients: map[string]*llm.Client{}}
}

func (g *groqProvider) Name() string { return "groq" }

func (g *groqProvider) client(model string) (*llm.Client, error) {
	c := engine.Cfg
	if c.GroqAPIKey == "" {
		return nil, engine.Errorf(engine.KindConfiguration, engine.StageSummarize,
			"GROQ_API_KEY is not set; model %s is unavailable", model)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if cl, ok := g.clients[model]; ok {
		return cl, nil
	}
	cl := llm.NewClient(strings.TrimRight(c.GroqAPIBase, "/"), c.GroqAPIKey, model,
		llm.WithFallbackKeys(c.GroqAPIKeyFallbacks),
		llm.WithMaxTokens(c.GroqMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(llmHTTPClient()),
	)
	g.clients[model] = cl
	return cl, nil
}

func (g *groqProvider) Generate(ctx context.Context, model string, p Prompt) (string, error) {
	cl, err := g.client(model)
	if err != nil {
		return "", err
	}
	raw, err := cl.Complete(ctx, p.System, p.User,
		llm.WithChatTemperature(engine.Cfg.LLMTemperature),
		llm.WithChatMaxTokens(engine.Cfg.GroqMaxTokens),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("groq returned no content")
	}
	return raw, nil
}

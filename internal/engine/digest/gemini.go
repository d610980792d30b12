package digest

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"github.com/nzdigest/nzdigest/internal/engine"
)

const geminiTopP = 0.8

// geminiProvider serves the first-party model through the Gemini API.
type geminiProvider struct {
	once       sync.Once
	httpClient *http.Client
	client     *genai.Client
	err        error
}

func newGeminiProvider() *geminiProvider { return &geminiProvider{} }

func (g *geminiProvider) Name() string { return "gemini" }

func (g *geminiProvider) init(ctx context.Context) error {
	g.once.Do(func() {
		c := engine.Cfg
		if c.GeminiAPIKey == "" {
			g.err = engine.Errorf(engine.KindConfiguration, engine.StageSummarize,
				"GEMINI_API_KEY is not set; the %s model is unavailable", DefaultModel)
			return
		}
		g.httpClient = llmHTTPClient()
		cc := &genai.ClientConfig{
			APIKey:     c.GeminiAPIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.httpClient,
		}
		if c.GeminiBaseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.GeminiBaseURL}
		}
		g.client, g.err = genai.NewClient(ctx, cc)
		if g.err != nil {
			g.err = engine.NewError(engine.KindConfiguration, engine.StageSummarize, "gemini client init failed", g.err)
		}
	})
	return g.err
}

// Generate ignores the model argument: the first-party identifier always maps
// to the configured concrete Gemini model.
func (g *geminiProvider) Generate(ctx context.Context, _ string, p Prompt) (string, error) {
	if err := g.init(ctx); err != nil {
		return "", err
	}
	c := engine.Cfg

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(c.LLMTemperature)),
		TopP:              genai.Ptr(float32(geminiTopP)),
		MaxOutputTokens:   int32(c.GeminiMaxTokens),
		ResponseMIMEType:  "application/json",
		SafetySettings:    geminiSafetySettings(),
	}
	contents := []*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, c.GeminiModel, contents, cfg)
	if err != nil {
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

func geminiSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategoryHarassment,
		genai.HarmCategorySexuallyExplicit,
	}
	out := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		out = append(out, &genai.SafetySetting{
			Category:  cat,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return out
}

// geminiStatus extracts the HTTP status from a Gemini API error, 0 if absent.
func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

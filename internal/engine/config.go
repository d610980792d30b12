package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeBaseURL       string // watch page + innertube host, overridable for tests
	YouTubeAPIKey        string // optional Data API v3 key for metadata
	YouTubeAPIEndpoint   string // Data API base path override, empty = Google default
	TranscriptRetries    int    // caller-level attempts for transcript fetching
	TranscriptRetryDelay time.Duration
	DefaultLanguage      string
	GeminiAPIKey         string
	GeminiModel          string // concrete Gemini model behind the first-party identifier
	GeminiBaseURL        string // empty = Google default
	GroqAPIKey           string
	GroqAPIKeyFallbacks  []string
	GroqAPIBase          string
	LLMTemperature       float64
	GeminiMaxTokens      int
	GroqMaxTokens        int
	LLMTimeout           time.Duration // whole-call timeout for provider HTTP clients
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheSweepSpec       string // robfig/cron spec for L1 sweeps
	RedisURL             string
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = plain HTTP client for the watch page
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, digest).
// Always points to the current cfg value.
var Cfg = &cfg

// DefaultConfig returns the values used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		YouTubeBaseURL:       "https://www.youtube.com",
		TranscriptRetries:    3,
		TranscriptRetryDelay: 1500 * time.Millisecond,
		DefaultLanguage:      "id",
		GeminiModel:          "gemini-2.5-flash",
		GroqAPIBase:          "https://api.groq.com/openai/v1",
		LLMTemperature:       0.3,
		GeminiMaxTokens:      12000,
		GroqMaxTokens:        4000,
		LLMTimeout:           120 * time.Second,
		CacheTTL:             30 * time.Minute,
		CacheMaxEntries:      500,
		CacheSweepSpec:       "@every 5m",
		HTTPClient:           &http.Client{Timeout: 15 * time.Second},
	}
}

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.YouTubeBaseURL == "" {
		c.YouTubeBaseURL = "https://www.youtube.com"
	}
	cfg = c
	Cfg = &cfg
}

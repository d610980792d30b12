package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/audit"
	"github.com/nzdigest/nzdigest/internal/engine/digest"
)

const defaultConfigFile = "nzdigest.yaml"

// fileConfig is the optional YAML configuration. Environment variables win
// over file values for the fields both can set.
type fileConfig struct {
	DefaultLanguage string        `yaml:"default_language"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	Models          []modelConfig `yaml:"models"`
}

type modelConfig struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
}

// loadFileConfig reads CONFIG_FILE (default nzdigest.yaml). A missing default
// file is not an error; a missing explicitly named file is.
func loadFileConfig() (*fileConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *fileConfig) modelInfos() []engine.ModelInfo {
	out := make([]engine.ModelInfo, 0, len(fc.Models))
	for _, m := range fc.Models {
		out = append(out, engine.ModelInfo{ID: m.ID, DisplayName: m.DisplayName})
	}
	return out
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(env.Str("LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(env.Str("LOG_FORMAT", "text"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

var fileCfg = &fileConfig{}

func initEngine(ctx context.Context) error {
	_ = godotenv.Load()

	fc, err := loadFileConfig()
	if err != nil {
		return err
	}
	fileCfg = fc

	def := engine.DefaultConfig()
	defaultLang := def.DefaultLanguage
	if fc.DefaultLanguage != "" {
		defaultLang = fc.DefaultLanguage
	}

	c := engine.Config{
		YouTubeBaseURL:       env.Str("YOUTUBE_BASE_URL", def.YouTubeBaseURL),
		YouTubeAPIKey:        env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIEndpoint:   env.Str("YOUTUBE_API_ENDPOINT", ""),
		TranscriptRetries:    env.Int("TRANSCRIPT_RETRIES", def.TranscriptRetries),
		TranscriptRetryDelay: env.Duration("TRANSCRIPT_RETRY_DELAY", def.TranscriptRetryDelay),
		DefaultLanguage:      env.Str("DEFAULT_LANGUAGE", defaultLang),
		GeminiAPIKey:         env.Str("GEMINI_API_KEY", ""),
		GeminiModel:          env.Str("GEMINI_MODEL", def.GeminiModel),
		GeminiBaseURL:        env.Str("GEMINI_BASE_URL", ""),
		GroqAPIKey:           env.Str("GROQ_API_KEY", ""),
		GroqAPIKeyFallbacks:  env.List("GROQ_API_KEY_FALLBACKS", ""),
		GroqAPIBase:          env.Str("GROQ_API_BASE", def.GroqAPIBase),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", def.LLMTemperature),
		GeminiMaxTokens:      env.Int("GEMINI_MAX_TOKENS", def.GeminiMaxTokens),
		GroqMaxTokens:        env.Int("GROQ_MAX_TOKENS", def.GroqMaxTokens),
		LLMTimeout:           env.Duration("LLM_TIMEOUT", def.LLMTimeout),
		CacheTTL:             env.Duration("CACHE_TTL", def.CacheTTL),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", def.CacheMaxEntries),
		CacheSweepSpec:       env.Str("CACHE_SWEEP_SPEC", def.CacheSweepSpec),
		RedisURL:             env.Str("REDIS_URL", ""),
		HTTPClient: &http.Client{
			Timeout: env.Duration("FETCH_TIMEOUT", 15*time.Second),
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if env.Str("STEALTH", "on") != "off" {
		c.BrowserClient = newBrowserClient()
	}

	engine.Init(c)
	engine.InitCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheSweepSpec)

	if len(fc.Models) > 0 {
		digest.SetThirdPartyModels(fc.modelInfos())
		slog.Info("model catalog loaded from config", slog.Int("third_party", len(fc.Models)))
	}

	sink, err := audit.Open(ctx, env.Str("AUDIT_DSN", ""), env.Str("AUDIT_LOG_PATH", ""))
	if err != nil {
		slog.Warn("audit sink init failed, running without audit", slog.Any("error", err))
	} else if sink != nil {
		audit.SetSink(sink)
		slog.Info("audit sink initialized")
	}
	return nil
}

// newBrowserClient builds the stealth client for watch-page fetches, with a
// Webshare proxy pool when WEBSHARE_API_KEY is set. nil on failure.
func newBrowserClient() *engine.BrowserClient {
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
		return nil
	}
	slog.Debug("stealth browser client initialized")
	return bc
}

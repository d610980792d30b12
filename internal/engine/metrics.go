package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	TranscriptRetries  atomic.Int64
	MetadataRequests   atomic.Int64
	MetadataAPICalls   atomic.Int64
	SummarizeRequests  atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	ParseFailures      atomic.Int64
	SchemaFailures     atomic.Int64
	DigestRequests     atomic.Int64
	AuditWrites        atomic.Int64
	AuditErrors        atomic.Int64
}

var metricKeys = []string{
	"transcript_requests", "transcript_errors", "transcript_retries",
	"metadata_requests", "metadata_api_calls",
	"summarize_requests", "llm_calls", "llm_errors",
	"parse_failures", "schema_failures",
	"digest_requests",
	"audit_writes", "audit_errors",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"transcript_retries":  metrics.TranscriptRetries.Load(),
		"metadata_requests":   metrics.MetadataRequests.Load(),
		"metadata_api_calls":  metrics.MetadataAPICalls.Load(),
		"summarize_requests":  metrics.SummarizeRequests.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"parse_failures":      metrics.ParseFailures.Load(),
		"schema_failures":     metrics.SchemaFailures.Load(),
		"digest_requests":     metrics.DigestRequests.Load(),
		"audit_writes":        metrics.AuditWrites.Load(),
		"audit_errors":        metrics.AuditErrors.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()   { metrics.TranscriptErrors.Add(1) }
func IncrTranscriptRetries()  { metrics.TranscriptRetries.Add(1) }
func IncrMetadataRequests()   { metrics.MetadataRequests.Add(1) }
func IncrMetadataAPICalls()   { metrics.MetadataAPICalls.Add(1) }

// Incrementors for digest/ and audit/ sub-packages.
func IncrSummarizeRequests() { metrics.SummarizeRequests.Add(1) }
func IncrLLMCalls()          { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()         { metrics.LLMErrors.Add(1) }
func IncrParseFailures()     { metrics.ParseFailures.Add(1) }
func IncrSchemaFailures()    { metrics.SchemaFailures.Add(1) }
func IncrDigestRequests()    { metrics.DigestRequests.Add(1) }
func IncrAuditWrites()       { metrics.AuditWrites.Add(1) }
func IncrAuditErrors()       { metrics.AuditErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

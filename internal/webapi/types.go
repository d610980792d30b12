package webapi

import (
	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/audit"
)

// Version is set from main at startup.
var Version = "dev"

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// TranscriptRequest is the body of POST /transcript.
type TranscriptRequest struct {
	URL      any    `json:"url"`
	Language string `json:"language,omitempty"`
}

// DigestRequest is the body of POST /digest.
type DigestRequest struct {
	URL      string `json:"url"`
	Model    string `json:"model"`
	Language string `json:"language,omitempty"`
}

// DigestResponse is the body of a successful POST /digest.
type DigestResponse struct {
	Transcript engine.TranscriptResult `json:"transcript"`
	Summary    engine.SummaryResult    `json:"summary"`
	Model      string                  `json:"model"`
	Language   string                  `json:"language"`
}

// ModelsResponse is returned by GET /models.
type ModelsResponse = engine.ListModelsOutput

// AuditResponse is returned by GET /audit.
type AuditResponse struct {
	Entries []audit.Entry `json:"entries"`
}

// Request validation messages.
const (
	MsgURLRequired      = "YouTube URL is required and must be a string."
	MsgInvalidBody      = "Invalid JSON request body."
	MsgUnknownFormat    = "Unsupported format; use json, markdown or html."
	MsgBadLimit         = "limit must be a positive integer."
	MsgAuditUnavailable = "Audit log is not enabled or cannot be queried."
)

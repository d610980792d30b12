// Package webapi serves the transcript and summarization pipeline over HTTP.
package webapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/audit"
	"github.com/nzdigest/nzdigest/internal/engine/digest"
	"github.com/nzdigest/nzdigest/internal/engine/sources"
	"github.com/nzdigest/nzdigest/internal/toolutil"
)

const maxBodyBytes = 4 << 20

// Handlers holds the HTTP handler methods.
type Handlers struct{}

// NewHandlers creates the handler set.
func NewHandlers() *Handlers { return &Handlers{} }

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: Version})
}

// HandleMetrics serves the engine counters as plain text.
func (h *Handlers) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, engine.FormatMetrics())
}

// HandleModels lists the selectable models.
func (h *Handlers) HandleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ModelsResponse{Models: digest.Models()})
}

// HandleTranscript fetches captions and metadata for a video URL.
func (h *Handlers) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	url, ok := req.URL.(string)
	if !ok || url == "" {
		writeError(w, http.StatusBadRequest, MsgURLRequired)
		return
	}

	res, err := sources.FetchTranscript(r.Context(), url, req.Language)
	if err != nil {
		var md *engine.VideoMetadata
		if res != nil {
			md = &res.VideoMetadata
		}
		writeEngineError(w, r, err, md)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSummarize summarizes a transcript. The optional format query
// parameter selects json (default), markdown or html output.
func (h *Handlers) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	format, ok := toolutil.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		writeError(w, http.StatusBadRequest, MsgUnknownFormat)
		return
	}

	var body map[string]any
	if !decodeBody(w, r, &body) {
		return
	}
	transcript, ok := body["transcript"].(string)
	if !ok {
		writeError(w, http.StatusBadRequest, digest.MsgTranscriptRequired)
		return
	}
	// Non-string model or language values count as absent.
	model, _ := body["model"].(string)
	language, _ := body["language"].(string)

	res, err := digest.Summarize(r.Context(), digest.Request{
		Transcript: transcript,
		Model:      model,
		Language:   language,
	})
	if err != nil {
		writeEngineError(w, r, err, nil)
		return
	}
	writeSummary(w, res, format, engine.ResolveLanguage(language, transcript))
}

// HandleDigest fetches a transcript and summarizes it in one call.
func (h *Handlers) HandleDigest(w http.ResponseWriter, r *http.Request) {
	var req DigestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, MsgURLRequired)
		return
	}

	res, err := digest.Digest(r.Context(), req.URL, req.Model, req.Language)
	if err != nil {
		var md *engine.VideoMetadata
		if res != nil && engine.StageOf(err) == engine.StageTranscript {
			md = &res.Transcript.VideoMetadata
		}
		writeEngineError(w, r, err, md)
		return
	}
	writeJSON(w, http.StatusOK, DigestResponse{
		Transcript: res.Transcript,
		Summary:    res.Summary,
		Model:      res.Model,
		Language:   res.Language,
	})
}

// HandleAudit lists recent third-party provider calls, newest first.
// ?limit bounds the result.
func (h *Handlers) HandleAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, MsgBadLimit)
			return
		}
		limit = n
	}

	entries, err := audit.Recent(r.Context(), limit)
	switch {
	case errors.Is(err, audit.ErrDisabled), errors.Is(err, audit.ErrNotQueryable):
		writeError(w, http.StatusNotFound, MsgAuditUnavailable)
		return
	case err != nil:
		slog.Error("audit query failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "An error occurred: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AuditResponse{Entries: entries})
}

// RegisterRoutes registers all API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux) {
	h := NewHandlers()
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /metrics", h.HandleMetrics)
	mux.HandleFunc("GET /models", h.HandleModels)
	mux.HandleFunc("GET /audit", h.HandleAudit)
	mux.HandleFunc("POST /transcript", h.HandleTranscript)
	mux.HandleFunc("POST /summarize", h.HandleSummarize)
	mux.HandleFunc("POST /digest", h.HandleDigest)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// A single "*" allows any origin.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	return true
}

func writeSummary(w http.ResponseWriter, s *engine.SummaryResult, format, lang string) {
	switch format {
	case toolutil.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, digest.RenderMarkdown(s, lang))
	case toolutil.FormatHTML:
		out, err := digest.RenderHTML(s, lang)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, out)
	default:
		writeJSON(w, http.StatusOK, s)
	}
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error, md *engine.VideoMetadata) {
	status := engine.HTTPStatus(engine.KindOf(err))
	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("kind", engine.KindOf(err).String()),
		slog.Any("error", err),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
	} else {
		slog.Info("request rejected", attrs...)
	}
	writeJSON(w, status, toolutil.NewErrorBody(err, md))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, toolutil.ErrorBody{Error: msg})
}

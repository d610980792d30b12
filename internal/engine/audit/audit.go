// Package audit records third-party summarization calls. A failing sink is
// logged and counted but never fails the request that triggered it.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// Entry is one audited provider call.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Language  string    `json:"language"`
}

// Sink persists entries.
type Sink interface {
	Write(ctx context.Context, e Entry) error
	Close() error
}

// Reader is implemented by sinks that can list stored entries.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Errors returned by Recent.
var (
	ErrDisabled     = errors.New("audit: no sink configured")
	ErrNotQueryable = errors.New("audit: sink cannot be queried")
)

// DefaultLimit and MaxLimit bound Recent.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

var (
	sinkMu sync.RWMutex
	sink   Sink
)

// SetSink installs s as the process-wide sink; nil disables auditing.
func SetSink(s Sink) {
	sinkMu.Lock()
	sink = s
	sinkMu.Unlock()
}

// Close closes and removes the installed sink.
func Close() error {
	sinkMu.Lock()
	s := sink
	sink = nil
	sinkMu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}

// Record writes e to the installed sink.
func Record(ctx context.Context, e Entry) {
	sinkMu.RLock()
	s := sink
	sinkMu.RUnlock()
	if s == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := s.Write(ctx, e); err != nil {
		engine.IncrAuditErrors()
		slog.Warn("audit: write failed", slog.String("model", e.Model), slog.Any("error", err))
		return
	}
	engine.IncrAuditWrites()
}

// Recent returns up to limit entries from the installed sink, newest first.
// A limit outside (0, MaxLimit] becomes DefaultLimit.
func Recent(ctx context.Context, limit int) ([]Entry, error) {
	sinkMu.RLock()
	s := sink
	sinkMu.RUnlock()
	if s == nil {
		return nil, ErrDisabled
	}
	r, ok := s.(Reader)
	if !ok {
		return nil, ErrNotQueryable
	}
	out, err := r.Recent(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}

// Open builds a sink from configuration. dsn takes precedence over path:
// "sqlite:<file>" opens SQLite, "postgres://" or "postgresql://" opens
// Postgres. With only path set, entries go to a JSON-lines file.
// Both empty returns (nil, nil).
func Open(ctx context.Context, dsn, path string) (Sink, error) {
	var (
		s   Sink
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		s, err = OpenSQLite(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s, err = OpenPostgres(ctx, dsn)
	case dsn != "":
		return nil, fmt.Errorf("audit: unsupported AUDIT_DSN scheme in %q", redact(dsn))
	case path != "":
		s, err = OpenFile(path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

var errClosed = errors.New("audit: sink closed")

// redact hides everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i+1] + "..."
	}
	return "..."
}

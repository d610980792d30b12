package digest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/audit"
)

func TestMain(m *testing.M) {
	c := engine.DefaultConfig()
	c.TranscriptRetryDelay = time.Millisecond
	engine.Init(c)
	os.Exit(m.Run())
}

const validSummaryJSON = `{
  "mainTopic": "Rick Astley sings about commitment.",
  "chronology": [{"title": "Intro", "explanation": "The song opens."}],
  "keyPoints": [{"title": "Loyalty", "explanation": "He promises never to give you up."}],
  "insights": [
    {"title": "Consistency", "explanation": "Repetition makes a hook memorable."},
    {"title": "Sincerity", "explanation": "Plain lyrics can land well."},
    {"title": "Timing", "explanation": "The chorus arrives early."}
  ],
  "conclusion": "A classic about staying true."
}`

// fakeProvider returns a canned reply and records what it was asked.
type fakeProvider struct {
	mu     sync.Mutex
	name   string
	reply  string
	err    error
	calls  int
	prompt Prompt
	model  string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, model string, p Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompt = p
	f.model = model
	return f.reply, f.err
}

func installProviders(t *testing.T, first, third Provider) {
	t.Helper()
	ResetProviders()
	if first != nil {
		SetProvider(FamilyFirstParty, first)
	}
	if third != nil {
		SetProvider(FamilyThirdParty, third)
	}
	t.Cleanup(ResetProviders)
}

// memSink keeps audit entries in memory.
type memSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *memSink) Write(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) Entries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.entries...)
}

func installAudit(t *testing.T) *memSink {
	t.Helper()
	s := &memSink{}
	audit.SetSink(s)
	t.Cleanup(func() { audit.SetSink(nil) })
	return s
}

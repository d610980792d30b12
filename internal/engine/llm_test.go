package engine

import (
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"upper tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"single line", "```json{\"a\":1}```", `{"a":1}`},
		{"whitespace", "  \n```json\n{\"a\":1}\n```  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.raw); got != tt.want {
				t.Errorf("stripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"plain object", `{"mainTopic":"x"}`, `{"mainTopic":"x"}`, true},
		{"fenced", "```json\n{\"mainTopic\":\"x\"}\n```", `{"mainTopic":"x"}`, true},
		{"leading prose", `Here is the summary: {"mainTopic":"x"} Hope it helps!`, `{"mainTopic":"x"}`, true},
		{"nested braces", `ok {"a":{"b":1}} done`, `{"a":{"b":1}}`, true},
		{"no braces", "I cannot summarize this video.", "", false},
		{"only opening", `{"a":`, "", false},
		{"reversed", `} nothing {`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanJSON(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("CleanJSON() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("CleanJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSONObject(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		obj, err := ParseJSONObject("```json\n{\"conclusion\":\"done\"}\n```", StageSummarize)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if obj["conclusion"] != "done" {
			t.Errorf("conclusion = %v", obj["conclusion"])
		}
	})

	t.Run("no object", func(t *testing.T) {
		_, err := ParseJSONObject("sorry, no", StageSummarize)
		if KindOf(err) != KindResponseParse {
			t.Fatalf("expected response parse error, got %v", err)
		}
	})

	t.Run("broken json keeps snippet", func(t *testing.T) {
		raw := `{"mainTopic": "x", "keyPoints": [` + strings.Repeat("a", 500) + `}`
		_, err := ParseJSONObject(raw, StageSummarize)
		e, ok := err.(*Error)
		if !ok {
			t.Fatalf("expected *Error, got %T", err)
		}
		if e.Kind != KindResponseParse {
			t.Errorf("kind = %v", e.Kind)
		}
		if n := len([]rune(e.Snippet)); n > snippetRunes+3 {
			t.Errorf("snippet too long: %d runes", n)
		}
		if !strings.HasPrefix(e.Snippet, `{"mainTopic"`) {
			t.Errorf("snippet = %q", e.Snippet)
		}
	})
}

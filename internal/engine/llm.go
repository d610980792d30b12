package engine

import (
	"encoding/json"
	"strings"
)

// snippetRunes caps the offending provider output carried by parse errors.
const snippetRunes = 200

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag line ("json", "JSON", "javascript", ...).
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// CleanJSON reduces raw model output to its JSON object text.
// Returns false when no {...} span exists.
func CleanJSON(raw string) (string, bool) {
	s := stripFences(raw)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s, true
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// ParseJSONObject cleans raw model output and decodes it into a generic
// object. Failures are KindResponseParse errors carrying a bounded snippet.
func ParseJSONObject(raw, stage string) (map[string]any, error) {
	cleaned, ok := CleanJSON(raw)
	if !ok {
		e := Errorf(KindResponseParse, stage, "response contains no JSON object")
		e.Snippet = Snippet(raw)
		return nil, e
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		e := NewError(KindResponseParse, stage, "response is not valid JSON", err)
		e.Snippet = Snippet(raw)
		return nil, e
	}
	return obj, nil
}

// Snippet returns a rune-safe prefix of s suitable for logs and diagnostics.
func Snippet(s string) string {
	return TruncateRunes(strings.TrimSpace(s), snippetRunes, "...")
}

package sources

import (
	"bytes"
	"encoding/json"
)

// Markers that precede JSON blobs embedded in the watch page.
var (
	ytInitialDataMarkers = []string{
		"var ytInitialData = ",
		`window["ytInitialData"] = `,
		"ytInitialData = ",
	}
	ytInitialPlayerResponseMarkers = []string{
		"var ytInitialPlayerResponse = ",
		"ytInitialPlayerResponse = ",
	}
)

// findJSONBlob locates the first marker whose following object decodes as JSON.
// Returns nil when no marker yields a valid object.
func findJSONBlob(page []byte, markers []string) []byte {
	for _, marker := range markers {
		rest := page
		for {
			idx := bytes.Index(rest, []byte(marker))
			if idx < 0 {
				break
			}
			rest = rest[idx+len(marker):]
			blob := extractJSON(bytes.TrimLeft(rest, " \t"))
			if blob != nil && json.Valid(blob) {
				return blob
			}
		}
	}
	return nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

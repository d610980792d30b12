// Package toolutil provides helpers shared by the MCP tools and the HTTP API:
// user-facing error rendering and output-format selection.
package toolutil

import (
	"errors"
	"strings"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// ErrorBody is the JSON error payload. Transcript failures also carry
// whatever video metadata was found.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
	engine.VideoMetadata
}

// NewErrorBody renders err for clients. md may be nil.
func NewErrorBody(err error, md *engine.VideoMetadata) ErrorBody {
	body := ErrorBody{Error: engine.UserMessage(err)}
	var e *engine.Error
	if errors.As(err, &e) {
		body.Details = e.Details
		if engine.HTTPStatus(e.Kind) >= 500 {
			if e.Err != nil && len(body.Details) == 0 {
				body.Details = []string{e.Err.Error()}
			}
			if e.Snippet != "" {
				body.Details = append(body.Details, "response: "+e.Snippet)
			}
		}
	}
	if md != nil {
		body.VideoMetadata = *md
	}
	return body
}

// userError keeps the cause reachable while printing the user message.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// UserError converts err into an error whose text is safe to hand to an MCP
// client. Metadata found before a NotFound failure is appended.
func UserError(err error, md *engine.VideoMetadata) error {
	if err == nil {
		return nil
	}
	msg := engine.UserMessage(err)
	if md != nil && engine.KindOf(err) == engine.KindNotFound && md.VideoTitle != "" {
		msg += " (video: " + md.VideoTitle
		if md.ChannelName != "" {
			msg += " by " + md.ChannelName
		}
		msg += ")"
	}
	var e *engine.Error
	if errors.As(err, &e) && len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return &userError{msg: msg, err: err}
}

// Output formats understood by ParseFormat.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ParseFormat normalises an output format name. Unknown names report false.
func ParseFormat(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatMarkdown, "md":
		return FormatMarkdown, true
	case FormatHTML:
		return FormatHTML, true
	}
	return "", false
}

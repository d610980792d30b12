package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies pipeline failures. The kind decides the HTTP status and
// whether a caller may retry.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindTransient
	KindUnsupportedModel
	KindResponseParse
	KindSchemaValidation
	KindConfiguration
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindUnsupportedModel:
		return "unsupported_model"
	case KindResponseParse:
		return "response_parse"
	case KindSchemaValidation:
		return "schema_validation"
	case KindConfiguration:
		return "configuration"
	case KindProvider:
		return "provider"
	}
	return "unknown"
}

// Pipeline stages used for error context.
const (
	StageTranscript = "transcript"
	StageSummarize  = "summarize"
)

// Sentinels wrapped by NotFound errors of the transcript stage.
var (
	ErrNoTranscript    = errors.New("no transcript found for this video or it might be unavailable")
	ErrEmptyTranscript = errors.New("transcript found but it is empty")
)

// ProviderCondition narrows down a KindProvider/KindTransient failure so the
// user gets an actionable message.
type ProviderCondition int

const (
	ConditionNone ProviderCondition = iota
	ConditionPayloadTooLarge
	ConditionRateLimited
)

// Error is the single error type crossing stage boundaries.
type Error struct {
	Kind      Kind
	Stage     string
	Provider  string
	Message   string
	Details   []string // field-level schema diagnostics
	Snippet   string   // truncated offending provider output
	Condition ProviderCondition
	Err       error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Stage != "" {
		sb.WriteString(e.Stage)
		if e.Provider != "" {
			sb.WriteString("(" + e.Provider + ")")
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Err != nil && e.Message != e.Err.Error() {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Details) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(e.Details, "; "))
		sb.WriteString("]")
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind.
func NewError(kind Kind, stage, msg string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: msg, Err: err}
}

// Errorf builds an *Error with a formatted message and no cause.
func Errorf(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// WithProvider returns err annotated with the provider name when it is an
// *Error; other errors are wrapped as KindUnknown first.
func WithProvider(err error, stage, provider string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		if cp.Stage == "" {
			cp.Stage = stage
		}
		if cp.Provider == "" {
			cp.Provider = provider
		}
		return &cp
	}
	return &Error{Kind: KindUnknown, Stage: stage, Provider: provider, Message: err.Error(), Err: err}
}

// KindOf extracts the Kind of err; plain errors are KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StageOf returns the pipeline stage recorded on err, "" if none.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// IsRetryableKind reports whether a caller-level retry makes sense.
// Unclassified errors are retried too.
func IsRetryableKind(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindUnknown:
		return true
	}
	return false
}

// HTTPStatus maps a kind to the status code returned by the HTTP surface.
func HTTPStatus(k Kind) int {
	switch k {
	case KindInvalidInput, KindUnsupportedModel:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// User-facing messages.
const (
	MsgInvalidURL        = "Invalid YouTube URL format."
	MsgNoTranscript      = "No transcript found for this video or it might be unavailable."
	MsgEmptyTranscript   = "Transcript found but it is empty."
	MsgPayloadTooLarge   = "The transcript is too long for the selected model. Choose a shorter video or a different model."
	MsgRateLimited       = "The model provider is busy. Please try again in a moment."
	MsgTranscriptNetwork = "A network error occurred while trying to fetch the transcript."
	MsgSummaryFailed     = "Failed to generate summary"
)

// UserMessage renders err as a human-readable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "An error occurred: " + err.Error()
	}
	switch e.Condition {
	case ConditionPayloadTooLarge:
		return MsgPayloadTooLarge
	case ConditionRateLimited:
		return MsgRateLimited
	}
	switch e.Kind {
	case KindInvalidInput, KindUnsupportedModel, KindNotFound:
		return e.Message
	case KindTransient:
		if e.Stage == StageTranscript {
			return MsgTranscriptNetwork
		}
	case KindConfiguration:
		return e.Message
	}
	if e.Stage == StageSummarize {
		return MsgSummaryFailed + ": " + e.Message
	}
	return "An error occurred: " + e.Message
}

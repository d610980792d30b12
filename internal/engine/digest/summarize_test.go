package digest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzdigest/nzdigest/internal/engine"
)

func TestSummarize_Success(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain", validSummaryJSON},
		{"fenced", "```json\n" + validSummaryJSON + "\n```"},
		{"prose around", "Here is the summary:\n" + validSummaryJSON + "\nHope it helps."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakeProvider{name: "gemini", reply: tt.reply}
			installProviders(t, fp, nil)

			res, err := Summarize(context.Background(), Request{Transcript: "never gonna give you up", Model: DefaultModel})
			require.NoError(t, err)
			assert.Equal(t, "Rick Astley sings about commitment.", res.MainTopic)
			require.Len(t, res.Insights, 3)
			assert.Equal(t, "Timing", res.Insights[2].Title)
			assert.Equal(t, 1, fp.calls)
		})
	}
}

func TestSummarize_DefaultLanguageIsIndonesian(t *testing.T) {
	fp := &fakeProvider{name: "gemini", reply: validSummaryJSON}
	installProviders(t, fp, nil)

	_, err := Summarize(context.Background(), Request{Transcript: "hello world", Model: DefaultModel})
	require.NoError(t, err)
	assert.Equal(t, engine.LangIndonesian, fp.prompt.Language)
	assert.Contains(t, fp.prompt.System, "hello world")
	assert.Contains(t, fp.prompt.User, "hello world")
}

func TestSummarize_EnglishPrompt(t *testing.T) {
	fp := &fakeProvider{name: "gemini", reply: validSummaryJSON}
	installProviders(t, fp, nil)

	_, err := Summarize(context.Background(), Request{Transcript: "hello world", Model: DefaultModel, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, engine.LangEnglish, fp.prompt.Language)
	assert.Contains(t, fp.prompt.System, "Video Transcript:")
}

func TestSummarize_InputValidation(t *testing.T) {
	fp := &fakeProvider{name: "gemini", reply: validSummaryJSON}
	installProviders(t, fp, fp)

	tests := []struct {
		name    string
		req     Request
		kind    engine.Kind
		message string
	}{
		{"blank transcript", Request{Transcript: "  \n ", Model: DefaultModel}, engine.KindInvalidInput, MsgTranscriptEmpty},
		{"missing model", Request{Transcript: "text"}, engine.KindInvalidInput, MsgModelRequired},
		{"unknown model", Request{Transcript: "text", Model: "gpt-17"}, engine.KindUnsupportedModel, "Unsupported model: gpt-17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, engine.KindOf(err))
			assert.Equal(t, tt.message, engine.UserMessage(err))
			assert.Equal(t, 400, engine.HTTPStatus(engine.KindOf(err)))
		})
	}
	assert.Zero(t, fp.calls, "provider must not be called for invalid input")
}

func TestSummarize_ParseFailure(t *testing.T) {
	reply := strings.Repeat("I cannot summarize this video. ", 20)
	installProviders(t, &fakeProvider{name: "gemini", reply: reply}, nil)

	_, err := Summarize(context.Background(), Request{Transcript: "text", Model: DefaultModel})
	require.Error(t, err)
	assert.Equal(t, engine.KindResponseParse, engine.KindOf(err))

	var e *engine.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "gemini", e.Provider)
	assert.True(t, strings.HasPrefix(e.Snippet, "I cannot summarize"))
	assert.LessOrEqual(t, len([]rune(e.Snippet)), 203)
	assert.Equal(t, 500, engine.HTTPStatus(e.Kind))
}

func TestSummarize_SchemaFailure(t *testing.T) {
	reply := `{"mainTopic":"x","chronology":[],"keyPoints":[{"title":"","explanation":"e"}],"insights":[],"conclusion":"c"}`
	installProviders(t, &fakeProvider{name: "gemini", reply: reply}, nil)

	_, err := Summarize(context.Background(), Request{Transcript: "text", Model: DefaultModel})
	require.Error(t, err)
	assert.Equal(t, engine.KindSchemaValidation, engine.KindOf(err))

	var e *engine.Error
	require.True(t, errors.As(err, &e))
	require.NotEmpty(t, e.Details)
	assert.True(t, hasPrefix(e.Details, "/keyPoints/0/title:"), "details: %v", e.Details)
	assert.True(t, strings.HasPrefix(engine.UserMessage(err), engine.MsgSummaryFailed))
}

func TestSummarize_ProviderErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      engine.Kind
		condition engine.ProviderCondition
		message   string
	}{
		{"payload too large", errors.New("API error 413: Request too large for model"), engine.KindProvider, engine.ConditionPayloadTooLarge, engine.MsgPayloadTooLarge},
		{"rate limited", errors.New("status 429: rate_limit_exceeded"), engine.KindTransient, engine.ConditionRateLimited, engine.MsgRateLimited},
		{"context length", errors.New("context_length_exceeded"), engine.KindProvider, engine.ConditionPayloadTooLarge, engine.MsgPayloadTooLarge},
		{"other", errors.New("model overloaded"), engine.KindProvider, engine.ConditionNone, engine.MsgSummaryFailed + ": model overloaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			third := &fakeProvider{name: "groq", err: tt.err}
			installProviders(t, nil, third)

			_, err := Summarize(context.Background(), Request{Transcript: "text", Model: "qwen/qwen3-32b"})
			require.Error(t, err)
			var e *engine.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.condition, e.Condition)
			assert.Equal(t, "groq", e.Provider)
			assert.Equal(t, tt.message, engine.UserMessage(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSummarize_ThirdPartyIsAudited(t *testing.T) {
	sink := installAudit(t)
	third := &fakeProvider{name: "groq", reply: validSummaryJSON}
	first := &fakeProvider{name: "gemini", reply: validSummaryJSON}
	installProviders(t, first, third)

	_, err := Summarize(context.Background(), Request{Transcript: "text", Model: "llama-3.3-70b-versatile", Language: "en"})
	require.NoError(t, err)
	_, err = Summarize(context.Background(), Request{Transcript: "text", Model: DefaultModel})
	require.NoError(t, err)

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "llama-3.3-70b-versatile", entries[0].Model)
	assert.Equal(t, "en", entries[0].Language)
	assert.False(t, entries[0].Timestamp.IsZero())
	assert.Equal(t, "llama-3.3-70b-versatile", third.model)
}

func TestSummarize_AuditSkipsUnconfiguredProvider(t *testing.T) {
	sink := installAudit(t)
	third := &fakeProvider{
		name: "groq",
		err:  engine.Errorf(engine.KindConfiguration, engine.StageSummarize, "GROQ_API_KEY is not set"),
	}
	installProviders(t, nil, third)

	_, err := Summarize(context.Background(), Request{Transcript: "text", Model: "qwen/qwen3-32b"})
	require.Error(t, err)
	assert.Equal(t, engine.KindConfiguration, engine.KindOf(err))
	assert.Empty(t, sink.Entries())
}

func TestSummarize_AuditRecordsFailedCall(t *testing.T) {
	sink := installAudit(t)
	third := &fakeProvider{name: "groq", err: errors.New("upstream reset")}
	installProviders(t, nil, third)

	_, err := Summarize(context.Background(), Request{Transcript: "text", Model: "qwen/qwen3-32b", Language: "id"})
	require.Error(t, err)
	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "qwen/qwen3-32b", entries[0].Model)
}

func hasPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

package digestserver

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/digest"
	"github.com/nzdigest/nzdigest/internal/testutil/ytfake"
)

const summaryJSON = `{"mainTopic":"Commitment","chronology":[{"title":"Intro","explanation":"It starts."}],"keyPoints":[{"title":"Loyalty","explanation":"Never giving up."}],"insights":[{"title":"Hooks","explanation":"Repetition works."}],"conclusion":"A classic."}`

type stubProvider struct{ reply string }

func (s stubProvider) Name() string { return "stub" }
func (s stubProvider) Generate(context.Context, string, digest.Prompt) (string, error) {
	return s.reply, nil
}

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "nzdigest", Version: "test"}, nil)
	RegisterTools(server)

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func decodeStructured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var out T
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func errorText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func installStub(t *testing.T) {
	t.Helper()
	digest.ResetProviders()
	digest.SetProvider(digest.FamilyFirstParty, stubProvider{reply: summaryJSON})
	digest.SetProvider(digest.FamilyThirdParty, stubProvider{reply: "```json\n" + summaryJSON + "\n```"})
	t.Cleanup(digest.ResetProviders)
}

func TestRegisterTools_List(t *testing.T) {
	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"list_models", "summarize_transcript", "youtube_digest", "youtube_transcript"}, names)
	assert.Len(t, names, ToolCount)
}

func TestListModels(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "list_models", map[string]any{})
	require.False(t, res.IsError)

	out := decodeStructured[engine.ListModelsOutput](t, res)
	require.NotEmpty(t, out.Models)
	assert.Equal(t, digest.DefaultModel, out.Models[0].ID)
	assert.True(t, out.Models[0].Default)
}

func TestSummarizeTranscript(t *testing.T) {
	installStub(t)
	cs := connect(t)

	res := call(t, cs, "summarize_transcript", map[string]any{
		"transcript": "never gonna give you up",
		"model":      "llama-3.3-70b-versatile",
	})
	require.False(t, res.IsError, errorText(res))
	out := decodeStructured[engine.SummaryResult](t, res)
	assert.Equal(t, "Commitment", out.MainTopic)
	assert.Equal(t, "Hooks", out.Insights[0].Title)
}

func TestSummarizeTranscript_UnsupportedModel(t *testing.T) {
	installStub(t)
	cs := connect(t)

	res := call(t, cs, "summarize_transcript", map[string]any{"transcript": "text", "model": "gpt-17"})
	assert.True(t, res.IsError)
	assert.Contains(t, errorText(res), "Unsupported model: gpt-17")
}

func TestYouTubeTranscript(t *testing.T) {
	ytfake.New(t)
	cs := connect(t)

	res := call(t, cs, "youtube_transcript", map[string]any{"url": ytfake.URL})
	require.False(t, res.IsError, errorText(res))
	out := decodeStructured[engine.TranscriptResult](t, res)
	assert.Equal(t, ytfake.Transcript, out.Transcript)
	assert.Equal(t, ytfake.Title, out.VideoTitle)
	assert.Equal(t, ytfake.Channel, out.ChannelName)
}

func TestYouTubeTranscript_InvalidURL(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "youtube_transcript", map[string]any{"url": "https://vimeo.com/123"})
	assert.True(t, res.IsError)
	assert.Equal(t, engine.MsgInvalidURL, errorText(res))
}

func TestYouTubeTranscript_NoCaptions(t *testing.T) {
	yt := ytfake.New(t)
	yt.Captions = false
	cs := connect(t)

	res := call(t, cs, "youtube_transcript", map[string]any{"url": ytfake.URL})
	assert.True(t, res.IsError)
	assert.Contains(t, errorText(res), engine.MsgNoTranscript)
	assert.Contains(t, errorText(res), ytfake.Title)
}

func TestYouTubeDigest(t *testing.T) {
	ytfake.New(t)
	installStub(t)
	cs := connect(t)

	res := call(t, cs, "youtube_digest", map[string]any{"url": ytfake.URL, "language": "en"})
	require.False(t, res.IsError, errorText(res))
	out := decodeStructured[engine.DigestResult](t, res)
	assert.Equal(t, digest.DefaultModel, out.Model)
	assert.Equal(t, "en", out.Language)
	assert.Equal(t, ytfake.Transcript, out.Transcript.Transcript)
	assert.Equal(t, "A classic.", out.Summary.Conclusion)
}

package digestserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/sources"
	"github.com/nzdigest/nzdigest/internal/toolutil"
)

func registerTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the full caption transcript of a YouTube video plus best-effort metadata (title, channel, upload date, view count). Accepts youtube.com/watch?v=ID and youtu.be/ID links. Prefers Indonesian captions, then English; manual tracks win over auto-generated ones.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, *engine.TranscriptResult, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		res, err := sources.FetchTranscript(ctx, input.URL, input.Language)
		if err != nil {
			var md *engine.VideoMetadata
			if res != nil {
				md = &res.VideoMetadata
			}
			return nil, nil, toolutil.UserError(err, md)
		}
		return nil, res, nil
	})
}

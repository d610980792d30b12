package digestserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/digest"
	"github.com/nzdigest/nzdigest/internal/toolutil"
)

func registerDigest(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_digest",
		Description: "One-shot YouTube digest: fetches the transcript and metadata of a video, then summarizes it with the chosen model (default gemini-flash). Transient transcript failures are retried; the summary step runs once.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.DigestInput) (*mcp.CallToolResult, *engine.DigestResult, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		res, err := digest.Digest(ctx, input.URL, input.Model, input.Language)
		if err != nil {
			var md *engine.VideoMetadata
			if res != nil {
				md = &res.Transcript.VideoMetadata
			}
			return nil, nil, toolutil.UserError(err, md)
		}
		return nil, res, nil
	})
}

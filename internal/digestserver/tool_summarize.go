package digestserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/digest"
	"github.com/nzdigest/nzdigest/internal/toolutil"
)

func registerSummarize(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_transcript",
		Description: "Summarize a transcript into a structured JSON object: mainTopic, chronology, keyPoints, insights and conclusion. The model is required; call list_models for the allowed identifiers. Language is id (default), en or auto.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, *engine.SummaryResult, error) {
		res, err := digest.Summarize(ctx, digest.Request{
			Transcript: input.Transcript,
			Model:      input.Model,
			Language:   input.Language,
		})
		if err != nil {
			return nil, nil, toolutil.UserError(err, nil)
		}
		return nil, res, nil
	})
}

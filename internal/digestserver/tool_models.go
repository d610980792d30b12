package digestserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/digest"
)

func registerListModels(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "List the model identifiers accepted by summarize_transcript and youtube_digest.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ engine.ListModelsInput) (*mcp.CallToolResult, *engine.ListModelsOutput, error) {
		return nil, &engine.ListModelsOutput{Models: digest.Models()}, nil
	})
}

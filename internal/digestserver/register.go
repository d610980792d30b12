// Package digestserver exposes the transcript and summarization pipeline as
// MCP tools.
package digestserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 4

// RegisterTools registers youtube_transcript, summarize_transcript,
// youtube_digest and list_models on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerTranscript(server)
	registerSummarize(server)
	registerDigest(server)
	registerListModels(server)
}

// Command nzdigest turns YouTube videos into structured digests.
//
// Fetches a video's captions and metadata, then produces a structured
// summary with Gemini or a Groq-hosted model. Runs as an HTTP API plus MCP
// server (serve) or as a one-shot CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/audit"
	"github.com/nzdigest/nzdigest/internal/webapi"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nzdigest",
		Short: "Summarize YouTube videos from their transcripts",
		Long: `nzdigest fetches the transcript and metadata of a YouTube video and turns
it into a structured summary: main topic, chronology, key points, insights
and conclusion.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		setupLogging(*debugLogging)
		return initEngine(cmd.Context())
	}
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		engine.StopCache()
		if err := audit.Close(); err != nil {
			slog.Warn("audit close failed", slog.Any("error", err))
		}
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newTranscriptCommand())
	cmd.AddCommand(newSummarizeCommand())
	cmd.AddCommand(newModelsCommand())
	return cmd
}

func main() {
	webapi.Version = version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nzdigest/nzdigest/internal/digestserver"
	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/webapi"
)

func newServeCommand() *cobra.Command {
	var (
		httpAddr string
		mcpPort  string
		noMCP    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if httpAddr == "" {
				httpAddr = env.Str("HTTP_ADDR", ":8080")
			}
			if mcpPort == "" {
				mcpPort = env.Str("MCP_PORT", "8891")
			}
			return serve(cmd.Context(), httpAddr, mcpPort, !noMCP)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP API listen address (env HTTP_ADDR, default :8080)")
	cmd.Flags().StringVar(&mcpPort, "mcp-port", "", "MCP server port (env MCP_PORT, default 8891)")
	cmd.Flags().BoolVar(&noMCP, "no-mcp", false, "Serve only the HTTP API")
	return cmd
}

func serve(ctx context.Context, httpAddr, mcpPort string, withMCP bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	api := webapi.New(webapi.Config{
		Addr:        httpAddr,
		CORSOrigins: corsOrigins(),
	})

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		return api.ListenAndServe(ctx)
	})

	if withMCP {
		g.Go(func() error {
			defer cancel()
			return runMCP(mcpPort)
		})
	}

	slog.Info("starting nzdigest",
		slog.String("version", version),
		slog.String("http", httpAddr),
		slog.String("mcp_port", mcpPort),
		slog.Bool("mcp", withMCP))
	return g.Wait()
}

func runMCP(port string) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "nzdigest",
		Version: version,
	}, nil)

	digestserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", digestserver.ToolCount))

	return mcpserver.Run(server, mcpserver.Config{
		Name:         "nzdigest",
		Version:      version,
		Port:         port,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	})
}

func corsOrigins() []string {
	if origins := env.List("CORS_ORIGINS", ""); len(origins) > 0 {
		return origins
	}
	return fileCfg.CORSOrigins
}

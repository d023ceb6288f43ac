// Command bridge runs a standalone MCP-UI Bridge process: it serves
// registered tools/resources over HTTP and a WebSocket action channel,
// and optionally connects an MCP client to a remote MCP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentoven/mcpuibridge/internal/mcpserver"
	"github.com/agentoven/mcpuibridge/internal/mcpserver/schema"
	"github.com/agentoven/mcpuibridge/internal/uiresource"
	"github.com/agentoven/mcpuibridge/pkg/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("🌉 mcp-ui bridge starting")

	ctx := context.Background()
	srv, err := server.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize bridge")
	}

	registerSampleTool(srv.MCPServer)

	if srv.Config.Client.URL != "" {
		if err := srv.ConnectUpstream(ctx); err != nil {
			log.Warn().Err(err).Msg("upstream mcp connection failed; continuing with local tools only")
		}
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.Port),
		Handler:      srv.Handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", srv.Port).Msg("🔥 mcp-ui bridge ready")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// registerSampleTool seeds a minimal example tool/resource pair so a fresh
// checkout has something to exercise over /tools and /resources before an
// embedder registers its own.
func registerSampleTool(mcpSrv *mcpserver.Server) {
	mcpSrv.RegisterTool(mcpserver.Tool{
		Name:        "echo",
		Description: "Echoes back the provided message.",
		InputSchema: schema.Schema{
			Properties: []schema.Property{{Name: "message", Kind: schema.KindString}},
			Required:   []string{"message"},
		},
		Handle: func(_ context.Context, args map[string]any) (any, error) {
			return map[string]any{"message": args["message"]}, nil
		},
	})

	mcpSrv.AddResource(uiresource.New(
		"ui://bridge/welcome",
		uiresource.MimeHTML,
		"<div><h1>MCP-UI Bridge</h1><p>Connected.</p></div>",
		uiresource.Meta{},
	))
}

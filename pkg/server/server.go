// Package server provides the public entry point for wiring a complete
// MCP-UI Bridge process: the MCP server core, the MCP client, the
// interactive host, and the HTTP surface that exposes them.
//
// This package lives in pkg/ rather than internal/ so an embedder can
// register its own tools/resources and compose them with this wiring
// before starting the process.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentoven/mcpuibridge/internal/config"
	"github.com/agentoven/mcpuibridge/internal/host"
	"github.com/agentoven/mcpuibridge/internal/mcpclient"
	"github.com/agentoven/mcpuibridge/internal/mcpserver"
	"github.com/agentoven/mcpuibridge/internal/remotedom"
	"github.com/agentoven/mcpuibridge/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Server holds one fully wired bridge process: a local MCP server core
// (the in-process tool/resource registry a bridge embeds), an optional MCP
// client connected to a remote MCP server over WS/HTTP, and the interactive
// host that dispatches actions from sandboxed frames to the local MCP
// server core.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// MCPServer is the local tool/resource registry, already started by
	// NewWithConfig. Exposed so an embedder can RegisterTool/AddResource.
	MCPServer *mcpserver.Server

	// Client bridges to a remote MCP server. Nil until ConnectUpstream is
	// called — a bridge that only serves local tools never needs one.
	Client *mcpclient.Client

	// Host dispatches action-protocol messages between frames and the
	// local MCP server.
	Host *host.Handler

	// Renderers is a map of remotedom.Renderer keyed by resource URI.
	// NewWithConfig creates it empty and nothing in this package adds to it.
	Renderers map[string]*remotedom.Renderer

	Config *config.Config
	Port   int

	shutdownTelemetry func(context.Context) error
}

// New initializes a Server from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes a Server with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	mcpSrv := mcpserver.New()
	if err := mcpSrv.Start(); err != nil {
		return nil, fmt.Errorf("start mcp server: %w", err)
	}
	log.Info().Msg("mcp server core initialized")

	hostHandler := host.NewHandler(mcpSrv, host.Observers{})

	s := &Server{
		MCPServer:         mcpSrv,
		Host:              hostHandler,
		Renderers:         make(map[string]*remotedom.Renderer),
		Config:            cfg,
		Port:              cfg.Port,
		shutdownTelemetry: shutdown,
	}

	s.Handler = newRouter(s)
	return s, nil
}

// ConnectUpstream dials the MCP client configured by cfg.Client and stores
// it in s.Client on success. Host keeps dispatching tool actions to the
// local MCP server only; nothing routes them through s.Client.
func (s *Server) ConnectUpstream(ctx context.Context) error {
	client := mcpclient.New(mcpclient.Options{
		URL:                  s.Config.Client.URL,
		ConnectTimeout:       s.Config.Client.ConnectTimeout,
		RequestTimeout:       s.Config.Client.RequestTimeout,
		AutoReconnect:        s.Config.Client.AutoReconnect,
		MaxReconnectAttempts: s.Config.Client.MaxReconnectAttempts,
		ReconnectDelay:       s.Config.Client.ReconnectDelay,
		Verbose:              s.Config.Client.Verbose,
	})
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect upstream mcp client: %w", err)
	}
	s.Client = client
	return nil
}

// Shutdown tears down the upstream client (if any), stops the local MCP
// server, and flushes telemetry.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.Client != nil {
		_ = s.Client.Disconnect()
	}
	if err := s.MCPServer.Stop(); err != nil {
		log.Warn().Err(err).Msg("mcp server stop")
	}
	if s.shutdownTelemetry != nil {
		return s.shutdownTelemetry(ctx)
	}
	return nil
}

package mcpserver

import (
	"context"

	"github.com/agentoven/mcpuibridge/internal/mcpserver/schema"
)

// Handler executes a tool's registered behavior against validated
// arguments. It may return any JSON-serializable result, or an error which
// ExecuteTool wraps into a structured failure (spec §4.E step 5).
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is a server-registered executable (spec §3).
type Tool struct {
	Name        string
	Description string
	InputSchema schema.Schema
	Handle      Handler
}

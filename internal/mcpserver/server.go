// Package mcpserver implements the MCP server core (spec §4.E): a tool
// registry, a resource store, argument validation, and closed-system tool
// dispatch — no exception ever escapes ExecuteTool.
package mcpserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentoven/mcpuibridge/internal/mcpserver/schema"
	"github.com/agentoven/mcpuibridge/internal/telemetry"
	"github.com/agentoven/mcpuibridge/internal/uiresource"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ExecuteRequest is the entry point payload for ExecuteTool.
type ExecuteRequest struct {
	Name      string
	Arguments map[string]any
}

// ExecuteResult mirrors the structured ToolResponse spec §4.E describes.
type ExecuteResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Server holds the registry of tools and resources for one MCP server
// instance. Reads are lock-free relative to each other (RWMutex); writes
// (RegisterTool/AddResource) are serialized.
type Server struct {
	mu        sync.RWMutex
	tools     map[string]Tool
	resources map[string]uiresource.UIResource
	running   bool
}

// New creates an empty, unstarted MCP server.
func New() *Server {
	return &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]uiresource.UIResource),
	}
}

// RegisterTool adds a tool to the registry, keyed by name. Last write wins.
func (s *Server) RegisterTool(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[t.Name] = t
	log.Debug().Str("tool", t.Name).Msg("tool registered")
}

// AddResource adds a resource to the store, keyed by uri.
func (s *Server) AddResource(r uiresource.UIResource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.URI] = r
	log.Debug().Str("uri", r.URI).Msg("resource added")
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []uiresource.UIResource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uiresource.UIResource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, r)
	}
	return out
}

// GetResource looks up a resource by uri, returning ErrResourceNotFound if
// it isn't registered.
func (s *Server) GetResource(uri string) (uiresource.UIResource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[uri]
	if !ok {
		return uiresource.UIResource{}, &ErrResourceNotFound{URI: uri}
	}
	return r, nil
}

// GetResourceCount returns the number of registered resources.
func (s *Server) GetResourceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

// ToolInfo is the public metadata for a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// GetAvailableTools returns registered tool metadata.
func (s *Server) GetAvailableTools() []ToolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ToolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, ToolInfo{Name: t.Name, Description: t.Description})
	}
	return out
}

// Start marks the server running. Starting an already-running server fails.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}
	s.running = true
	log.Info().Msg("mcp server started")
	return nil
}

// Stop marks the server stopped. Stopping an already-stopped server fails.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return fmt.Errorf("server not running")
	}
	s.running = false
	log.Info().Msg("mcp server stopped")
	return nil
}

// IsRunning reports whether Start has been called without a matching Stop.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ExecuteTool is the closed-system entry point for dispatch (spec §4.E).
// It never panics or returns a Go error: every failure mode is a structured
// ExecuteResult with Success=false.
func (s *Server) ExecuteTool(ctx context.Context, req ExecuteRequest) ExecuteResult {
	ctx, span := telemetry.Tracer().Start(ctx, "mcpserver.ExecuteTool")
	span.SetAttributes(attribute.String("mcpui.tool_name", req.Name))
	defer span.End()

	fail := func(result ExecuteResult) ExecuteResult {
		span.SetStatus(codes.Error, result.Error)
		return result
	}

	s.mu.RLock()
	tool, ok := s.tools[req.Name]
	s.mu.RUnlock()
	if !ok {
		return fail(ExecuteResult{Success: false, Error: fmt.Sprintf("Tool not found: %s", req.Name)})
	}

	for _, required := range tool.InputSchema.Required {
		if _, present := req.Arguments[required]; !present {
			return fail(ExecuteResult{Success: false, Error: fmt.Sprintf("Missing required argument: %s", required)})
		}
	}

	for name, value := range req.Arguments {
		prop, declared := tool.InputSchema.Lookup(name)
		if !declared || prop.Kind == "" {
			continue
		}
		if !prop.Kind.Matches(value) {
			return fail(ExecuteResult{
				Success: false,
				Error: fmt.Sprintf("Argument %s has wrong type. Expected %s, got %s",
					name, prop.Kind.TypeName(), schema.GoTypeName(value)),
			})
		}
	}

	result, err := invoke(ctx, tool, req.Arguments)
	if err != nil {
		return fail(ExecuteResult{Success: false, Error: fmt.Sprintf("Tool execution failed: %s", err.Error())})
	}

	return ExecuteResult{
		Success: true,
		Data: map[string]any{
			"toolName":  req.Name,
			"result":    result,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"params":    req.Arguments,
		},
	}
}

// invoke isolates the handler call so a panicking handler is converted into
// a HandlerException result instead of crashing the server — handler
// exceptions never escape ExecuteTool (spec §4.E failure semantics).
func invoke(ctx context.Context, tool Tool, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return tool.Handle(ctx, args)
}

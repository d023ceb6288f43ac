package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/agentoven/mcpuibridge/internal/mcpserver"
	"github.com/agentoven/mcpuibridge/internal/uiresource"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// This file implements the server half of spec §6's wire protocol — the
// contract an internal/mcpclient.Client (component D) speaks to reach an
// MCP server (component E). It is deliberately separate from the
// action-protocol WS handler in router.go: that one answers
// internal/host.Handler's sandboxed-frame traffic (component B); this one
// answers MCPServer's own resources.list/resources.read/tools.list/
// tools.execute methods, so another bridge's Client can dial straight into
// this process's local tool/resource registry over either transport the
// configuration table in spec §4.D allows.

// dispatchWireMethod executes one of the four methods spec §6 names
// against the local MCP server and returns a JSON-serializable result or
// an error to report back to the caller.
func dispatchWireMethod(ctx context.Context, s *Server, method string, params json.RawMessage) (any, error) {
	switch method {
	case "resources.list":
		return s.MCPServer.ListResources(), nil

	case "resources.read":
		var args struct {
			URI string `json:"uri"`
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &args); err != nil {
				return nil, fmt.Errorf("resources.read: decode params: %w", err)
			}
		}
		resource, err := s.MCPServer.GetResource(args.URI)
		if err != nil {
			return nil, err
		}
		return resource, nil

	case "tools.list":
		return s.MCPServer.GetAvailableTools(), nil

	case "tools.execute":
		var args struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &args); err != nil {
				return nil, fmt.Errorf("tools.execute: decode params: %w", err)
			}
		}
		result := s.MCPServer.ExecuteTool(ctx, mcpserver.ExecuteRequest{Name: args.Name, Arguments: args.Arguments})
		return result, nil

	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

// httpWireHandler builds the POST endpoint for one method, matching the
// path mapping internal/mcpclient/transport_http.go's httpTransport uses:
// the request body is the bare params value, the response body is the
// bare result value. resources.read on a Meta.Chunked resource instead
// streams a newline-delimited JSON body tagged with X-MCP-Stream: ndjson —
// the counterpart httpTransport.readStream already knows how to consume.
func httpWireHandler(s *Server, method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&params)
		}

		if method == "resources.read" {
			var args struct {
				URI string `json:"uri"`
			}
			if len(params) == 0 || json.Unmarshal(params, &args) == nil {
				if resource, err := s.MCPServer.GetResource(args.URI); err == nil && resource.Meta.Chunked {
					streamChunkedResource(w, resource)
					return
				}
			}
		}

		result, err := dispatchWireMethod(r.Context(), s, method, params)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(result)
	}
}

// streamChunkedResource writes one uiresource.Publish frame per line,
// flushing after each so the client observes them incrementally rather
// than buffered until the handler returns.
func streamChunkedResource(w http.ResponseWriter, resource uiresource.UIResource) {
	w.Header().Set("X-MCP-Stream", "ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	for _, chunk := range uiresource.Publish(resource) {
		frame, err := json.Marshal(chunk)
		if err != nil {
			log.Warn().Err(err).Msg("mcpserver: marshal stream chunk")
			return
		}
		line, err := json.Marshal(map[string]any{"frame": json.RawMessage(frame), "done": chunk.Done})
		if err != nil {
			log.Warn().Err(err).Msg("mcpserver: marshal stream line")
			return
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// wireEnvelope is the §6 wire-protocol request/response shape.
type wireEnvelope struct {
	ID     string          `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result any             `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Message string `json:"message"`
}

// wsWireHandler upgrades to a WebSocket and serves spec §6's
// {id,method,params} -> {id,result}|{id,error} protocol over it — the
// counterpart internal/mcpclient/transport_ws.go's wsTransport dials.
func wsWireHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("mcpserver: wire websocket upgrade failed")
			return
		}
		defer conn.Close()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req wireEnvelope
			if err := json.Unmarshal(raw, &req); err != nil {
				continue
			}

			result, dispatchErr := dispatchWireMethod(r.Context(), s, req.Method, req.Params)
			resp := wireEnvelope{ID: req.ID}
			if dispatchErr != nil {
				resp.Error = &wireError{Message: dispatchErr.Error()}
			} else {
				resp.Result = result
			}

			data, err := json.Marshal(resp)
			if err != nil {
				log.Warn().Err(err).Msg("mcpserver: marshal wire response")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

// Package mcpclient implements the MCP client transport layer (spec §4.D):
// connection lifecycle, request/response correlation, reconnection with
// backoff, streaming subscriptions, and cancellation.
package mcpclient

import "encoding/json"

// Request is the wire-protocol envelope sent to the server (spec §6).
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ResponseError is the error half of a Response.
type ResponseError struct {
	Message string `json:"message"`
}

// Response is the wire-protocol envelope received from the server.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// StreamFrame is a streamed chunk tagged with the request id it belongs to.
type StreamFrame struct {
	ID    string          `json:"id"`
	Frame json.RawMessage `json:"frame"`
	Done  bool            `json:"done,omitempty"`
}

// ToolResponse is the application-level result of executeTool/listResources/
// readResource — D never lets a transport error escape as a panic; every
// outcome is either a resolved ToolResponse or a tagged error. The wire tag
// on Result is "data", not "result": it decodes the literal envelope shape
// spec §4.E gives mcpserver.ExecuteResult ({success, data, error}), which is
// what actually arrives in a Response.Result for a tools.execute call.
type ToolResponse struct {
	Success bool   `json:"success"`
	Result  any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Method names exposed over the wire (spec §6).
const (
	MethodResourcesList = "resources.list"
	MethodResourcesRead = "resources.read"
	MethodToolsList     = "tools.list"
	MethodToolsExecute  = "tools.execute"
)

// Package host implements the interactive handler that sits between a
// rendered UI resource and the MCP client/server (spec §4.B). The real
// iframe/window.postMessage boundary belongs to the browser shell; this
// package only owns the Go-side half of that conversation.
package host

import (
	"context"

	"github.com/agentoven/mcpuibridge/internal/action"
)

// Frame is the Go-native analogue of an attached iframe: something the
// handler can address by id, whose origin it can check, and that it can
// post a ResponseMessage back to. A concrete WSFrame exists for production
// (talking to the injected browser-side script over a WebSocket); tests use
// an in-memory fake with no network involved.
type Frame interface {
	ID() string
	Origin() string
	Post(ctx context.Context, resp action.ResponseMessage) error
}

package host

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agentoven/mcpuibridge/internal/action"
	"github.com/gorilla/websocket"
)

// WSFrame forwards responses to the injected browser-side script over a
// WebSocket connection — the production Frame implementation. The
// connection stands in for window.parent.postMessage: the Go process is
// what the sandboxed script actually talks to.
type WSFrame struct {
	id     string
	origin string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWSFrame wraps an already-upgraded WebSocket connection as a Frame.
func NewWSFrame(id, origin string, conn *websocket.Conn) *WSFrame {
	return &WSFrame{id: id, origin: origin, conn: conn}
}

func (f *WSFrame) ID() string     { return f.id }
func (f *WSFrame) Origin() string { return f.origin }

func (f *WSFrame) Post(_ context.Context, resp action.ResponseMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("host: frame %s is closed", f.id)
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("host: marshal response: %w", err)
	}
	return f.conn.WriteMessage(websocket.TextMessage, data)
}

// Close marks the frame closed and closes the underlying connection.
// Idempotent.
func (f *WSFrame) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.conn.Close()
}

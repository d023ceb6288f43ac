package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// wsTransport carries MCP requests/responses over a single WebSocket
// connection, the pack's most common choice for this kind of long-lived
// bidirectional transport (see SPEC_FULL.md's dependency table).
type wsTransport struct {
	url *url.URL

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	responses chan Response
	streams   chan StreamFrame
	errs      chan error
}

func newWSTransport(u *url.URL) *wsTransport {
	return &wsTransport{
		url:       u,
		responses: make(chan Response, 16),
		streams:   make(chan StreamFrame, 16),
		errs:      make(chan error, 4),
	}
}

func (t *wsTransport) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, t.url.String(), nil)
	if err != nil {
		return fmt.Errorf("mcpclient: ws dial: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.closed = false
	t.mu.Unlock()

	go t.readLoop(conn)
	return nil
}

func (t *wsTransport) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if !closed {
				select {
				case t.errs <- fmt.Errorf("mcpclient: ws read: %w", err):
				default:
				}
			}
			return
		}
		t.dispatch(raw)
	}
}

func (t *wsTransport) dispatch(raw []byte) {
	var envelope struct {
		ID    string          `json:"id"`
		Frame json.RawMessage `json:"frame"`
		Done  bool            `json:"done"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Frame != nil {
		t.streams <- StreamFrame{ID: envelope.ID, Frame: envelope.Frame, Done: envelope.Done}
		return
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Warn().Err(err).Msg("mcpclient: dropping unparseable ws frame")
		return
	}
	t.responses <- resp
}

func (t *wsTransport) Send(_ context.Context, req Request) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return newError(KindTransport, "mcpclient: not connected")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("mcpclient: marshal request: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return newError(KindTransport, fmt.Sprintf("mcpclient: ws write: %v", err))
	}
	return nil
}

func (t *wsTransport) Responses() <-chan Response  { return t.responses }
func (t *wsTransport) Streams() <-chan StreamFrame { return t.streams }
func (t *wsTransport) Errors() <-chan error        { return t.errs }

func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

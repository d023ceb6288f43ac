package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/agentoven/mcpuibridge/internal/action"
	"github.com/gorilla/websocket"
)

func TestWSFrame_PostWritesJSONOverConnection(t *testing.T) {
	var upgrader websocket.Upgrader
	received := make(chan []byte, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- msg
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	u, _ := url.Parse(wsURL)
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	frame := NewWSFrame("frame-1", "https://example.com", conn)
	resp := action.NewResponse("req-1", true, map[string]any{"ok": true}, "")
	if err := frame.Post(context.Background(), resp); err != nil {
		t.Fatalf("post: %v", err)
	}

	select {
	case msg := <-received:
		var got action.ResponseMessage
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.RequestID != "req-1" || !got.Success {
			t.Fatalf("unexpected response: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received by server")
	}

	if err := frame.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := frame.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
}

package mcpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{}

func TestWSTransport_ConnectSendAndReceive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Method != MethodToolsExecute {
			t.Errorf("unexpected method %s", req.Method)
		}

		resp, _ := json.Marshal(Response{ID: req.ID, Result: json.RawMessage(`{"ok":true}`)})
		_ = conn.WriteMessage(websocket.TextMessage, resp)
	}))
	defer srv.Close()

	u, _ := url.Parse(strings.Replace(srv.URL, "http://", "ws://", 1))
	tr := newWSTransport(u)

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer tr.Close()

	if err := tr.Send(context.Background(), Request{ID: "1", Method: MethodToolsExecute}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case resp := <-tr.Responses():
		if resp.ID != "1" {
			t.Fatalf("unexpected response id: %s", resp.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no response received")
	}
}

func TestWSTransport_DispatchRoutesStreamFramesSeparately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		frame, _ := json.Marshal(map[string]any{"id": "s1", "frame": map[string]int{"i": 0}, "done": true})
		_ = conn.WriteMessage(websocket.TextMessage, frame)

		// Keep the connection open briefly so the client's readLoop has a
		// chance to dispatch before the handler returns and closes it.
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	u, _ := url.Parse(strings.Replace(srv.URL, "http://", "ws://", 1))
	tr := newWSTransport(u)

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer tr.Close()

	select {
	case frame := <-tr.Streams():
		if frame.ID != "s1" || !frame.Done {
			t.Fatalf("unexpected stream frame: %+v", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("no stream frame received")
	}
}

func TestWSTransport_SendWithoutConnectFails(t *testing.T) {
	u, _ := url.Parse("ws://example.invalid")
	tr := newWSTransport(u)

	err := tr.Send(context.Background(), Request{ID: "1", Method: MethodToolsExecute})
	if err == nil {
		t.Fatal("expected an error sending before connect")
	}
}

func TestWSTransport_ReadLoopReportsUnexpectedCloseAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Close immediately without sending anything, simulating a server
		// crash mid-session.
		conn.Close()
	}))
	defer srv.Close()

	u, _ := url.Parse(strings.Replace(srv.URL, "http://", "ws://", 1))
	tr := newWSTransport(u)

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer tr.Close()

	select {
	case err := <-tr.Errors():
		if err == nil {
			t.Fatal("expected a non-nil read error")
		}
	case <-time.After(time.Second):
		t.Fatal("expected readLoop to report the dropped connection")
	}
}

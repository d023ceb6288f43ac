package mcpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestHTTPTransport_SendDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tools/execute" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ToolResponse{Success: true, Result: "done"})
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	tr := newHTTPTransport(u)

	if err := tr.Send(context.Background(), Request{ID: "1", Method: MethodToolsExecute}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case resp := <-tr.Responses():
		var out ToolResponse
		if err := json.Unmarshal(resp.Result, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !out.Success || out.Result != "done" {
			t.Fatalf("unexpected result: %+v", out)
		}
	case <-time.After(time.Second):
		t.Fatal("no response received")
	}
}

func TestHTTPTransport_StreamsNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MCP-Stream", "ndjson")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 2; i++ {
			done := i == 1
			line, _ := json.Marshal(map[string]any{"frame": map[string]int{"i": i}, "done": done})
			_, _ = w.Write(append(line, '\n'))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	tr := newHTTPTransport(u)

	if err := tr.Send(context.Background(), Request{ID: "s1", Method: MethodResourcesRead}); err != nil {
		t.Fatalf("send: %v", err)
	}

	seen := 0
	timeout := time.After(2 * time.Second)
	for seen < 2 {
		select {
		case frame := <-tr.Streams():
			if frame.ID != "s1" {
				t.Fatalf("unexpected stream id %s", frame.ID)
			}
			seen++
		case <-timeout:
			t.Fatalf("timed out waiting for stream frames, saw %d", seen)
		}
	}
}

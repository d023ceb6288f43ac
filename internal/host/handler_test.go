package host

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agentoven/mcpuibridge/internal/action"
	"github.com/agentoven/mcpuibridge/internal/mcpserver"
)

type fakeFrame struct {
	id     string
	origin string
	posted []action.ResponseMessage
}

func (f *fakeFrame) ID() string     { return f.id }
func (f *fakeFrame) Origin() string { return f.origin }
func (f *fakeFrame) Post(_ context.Context, resp action.ResponseMessage) error {
	f.posted = append(f.posted, resp)
	return nil
}

type fakeExecutor struct {
	result mcpserver.ExecuteResult
	got    mcpserver.ExecuteRequest
}

func (f *fakeExecutor) ExecuteTool(_ context.Context, req mcpserver.ExecuteRequest) mcpserver.ExecuteResult {
	f.got = req
	return f.result
}

func toolMessage(t *testing.T, toolName, requestID string, params map[string]any) []byte {
	t.Helper()
	payload, err := json.Marshal(action.ToolPayload{ToolName: toolName, Params: params, RequestID: requestID})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(map[string]any{"type": "tool", "payload": json.RawMessage(payload)})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestHandler_ToolAction_PostsResponse(t *testing.T) {
	exec := &fakeExecutor{result: mcpserver.ExecuteResult{Success: true, Data: map[string]any{"ok": true}}}
	h := NewHandler(exec, Observers{})
	f := &fakeFrame{id: "frame-1", origin: "https://example.com"}
	h.Attach(f)

	result := h.HandleMessage(context.Background(), "frame-1", "https://example.com", toolMessage(t, "submit", "req-1", map[string]any{"x": 1}))

	if !result.OK {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(f.posted) != 1 || f.posted[0].RequestID != "req-1" || !f.posted[0].Success {
		t.Fatalf("unexpected posted responses: %+v", f.posted)
	}
	if exec.got.Name != "submit" {
		t.Fatalf("expected tool name submit, got %s", exec.got.Name)
	}
}

func TestHandler_RejectsDisallowedOrigin(t *testing.T) {
	h := NewHandler(&fakeExecutor{}, Observers{})
	f := &fakeFrame{id: "frame-1", origin: "file://evil"}
	h.Attach(f)

	result := h.HandleMessage(context.Background(), "frame-1", "file://evil", toolMessage(t, "submit", "req-1", nil))

	if result.OK || result.Kind != action.KindOriginRejected {
		t.Fatalf("expected OriginRejected, got %+v", result)
	}
	if len(f.posted) != 0 {
		t.Fatalf("expected no response posted to a rejected origin, got %+v", f.posted)
	}
}

func TestHandler_RejectsMalformedMessage(t *testing.T) {
	h := NewHandler(&fakeExecutor{}, Observers{})
	f := &fakeFrame{id: "frame-1", origin: "https://example.com"}
	h.Attach(f)

	result := h.HandleMessage(context.Background(), "frame-1", "https://example.com", []byte(`{"type":"tool","payload":{}}`))

	if result.OK || result.Kind != action.KindInvalidMessage {
		t.Fatalf("expected InvalidMessage, got %+v", result)
	}
}

func TestHandler_NotifyAcknowledgesOnlyWithRequestID(t *testing.T) {
	var notified []action.NotifyPayload
	h := NewHandler(&fakeExecutor{}, Observers{
		OnNotify: func(_ Frame, p action.NotifyPayload) { notified = append(notified, p) },
	})
	f := &fakeFrame{id: "frame-1", origin: "https://example.com"}
	h.Attach(f)

	payload, _ := json.Marshal(action.NotifyPayload{Level: action.LevelInfo, Message: "hi"})
	raw, _ := json.Marshal(map[string]any{"type": "notify", "payload": json.RawMessage(payload)})

	result := h.HandleMessage(context.Background(), "frame-1", "https://example.com", raw)

	if !result.OK {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(notified) != 1 {
		t.Fatalf("expected observer to be called once, got %d", len(notified))
	}
	if len(f.posted) != 0 {
		t.Fatalf("expected no acknowledgement without requestId, got %+v", f.posted)
	}
}

func TestHandler_DetachThenMessageIsRejected(t *testing.T) {
	h := NewHandler(&fakeExecutor{}, Observers{})
	f := &fakeFrame{id: "frame-1", origin: "https://example.com"}
	h.Attach(f)
	h.Detach("frame-1")

	result := h.HandleMessage(context.Background(), "frame-1", "https://example.com", toolMessage(t, "submit", "", nil))
	if result.OK {
		t.Fatalf("expected failure for detached frame, got %+v", result)
	}
}

package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentoven/mcpuibridge/internal/action"
	"github.com/agentoven/mcpuibridge/internal/mcpserver"
	"github.com/agentoven/mcpuibridge/internal/telemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ToolExecutor is the subset of mcpserver.Server the handler depends on,
// narrowed to keep the dispatch algorithm testable without a full server.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, req mcpserver.ExecuteRequest) mcpserver.ExecuteResult
}

// Observers receive the fire-and-forget variants the handler can't resolve
// on its own — what to do with a notify/link/prompt/intent is a host
// concern, not a protocol one.
type Observers struct {
	OnNotify func(frame Frame, p action.NotifyPayload)
	OnLink   func(frame Frame, p action.LinkPayload)
	OnPrompt func(frame Frame, p action.PromptPayload) (string, error)
	OnIntent func(frame Frame, p action.IntentPayload)
}

// Handler implements the four-step action dispatch algorithm (spec §4.B):
// source check (left to the caller — a WS connection already identifies
// its frame), origin validation, shape validation, and type-switched
// handling.
type Handler struct {
	executor  ToolExecutor
	observers Observers

	mu     sync.RWMutex
	frames map[string]Frame
}

// NewHandler wires a Handler to the tool executor and host-level observer
// callbacks for the non-tool action variants.
func NewHandler(executor ToolExecutor, observers Observers) *Handler {
	return &Handler{
		executor:  executor,
		observers: observers,
		frames:    make(map[string]Frame),
	}
}

// Attach registers a frame. Idempotent: attaching an already-attached frame
// id replaces the prior registration.
func (h *Handler) Attach(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames[f.ID()] = f
}

// Detach removes a frame. Idempotent.
func (h *Handler) Detach(frameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.frames, frameID)
}

func (h *Handler) frame(id string) (Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.frames[id]
	return f, ok
}

// HandleMessage runs the dispatch algorithm for one inbound message from
// frameID. The caller has already established that the message arrived on
// that frame's own connection (the source check); origin and shape are
// validated here.
func (h *Handler) HandleMessage(ctx context.Context, frameID, origin string, raw []byte) action.ActionResult {
	ctx, span := telemetry.Tracer().Start(ctx, "host.HandleMessage")
	span.SetAttributes(attribute.String("mcpui.frame_id", frameID))
	defer span.End()

	reject := func(result action.ActionResult) action.ActionResult {
		span.SetStatus(codes.Error, result.Err)
		return result
	}

	f, attached := h.frame(frameID)
	if !attached {
		return reject(action.Error(action.KindInvalidMessage, fmt.Sprintf("host: no frame attached for id %s", frameID)))
	}

	if !action.ValidateOrigin(origin) {
		log.Warn().Str("frame", frameID).Str("origin", origin).Msg("host: rejected message from disallowed origin")
		return reject(action.Error(action.KindOriginRejected, fmt.Sprintf("host: origin %q is not allowed", origin)))
	}

	msg, ok := action.Decode(raw)
	if !ok {
		return reject(action.Error(action.KindInvalidMessage, "host: malformed action message"))
	}
	span.SetAttributes(attribute.String("mcpui.action_type", string(msg.Type)))

	switch msg.Type {
	case action.TypeTool:
		return h.handleTool(ctx, f, *msg.Tool)
	case action.TypeNotify:
		return h.handleNotify(f, *msg.Notify)
	case action.TypeLink:
		return h.handleLink(f, *msg.Link)
	case action.TypePrompt:
		return h.handlePrompt(ctx, f, *msg.Prompt)
	case action.TypeIntent:
		return h.handleIntent(f, *msg.Intent)
	default:
		return reject(action.Error(action.KindInvalidMessage, fmt.Sprintf("host: unhandled action type %q", msg.Type)))
	}
}

func (h *Handler) handleTool(ctx context.Context, f Frame, p action.ToolPayload) action.ActionResult {
	if h.executor == nil {
		return action.Error(action.KindToolNotFound, "host: no tool executor configured")
	}
	result := h.executor.ExecuteTool(ctx, mcpserver.ExecuteRequest{
		Name:      p.ToolName,
		Arguments: action.SanitizeParams(p.Params),
	})

	resp := action.NewResponse(p.RequestID, result.Success, result.Data, result.Error)
	if err := f.Post(ctx, resp); err != nil {
		log.Warn().Err(err).Str("frame", f.ID()).Msg("host: failed to post tool response")
	}

	if !result.Success {
		return action.Error(action.KindHandlerException, result.Error)
	}
	return action.Success(result.Data)
}

func (h *Handler) ack(f Frame, requestID string) {
	if requestID == "" {
		return
	}
	resp := action.NewResponse(requestID, true, nil, "")
	if err := f.Post(context.Background(), resp); err != nil {
		log.Warn().Err(err).Str("frame", f.ID()).Msg("host: failed to post acknowledgement")
	}
}

func (h *Handler) handleNotify(f Frame, p action.NotifyPayload) action.ActionResult {
	if h.observers.OnNotify != nil {
		h.observers.OnNotify(f, p)
	}
	h.ack(f, p.RequestID)
	return action.Success(nil)
}

func (h *Handler) handleLink(f Frame, p action.LinkPayload) action.ActionResult {
	if h.observers.OnLink != nil {
		h.observers.OnLink(f, p)
	}
	h.ack(f, p.RequestID)
	return action.Success(nil)
}

func (h *Handler) handlePrompt(ctx context.Context, f Frame, p action.PromptPayload) action.ActionResult {
	var (
		value string
		err   error
	)
	if h.observers.OnPrompt != nil {
		value, err = h.observers.OnPrompt(f, p)
	}
	if p.RequestID != "" {
		if err != nil {
			_ = f.Post(ctx, action.NewResponse(p.RequestID, false, nil, err.Error()))
		} else {
			_ = f.Post(ctx, action.NewResponse(p.RequestID, true, value, ""))
		}
	}
	if err != nil {
		return action.Error(action.KindHandlerException, err.Error())
	}
	return action.Success(value)
}

func (h *Handler) handleIntent(f Frame, p action.IntentPayload) action.ActionResult {
	if h.observers.OnIntent != nil {
		h.observers.OnIntent(f, p)
	}
	h.ack(f, p.RequestID)
	return action.Success(nil)
}

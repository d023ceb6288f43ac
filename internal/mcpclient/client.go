package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentoven/mcpuibridge/internal/telemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// State is the client's connection lifecycle state (spec §4.D).
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// Options configures a Client, mirroring the Config.Client block.
type Options struct {
	URL                  string
	ConnectTimeout       time.Duration
	RequestTimeout       time.Duration
	AutoReconnect        bool
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	Verbose              bool
}

type pendingRequest struct {
	resolve func(json.RawMessage)
	reject  func(error)
	timer   *time.Timer
}

// Client drives one logical connection to an MCP server, handling request/
// response correlation, reconnection, and stream subscriptions. It never
// lets a transport error escape as a panic: every ExecuteTool/ListResources/
// ReadResource call resolves or returns an error — a tagged *Error for
// timeouts, cancellation and transport failures, ErrDisposed after
// Disconnect, or a plain wrapped error when params or a reply cannot be
// encoded or decoded.
type Client struct {
	opts Options

	mu        sync.RWMutex
	state     State
	transport Transport
	disposed  bool

	pendingMu sync.Mutex
	pending   map[string]*pendingRequest

	reqCounter atomic.Uint64

	observersMu sync.Mutex
	observers   map[string][]func(any)

	streamMu sync.Mutex
	streams  map[string][]func(StreamFrame)

	reconnect *reconnector
}

// New constructs a Client. It does not connect until Connect is called.
func New(opts Options) *Client {
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = time.Second
	}
	if opts.MaxReconnectAttempts == 0 {
		opts.MaxReconnectAttempts = 5
	}

	c := &Client{
		opts:      opts,
		state:     StateDisconnected,
		pending:   make(map[string]*pendingRequest),
		observers: make(map[string][]func(any)),
		streams:   make(map[string][]func(StreamFrame)),
	}
	c.reconnect = newReconnector(opts.ReconnectDelay, opts.MaxReconnectAttempts, c.dial, func() {
		c.setState(StateDisconnected)
		c.emit("error", newError(KindConnectFail, "mcpclient: reconnect attempts exhausted"))
	})
	return c
}

// On registers an observer for "connected", "disconnected", or "error"
// lifecycle events.
func (c *Client) On(event string, cb func(any)) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()
	c.observers[event] = append(c.observers[event], cb)
}

func (c *Client) emit(event string, arg any) {
	c.observersMu.Lock()
	cbs := append([]func(any){}, c.observers[event]...)
	c.observersMu.Unlock()
	for _, cb := range cbs {
		cb(arg)
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Connect dials the transport and starts the background receive loop. On
// failure it returns the dial error; when AutoReconnect is set it has also
// scheduled a backoff retry before returning.
func (c *Client) Connect(ctx context.Context) error {
	return c.dial(ctx)
}

func (c *Client) dial(ctx context.Context) error {
	c.mu.RLock()
	disposed := c.disposed
	c.mu.RUnlock()
	if disposed {
		return ErrDisposed
	}

	c.setState(StateConnecting)

	transport, err := NewTransport(c.opts.URL)
	if err != nil {
		c.setState(StateError)
		c.emit("error", err)
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()
	if err := transport.Connect(dialCtx); err != nil {
		c.setState(StateError)
		c.emit("error", err)
		if c.opts.AutoReconnect {
			c.reconnect.scheduleRetry()
		}
		return err
	}

	c.mu.Lock()
	c.transport = transport
	c.mu.Unlock()

	c.setState(StateConnected)
	c.reconnect.reset()
	c.emit("connected", nil)

	go c.receiveLoop(transport)
	return nil
}

func (c *Client) receiveLoop(t Transport) {
	for {
		select {
		case resp, ok := <-t.Responses():
			if !ok {
				return
			}
			c.resolvePending(resp)
		case frame, ok := <-t.Streams():
			if !ok {
				return
			}
			c.dispatchStream(frame)
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			c.handleTransportDrop(err)
			return
		}
	}
}

func (c *Client) handleTransportDrop(err error) {
	if c.opts.Verbose {
		log.Warn().Err(err).Msg("mcpclient: transport dropped")
	}
	c.setState(StateError)
	c.emit("error", err)
	c.rejectAllPending(newError(KindTransport, err.Error()))
	if c.opts.AutoReconnect {
		c.reconnect.scheduleRetry()
	}
}

func (c *Client) resolvePending(resp Response) {
	c.pendingMu.Lock()
	p, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.pendingMu.Unlock()
	if !ok {
		return
	}
	p.timer.Stop()
	if resp.Error != nil {
		p.reject(newError(KindTransport, resp.Error.Message))
		return
	}
	p.resolve(resp.Result)
}

func (c *Client) rejectAllPending(err error) {
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = make(map[string]*pendingRequest)
	c.pendingMu.Unlock()
	for _, p := range pending {
		p.timer.Stop()
		p.reject(err)
	}
}

func (c *Client) dispatchStream(frame StreamFrame) {
	c.streamMu.Lock()
	cbs := append([]func(StreamFrame){}, c.streams[frame.ID]...)
	c.streamMu.Unlock()
	for _, cb := range cbs {
		cb(frame)
	}
}

// SubscribeToStream registers cb for every StreamFrame tagged with
// requestID and returns an unsubscribe function.
func (c *Client) SubscribeToStream(requestID string, cb func(StreamFrame)) func() {
	c.streamMu.Lock()
	c.streams[requestID] = append(c.streams[requestID], cb)
	c.streamMu.Unlock()

	return func() {
		c.streamMu.Lock()
		defer c.streamMu.Unlock()
		cbs := c.streams[requestID]
		for i, existing := range cbs {
			if fmt.Sprintf("%p", existing) == fmt.Sprintf("%p", cb) {
				c.streams[requestID] = append(cbs[:i], cbs[i+1:]...)
				break
			}
		}
	}
}

func (c *Client) nextRequestID() string {
	n := c.reqCounter.Add(1)
	return fmt.Sprintf("req-%d-%d", time.Now().UnixNano(), n)
}

// call sends method/params and resolves exactly once: via response,
// timeout, transport error, or context cancellation — never more than one.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "mcpclient."+method)
	defer span.End()

	c.mu.RLock()
	transport := c.transport
	disposed := c.disposed
	c.mu.RUnlock()

	if disposed {
		span.SetStatus(codes.Error, ErrDisposed.Error())
		return nil, ErrDisposed
	}
	if transport == nil {
		err := newError(KindTransport, "mcpclient: not connected")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	paramBytes, err := json.Marshal(params)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("mcpclient: marshal params: %w", err)
	}

	id := c.nextRequestID()
	span.SetAttributes(attribute.String("mcpui.request_id", id))
	resultCh := make(chan json.RawMessage, 1)
	errCh := make(chan error, 1)

	var once sync.Once
	resolve := func(r json.RawMessage) { once.Do(func() { resultCh <- r }) }
	reject := func(e error) { once.Do(func() { errCh <- e }) }

	timer := time.AfterFunc(c.opts.RequestTimeout, func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		reject(newError(KindTimeout, "mcpclient: request timed out"))
	})

	c.pendingMu.Lock()
	c.pending[id] = &pendingRequest{resolve: resolve, reject: reject, timer: timer}
	c.pendingMu.Unlock()

	if err := transport.Send(ctx, Request{ID: id, Method: method, Params: paramBytes}); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		timer.Stop()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	select {
	case r := <-resultCh:
		return r, nil
	case e := <-errCh:
		span.SetStatus(codes.Error, e.Error())
		return nil, e
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		timer.Stop()
		err := newError(KindCancelled, "mcpclient: request cancelled")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
}

// ListResources returns the resources advertised by the server.
func (c *Client) ListResources(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodResourcesList, nil)
}

// ReadResource fetches a single resource by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (json.RawMessage, error) {
	return c.call(ctx, MethodResourcesRead, map[string]string{"uri": uri})
}

// ListTools returns the tools advertised by the server.
func (c *Client) ListTools(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodToolsList, nil)
}

// ExecuteTool invokes a named tool with arguments and decodes the server's
// ToolResponse envelope.
func (c *Client) ExecuteTool(ctx context.Context, name string, args map[string]any) (ToolResponse, error) {
	raw, err := c.call(ctx, MethodToolsExecute, map[string]any{"name": name, "arguments": args})
	if err != nil {
		return ToolResponse{}, err
	}
	var out ToolResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return ToolResponse{}, fmt.Errorf("mcpclient: decode tool response: %w", err)
	}
	return out, nil
}

// Disconnect tears down the transport, rejects all pending requests, and
// marks the client disposed. Idempotent.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	transport := c.transport
	c.transport = nil
	c.mu.Unlock()

	c.reconnect.stop()
	c.rejectAllPending(ErrDisposed)
	c.setState(StateDisconnected)
	c.emit("disconnected", nil)

	if transport != nil {
		return transport.Close()
	}
	return nil
}

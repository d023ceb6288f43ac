package mcpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Transport is the pluggable wire-level connection the client drives.
// Selecting an implementation by URL scheme is the same "one interface,
// swappable backends" shape as three interchangeable process executors
// behind a single interface — here selected by scheme instead of a
// runtime mode flag.
type Transport interface {
	// Connect establishes the underlying connection.
	Connect(ctx context.Context) error
	// Send transmits a request. The caller correlates the response via
	// Responses()/Streams().
	Send(ctx context.Context, req Request) error
	// Responses returns a channel of responses as they arrive.
	Responses() <-chan Response
	// Streams returns a channel of streamed frames as they arrive.
	Streams() <-chan StreamFrame
	// Errors returns a channel of asynchronous transport errors (e.g. a
	// dropped connection detected mid-read).
	Errors() <-chan error
	// Close tears down the connection. Idempotent.
	Close() error
}

// NewTransport selects a Transport implementation from a URL's scheme, per
// spec §4.D's configuration table (ws://, wss://, http://, https://).
func NewTransport(rawURL string) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: invalid url %q: %w", rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		return newWSTransport(u), nil
	case "http", "https":
		return newHTTPTransport(u), nil
	default:
		return nil, fmt.Errorf("mcpclient: unsupported scheme %q", u.Scheme)
	}
}

package mcpclient

import "errors"

// ErrorKind tags the error-taxonomy category of a client-side failure
// (spec §7), so callers can branch on "should I retry" without string
// matching.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "RequestTimeout"
	KindTransport   ErrorKind = "TransportError"
	KindCancelled   ErrorKind = "Cancelled"
	KindConnectFail ErrorKind = "ConnectFailed"
)

// Error is a tagged client error.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// ErrDisposed is returned by any operation on a client after Disconnect has
// been called, and rejects the requests still pending at that moment.
var ErrDisposed = errors.New("mcpclient: client disposed")

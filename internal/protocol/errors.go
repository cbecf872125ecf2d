package protocol

import "errors"

// Failure categories for bridge operations. Callers classify with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrTransport covers send/receive failures from the channel,
	// typically a tray process that is gone or a broken connection.
	ErrTransport = errors.New("transport failure")

	// ErrPeer covers responses that arrived intact but carry
	// success=false with a peer-supplied error string.
	ErrPeer = errors.New("peer reported failure")

	// ErrProtocol covers unknown type tags, output for unregistered
	// sessions and other envelope-shape violations. Always recovered
	// locally, never fatal.
	ErrProtocol = errors.New("protocol violation")

	// ErrDecode covers payloads that do not match the expected
	// response shape.
	ErrDecode = errors.New("malformed payload")
)

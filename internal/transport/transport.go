package transport

import (
	"context"

	"github.com/fluxterm/traybridge/internal/protocol"
)

// Transport is the channel to the peer process as the bridge sees it.
type Transport interface {
	// Request sends an envelope and waits for its correlated reply.
	// It waits indefinitely absent context cancellation; no retries,
	// no layer-level timeout.
	Request(ctx context.Context, env *protocol.Envelope) (*protocol.Envelope, error)

	// Post sends an envelope without awaiting a typed reply. Used for
	// terminal output, where the send itself is the only flow control.
	Post(ctx context.Context, env *protocol.Envelope) error

	// Subscribe registers the single consumer of unsolicited inbound
	// envelopes. Must be called before traffic arrives.
	Subscribe(fn func(env *protocol.Envelope))

	// Close tears the channel down. In-flight requests fail with a
	// transport error.
	Close() error
}

// RequestHandler serves inbound request frames on the peer side of a
// connection. The returned envelope is sent back under the request's
// frame id; a nil return sends an empty acknowledgement envelope
// carrying the request's tag.
type RequestHandler func(env *protocol.Envelope) *protocol.Envelope

package transport

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/protocol"
)

// MemoryConn is one end of an in-process transport pair. It preserves
// Conn's semantics: events are delivered in order on a single dedicated
// goroutine, requests suspend the caller until the peer's handler
// answers. Used by tests and by hosts that embed both processes.
type MemoryConn struct {
	logger *logging.Logger
	peer   *MemoryConn

	mu        sync.Mutex
	onMessage func(env *protocol.Envelope)
	onRequest RequestHandler

	events    chan *protocol.Envelope
	closed    chan struct{}
	closeOnce sync.Once
}

// NewPair creates two connected in-process transport ends.
func NewPair(logger *logging.Logger) (*MemoryConn, *MemoryConn) {
	a := newMemoryConn(logger)
	b := newMemoryConn(logger)
	a.peer, b.peer = b, a
	return a, b
}

func newMemoryConn(logger *logging.Logger) *MemoryConn {
	c := &MemoryConn{
		logger: logger.Named("transport"),
		events: make(chan *protocol.Envelope, 64),
		closed: make(chan struct{}),
	}
	go c.deliverLoop()
	return c
}

// Subscribe registers the consumer of unsolicited inbound envelopes.
func (c *MemoryConn) Subscribe(fn func(env *protocol.Envelope)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

// HandleRequests registers the handler serving the peer's requests.
func (c *MemoryConn) HandleRequests(h RequestHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRequest = h
}

// Request delivers an envelope to the peer's handler and waits for its
// answer.
func (c *MemoryConn) Request(ctx context.Context, env *protocol.Envelope) (*protocol.Envelope, error) {
	select {
	case <-c.closed:
		return nil, fmt.Errorf("%w: connection closed", protocol.ErrTransport)
	case <-c.peer.closed:
		return nil, fmt.Errorf("%w: peer closed", protocol.ErrTransport)
	default:
	}

	c.peer.mu.Lock()
	handler := c.peer.onRequest
	c.peer.mu.Unlock()

	if handler == nil {
		return nil, fmt.Errorf("%w: peer has no request handler", protocol.ErrTransport)
	}

	reply := make(chan *protocol.Envelope, 1)
	go func() {
		resp := handler(env)
		if resp == nil {
			resp = &protocol.Envelope{Type: env.Type}
		}
		reply <- resp
	}()

	select {
	case resp := <-reply:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, fmt.Errorf("%w: connection closed", protocol.ErrTransport)
	case <-c.peer.closed:
		return nil, fmt.Errorf("%w: peer closed", protocol.ErrTransport)
	}
}

// Post enqueues an envelope for ordered delivery to the peer's
// subscriber.
func (c *MemoryConn) Post(_ context.Context, env *protocol.Envelope) error {
	// Checked separately first: with both select cases ready the pick
	// would be random, and a closed peer must always refuse.
	select {
	case <-c.peer.closed:
		return fmt.Errorf("%w: peer closed", protocol.ErrTransport)
	default:
	}

	select {
	case <-c.peer.closed:
		return fmt.Errorf("%w: peer closed", protocol.ErrTransport)
	case c.peer.events <- env:
		return nil
	}
}

// Close shuts this end down; requests in flight on either end fail.
func (c *MemoryConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *MemoryConn) deliverLoop() {
	for {
		select {
		case <-c.closed:
			return
		case env := <-c.events:
			c.mu.Lock()
			fn := c.onMessage
			c.mu.Unlock()

			if fn == nil {
				c.logger.Warn("dropping event without subscriber",
					zap.String("type", env.Type.String()))
				continue
			}
			fn(env)
		}
	}
}

package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/protocol"
)

// Conn is a websocket-backed transport end. Both processes use the same
// type: the UI side issues requests and consumes events, the tray side
// serves requests and emits events. A single reader goroutine owns
// demultiplexing; writes are serialized through a mutex because gorilla
// permits only one concurrent writer.
type Conn struct {
	logger *logging.Logger
	ws     *websocket.Conn

	writeMu sync.Mutex

	mu        sync.Mutex
	pending   map[string]chan *protocol.Envelope
	onMessage func(env *protocol.Envelope)
	onRequest RequestHandler

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a tray process endpoint and starts the read loop.
func Dial(ctx context.Context, url string, logger *logging.Logger) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", protocol.ErrTransport, url, err)
	}
	return NewConn(ws, logger), nil
}

// NewConn wraps an established websocket connection and starts the read
// loop. The server side constructs one after upgrading.
func NewConn(ws *websocket.Conn, logger *logging.Logger) *Conn {
	c := &Conn{
		logger:  logger.Named("transport"),
		ws:      ws,
		pending: make(map[string]chan *protocol.Envelope),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Subscribe registers the consumer of unsolicited inbound envelopes.
func (c *Conn) Subscribe(fn func(env *protocol.Envelope)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

// HandleRequests registers the server-side request handler. The UI side
// never sets one.
func (c *Conn) HandleRequests(h RequestHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRequest = h
}

// Request sends an envelope and waits for the response frame carrying
// the same correlation id.
func (c *Conn) Request(ctx context.Context, env *protocol.Envelope) (*protocol.Envelope, error) {
	id := uuid.NewString()
	ch := make(chan *protocol.Envelope, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.writeFrame(&Frame{ID: id, Kind: KindRequest, Envelope: env}); err != nil {
		c.dropPending(id)
		return nil, err
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	case <-c.closed:
		c.dropPending(id)
		return nil, fmt.Errorf("%w: connection closed: %v", protocol.ErrTransport, c.closeErr)
	}
}

// Post sends an envelope without awaiting a reply. The returned error
// reflects the transport-level send only.
func (c *Conn) Post(_ context.Context, env *protocol.Envelope) error {
	return c.writeFrame(&Frame{Kind: KindEvent, Envelope: env})
}

// Close tears the connection down; in-flight requests fail.
func (c *Conn) Close() error {
	c.fail(fmt.Errorf("closed locally"))
	return nil
}

func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			c.logger.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}

		switch frame.Kind {
		case KindResponse:
			c.deliverResponse(frame)
		case KindRequest:
			c.serveRequest(frame)
		case KindEvent:
			c.deliverEvent(frame.Envelope)
		default:
			c.logger.Warn("dropping frame with unknown kind", zap.Uint8("kind", uint8(frame.Kind)))
		}
	}
}

func (c *Conn) deliverResponse(frame *Frame) {
	c.mu.Lock()
	ch, ok := c.pending[frame.ID]
	delete(c.pending, frame.ID)
	c.mu.Unlock()

	if !ok {
		// Requester gave up (context cancelled) or the peer fabricated
		// an id. Either way the reply has no consumer.
		c.logger.Debug("uncorrelated response", zap.String("frame_id", frame.ID))
		return
	}
	ch <- frame.Envelope
}

func (c *Conn) serveRequest(frame *Frame) {
	c.mu.Lock()
	handler := c.onRequest
	c.mu.Unlock()

	if handler == nil {
		c.logger.Error("request frame on a connection without a handler",
			zap.String("type", frame.Envelope.Type.String()))
		return
	}

	// Serve off the read loop so a slow handler cannot stall output
	// delivery.
	go func() {
		resp := handler(frame.Envelope)
		if resp == nil {
			resp = &protocol.Envelope{Type: frame.Envelope.Type}
		}
		if err := c.writeFrame(&Frame{ID: frame.ID, Kind: KindResponse, Envelope: resp}); err != nil {
			c.logger.Warn("failed to write response", zap.Error(err))
		}
	}()
}

func (c *Conn) deliverEvent(env *protocol.Envelope) {
	c.mu.Lock()
	fn := c.onMessage
	c.mu.Unlock()

	if fn == nil {
		c.logger.Warn("dropping event without subscriber", zap.String("type", env.Type.String()))
		return
	}
	// Invoked on the reader goroutine: event delivery is serialized
	// against other event delivery.
	fn(env)
}

func (c *Conn) writeFrame(frame *Frame) error {
	data, err := EncodeFrame(frame)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closed:
		return fmt.Errorf("%w: connection closed: %v", protocol.ErrTransport, c.closeErr)
	default:
	}

	if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("%w: write: %v", protocol.ErrTransport, err)
	}
	return nil
}

func (c *Conn) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Conn) fail(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.closed)
		c.ws.Close()
	})
}

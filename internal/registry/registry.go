package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/protocol"
)

// OutputHandler receives raw output bytes for one terminal session.
type OutputHandler func(data []byte)

// ExitListener receives every session exit notice; listeners filter by
// TerminalID themselves.
type ExitListener func(status protocol.TerminalExitStatus)

// Registry allocates terminal ids and routes inbound output and exit
// signals to their consumers.
type Registry struct {
	logger *logging.Logger

	mu       sync.Mutex
	nextID   protocol.TerminalID
	handlers map[protocol.TerminalID]OutputHandler
	exitSubs []ExitListener
}

// New creates an empty registry.
func New(logger *logging.Logger) *Registry {
	return &Registry{
		logger:   logger.Named("registry"),
		handlers: make(map[protocol.TerminalID]OutputHandler),
	}
}

// AllocateID returns the next terminal id. The counter increases
// monotonically and wraps at 255; reuse collision with a still-live
// session after wraparound is not guarded against.
func (r *Registry) AllocateID() protocol.TerminalID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	return id
}

// RegisterOutputHandler binds a handler to a terminal id, replacing any
// prior handler for that id.
func (r *Registry) RegisterOutputHandler(id protocol.TerminalID, handler OutputHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = handler
}

// UnregisterOutputHandler removes the handler for a terminal id.
// Session teardown ordering is owned by the caller; the bridge never
// calls this on its own.
func (r *Registry) UnregisterOutputHandler(id protocol.TerminalID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, id)
}

// DispatchOutput delivers raw bytes to the handler registered for id,
// invoking it synchronously on the caller's goroutine, and reports
// whether a handler consumed them. Output for an unregistered id is
// logged and dropped; it never buffers and never raises to the caller.
func (r *Registry) DispatchOutput(id protocol.TerminalID, data []byte) bool {
	r.mu.Lock()
	handler, ok := r.handlers[id]
	r.mu.Unlock()

	if !ok {
		r.logger.Error("output for unknown terminal",
			zap.Uint8("terminal_id", uint8(id)),
			zap.Int("bytes", len(data)))
		return false
	}

	handler(data)
	return true
}

// SubscribeExit adds a listener for session exit notices. One event
// source serves all sessions.
func (r *Registry) SubscribeExit(listener ExitListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exitSubs = append(r.exitSubs, listener)
}

// DispatchExit fans a session exit notice out to every listener,
// invoking them synchronously in subscription order. Exit is not
// routed through the output handler map.
func (r *Registry) DispatchExit(status protocol.TerminalExitStatus) {
	r.mu.Lock()
	subs := make([]ExitListener, len(r.exitSubs))
	copy(subs, r.exitSubs)
	r.mu.Unlock()

	r.logger.Debug("terminal exited",
		zap.Uint8("terminal_id", uint8(status.TerminalID)),
		zap.Int("exit_code", status.ExitCode))

	for _, listener := range subs {
		listener(status)
	}
}

// Package traymock is a stand-in for the real tray process. It serves
// the full request catalog against fake sessions: written bytes echo
// back as output events, closed sessions are released, ports and
// executable paths are resolved locally. No PTY is spawned; the mock
// exists for development and integration testing of the bridge.
package traymock

import (
	"context"
	"net"
	"os"
	"os/exec"
	"os/user"
	"sync"

	"go.uber.org/zap"

	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/monitoring"
	"github.com/fluxterm/traybridge/internal/protocol"
	"github.com/fluxterm/traybridge/internal/transport"
)

// Poster is the outbound half of a transport connection, used to emit
// output and exit events toward the UI process.
type Poster interface {
	Post(ctx context.Context, env *protocol.Envelope) error
}

// Conn is the subset of a transport connection the peer binds to. Both
// transport.Conn and transport.MemoryConn satisfy it.
type Conn interface {
	Poster
	HandleRequests(h transport.RequestHandler)
	Subscribe(fn func(env *protocol.Envelope))
}

type session struct {
	size    protocol.TerminalSize
	profile protocol.ShellProfile
	pid     int
}

// Peer serves the tray side of one connection.
type Peer struct {
	logger  *logging.Logger
	conn    Poster
	metrics *monitoring.Metrics

	mu          sync.Mutex
	sessions    map[protocol.TerminalID]*session
	keyBindings []protocol.KeyBinding
	nextPID     int
}

// New creates a peer emitting events through conn. A nil metrics
// collector disables instrumentation.
func New(conn Poster, logger *logging.Logger) *Peer {
	return &Peer{
		logger:   logger.Named("traymock"),
		conn:     conn,
		sessions: make(map[protocol.TerminalID]*session),
		nextPID:  1000,
	}
}

// WithMetrics attaches a metrics collector and returns the peer.
func (p *Peer) WithMetrics(m *monitoring.Metrics) *Peer {
	p.metrics = m
	return p
}

// Bind wires the peer into a transport connection: requests go through
// HandleRequest, events through HandleEvent.
func (p *Peer) Bind(conn Conn) {
	conn.HandleRequests(p.HandleRequest)
	conn.Subscribe(p.HandleEvent)
}

// HandleRequest serves one catalog request and returns its response
// envelope.
func (p *Peer) HandleRequest(env *protocol.Envelope) *protocol.Envelope {
	switch env.Type {
	case protocol.MessageGetAvailablePort:
		return p.respond(env.Type, p.availablePort())
	case protocol.MessageGetUserName:
		return p.respond(env.Type, p.userName())
	case protocol.MessageGetMoshSSHPath:
		var req protocol.GetMoshSSHPathRequest
		if err := protocol.Decode(env, &req); err != nil {
			return p.respond(env.Type, protocol.GetMoshSSHPathResponse{Error: err.Error()})
		}
		return p.respond(env.Type, p.executablePath(req.IsMosh))
	case protocol.MessageSaveTextFile:
		var req protocol.SaveTextFileRequest
		if err := protocol.Decode(env, &req); err != nil {
			return p.respond(env.Type, protocol.SaveTextFileResponse{Error: err.Error()})
		}
		return p.respond(env.Type, p.saveTextFile(req))
	case protocol.MessageCreateTerminal:
		var req protocol.CreateTerminalRequest
		if err := protocol.Decode(env, &req); err != nil {
			return p.respond(env.Type, protocol.CreateTerminalResponse{Error: err.Error()})
		}
		return p.respond(env.Type, p.createTerminal(req))
	case protocol.MessageResizeTerminal:
		var req protocol.ResizeTerminalRequest
		if err := protocol.Decode(env, &req); err == nil {
			p.resizeTerminal(req)
		}
		return p.respond(env.Type, protocol.ResizeTerminalResponse{})
	case protocol.MessageSetToggleWindowKeyBindings:
		var req protocol.SetToggleWindowKeyBindingsRequest
		if err := protocol.Decode(env, &req); err == nil {
			p.setKeyBindings(req.KeyBindings)
		}
		return p.respond(env.Type, protocol.SetToggleWindowKeyBindingsResponse{})
	case protocol.MessageTerminalExited:
		var status protocol.TerminalExitStatus
		if err := protocol.Decode(env, &status); err == nil {
			p.releaseSession(status.TerminalID)
		}
		return p.respond(env.Type, protocol.TerminalExitedResponse{})
	default:
		p.logger.Error("unrecognized request", zap.String("type", env.Type.String()))
		return &protocol.Envelope{Type: env.Type}
	}
}

// HandleEvent consumes inbound events. Written terminal bytes echo
// straight back as output events.
func (p *Peer) HandleEvent(env *protocol.Envelope) {
	if env.Type != protocol.MessageTerminalOutput || env.TerminalID == nil {
		p.logger.Warn("unrecognized event", zap.String("type", env.Type.String()))
		return
	}

	id := *env.TerminalID
	p.mu.Lock()
	_, ok := p.sessions[id]
	p.mu.Unlock()
	if !ok {
		p.logger.Warn("input for unknown session", zap.Uint8("terminal_id", uint8(id)))
		return
	}

	if p.metrics != nil {
		p.metrics.OutputBytesReceived.Add(float64(len(env.Payload)))
	}
	if err := p.conn.Post(context.Background(), protocol.NewOutputEnvelope(id, env.Payload)); err != nil {
		p.logger.Warn("echo failed", zap.Error(err))
		return
	}
	if p.metrics != nil {
		p.metrics.OutputBytesSent.Add(float64(len(env.Payload)))
	}
}

// KillSession releases a session and emits a peer-originated exit
// notice, the way a real tray process reports a died shell.
func (p *Peer) KillSession(id protocol.TerminalID, exitCode int) error {
	p.releaseSession(id)

	env, err := protocol.EncodeRequest(protocol.TerminalExitStatus{TerminalID: id, ExitCode: exitCode})
	if err != nil {
		return err
	}
	return p.conn.Post(context.Background(), env)
}

func (p *Peer) respond(t protocol.MessageType, resp any) *protocol.Envelope {
	env, err := protocol.EncodeResponse(t, resp)
	if err != nil {
		p.logger.Error("failed to encode response", zap.Error(err))
		return &protocol.Envelope{Type: t}
	}
	return env
}

func (p *Peer) availablePort() protocol.GetAvailablePortResponse {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return protocol.GetAvailablePortResponse{}
	}
	defer l.Close()
	return protocol.GetAvailablePortResponse{Port: l.Addr().(*net.TCPAddr).Port}
}

func (p *Peer) userName() protocol.GetUserNameResponse {
	u, err := user.Current()
	if err != nil {
		return protocol.GetUserNameResponse{}
	}
	return protocol.GetUserNameResponse{UserName: u.Username}
}

func (p *Peer) executablePath(isMosh bool) protocol.GetMoshSSHPathResponse {
	name := "ssh"
	if isMosh {
		name = "mosh"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return protocol.GetMoshSSHPathResponse{Error: err.Error()}
	}
	return protocol.GetMoshSSHPathResponse{Success: true, Path: path}
}

func (p *Peer) saveTextFile(req protocol.SaveTextFileRequest) protocol.SaveTextFileResponse {
	if err := os.WriteFile(req.Path, []byte(req.Content), 0o644); err != nil {
		return protocol.SaveTextFileResponse{Error: err.Error()}
	}
	return protocol.SaveTextFileResponse{Success: true}
}

func (p *Peer) createTerminal(req protocol.CreateTerminalRequest) protocol.CreateTerminalResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextPID++
	if _, exists := p.sessions[req.ID]; !exists && p.metrics != nil {
		p.metrics.SessionsActive.Inc()
	}
	p.sessions[req.ID] = &session{
		size:    req.Size,
		profile: req.Profile,
		pid:     p.nextPID,
	}

	p.logger.Info("session created",
		zap.Uint8("terminal_id", uint8(req.ID)),
		zap.String("session_type", req.SessionType.String()))

	return protocol.CreateTerminalResponse{
		Success:  true,
		ID:       req.ID,
		ShellPID: p.nextPID,
	}
}

func (p *Peer) resizeTerminal(req protocol.ResizeTerminalRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sess, ok := p.sessions[req.TerminalID]; ok {
		sess.size = req.NewSize
	}
}

func (p *Peer) setKeyBindings(bindings []protocol.KeyBinding) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keyBindings = bindings
}

func (p *Peer) releaseSession(id protocol.TerminalID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; ok {
		delete(p.sessions, id)
		if p.metrics != nil {
			p.metrics.SessionsActive.Dec()
		}
	}
}

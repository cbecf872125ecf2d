package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/monitoring"
	"github.com/fluxterm/traybridge/internal/protocol"
	"github.com/fluxterm/traybridge/internal/registry"
	"github.com/fluxterm/traybridge/internal/resilience"
	"github.com/fluxterm/traybridge/internal/transport"
)

const defaultSaveError = "Failed to save the file."

// Service orchestrates the cross-process terminal session protocol.
type Service struct {
	logger    *logging.Logger
	transport transport.Transport
	registry  *registry.Registry
	breaker   *resilience.Breaker
	metrics   *monitoring.Metrics

	cache factCache

	sessMu sync.Mutex
	live   map[protocol.TerminalID]struct{}
}

// New creates a service and subscribes it to the transport's inbound
// event stream. The registry is shared with the session factory that
// allocates ids and registers output handlers.
func New(tr transport.Transport, reg *registry.Registry, breaker *resilience.Breaker, metrics *monitoring.Metrics, logger *logging.Logger) *Service {
	s := &Service{
		logger:    logger.Named("bridge"),
		transport: tr,
		registry:  reg,
		breaker:   breaker,
		metrics:   metrics,
		live:      make(map[protocol.TerminalID]struct{}),
	}
	tr.Subscribe(s.onMessageReceived)
	return s
}

// Registry returns the session registry the service routes into.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Close tears down the underlying channel. In-flight requests fail
// with a transport error.
func (s *Service) Close() error {
	return s.transport.Close()
}

// GetAvailablePort asks the tray process for a free TCP port.
func (s *Service) GetAvailablePort(ctx context.Context) (int, error) {
	var resp protocol.GetAvailablePortResponse
	if err := s.call(ctx, protocol.GetAvailablePortRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Port, nil
}

// GetUserName returns the tray-side account name, fetching it from the
// peer at most once. Failures degrade to an empty string and are not
// cached, so a later call retries.
func (s *Service) GetUserName(ctx context.Context) string {
	if name, ok := s.cache.userName(); ok {
		return name
	}

	var resp protocol.GetUserNameResponse
	if err := s.call(ctx, protocol.GetUserNameRequest{}, &resp); err != nil {
		s.logger.Warn("username lookup failed", zap.Error(err))
		return ""
	}

	s.cache.setUserName(resp.UserName)
	return resp.UserName
}

// GetMoshSSHPath returns the resolved mosh (isMosh) or ssh executable
// path. The two facts cache independently. A peer-reported failure or
// transport error returns ok=false and leaves the slot unpopulated.
func (s *Service) GetMoshSSHPath(ctx context.Context, isMosh bool) (string, bool) {
	if path, ok := s.cache.executablePath(isMosh); ok {
		return path, true
	}

	var resp protocol.GetMoshSSHPathResponse
	if err := s.call(ctx, protocol.GetMoshSSHPathRequest{IsMosh: isMosh}, &resp); err != nil {
		s.logger.Warn("executable path lookup failed",
			zap.Bool("mosh", isMosh), zap.Error(err))
		return "", false
	}

	if !resp.Success {
		s.logger.Warn("executable path not resolved by peer",
			zap.Bool("mosh", isMosh), zap.String("peer_error", resp.Error))
		return "", false
	}

	s.cache.setExecutablePath(isMosh, resp.Path)
	return resp.Path, true
}

// SaveTextFile persists a text file through the tray process. A peer
// failure surfaces the peer's error text, or a default message when
// the peer supplied none.
func (s *Service) SaveTextFile(ctx context.Context, path, content string) error {
	var resp protocol.SaveTextFileResponse
	if err := s.call(ctx, protocol.SaveTextFileRequest{Path: path, Content: content}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = defaultSaveError
		}
		return fmt.Errorf("%w: %s", protocol.ErrPeer, msg)
	}
	return nil
}

// CreateTerminal asks the tray process to spawn a session under the
// given pre-allocated id.
func (s *Service) CreateTerminal(ctx context.Context, id protocol.TerminalID, size protocol.TerminalSize, profile protocol.ShellProfile, sessionType protocol.SessionType) (*protocol.CreateTerminalResponse, error) {
	req := protocol.CreateTerminalRequest{
		ID:          id,
		Size:        size,
		Profile:     profile,
		SessionType: sessionType,
	}

	var resp protocol.CreateTerminalResponse
	if err := s.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: create terminal %d: %s", protocol.ErrPeer, id, resp.Error)
	}

	s.trackSession(id)
	return &resp, nil
}

// ResizeTerminal changes a session's dimensions.
func (s *Service) ResizeTerminal(ctx context.Context, id protocol.TerminalID, size protocol.TerminalSize) error {
	var resp protocol.ResizeTerminalResponse
	return s.call(ctx, protocol.ResizeTerminalRequest{TerminalID: id, NewSize: size}, &resp)
}

// SetToggleWindowKeyBindings forwards the ordered window-toggle hotkey
// list to the tray process.
func (s *Service) SetToggleWindowKeyBindings(ctx context.Context, bindings []protocol.KeyBinding) error {
	var resp protocol.SetToggleWindowKeyBindingsResponse
	return s.call(ctx, protocol.SetToggleWindowKeyBindingsRequest{KeyBindings: bindings}, &resp)
}

// CloseTerminal signals a voluntary local close by sending a synthetic
// exit notice with exit code -1. The peer releases its session
// resources; removal from the registry stays with the caller.
func (s *Service) CloseTerminal(ctx context.Context, id protocol.TerminalID) error {
	status := protocol.TerminalExitStatus{
		TerminalID: id,
		ExitCode:   protocol.LocalCloseExitCode,
	}

	var resp protocol.TerminalExitedResponse
	if err := s.call(ctx, status, &resp); err != nil {
		return err
	}

	s.releaseSession(id)
	return nil
}

// trackSession records a live session id. Re-creating an id that is
// already tracked must not inflate the gauge.
func (s *Service) trackSession(id protocol.TerminalID) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	if _, ok := s.live[id]; ok {
		return
	}
	s.live[id] = struct{}{}
	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}
}

// releaseSession forgets a live session id. A voluntary close and the
// peer's exit notice for the same session can both arrive; only the
// first one moves the gauge.
func (s *Service) releaseSession(id protocol.TerminalID) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	if _, ok := s.live[id]; !ok {
		return
	}
	delete(s.live, id)
	if s.metrics != nil {
		s.metrics.SessionsActive.Dec()
	}
}

// Write streams raw input bytes to a session. Fire and forget: the
// send is awaited for flow control only, no reply payload exists.
func (s *Service) Write(ctx context.Context, id protocol.TerminalID, data []byte) error {
	if err := s.transport.Post(ctx, protocol.NewOutputEnvelope(id, data)); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.OutputBytesSent.Add(float64(len(data)))
	}
	return nil
}

// call performs one request/response exchange: encode, send through
// the breaker, await the correlated reply, decode into resp.
func (s *Service) call(ctx context.Context, req protocol.Request, resp any) error {
	env, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}

	start := time.Now()
	var reply *protocol.Envelope
	err = s.breaker.Execute(func() error {
		var sendErr error
		reply, sendErr = s.transport.Request(ctx, env)
		return sendErr
	})
	if s.metrics != nil {
		s.metrics.ObserveRequest(env.Type.String(), err, time.Since(start))
	}
	if err == resilience.ErrCircuitOpen {
		return fmt.Errorf("%w: tray process unavailable", protocol.ErrTransport)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", env.Type, err)
	}

	// A reply with no payload is a bare acknowledgement; resp keeps
	// its zero value.
	if len(reply.Payload) == 0 {
		return nil
	}
	return protocol.Decode(reply, resp)
}

// onMessageReceived classifies unsolicited inbound envelopes by tag.
// Violations are logged and dropped; this path never fails the
// transport.
func (s *Service) onMessageReceived(env *protocol.Envelope) {
	switch env.Type {
	case protocol.MessageTerminalOutput:
		if env.TerminalID == nil {
			s.logger.Error("output envelope without terminal id")
			if s.metrics != nil {
				s.metrics.OutputDropped.Inc()
			}
			return
		}
		if s.metrics != nil {
			s.metrics.OutputBytesReceived.Add(float64(len(env.Payload)))
		}
		if !s.registry.DispatchOutput(*env.TerminalID, env.Payload) && s.metrics != nil {
			s.metrics.OutputDropped.Inc()
		}

	case protocol.MessageTerminalExited:
		var status protocol.TerminalExitStatus
		if err := protocol.Decode(env, &status); err != nil {
			s.logger.Error("undecodable exit notice", zap.Error(err))
			return
		}
		if s.metrics != nil {
			s.metrics.ExitNotices.Inc()
		}
		s.releaseSession(status.TerminalID)
		s.registry.DispatchExit(status)

	default:
		s.logger.Error("unrecognized inbound message",
			zap.String("type", env.Type.String()))
	}
}

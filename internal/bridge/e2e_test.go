package bridge

import (
	"context"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/monitoring"
	"github.com/fluxterm/traybridge/internal/protocol"
	"github.com/fluxterm/traybridge/internal/registry"
	"github.com/fluxterm/traybridge/internal/resilience"
	"github.com/fluxterm/traybridge/internal/transport"
	"github.com/fluxterm/traybridge/internal/traymock"
)

// newEndToEnd wires a service against the mock tray peer, the same
// pairing cmd/traymock serves over a websocket.
func newEndToEnd(t *testing.T) (*Service, *traymock.Peer) {
	t.Helper()

	logger := logging.NewNop()
	ui, tray := transport.NewPair(logger)
	t.Cleanup(func() {
		ui.Close()
		tray.Close()
	})

	peer := traymock.New(tray, logger)
	peer.Bind(tray)

	reg := registry.New(logger)
	breaker := resilience.New("tray", resilience.Settings{FailureThreshold: 5, Cooldown: time.Minute})
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	return New(ui, reg, breaker, metrics, logger), peer
}

func TestEndToEndSessionLifecycle(t *testing.T) {
	service, peer := newEndToEnd(t)
	ctx := context.Background()

	id := service.Registry().AllocateID()

	output := make(chan []byte, 4)
	service.Registry().RegisterOutputHandler(id, func(data []byte) { output <- data })

	exits := make(chan protocol.TerminalExitStatus, 1)
	service.Registry().SubscribeExit(func(s protocol.TerminalExitStatus) { exits <- s })

	resp, err := service.CreateTerminal(ctx, id,
		protocol.TerminalSize{Rows: 24, Cols: 80},
		protocol.ShellProfile{Shell: "/bin/zsh", WorkingDirectory: "/tmp"},
		protocol.SessionShell)
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)
	assert.NotZero(t, resp.ShellPID)

	// The mock peer echoes written bytes back as terminal output.
	require.NoError(t, service.Write(ctx, id, []byte("echo hi\n")))
	select {
	case data := <-output:
		assert.Equal(t, []byte("echo hi\n"), data)
	case <-time.After(time.Second):
		t.Fatal("echo never arrived")
	}

	require.NoError(t, service.ResizeTerminal(ctx, id, protocol.TerminalSize{Rows: 40, Cols: 120}))

	// A peer-side death raises the exit event.
	require.NoError(t, peer.KillSession(id, 137))
	select {
	case status := <-exits:
		assert.Equal(t, id, status.TerminalID)
		assert.Equal(t, 137, status.ExitCode)
	case <-time.After(time.Second):
		t.Fatal("exit notice never arrived")
	}
}

func TestEndToEndCloseReleasesPeerSession(t *testing.T) {
	service, _ := newEndToEnd(t)
	ctx := context.Background()

	id := service.Registry().AllocateID()

	output := make(chan []byte, 1)
	service.Registry().RegisterOutputHandler(id, func(data []byte) { output <- data })

	_, err := service.CreateTerminal(ctx, id,
		protocol.TerminalSize{Rows: 24, Cols: 80}, protocol.ShellProfile{}, protocol.SessionShell)
	require.NoError(t, err)

	require.NoError(t, service.CloseTerminal(ctx, id))

	// The released session no longer echoes.
	require.NoError(t, service.Write(ctx, id, []byte("gone")))
	select {
	case <-output:
		t.Fatal("closed session still echoing")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEndToEndFacts(t *testing.T) {
	service, _ := newEndToEnd(t)
	ctx := context.Background()

	port, err := service.GetAvailablePort(ctx)
	require.NoError(t, err)
	assert.Greater(t, port, 0)

	current, err := user.Current()
	require.NoError(t, err)
	assert.Equal(t, current.Username, service.GetUserName(ctx))

	// The mock resolves ssh from PATH; mirror its lookup so the test
	// holds on hosts without an ssh client.
	wantPath, lookErr := exec.LookPath("ssh")
	gotPath, ok := service.GetMoshSSHPath(ctx, false)
	if lookErr == nil {
		assert.True(t, ok)
		assert.Equal(t, wantPath, gotPath)
	} else {
		assert.False(t, ok)
		assert.Equal(t, "", gotPath)
	}
}

func TestEndToEndSaveTextFile(t *testing.T) {
	service, _ := newEndToEnd(t)

	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, service.SaveTextFile(context.Background(), path, `{"theme":"dark"}`))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, string(data))
}

func TestEndToEndKeyBindings(t *testing.T) {
	service, _ := newEndToEnd(t)

	bindings := []protocol.KeyBinding{
		{Key: 192, Ctrl: true},
		{Key: 112, Alt: true, Shift: true},
	}
	require.NoError(t, service.SetToggleWindowKeyBindings(context.Background(), bindings))
}

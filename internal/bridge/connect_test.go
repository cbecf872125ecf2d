package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxterm/traybridge/internal/config"
	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/monitoring"
	"github.com/fluxterm/traybridge/internal/protocol"
	"github.com/fluxterm/traybridge/internal/transport"
	"github.com/fluxterm/traybridge/internal/traymock"
)

// startTrayServer serves a websocket endpoint with a bound mock tray
// peer behind it, the same pairing cmd/traymock serves, and returns
// its ws URL.
func startTrayServer(t *testing.T) string {
	t.Helper()

	logger := logging.NewNop()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn := transport.NewConn(ws, logger)
		traymock.New(conn, logger).Bind(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConnectDialsConfiguredTrayURL(t *testing.T) {
	cfg := config.Default()
	cfg.Tray.URL = startTrayServer(t)
	cfg.Breaker.Cooldown = time.Minute

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	service, err := Connect(context.Background(), cfg, metrics, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })

	port, err := service.GetAvailablePort(context.Background())
	require.NoError(t, err)
	assert.Greater(t, port, 0)

	id := service.Registry().AllocateID()
	resp, err := service.CreateTerminal(context.Background(), id,
		protocol.TerminalSize{Rows: 24, Cols: 80}, protocol.ShellProfile{Shell: "/bin/sh"}, protocol.SessionShell)
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)
	require.NoError(t, service.CloseTerminal(context.Background(), id))
}

func TestConnectFailsWhenTrayUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Tray.URL = "ws://127.0.0.1:1/channel"

	_, err := Connect(context.Background(), cfg, nil, logging.NewNop())
	require.Error(t, err)
}

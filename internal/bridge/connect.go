package bridge

import (
	"context"

	"github.com/fluxterm/traybridge/internal/config"
	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/monitoring"
	"github.com/fluxterm/traybridge/internal/registry"
	"github.com/fluxterm/traybridge/internal/resilience"
	"github.com/fluxterm/traybridge/internal/transport"
)

// Connect dials the tray process channel at cfg.Tray.URL and returns a
// service bound to it, with a fresh registry and a breaker tuned from
// cfg.Breaker. A nil metrics collector disables instrumentation.
func Connect(ctx context.Context, cfg *config.Config, metrics *monitoring.Metrics, logger *logging.Logger) (*Service, error) {
	conn, err := transport.Dial(ctx, cfg.Tray.URL, logger)
	if err != nil {
		return nil, err
	}

	breaker := resilience.New("tray", resilience.Settings{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Cooldown:         cfg.Breaker.Cooldown,
	})
	return New(conn, registry.New(logger), breaker, metrics, logger), nil
}

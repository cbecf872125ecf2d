package main

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fluxterm/traybridge/internal/config"
	"github.com/fluxterm/traybridge/internal/logging"
	"github.com/fluxterm/traybridge/internal/monitoring"
	"github.com/fluxterm/traybridge/internal/transport"
	"github.com/fluxterm/traybridge/internal/traymock"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The channel is loopback-only; origin checks add nothing.
		return true
	},
}

func main() {
	cfg := config.LoadOrDefault()

	logger, err := logging.New(logging.Config(cfg.Logging))
	if err != nil {
		logger = logging.NewDefault()
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/channel", func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := transport.NewConn(ws, logger)
		peer := traymock.New(conn, logger).WithMetrics(metrics)
		peer.Bind(conn)
		logger.Info("ui process connected", zap.String("remote", c.Request.RemoteAddr))
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	logger.Info("mock tray process listening", zap.String("addr", addr))

	errChan := make(chan error, 1)
	go func() {
		errChan <- router.Run(addr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Fatal("server error", zap.Error(err))
	}
}

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bridge.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	OutputBytesSent     prometheus.Counter
	OutputBytesReceived prometheus.Counter
	OutputDropped       prometheus.Counter

	SessionsActive prometheus.Gauge
	ExitNotices    prometheus.Counter
}

// NewMetrics creates a metrics collector registered with reg. Tests
// pass a fresh prometheus.NewRegistry to avoid collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "traybridge_requests_total",
				Help: "Total requests sent to the tray process",
			},
			[]string{"type", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "traybridge_request_duration_seconds",
				Help:    "Round-trip latency of tray process requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		OutputBytesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "traybridge_output_bytes_sent_total",
			Help: "Raw input bytes written to terminal sessions",
		}),
		OutputBytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "traybridge_output_bytes_received_total",
			Help: "Raw output bytes received from terminal sessions",
		}),
		OutputDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "traybridge_output_dropped_total",
			Help: "Output chunks dropped for lack of a registered handler",
		}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "traybridge_sessions_active",
			Help: "Terminal sessions currently tracked by the bridge",
		}),
		ExitNotices: factory.NewCounter(prometheus.CounterOpts{
			Name: "traybridge_exit_notices_total",
			Help: "Terminal exit notices received from the tray process",
		}),
	}
}

// ObserveRequest records one request round trip.
func (m *Metrics) ObserveRequest(msgType string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(msgType, status).Inc()
	m.RequestDuration.WithLabelValues(msgType).Observe(elapsed.Seconds())
}

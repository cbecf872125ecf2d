// Package monitoring exposes Prometheus metrics for the bridge:
// request counts and latencies per message type, output volume in both
// directions, dropped output chunks, and the active session gauge.
package monitoring

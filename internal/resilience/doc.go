// Package resilience provides a circuit breaker for calls into the
// tray process. When the peer is gone, the breaker fails requests fast
// instead of letting every caller discover the dead channel on its own.
// It never retries; a refused call surfaces once as a transport
// failure.
package resilience

// Command traymock runs a mock tray process daemon.
//
// It listens for websocket connections from UI processes on /channel,
// serves the full request catalog against fake sessions and exposes
// Prometheus metrics on /metrics. Use it to develop and test the UI
// side without a real tray process. Terminal bytes written to a
// session echo back as output; no shell is spawned.
package main

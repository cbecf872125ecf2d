// Package registry tracks live terminal sessions on the UI side.
//
// It owns three things: the monotonic TerminalID counter, the mapping
// from TerminalID to output handler, and the process-wide exit event.
// Inbound output and exit notices from the tray process are routed here
// by the bridge; callers never touch the handler map directly.
//
// All mutation is mutex-guarded because the transport's delivery
// context is not guaranteed to be single-threaded.
package registry

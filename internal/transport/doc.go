// Package transport carries protocol envelopes between the UI process
// and the tray process.
//
// The channel primitive is a generic envelope, not an RPC system, so
// correlation lives here: every outbound request frame carries a unique
// id, and the reader matches response frames against a pending map by
// that id. Unsolicited frames (terminal output, exit notices) have no
// id and flow to the subscriber. Matching by frame id rather than type
// tag keeps the dual-purpose TerminalExited tag unambiguous.
//
// Frames are encoded with deterministic CBOR, which carries raw output
// bytes without the base64 round trip JSON would impose.
//
// Two implementations exist: Conn over a websocket (the production
// channel between the processes) and an in-process Pair for tests and
// embedding.
package transport

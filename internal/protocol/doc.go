// Package protocol defines the wire-level message catalog exchanged
// between the UI process and the tray process.
//
// The channel between the two processes carries opaque envelopes; the
// integer type tag on each envelope is the sole multiplexing key. Every
// request type owns a stable tag, and its response travels back under
// the same tag. Two reserved tags live outside the request/response
// pattern:
//   - MessageTerminalOutput: streamed output chunks (payload = raw bytes)
//   - MessageTerminalExited: session exit notices
//
// MessageTerminalExited is dual purpose: the tray process raises it as an
// unsolicited event when a session dies, and the UI process sends it as a
// request (exit code -1) to signal a voluntary close. The transport layer
// correlates replies by frame id, never by tag, so the two uses cannot be
// misrouted.
//
// Catalog:
//   - GetAvailablePort: free TCP port for Mosh handshakes
//   - GetUserName: account name on the tray side
//   - GetMoshSSHPath: resolved mosh/ssh executable path
//   - SaveTextFile: persist a text file via the tray process
//   - CreateTerminal: spawn a session for a shell profile
//   - ResizeTerminal: change session dimensions
//   - SetToggleWindowKeyBindings: forward window-toggle hotkeys
//   - TerminalExited: session lifecycle notice (see above)
package protocol

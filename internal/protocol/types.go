package protocol

// TerminalID identifies a live terminal session. IDs are allocated by a
// monotonically increasing counter and wrap at 255; wraparound collision
// with a still-live session is not guarded against.
type TerminalID uint8

// TerminalSize holds session dimensions in character cells.
type TerminalSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SessionType selects how the tray process spawns a session.
type SessionType uint8

const (
	SessionUnknown SessionType = iota
	SessionShell
	SessionSSH
	SessionMosh
)

// String returns the session type name.
func (s SessionType) String() string {
	switch s {
	case SessionShell:
		return "shell"
	case SessionSSH:
		return "ssh"
	case SessionMosh:
		return "mosh"
	default:
		return "unknown"
	}
}

// ShellProfile describes what the tray process should spawn. The bridge
// forwards it verbatim; interpretation is owned by the peer.
type ShellProfile struct {
	Shell            string            `json:"shell"`
	Arguments        []string          `json:"arguments,omitempty"`
	WorkingDirectory string            `json:"workingDirectory,omitempty"`
	Environment      map[string]string `json:"environment,omitempty"`
}

// KeyBinding is a single window-toggle hotkey. The bridge forwards
// bindings in order; semantics belong to the tray process.
type KeyBinding struct {
	Key   int  `json:"key"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Shift bool `json:"shift"`
	Meta  bool `json:"meta"`
}

// TerminalExitStatus reports a session's termination. The tray process
// produces it when a session dies; the UI process synthesizes it with
// exit code -1 when it initiates a close.
type TerminalExitStatus struct {
	TerminalID TerminalID `json:"terminalId"`
	ExitCode   int        `json:"exitCode"`
}

// LocalCloseExitCode marks an exit notice synthesized by the UI process
// rather than observed by the tray process.
const LocalCloseExitCode = -1

package protocol

// GetAvailablePortRequest asks the tray process for a free TCP port,
// used for Mosh handshakes.
type GetAvailablePortRequest struct{}

// GetAvailablePortResponse carries the reserved port.
type GetAvailablePortResponse struct {
	Port int `json:"port"`
}

// GetUserNameRequest asks for the account name on the tray side.
type GetUserNameRequest struct{}

// GetUserNameResponse carries the account name.
type GetUserNameResponse struct {
	UserName string `json:"userName"`
}

// GetMoshSSHPathRequest resolves the mosh or ssh executable path.
type GetMoshSSHPathRequest struct {
	IsMosh bool `json:"isMosh"`
}

// GetMoshSSHPathResponse carries the resolved path, or an error when
// the executable could not be found.
type GetMoshSSHPathResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SaveTextFileRequest persists a text file through the tray process,
// which may hold broader filesystem rights than the UI process.
type SaveTextFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SaveTextFileResponse acknowledges the write.
type SaveTextFileResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CreateTerminalRequest spawns a session for a shell profile. The ID is
// allocated by the UI side before the request is sent.
type CreateTerminalRequest struct {
	ID          TerminalID   `json:"id"`
	Size        TerminalSize `json:"size"`
	Profile     ShellProfile `json:"profile"`
	SessionType SessionType  `json:"sessionType"`
}

// CreateTerminalResponse echoes the session id and carries process
// handle information that is opaque to the bridge.
type CreateTerminalResponse struct {
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
	ID       TerminalID `json:"id"`
	ShellPID int        `json:"shellPid,omitempty"`
}

// ResizeTerminalRequest changes a session's dimensions.
type ResizeTerminalRequest struct {
	TerminalID TerminalID   `json:"terminalId"`
	NewSize    TerminalSize `json:"newSize"`
}

// ResizeTerminalResponse is an acknowledgement only.
type ResizeTerminalResponse struct{}

// SetToggleWindowKeyBindingsRequest forwards the ordered window-toggle
// hotkey list to the tray process.
type SetToggleWindowKeyBindingsRequest struct {
	KeyBindings []KeyBinding `json:"keyBindings"`
}

// SetToggleWindowKeyBindingsResponse is an acknowledgement only.
type SetToggleWindowKeyBindingsResponse struct{}

// TerminalExitedResponse acknowledges a synthetic close request.
type TerminalExitedResponse struct{}

// MessageType implementations bind each request to its wire tag.
func (GetAvailablePortRequest) MessageType() MessageType { return MessageGetAvailablePort }
func (GetUserNameRequest) MessageType() MessageType      { return MessageGetUserName }
func (GetMoshSSHPathRequest) MessageType() MessageType   { return MessageGetMoshSSHPath }
func (SaveTextFileRequest) MessageType() MessageType     { return MessageSaveTextFile }
func (CreateTerminalRequest) MessageType() MessageType   { return MessageCreateTerminal }
func (ResizeTerminalRequest) MessageType() MessageType   { return MessageResizeTerminal }
func (TerminalExitStatus) MessageType() MessageType      { return MessageTerminalExited }
func (SetToggleWindowKeyBindingsRequest) MessageType() MessageType {
	return MessageSetToggleWindowKeyBindings
}

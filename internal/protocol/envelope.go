package protocol

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// MessageType tags an envelope with its catalog entry. Tags are part of
// the wire contract and must stay stable.
type MessageType uint8

const (
	MessageGetAvailablePort MessageType = iota + 1
	MessageGetUserName
	MessageGetMoshSSHPath
	MessageSaveTextFile
	MessageCreateTerminal
	MessageResizeTerminal
	MessageSetToggleWindowKeyBindings
	MessageTerminalExited

	// MessageTerminalOutput is reserved for streamed output chunks; the
	// payload is raw terminal bytes, never a serialized struct.
	MessageTerminalOutput MessageType = 255
)

// String returns the tag name for logs and metrics labels.
func (t MessageType) String() string {
	switch t {
	case MessageGetAvailablePort:
		return "get_available_port"
	case MessageGetUserName:
		return "get_user_name"
	case MessageGetMoshSSHPath:
		return "get_mosh_ssh_path"
	case MessageSaveTextFile:
		return "save_text_file"
	case MessageCreateTerminal:
		return "create_terminal"
	case MessageResizeTerminal:
		return "resize_terminal"
	case MessageSetToggleWindowKeyBindings:
		return "set_toggle_window_key_bindings"
	case MessageTerminalExited:
		return "terminal_exited"
	case MessageTerminalOutput:
		return "terminal_output"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Envelope is the unit carried by the channel transport. Exactly one
// payload form is present: a serialized catalog struct for tagged
// request/response traffic, or raw bytes under MessageTerminalOutput.
type Envelope struct {
	Type       MessageType `json:"type"`
	TerminalID *TerminalID `json:"terminalId,omitempty"`
	Payload    []byte      `json:"payload,omitempty"`
}

// Request is implemented by every catalog request type.
type Request interface {
	MessageType() MessageType
}

// EncodeRequest serializes a catalog request into an envelope tagged
// with the request's identifier.
func EncodeRequest(req Request) (*Envelope, error) {
	payload, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.MessageType(), err)
	}
	return &Envelope{Type: req.MessageType(), Payload: payload}, nil
}

// EncodeResponse serializes a response under the given request tag.
func EncodeResponse(t MessageType, resp any) (*Envelope, error) {
	payload, err := sonic.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode %s response: %w", t, err)
	}
	return &Envelope{Type: t, Payload: payload}, nil
}

// Decode deserializes an envelope's structured payload into v.
func Decode(env *Envelope, v any) error {
	if err := sonic.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrDecode, env.Type, err)
	}
	return nil
}

// NewOutputEnvelope builds a raw output chunk for the given session.
// The bytes bypass serialization entirely.
func NewOutputEnvelope(id TerminalID, data []byte) *Envelope {
	return &Envelope{Type: MessageTerminalOutput, TerminalID: &id, Payload: data}
}

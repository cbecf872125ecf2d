package transport

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/fluxterm/traybridge/internal/protocol"
)

// Kind discriminates frame routing on the wire.
type Kind uint8

const (
	// KindRequest expects a KindResponse frame under the same id.
	KindRequest Kind = iota + 1
	// KindResponse answers the request frame with the matching id.
	KindResponse
	// KindEvent is unsolicited traffic: output chunks, exit notices.
	KindEvent
)

// Frame is the wire wrapper around an envelope. ID is set only on
// request/response frames; events carry none.
type Frame struct {
	ID       string             `json:"id,omitempty"`
	Kind     Kind               `json:"kind"`
	Envelope *protocol.Envelope `json:"envelope"`
}

// encMode uses Core Deterministic Encoding so the same frame always
// produces identical bytes; decMode accepts standard CBOR and ignores
// unknown fields for forward compatibility.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("transport: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("transport: CBOR decoder initialization failed: " + err.Error())
	}
}

// EncodeFrame serializes a frame for the wire.
func EncodeFrame(f *Frame) ([]byte, error) {
	data, err := encMode.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame deserializes a wire frame. A frame without an envelope is
// rejected; every frame carries exactly one.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := decMode.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: frame: %v", protocol.ErrDecode, err)
	}
	if f.Envelope == nil {
		return nil, fmt.Errorf("%w: frame without envelope", protocol.ErrProtocol)
	}
	return &f, nil
}

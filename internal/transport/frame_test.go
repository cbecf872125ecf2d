package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxterm/traybridge/internal/protocol"
)

func TestFrameRoundTrip(t *testing.T) {
	id := protocol.TerminalID(3)
	in := &Frame{
		ID:   "req-1",
		Kind: KindRequest,
		Envelope: &protocol.Envelope{
			Type:       protocol.MessageTerminalOutput,
			TerminalID: &id,
			Payload:    []byte{0x00, 0x1b, 0x61}, // raw bytes survive untouched
		},
	}

	data, err := EncodeFrame(in)
	require.NoError(t, err)

	out, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.Envelope.Type, out.Envelope.Type)
	require.NotNil(t, out.Envelope.TerminalID)
	assert.Equal(t, id, *out.Envelope.TerminalID)
	assert.Equal(t, in.Envelope.Payload, out.Envelope.Payload)
}

func TestFrameDeterministicEncoding(t *testing.T) {
	f := &Frame{Kind: KindEvent, Envelope: &protocol.Envelope{Type: protocol.MessageTerminalExited}}

	first, err := EncodeFrame(f)
	require.NoError(t, err)
	second, err := EncodeFrame(f)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeFrameGarbage(t *testing.T) {
	_, err := DecodeFrame([]byte{0xff, 0x00, 0x13})
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrDecode)
}

func TestDecodeFrameWithoutEnvelope(t *testing.T) {
	data, err := EncodeFrame(&Frame{ID: "x", Kind: KindResponse})
	require.NoError(t, err)

	_, err = DecodeFrame(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrProtocol)
}

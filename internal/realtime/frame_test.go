package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_EncodeDecodeRoundTrip(t *testing.T) {
	in := NewFrame(CmdSend, "destination", "/app/chat/abc", "note", "a:b\nc\\d")
	in.Body = []byte(`{"content":"hi"}`)

	frames, err := Decode(in.Encode())
	require.NoError(t, err)
	require.Len(t, frames, 1)

	out := frames[0]
	assert.Equal(t, CmdSend, out.Command)
	assert.Equal(t, "/app/chat/abc", out.Header.Get("destination"))
	assert.Equal(t, "a:b\nc\\d", out.Header.Get("note"))
	assert.Equal(t, "16", out.Header.Get("content-length"))
	assert.Equal(t, in.Body, out.Body)
}

func TestFrame_EscapesHeaders(t *testing.T) {
	raw := string(NewFrame(CmdMessage, "k", "x:y").Encode())
	assert.Contains(t, raw, `k:x\cy`)

	// CONNECT headers are left alone
	raw = string(NewFrame(CmdConnect, "passcode", "x:y").Encode())
	assert.Contains(t, raw, "passcode:x:y")
}

func TestDecode_MultipleFramesAndHeartbeats(t *testing.T) {
	data := "\n\nCONNECT\r\naccept-version:1.2\r\n\r\n\x00\nSUBSCRIBE\nid:0\ndestination:/user/queue/errors\n\n\x00\n"
	frames, err := Decode([]byte(data))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, CmdConnect, frames[0].Command)
	assert.Equal(t, "1.2", frames[0].Header.Get("accept-version"))
	assert.Equal(t, CmdSubscribe, frames[1].Command)
	assert.Equal(t, "/user/queue/errors", frames[1].Header.Get("destination"))
}

func TestDecode_OnlyHeartbeat(t *testing.T) {
	frames, err := Decode([]byte("\n"))
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestDecode_ContentLengthAllowsNul(t *testing.T) {
	data := "SEND\ndestination:/x\ncontent-length:3\n\na\x00b\x00"
	frames, err := Decode([]byte(data))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("a\x00b"), frames[0].Body)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no terminator", "SEND\ndestination:/x\n\nbody", ErrIncompleteFrame},
		{"no blank line", "SEND\ndestination:/x", ErrIncompleteFrame},
		{"unknown command", "HELLO\n\n\x00", ErrUnknownCommand},
		{"bad header", "SEND\nnocolon\n\n\x00", ErrMalformedHeader},
		{"short body", "SEND\ncontent-length:10\n\nab\x00", ErrIncompleteFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHeader_FirstValueWins(t *testing.T) {
	var h Header
	h.Add("id", "1")
	h.Add("id", "2")
	assert.Equal(t, "1", h.Get("id"))
	_, ok := h.Lookup("missing")
	assert.False(t, ok)
}

package realtime

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// STOMP 1.2 commands understood by the server.
const (
	CmdConnect     = "CONNECT"
	CmdStomp       = "STOMP"
	CmdConnected   = "CONNECTED"
	CmdSend        = "SEND"
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
	CmdDisconnect  = "DISCONNECT"
	CmdMessage     = "MESSAGE"
	CmdReceipt     = "RECEIPT"
	CmdError       = "ERROR"
)

var knownCommands = map[string]bool{
	CmdConnect: true, CmdStomp: true, CmdConnected: true, CmdSend: true, CmdSubscribe: true,
	CmdUnsubscribe: true, CmdDisconnect: true, CmdMessage: true, CmdReceipt: true, CmdError: true,
}

var (
	ErrIncompleteFrame = errors.New("stomp: incomplete frame")
	ErrUnknownCommand  = errors.New("stomp: unknown command")
	ErrMalformedHeader = errors.New("stomp: malformed header")
)

// Header is an ordered STOMP header list. When a name repeats, the first value wins.
type Header [][2]string

func (h Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

func (h Header) Lookup(name string) (string, bool) {
	for _, kv := range h {
		if kv[0] == name {
			return kv[1], true
		}
	}
	return "", false
}

func (h *Header) Add(name, value string) {
	*h = append(*h, [2]string{name, value})
}

type Frame struct {
	Command string
	Header  Header
	Body    []byte
}

func NewFrame(command string, kv ...string) *Frame {
	f := &Frame{Command: command}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Header.Add(kv[i], kv[i+1])
	}
	return f
}

// CONNECT and CONNECTED frames carry raw header values.
func escapes(command string) bool {
	return command != CmdConnect && command != CmdConnected && command != CmdStomp
}

var (
	headerEscaper   = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`, ":", `\c`)
	headerUnescaper = strings.NewReplacer(`\\`, `\`, `\r`, "\r", `\n`, "\n", `\c`, ":")
)

// Encode serialises f, adding content-length when a body is present.
func (f *Frame) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Command)
	buf.WriteByte('\n')

	esc := escapes(f.Command)
	_, hasLen := f.Header.Lookup("content-length")
	for _, kv := range f.Header {
		k, v := kv[0], kv[1]
		if esc {
			k, v = headerEscaper.Replace(k), headerEscaper.Replace(v)
		}
		buf.WriteString(k)
		buf.WriteByte(':')
		buf.WriteString(v)
		buf.WriteByte('\n')
	}
	if len(f.Body) > 0 && !hasLen {
		buf.WriteString("content-length:")
		buf.WriteString(strconv.Itoa(len(f.Body)))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// Decode parses every frame in data. Heart-beat EOLs between frames are skipped.
func Decode(data []byte) ([]*Frame, error) {
	var frames []*Frame
	for {
		data = bytes.TrimLeft(data, "\r\n")
		if len(data) == 0 {
			return frames, nil
		}
		f, n, err := decodeOne(data)
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
		data = data[n:]
	}
}

func decodeOne(data []byte) (*Frame, int, error) {
	end := bytes.Index(data, []byte("\n\n"))
	sep := 2
	if crlf := bytes.Index(data, []byte("\r\n\r\n")); crlf >= 0 && (end < 0 || crlf < end) {
		end, sep = crlf, 4
	}
	if end < 0 {
		return nil, 0, ErrIncompleteFrame
	}

	lines := strings.Split(strings.ReplaceAll(string(data[:end]), "\r\n", "\n"), "\n")
	f := &Frame{Command: lines[0]}
	if !knownCommands[f.Command] {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownCommand, f.Command)
	}
	esc := escapes(f.Command)
	for _, line := range lines[1:] {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		if esc {
			k, v = headerUnescaper.Replace(k), headerUnescaper.Replace(v)
		}
		f.Header.Add(k, v)
	}

	body := data[end+sep:]
	if cl, ok := f.Header.Lookup("content-length"); ok {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 {
			return nil, 0, fmt.Errorf("%w: content-length %q", ErrMalformedHeader, cl)
		}
		if len(body) < n+1 || body[n] != 0 {
			return nil, 0, ErrIncompleteFrame
		}
		f.Body = append([]byte(nil), body[:n]...)
		return f, end + sep + n + 1, nil
	}

	nul := bytes.IndexByte(body, 0)
	if nul < 0 {
		return nil, 0, ErrIncompleteFrame
	}
	f.Body = append([]byte(nil), body[:nul]...)
	return f, end + sep + nul + 1, nil
}

package realtime

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// transport adapts STOMP frames to one websocket framing: raw frames or the SockJS envelope.
type transport interface {
	// open returns the message to write right after the upgrade, if any.
	open() []byte
	// wrap turns one encoded STOMP frame into a websocket message.
	wrap(frame []byte) []byte
	// unwrap extracts the STOMP payloads carried by one websocket message.
	unwrap(msg []byte) ([][]byte, error)
	// heartbeat is written on every ping tick, nil for none.
	heartbeat() []byte
	// closing is written before the socket closes, nil for none.
	closing() []byte
	messageType() int
}

type rawTransport struct{}

func (rawTransport) open() []byte                        { return nil }
func (rawTransport) wrap(frame []byte) []byte            { return frame }
func (rawTransport) unwrap(msg []byte) ([][]byte, error) { return [][]byte{msg}, nil }
func (rawTransport) heartbeat() []byte                   { return nil }
func (rawTransport) closing() []byte                     { return nil }
func (rawTransport) messageType() int                    { return websocket.TextMessage }

// sockJSTransport speaks the SockJS websocket framing: "o" open, "h" heartbeat,
// a["..."] data arrays and c[code,"reason"] close.
type sockJSTransport struct{}

var errBadSockJS = errors.New("sockjs: malformed message")

func (sockJSTransport) open() []byte { return []byte("o") }

func (sockJSTransport) wrap(frame []byte) []byte {
	b, _ := json.Marshal([]string{string(frame)})
	return append([]byte("a"), b...)
}

// Clients send a JSON array of strings, some older ones a single JSON string.
func (sockJSTransport) unwrap(msg []byte) ([][]byte, error) {
	if len(msg) == 0 {
		return nil, nil
	}
	var batch []string
	if err := json.Unmarshal(msg, &batch); err != nil {
		var single string
		if err := json.Unmarshal(msg, &single); err != nil {
			return nil, errBadSockJS
		}
		batch = []string{single}
	}
	out := make([][]byte, 0, len(batch))
	for _, s := range batch {
		out = append(out, []byte(s))
	}
	return out, nil
}

func (sockJSTransport) heartbeat() []byte { return []byte("h") }
func (sockJSTransport) closing() []byte   { return []byte(`c[3000,"Go away!"]`) }
func (sockJSTransport) messageType() int  { return websocket.TextMessage }

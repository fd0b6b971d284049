package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ieum/internal/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// send time limit for one websocket write
	writeWait  = 30 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize  = 128 * 1024
	sendBufferLimit = 512 * 1024
	sendQueueLen    = 256

	// time allowed between the upgrade and the CONNECT frame
	connectTimeout = 60 * time.Second
)

var clientIDCounter atomic.Uint64

// frameHandler reacts to inbound frames and to the end of a connection.
type frameHandler interface {
	handleFrame(ctx context.Context, c *Client, f *Frame)
	disconnected(c *Client)
}

type subscription struct {
	id          string
	destination string
	cancel      context.CancelFunc
}

// Client owns one websocket connection. The send channel is never closed; done signals shutdown.
type Client struct {
	id      uint64
	session *Session
	conn    *websocket.Conn
	tr      transport
	hub     *Hub
	handler frameHandler
	log     *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	send      chan []byte
	queued    atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
	connected atomic.Bool

	mu        sync.Mutex
	subs      map[string]*subscription
	errorsSub string
}

func newClient(parent context.Context, hub *Hub, conn *websocket.Conn, tr transport, s *Session, h frameHandler, log *zap.SugaredLogger) *Client {
	ctx, cancel := context.WithCancel(parent)
	return &Client{
		id:      clientIDCounter.Add(1),
		session: s,
		conn:    conn,
		tr:      tr,
		hub:     hub,
		handler: h,
		log:     log.With("session_id", s.ID, "user_id", s.UserID),
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan []byte, sendQueueLen),
		done:    make(chan struct{}),
		subs:    make(map[string]*subscription),
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// Close stops the pumps and every subscription. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// SendFrame queues f for writing. A client whose buffer overflows is disconnected.
func (c *Client) SendFrame(f *Frame) bool {
	return c.enqueue(c.tr.wrap(f.Encode()))
}

func (c *Client) enqueue(msg []byte) bool {
	if c.closed() {
		return false
	}
	size := int64(len(msg))
	if c.queued.Load()+size > sendBufferLimit {
		c.overflow(size)
		return false
	}
	select {
	case c.send <- msg:
		c.queued.Add(size)
		return true
	case <-c.done:
		return false
	default:
		c.overflow(size)
		return false
	}
}

func (c *Client) overflow(size int64) {
	metrics.DroppedFrames.Inc()
	c.log.Warnw("send buffer overflow, closing", "queued", c.queued.Load(), "frame_size", size)
	c.Close()
}

func (c *Client) addSubscription(sub *subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.subs[sub.id]; ok && old.cancel != nil {
		old.cancel()
	}
	c.subs[sub.id] = sub
	if sub.destination == errorsDestination {
		c.errorsSub = sub.id
	}
}

func (c *Client) removeSubscription(id string) (*subscription, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.subs[id]
	if !ok {
		return nil, false
	}
	delete(c.subs, id)
	if sub.cancel != nil {
		sub.cancel()
	}
	if c.errorsSub == id {
		c.errorsSub = ""
	}
	return sub, true
}

func (c *Client) errorsSubscription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorsSub
}

// readPump decodes inbound messages and hands every frame to the handler in order.
func (c *Client) readPump() {
	defer func() {
		c.Close()
		c.hub.unregister(c)
		c.handler.disconnected(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	timer := time.AfterFunc(connectTimeout, func() {
		if !c.connected.Load() {
			c.log.Infow("no CONNECT frame in time, closing")
			c.Close()
		}
	})
	defer timer.Stop()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) && !c.closed() {
				c.log.Debugw("unexpected websocket close", "error", err)
			}
			return
		}
		// any inbound traffic counts as liveness
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		payloads, err := c.tr.unwrap(msg)
		if err != nil {
			c.protocolError(err)
			return
		}
		for _, p := range payloads {
			frames, err := Decode(p)
			if err != nil {
				c.protocolError(err)
				return
			}
			for _, f := range frames {
				c.handler.handleFrame(c.ctx, c, f)
				if c.closed() {
					return
				}
			}
		}
	}
}

// protocolError reports a broken frame with an ERROR frame and drops the connection.
func (c *Client) protocolError(err error) {
	c.log.Infow("protocol error", "error", err)
	c.SendFrame(NewFrame(CmdError, "message", "malformed frame", "content-type", "text/plain"))
	c.Close()
}

// writePump owns every write to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	write := func(msg []byte) bool {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return false
		}
		return c.conn.WriteMessage(c.tr.messageType(), msg) == nil
	}

	if open := c.tr.open(); open != nil && !write(open) {
		c.Close()
		return
	}

	for {
		select {
		case msg := <-c.send:
			c.queued.Add(-int64(len(msg)))
			if !write(msg) {
				c.Close()
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
			if hb := c.tr.heartbeat(); hb != nil && !write(hb) {
				c.Close()
				return
			}

		case <-c.done:
			c.drain(write)
			if bye := c.tr.closing(); bye != nil {
				write(bye)
			}
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		}
	}
}

// drain flushes frames queued before the close, such as a final ERROR or RECEIPT.
func (c *Client) drain(write func([]byte) bool) {
	for {
		select {
		case msg := <-c.send:
			c.queued.Add(-int64(len(msg)))
			if !write(msg) {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) start() {
	go c.writePump()
	go c.readPump()
}

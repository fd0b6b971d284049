package realtime

import (
	"context"

	"ieum/internal/metrics"

	"go.uber.org/zap"
)

// Hub tracks every open connection so shutdown can close them together.
type Hub struct {
	clients  map[*Client]struct{}
	register chan *Client
	unreg    chan *Client
	stopped  chan struct{}
	log      *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		clients:  make(map[*Client]struct{}),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		stopped:  make(chan struct{}),
		log:      log,
	}
}

// Run serves registrations until ctx is cancelled, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			metrics.WSSessions.Set(float64(len(h.clients)))
			h.log.Debugw("client registered", "session_id", c.session.ID, "clients", len(h.clients))

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				metrics.WSSessions.Set(float64(len(h.clients)))
				h.log.Debugw("client unregistered", "session_id", c.session.ID, "clients", len(h.clients))
			}

		case <-ctx.Done():
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			metrics.WSSessions.Set(0)
			h.log.Infow("websocket hub stopped")
			return
		}
	}
}

// add reports false once the hub has stopped.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.stopped:
	}
}

package web

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vitos/futures_day_bot/internal/domain"
	"go.uber.org/zap"
)

// Hub broadcasts bot events to websocket subscribers. It implements
// domain.EventSink: Publish never blocks the caller, slow subscribers
// have events dropped.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan domain.Event
}

const clientBuffer = 64

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Publish fans the event out to all connected subscribers.
func (h *Hub) Publish(event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan domain.Event, clientBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// writeLoop pushes queued events to one subscriber until it drops.
func (h *Hub) writeLoop(c *client) {
	defer h.remove(c)

	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			h.logger.Debug("subscriber write failed", zap.Error(err))
			return
		}
	}
}

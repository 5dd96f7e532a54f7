package realtime

import (
	"context"
	"sync"

	"github.com/fitaccess/gymgate/internal/logging"
	"github.com/fitaccess/gymgate/internal/metrics"
)

// Topic names. Every message is addressed to exactly one topic and only
// clients subscribed to that topic receive it.
const (
	topicAccessEventsPrefix = "access_events:"
	topicCommandPrefix      = "command:"
)

// AccessEventsTopic is the per-branch access event stream.
func AccessEventsTopic(branchID string) string {
	return topicAccessEventsPrefix + branchID
}

// CommandTopic is the per-command status channel watched by the client
// that issued the command.
func CommandTopic(commandID string) string {
	return topicCommandPrefix + commandID
}

// Message is one realtime payload addressed to a topic.
type Message struct {
	Topic string `json:"-"`
	Type  string `json:"type"`
	Data  any    `json:"data"`
}

// Hub fans messages out to connected websocket clients by topic. A gym
// dashboard subscribes to its branch's access event topic; a staff client
// that triggered a relay subscribes to that command's topic.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Serve runs the hub loop until ctx is canceled. Designed for suture
// supervision; on shutdown every client is closed before returning.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.TrackWSClient(true)
			logging.Debug().Str("topic", c.topic).Int("total_clients", n).Msg("realtime client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.TrackWSClient(false)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logging.Debug().Str("topic", c.topic).Int("total_clients", n).Msg("realtime client disconnected")

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) String() string { return "realtime-hub" }

// Publish queues a message for delivery. Non-blocking; if the hub's
// buffer is full the message is dropped and logged rather than stalling
// the request path.
func (h *Hub) Publish(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn().Str("topic", msg.Topic).Msg("realtime broadcast buffer full, dropping message")
	}
}

func (h *Hub) deliver(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.topic != msg.Topic {
			continue
		}
		select {
		case c.send <- msg:
		default:
			// Slow consumer. Drop the client rather than the stream.
			delete(h.clients, c)
			close(c.send)
			metrics.TrackWSClient(false)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		metrics.TrackWSClient(false)
	}
	logging.Info().Msg("closed all realtime clients during shutdown")
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

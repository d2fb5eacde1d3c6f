package stream

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

const defaultClientBuffer = 256 // frames queued per client before dropping

type client struct {
	out    chan Frame
	codec  Codec
	writer *SafeWriter
}

// Hub is a one-way notification feed. Publishing never blocks the
// simulation: a client whose queue is full misses frames.
type Hub struct {
	upgrader websocket.Upgrader
	buffer   int

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates a hub with the given per-client queue length.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		buffer:  buffer,
		clients: make(map[*client]struct{}),
	}
}

// Attach subscribes the hub to every event on bus.
func (h *Hub) Attach(bus *game.Bus) {
	bus.SubscribeAll(h)
}

// OnEvent queues e for every client.
func (h *Hub) OnEvent(e game.Event) {
	h.broadcast(Frame{Type: FrameEvent, Event: &e})
}

// PublishSnapshot queues a world snapshot for every client.
func (h *Hub) PublishSnapshot(s game.Snapshot) {
	h.broadcast(Frame{Type: FrameSnapshot, Snapshot: &s})
}

func (h *Hub) broadcast(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.out <- f:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Sent returns the number of frames queued so far.
func (h *Hub) Sent() uint64 { return h.sent.Load() }

// Dropped returns the number of frames discarded on full queues.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.out)
	}
}

// ServeHTTP upgrades a spectator connection. ?codec=msgpack selects binary frames.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: upgrade: %v", err)
		return
	}
	c := &client{
		out:    make(chan Frame, h.buffer),
		codec:  ParseCodec(r.URL.Query().Get("codec")),
		writer: NewSafeWriter(conn),
	}
	// The hello frame goes first, so a client that has read it is registered.
	c.out <- Frame{Type: FrameHello, Codec: c.codec.String()}
	if !h.add(c) {
		_ = c.writer.Close()
		return
	}
	go h.writeLoop(c)
	h.readLoop(c, conn)
}

func (h *Hub) writeLoop(c *client) {
	for f := range c.out {
		if err := c.writer.WriteFrame(c.codec, f); err != nil {
			h.remove(c)
			break
		}
	}
	// Drain so a late broadcast never sees a full queue on a dead client.
	for range c.out {
	}
	_ = c.writer.Close()
}

// readLoop discards inbound messages until the peer goes away.
func (h *Hub) readLoop(c *client, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.out)
	}
}

package livefeed

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub pushes live updates to every connected websocket client.
type Hub struct {
	latest   func() *types.LiveUpdate
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates a hub. latest, when not nil, provides the update new
// clients receive right after connecting.
func NewHub(latest func() *types.LiveUpdate) *Hub {
	return &Hub{
		latest: latest,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // dashboard may be served from anywhere
			},
		},
		clients: make(map[*client]bool),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("livefeed: websocket upgrade error: %v", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	h.add(c)

	if h.latest != nil {
		if u := h.latest(); u != nil {
			if err := c.write(u.ToJsonBytes()); err != nil {
				h.remove(c)
				return
			}
		}
	}

	// Read until the client goes away. Pings are answered by the default handler.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

// Broadcast sends u to all clients and drops the ones that fail.
func (h *Hub) Broadcast(u types.LiveUpdate) {
	msg := u.ToJsonBytes()

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(msg); err != nil {
			log.Printf("livefeed: dropping client %s: %v", c.id, err)
			h.remove(c)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]bool)
	h.mu.Unlock()

	for c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	log.Printf("livefeed: client %s connected", c.id)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
	if ok {
		log.Printf("livefeed: client %s disconnected", c.id)
	}
}

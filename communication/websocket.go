package communication

import (
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vestalabs/habitat/logging"
)

// ClientInfo describes one connected watcher.
type ClientInfo struct {
	ClientID    string    `json:"client_id,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
}

type registration struct {
	conn     *websocket.Conn
	clientID string
}

// Hub fans events out to connected websocket clients. Every write to a
// connection happens on the run loop, so handler goroutines never
// write the same client concurrently.
type Hub struct {
	clients    map[*websocket.Conn]ClientInfo
	broadcast  chan Event
	register   chan registration
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
}

// NewHub builds a hub and starts its fan-out loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*websocket.Conn]ClientInfo),
		broadcast:  make(chan Event, 64),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case reg := <-h.register:
			h.mu.Lock()
			h.clients[reg.conn] = ClientInfo{
				ClientID:    reg.clientID,
				ConnectedAt: time.Now().UTC(),
			}
			h.mu.Unlock()

			welcome := Event{
				Type: EventConnection,
				Fields: map[string]any{
					"message":   "Connected to Vesta real-time updates",
					"client_id": reg.clientID,
				},
				Timestamp: time.Now().UTC(),
			}
			if err := reg.conn.WriteJSON(welcome); err != nil {
				h.drop(reg.conn)
			}

		case conn := <-h.unregister:
			h.drop(conn)

		case event := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteJSON(event); err != nil {
					logging.Default().Warn("websocket write failed, dropping client", "error", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Register adds a client and greets it with a connection frame.
func (h *Hub) Register(conn *websocket.Conn, clientID string) {
	select {
	case h.register <- registration{conn: conn, clientID: clientID}:
	case <-h.done:
	}
}

// Unregister removes and closes a client.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast delivers the event to every connected client, stamping the
// timestamp if the caller left it zero.
func (h *Hub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	case <-h.done:
	}
}

// ConnectionCount reports how many clients are attached.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ConnectionInfo lists the attached clients, oldest first.
func (h *Hub) ConnectionInfo() []ClientInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	info := make([]ClientInfo, 0, len(h.clients))
	for _, ci := range h.clients {
		info = append(info, ci)
	}
	sort.Slice(info, func(i, j int) bool {
		if info[i].ConnectedAt.Equal(info[j].ConnectedAt) {
			return info[i].ClientID < info[j].ClientID
		}
		return info[i].ConnectedAt.Before(info[j].ConnectedAt)
	})
	return info
}

// Close drops every client and stops the fan-out loop.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// server/hub.go
package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iWeeti/bancho-autohost/logger"
)

const statusInterval = 5 * time.Second

// viewer is one connected status client.
type viewer struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes lobby status snapshots to every connected viewer.
type Hub struct {
	statuses func() any

	mu      sync.Mutex
	viewers map[string]*viewer
	done    chan struct{}
}

func NewHub(statuses func() any) *Hub {
	return &Hub{
		statuses: statuses,
		viewers:  make(map[string]*viewer),
		done:     make(chan struct{}),
	}
}

// Run broadcasts snapshots until Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.viewers {
		close(v.send)
		delete(h.viewers, v.id)
	}
}

func (h *Hub) broadcast() {
	data, err := json.Marshal(h.statuses())
	if err != nil {
		logger.Log.Errorf("hub: marshal statuses: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.viewers {
		select {
		case v.send <- data:
		default:
			// slow viewer, drop it
			close(v.send)
			delete(h.viewers, v.id)
		}
	}
}

// Add registers a connection and starts its pumps.
func (h *Hub) Add(conn *websocket.Conn) {
	v := &viewer{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 8),
	}

	h.mu.Lock()
	h.viewers[v.id] = v
	h.mu.Unlock()

	logger.Log.Infof("status viewer %s connected from %s", v.id, conn.RemoteAddr())

	go h.writePump(v)
	go h.readPump(v)

	// initial snapshot so the viewer does not wait a full tick
	if data, err := json.Marshal(h.statuses()); err == nil {
		select {
		case v.send <- data:
		default:
		}
	}
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	if _, ok := h.viewers[v.id]; ok {
		close(v.send)
		delete(h.viewers, v.id)
	}
	h.mu.Unlock()
}

func (h *Hub) writePump(v *viewer) {
	defer v.conn.Close()
	for data := range v.send {
		if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readPump discards inbound frames and notices disconnects.
func (h *Hub) readPump(v *viewer) {
	defer func() {
		logger.Log.Infof("status viewer %s disconnected", v.id)
		h.remove(v)
		v.conn.Close()
	}()
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

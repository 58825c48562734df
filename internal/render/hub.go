// Package render pushes engine snapshots to the places that draw them.
package render

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/qibla"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	DefaultSendBuffer = 16
)

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts snapshots to every connected WebSocket client. A client whose
// send buffer is full is disconnected rather than allowed to stall the others.
type Hub struct {
	upgrader   websocket.Upgrader
	logger     *slog.Logger
	sendBuffer int

	mu      sync.Mutex
	clients map[uuid.UUID]*client
	last    []byte
	closed  bool
	writers sync.WaitGroup
}

func NewHub(logger *slog.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:     logging.Component(logger, "render_hub"),
		sendBuffer: sendBuffer,
		clients:    make(map[uuid.UUID]*client),
	}
}

// Render queues snap for every client. The latest snapshot is also kept so
// that new clients start with the current state.
func (h *Hub) Render(snap qibla.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		logging.LogError(h.logger, "failed to encode snapshot", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = payload
	for id, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("dropping slow client", slog.String("client_id", id.String()))
			h.removeLocked(id)
		}
	}
}

// ServeHTTP upgrades the request and streams snapshots until the client
// goes away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.LogError(h.logger, "websocket upgrade failed", err)
		return
	}

	c := &client{id: uuid.New(), conn: conn, send: make(chan []byte, h.sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		logging.SafeCloseWithLogging(conn, h.logger, "websocket")
		return
	}
	h.clients[c.id] = c
	if h.last != nil {
		c.send <- h.last
	}
	h.writers.Add(1)
	h.mu.Unlock()

	h.logger.Info("client connected",
		slog.String("client_id", c.id.String()),
		slog.String("remote_addr", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)

	h.logger.Info("client disconnected", slog.String("client_id", c.id.String()))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their writers to finish.
// Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for id := range h.clients {
		h.removeLocked(id)
	}
	h.mu.Unlock()

	h.writers.Wait()
}

func (h *Hub) remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

// removeLocked closes the client's send channel, which ends its writer.
func (h *Hub) removeLocked(id uuid.UUID) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
}

// readPump discards client messages; reading is what notices a closed
// connection and answers pings.
func (h *Hub) readPump(c *client) {
	defer h.remove(c.id)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.LogError(h.logger, "websocket read failed", err, slog.String("client_id", c.id.String()))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		logging.SafeCloseWithLogging(c.conn, h.logger, "websocket")
		h.writers.Done()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

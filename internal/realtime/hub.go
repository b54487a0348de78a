// Package realtime pushes refresh notifications to websocket clients
// watching a project.
package realtime

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Message is the JSON payload written to subscribers.
type Message struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	ProjectID string `json:"project_id"`
}

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn()
}

// Hub tracks websocket subscribers per project.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
	closed   bool
}

// NewHub creates a hub that accepts connections from allowedOrigins.
// "*" accepts any origin; requests without an Origin header are always accepted.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		clients: make(map[uint]map[*client]struct{}),
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
	return h
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}

// Subscribers reports how many connections are watching projectID.
func (h *Hub) Subscribers(projectID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[projectID])
}

// NotifyProject tells every subscriber of projectID to refresh.
func (h *Hub) NotifyProject(projectID uint) {
	h.mu.RLock()
	subscribers := make([]*client, 0, len(h.clients[projectID]))
	for c := range h.clients[projectID] {
		subscribers = append(subscribers, c)
	}
	h.mu.RUnlock()

	msg := Message{
		Type:      "refresh",
		Message:   "Project data updated",
		ProjectID: strconv.FormatUint(uint64(projectID), 10),
	}

	for _, c := range subscribers {
		err := c.write(func() error { return c.conn.WriteJSON(msg) })
		if err != nil {
			h.logger.Warn("Failed to broadcast refresh to client",
				zap.Uint("project_id", projectID), zap.Error(err))
			h.remove(projectID, c)
			c.conn.Close()
		}
	}
}

// Serve upgrades the request and blocks until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, projectID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		h.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn}
	if !h.add(projectID, c) {
		conn.Close()
		return
	}

	defer func() {
		h.remove(projectID, c)
		conn.Close()
		h.logger.Debug("WebSocket connection closed", zap.Uint("project_id", projectID))
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	err = c.write(func() error {
		return conn.WriteJSON(Message{
			Type:      "connected",
			Message:   "WebSocket connection established",
			ProjectID: strconv.FormatUint(uint64(projectID), 10),
		})
	})
	if err != nil {
		h.logger.Warn("Failed to send welcome message", zap.Error(err))
		return
	}

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(c, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Uint("project_id", projectID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) keepAlive(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			err := c.write(func() error { return c.conn.WriteMessage(websocket.PingMessage, nil) })
			if err != nil {
				return
			}
		}
	}
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	all := h.clients
	h.clients = make(map[uint]map[*client]struct{})
	h.mu.Unlock()

	for _, clients := range all {
		for c := range clients {
			_ = c.write(func() error {
				return c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			})
			c.conn.Close()
		}
	}
}

func (h *Hub) add(projectID uint, c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*client]struct{})
	}
	h.clients[projectID][c] = struct{}{}
	return true
}

func (h *Hub) remove(projectID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[projectID]; exists {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
}

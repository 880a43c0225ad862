package notification

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64
)

// client is one websocket connection. The connection is written to only by
// its writePump goroutine; everyone else enqueues onto send.
type client struct {
	userID int64
	id     string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans freshly stored notifications out to connected clients. A user may
// hold several connections (two dashboard tabs); each gets its own client id
// and its own writer goroutine, so concurrent dispatches never touch the
// same connection from two goroutines.
//
// Locking invariant: send channels are closed only under the write lock and
// enqueued to only under the read lock, so an enqueue can never race a close.
type Hub struct {
	mutex   sync.RWMutex
	clients map[int64]map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[string]*client)}
}

// Register adds a connection for the user, starts its writer, and returns
// the client id used to unregister it.
func (h *Hub) Register(userID int64, conn *websocket.Conn) string {
	c := &client{
		userID: userID,
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	h.mutex.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[string]*client)
	}
	h.clients[userID][c.id] = c
	h.mutex.Unlock()

	go h.writePump(c)

	return c.id
}

// Unregister detaches the client and stops its writer; the writer closes the
// underlying connection on its way out. Safe to call more than once.
func (h *Hub) Unregister(userID int64, clientID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.detachLocked(userID, clientID)
}

func (h *Hub) detachLocked(userID int64, clientID string) {
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	c, ok := conns[clientID]
	if !ok {
		return
	}

	delete(conns, clientID)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
	close(c.send)
}

// SendToUser enqueues message for every live connection of the user. A
// client whose buffer is full is skipped rather than blocked on. Returns
// false when nothing could be enqueued; delivery over the feed is
// best-effort either way.
func (h *Hub) SendToUser(userID int64, message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		return false
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	delivered := false
	for _, c := range h.clients[userID] {
		select {
		case c.send <- data:
			delivered = true
		default:
			// Client too slow, drop this event for it.
		}
	}
	return delivered
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients[userID]) > 0
}

// Close detaches every client; their writers shut the connections down.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conns := range h.clients {
		for clientID := range conns {
			h.detachLocked(userID, clientID)
		}
	}
}

// writePump is the connection's single writer: it drains send and keeps the
// peer alive with pings until the client is detached or a write fails.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.Unregister(c.userID, c.id)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(c.userID, c.id)
				return
			}
		}
	}
}

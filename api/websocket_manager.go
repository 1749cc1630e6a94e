package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// connWithMutex wraps a WebSocket connection with its own mutex for thread-safe writes.
type connWithMutex struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WSConnectionManager tracks open WebSocket connections by ID.
type WSConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*connWithMutex
}

// NewWSConnectionManager creates a new WebSocket connection manager.
func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		connections: make(map[string]*connWithMutex),
	}
}

// Add registers conn and returns its ID.
func (m *WSConnectionManager) Add(conn *websocket.Conn) string {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[id] = &connWithMutex{conn: conn}
	return id
}

// Remove forgets the connection with the given ID.
func (m *WSConnectionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, id)
}

// Count returns the number of open connections.
func (m *WSConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// WriteJSON safely writes JSON to a specific connection using its mutex.
func (m *WSConnectionManager) WriteJSON(id string, message any) error {
	m.mu.RLock()
	cwm, exists := m.connections[id]
	m.mu.RUnlock()

	if !exists {
		return websocket.ErrCloseSent
	}

	cwm.mu.Lock()
	defer cwm.mu.Unlock()
	return cwm.conn.WriteJSON(message)
}

// CloseAll sends a going-away close frame to every connection and closes it.
func (m *WSConnectionManager) CloseAll() {
	m.mu.Lock()
	conns := make([]*connWithMutex, 0, len(m.connections))
	for id, cwm := range m.connections {
		conns = append(conns, cwm)
		delete(m.connections, id)
	}
	m.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	deadline := time.Now().Add(time.Second)
	for _, cwm := range conns {
		cwm.mu.Lock()
		_ = cwm.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = cwm.conn.Close()
		cwm.mu.Unlock()
	}
}

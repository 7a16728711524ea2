// Package relay is the live message relay of the development backend. It
// tracks which sockets belong to which user and forwards transient chat
// messages between them. Nothing is queued for users who are offline.
package relay

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/coder/websocket"
)

// Registry tracks the active sockets of each user.
type Registry struct {
	mu     sync.RWMutex
	active map[string]map[*websocket.Conn]struct{}
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		active: make(map[string]map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

// Register adds conn for userID. A user may hold several sockets.
func (m *Registry) Register(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[*websocket.Conn]struct{})
	}
	m.active[userID][conn] = struct{}{}
	m.logger.Info("Chat socket registered", "user_id", userID, "sockets", len(m.active[userID]))
}

// Unregister removes conn for userID.
func (m *Registry) Unregister(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.active[userID]
	if !ok {
		return
	}
	if _, exists := conns[conn]; !exists {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(m.active, userID)
	}
	m.logger.Info("Chat socket unregistered", "user_id", userID)
}

// Connections returns the sockets of userID.
func (m *Registry) Connections(userID string) []*websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*websocket.Conn, 0, len(m.active[userID]))
	for c := range m.active[userID] {
		out = append(out, c)
	}
	return out
}

// Online returns the ids of users with at least one socket, sorted.
func (m *Registry) Online() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.active))
	for id := range m.active {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// CloseUser closes every socket of userID, e.g. when the account is deleted.
func (m *Registry) CloseUser(userID string) {
	m.mu.Lock()
	conns := m.active[userID]
	delete(m.active, userID)
	m.mu.Unlock()

	for conn := range conns {
		_ = conn.Close(websocket.StatusNormalClosure, "session closed")
	}
	if len(conns) > 0 {
		m.logger.Info("Chat sockets closed", "user_id", userID, "sockets", len(conns))
	}
}

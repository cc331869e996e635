package relay

import (
	"log"
	"sync"
)

// Conn is the write side of a live duplex connection. The websocket handler
// wraps *websocket.Conn behind this so the registry stays transport-agnostic.
type Conn interface {
	WriteJSON(v any) error
}

// Registry tracks live duplex connections per user. A user may hold several
// connections at once (multi-device); they are kept in registration order.
type Registry struct {
	mu          sync.RWMutex
	connections map[string][]Conn
}

// NewRegistry bootstraps an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string][]Conn),
	}
}

// Register appends conn to the user's connection list, creating it lazily.
func (r *Registry) Register(user string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[user] = append(r.connections[user], conn)
}

// Unregister removes conn from the user's list if present. Disconnect races
// are expected, so removing an absent connection is a no-op.
func (r *Registry) Unregister(user string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.connections[user]
	for i, c := range conns {
		if c == conn {
			r.connections[user] = append(conns[:i:i], conns[i+1:]...)
			return
		}
	}
}

// HasConnections reports whether at least one connection is live for user.
func (r *Registry) HasConnections(user string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[user]) > 0
}

// Broadcast writes payload to every current connection for user in
// registration order. A write failure on one connection does not abort
// delivery to the rest; all failed connections are unregistered before
// Broadcast returns. Returns the number of successful deliveries.
func (r *Registry) Broadcast(user string, payload any) int {
	r.mu.RLock()
	conns := make([]Conn, len(r.connections[user]))
	copy(conns, r.connections[user])
	r.mu.RUnlock()

	delivered := 0
	var failed []Conn
	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("[registry] broadcast write failed user=%s: %v", user, err)
			failed = append(failed, conn)
			continue
		}
		delivered++
	}

	for _, conn := range failed {
		r.Unregister(user, conn)
	}

	return delivered
}

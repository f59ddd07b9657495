package gateway

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/krishanu7/SyncTube/domain"
)

// ErrUnknownConnection is returned when a frame is addressed to a
// connection the gateway is not tracking. Callers treat it as a
// delivery failure, never a fault.
var ErrUnknownConnection = errors.New("unknown connection")

// Gateway tracks every accepted connection until disconnect and delivers
// encoded frames to them. Disconnect invokes the single registered
// handler exactly once per connection.
type Gateway struct {
	mu      sync.RWMutex
	conns   map[string]domain.Connection
	onClose func(connID string)
}

func New() *Gateway {
	return &Gateway{
		conns: make(map[string]domain.Connection),
	}
}

// OnDisconnect registers the cleanup handler. Call once, before the
// first connection is accepted.
func (g *Gateway) OnDisconnect(h func(connID string)) {
	g.mu.Lock()
	g.onClose = h
	g.mu.Unlock()
}

func (g *Gateway) Add(conn domain.Connection) {
	g.mu.Lock()
	g.conns[conn.ID()] = conn
	count := len(g.conns)
	g.mu.Unlock()

	slog.Info("connection accepted", "connectionId", conn.ID(), "connections", count)
}

// Remove is idempotent; the disconnect handler fires only for a
// connection that was still tracked.
func (g *Gateway) Remove(connID string) {
	g.mu.Lock()
	_, tracked := g.conns[connID]
	delete(g.conns, connID)
	count := len(g.conns)
	handler := g.onClose
	g.mu.Unlock()

	if !tracked {
		return
	}

	slog.Info("connection closed", "connectionId", connID, "connections", count)

	if handler != nil {
		handler(connID)
	}
}

// Send delivers one frame to one connection. A dead outbound buffer gets
// the connection torn down the same way a read error would.
func (g *Gateway) Send(connID string, data []byte) error {
	g.mu.RLock()
	conn, ok := g.conns[connID]
	g.mu.RUnlock()

	if !ok {
		return ErrUnknownConnection
	}

	if err := conn.Send(data); err != nil {
		go g.Remove(connID)
		return err
	}
	return nil
}

func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

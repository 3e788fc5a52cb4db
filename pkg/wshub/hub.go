package wshub

import (
	"context"
	"errors"
	"sync"

	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// Hub tracks every live subscriber connection so the service can close them
// all on shutdown. Each subscription gets its own id; one caller may hold
// several subscriptions at once.
type Hub struct {
	conns map[uuid.UUID]*Conn
	l     logger.Logger
	mu    sync.Mutex
}

func NewHub(l logger.Logger) *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]*Conn),
		l:     l,
	}
}

// Add registers a new connection in the hub.
func (h *Hub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[newConn.ID()] = newConn

	return nil
}

// Delete removes and closes the connection with the given id.
func (h *Hub) Delete(id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	conn, ok := h.conns[id]
	if !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"conn_id", id,
			"err", err.Error(),
		)
	}

	delete(h.conns, id)

	return nil
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close closes every tracked connection.
func (h *Hub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	// snapshot under lock, close outside of it
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = h.Delete(conn.ID())
	}

	h.l.Info(ctx, "all websocket connections closed")
}

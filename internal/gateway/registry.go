package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// writeTimeout bounds a single outbound frame write.
const writeTimeout = 10 * time.Second

type conn struct {
	id string
	ws *websocket.Conn
}

// Registry tracks the live websocket connection per user. A reconnect
// replaces the previous connection; the stale one is closed.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*conn
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*conn)}
}

// Register binds a websocket to a user and returns the connection id. Any
// previous connection for the user is closed.
func (r *Registry) Register(userID string, ws *websocket.Conn) string {
	id := uuid.NewString()

	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = &conn{id: id, ws: ws}
	r.mu.Unlock()

	if prev != nil {
		slog.Info("Replacing stale connection", "user_id", userID, "conn_id", prev.id)
		_ = prev.ws.Close(websocket.StatusPolicyViolation, "superseded by new connection")
	}
	return id
}

// Unregister removes the connection only if it is still the user's current
// one, so an old connection's teardown never evicts its replacement.
func (r *Registry) Unregister(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[userID]; ok && cur.id == connID {
		delete(r.conns, userID)
	}
}

// Send delivers a text frame to the user's live connection. It satisfies the
// transport interface the background workers send through.
func (r *Registry) Send(userID, text string) error {
	r.mu.RLock()
	cur, ok := r.conns[userID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := cur.ws.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		return fmt.Errorf("write to %s: %w", userID, err)
	}
	return nil
}

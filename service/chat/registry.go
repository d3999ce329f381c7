package chat

import (
	"sync"

	"PChat/logger"
)

const defaultSendQueueSize = 256

// Registry tracks the currently connected clients. A client present in the
// map always has an open send queue: the queue is only closed after the
// client has been deleted from the map, and enqueues happen under the read
// lock, so no write can target a removed client.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Add inserts a client into the live set. A stale client under the same
// conn ID is replaced and torn down. After Close the registry is terminal:
// a late Add is refused and the client torn down immediately.
func (r *Registry) Add(c *Client) {
	if c == nil || c.ConnID == "" {
		return
	}
	r.mu.Lock()
	if r.clients == nil {
		r.mu.Unlock()
		c.close()
		return
	}
	old := r.clients[c.ConnID]
	r.clients[c.ConnID] = c
	r.mu.Unlock()

	if old != nil && old != c {
		old.close()
	}
}

// Remove deletes a client and tears it down. Idempotent: removing an absent
// ID is a no-op.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	c, ok := r.clients[connID]
	if ok {
		delete(r.clients, connID)
	}
	r.mu.Unlock()

	if ok {
		c.close()
		logger.Infof("[Registry] client removed conn=%s remaining=%d", connID, r.Len())
	}
}

// ForEach invokes fn once per registered client. It iterates a snapshot, so
// fn may call Remove (e.g. after a failed delivery) without deadlocking.
func (r *Registry) ForEach(fn func(*Client)) {
	r.mu.RLock()
	snapshot := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		snapshot = append(snapshot, c)
	}
	r.mu.RUnlock()

	for _, c := range snapshot {
		fn(c)
	}
}

// Send enqueues a payload for one client, best effort. A full queue means
// the client is too slow to keep up; it is removed rather than allowed to
// stall the broadcast.
func (r *Registry) Send(connID string, payload []byte) {
	r.mu.RLock()
	c, ok := r.clients[connID]
	full := false
	if ok {
		select {
		case c.Send <- payload:
		default:
			full = true
		}
	}
	r.mu.RUnlock()

	if full {
		logger.Warnf("[Registry] send queue full, dropping conn=%s", connID)
		r.Remove(connID)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close tears down every client and marks the registry terminal, for
// process shutdown. Lookups on the nil map are harmless no-ops, so Send,
// Remove and ForEach need no extra guard.
func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = nil
	r.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

package chat

import (
	"sync"
)

// Registry tracks live connections on this gateway node. Two indexes:
// by connection id and by user id, since one user may hold several
// connections (multiple devices) at once.
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]*Client
	byUser map[string]map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
	}
}

// Register adds an authenticated client. Registering the same conn id
// twice is a no-op.
func (r *Registry) Register(c *Client) {
	if c == nil || c.ConnID == "" || c.UserID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byConn[c.ConnID]; exists {
		return
	}
	r.byConn[c.ConnID] = c
	mm := r.byUser[c.UserID]
	if mm == nil {
		mm = make(map[string]*Client)
		r.byUser[c.UserID] = mm
	}
	mm[c.ConnID] = c
}

// Deregister removes the connection and returns the removed client, or
// nil if it was already gone. Safe to call more than once.
func (r *Registry) Deregister(connID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byConn[connID]
	if !ok {
		return nil
	}
	delete(r.byConn, connID)
	if mm := r.byUser[c.UserID]; mm != nil {
		delete(mm, connID)
		if len(mm) == 0 {
			delete(r.byUser, c.UserID)
		}
	}
	return c
}

func (r *Registry) Get(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byConn[connID]
	return c, ok
}

// ConnectionsFor returns a snapshot of the user's live connections.
func (r *Registry) ConnectionsFor(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mm := r.byUser[userID]
	if len(mm) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(mm))
	for _, c := range mm {
		out = append(out, c)
	}
	return out
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

func (r *Registry) CountFor(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

// CloseAll tears down every connection. Shutdown path.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.byConn))
	for _, c := range r.byConn {
		clients = append(clients, c)
	}
	r.byConn = make(map[string]*Client)
	r.byUser = make(map[string]map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}

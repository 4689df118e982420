package dispatch

import (
	"container/list"
	"sync"
)

// DefaultMaxSessions bounds the number of page sessions a Registry keeps.
const DefaultMaxSessions = 10000

// Registry maps page-session identifiers to PageSessions, evicting the least
// recently used session once max is reached.
type Registry struct {
	mu       sync.Mutex
	max      int
	order    *list.List // front = most recently used
	sessions map[string]*list.Element
}

type registryEntry struct {
	id      string
	session *PageSession
}

// NewRegistry creates a registry holding at most max sessions. A non-positive
// max uses DefaultMaxSessions.
func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Registry{
		max:      max,
		order:    list.New(),
		sessions: make(map[string]*list.Element),
	}
}

// Get returns the session for id, creating it if needed.
func (r *Registry) Get(id string) *PageSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.sessions[id]; ok {
		r.order.MoveToFront(el)
		return el.Value.(*registryEntry).session
	}

	if r.order.Len() >= r.max {
		oldest := r.order.Back()
		r.order.Remove(oldest)
		delete(r.sessions, oldest.Value.(*registryEntry).id)
	}
	entry := &registryEntry{id: id, session: NewPageSession()}
	r.sessions[id] = r.order.PushFront(entry)
	return entry.session
}

// Lookup returns the session for id without creating one.
func (r *Registry) Lookup(id string) (*PageSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	r.order.MoveToFront(el)
	return el.Value.(*registryEntry).session, true
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

// Package registry tracks the listeners connected to a session.
package registry

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/osa030/podbox/internal/domain/listener"
)

var ErrInvalidListener = errors.New("invalid listener")

// ListenerRegistry manages listener sessions with thread-safe access.
type ListenerRegistry struct {
	mu        sync.RWMutex
	listeners map[string]*listener.Session
}

// NewListenerRegistry creates a new listener registry.
func NewListenerRegistry() *ListenerRegistry {
	return &ListenerRegistry{
		listeners: make(map[string]*listener.Session),
	}
}

// Join adds a new listener and returns their session ID.
// Every stream is its own listener, even when client IDs repeat.
func (r *ListenerRegistry) Join(displayName, clientID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.listeners[id] = listener.NewSession(id, displayName, clientID)
	return id
}

// Attach binds a listener to its notification subscription.
func (r *ListenerRegistry) Attach(listenerID, subscriptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.listeners[listenerID]
	if !ok {
		return ErrInvalidListener
	}
	session.Attach(subscriptionID)
	return nil
}

// MarkDelivered records a notification delivered to a listener.
func (r *ListenerRegistry) MarkDelivered(listenerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.listeners[listenerID]; ok {
		session.MarkDelivered()
	}
}

// Leave removes a listener. Returns the removed session, or nil if unknown.
func (r *ListenerRegistry) Leave(listenerID string) *listener.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.listeners[listenerID]
	if !ok {
		return nil
	}
	delete(r.listeners, listenerID)
	return session
}

// Get retrieves a copy of a listener session by ID.
func (r *ListenerRegistry) Get(listenerID string) (*listener.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.listeners[listenerID]
	if !ok {
		return nil, ErrInvalidListener
	}
	s := *session
	return &s, nil
}

// All returns copies of all listener sessions ordered by join time.
func (r *ListenerRegistry) All() []*listener.Session {
	r.mu.RLock()
	result := make([]*listener.Session, 0, len(r.listeners))
	for _, session := range r.listeners {
		s := *session
		result = append(result, &s)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].JoinedAt.Equal(result[j].JoinedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result
}

// Count returns the number of listeners.
func (r *ListenerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Package listener provides the listener Session domain entity.
package listener

import "time"

// Session represents a remote consumer subscribed to player state changes.
type Session struct {
	ID             string     // UUID
	DisplayName    string     // Display name
	ClientID       string     // Client-supplied identifier (optional)
	SubscriptionID string     // Notification subscription backing this session
	JoinedAt       time.Time  // Join time
	Delivered      int        // Notifications delivered to this listener
	LastNotifiedAt *time.Time // Last delivery time
}

// NewSession creates a new listener session.
func NewSession(id, displayName, clientID string) *Session {
	return &Session{
		ID:          id,
		DisplayName: displayName,
		ClientID:    clientID,
		JoinedAt:    time.Now(),
	}
}

// Attach binds the session to a notification subscription.
func (s *Session) Attach(subscriptionID string) {
	s.SubscriptionID = subscriptionID
}

// MarkDelivered records a delivered notification.
func (s *Session) MarkDelivered() {
	s.Delivered++
	now := time.Now()
	s.LastNotifiedAt = &now
}

// Label returns the display name, falling back to the client ID and then the session ID.
func (s *Session) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.ClientID != "" {
		return s.ClientID
	}
	return s.ID
}

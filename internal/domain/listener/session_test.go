package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		displayName string
		clientID    string
	}{
		{
			name:        "named web client",
			id:          "listener-1",
			displayName: "Living room",
			clientID:    "web-123",
		},
		{
			name:        "anonymous",
			id:          "listener-2",
			displayName: "",
			clientID:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(tt.id, tt.displayName, tt.clientID)

			assert.Equal(t, tt.id, session.ID)
			assert.Equal(t, tt.displayName, session.DisplayName)
			assert.Equal(t, tt.clientID, session.ClientID)
			assert.Empty(t, session.SubscriptionID)
			assert.Equal(t, 0, session.Delivered)
			assert.Nil(t, session.LastNotifiedAt)
			assert.False(t, session.JoinedAt.IsZero())
		})
	}
}

func TestSession_MarkDelivered(t *testing.T) {
	session := NewSession("listener-1", "Test", "")

	session.MarkDelivered()
	session.MarkDelivered()

	assert.Equal(t, 2, session.Delivered)
	assert.NotNil(t, session.LastNotifiedAt)
}

func TestSession_Attach(t *testing.T) {
	session := NewSession("listener-1", "Test", "")
	session.Attach("sub-1")
	assert.Equal(t, "sub-1", session.SubscriptionID)
}

func TestSession_Label(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		clientID    string
		expected    string
	}{
		{name: "display name wins", displayName: "Kitchen", clientID: "c-1", expected: "Kitchen"},
		{name: "client id fallback", displayName: "", clientID: "c-1", expected: "c-1"},
		{name: "session id fallback", displayName: "", clientID: "", expected: "listener-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession("listener-1", tt.displayName, tt.clientID)
			assert.Equal(t, tt.expected, session.Label())
		})
	}
}

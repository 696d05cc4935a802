package registry

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerRegistry_JoinAndGet(t *testing.T) {
	r := NewListenerRegistry()

	id := r.Join("Alice", "web-1")
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.Count())

	s, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.DisplayName)
	assert.Equal(t, "web-1", s.ClientID)
	assert.False(t, s.JoinedAt.IsZero())

	_, err = r.Get("unknown")
	assert.True(t, errors.Is(err, ErrInvalidListener))
}

func TestListenerRegistry_SameClientJoinsTwice(t *testing.T) {
	r := NewListenerRegistry()

	a := r.Join("Alice", "web-1")
	b := r.Join("Alice", "web-1")

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Count())
}

func TestListenerRegistry_AttachAndDeliver(t *testing.T) {
	r := NewListenerRegistry()
	id := r.Join("Bob", "")

	require.NoError(t, r.Attach(id, "sub-1"))
	assert.True(t, errors.Is(r.Attach("unknown", "sub-2"), ErrInvalidListener))

	r.MarkDelivered(id)
	r.MarkDelivered(id)
	r.MarkDelivered("unknown")

	s, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", s.SubscriptionID)
	assert.Equal(t, 2, s.Delivered)
	assert.NotNil(t, s.LastNotifiedAt)
}

func TestListenerRegistry_GetReturnsCopy(t *testing.T) {
	r := NewListenerRegistry()
	id := r.Join("Carol", "")

	s, err := r.Get(id)
	require.NoError(t, err)
	s.DisplayName = "changed"

	again, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Carol", again.DisplayName)
}

func TestListenerRegistry_Leave(t *testing.T) {
	r := NewListenerRegistry()
	id := r.Join("Dave", "")

	left := r.Leave(id)
	require.NotNil(t, left)
	assert.Equal(t, "Dave", left.DisplayName)
	assert.Nil(t, r.Leave(id))
	assert.Equal(t, 0, r.Count())
}

func TestListenerRegistry_AllOrderedByJoinTime(t *testing.T) {
	r := NewListenerRegistry()
	first := r.Join("first", "")
	time.Sleep(2 * time.Millisecond)
	second := r.Join("second", "")

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].ID)
	assert.Equal(t, second, all[1].ID)
}

package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
)

type recordingStream struct {
	mu       sync.Mutex
	received []*playerv1.Notification
	err      error
	delay    time.Duration
}

func (s *recordingStream) Send(n *playerv1.Notification) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.received = append(s.received, n)
	return nil
}

func (s *recordingStream) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func TestManager_SubscribeAndBroadcast(t *testing.T) {
	m := NewManager(0)
	a := &recordingStream{}
	b := &recordingStream{}

	idA := m.Subscribe(a)
	idB := m.Subscribe(b)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, m.SubscriberCount())

	delivered := m.Broadcast(&playerv1.Notification{Type: playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_STATE})

	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, uint64(1), a.received[0].SequenceNo)
}

func TestManager_SequenceNumbersAreShared(t *testing.T) {
	m := NewManager(0)
	s := &recordingStream{}
	m.Subscribe(s)

	initial := m.NextSequenceNo()
	n := &playerv1.Notification{}
	m.Broadcast(n)

	assert.Equal(t, uint64(1), initial)
	assert.Equal(t, uint64(2), n.SequenceNo)
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager(0)
	s := &recordingStream{}
	id := m.Subscribe(s)

	m.Unsubscribe(id)
	m.Broadcast(&playerv1.Notification{})

	assert.Equal(t, 0, m.SubscriberCount())
	assert.Equal(t, 0, s.count())
}

func TestManager_Broadcast_DropsFailingSubscriber(t *testing.T) {
	m := NewManager(0)
	good := &recordingStream{}
	bad := &recordingStream{err: errors.New("stream closed")}
	m.Subscribe(good)
	m.Subscribe(bad)

	delivered := m.Broadcast(&playerv1.Notification{})

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, m.SubscriberCount())
}

func TestManager_Broadcast_SlowSubscriberTimesOut(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	slow := &recordingStream{delay: 200 * time.Millisecond}
	fast := &recordingStream{}
	m.Subscribe(slow)
	m.Subscribe(fast)

	start := time.Now()
	delivered := m.Broadcast(&playerv1.Notification{})

	assert.Less(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 2, m.SubscriberCount(), "timeouts do not drop the subscriber")
}

func TestManager_Send(t *testing.T) {
	m := NewManager(0)
	s := &recordingStream{}
	id := m.Subscribe(s)

	require.NoError(t, m.Send(id, &playerv1.Notification{}))
	require.NoError(t, m.Send("unknown", &playerv1.Notification{}))
	assert.Equal(t, 1, s.count())
}

func TestManager_Close(t *testing.T) {
	m := NewManager(0)
	m.Subscribe(&recordingStream{})
	m.Subscribe(&recordingStream{})

	m.Close()

	assert.Equal(t, 0, m.SubscriberCount())
}

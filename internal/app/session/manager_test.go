package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
	"github.com/osa030/podbox/internal/app/catalog"
	"github.com/osa030/podbox/internal/app/session/state"
	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/playlist"
	"github.com/osa030/podbox/internal/infra/config"
)

type recordingStream struct {
	mu       sync.Mutex
	received []*playerv1.Notification
	err      error
}

func (s *recordingStream) Send(n *playerv1.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.received = append(s.received, n)
	return nil
}

func (s *recordingStream) all() []*playerv1.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*playerv1.Notification, len(s.received))
	copy(out, s.received)
	return out
}

func (s *recordingStream) last() *playerv1.Notification {
	all := s.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		Session:      config.SessionConfig{Title: "test session"},
		Playback:     config.PlaybackConfig{TickIntervalMs: 5},
		Notification: config.NotificationConfig{SendTimeoutMs: 200},
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]playlist.Playlist{
		{
			ID:   "morning",
			Name: "Morning",
			Episodes: []episode.Episode{
				{Title: "one", URL: "https://example.com/1.mp3", Duration: time.Hour},
				{Title: "two", URL: "https://example.com/2.mp3", Duration: time.Hour},
			},
		},
		{ID: "empty", Name: "Empty"},
	})
	require.NoError(t, err)
	return c
}

func newStartedManager(t *testing.T, cfg *config.Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg, testCatalog(t))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	require.NoError(t, m.Start(context.Background()))
	return m
}

func TestManager_Start(t *testing.T) {
	m, err := NewManager(testConfig(), nil)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Player()
	assert.True(t, errors.Is(err, ErrSessionNotRunning), "store is not reachable before start")

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, state.PhaseActive, m.GetStatus().Phase)
	assert.True(t, errors.Is(m.Start(context.Background()), ErrSessionAlreadyStarted))

	info := m.GetStatus().SessionInfo
	assert.Equal(t, "test session", info.Title)
	assert.NotEmpty(t, info.SessionId)
	assert.NotEmpty(t, info.StartedAt)
}

func TestManager_JoinReceivesInitialStateThenChanges(t *testing.T) {
	m := newStartedManager(t, testConfig())
	stream := &recordingStream{}

	id, err := m.Join("Alice", "web-1", stream)
	require.NoError(t, err)

	initial := stream.last()
	require.NotNil(t, initial)
	assert.Equal(t, playerv1.NotificationType_NOTIFICATION_TYPE_INITIAL_STATE, initial.Type)
	require.NotNil(t, initial.State)
	assert.Empty(t, initial.State.EpisodeList)
	require.NotNil(t, initial.SessionInfo)
	assert.Equal(t, playerv1.SessionPhase_SESSION_PHASE_ACTIVE, initial.SessionInfo.Phase)

	store, err := m.Player()
	require.NoError(t, err)

	store.Play(episode.Episode{Title: "live", URL: "https://example.com/live.mp3", Duration: time.Hour})
	played := stream.last()
	assert.Equal(t, playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_EPISODE, played.Type)
	assert.Equal(t, "play", played.Cause)
	require.NotNil(t, played.State.CurrentEpisode)
	assert.Equal(t, "live", played.State.CurrentEpisode.Title)
	assert.Equal(t, playerv1.SurfaceState_SURFACE_STATE_PLAYING, played.Playback.State)

	store.TogglePlay()
	toggled := stream.last()
	assert.Equal(t, playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_STATE, toggled.Type)
	assert.Equal(t, "toggle_play", toggled.Cause)
	assert.False(t, toggled.State.IsPlaying)
	assert.Equal(t, playerv1.SurfaceState_SURFACE_STATE_PAUSED, toggled.Playback.State)

	all := stream.all()
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].SequenceNo, all[i-1].SequenceNo)
	}

	listeners := m.ListListeners()
	require.Len(t, listeners, 1)
	assert.Equal(t, id, listeners[0].ID)
	assert.Equal(t, 3, listeners[0].Delivered)
}

func TestManager_NoBroadcastForNoOp(t *testing.T) {
	m := newStartedManager(t, testConfig())
	stream := &recordingStream{}
	_, err := m.Join("Bob", "", stream)
	require.NoError(t, err)

	store, err := m.Player()
	require.NoError(t, err)
	store.PlayNext()
	store.PlayPrevious()
	store.ClearPlayerState()
	store.SetPlayingState(false)

	assert.Len(t, stream.all(), 1, "only the initial state")
}

func TestManager_PlayCatalogPlaylist(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		index   int
		wantErr error
	}{
		{name: "first episode", id: "morning", index: 0},
		{name: "second episode", id: "morning", index: 1},
		{name: "unknown playlist", id: "nope", index: 0, wantErr: catalog.ErrPlaylistNotFound},
		{name: "index past end", id: "morning", index: 2, wantErr: ErrInvalidIndex},
		{name: "negative index", id: "morning", index: -1, wantErr: ErrInvalidIndex},
		{name: "empty playlist", id: "empty", index: 0, wantErr: ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStartedManager(t, testConfig())

			err := m.PlayCatalogPlaylist(tt.id, tt.index)

			status := m.GetStatus()
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, status.Snapshot.EpisodeList, "store untouched")
				return
			}
			require.NoError(t, err)
			assert.Len(t, status.Snapshot.EpisodeList, 2)
			assert.Equal(t, tt.index, status.Snapshot.CurrentEpisodeIndex)
			assert.True(t, status.Snapshot.IsPlaying)
		})
	}
}

func TestManager_PlayEpisodes(t *testing.T) {
	m := newStartedManager(t, testConfig())
	list := []episode.Episode{
		{Title: "a", URL: "https://example.com/a.mp3"},
		{Title: "b", URL: "https://example.com/b.mp3"},
	}

	assert.True(t, errors.Is(m.PlayEpisodes(list, 2), ErrInvalidIndex))
	assert.True(t, errors.Is(m.PlayEpisodes(nil, 0), ErrInvalidIndex))

	require.NoError(t, m.PlayEpisodes(list, 1))
	resp := m.StateResponse()
	assert.Equal(t, int32(1), resp.State.CurrentEpisodeIndex)
	assert.Equal(t, "b", resp.State.CurrentEpisode.Title)
	assert.True(t, resp.State.HasPrevious)
	assert.False(t, resp.State.HasNext)
}

func TestManager_Autoplay(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Autoplay = config.AutoplayConfig{PlaylistID: "morning", Index: 1}
	m := newStartedManager(t, cfg)

	snap := m.GetStatus().Snapshot
	assert.Len(t, snap.EpisodeList, 2)
	assert.Equal(t, 1, snap.CurrentEpisodeIndex)
	assert.True(t, snap.IsPlaying)
}

func TestManager_Autoplay_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		autoplay config.AutoplayConfig
		wantErr  error
	}{
		{name: "unknown playlist", autoplay: config.AutoplayConfig{PlaylistID: "nope"}, wantErr: catalog.ErrPlaylistNotFound},
		{name: "index out of range", autoplay: config.AutoplayConfig{PlaylistID: "morning", Index: 5}, wantErr: ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Session.Autoplay = tt.autoplay
			m, err := NewManager(cfg, testCatalog(t))
			require.NoError(t, err)
			defer m.Close()

			err = m.Start(context.Background())
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, state.PhaseIdle, m.GetStatus().Phase)
		})
	}
}

func TestManager_Stop(t *testing.T) {
	m := newStartedManager(t, testConfig())
	stream := &recordingStream{}
	_, err := m.Join("Carol", "", stream)
	require.NoError(t, err)

	require.NoError(t, m.Stop(context.Background()))
	require.NoError(t, m.Stop(context.Background()))

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel should be closed")
	}

	ended := stream.last()
	assert.Equal(t, playerv1.NotificationType_NOTIFICATION_TYPE_SESSION_ENDED, ended.Type)
	assert.Equal(t, playerv1.SessionPhase_SESSION_PHASE_TERMINATED, ended.SessionInfo.Phase)

	_, err = m.Player()
	assert.True(t, errors.Is(err, ErrSessionNotRunning))
	_, err = m.Join("late", "", &recordingStream{})
	assert.True(t, errors.Is(err, ErrSessionNotRunning))
}

func TestManager_StopBeforeStart(t *testing.T) {
	m, err := NewManager(testConfig(), nil)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Stop(context.Background()))
	<-m.Done()
	assert.Equal(t, state.PhaseTerminated, m.GetStatus().Phase)
}

func TestManager_EndTimeStopsSession(t *testing.T) {
	cfg := testConfig()
	cfg.Session.EndTime = time.Now().Add(50 * time.Millisecond).Format(time.RFC3339Nano)

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	defer m.Close()
	m.endCheckInterval = 10 * time.Millisecond
	require.NoError(t, m.Start(context.Background()))

	select {
	case <-m.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("session did not end at end time")
	}
	assert.Equal(t, state.PhaseTerminated, m.GetStatus().Phase)
}

func TestManager_JoinFailingStream(t *testing.T) {
	m := newStartedManager(t, testConfig())

	_, err := m.Join("Dave", "", &recordingStream{err: errors.New("broken pipe")})
	assert.Error(t, err)
	assert.Empty(t, m.ListListeners())
	assert.Equal(t, 0, m.GetStatus().SubscriberCount)
}

func TestManager_Leave(t *testing.T) {
	m := newStartedManager(t, testConfig())
	stream := &recordingStream{}
	id, err := m.Join("Erin", "", stream)
	require.NoError(t, err)

	m.Leave(id)
	m.Leave(id)

	store, err := m.Player()
	require.NoError(t, err)
	store.ToggleLoop()

	assert.Len(t, stream.all(), 1)
	status := m.GetStatus()
	assert.Equal(t, 0, status.ListenerCount)
	assert.Equal(t, 0, status.SubscriberCount)
}

func TestManager_EpisodeEndAdvances(t *testing.T) {
	m := newStartedManager(t, testConfig())
	stream := &recordingStream{}
	_, err := m.Join("Frank", "", stream)
	require.NoError(t, err)

	require.NoError(t, m.PlayEpisodes([]episode.Episode{
		{Title: "short", URL: "https://example.com/s.mp3", Duration: 20 * time.Millisecond},
		{Title: "long", URL: "https://example.com/l.mp3", Duration: time.Hour},
	}, 0))

	require.Eventually(t, func() bool {
		n := stream.last()
		return n.Cause == "play_next" && n.State.CurrentEpisodeIndex == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestListenerStream_DeliversInSequenceOrder(t *testing.T) {
	tests := []struct {
		name     string
		initial  uint64
		sequence []uint64
		expected []uint64
	}{
		{name: "in order", initial: 1, sequence: []uint64{2, 3, 4}, expected: []uint64{2, 3, 4}},
		{name: "older than initial state", initial: 5, sequence: []uint64{3, 5, 6}, expected: []uint64{6}},
		{name: "late broadcast after newer", initial: 1, sequence: []uint64{2, 4, 3, 5}, expected: []uint64{2, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingStream{}
			sent := 0
			ls := &listenerStream{stream: rec, lastSeq: tt.initial, onSent: func() { sent++ }}

			for _, seq := range tt.sequence {
				require.NoError(t, ls.Send(&playerv1.Notification{SequenceNo: seq}))
			}

			got := make([]uint64, 0, len(tt.expected))
			for _, n := range rec.all() {
				got = append(got, n.SequenceNo)
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, len(tt.expected), sent)
		})
	}
}

func TestListenerStream_FailedSendKeepsPosition(t *testing.T) {
	rec := &recordingStream{err: errors.New("gone")}
	ls := &listenerStream{stream: rec, lastSeq: 1, onSent: func() {}}

	assert.Error(t, ls.Send(&playerv1.Notification{SequenceNo: 2}))
	assert.Equal(t, uint64(1), ls.lastSeq)
}

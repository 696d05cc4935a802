// Package session provides the session manager.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
	"github.com/osa030/podbox/internal/app/catalog"
	"github.com/osa030/podbox/internal/app/notification"
	"github.com/osa030/podbox/internal/app/playback"
	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/app/session/registry"
	"github.com/osa030/podbox/internal/app/session/state"
	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/listener"
	"github.com/osa030/podbox/internal/domain/playlist"
	"github.com/osa030/podbox/internal/infra/config"
)

var (
	ErrSessionNotRunning     = errors.New("session is not running")
	ErrSessionAlreadyStarted = errors.New("session already started")
	ErrInvalidIndex          = errors.New("episode index out of range")
)

const defaultEndCheckInterval = 1 * time.Second

// Manager manages the player session.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config

	// Components
	stateMgr     *state.Manager
	listenerReg  *registry.ListenerRegistry
	store        *player.Store
	surface      *playback.Surface
	notification *notification.Manager
	catalog      *catalog.Catalog

	unsubscribe      func()
	endCheckInterval time.Duration

	// Channels
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager creates a new session manager.
// A nil catalog is treated as empty.
func NewManager(cfg *config.Config, cat *catalog.Catalog, opts ...player.Option) (*Manager, error) {
	if cat == nil {
		var err error
		if cat, err = catalog.New(nil); err != nil {
			return nil, errors.Wrap(err, "failed to create empty catalog")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	store := player.NewStore(opts...)

	m := &Manager{
		config:      cfg,
		stateMgr:    state.New(uuid.New().String(), cfg.Session.Title),
		listenerReg: registry.NewListenerRegistry(),
		store:       store,
		surface: playback.NewSurface(store, playback.Config{
			ClearOnEnd:   cfg.ClearOnEnd(),
			TickInterval: cfg.TickInterval(),
		}),
		notification:     notification.NewManager(cfg.SendTimeout()),
		catalog:          cat,
		endCheckInterval: defaultEndCheckInterval,

		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	return m, nil
}

// Start starts the session.
func (m *Manager) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Resolve autoplay before anything is running
	var autoplay *playlist.Playlist
	if id := m.config.Session.Autoplay.PlaylistID; id != "" {
		p, err := m.catalog.Playlist(id)
		if err != nil {
			return errors.Wrap(err, "failed to resolve autoplay playlist")
		}
		if err := checkIndex(m.config.Session.Autoplay.Index, p.Len()); err != nil {
			return errors.Wrapf(err, "invalid autoplay index for playlist %s", id)
		}
		autoplay = &p
	}

	endTime, err := m.config.ParseEndTime()
	if err != nil {
		return err
	}

	m.mu.Lock()
	if !m.stateMgr.Activate(time.Now()) {
		m.mu.Unlock()
		return ErrSessionAlreadyStarted
	}
	m.stateMgr.SetEndTime(endTime)
	sessionID := m.stateMgr.GetSessionID()
	zlog.Info().Msgf("phase changed: phase=ACTIVE session_id=%s title=%s", sessionID, m.stateMgr.GetTitle())

	// The surface subscribes first so broadcasts see its updated state
	m.surface.Start()
	m.unsubscribe = m.store.Subscribe(m.onStoreChange)
	m.mu.Unlock()

	// Broadcast session started
	zlog.Info().Msgf("broadcast SESSION_STARTED: session_id=%s", sessionID)
	m.notification.Broadcast(m.buildNotification(playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_STATE, "session_started"))

	// Start playback event loop
	go m.playbackLoop()

	// Start end time checker if needed
	if endTime != nil {
		go m.endTimeChecker()
	}

	if autoplay != nil {
		zlog.Info().Msgf("autoplay: playlist_id=%s index=%d episodes=%d", autoplay.ID, m.config.Session.Autoplay.Index, autoplay.Len())
		m.store.Playlist(autoplay.Episodes, m.config.Session.Autoplay.Index)
	}

	return nil
}

// Stop ends the session. Subscribers receive SESSION_ENDED and Done is closed.
func (m *Manager) Stop(ctx context.Context) error {
	return m.terminate(ctx, "stopped")
}

// terminate performs final termination.
func (m *Manager) terminate(ctx context.Context, reason string) error {
	m.mu.Lock()
	wasActive := m.stateMgr.IsActive()
	if !m.stateMgr.Terminate() {
		m.mu.Unlock()
		return nil
	}
	sessionID := m.stateMgr.GetSessionID()
	zlog.Info().Msgf("phase changed: phase=TERMINATED session_id=%s reason=%s", sessionID, reason)

	// No more state broadcasts after this point
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.surface.Close()
	m.mu.Unlock()

	if wasActive {
		// Broadcast SESSION_ENDED
		zlog.Info().Msgf("broadcast SESSION_ENDED: session_id=%s", sessionID)
		sent := make(chan struct{})
		go func() {
			defer close(sent)
			m.notification.Broadcast(m.buildNotification(playerv1.NotificationType_NOTIFICATION_TYPE_SESSION_ENDED, reason))
		}()

		select {
		case <-sent:
		case <-ctx.Done():
			zlog.Warn().Msg("session ended notification interrupted")
		case <-time.After(m.config.SendTimeout() + time.Second):
			zlog.Warn().Msg("session ended notification timed out")
		}
	}

	m.cancel()
	close(m.done)
	return nil
}

// Done returns a channel that is closed when the session is stopped.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Player returns the store while the session is active.
func (m *Manager) Player() (*player.Store, error) {
	if !m.stateMgr.IsActive() {
		return nil, ErrSessionNotRunning
	}
	return m.store, nil
}

// PlayEpisodes replaces the playlist and starts at index.
func (m *Manager) PlayEpisodes(episodes []episode.Episode, index int) error {
	store, err := m.Player()
	if err != nil {
		return err
	}
	if err := checkIndex(index, len(episodes)); err != nil {
		return err
	}
	store.Playlist(episodes, index)
	return nil
}

// PlayCatalogPlaylist plays a catalog playlist starting at index.
func (m *Manager) PlayCatalogPlaylist(id string, index int) error {
	store, err := m.Player()
	if err != nil {
		return err
	}
	p, err := m.catalog.Playlist(id)
	if err != nil {
		return err
	}
	if err := checkIndex(index, p.Len()); err != nil {
		return err
	}
	zlog.Info().Msgf("playing catalog playlist: playlist_id=%s index=%d episodes=%d", id, index, p.Len())
	store.Playlist(p.Episodes, index)
	return nil
}

// Playlists returns the catalog playlists.
func (m *Manager) Playlists() []playlist.Playlist {
	return m.catalog.Playlists()
}

// Join registers a listener and subscribes its stream. The listener receives
// INITIAL_STATE before any broadcast.
func (m *Manager) Join(displayName, clientID string, stream notification.Stream) (string, error) {
	if m.stateMgr.GetPhase() == state.PhaseTerminated {
		return "", ErrSessionNotRunning
	}

	id := m.listenerReg.Join(displayName, clientID)
	ls := &listenerStream{
		stream: stream,
		onSent: func() { m.listenerReg.MarkDelivered(id) },
	}

	// Hold the stream until the initial state is out
	ls.mu.Lock()
	defer ls.mu.Unlock()

	subID := m.notification.Subscribe(ls)
	if err := m.listenerReg.Attach(id, subID); err != nil {
		m.notification.Unsubscribe(subID)
		return "", err
	}

	// Take the sequence number before reading the state so that every
	// change missing from the initial state arrives as a broadcast
	seq := m.notification.NextSequenceNo()
	initial := m.buildNotification(playerv1.NotificationType_NOTIFICATION_TYPE_INITIAL_STATE, "")
	initial.SequenceNo = seq
	ls.lastSeq = seq

	if err := stream.Send(initial); err != nil {
		m.Leave(id)
		return "", errors.Wrap(err, "failed to send initial state")
	}
	ls.onSent()

	zlog.Info().Msgf("listener joined: listener_id=%s display_name=%s client_id=%s", id, displayName, clientID)
	return id, nil
}

// Leave removes a listener and its subscription.
func (m *Manager) Leave(listenerID string) {
	s := m.listenerReg.Leave(listenerID)
	if s == nil {
		return
	}
	m.notification.Unsubscribe(s.SubscriptionID)
	zlog.Info().Msgf("listener left: listener_id=%s display_name=%s delivered=%d", s.ID, s.Label(), s.Delivered)
}

// ListListeners returns all listeners.
func (m *Manager) ListListeners() []*listener.Session {
	return m.listenerReg.All()
}

// Status represents the current session status with all information.
type Status struct {
	Phase           state.Phase
	Snapshot        player.Snapshot
	SurfaceState    playback.State
	Position        time.Duration
	Remaining       time.Duration
	ListenerCount   int
	SubscriberCount int
	SessionInfo     *playerv1.SessionInfo
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Status{
		Phase:           m.stateMgr.GetPhase(),
		Snapshot:        m.store.Snapshot(),
		SurfaceState:    m.surface.State(),
		Position:        m.surface.Position(),
		Remaining:       m.surface.Remaining(),
		ListenerCount:   m.listenerReg.Count(),
		SubscriberCount: m.notification.SubscriberCount(),
		SessionInfo:     m.stateMgr.BuildSessionInfo(),
	}
}

// StateResponse builds the response returned by state-changing calls.
func (m *Manager) StateResponse() *playerv1.StateResponse {
	return &playerv1.StateResponse{
		State:    PlayerStateMessage(m.store.Snapshot()),
		Playback: m.playbackInfo(),
	}
}

// onStoreChange broadcasts a committed store change. It runs inside the
// store's dispatch and must not mutate the store.
func (m *Manager) onStoreChange(change player.Change) {
	t := playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_STATE
	if change.EpisodeChanged() {
		t = playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_EPISODE
	}

	n := &playerv1.Notification{
		Type:        t,
		Cause:       change.Op.String(),
		State:       PlayerStateMessage(change.Current),
		Playback:    m.playbackInfo(),
		SessionInfo: m.stateMgr.BuildSessionInfo(),
	}
	delivered := m.notification.Broadcast(n)
	zlog.Debug().Msgf("broadcast %s: cause=%s seq=%d episodes=%d index=%d delivered=%d",
		t, n.Cause, n.SequenceNo, change.Current.Len(), change.Current.CurrentEpisodeIndex, delivered)
}

// playbackLoop logs surface events.
func (m *Manager) playbackLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-m.surface.Events():
			if !ok {
				return
			}
			m.handlePlaybackEvent(event)
		}
	}
}

// handlePlaybackEvent handles playback events.
func (m *Manager) handlePlaybackEvent(event playback.Event) {
	if event.Episode == nil {
		zlog.Info().Msgf("playback event: type=%s state=%s", event.Type, event.State)
		return
	}
	zlog.Info().Msgf("playback event: type=%s state=%s index=%d title=%s", event.Type, event.State, event.Index, event.Episode.Title)
}

// endTimeChecker stops the session once the scheduled end time is reached.
func (m *Manager) endTimeChecker() {
	ticker := time.NewTicker(m.endCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			_, endTime := m.stateMgr.GetTimes()
			if endTime == nil || !m.stateMgr.IsActive() {
				continue
			}

			if now := time.Now(); !now.Before(*endTime) {
				zlog.Info().Msgf("end time reached: end_time=%v", *endTime)
				if err := m.terminate(context.Background(), "end_time_reached"); err != nil {
					zlog.Error().Msgf("failed to end session: %v", err)
				}
				return
			}
		}
	}
}

// Close closes the session manager.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		if m.unsubscribe != nil {
			m.unsubscribe()
			m.unsubscribe = nil
		}
		m.mu.Unlock()

		m.cancel()
		m.surface.Close()
		m.notification.Close()
	})
}

func (m *Manager) playbackInfo() *playerv1.PlaybackInfo {
	return PlaybackInfoMessage(m.surface.State(), m.surface.Position(), m.surface.Remaining())
}

func (m *Manager) buildNotification(t playerv1.NotificationType, cause string) *playerv1.Notification {
	return &playerv1.Notification{
		Type:        t,
		Cause:       cause,
		State:       PlayerStateMessage(m.store.Snapshot()),
		Playback:    m.playbackInfo(),
		SessionInfo: m.stateMgr.BuildSessionInfo(),
	}
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return errors.Wrapf(ErrInvalidIndex, "index=%d len=%d", index, length)
	}
	return nil
}

// listenerStream serializes sends to a subscriber stream. Sequence numbers
// delivered to one listener strictly increase: a broadcast that lost the race
// for the stream to a newer one is dropped, since every notification carries
// the full state.
type listenerStream struct {
	mu      sync.Mutex
	stream  notification.Stream
	lastSeq uint64
	onSent  func()
}

func (s *listenerStream) Send(n *playerv1.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.SequenceNo <= s.lastSeq {
		return nil
	}
	if err := s.stream.Send(n); err != nil {
		return err
	}
	s.lastSeq = n.SequenceNo
	s.onSent()
	return nil
}

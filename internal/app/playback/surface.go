package playback

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/domain/episode"
)

const (
	eventBufferSize     = 32
	defaultTickInterval = 100 * time.Millisecond
)

// Store is the part of the player store the surface consumes.
type Store interface {
	Snapshot() player.Snapshot
	Subscribe(l player.Listener) func()
	PlayNext()
	SetPlayingState(state bool)
	ClearPlayerState()
}

// Config holds surface configuration.
type Config struct {
	ClearOnEnd   bool          // Clear the playlist when the last episode ends
	TickInterval time.Duration // Wall-clock timer resolution
}

// Surface plays the store's current episode for its duration and reports
// back to the store when it ends.
type Surface struct {
	mu sync.RWMutex

	store  Store
	config Config

	// Loaded episode
	current    *episode.Episode
	index      int
	generation uint64
	looping    bool
	finished   bool

	// Playback clock
	state         State
	startTime     time.Time
	pausedAt      *time.Time
	pausedElapsed time.Duration

	// Timer
	timerCancel func()
	timerToken  uint64

	// Events
	eventCh chan Event
	closed  bool

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// NewSurface creates a surface bound to the store. Call Start to begin consuming changes.
func NewSurface(store Store, config Config) *Surface {
	if config.TickInterval <= 0 {
		config.TickInterval = defaultTickInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Surface{
		store:   store,
		config:  config,
		state:   StateIdle,
		eventCh: make(chan Event, eventBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes to the store and syncs with its current state.
func (s *Surface) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil || s.closed {
		return
	}
	s.unsubscribe = s.store.Subscribe(s.onChange)
	s.applyLocked(s.store.Snapshot())
}

// Events returns the event channel.
func (s *Surface) Events() <-chan Event {
	return s.eventCh
}

// State returns the current surface state.
func (s *Surface) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentEpisode returns the loaded episode.
func (s *Surface) CurrentEpisode() (*episode.Episode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, false
	}
	e := *s.current
	return &e, true
}

// Position returns the elapsed playback time of the loaded episode.
func (s *Surface) Position() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positionLocked()
}

// Remaining returns the time left in the loaded episode. Unbounded episodes report 0.
func (s *Surface) Remaining() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remainingLocked()
}

// Close detaches from the store and releases resources.
func (s *Surface) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.stopTimerLocked()
	close(s.eventCh)
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// onChange is the store listener. It must not call back into the store.
func (s *Surface) onChange(change player.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.applyLocked(change.Current)
}

// applyLocked reconciles the surface with a store snapshot.
// Must be called with lock held.
func (s *Surface) applyLocked(snap player.Snapshot) {
	s.looping = snap.IsLooping

	ep, ok := snap.CurrentEpisode()
	if !ok {
		wasLoaded := s.current != nil
		s.unloadLocked()
		s.index = snap.CurrentEpisodeIndex
		s.generation = snap.Generation
		if wasLoaded {
			s.sendEventLocked(Event{Type: EventStopped, Index: snap.CurrentEpisodeIndex, State: s.state})
		}
		return
	}

	if s.current == nil || snap.Generation != s.generation || snap.CurrentEpisodeIndex != s.index {
		s.loadLocked(ep, snap.CurrentEpisodeIndex, snap.Generation)
		if snap.IsPlaying {
			s.startLocked()
		}
		return
	}

	switch {
	case snap.IsPlaying && s.state == StatePaused:
		s.resumeLocked()
	case snap.IsPlaying && s.state == StateIdle:
		s.startLocked()
	case !snap.IsPlaying && s.state == StatePlaying:
		s.pauseLocked()
	}
}

func (s *Surface) loadLocked(ep episode.Episode, index int, generation uint64) {
	s.stopTimerLocked()
	s.current = &ep
	s.index = index
	s.generation = generation
	s.state = StateIdle
	s.finished = false
	s.pausedAt = nil
	s.pausedElapsed = 0
	s.startTime = time.Time{}
}

func (s *Surface) unloadLocked() {
	s.stopTimerLocked()
	s.current = nil
	s.state = StateIdle
	s.finished = false
	s.pausedAt = nil
	s.pausedElapsed = 0
	s.startTime = time.Time{}
}

// startLocked plays the loaded episode from the beginning.
func (s *Surface) startLocked() {
	s.startTime = toWallTime(time.Now())
	s.pausedAt = nil
	s.pausedElapsed = 0
	s.finished = false
	s.state = StatePlaying

	zlog.Debug().Msgf("playback: episode started: index=%d title=%s duration=%v",
		s.index, s.current.Title, s.current.Duration)

	s.startEndTimerLocked(s.current.Duration)
	s.sendEventLocked(Event{Type: EventEpisodeStarted, Episode: s.copyCurrentLocked(), Index: s.index, State: s.state})
}

func (s *Surface) pauseLocked() {
	s.stopTimerLocked()
	now := toWallTime(time.Now())
	s.pausedAt = &now
	s.state = StatePaused

	s.sendEventLocked(Event{Type: EventStateChanged, Episode: s.copyCurrentLocked(), Index: s.index, State: s.state})
}

func (s *Surface) resumeLocked() {
	if s.pausedAt != nil {
		s.pausedElapsed += toWallTime(time.Now()).Sub(*s.pausedAt)
	}
	s.pausedAt = nil
	s.state = StatePlaying

	if s.current.Duration > 0 {
		s.startEndTimerLocked(s.remainingLocked())
	}
	s.sendEventLocked(Event{Type: EventStateChanged, Episode: s.copyCurrentLocked(), Index: s.index, State: s.state})
}

// onEpisodeEnd runs on the timer goroutine.
func (s *Surface) onEpisodeEnd(token uint64) {
	s.mu.Lock()

	if s.closed || token != s.timerToken || s.current == nil || s.state != StatePlaying {
		s.mu.Unlock()
		return
	}
	s.timerCancel = nil

	if s.looping {
		zlog.Debug().Msgf("playback: looping episode: index=%d title=%s", s.index, s.current.Title)
		s.startTime = toWallTime(time.Now())
		s.pausedElapsed = 0
		s.startEndTimerLocked(s.current.Duration)
		s.sendEventLocked(Event{Type: EventEpisodeLooped, Episode: s.copyCurrentLocked(), Index: s.index, State: s.state})
		s.mu.Unlock()
		return
	}

	s.state = StateIdle
	s.finished = true
	index, generation := s.index, s.generation
	zlog.Debug().Msgf("playback: episode ended: index=%d title=%s", index, s.current.Title)
	s.sendEventLocked(Event{Type: EventEpisodeEnded, Episode: s.copyCurrentLocked(), Index: index, State: s.state})
	s.mu.Unlock()

	s.advance(index, generation)
}

// advance reports the end of an episode to the store. Must be called without the lock.
func (s *Surface) advance(index int, generation uint64) {
	snap := s.store.Snapshot()
	if snap.Generation != generation || snap.CurrentEpisodeIndex != index {
		// Someone already moved the store on.
		return
	}

	if snap.HasNext {
		s.store.PlayNext()

		after := s.store.Snapshot()
		if after.Generation == generation && after.CurrentEpisodeIndex == index && after.IsPlaying {
			// Shuffle landed on the same episode: replay it.
			s.mu.Lock()
			if !s.closed && s.current != nil && s.state == StateIdle && s.generation == generation && s.index == index {
				s.startLocked()
			}
			s.mu.Unlock()
		}
		return
	}

	s.store.SetPlayingState(false)
	if s.config.ClearOnEnd {
		s.store.ClearPlayerState()
	}
}

func (s *Surface) positionLocked() time.Duration {
	if s.current == nil {
		return 0
	}
	if s.finished {
		return s.current.Duration
	}
	if s.startTime.IsZero() {
		return 0
	}

	now := toWallTime(time.Now())
	elapsed := now.Sub(s.startTime) - s.pausedElapsed
	if s.state == StatePaused && s.pausedAt != nil {
		elapsed -= now.Sub(*s.pausedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if s.current.Duration > 0 && elapsed > s.current.Duration {
		return s.current.Duration
	}
	return elapsed
}

func (s *Surface) remainingLocked() time.Duration {
	if s.current == nil || s.current.Duration <= 0 {
		return 0
	}
	remaining := s.current.Duration - s.positionLocked()
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Surface) copyCurrentLocked() *episode.Episode {
	if s.current == nil {
		return nil
	}
	e := *s.current
	return &e
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (s *Surface) sendEventLocked(e Event) {
	if s.closed {
		return
	}
	select {
	case s.eventCh <- e:
	case <-s.ctx.Done():
	default:
		// Channel full, drop event
	}
}

func (s *Surface) stopTimerLocked() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
}

// startEndTimerLocked arms the end-of-episode timer. Unbounded episodes get no timer.
func (s *Surface) startEndTimerLocked(duration time.Duration) {
	s.stopTimerLocked()
	if duration <= 0 {
		return
	}
	s.timerToken++
	token := s.timerToken
	s.timerCancel = s.startWallClockTimer(duration, func() {
		s.onEpisodeEnd(token)
	})
}

// startWallClockTimer starts a timer that triggers callback after duration, using wall clock.
// Returns a cancel function.
func (s *Surface) startWallClockTimer(duration time.Duration, callback func()) func() {
	ctx, cancel := context.WithCancel(s.ctx)
	endTime := toWallTime(time.Now()).Add(duration)

	go func() {
		ticker := time.NewTicker(s.config.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !toWallTime(time.Now()).Before(endTime) {
					callback()
					return
				}
			}
		}
	}()

	return cancel
}

// toWallTime returns the time with monotonic clock stripped so differences use wall clock time.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}

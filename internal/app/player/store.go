package player

import (
	"math/rand/v2"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/episode"
)

// Option configures a Store.
type Option func(*Store)

// WithRandom replaces the source used for shuffle jumps.
// fn must return a value in [0, n) for n > 0.
func WithRandom(fn func(n int) int) Option {
	return func(s *Store) {
		s.randIntN = fn
	}
}

type registeredListener struct {
	id uint64
	fn Listener
}

// Store holds the playlist, the current index and the playback flags.
// Mutations are serialized and applied in arrival order; listeners are
// notified synchronously once a mutation has committed.
type Store struct {
	mu sync.RWMutex

	// dispatchMu serializes mutate+notify so listeners observe changes in order.
	dispatchMu sync.Mutex

	// State
	episodeList         []episode.Episode
	currentEpisodeIndex int
	isPlaying           bool
	isLooping           bool
	isShuffling         bool
	generation          uint64

	// Subscribers
	listeners      []registeredListener
	nextListenerID uint64

	randIntN func(n int) int
}

// NewStore creates a store with an empty playlist, index 0 and all flags false.
func NewStore(opts ...Option) *Store {
	s := &Store{
		episodeList: make([]episode.Episode, 0),
		randIntN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener and returns a function that removes it.
// The returned function is safe to call more than once.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, registeredListener{id: id, fn: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, rl := range s.listeners {
			if rl.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (s *Store) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// EpisodeList returns a copy of the playlist.
func (s *Store) EpisodeList() []episode.Episode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]episode.Episode, len(s.episodeList))
	copy(result, s.episodeList)
	return result
}

// CurrentEpisodeIndex returns the current index.
func (s *Store) CurrentEpisodeIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentEpisodeIndex
}

// CurrentEpisode returns the episode at the current index, if any.
func (s *Store) CurrentEpisode() (episode.Episode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentEpisodeIndex < 0 || s.currentEpisodeIndex >= len(s.episodeList) {
		return episode.Episode{}, false
	}
	return s.episodeList[s.currentEpisodeIndex], true
}

// IsPlaying returns the playing flag.
func (s *Store) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}

// IsLooping returns the looping flag.
func (s *Store) IsLooping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLooping
}

// IsShuffling returns the shuffling flag.
func (s *Store) IsShuffling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isShuffling
}

// HasPrevious reports whether the current index is past the first episode.
func (s *Store) HasPrevious() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasPreviousLocked()
}

// HasNext reports whether PlayNext would move. Under shuffle it is always
// true, even for a list of zero or one episode.
func (s *Store) HasNext() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasNextLocked()
}

// Play replaces the playlist with the single episode and starts playing it.
func (s *Store) Play(e episode.Episode) {
	s.update(OpPlay, func() {
		s.episodeList = []episode.Episode{e}
		s.currentEpisodeIndex = 0
		s.isPlaying = true
		s.generation++
	})
}

// Playlist replaces the playlist and starts playing at index.
// The index is trusted: callers must pass 0 <= index < len(list).
func (s *Store) Playlist(list []episode.Episode, index int) {
	episodes := make([]episode.Episode, len(list))
	copy(episodes, list)

	s.update(OpPlaylist, func() {
		s.episodeList = episodes
		s.currentEpisodeIndex = index
		s.isPlaying = true
		s.generation++
	})
}

// TogglePlay flips the playing flag.
func (s *Store) TogglePlay() {
	s.update(OpTogglePlay, func() {
		s.isPlaying = !s.isPlaying
	})
}

// ToggleLoop flips the looping flag.
func (s *Store) ToggleLoop() {
	s.update(OpToggleLoop, func() {
		s.isLooping = !s.isLooping
	})
}

// ToggleShuffle flips the shuffling flag.
func (s *Store) ToggleShuffle() {
	s.update(OpToggleShuffle, func() {
		s.isShuffling = !s.isShuffling
	})
}

// SetPlayingState sets the playing flag.
func (s *Store) SetPlayingState(state bool) {
	s.update(OpSetPlayingState, func() {
		s.isPlaying = state
	})
}

// ClearPlayerState empties the playlist and resets the index.
// Flags are left untouched.
func (s *Store) ClearPlayerState() {
	s.update(OpClearPlayerState, func() {
		if len(s.episodeList) == 0 && s.currentEpisodeIndex == 0 {
			return
		}
		s.episodeList = make([]episode.Episode, 0)
		s.currentEpisodeIndex = 0
		s.generation++
	})
}

// PlayNext advances to the next episode. Under shuffle it jumps to a random
// index instead and ignores looping.
func (s *Store) PlayNext() {
	s.update(OpPlayNext, func() {
		if s.isShuffling {
			s.currentEpisodeIndex = s.randomIndexLocked()
		} else if s.hasNextLocked() {
			s.currentEpisodeIndex++
		}
	})
}

// PlayPrevious goes back one episode. Under shuffle it makes the same random
// jump as PlayNext.
func (s *Store) PlayPrevious() {
	s.update(OpPlayPrevious, func() {
		if s.isShuffling {
			s.currentEpisodeIndex = s.randomIndexLocked()
		} else if s.hasPreviousLocked() {
			s.currentEpisodeIndex--
		}
	})
}

// update applies fn under the state lock, then notifies listeners outside it.
func (s *Store) update(op Op, fn func()) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.snapshotLocked()
	fn()
	cur := s.snapshotLocked()
	listeners := make([]registeredListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if prev.sameAs(cur) {
		zlog.Debug().Msgf("player: no change: op=%s", op)
		return
	}

	zlog.Debug().Msgf("player: state changed: op=%s index=%d len=%d playing=%t looping=%t shuffling=%t",
		op, cur.CurrentEpisodeIndex, cur.Len(), cur.IsPlaying, cur.IsLooping, cur.IsShuffling)

	change := Change{Op: op, Previous: prev, Current: cur}
	for _, rl := range listeners {
		rl.fn(change)
	}
}

// randomIndexLocked picks a uniform index in [0, len). An empty list yields 0.
func (s *Store) randomIndexLocked() int {
	if len(s.episodeList) == 0 {
		return 0
	}
	return s.randIntN(len(s.episodeList))
}

func (s *Store) hasPreviousLocked() bool {
	return s.currentEpisodeIndex > 0
}

func (s *Store) hasNextLocked() bool {
	return s.isShuffling || s.currentEpisodeIndex+1 < len(s.episodeList)
}

func (s *Store) snapshotLocked() Snapshot {
	list := make([]episode.Episode, len(s.episodeList))
	copy(list, s.episodeList)

	return Snapshot{
		EpisodeList:         list,
		CurrentEpisodeIndex: s.currentEpisodeIndex,
		IsPlaying:           s.isPlaying,
		IsLooping:           s.isLooping,
		IsShuffling:         s.isShuffling,
		HasPrevious:         s.hasPreviousLocked(),
		HasNext:             s.hasNextLocked(),
		Generation:          s.generation,
	}
}

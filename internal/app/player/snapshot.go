package player

import "github.com/osa030/podbox/internal/domain/episode"

// Snapshot is a read-only copy of the player state.
type Snapshot struct {
	EpisodeList         []episode.Episode
	CurrentEpisodeIndex int
	IsPlaying           bool
	IsLooping           bool
	IsShuffling         bool

	// Derived
	HasPrevious bool
	HasNext     bool

	// Generation increments whenever the playlist is replaced or cleared.
	Generation uint64
}

// CurrentEpisode returns the episode at the current index.
// Returns false when the list is empty or the index is out of range.
func (s Snapshot) CurrentEpisode() (episode.Episode, bool) {
	if s.CurrentEpisodeIndex < 0 || s.CurrentEpisodeIndex >= len(s.EpisodeList) {
		return episode.Episode{}, false
	}
	return s.EpisodeList[s.CurrentEpisodeIndex], true
}

// Len returns the playlist length.
func (s Snapshot) Len() int {
	return len(s.EpisodeList)
}

// sameAs compares everything a consumer can observe.
// The list itself is covered by Generation.
func (s Snapshot) sameAs(o Snapshot) bool {
	return s.Generation == o.Generation &&
		s.CurrentEpisodeIndex == o.CurrentEpisodeIndex &&
		s.IsPlaying == o.IsPlaying &&
		s.IsLooping == o.IsLooping &&
		s.IsShuffling == o.IsShuffling
}

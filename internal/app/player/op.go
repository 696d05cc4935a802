// Package player provides the player state store shared by all consumers.
package player

// Op identifies the mutator that produced a change.
type Op int

const (
	OpPlay             Op = iota // Play a single episode
	OpPlaylist                   // Load a playlist at an index
	OpTogglePlay                 // Flip isPlaying
	OpToggleLoop                 // Flip isLooping
	OpToggleShuffle              // Flip isShuffling
	OpSetPlayingState            // Set isPlaying
	OpClearPlayerState           // Empty the playlist
	OpPlayNext                   // Advance (or random jump under shuffle)
	OpPlayPrevious               // Go back (or random jump under shuffle)
)

// String returns the string representation of the op.
func (o Op) String() string {
	switch o {
	case OpPlay:
		return "play"
	case OpPlaylist:
		return "playlist"
	case OpTogglePlay:
		return "toggle_play"
	case OpToggleLoop:
		return "toggle_loop"
	case OpToggleShuffle:
		return "toggle_shuffle"
	case OpSetPlayingState:
		return "set_playing_state"
	case OpClearPlayerState:
		return "clear_player_state"
	case OpPlayNext:
		return "play_next"
	case OpPlayPrevious:
		return "play_previous"
	default:
		return "unknown"
	}
}

// Change is delivered to listeners after a mutation that altered the state.
type Change struct {
	Op       Op
	Previous Snapshot
	Current  Snapshot
}

// EpisodeChanged reports whether the current episode moved (new list or new index).
func (c Change) EpisodeChanged() bool {
	return c.Previous.Generation != c.Current.Generation ||
		c.Previous.CurrentEpisodeIndex != c.Current.CurrentEpisodeIndex
}

// Listener receives changes synchronously after each committed mutation.
// A listener must not call Store mutators from within the callback.
type Listener func(Change)

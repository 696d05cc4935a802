// Package playback simulates the audio-rendering surface that consumes the player store.
package playback

// State represents the surface playback state.
type State int

const (
	StateIdle    State = iota // Nothing loaded, or the episode ended
	StatePlaying              // Episode is playing
	StatePaused               // Episode is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

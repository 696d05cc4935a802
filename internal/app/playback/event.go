package playback

import "github.com/osa030/podbox/internal/domain/episode"

// EventType represents a surface event type.
type EventType int

const (
	EventEpisodeStarted EventType = iota // Episode started from the beginning
	EventEpisodeEnded                    // Episode reached its end
	EventEpisodeLooped                   // Episode ended and restarted because looping is on
	EventStateChanged                    // Paused or resumed
	EventStopped                         // Nothing left to play
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventEpisodeStarted:
		return "episode_started"
	case EventEpisodeEnded:
		return "episode_ended"
	case EventEpisodeLooped:
		return "episode_looped"
	case EventStateChanged:
		return "state_changed"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event represents a surface event.
type Event struct {
	Type    EventType
	Episode *episode.Episode // Current episode (nil for EventStopped)
	Index   int              // Playlist index of the episode
	State   State            // Surface state after the event
}

// Package episode provides the Episode domain value.
package episode

import (
	"math"
	"time"
)

// MaxDurationSeconds is the longest duration, in whole seconds, a time.Duration can hold.
// Keep the lte bounds on wire and catalog episodes in sync with it.
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

// Episode represents a single playable media item.
// Episodes are values: two episodes with the same fields are the same episode.
type Episode struct {
	Title     string        // Episode title
	Members   string        // Contributors, display text
	Thumbnail string        // Artwork URI
	Duration  time.Duration // Episode length (0 if unknown)
	URL       string        // Audio source URI
}

// FromSeconds builds a duration from a number of seconds as carried on the wire and in config files.
// Negative and NaN inputs give 0; inputs past MaxDurationSeconds are clamped.
func FromSeconds(sec float64) time.Duration {
	switch {
	case !(sec > 0):
		return 0
	case sec > float64(MaxDurationSeconds):
		return time.Duration(MaxDurationSeconds) * time.Second
	default:
		return time.Duration(sec * float64(time.Second))
	}
}

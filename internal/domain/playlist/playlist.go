// Package playlist provides the Playlist domain entity.
package playlist

import (
	"time"

	"github.com/osa030/podbox/internal/domain/episode"
)

// Playlist represents a named catalog playlist.
type Playlist struct {
	ID          string            // Catalog playlist ID
	Name        string            // Playlist name
	Description string            // Playlist description
	Episodes    []episode.Episode // Episodes in playback order
}

// URLs returns the audio URLs of all episodes in the playlist.
func (p *Playlist) URLs() []string {
	urls := make([]string, len(p.Episodes))
	for i, e := range p.Episodes {
		urls[i] = e.URL
	}
	return urls
}

// TotalDuration returns the total duration of all episodes.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, e := range p.Episodes {
		total += e.Duration
	}
	return total
}

// Len returns the number of episodes.
func (p *Playlist) Len() int {
	return len(p.Episodes)
}

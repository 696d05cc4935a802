package catalog

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/playlist"
)

// ErrPlaylistNotFound is returned when a playlist ID is not in the catalog.
var ErrPlaylistNotFound = errors.New("playlist not found")

// Catalog is an immutable set of playlists keyed by ID.
type Catalog struct {
	playlists []playlist.Playlist
	byID      map[string]int
}

// New creates a catalog. Playlist IDs must be unique.
func New(playlists []playlist.Playlist) (*Catalog, error) {
	c := &Catalog{
		playlists: make([]playlist.Playlist, 0, len(playlists)),
		byID:      make(map[string]int, len(playlists)),
	}
	for _, p := range playlists {
		if p.ID == "" {
			return nil, errors.Newf("playlist %q has no id", p.Name)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, errors.Newf("duplicate playlist id: %s", p.ID)
		}
		c.byID[p.ID] = len(c.playlists)
		c.playlists = append(c.playlists, clone(p))
	}
	return c, nil
}

// Playlist returns the playlist with the given ID.
func (c *Catalog) Playlist(id string) (playlist.Playlist, error) {
	i, ok := c.byID[id]
	if !ok {
		return playlist.Playlist{}, errors.Wrapf(ErrPlaylistNotFound, "id=%s", id)
	}
	return clone(c.playlists[i]), nil
}

// Playlists returns all playlists in load order.
func (c *Catalog) Playlists() []playlist.Playlist {
	out := make([]playlist.Playlist, len(c.playlists))
	for i, p := range c.playlists {
		out[i] = clone(p)
	}
	return out
}

// Len returns the number of playlists.
func (c *Catalog) Len() int {
	return len(c.playlists)
}

func clone(p playlist.Playlist) playlist.Playlist {
	episodes := make([]episode.Episode, len(p.Episodes))
	copy(episodes, p.Episodes)
	p.Episodes = episodes
	return p
}

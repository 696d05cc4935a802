// Package catalog provides the named playlists a session can play.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/playlist"
)

// Source is the interface for catalog playlist sources.
type Source interface {
	// Load returns the playlists of the source in declaration order.
	Load(ctx context.Context) ([]playlist.Playlist, error)

	// Name returns the source type (used in config).
	Name() string
}

// playlistDocument is the shape of a playlist in files and inline settings.
type playlistDocument struct {
	ID          string            `yaml:"id" mapstructure:"id" validate:"required"`
	Name        string            `yaml:"name" mapstructure:"name" validate:"required"`
	Description string            `yaml:"description" mapstructure:"description"`
	Episodes    []episodeDocument `yaml:"episodes" mapstructure:"episodes" validate:"dive"`
}

type episodeDocument struct {
	Title           string  `yaml:"title" mapstructure:"title" validate:"required"`
	Members         string  `yaml:"members" mapstructure:"members"`
	Thumbnail       string  `yaml:"thumbnail" mapstructure:"thumbnail" validate:"omitempty,uri"`
	DurationSeconds float64 `yaml:"duration_seconds" mapstructure:"duration_seconds" validate:"gte=0,lte=9223372036"`
	URL             string  `yaml:"url" mapstructure:"url" validate:"required,uri"`
}

// toPlaylists validates documents and converts them to domain playlists.
func toPlaylists(docs []playlistDocument) ([]playlist.Playlist, error) {
	validate := validator.New()
	playlists := make([]playlist.Playlist, 0, len(docs))
	for i, doc := range docs {
		if err := validate.Struct(doc); err != nil {
			return nil, errors.Wrapf(err, "invalid playlist (index %d, id %q)", i, doc.ID)
		}

		episodes := make([]episode.Episode, len(doc.Episodes))
		for j, e := range doc.Episodes {
			episodes[j] = episode.Episode{
				Title:     e.Title,
				Members:   e.Members,
				Thumbnail: e.Thumbnail,
				Duration:  episode.FromSeconds(e.DurationSeconds),
				URL:       e.URL,
			}
		}

		playlists = append(playlists, playlist.Playlist{
			ID:          doc.ID,
			Name:        doc.Name,
			Description: doc.Description,
			Episodes:    episodes,
		})
	}
	return playlists, nil
}

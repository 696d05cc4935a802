package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/playlist"
)

type InlineSourceConfig struct {
	Playlists []playlistDocument `mapstructure:"playlists"`
}

// InlineSource serves playlists written directly in the config file.
type InlineSource struct {
	playlists []playlist.Playlist
}

// NewInlineSource creates a new InlineSource. The playlists are validated eagerly.
func NewInlineSource(settings map[string]any) (*InlineSource, error) {
	var config InlineSourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}

	playlists, err := toPlaylists(config.Playlists)
	if err != nil {
		return nil, err
	}
	zlog.Debug().Msgf("inline source config: playlists=%d", len(playlists))

	return &InlineSource{playlists: playlists}, nil
}

// Load returns the configured playlists.
func (s *InlineSource) Load(_ context.Context) ([]playlist.Playlist, error) {
	return s.playlists, nil
}

// Name returns the source name.
func (s *InlineSource) Name() string {
	return "inline"
}

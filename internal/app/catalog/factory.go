package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/playlist"
	"github.com/osa030/podbox/internal/infra/config"
)

// NewSource creates a catalog source by type.
func NewSource(sourceType string, settings map[string]any) (Source, error) {
	switch sourceType {
	case "file":
		return NewFileSource(settings)
	case "inline":
		return NewInlineSource(settings)
	default:
		return nil, errors.Newf("unsupported source type: %s", sourceType)
	}
}

// NewFromConfig builds every configured source and loads them in order.
// No sources gives an empty catalog.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Catalog, error) {
	var all []playlist.Playlist

	for i, scfg := range cfg.Catalog.Sources {
		zlog.Debug().Msgf("creating catalog source: index=%d type=%s settings=%+v", i+1, scfg.Type, scfg.Settings)

		source, err := NewSource(scfg.Type, scfg.Settings)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (index %d, type %s)", i, scfg.Type)
		}

		playlists, err := source.Load(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load source (index %d, type %s)", i, scfg.Type)
		}
		all = append(all, playlists...)

		zlog.Info().Msgf("registered catalog source: index=%d type=%s display_name=%s playlists=%d",
			i+1, source.Name(), scfg.DisplayName, len(playlists))
	}

	cat, err := New(all)
	if err != nil {
		return nil, err
	}
	zlog.Info().Msgf("catalog loaded: sources=%d playlists=%d", len(cfg.Catalog.Sources), cat.Len())
	return cat, nil
}

package catalog

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/podbox/internal/domain/playlist"
)

type FileSourceConfig struct {
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
}

// FileSource loads playlists from a YAML document on disk.
type FileSource struct {
	config *FileSourceConfig
}

type fileDocument struct {
	Playlists []playlistDocument `yaml:"playlists"`
}

// NewFileSource creates a new FileSource.
func NewFileSource(settings map[string]any) (*FileSource, error) {
	var config FileSourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("file source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("file source validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}
	return &FileSource{config: &config}, nil
}

// Load reads and parses the playlist file.
func (s *FileSource) Load(ctx context.Context) ([]playlist.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.config.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read playlist file %s", s.config.Path)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse playlist file %s", s.config.Path)
	}

	return toPlaylists(doc.Playlists)
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return "file"
}

// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvControlToken overrides control.token.
const EnvControlToken = "PODBOX_CONTROL_TOKEN"

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Session      SessionConfig      `yaml:"session"`
	Control      ControlConfig      `yaml:"control"`
	Playback     PlaybackConfig     `yaml:"playback"`
	Notification NotificationConfig `yaml:"notification"`
	Catalog      CatalogConfig      `yaml:"catalog"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// SessionConfig represents session-related configuration.
type SessionConfig struct {
	Title    string         `yaml:"title" default:"podbox"`
	EndTime  string         `yaml:"end_time"`
	Autoplay AutoplayConfig `yaml:"autoplay"`
}

// AutoplayConfig selects a catalog playlist to play when the session starts.
type AutoplayConfig struct {
	PlaylistID string `yaml:"playlist_id"`
	Index      int    `yaml:"index" validate:"gte=0"`
}

// ControlConfig represents control API configuration.
type ControlConfig struct {
	Token string `yaml:"token"`
}

// PlaybackConfig represents audio surface configuration.
type PlaybackConfig struct {
	ClearOnEnd     *bool `yaml:"clear_on_end" default:"true"`
	TickIntervalMs int   `yaml:"tick_interval_ms" default:"100" validate:"gte=1,lte=1000"`
}

// NotificationConfig represents notification fan-out configuration.
type NotificationConfig struct {
	SendTimeoutMs int `yaml:"send_timeout_ms" default:"500" validate:"gte=1,lte=30000"`
}

// CatalogConfig represents the playlist catalog configuration.
type CatalogConfig struct {
	Sources []SourceConfig `yaml:"sources" validate:"dive"`
}

// SourceConfig represents a single catalog source.
type SourceConfig struct {
	Type        string         `yaml:"type" validate:"required"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings" validate:"required"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv(EnvControlToken); v != "" {
		c.Control.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Session.EndTime != "" {
		endTime, err := time.Parse(time.RFC3339, c.Session.EndTime)
		if err != nil {
			return errors.Wrap(err, "failed to parse end_time")
		}
		if now := time.Now(); endTime.Before(now) {
			return errors.Newf("end_time (%s) must be in the future (current time: %s)", c.Session.EndTime, now.Format(time.RFC3339))
		}
	}

	return nil
}

// ParseEndTime parses the end time string.
// Returns nil if the end time is empty.
func (c *Config) ParseEndTime() (*time.Time, error) {
	if c.Session.EndTime == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, c.Session.EndTime)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse end_time")
	}
	return &t, nil
}

// ClearOnEnd reports whether the playlist is cleared after the last episode.
func (c *Config) ClearOnEnd() bool {
	return c.Playback.ClearOnEnd == nil || *c.Playback.ClearOnEnd
}

// TickInterval returns the surface timer resolution.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Playback.TickIntervalMs) * time.Millisecond
}

// SendTimeout returns the per-subscriber notification send timeout.
func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.Notification.SendTimeoutMs) * time.Millisecond
}

// ControlTokenRequired reports whether control calls need a token.
func (c *Config) ControlTokenRequired() bool {
	return c.Control.Token != ""
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:       ServerConfig{Addr: ":8080"},
		Session:      SessionConfig{Title: "podbox"},
		Playback:     PlaybackConfig{TickIntervalMs: 100},
		Notification: NotificationConfig{SendTimeoutMs: 500},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid catalog source",
			mutate: func(c *Config) {
				c.Catalog.Sources = []SourceConfig{
					{Type: "file", DisplayName: "Shows", Settings: map[string]any{"path": "shows.yaml"}},
				}
			},
			wantErr: false,
		},
		{
			name: "source without type",
			mutate: func(c *Config) {
				c.Catalog.Sources = []SourceConfig{
					{DisplayName: "Shows", Settings: map[string]any{"path": "shows.yaml"}},
				}
			},
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name: "source without settings",
			mutate: func(c *Config) {
				c.Catalog.Sources = []SourceConfig{{Type: "file", DisplayName: "Shows"}}
			},
			wantErr: true,
			errMsg:  "Settings",
		},
		{
			name:    "tick interval too large",
			mutate:  func(c *Config) { c.Playback.TickIntervalMs = 5000 },
			wantErr: true,
			errMsg:  "TickIntervalMs",
		},
		{
			name:    "tick interval zero",
			mutate:  func(c *Config) { c.Playback.TickIntervalMs = 0 },
			wantErr: true,
			errMsg:  "TickIntervalMs",
		},
		{
			name:    "negative autoplay index",
			mutate:  func(c *Config) { c.Session.Autoplay.Index = -1 },
			wantErr: true,
			errMsg:  "Index",
		},
		{
			name:    "end time in the past",
			mutate:  func(c *Config) { c.Session.EndTime = "2000-01-01T00:00:00Z" },
			wantErr: true,
			errMsg:  "must be in the future",
		},
		{
			name: "end time in the future",
			mutate: func(c *Config) {
				c.Session.EndTime = time.Now().Add(time.Hour).Format(time.RFC3339)
			},
			wantErr: false,
		},
		{
			name:    "malformed end time",
			mutate:  func(c *Config) { c.Session.EndTime = "tomorrow" },
			wantErr: true,
			errMsg:  "end_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv(EnvControlToken, "")

	cfg, err := Parse([]byte("session:\n  title: Friday show\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "Friday show", cfg.Session.Title)
	assert.True(t, cfg.ClearOnEnd())
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 500*time.Millisecond, cfg.SendTimeout())
	assert.False(t, cfg.ControlTokenRequired())
	assert.Empty(t, cfg.Catalog.Sources)
}

func TestParse_ExplicitValues(t *testing.T) {
	t.Setenv(EnvControlToken, "")

	data := []byte(`
server:
  addr: ":9090"
  hooks:
    on_started: ["echo", "up"]
session:
  autoplay:
    playlist_id: morning
    index: 2
control:
  token: secret
playback:
  clear_on_end: false
  tick_interval_ms: 20
notification:
  send_timeout_ms: 250
catalog:
  sources:
    - type: inline
      display_name: Builtin
      settings:
        playlists:
          - id: morning
            name: Morning
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"echo", "up"}, cfg.Server.Hooks.OnStarted)
	assert.Equal(t, "podbox", cfg.Session.Title)
	assert.Equal(t, "morning", cfg.Session.Autoplay.PlaylistID)
	assert.Equal(t, 2, cfg.Session.Autoplay.Index)
	assert.True(t, cfg.ControlTokenRequired())
	assert.False(t, cfg.ClearOnEnd())
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 250*time.Millisecond, cfg.SendTimeout())
	require.Len(t, cfg.Catalog.Sources, 1)
	assert.Equal(t, "inline", cfg.Catalog.Sources[0].Type)
	assert.Contains(t, cfg.Catalog.Sources[0].Settings, "playlists")
}

func TestParse_EnvOverridesToken(t *testing.T) {
	t.Setenv(EnvControlToken, "from-env")

	cfg, err := Parse([]byte("control:\n  token: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Control.Token)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("server: [unterminated"))
	assert.Error(t, err)

	_, err = Parse([]byte("playback:\n  tick_interval_ms: 0\n"))
	require.NoError(t, err, "zero is replaced by the default")

	_, err = Parse([]byte("playback:\n  tick_interval_ms: 2000\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvControlToken, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_ParseEndTime(t *testing.T) {
	tests := []struct {
		name    string
		endTime string
		wantNil bool
		wantErr bool
	}{
		{
			name:    "empty end time",
			endTime: "",
			wantNil: true,
			wantErr: false,
		},
		{
			name:    "valid RFC3339 time",
			endTime: "2024-01-01T18:00:00Z",
			wantNil: false,
			wantErr: false,
		},
		{
			name:    "invalid time format",
			endTime: "invalid",
			wantNil: false,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Session: SessionConfig{
					EndTime: tt.endTime,
				},
			}

			result, err := cfg.ParseEndTime()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.wantNil {
					assert.Nil(t, result)
				} else {
					assert.NotNil(t, result)
				}
			}
		})
	}
}

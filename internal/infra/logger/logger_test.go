package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestInit_Writer(t *testing.T) {
	var buf bytes.Buffer
	closeFn, err := Init(Config{Level: "info", Writer: &buf})
	require.NoError(t, err)
	defer closeFn()

	zlog.Debug().Msg("hidden")
	zlog.Info().Msgf("player: state changed: op=%s", "play")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "player: state changed: op=play", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	closeFn, err := Init(Config{Output: path, Level: "debug"})
	require.NoError(t, err)

	zlog.Debug().Msg("to file")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, string(data), "caller")
}

func TestInit_BadFile(t *testing.T) {
	_, err := Init(Config{Output: filepath.Join(t.TempDir(), "missing", "server.log")})
	assert.Error(t, err)
}

func TestShortCaller(t *testing.T) {
	got := shortCaller(0, filepath.Join("internal", "app", "player", "store.go"), 42)
	assert.Equal(t, filepath.Join("player", "store.go")+":42", got)
	assert.Equal(t, "main.go:7", shortCaller(0, "main.go", 7))
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("warn", "", &buf)
	require.NoError(t, err)
	defer l.Close()

	l.Info("hidden")
	l.Warn("shown", "step", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "step=3")
	assert.Empty(t, l.LogFile)
}

func TestFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New("debug", dir)
	require.NoError(t, err)

	l.Debug("waypoint advanced", "cursor", 12)
	require.NoError(t, l.Close())

	assert.Equal(t, filepath.Join(dir, FileName), l.LogFile)
	data, err := os.ReadFile(l.LogFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "waypoint advanced", rec["msg"])
	assert.Equal(t, 12.0, rec["cursor"])
}

func TestInvalidLevel(t *testing.T) {
	_, err := New("chatty", "")
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	assert.NoError(t, l.Close())
}

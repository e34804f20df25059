package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "corner")
	assert.Contains(t, out, "harbour-approach")
}

func TestRunStoreAndExport(t *testing.T) {
	data := t.TempDir()

	out, err := execute(t, "run", "corner", "--data", data, "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "completed: true")
	assert.Contains(t, out, "cross_track_rms")

	entries, err := os.ReadDir(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	runID := entries[0].Name()

	out, err = execute(t, "list", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, runID)

	csvFile := filepath.Join(t.TempDir(), "track.csv")
	_, err = execute(t, "export", runID, "--data", data, "--format", "csv", "-o", csvFile)
	require.NoError(t, err)
	raw, err := os.ReadFile(csvFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "cross_track")

	out, err = execute(t, "render", runID, "--data", data, "--width", "40", "--height", "12")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = execute(t, "export", runID, "--data", data, "--format", "bmp")
	assert.Error(t, err)
}

func TestRunOverrides(t *testing.T) {
	out, err := execute(t, "run", "straight-offset", "--no-save", "--time", "5", "--kp", "3", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "steps: 50 (")
	assert.Contains(t, out, "completed: false")
}

func TestRunRejectsUnknownPreset(t *testing.T) {
	_, err := execute(t, "run", "atlantis", "--no-save")
	assert.ErrorContains(t, err, "unknown preset")

	_, err = execute(t, "run", "--no-save", "--integrator", "verlet")
	assert.Error(t, err)
}

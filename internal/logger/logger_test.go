package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "verbose", Output: &buf})

	log.Debug("debug line")
	log.Info("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestScopedLoggers_JSON(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Format: "json", Output: &buf})

	start := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	base.WithComponent("scheduler").
		WithJob("hourly_rollup", "run-1").
		WithLocation(7, "Delhi").
		WithWindow(start, start.Add(time.Hour)).
		Info("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "hourly_rollup", entry["job"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, float64(7), entry["location_id"])
	assert.Equal(t, "Delhi", entry["location"])
	assert.Equal(t, "2026-10-17T10:00:00Z", entry["window_start"])
	assert.Equal(t, "2026-10-17T11:00:00Z", entry["window_end"])
}

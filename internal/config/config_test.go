package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv([]string{
		"OPENWEATHER_API_KEY=secret",
		"DB_HOST=db.internal",
		"DB_USER=aqi",
		"DB_NAME=aqi",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10*time.Minute, cfg.IngestInterval)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 1, cfg.IngestWorkers)
	assert.Equal(t, "5 * * * *", cfg.HourlyRollupCron)
	assert.Equal(t, "10 0 * * *", cfg.DailyRollupCron)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ShutdownGrace)
	assert.Equal(t, "postgres://aqi@db.internal:5432/aqi?sslmode=require", cfg.DSN())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv([]string{
		"OPENWEATHER_API_KEY=secret",
		"DB_DRIVER=sqlite",
		"DB_PATH=/var/lib/aqi/aqi.db",
		"INGEST_INTERVAL=15m",
		"INGEST_WORKERS=4",
		"HOURLY_ROLLUP_CRON=7 * * * *",
		"LOG_FORMAT=json",
		"UNRELATED=ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.IngestInterval)
	assert.Equal(t, 4, cfg.IngestWorkers)
	assert.Equal(t, "7 * * * *", cfg.HourlyRollupCron)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/var/lib/aqi/aqi.db", cfg.DSN())
}

func TestFromEnv_Invalid(t *testing.T) {
	base := []string{"OPENWEATHER_API_KEY=secret", "DB_DRIVER=sqlite", "DB_PATH=aqi.db"}

	tests := []struct {
		name    string
		env     []string
		wantKey string
	}{
		{"missing api key", []string{"DB_DRIVER=sqlite", "DB_PATH=aqi.db"}, "OPENWEATHER_API_KEY"},
		{"bad cron", append(base, "DAILY_ROLLUP_CRON=every day"), "DAILY_ROLLUP_CRON"},
		{"zero workers", append(base, "INGEST_WORKERS=0"), "INGEST_WORKERS"},
		{"unknown driver", append(base[:1:1], "DB_DRIVER=mysql"), "DB_DRIVER"},
		{"postgres without host", []string{"OPENWEATHER_API_KEY=secret", "DB_USER=u", "DB_NAME=n"}, "DB_HOST"},
		{"sqlite without path", []string{"OPENWEATHER_API_KEY=secret", "DB_DRIVER=sqlite"}, "DB_PATH"},
		{"interval too short", append(base, "INGEST_INTERVAL=10s"), "INGEST_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}

	_, err := FromEnv(append(base, "PROVIDER_TIMEOUT=soon"))
	assert.Error(t, err)
}

func TestLoadLocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
locations:
  - name: Delhi
    latitude: 28.6139
    longitude: 77.2090
  - name: Mumbai
    latitude: 19.0760
    longitude: 72.8777
`), 0o600))

	locs, err := LoadLocations(path)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Delhi", locs[0].Name)
	assert.InDelta(t, 72.8777, locs[1].Longitude, 1e-9)
}

func TestLoadLocations_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"duplicate.yaml": "locations:\n  - {name: A, latitude: 1, longitude: 1}\n  - {name: A, latitude: 2, longitude: 2}\n",
		"range.yaml":     "locations:\n  - {name: A, latitude: 123, longitude: 1}\n",
		"noname.yaml":    "locations:\n  - {latitude: 1, longitude: 1}\n",
		"broken.yaml":    "locations: [",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := LoadLocations(path)
		assert.Error(t, err, name)
	}

	_, err := LoadLocations(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

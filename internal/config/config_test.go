package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/roomsync/internal/config"
)

var configEnvVars = []string{
	"ROOMSYNC_CONFIG",
	"ROOMSYNC_PORT",
	"ROOMSYNC_DB_PATH",
	"ROOMSYNC_LOG_LEVEL",
	"ROOMSYNC_ROTATION_INTERVAL",
	"ROOMSYNC_DUTIES",
	"ROOMSYNC_SMOKE_SENSITIVE_CONDITIONS",
	"ROOMSYNC_NATS_URL",
	"ROOMSYNC_NATS_SUBJECT_PREFIX",
	"ROOMSYNC_METRICS_ENABLED",
	"ROOMSYNC_SCORE_RATE_LIMIT",
	"ROOMSYNC_ALLOWED_ORIGINS",
}

// clearEnv unsets every config variable for the test and restores them after.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestNewDefaults(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "roomsync.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.RotationInterval)
	assert.Equal(t, []string{"cooking", "dishwashing", "room_cleaning", "sweeping", "dusting", "shopping"}, cfg.Duties)
	assert.Contains(t, cfg.SmokeSensitiveConditions, "asthma")
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.True(t, cfg.MetricsEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Len(t, cfg.Duties, 6)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROOMSYNC_PORT", "9090")
	t.Setenv("ROOMSYNC_ROTATION_INTERVAL", "12h")
	t.Setenv("ROOMSYNC_DUTIES", "cooking, Laundry ,trash")
	t.Setenv("ROOMSYNC_METRICS_ENABLED", "false")
	t.Setenv("ROOMSYNC_SCORE_RATE_LIMIT", "5")
	t.Setenv("ROOMSYNC_NATS_URL", "nats://localhost:4222")
	t.Setenv("ROOMSYNC_ALLOWED_ORIGINS", "roomsync.app, *.roomsync.app")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.RotationInterval)
	assert.Equal(t, []string{"cooking", "Laundry", "trash"}, cfg.Duties)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 5, cfg.ScoreRateLimit)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, []string{"roomsync.app", "*.roomsync.app"}, cfg.AllowedOrigins)

	set, err := cfg.DutySet()
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("laundry"))
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "roomsync.yaml")
	yaml := "port: \"7070\"\nrotation_interval: 168h\nduties:\n  - cooking\n  - shopping\nallowed_origins:\n  - app.roomsync.example\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("ROOMSYNC_CONFIG", path)
	t.Setenv("ROOMSYNC_PORT", "7171")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "7171", cfg.Port, "env wins over file")
	assert.Equal(t, 7*24*time.Hour, cfg.RotationInterval)
	assert.Equal(t, []string{"cooking", "shopping"}, cfg.Duties)
	assert.Equal(t, []string{"app.roomsync.example"}, cfg.AllowedOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		invalid bool
	}{
		{"missing file", map[string]string{"ROOMSYNC_CONFIG": filepath.Join(t.TempDir(), "missing.yaml")}, false},
		{"duplicate duty", map[string]string{"ROOMSYNC_DUTIES": "cooking,Cooking"}, true},
		{"zero interval", map[string]string{"ROOMSYNC_ROTATION_INTERVAL": "0s"}, true},
		{"bad origin pattern", map[string]string{"ROOMSYNC_ALLOWED_ORIGINS": "[roomsync.app"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty duty list", func(c *config.Config) { c.Duties = nil }},
		{"zero score rate limit", func(c *config.Config) { c.ScoreRateLimit = 0 }},
		{"empty database path", func(c *config.Config) { c.DBPath = "" }},
		{"malformed origin pattern", func(c *config.Config) { c.AllowedOrigins = []string{"roomsync.app", "["} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

// Package config loads service configuration from defaults, an optional
// YAML file and ROOMSYNC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/dukerupert/roomsync/internal/chore"
	"github.com/dukerupert/roomsync/internal/compatibility"
	"github.com/dukerupert/roomsync/internal/model"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// Port is the HTTP listen port.
	Port string `koanf:"port"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// RotationInterval is the length of one chore rotation period.
	RotationInterval time.Duration `koanf:"rotation_interval"`

	// Duties is the ordered duty set rotated through each room.
	Duties []string `koanf:"duties"`

	// SmokeSensitiveConditions are medical conditions penalised in rooms
	// that allow smoking.
	SmokeSensitiveConditions []string `koanf:"smoke_sensitive_conditions"`

	// NATSURL enables event publishing to NATS when set.
	NATSURL string `koanf:"nats_url"`

	// NATSSubjectPrefix roots the published subjects.
	NATSSubjectPrefix string `koanf:"nats_subject_prefix"`

	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// ScoreRateLimit caps compatibility score requests per caller per minute.
	ScoreRateLimit int `koanf:"score_rate_limit"`

	// AllowedOrigins are host patterns (path.Match syntax, e.g.
	// "*.roomsync.app") allowed to open /ws from another origin. Empty means
	// same-origin only.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New returns a Config populated with defaults.
func New() *Config {
	duties := make([]string, len(chore.DefaultDuties))
	for i, d := range chore.DefaultDuties {
		duties[i] = string(d)
	}
	conditions := make([]string, len(compatibility.DefaultSmokeSensitiveConditions))
	copy(conditions, compatibility.DefaultSmokeSensitiveConditions)

	return &Config{
		Port:                     "8080",
		DBPath:                   "roomsync.db",
		LogLevel:                 "info",
		RotationInterval:         chore.DefaultRotationInterval,
		Duties:                   duties,
		SmokeSensitiveConditions: conditions,
		NATSSubjectPrefix:        "roomsync",
		MetricsEnabled:           true,
		ScoreRateLimit:           60,
	}
}

// Validate checks the config and returns an ErrInvalidConfig-wrapped error
// describing the first problem found.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.RotationInterval <= 0 {
		return fmt.Errorf("%w: rotation_interval must be positive, got %s", ErrInvalidConfig, c.RotationInterval)
	}
	if c.ScoreRateLimit <= 0 {
		return fmt.Errorf("%w: score_rate_limit must be positive, got %d", ErrInvalidConfig, c.ScoreRateLimit)
	}
	if _, err := c.DutySet(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, pattern := range c.AllowedOrigins {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: allowed_origins pattern %q: %v", ErrInvalidConfig, pattern, err)
		}
	}
	return nil
}

// DutySet returns the configured duties as a validated chore.DutySet.
func (c *Config) DutySet() (chore.DutySet, error) {
	duties := make([]model.Duty, len(c.Duties))
	for i, d := range c.Duties {
		duties[i] = model.Duty(d)
	}
	return chore.NewDutySet(duties)
}

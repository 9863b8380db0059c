package config

import (
	"fmt"
	"strings"
	"time"

	"solardash/internal/errors"

	"github.com/caarlos0/env/v11"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `env:"PORT"             envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE"         envDefault:"debug"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DataConfig holds dataset loading settings
type DataConfig struct {
	Path                 string   `env:"DATA_PATH"              envDefault:"data/solar_data.csv"`
	GeoColumn            string   `env:"GEO_COLUMN"             envDefault:"country"`
	RegionColumn         string   `env:"REGION_COLUMN"          envDefault:"region"`
	DefaultMetric        string   `env:"DEFAULT_METRIC"         envDefault:"GHI"`
	Metrics              []string `env:"METRICS"                envDefault:"GHI,DNI,DHI" envSeparator:","`
	TopN                 int      `env:"TOP_N"                  envDefault:"5"`
	DefaultSelectionSize int      `env:"DEFAULT_SELECTION_SIZE" envDefault:"3"`
	UploadDir            string   `env:"UPLOAD_DIR"`
	MaxUploadBytes       int64    `env:"MAX_UPLOAD_BYTES"       envDefault:"33554432"`
}

// SessionConfig holds visitor session settings
type SessionConfig struct {
	TTL        time.Duration `env:"SESSION_TTL"    envDefault:"2h"`
	CookieName string        `env:"SESSION_COOKIE" envDefault:"solardash_session"`
}

// DatabaseConfig holds the optional dataset catalog connection
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL"`
}

// Enabled reports whether the catalog should be opened
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string `env:"PPROF_PORT"    envDefault:"6060"`
	Enabled bool   `env:"PPROF_ENABLED" envDefault:"false"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse env: %w", err))
	}

	config.Data.Metrics = cleanList(config.Data.Metrics)
	if config.Data.DefaultMetric != "" {
		config.Data.Metrics = preferFirst(config.Data.Metrics, config.Data.DefaultMetric)
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.GinMode != "debug" && config.Server.GinMode != "release" && config.Server.GinMode != "test" {
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE must be debug, release or test, got %q", config.Server.GinMode))
	}
	if config.Data.TopN < 1 {
		return errors.ConfigInvalid("TOP_N must be at least 1")
	}
	if config.Data.DefaultSelectionSize < 0 {
		return errors.ConfigInvalid("DEFAULT_SELECTION_SIZE cannot be negative")
	}
	if config.Data.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Session.CookieName == "" {
		return errors.ConfigInvalid("SESSION_COOKIE cannot be empty")
	}
	switch strings.ToUpper(config.LogLevel) {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown LOG_LEVEL %q", config.LogLevel))
	}
	return nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// preferFirst moves name to the front, adding it when absent
func preferFirst(values []string, name string) []string {
	out := []string{name}
	for _, v := range values {
		if !strings.EqualFold(v, name) {
			out = append(out, v)
		}
	}
	return out
}

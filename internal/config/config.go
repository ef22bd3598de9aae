// Package config loads the coordinator's optional TOML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the coordinator's configuration surface. Every field has a
// usable zero value, so a missing ken.toml is not an error.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// StoreConfig configures where the durable store lives.
type StoreConfig struct {
	// Dir overrides the upward directory walk for .ken; empty means walk
	// up from the current working directory.
	Dir string `toml:"dir"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `toml:"level"` // debug|info|warn|error
}

// TelemetryConfig configures OpenTelemetry span export. Enabled defaults to
// false, leaving the process on the global no-op tracer; when true,
// telemetry.Setup dials Endpoint as an OTLP/gRPC collector.
type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
	}
}

// LoadFile loads configuration from a TOML file, defaults applied first.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Load loads ken.toml from path if it exists, otherwise returns defaults.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}
	return LoadFile(path)
}

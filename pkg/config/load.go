package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. A missing file is not an error: the gateway starts
// from defaults so a fresh install needs no config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention RELAY_SECTION_FIELD (e.g. RELAY_GATEWAY_STORE_PATH) and always
// take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies RELAY_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("RELAY_GATEWAY_STORE_PATH"); val != "" {
		cfg.Gateway.StorePath = val
	}
	if val := os.Getenv("RELAY_GATEWAY_HISTORY_CAPACITY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Gateway.HistoryCapacity = i
		}
	}
	if val := os.Getenv("RELAY_GATEWAY_PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Gateway.ProbeTimeout = d
		}
	}
	if val := os.Getenv("RELAY_GATEWAY_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Gateway.RequestTimeout = d
		}
	}
	if val := os.Getenv("RELAY_GATEWAY_DEFAULT_MAX_TOKENS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Gateway.DefaultMaxTokens = i
		}
	}

	if val := os.Getenv("RELAY_RETENTION_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.Enabled = &b
		}
	}
	if val := os.Getenv("RELAY_RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}
	if val := os.Getenv("RELAY_RETENTION_MAX_AGE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retention.MaxAge = d
		}
	}

	if val := os.Getenv("RELAY_TELEMETRY_LOG_LEVEL"); val != "" {
		cfg.Telemetry.LogLevel = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_LOG_FORMAT"); val != "" {
		cfg.Telemetry.LogFormat = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.MetricsEnabled = &b
		}
	}
}

package config

import "time"

// Config is the root configuration structure for the relay gateway.
type Config struct {
	// Gateway contains core gateway settings: persistence path, history
	// capacity, and network timeouts.
	Gateway GatewayConfig `yaml:"gateway"`

	// Costs contains the static pricing tables used by the cost model.
	Costs CostsConfig `yaml:"costs"`

	// Retention controls pruning of the durable request log.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GatewayConfig contains core gateway settings.
type GatewayConfig struct {
	// StorePath is the SQLite database file path for configuration
	// persistence and the durable request log.
	// Default: "data/relay.db"
	StorePath string `yaml:"store_path"`

	// HistoryCapacity is the maximum number of request records kept in the
	// in-memory history; the oldest record is evicted when full.
	// Default: 50
	HistoryCapacity int `yaml:"history_capacity"`

	// ProbeTimeout is the hard ceiling on a connection probe. A probe that
	// exceeds it counts as a reachability failure.
	// Default: 5s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// RequestTimeout is the ceiling on a completion request.
	// Default: 120s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// DefaultMaxTokens caps completion output for families that require an
	// explicit cap, when the caller does not provide one.
	// Default: 1024
	DefaultMaxTokens int `yaml:"default_max_tokens"`

	// MaxIdleConns is the maximum number of idle connections in the shared
	// HTTP pool.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection remains pooled.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// CostsConfig contains the static pricing tables for the cost model.
// Rates are USD per 1000 tokens. Families that bill input and output
// separately use Input/Output; flat-rate families use Flat.
type CostsConfig struct {
	// Pricing maps family -> model -> rate. Model keys match exactly
	// first, then by prefix (e.g. "gpt-4" matches "gpt-4-0613").
	Pricing map[string]map[string]RateConfig `yaml:"pricing"`

	// DefaultRate applies to unknown models of billable families. It is
	// deliberately conservative so unknown models never run free.
	DefaultRate RateConfig `yaml:"default_rate"`
}

// RateConfig is the price of one model, USD per 1000 tokens.
type RateConfig struct {
	// Input is the prompt-token rate for split-billing families.
	Input float64 `yaml:"input"`

	// Output is the completion-token rate for split-billing families.
	Output float64 `yaml:"output"`

	// Flat is the all-tokens rate for flat-billing families.
	Flat float64 `yaml:"flat"`
}

// RetentionConfig controls pruning of the durable request log. The
// in-memory history view is bounded separately by HistoryCapacity.
type RetentionConfig struct {
	// Enabled turns the pruning job on.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Schedule is a cron expression for when pruning runs.
	// Default: "@hourly"
	Schedule string `yaml:"schedule"`

	// MaxAge is how long persisted request records are kept.
	// Default: 720h (30 days)
	MaxAge time.Duration `yaml:"max_age"`
}

// TelemetryConfig contains logging and metrics settings.
type TelemetryConfig struct {
	// LogLevel is the minimum log level: debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "json" or "text".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// MetricsEnabled turns the Prometheus collector on.
	// Default: true
	MetricsEnabled *bool `yaml:"metrics_enabled"`
}

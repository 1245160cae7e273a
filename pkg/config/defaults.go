package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultStorePath        = "data/relay.db"
	DefaultHistoryCapacity  = 50
	DefaultProbeTimeout     = 5 * time.Second
	DefaultRequestTimeout   = 120 * time.Second
	DefaultMaxTokens        = 1024
	DefaultRetentionMaxAge  = 720 * time.Hour
	DefaultRetentionCron    = "@hourly"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultFallbackFlatRate = 0.01 // USD per 1K tokens, deliberately high
)

// ApplyDefaults fills in zero-valued fields with defaults. It is called by
// LoadConfig after parsing and can be used directly on a hand-built Config.
func ApplyDefaults(cfg *Config) {
	if cfg.Gateway.StorePath == "" {
		cfg.Gateway.StorePath = DefaultStorePath
	}
	if cfg.Gateway.HistoryCapacity == 0 {
		cfg.Gateway.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.Gateway.ProbeTimeout == 0 {
		cfg.Gateway.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Gateway.RequestTimeout == 0 {
		cfg.Gateway.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Gateway.DefaultMaxTokens == 0 {
		cfg.Gateway.DefaultMaxTokens = DefaultMaxTokens
	}
	if cfg.Gateway.MaxIdleConns == 0 {
		cfg.Gateway.MaxIdleConns = 100
	}
	if cfg.Gateway.MaxIdleConnsPerHost == 0 {
		cfg.Gateway.MaxIdleConnsPerHost = 10
	}
	if cfg.Gateway.IdleConnTimeout == 0 {
		cfg.Gateway.IdleConnTimeout = 90 * time.Second
	}

	if cfg.Costs.Pricing == nil {
		cfg.Costs.Pricing = make(map[string]map[string]RateConfig)
	}
	if cfg.Costs.DefaultRate == (RateConfig{}) {
		cfg.Costs.DefaultRate = RateConfig{
			Input:  DefaultFallbackFlatRate,
			Output: DefaultFallbackFlatRate,
			Flat:   DefaultFallbackFlatRate,
		}
	}

	if cfg.Retention.Enabled == nil {
		enabled := true
		cfg.Retention.Enabled = &enabled
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionCron
	}
	if cfg.Retention.MaxAge == 0 {
		cfg.Retention.MaxAge = DefaultRetentionMaxAge
	}

	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = DefaultLogLevel
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = DefaultLogFormat
	}
	if cfg.Telemetry.MetricsEnabled == nil {
		enabled := true
		cfg.Telemetry.MetricsEnabled = &enabled
	}
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

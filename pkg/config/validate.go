package config

import (
	"fmt"

	"tessera-ai/relay/pkg/providers"
)

// Validate checks a Config for values the gateway cannot run with.
// It is called by LoadConfig after defaults are applied.
func Validate(cfg *Config) error {
	if cfg.Gateway.HistoryCapacity < 1 {
		return fmt.Errorf("gateway.history_capacity must be at least 1, got %d", cfg.Gateway.HistoryCapacity)
	}
	if cfg.Gateway.ProbeTimeout <= 0 {
		return fmt.Errorf("gateway.probe_timeout must be positive, got %s", cfg.Gateway.ProbeTimeout)
	}
	if cfg.Gateway.RequestTimeout <= 0 {
		return fmt.Errorf("gateway.request_timeout must be positive, got %s", cfg.Gateway.RequestTimeout)
	}
	if cfg.Gateway.StorePath == "" {
		return fmt.Errorf("gateway.store_path must not be empty")
	}

	for family, models := range cfg.Costs.Pricing {
		if !providers.Family(family).Valid() {
			return fmt.Errorf("costs.pricing: unknown family %q", family)
		}
		for model, rate := range models {
			if rate.Input < 0 || rate.Output < 0 || rate.Flat < 0 {
				return fmt.Errorf("costs.pricing[%s][%s]: rates must be non-negative", family, model)
			}
		}
	}
	if cfg.Costs.DefaultRate.Input < 0 || cfg.Costs.DefaultRate.Output < 0 || cfg.Costs.DefaultRate.Flat < 0 {
		return fmt.Errorf("costs.default_rate: rates must be non-negative")
	}

	if cfg.Retention.MaxAge < 0 {
		return fmt.Errorf("retention.max_age must be non-negative, got %s", cfg.Retention.MaxAge)
	}

	switch cfg.Telemetry.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.log_level must be one of debug, info, warn, error; got %q", cfg.Telemetry.LogLevel)
	}
	switch cfg.Telemetry.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.log_format must be json or text; got %q", cfg.Telemetry.LogFormat)
	}

	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"tessera-ai/relay/pkg/cli"
	"tessera-ai/relay/pkg/config"
	"tessera-ai/relay/pkg/gateway"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Tessera Relay - multi-provider inference gateway",
	Long: `Tessera Relay is a gateway that manages a roster of LLM inference
providers behind one contract, regardless of each backend's native protocol.

It provides:
  - A provider registry with a single active provider at a time
  - Protocol adapters for local, aggregator, vendor, and custom backends
  - Connection probing and per-provider usage accounting
  - A bounded request history with durable persistence
  - Portable JSON export/import of the provider configuration`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json)")
}

// loadConfig reads the config file, applies RELAY_* env overrides, and
// configures the default slog logger from the telemetry section.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("file", fmt.Sprintf("failed to load config: %v", err))
	}

	var logLevel slog.Level
	switch cfg.Telemetry.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if cfg.Telemetry.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	return cfg, nil
}

// openGateway loads the config and opens the gateway against the
// configured store. Callers must Close the returned gateway.
func openGateway() (*gateway.Gateway, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	gw, err := gateway.Open(cfg)
	if err != nil {
		return nil, cli.NewCommandError("open", err)
	}
	return gw, nil
}

func formatter() cli.Formatter {
	return cli.NewFormatter(cli.OutputFormat(outputFormat))
}

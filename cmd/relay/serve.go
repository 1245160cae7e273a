package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"tessera-ai/relay/pkg/cli"
	"tessera-ai/relay/pkg/config"
)

var serveFlags struct {
	listenAddress string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway as a long-lived process",
	Long: `Run the gateway with a telemetry endpoint until interrupted.

While running, the config file is watched and pricing-table changes are
applied without a restart. Prometheus metrics are served on /metrics.

Examples:
  relay serve
  relay serve --listen :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", ":9090", "telemetry listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	// Hot-reload the pricing table when the config file changes.
	watcher, err := config.NewWatcher(cfgFile, func(cfg *config.Config) {
		gw.UpdatePricing(&cfg.Costs)
		slog.Info("pricing table reloaded", "config", cfgFile)
	})
	if err != nil {
		slog.Warn("config watch unavailable", "error", err)
	} else {
		defer watcher.Close()
	}

	// Log roster and history changes as they happen.
	snapshots, unsubscribe := gw.Subscribe()
	defer unsubscribe()
	go func() {
		for snap := range snapshots {
			slog.Debug("gateway state changed",
				"providers", len(snap.Providers),
				"active", snap.ActiveProviderID,
				"history", len(snap.History),
			)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if collector := gw.Metrics(); collector != nil {
		mux.Handle("/metrics", collector.Handler())
	}

	srv := &http.Server{
		Addr:              serveFlags.listenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("telemetry server listening", "address", serveFlags.listenAddress)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	fmt.Printf("✓ Gateway running (%d providers)\n", len(gw.ListProviders()))
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", serveFlags.listenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return cli.NewCommandError("serve", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return cli.NewCommandError("serve", err)
		}
		return nil
	}
}

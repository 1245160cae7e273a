package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tessera-ai/relay/pkg/config"
	"tessera-ai/relay/pkg/costs"
	"tessera-ai/relay/pkg/history"
	"tessera-ai/relay/pkg/providerfactory"
	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/registry"
	"tessera-ai/relay/pkg/store"
	"tessera-ai/relay/pkg/telemetry/metrics"
)

// Gateway is the single entry point for all provider operations. It owns
// the registry, the request history, and the persistence write-through, and
// it emits one state-change notification after every mutating operation.
//
// All in-memory mutation is serialized by one mutex; network I/O (probes
// and completions) happens outside it, so independent operations against
// different providers can be in flight concurrently.
type Gateway struct {
	cfg      *config.Config
	reg      *registry.Registry
	hist     *history.Log
	store    *store.Store
	costs    *costs.Calculator
	metrics  *metrics.Collector
	client   *providers.Client
	adapters map[providers.Family]providers.Adapter

	// mu serializes mutating operations and their write-through, so a
	// persisted snapshot never captures a half-applied mutation.
	mu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int

	cron *cron.Cron
}

// New wires a gateway around explicit collaborators. st and collector may
// be nil: a nil store disables persistence (useful in tests), a nil
// collector disables metrics. When a store is given, the persisted snapshot
// is loaded before the gateway is returned.
func New(cfg *config.Config, st *store.Store, collector *metrics.Collector) (*Gateway, error) {
	client := providers.NewClient(providers.ClientConfig{
		Timeout:             cfg.Gateway.RequestTimeout,
		MaxIdleConns:        cfg.Gateway.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Gateway.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Gateway.IdleConnTimeout,
	})

	g := &Gateway{
		cfg:      cfg,
		reg:      registry.NewRegistry(),
		hist:     history.NewLog(cfg.Gateway.HistoryCapacity),
		store:    st,
		costs:    costs.NewCalculator(&cfg.Costs),
		metrics:  collector,
		client:   client,
		adapters: providerfactory.New(client),
		subs:     make(map[int]chan Snapshot),
	}

	if st != nil {
		records, activeID, err := st.LoadSnapshot()
		if err != nil {
			// A damaged snapshot must not brick the gateway: start empty.
			slog.Warn("failed to load persisted configuration, starting empty", "error", err)
		} else if err := g.reg.Replace(records, activeID); err != nil {
			slog.Warn("persisted configuration is inconsistent, starting empty", "error", err)
		}

		g.startRetention()
	}

	if g.metrics != nil {
		g.metrics.SetProviderCount(g.reg.Len())
	}

	slog.Info("gateway initialized",
		"providers", g.reg.Len(),
		"history_capacity", cfg.Gateway.HistoryCapacity,
	)

	return g, nil
}

// Open creates the store at the configured path and wires a gateway with
// metrics around it.
func Open(cfg *config.Config) (*Gateway, error) {
	st, err := store.NewStore(cfg.Gateway.StorePath)
	if err != nil {
		return nil, err
	}

	var collector *metrics.Collector
	if cfg.Telemetry.MetricsEnabled == nil || *cfg.Telemetry.MetricsEnabled {
		collector = metrics.NewCollector(nil)
	}

	return New(cfg, st, collector)
}

// startRetention schedules pruning of the durable request log.
func (g *Gateway) startRetention() {
	if g.cfg.Retention.Enabled != nil && !*g.cfg.Retention.Enabled {
		return
	}

	g.cron = cron.New()
	maxAge := g.cfg.Retention.MaxAge
	_, err := g.cron.AddFunc(g.cfg.Retention.Schedule, func() {
		if _, err := g.store.PruneRequests(time.Now().Add(-maxAge)); err != nil {
			slog.Warn("request log pruning failed", "error", err)
		}
	})
	if err != nil {
		slog.Warn("invalid retention schedule, pruning disabled",
			"schedule", g.cfg.Retention.Schedule,
			"error", err,
		)
		g.cron = nil
		return
	}
	g.cron.Start()

	slog.Info("retention job scheduled",
		"schedule", g.cfg.Retention.Schedule,
		"max_age", maxAge,
	)
}

// UpdatePricing swaps the cost tables, typically from the config watcher.
func (g *Gateway) UpdatePricing(cfg *config.CostsConfig) {
	g.costs.UpdateTable(cfg)
	slog.Info("pricing tables updated")
}

// Metrics returns the collector, or nil when metrics are disabled.
func (g *Gateway) Metrics() *metrics.Collector {
	return g.metrics
}

// Close stops the retention job, closes subscriber channels, and releases
// the store and HTTP pool.
func (g *Gateway) Close() error {
	if g.cron != nil {
		g.cron.Stop()
	}

	g.subsMu.Lock()
	for id, ch := range g.subs {
		close(ch)
		delete(g.subs, id)
	}
	g.subsMu.Unlock()

	g.client.Close()

	if g.store != nil {
		return g.store.Close()
	}
	return nil
}

// persistLocked writes the current registry snapshot through to the store.
// Callers must hold g.mu. In-memory state stays authoritative: the error is
// surfaced, never rolled back.
func (g *Gateway) persistLocked() error {
	if g.store == nil {
		return nil
	}
	return g.store.SaveSnapshot(g.reg.List(), g.reg.ActiveID())
}

// endpoint projects a provider record into the adapter-facing shape.
func endpoint(rec registry.ProviderRecord) providers.Endpoint {
	return providers.Endpoint{
		Name:         rec.Name,
		BaseURL:      trimSlash(rec.BaseURL),
		Credential:   rec.Credential,
		DefaultModel: rec.DefaultModel(),
	}
}

// trimSlash removes a trailing slash so adapters can join paths naively.
func trimSlash(u string) string {
	for len(u) > 0 && u[len(u)-1] == '/' {
		u = u[:len(u)-1]
	}
	return u
}

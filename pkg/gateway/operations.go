package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tessera-ai/relay/pkg/history"
	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/registry"
	"tessera-ai/relay/pkg/store"
)

// AddProvider validates the spec and registers a new backend. The record is
// returned even when the persistence write-through fails: in-memory state
// is authoritative during a session.
func (g *Gateway) AddProvider(spec registry.Spec) (registry.ProviderRecord, error) {
	g.mu.Lock()
	rec, err := g.reg.Add(spec)
	if err != nil {
		g.mu.Unlock()
		return registry.ProviderRecord{}, err
	}
	persistErr := g.persistLocked()
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.SetProviderCount(g.reg.Len())
	}
	g.notify()

	return rec, persistErr
}

// UpdateProvider merges the patch into an existing record.
func (g *Gateway) UpdateProvider(id string, patch registry.Patch) error {
	g.mu.Lock()
	if err := g.reg.Update(id, patch); err != nil {
		g.mu.Unlock()
		return err
	}
	persistErr := g.persistLocked()
	g.mu.Unlock()

	g.notify()
	return persistErr
}

// DeleteProvider removes a record. When the deleted record was active, the
// registry reassigns the active pointer to the remaining provider with the
// lowest insertion order, or to none.
func (g *Gateway) DeleteProvider(id string) error {
	g.mu.Lock()
	rec, ok := g.reg.Get(id)
	if !ok {
		g.mu.Unlock()
		return &registry.NotFoundError{ID: id}
	}
	if err := g.reg.Delete(id); err != nil {
		g.mu.Unlock()
		return err
	}
	persistErr := g.persistLocked()
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.SetProviderCount(g.reg.Len())
		g.metrics.RemoveProvider(rec.Name)
	}
	g.notify()

	return persistErr
}

// SetActiveProvider makes the target the single active provider.
func (g *Gateway) SetActiveProvider(id string) error {
	g.mu.Lock()
	if err := g.reg.SetActive(id); err != nil {
		g.mu.Unlock()
		return err
	}
	persistErr := g.persistLocked()
	g.mu.Unlock()

	g.notify()
	return persistErr
}

// TestProvider probes the backend's reachability under a hard timeout and
// records the result on the provider's Connected flag. It never touches
// usage or history. The probe error is returned for display; a non-nil
// error simply means the provider is now marked disconnected.
func (g *Gateway) TestProvider(ctx context.Context, id string) error {
	rec, ok := g.reg.Get(id)
	if !ok {
		return &registry.NotFoundError{ID: id}
	}

	adapter := g.adapters[rec.Family]

	probeCtx, cancel := context.WithTimeout(ctx, g.cfg.Gateway.ProbeTimeout)
	defer cancel()

	start := time.Now()
	probeErr := adapter.Probe(probeCtx, endpoint(rec))
	reachable := probeErr == nil

	if reachable {
		slog.Info("provider probe succeeded",
			"provider", rec.Name,
			"latency", time.Since(start),
		)
	} else {
		slog.Warn("provider probe failed",
			"provider", rec.Name,
			"latency", time.Since(start),
			"error", probeErr,
		)
	}

	g.mu.Lock()
	// The provider may have been deleted while the probe was in flight.
	if err := g.reg.SetConnected(id, reachable); err != nil {
		g.mu.Unlock()
		return err
	}
	persistErr := g.persistLocked()
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.RecordProbe(rec.Name, reachable)
	}
	g.notify()

	if probeErr != nil {
		return probeErr
	}
	return persistErr
}

// SendRequest dispatches a completion to the given provider. A pending
// request record is appended to history before dispatch and transitions
// exactly once to completed or failed. Usage is recorded only on
// completion. There is no mid-flight cancellation beyond the configured
// request timeout.
//
// The terminal request record is returned alongside the dispatch error, so
// callers can render the outcome either way.
func (g *Gateway) SendRequest(ctx context.Context, providerID, model, prompt string) (history.RequestRecord, error) {
	rec, ok := g.reg.Get(providerID)
	if !ok {
		return history.RequestRecord{}, &registry.NotFoundError{ID: providerID}
	}

	if model == "" {
		model = rec.DefaultModel()
	}
	if model == "" {
		return history.RequestRecord{}, &providers.ValidationError{
			Field:   "model",
			Message: "no model given and provider has no configured models",
		}
	}

	reqRec := history.RequestRecord{
		ID:           uuid.NewString(),
		ProviderID:   providerID,
		ProviderName: rec.Name,
		Model:        model,
		Prompt:       prompt,
		Timestamp:    time.Now(),
		Status:       history.StatusPending,
	}

	g.mu.Lock()
	g.hist.Append(reqRec)
	if g.store != nil {
		if err := g.store.AppendRequest(reqRec); err != nil {
			slog.Warn("failed to persist request record", "error", err)
		}
	}
	g.mu.Unlock()
	g.notify()

	adapter := g.adapters[rec.Family]

	reqCtx, cancel := context.WithTimeout(ctx, g.cfg.Gateway.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := adapter.Complete(reqCtx, endpoint(rec), &providers.CompletionRequest{
		Model:     model,
		Prompt:    prompt,
		MaxTokens: g.cfg.Gateway.DefaultMaxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		return g.finishFailed(reqRec.ID, rec, model, duration, err), err
	}
	return g.finishCompleted(reqRec.ID, rec, model, duration, resp), nil
}

// finishCompleted applies the terminal completed state: history record,
// usage ledger, persistence, metrics, notification.
func (g *Gateway) finishCompleted(requestID string, rec registry.ProviderRecord, model string, duration time.Duration, resp *providers.CompletionResponse) history.RequestRecord {
	inTokens, outTokens := resp.InputTokens, resp.OutputTokens
	if inTokens+outTokens == 0 {
		// Backend reported only a total; bill it at the completion rate.
		outTokens = resp.TotalTokens
	}
	total := resp.TotalTokens
	if total == 0 {
		total = inTokens + outTokens
	}

	cost := g.costs.Cost(rec.Family, model, inTokens, outTokens)

	g.mu.Lock()
	if err := g.hist.Complete(requestID, resp.Content, total, cost, duration); err != nil {
		slog.Warn("request already terminal", "request", requestID, "error", err)
	}
	g.reg.RecordUsage(rec.ID, total, cost)
	if g.store != nil {
		if final, ok := g.hist.Get(requestID); ok {
			if err := g.store.UpdateRequest(final); err != nil {
				slog.Warn("failed to persist request outcome", "error", err)
			}
		}
		if err := g.persistLocked(); err != nil {
			slog.Warn("failed to persist usage totals", "error", err)
		}
	}
	final, _ := g.hist.Get(requestID)
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.RecordRequest(rec.Name, model, "completed", duration, total, cost)
	}

	slog.Info("request completed",
		"provider", rec.Name,
		"model", model,
		"tokens", total,
		"cost", cost,
		"duration", duration,
	)

	g.notify()
	return final
}

// finishFailed applies the terminal failed state. Usage is not recorded.
func (g *Gateway) finishFailed(requestID string, rec registry.ProviderRecord, model string, duration time.Duration, cause error) history.RequestRecord {
	g.mu.Lock()
	if err := g.hist.Fail(requestID, cause.Error()); err != nil {
		slog.Warn("request already terminal", "request", requestID, "error", err)
	}
	var final history.RequestRecord
	if f, ok := g.hist.Get(requestID); ok {
		final = f
		if g.store != nil {
			if err := g.store.UpdateRequest(f); err != nil {
				slog.Warn("failed to persist request outcome", "error", err)
			}
		}
	}
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.RecordRequest(rec.Name, model, "failed", duration, 0, 0)
	}

	slog.Warn("request failed",
		"provider", rec.Name,
		"model", model,
		"duration", duration,
		"error", cause,
	)

	g.notify()
	return final
}

// ClearHistory empties both the in-memory history view and the durable
// request log.
func (g *Gateway) ClearHistory() error {
	g.mu.Lock()
	g.hist.Clear()
	var err error
	if g.store != nil {
		err = g.store.ClearRequests()
	}
	g.mu.Unlock()

	g.notify()
	return err
}

// ExportConfiguration produces the portable configuration document.
func (g *Gateway) ExportConfiguration(opts store.ExportOptions) *store.Document {
	return store.Export(g.reg.List(), g.reg.ActiveID(), opts)
}

// ImportConfiguration validates the document and atomically replaces the
// registry and active pointer. A rejected document leaves current state
// entirely intact.
func (g *Gateway) ImportConfiguration(data []byte) error {
	doc, err := store.ParseDocument(data)
	if err != nil {
		return err
	}

	var activeID string
	if doc.ActiveProviderID != nil {
		activeID = *doc.ActiveProviderID
	}

	g.mu.Lock()
	if err := g.reg.Replace(doc.Providers, activeID); err != nil {
		g.mu.Unlock()
		return err
	}
	persistErr := g.persistLocked()
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.SetProviderCount(g.reg.Len())
	}

	slog.Info("configuration imported",
		"providers", len(doc.Providers),
		"active", activeID != "",
	)

	g.notify()
	return persistErr
}

// ListProviders returns all provider records in insertion order.
func (g *Gateway) ListProviders() []registry.ProviderRecord {
	return g.reg.List()
}

// GetProvider returns the record with the given id.
func (g *Gateway) GetProvider(id string) (registry.ProviderRecord, bool) {
	return g.reg.Get(id)
}

// GetActiveProvider returns the active record, if any.
func (g *Gateway) GetActiveProvider() (registry.ProviderRecord, bool) {
	return g.reg.Active()
}

// GetHistory returns the bounded recent request view in dispatch order.
func (g *Gateway) GetHistory() []history.RequestRecord {
	return g.hist.Recent()
}

// PersistedHistory returns up to limit records from the durable request
// log, newest first. Zero means no limit.
func (g *Gateway) PersistedHistory(limit int) ([]history.RequestRecord, error) {
	if g.store == nil {
		return g.hist.Recent(), nil
	}
	return g.store.Requests(limit)
}

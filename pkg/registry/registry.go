package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tessera-ai/relay/pkg/providers"
)

// Registry is the in-memory store of provider records. It enforces the
// cross-record invariant that at most one record is active, and it is the
// only component allowed to mutate records.
//
// Registry is thread-safe. Every mutating call holds the write lock for
// its whole duration, so multi-record updates (SetActive clearing all other
// records) are atomic with respect to readers.
type Registry struct {
	mu       sync.RWMutex
	records  map[string]*ProviderRecord
	activeID string
	nextSeq  int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*ProviderRecord),
	}
}

// Add validates the spec and inserts a new record. New records start
// inactive, disconnected, with zero usage.
func (r *Registry) Add(spec Spec) (ProviderRecord, error) {
	if !spec.Family.Valid() {
		return ProviderRecord{}, &providers.ValidationError{
			Field:   "family",
			Message: "a valid provider family is required",
		}
	}
	if spec.BaseURL == "" {
		return ProviderRecord{}, &providers.ValidationError{
			Field:   "baseUrl",
			Message: "base URL is required",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &ProviderRecord{
		ID:         uuid.NewString(),
		Name:       spec.Name,
		Family:     spec.Family,
		BaseURL:    spec.BaseURL,
		Credential: spec.Credential,
		Models:     append([]string(nil), spec.Models...),
		seq:        r.nextSeq,
	}
	r.nextSeq++
	r.records[rec.ID] = rec

	slog.Info("provider added",
		"provider", rec.Name,
		"family", rec.Family,
		"id", rec.ID,
		"total_providers", len(r.records),
	)

	return rec.clone(), nil
}

// Update merges the patch into an existing record. The whole patch is
// validated before any field is applied: a rejected patch leaves the record
// exactly as it was.
func (r *Registry) Update(id string, patch Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	if patch.Family != nil && *patch.Family != rec.Family {
		return &providers.ValidationError{
			Field:   "family",
			Message: "family is immutable; delete and recreate the provider to change it",
		}
	}
	if patch.BaseURL != nil && *patch.BaseURL == "" {
		return &providers.ValidationError{
			Field:   "baseUrl",
			Message: "base URL must not be empty",
		}
	}

	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.BaseURL != nil {
		rec.BaseURL = *patch.BaseURL
	}
	if patch.Credential != nil {
		rec.Credential = *patch.Credential
	}
	if patch.Models != nil {
		rec.Models = append([]string(nil), (*patch.Models)...)
	}

	return nil
}

// Delete removes a record. If the deleted record was active, the active
// pointer moves to the surviving record with the lowest insertion order,
// or to none when the registry is empty.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	wasActive := rec.Active
	delete(r.records, id)

	if wasActive {
		r.activeID = ""
		if next := r.lowestSeqLocked(); next != nil {
			next.Active = true
			r.activeID = next.ID
			slog.Info("active provider reassigned",
				"provider", next.Name,
				"id", next.ID,
			)
		}
	}

	slog.Info("provider deleted",
		"provider", rec.Name,
		"id", id,
		"remaining_providers", len(r.records),
	)

	return nil
}

// SetActive marks the target record active and clears the flag on every
// other record in the same critical section.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.records[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	for _, rec := range r.records {
		rec.Active = false
	}
	target.Active = true
	r.activeID = id

	return nil
}

// ClearActive clears the active flag on every record.
func (r *Registry) ClearActive() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		rec.Active = false
	}
	r.activeID = ""
}

// Get returns a copy of the record with the given id.
func (r *Registry) Get(id string) (ProviderRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return ProviderRecord{}, false
	}
	return rec.clone(), true
}

// List returns copies of all records in insertion order.
func (r *Registry) List() []ProviderRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// ActiveID returns the id of the active provider, or "" if none.
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// Active returns a copy of the active record, if any.
func (r *Registry) Active() (ProviderRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activeID == "" {
		return ProviderRecord{}, false
	}
	rec, ok := r.records[r.activeID]
	if !ok {
		return ProviderRecord{}, false
	}
	return rec.clone(), true
}

// SetConnected records the result of a connection probe.
func (r *Registry) SetConnected(id string, connected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	rec.Connected = connected
	return nil
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Replace atomically swaps the whole registry contents for the given
// records, reassigning insertion order from slice order. It is used by
// configuration import and startup load. The records must already carry
// ids; activeID must be "" or match one of them.
func (r *Registry) Replace(records []ProviderRecord, activeID string) error {
	fresh := make(map[string]*ProviderRecord, len(records))
	var seq int64
	for i := range records {
		rec := records[i].clone()
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if !rec.Family.Valid() {
			return &providers.ValidationError{
				Field:   "family",
				Message: "record " + rec.ID + " has an unknown family",
			}
		}
		rec.Active = false
		rec.seq = seq
		seq++
		fresh[rec.ID] = &rec
	}

	if activeID != "" {
		rec, ok := fresh[activeID]
		if !ok {
			return &providers.ValidationError{
				Field:   "activeProviderId",
				Message: "active provider id does not match any record",
			}
		}
		rec.Active = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = fresh
	r.activeID = activeID
	r.nextSeq = seq

	return nil
}

// lowestSeqLocked returns the record with the lowest insertion order.
// Callers must hold the write lock.
func (r *Registry) lowestSeqLocked() *ProviderRecord {
	var lowest *ProviderRecord
	for _, rec := range r.records {
		if lowest == nil || rec.seq < lowest.seq {
			lowest = rec
		}
	}
	return lowest
}

// RecordUsage increments a provider's usage totals after a completed
// request and stamps LastUsed. A vanished provider id (deleted or replaced
// by an import while the request was in flight) is a silent no-op: the
// request record remains in history, but there is no provider left to
// charge.
func (r *Registry) RecordUsage(id string, tokens int, cost float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		slog.Debug("usage for vanished provider dropped", "id", id)
		return
	}

	rec.Usage.Requests++
	rec.Usage.Tokens += int64(tokens)
	rec.Usage.Cost += cost
	now := time.Now()
	rec.LastUsed = &now
}

// ResetUsage zeroes a provider's usage totals.
func (r *Registry) ResetUsage(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	rec.Usage = Usage{}
	rec.LastUsed = nil
	return nil
}

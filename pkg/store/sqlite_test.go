package store

import (
	"path/filepath"
	"testing"
	"time"

	"tessera-ai/relay/pkg/history"
	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/registry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testRecords() []registry.ProviderRecord {
	used := time.Unix(0, 1724600000000000000)
	return []registry.ProviderRecord{
		{
			ID:        "p1",
			Name:      "local-llm",
			Family:    providers.FamilyLocal,
			BaseURL:   "http://localhost:11434",
			Models:    []string{"llama3", "mistral"},
			Connected: true,
			Usage:     registry.Usage{Requests: 3, Tokens: 450, Cost: 0},
			LastUsed:  &used,
		},
		{
			ID:         "p2",
			Name:       "openai",
			Family:     providers.FamilyVendorChat,
			BaseURL:    "https://api.openai.com/v1",
			Credential: "sk-test",
			Models:     []string{"gpt-4o"},
			Usage:      registry.Usage{Requests: 1, Tokens: 120, Cost: 0.0024},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := newTestStore(t)

	if err := st.SaveSnapshot(testRecords(), "p2"); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	records, activeID, err := st.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if activeID != "p2" {
		t.Errorf("expected active id p2, got %q", activeID)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Order follows the saved slice.
	if records[0].ID != "p1" || records[1].ID != "p2" {
		t.Errorf("expected order [p1 p2], got [%s %s]", records[0].ID, records[1].ID)
	}

	got := records[0]
	if got.Name != "local-llm" || got.Family != providers.FamilyLocal {
		t.Errorf("record fields lost: %+v", got)
	}
	if len(got.Models) != 2 || got.Models[0] != "llama3" {
		t.Errorf("models lost: %v", got.Models)
	}
	if !got.Connected {
		t.Error("connected flag lost")
	}
	if got.Usage.Requests != 3 || got.Usage.Tokens != 450 {
		t.Errorf("usage lost: %+v", got.Usage)
	}
	if got.LastUsed == nil || !got.LastUsed.Equal(time.Unix(0, 1724600000000000000)) {
		t.Errorf("last used lost: %v", got.LastUsed)
	}

	if records[1].Credential != "sk-test" {
		t.Error("credential lost")
	}
	if records[1].LastUsed != nil {
		t.Error("expected nil LastUsed for never-used provider")
	}
}

func TestSnapshotFullRewrite(t *testing.T) {
	st := newTestStore(t)

	if err := st.SaveSnapshot(testRecords(), "p1"); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// A later save replaces the previous snapshot entirely.
	if err := st.SaveSnapshot(testRecords()[:1], ""); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	records, activeID, err := st.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
	if activeID != "" {
		t.Errorf("expected no active id, got %q", activeID)
	}
}

func TestLoadSnapshotFreshDatabase(t *testing.T) {
	st := newTestStore(t)

	records, activeID, err := st.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot on fresh db failed: %v", err)
	}
	if len(records) != 0 || activeID != "" {
		t.Errorf("expected empty snapshot, got %d records, active %q", len(records), activeID)
	}
}

func TestRequestLog(t *testing.T) {
	st := newTestStore(t)

	base := time.Now().Truncate(time.Second)
	for i, id := range []string{"r1", "r2", "r3"} {
		rec := history.RequestRecord{
			ID:           id,
			ProviderID:   "p1",
			ProviderName: "local-llm",
			Model:        "llama3",
			Prompt:       "hello",
			Timestamp:    base.Add(time.Duration(i) * time.Second),
			Status:       history.StatusPending,
		}
		if err := st.AppendRequest(rec); err != nil {
			t.Fatalf("AppendRequest failed: %v", err)
		}
	}

	// Terminal state lands via update.
	final := history.RequestRecord{
		ID:       "r2",
		Status:   history.StatusCompleted,
		Response: "world",
		Tokens:   17,
		Cost:     0.001,
		Duration: 120 * time.Millisecond,
	}
	if err := st.UpdateRequest(final); err != nil {
		t.Fatalf("UpdateRequest failed: %v", err)
	}

	records, err := st.Requests(10)
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Newest first.
	if records[0].ID != "r3" || records[2].ID != "r1" {
		t.Errorf("expected newest-first order, got [%s %s %s]", records[0].ID, records[1].ID, records[2].ID)
	}

	for _, rec := range records {
		if rec.ID != "r2" {
			continue
		}
		if rec.Status != history.StatusCompleted || rec.Response != "world" {
			t.Errorf("updated record not persisted: %+v", rec)
		}
		if rec.Duration != 120*time.Millisecond {
			t.Errorf("expected duration 120ms, got %s", rec.Duration)
		}
	}

	limited, err := st.Requests(2)
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected limit to apply, got %d records", len(limited))
	}
}

func TestClearRequests(t *testing.T) {
	st := newTestStore(t)

	if err := st.AppendRequest(history.RequestRecord{ID: "r1", Timestamp: time.Now(), Status: history.StatusPending}); err != nil {
		t.Fatalf("AppendRequest failed: %v", err)
	}
	if err := st.ClearRequests(); err != nil {
		t.Fatalf("ClearRequests failed: %v", err)
	}

	records, err := st.Requests(10)
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty log, got %d records", len(records))
	}
}

func TestPruneRequests(t *testing.T) {
	st := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()
	if err := st.AppendRequest(history.RequestRecord{ID: "old", Timestamp: old, Status: history.StatusCompleted}); err != nil {
		t.Fatalf("AppendRequest failed: %v", err)
	}
	if err := st.AppendRequest(history.RequestRecord{ID: "recent", Timestamp: recent, Status: history.StatusCompleted}); err != nil {
		t.Fatalf("AppendRequest failed: %v", err)
	}

	pruned, err := st.PruneRequests(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneRequests failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 pruned record, got %d", pruned)
	}

	records, err := st.Requests(10)
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "recent" {
		t.Errorf("expected only recent record, got %+v", records)
	}
}

package history

import (
	"fmt"
	"testing"
	"time"
)

func pendingRecord(id string) RequestRecord {
	return RequestRecord{
		ID:           id,
		ProviderID:   "prov-1",
		ProviderName: "test",
		Model:        "test-model",
		Prompt:       "hello",
		Timestamp:    time.Now(),
		Status:       StatusPending,
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	log := NewLog(3)

	for i := 0; i < 5; i++ {
		log.Append(pendingRecord(fmt.Sprintf("req-%d", i)))
	}

	if log.Len() != 3 {
		t.Fatalf("expected 3 retained records, got %d", log.Len())
	}

	recent := log.Recent()
	want := []string{"req-2", "req-3", "req-4"}
	for i, id := range want {
		if recent[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, recent[i].ID, id)
		}
	}

	if _, ok := log.Get("req-0"); ok {
		t.Error("evicted record still retrievable")
	}
}

func TestDispatchOrderPreserved(t *testing.T) {
	log := NewLog(10)
	log.Append(pendingRecord("slow"))
	log.Append(pendingRecord("fast"))

	// The later request finishes first; order must not change.
	if err := log.Complete("fast", "done", 10, 0.001, time.Millisecond); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := log.Complete("slow", "done", 10, 0.001, time.Second); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	recent := log.Recent()
	if recent[0].ID != "slow" || recent[1].ID != "fast" {
		t.Errorf("expected dispatch order [slow fast], got [%s %s]", recent[0].ID, recent[1].ID)
	}
}

func TestCompleteFillsResult(t *testing.T) {
	log := NewLog(10)
	log.Append(pendingRecord("req-1"))

	if err := log.Complete("req-1", "the answer", 42, 0.0042, 150*time.Millisecond); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	rec, ok := log.Get("req-1")
	if !ok {
		t.Fatal("record not found")
	}
	if rec.Status != StatusCompleted {
		t.Errorf("expected status completed, got %s", rec.Status)
	}
	if rec.Response != "the answer" || rec.Tokens != 42 || rec.Cost != 0.0042 {
		t.Errorf("result fields not filled: %+v", rec)
	}
	if rec.Duration != 150*time.Millisecond {
		t.Errorf("expected duration 150ms, got %s", rec.Duration)
	}
}

func TestSingleTerminalTransition(t *testing.T) {
	log := NewLog(10)
	log.Append(pendingRecord("req-1"))

	if err := log.Complete("req-1", "done", 1, 0, time.Millisecond); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// A terminal record never transitions again.
	if err := log.Fail("req-1", "late error"); err == nil {
		t.Error("expected error failing a completed record")
	}
	if err := log.Complete("req-1", "again", 2, 0, time.Millisecond); err == nil {
		t.Error("expected error completing a completed record")
	}

	rec, _ := log.Get("req-1")
	if rec.Status != StatusCompleted || rec.Response != "done" {
		t.Errorf("terminal record mutated: %+v", rec)
	}
}

func TestFail(t *testing.T) {
	log := NewLog(10)
	log.Append(pendingRecord("req-1"))

	if err := log.Fail("req-1", "backend unreachable"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	rec, _ := log.Get("req-1")
	if rec.Status != StatusFailed {
		t.Errorf("expected status failed, got %s", rec.Status)
	}
	if rec.Error != "backend unreachable" {
		t.Errorf("expected error text, got %q", rec.Error)
	}
	if rec.Response != "" {
		t.Errorf("failed record must carry no response, got %q", rec.Response)
	}
}

func TestCompleteEvictedRecordIsNoOp(t *testing.T) {
	log := NewLog(1)
	log.Append(pendingRecord("old"))
	log.Append(pendingRecord("new"))

	// "old" was evicted while its request was still in flight.
	if err := log.Complete("old", "late result", 5, 0.001, time.Millisecond); err != nil {
		t.Errorf("completing an evicted record must be a no-op, got %v", err)
	}
	if log.Len() != 1 {
		t.Errorf("expected 1 record, got %d", log.Len())
	}
}

func TestClear(t *testing.T) {
	log := NewLog(10)
	log.Append(pendingRecord("req-1"))
	log.Append(pendingRecord("req-2"))

	log.Clear()

	if log.Len() != 0 {
		t.Errorf("expected empty log, got %d records", log.Len())
	}
	if log.Capacity() != 10 {
		t.Errorf("capacity must survive clear, got %d", log.Capacity())
	}
}

func TestMinimumCapacity(t *testing.T) {
	log := NewLog(0)
	log.Append(pendingRecord("req-1"))

	if log.Capacity() != 1 {
		t.Errorf("expected capacity floor of 1, got %d", log.Capacity())
	}
	if log.Len() != 1 {
		t.Errorf("expected 1 record, got %d", log.Len())
	}
}

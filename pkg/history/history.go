// Package history keeps the bounded, insertion-ordered log of request
// outcomes. The log preserves dispatch order, not completion order: a slow
// request keeps its original slot even when later requests finish first.
// When the log is full the oldest record is evicted before a new one is
// appended.
package history

import (
	"fmt"
	"sync"
	"time"
)

// Status is a request's lifecycle state. A record is created pending and
// transitions exactly once to completed or failed.
type Status string

const (
	// StatusPending means the request has been dispatched but has not
	// finished.
	StatusPending Status = "pending"

	// StatusCompleted means the backend returned a response.
	StatusCompleted Status = "completed"

	// StatusFailed means the request ended with an error.
	StatusFailed Status = "failed"
)

// RequestRecord is one dispatched completion attempt. ProviderID is the
// provider in effect at dispatch time; it is not updated if the provider is
// later deleted, so old records may carry dangling references.
type RequestRecord struct {
	ID           string        `json:"id"`
	ProviderID   string        `json:"providerId"`
	ProviderName string        `json:"providerName"`
	Model        string        `json:"model"`
	Prompt       string        `json:"prompt"`
	Timestamp    time.Time     `json:"timestamp"`
	Status       Status        `json:"status"`
	Response     string        `json:"response,omitempty"`
	Tokens       int           `json:"tokens,omitempty"`
	Cost         float64       `json:"cost,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Log is the bounded FIFO of request records. It is thread-safe.
type Log struct {
	mu       sync.Mutex
	capacity int
	records  []*RequestRecord
}

// NewLog creates a log holding at most capacity records.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{
		capacity: capacity,
		records:  make([]*RequestRecord, 0, capacity),
	}
}

// Append inserts a record, evicting the oldest one first when the log is
// full.
func (l *Log) Append(rec RequestRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) >= l.capacity {
		evict := len(l.records) - l.capacity + 1
		l.records = append(l.records[:0], l.records[evict:]...)
	}

	stored := rec
	l.records = append(l.records, &stored)
}

// Complete transitions a pending record to completed and fills in the
// result fields. Records already in a terminal state are never transitioned
// again; a record evicted before its request finished is a silent no-op.
func (l *Log) Complete(id, response string, tokens int, cost float64, duration time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.findLocked(id)
	if rec == nil {
		return nil
	}
	if rec.Status != StatusPending {
		return fmt.Errorf("request %s is already %s", id, rec.Status)
	}

	rec.Status = StatusCompleted
	rec.Response = response
	rec.Tokens = tokens
	rec.Cost = cost
	rec.Duration = duration
	return nil
}

// Fail transitions a pending record to failed with the given error text.
func (l *Log) Fail(id, errText string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.findLocked(id)
	if rec == nil {
		return nil
	}
	if rec.Status != StatusPending {
		return fmt.Errorf("request %s is already %s", id, rec.Status)
	}

	rec.Status = StatusFailed
	rec.Error = errText
	return nil
}

// Get returns a copy of the record with the given id.
func (l *Log) Get(id string) (RequestRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.findLocked(id)
	if rec == nil {
		return RequestRecord{}, false
	}
	return *rec, true
}

// Recent returns copies of all retained records in dispatch order, oldest
// first.
func (l *Log) Recent() []RequestRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]RequestRecord, len(l.records))
	for i, rec := range l.records {
		out[i] = *rec
	}
	return out
}

// Clear empties the log unconditionally.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = l.records[:0]
}

// Len returns the number of retained records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Capacity returns the configured maximum.
func (l *Log) Capacity() int {
	return l.capacity
}

// findLocked locates a record by id. Callers must hold the mutex.
func (l *Log) findLocked(id string) *RequestRecord {
	for _, rec := range l.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

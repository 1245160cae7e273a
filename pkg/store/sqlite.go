package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tessera-ai/relay/pkg/history"
	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/registry"
)

// activeKey is the settings row holding the active provider pointer.
const activeKey = "active_provider_id"

// Store is the SQLite-backed persistence layer. It holds the registry
// snapshot (providers table plus the active pointer) and the durable
// request log, which retains more than the in-memory history view and is
// pruned by the retention job.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore opens (or creates) the database at path and initializes the
// schema. WAL mode is enabled for concurrent readers.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &PersistenceError{Op: "open", Cause: err}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Cause: err}
	}

	s := &Store{
		db:     db,
		path:   path,
		logger: slog.Default().With("component", "store"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("store initialized", "path", path)
	return s, nil
}

// initialize enables WAL mode and creates the schema.
func (s *Store) initialize() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return &PersistenceError{Op: "open", Cause: fmt.Errorf("%s: %w", pragma, err)}
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS providers (
    id             TEXT PRIMARY KEY,
    position       INTEGER NOT NULL,
    name           TEXT NOT NULL,
    family         TEXT NOT NULL,
    base_url       TEXT NOT NULL,
    credential     TEXT NOT NULL DEFAULT '',
    models         TEXT NOT NULL DEFAULT '[]',
    is_connected   INTEGER NOT NULL DEFAULT 0,
    usage_requests INTEGER NOT NULL DEFAULT 0,
    usage_tokens   INTEGER NOT NULL DEFAULT 0,
    usage_cost     REAL NOT NULL DEFAULT 0,
    last_used      INTEGER
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
    id            TEXT PRIMARY KEY,
    provider_id   TEXT NOT NULL,
    provider_name TEXT NOT NULL DEFAULT '',
    model         TEXT NOT NULL,
    prompt        TEXT NOT NULL,
    timestamp     INTEGER NOT NULL,
    status        TEXT NOT NULL,
    response      TEXT NOT NULL DEFAULT '',
    tokens        INTEGER NOT NULL DEFAULT 0,
    cost          REAL NOT NULL DEFAULT 0,
    duration_ns   INTEGER NOT NULL DEFAULT 0,
    error         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON requests(timestamp);
`
	if _, err := s.db.Exec(schema); err != nil {
		return &PersistenceError{Op: "open", Cause: err}
	}

	return nil
}

// SaveSnapshot rewrites the persisted registry snapshot inside one
// transaction. Records are stored in slice order so a later load restores
// insertion order.
func (s *Store) SaveSnapshot(records []registry.ProviderRecord, activeID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "save", Cause: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM providers"); err != nil {
		return &PersistenceError{Op: "save", Cause: err}
	}

	stmt, err := tx.Prepare(`
INSERT INTO providers
    (id, position, name, family, base_url, credential, models,
     is_connected, usage_requests, usage_tokens, usage_cost, last_used)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &PersistenceError{Op: "save", Cause: err}
	}
	defer stmt.Close()

	for i, rec := range records {
		models, err := json.Marshal(rec.Models)
		if err != nil {
			return &PersistenceError{Op: "save", Cause: err}
		}

		var lastUsed interface{}
		if rec.LastUsed != nil {
			lastUsed = rec.LastUsed.UnixNano()
		}

		if _, err := stmt.Exec(
			rec.ID, i, rec.Name, string(rec.Family), rec.BaseURL, rec.Credential,
			string(models), boolToInt(rec.Connected),
			rec.Usage.Requests, rec.Usage.Tokens, rec.Usage.Cost, lastUsed,
		); err != nil {
			return &PersistenceError{Op: "save", Cause: err}
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		activeKey, activeID,
	); err != nil {
		return &PersistenceError{Op: "save", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Cause: err}
	}

	return nil
}

// LoadSnapshot reads the persisted registry snapshot. A fresh database
// yields an empty slice and no active id rather than an error.
func (s *Store) LoadSnapshot() ([]registry.ProviderRecord, string, error) {
	rows, err := s.db.Query(`
SELECT id, name, family, base_url, credential, models,
       is_connected, usage_requests, usage_tokens, usage_cost, last_used
FROM providers ORDER BY position`)
	if err != nil {
		return nil, "", &PersistenceError{Op: "load", Cause: err}
	}
	defer rows.Close()

	var records []registry.ProviderRecord
	for rows.Next() {
		var rec registry.ProviderRecord
		var family, models string
		var connected int
		var lastUsed sql.NullInt64

		if err := rows.Scan(
			&rec.ID, &rec.Name, &family, &rec.BaseURL, &rec.Credential, &models,
			&connected, &rec.Usage.Requests, &rec.Usage.Tokens, &rec.Usage.Cost, &lastUsed,
		); err != nil {
			return nil, "", &PersistenceError{Op: "load", Cause: err}
		}

		rec.Family = providers.Family(family)
		rec.Connected = connected != 0
		if err := json.Unmarshal([]byte(models), &rec.Models); err != nil {
			return nil, "", &PersistenceError{Op: "load", Cause: err}
		}
		if lastUsed.Valid {
			t := time.Unix(0, lastUsed.Int64)
			rec.LastUsed = &t
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", &PersistenceError{Op: "load", Cause: err}
	}

	var activeID string
	err = s.db.QueryRow("SELECT value FROM settings WHERE key = ?", activeKey).Scan(&activeID)
	if err != nil && err != sql.ErrNoRows {
		return nil, "", &PersistenceError{Op: "load", Cause: err}
	}

	return records, activeID, nil
}

// AppendRequest adds one request record to the durable log.
func (s *Store) AppendRequest(rec history.RequestRecord) error {
	_, err := s.db.Exec(`
INSERT INTO requests
    (id, provider_id, provider_name, model, prompt, timestamp, status,
     response, tokens, cost, duration_ns, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProviderID, rec.ProviderName, rec.Model, rec.Prompt,
		rec.Timestamp.UnixNano(), string(rec.Status),
		rec.Response, rec.Tokens, rec.Cost, int64(rec.Duration), rec.Error,
	)
	if err != nil {
		return &PersistenceError{Op: "append request", Cause: err}
	}
	return nil
}

// UpdateRequest persists a request's terminal state.
func (s *Store) UpdateRequest(rec history.RequestRecord) error {
	_, err := s.db.Exec(`
UPDATE requests
SET status = ?, response = ?, tokens = ?, cost = ?, duration_ns = ?, error = ?
WHERE id = ?`,
		string(rec.Status), rec.Response, rec.Tokens, rec.Cost,
		int64(rec.Duration), rec.Error, rec.ID,
	)
	if err != nil {
		return &PersistenceError{Op: "update request", Cause: err}
	}
	return nil
}

// Requests returns up to limit request records from the durable log,
// newest first. A zero limit means no limit.
func (s *Store) Requests(limit int) ([]history.RequestRecord, error) {
	query := `
SELECT id, provider_id, provider_name, model, prompt, timestamp, status,
       response, tokens, cost, duration_ns, error
FROM requests ORDER BY timestamp DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "query requests", Cause: err}
	}
	defer rows.Close()

	var records []history.RequestRecord
	for rows.Next() {
		var rec history.RequestRecord
		var ts, durationNS int64
		var status string

		if err := rows.Scan(
			&rec.ID, &rec.ProviderID, &rec.ProviderName, &rec.Model, &rec.Prompt,
			&ts, &status, &rec.Response, &rec.Tokens, &rec.Cost, &durationNS, &rec.Error,
		); err != nil {
			return nil, &PersistenceError{Op: "query requests", Cause: err}
		}

		rec.Timestamp = time.Unix(0, ts)
		rec.Status = history.Status(status)
		rec.Duration = time.Duration(durationNS)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query requests", Cause: err}
	}

	return records, nil
}

// ClearRequests empties the durable request log.
func (s *Store) ClearRequests() error {
	if _, err := s.db.Exec("DELETE FROM requests"); err != nil {
		return &PersistenceError{Op: "clear requests", Cause: err}
	}
	return nil
}

// PruneRequests deletes request records older than the cutoff and returns
// how many were removed. The retention job calls this on a schedule.
func (s *Store) PruneRequests(before time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM requests WHERE timestamp < ?", before.UnixNano())
	if err != nil {
		return 0, &PersistenceError{Op: "prune requests", Cause: err}
	}

	pruned, _ := res.RowsAffected()
	if pruned > 0 {
		s.logger.Info("pruned request log", "removed", pruned, "before", before)
	}
	return pruned, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// boolToInt converts a bool to its SQLite integer form.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package store is the durable persistence layer: a SQLite snapshot of the
// provider registry and active pointer, a request log that outlives the
// bounded in-memory history view, and the portable export/import document
// format.
//
// Persistence is best-effort relative to in-memory state: a failed write
// surfaces a PersistenceError but never rolls back the mutation that
// triggered it.
package store

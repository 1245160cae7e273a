// Package registry owns the in-memory provider records and the
// single-active-provider invariant: across the whole registry at most one
// record is active at any time, enforced atomically on every mutating call.
// It also carries the usage ledger operations, since usage totals live on
// the records it owns.
package registry

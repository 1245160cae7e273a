// Package gateway is the facade in front of the provider registry, the
// request history, the cost model, and the protocol adapters. Callers
// (the CLI, or any embedding application) use only this package's
// operations; every mutating operation writes through to the store and
// emits a single state-change snapshot to subscribers.
package gateway

// Package providers defines the adapter contract shared by all backend
// families, the closed set of families, the normalized request/response
// shapes, and the typed errors produced while talking to a backend.
//
// Each family (local, aggregator, vendor-chat, vendor-message, custom) has
// its own subpackage implementing the Adapter interface. Family-specific
// wire formats never leak past an adapter: callers see CompletionRequest
// in and CompletionResponse out, regardless of the backend.
//
// The Client type provides the shared HTTP plumbing (connection pooling,
// context-aware requests, JSON encode/decode) used by every adapter.
// Requests are single-attempt: failures are surfaced to the caller, never
// retried.
package providers

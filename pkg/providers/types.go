package providers

import "context"

// Endpoint is the subset of a provider record an adapter needs to reach a
// backend. The registry owns the full record; adapters only ever see this
// projection.
type Endpoint struct {
	// Name is the provider's human label, used in error messages and logs.
	Name string

	// BaseURL is the endpoint root, without a trailing slash.
	BaseURL string

	// Credential is the bearer token or API key. Empty for backends that
	// do not authenticate (local) or when the caller omitted it (custom).
	Credential string

	// DefaultModel is the provider's first configured model. Adapters that
	// need a model for a cheap health probe use it.
	DefaultModel string
}

// CompletionRequest is the normalized completion call shape. Adapters
// translate it into their family's wire format.
type CompletionRequest struct {
	// Model is the backend model identifier.
	Model string

	// Prompt is the user prompt. The gateway sends single-prompt requests;
	// adapters for chat-shaped APIs wrap it in a single user message.
	Prompt string

	// MaxTokens caps the generated output where the family supports it.
	// Zero means the adapter's default.
	MaxTokens int
}

// CompletionResponse is the normalized result of a completion call.
type CompletionResponse struct {
	// Content is the generated text.
	Content string

	// InputTokens and OutputTokens are the prompt and completion token
	// counts as reported by the backend. Zero when the backend does not
	// report them.
	InputTokens  int
	OutputTokens int

	// TotalTokens is the backend-reported total, or the sum of input and
	// output counts when the backend reports them separately.
	TotalTokens int
}

// Adapter translates between the gateway's normalized call shapes and one
// family's wire format. Implementations are stateless beyond their shared
// HTTP client and safe for concurrent use.
type Adapter interface {
	// Probe issues the family's health-check call. A nil return means the
	// backend is reachable and responded with success. Probe must respect
	// context cancellation and never block past the context deadline.
	Probe(ctx context.Context, ep Endpoint) error

	// Complete issues the family's completion call and parses the response
	// into the normalized shape. Errors are *TransportError when the
	// backend could not be reached and *BackendError when it responded
	// with a non-success status or a malformed payload.
	Complete(ctx context.Context, ep Endpoint, req *CompletionRequest) (*CompletionResponse, error)
}

// Package aggregator implements the adapter for the aggregator family:
// multi-model aggregators exposing a chat-completions API behind a bearer
// token plus app-attribution headers (OpenRouter-style).
//
// The wire format is identical to vendor-chat, so this adapter wraps the
// vendorchat adapter and adds the attribution headers.
package aggregator

import (
	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/providers/vendorchat"
)

const (
	// attributionReferer identifies the calling application to the
	// aggregator for ranking and rate-limit attribution.
	attributionReferer = "https://tessera.ai/relay"

	// attributionTitle is the human-readable application name.
	attributionTitle = "Tessera Relay"
)

// Adapter translates normalized calls into the aggregator wire format.
type Adapter struct {
	*vendorchat.Adapter
}

// New creates an aggregator adapter backed by the shared client.
func New(client *providers.Client) *Adapter {
	return &Adapter{
		Adapter: vendorchat.NewWithHeaders(client, map[string]string{
			"HTTP-Referer": attributionReferer,
			"X-Title":      attributionTitle,
		}),
	}
}

// Package providerfactory maps provider families onto their protocol
// adapters. The mapping is an exhaustive switch over the closed family set,
// so adding a family is a compile-visible change here rather than a string
// comparison scattered through the gateway.
package providerfactory

import (
	"fmt"

	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/providers/aggregator"
	"tessera-ai/relay/pkg/providers/custom"
	"tessera-ai/relay/pkg/providers/local"
	"tessera-ai/relay/pkg/providers/vendorchat"
	"tessera-ai/relay/pkg/providers/vendormsg"
)

// New builds one adapter per family, all sharing the given HTTP client.
// The returned map is complete: every valid family has an adapter.
func New(client *providers.Client) map[providers.Family]providers.Adapter {
	return map[providers.Family]providers.Adapter{
		providers.FamilyLocal:         local.New(client),
		providers.FamilyAggregator:    aggregator.New(client),
		providers.FamilyVendorChat:    vendorchat.New(client),
		providers.FamilyVendorMessage: vendormsg.New(client),
		providers.FamilyCustom:        custom.New(client),
	}
}

// ForFamily returns the adapter for a single family.
func ForFamily(f providers.Family, client *providers.Client) (providers.Adapter, error) {
	switch f {
	case providers.FamilyLocal:
		return local.New(client), nil
	case providers.FamilyAggregator:
		return aggregator.New(client), nil
	case providers.FamilyVendorChat:
		return vendorchat.New(client), nil
	case providers.FamilyVendorMessage:
		return vendormsg.New(client), nil
	case providers.FamilyCustom:
		return custom.New(client), nil
	default:
		return nil, &providers.ValidationError{
			Field:   "family",
			Message: fmt.Sprintf("unsupported provider family: %q", f),
		}
	}
}

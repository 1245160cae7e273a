package costs

import (
	"strings"
	"sync"

	"tessera-ai/relay/pkg/config"
	"tessera-ai/relay/pkg/providers"
)

// Calculator computes request costs from static pricing tables. It is pure
// with respect to its inputs: the same (family, model, token counts) triple
// always yields the same non-negative cost. It is thread-safe and supports
// hot-reload of pricing configuration.
type Calculator struct {
	mu  sync.RWMutex
	cfg *config.CostsConfig
}

// NewCalculator creates a cost calculator with the given pricing tables.
func NewCalculator(cfg *config.CostsConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Rate is the resolved price of one model, USD per 1000 tokens.
type Rate struct {
	// Input is the prompt-token rate for split-billing families.
	Input float64

	// Output is the completion-token rate for split-billing families.
	Output float64

	// Flat is the all-tokens rate for flat-billing families.
	Flat float64
}

// Lookup resolves the rate for a (family, model) pair. Resolution order:
// exact model match, longest model prefix match (so "gpt-4" covers
// "gpt-4-0613", but "gpt-4-turbo" wins for "gpt-4-turbo-x"), then the
// configured default rate. Unknown models never fail a request; they fall
// back to the conservative default.
func (c *Calculator) Lookup(family providers.Family, model string) Rate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if familyPricing, ok := c.cfg.Pricing[string(family)]; ok {
		if rc, ok := familyPricing[model]; ok {
			return Rate{Input: rc.Input, Output: rc.Output, Flat: rc.Flat}
		}
		best := ""
		for pattern := range familyPricing {
			if strings.HasPrefix(model, pattern) && len(pattern) > len(best) {
				best = pattern
			}
		}
		if best != "" {
			rc := familyPricing[best]
			return Rate{Input: rc.Input, Output: rc.Output, Flat: rc.Flat}
		}
	}

	d := c.cfg.DefaultRate
	return Rate{Input: d.Input, Output: d.Output, Flat: d.Flat}
}

// Cost computes the USD cost of a completed request.
//
// The cost basis follows the family: local backends are free, custom
// backends have unspecified pricing and are not charged, the
// vendor-message family bills input and output tokens separately, and the
// remaining families bill a flat rate across all tokens.
func (c *Calculator) Cost(family providers.Family, model string, inputTokens, outputTokens int) float64 {
	switch family {
	case providers.FamilyLocal, providers.FamilyCustom:
		return 0
	}

	rate := c.Lookup(family, model)

	var cost float64
	if family == providers.FamilyVendorMessage {
		cost = tokenCost(inputTokens, rate.Input) + tokenCost(outputTokens, rate.Output)
	} else {
		cost = tokenCost(inputTokens+outputTokens, rate.Flat)
	}

	if cost < 0 {
		return 0
	}
	return cost
}

// UpdateTable replaces the pricing tables (hot-reload support). Safe to
// call while the calculator is in use.
func (c *Calculator) UpdateTable(cfg *config.CostsConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = cfg
}

// tokenCost converts a token count and a per-1K rate into USD.
func tokenCost(tokens int, ratePer1K float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return (float64(tokens) / 1000.0) * ratePer1K
}

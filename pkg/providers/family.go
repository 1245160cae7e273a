package providers

import "fmt"

// Family identifies the protocol family of a backend. It is a closed set:
// the family determines which adapter translates requests and which cost
// basis applies. A provider's family is fixed at creation; changing it
// requires delete and recreate.
type Family string

const (
	// FamilyLocal is a locally hosted backend (Ollama-style API).
	// No authentication, no cost.
	FamilyLocal Family = "local"

	// FamilyAggregator is a multi-model aggregator (OpenRouter-style API).
	// Bearer token plus attribution headers, flat per-token pricing.
	FamilyAggregator Family = "aggregator"

	// FamilyVendorChat is a first-party chat-completions vendor
	// (OpenAI-style API). Bearer token, flat per-token pricing per model.
	FamilyVendorChat Family = "vendor-chat"

	// FamilyVendorMessage is a first-party messages vendor
	// (Anthropic-style API). API-key header plus protocol-version header,
	// separate input/output token pricing.
	FamilyVendorMessage Family = "vendor-message"

	// FamilyCustom is a caller-defined backend with a pass-through call
	// shape. Optional bearer token, no cost accounting.
	FamilyCustom Family = "custom"
)

// Families returns all known families in a stable order.
func Families() []Family {
	return []Family{
		FamilyLocal,
		FamilyAggregator,
		FamilyVendorChat,
		FamilyVendorMessage,
		FamilyCustom,
	}
}

// Valid reports whether f is a member of the closed family set.
func (f Family) Valid() bool {
	switch f {
	case FamilyLocal, FamilyAggregator, FamilyVendorChat, FamilyVendorMessage, FamilyCustom:
		return true
	}
	return false
}

// ParseFamily converts a string into a Family, rejecting unknown values.
func ParseFamily(s string) (Family, error) {
	f := Family(s)
	if !f.Valid() {
		return "", &ValidationError{
			Field:   "family",
			Message: fmt.Sprintf("unknown provider family %q (supported: local, aggregator, vendor-chat, vendor-message, custom)", s),
		}
	}
	return f, nil
}

// String returns the family's wire representation.
func (f Family) String() string {
	return string(f)
}

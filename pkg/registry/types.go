package registry

import (
	"fmt"
	"time"

	"tessera-ai/relay/pkg/providers"
)

// Usage is a provider's running totals. Counters only grow, except on an
// explicit reset.
type Usage struct {
	// Requests is the number of completed requests.
	Requests int64 `json:"requests"`

	// Tokens is the total token count across completed requests.
	Tokens int64 `json:"tokens"`

	// Cost is the accumulated USD cost across completed requests.
	Cost float64 `json:"cost"`
}

// ProviderRecord is one configured backend. The registry exclusively owns
// records; accessors return copies.
type ProviderRecord struct {
	// ID is the opaque unique identifier, assigned at creation, immutable.
	ID string `json:"id"`

	// Name is the human label.
	Name string `json:"name"`

	// Family determines the protocol adapter and cost basis. Immutable
	// after creation; changing family requires delete and recreate.
	Family providers.Family `json:"family"`

	// BaseURL is the network endpoint root.
	BaseURL string `json:"baseUrl"`

	// Credential is the optional bearer token or API key.
	Credential string `json:"credential,omitempty"`

	// Models is the ordered list of model identifiers the backend offers.
	// The first model is the default for quick test actions.
	Models []string `json:"models"`

	// Active marks the single implicitly targeted provider. At most one
	// record in the registry is active.
	Active bool `json:"isActive"`

	// Connected is the last known reachability, refreshed only by an
	// explicit probe.
	Connected bool `json:"isConnected"`

	// Usage is the provider's running totals.
	Usage Usage `json:"usage"`

	// LastUsed is the time of the most recent completed request, nil if
	// the provider was never used.
	LastUsed *time.Time `json:"lastUsed,omitempty"`

	// seq is the insertion counter. List returns records in seq order and
	// active reassignment after a delete picks the lowest surviving seq.
	seq int64
}

// clone returns a deep copy safe to hand outside the registry.
func (r *ProviderRecord) clone() ProviderRecord {
	out := *r
	out.Models = append([]string(nil), r.Models...)
	if r.LastUsed != nil {
		t := *r.LastUsed
		out.LastUsed = &t
	}
	return out
}

// DefaultModel returns the first configured model, or "" if none.
func (r *ProviderRecord) DefaultModel() string {
	if len(r.Models) == 0 {
		return ""
	}
	return r.Models[0]
}

// Spec is the input to Add.
type Spec struct {
	Name       string
	Family     providers.Family
	BaseURL    string
	Credential string
	Models     []string
}

// Patch is the input to Update. Nil fields are left unchanged. Family is
// present only so attempts to change it can be rejected explicitly.
type Patch struct {
	Name       *string
	BaseURL    *string
	Credential *string
	Models     *[]string
	Family     *providers.Family
}

// NotFoundError reports an operation referencing an unknown provider id.
type NotFoundError struct {
	// ID is the provider id that could not be resolved
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider %q not found", e.ID)
}

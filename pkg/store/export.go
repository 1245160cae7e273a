package store

import (
	"encoding/json"
	"fmt"
	"time"

	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/registry"
)

// DocumentVersion is the format version tag written into exports.
const DocumentVersion = "1"

// Document is the portable configuration snapshot produced by export and
// accepted by import. Provider order in the Providers slice is meaningful:
// import restores it as insertion order.
type Document struct {
	// Version is the format version tag.
	Version string `json:"version"`

	// ExportedAt is when the document was produced.
	ExportedAt time.Time `json:"exportedAt"`

	// Providers is the full provider set.
	Providers []registry.ProviderRecord `json:"providers"`

	// ActiveProviderID is the active pointer, or nil when no provider is
	// active.
	ActiveProviderID *string `json:"activeProviderId"`
}

// ExportOptions controls what leaves the system in an export.
type ExportOptions struct {
	// RedactCredentials strips secrets from the exported records. Off by
	// default: a full export must round-trip through import without losing
	// the ability to reach backends.
	RedactCredentials bool
}

// Export builds a portable document from a registry snapshot.
func Export(records []registry.ProviderRecord, activeID string, opts ExportOptions) *Document {
	out := make([]registry.ProviderRecord, len(records))
	copy(out, records)

	if opts.RedactCredentials {
		for i := range out {
			out[i].Credential = ""
		}
	}

	doc := &Document{
		Version:    DocumentVersion,
		ExportedAt: time.Now().UTC(),
		Providers:  out,
	}
	if activeID != "" {
		doc.ActiveProviderID = &activeID
	}
	return doc
}

// rawDocument distinguishes an absent providers key from an empty array
// during import validation.
type rawDocument struct {
	Version          string          `json:"version"`
	ExportedAt       time.Time       `json:"exportedAt"`
	Providers        json.RawMessage `json:"providers"`
	ActiveProviderID *string         `json:"activeProviderId"`
}

// ParseDocument validates and decodes an import payload. The document must
// be a JSON object with a providers array; everything else is optional.
// Malformed payloads are rejected with a ValidationError before any state
// is touched.
func ParseDocument(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &providers.ValidationError{
			Field:   "document",
			Message: "configuration document is not valid JSON: " + err.Error(),
		}
	}

	if raw.Providers == nil {
		return nil, &providers.ValidationError{
			Field:   "providers",
			Message: "configuration document must contain a providers array",
		}
	}

	var records []registry.ProviderRecord
	if err := json.Unmarshal(raw.Providers, &records); err != nil {
		return nil, &providers.ValidationError{
			Field:   "providers",
			Message: "providers must be an array of provider records: " + err.Error(),
		}
	}

	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if !rec.Family.Valid() {
			return nil, &providers.ValidationError{
				Field:   "providers",
				Message: fmt.Sprintf("provider %d has an unknown family %q", i, rec.Family),
			}
		}
		if rec.BaseURL == "" {
			return nil, &providers.ValidationError{
				Field:   "providers",
				Message: fmt.Sprintf("provider %d is missing a base URL", i),
			}
		}
		if rec.ID != "" {
			if _, dup := seen[rec.ID]; dup {
				return nil, &providers.ValidationError{
					Field:   "providers",
					Message: fmt.Sprintf("provider %d duplicates id %q", i, rec.ID),
				}
			}
			seen[rec.ID] = struct{}{}
		}
	}

	return &Document{
		Version:          raw.Version,
		ExportedAt:       raw.ExportedAt,
		Providers:        records,
		ActiveProviderID: raw.ActiveProviderID,
	}, nil
}

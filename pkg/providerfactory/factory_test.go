package providerfactory

import (
	"errors"
	"testing"

	"tessera-ai/relay/pkg/providers"
)

func TestNewCoversAllFamilies(t *testing.T) {
	client := providers.NewClient(providers.DefaultClientConfig())
	defer client.Close()

	adapters := New(client)
	for _, family := range providers.Families() {
		if adapters[family] == nil {
			t.Errorf("no adapter for family %s", family)
		}
	}
	if len(adapters) != len(providers.Families()) {
		t.Errorf("expected %d adapters, got %d", len(providers.Families()), len(adapters))
	}
}

func TestForFamily(t *testing.T) {
	client := providers.NewClient(providers.DefaultClientConfig())
	defer client.Close()

	for _, family := range providers.Families() {
		adapter, err := ForFamily(family, client)
		if err != nil {
			t.Errorf("ForFamily(%s) failed: %v", family, err)
		}
		if adapter == nil {
			t.Errorf("ForFamily(%s) returned nil adapter", family)
		}
	}
}

func TestForFamilyUnknown(t *testing.T) {
	client := providers.NewClient(providers.DefaultClientConfig())
	defer client.Close()

	_, err := ForFamily("mainframe", client)

	var validationErr *providers.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

package aggregator

import (
	"context"
	"testing"

	"tessera-ai/relay/internal/gatewaytest"
	"tessera-ai/relay/pkg/providers"
)

func TestAdapter_AttributionHeaders(t *testing.T) {
	mock := gatewaytest.NewMockServer()
	defer mock.Close()

	client := providers.NewClient(providers.DefaultClientConfig())
	defer client.Close()
	adapter := New(client)

	mock.SetResponse("/chat/completions", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       gatewaytest.ChatResponseBody("routed reply", 5, 7),
	})

	ep := providers.Endpoint{
		Name:       "openrouter",
		BaseURL:    mock.URL(),
		Credential: "or-key",
	}
	resp, err := adapter.Complete(context.Background(), ep, &providers.CompletionRequest{
		Model:  "meta-llama/llama-3-70b",
		Prompt: "Hello",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Content != "routed reply" {
		t.Errorf("expected content %q, got %q", "routed reply", resp.Content)
	}

	// Aggregators get bearer auth plus the app attribution headers.
	headers := mock.LastHeaders()
	if got := headers.Get("Authorization"); got != "Bearer or-key" {
		t.Errorf("expected bearer auth, got %q", got)
	}
	if got := headers.Get("HTTP-Referer"); got != attributionReferer {
		t.Errorf("expected referer %q, got %q", attributionReferer, got)
	}
	if got := headers.Get("X-Title"); got != attributionTitle {
		t.Errorf("expected title %q, got %q", attributionTitle, got)
	}
}

func TestAdapter_ProbeSendsAttribution(t *testing.T) {
	mock := gatewaytest.NewMockServer()
	defer mock.Close()

	client := providers.NewClient(providers.DefaultClientConfig())
	defer client.Close()
	adapter := New(client)

	mock.SetResponse("/models", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       gatewaytest.ModelsResponseBody("meta-llama/llama-3-70b"),
	})

	ep := providers.Endpoint{Name: "openrouter", BaseURL: mock.URL(), Credential: "or-key"}
	if err := adapter.Probe(context.Background(), ep); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if got := mock.LastHeaders().Get("X-Title"); got != attributionTitle {
		t.Errorf("expected title header on probe, got %q", got)
	}
}

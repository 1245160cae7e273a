package vendorchat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tessera-ai/relay/internal/gatewaytest"
	"tessera-ai/relay/pkg/providers"
)

func newTestAdapter(t *testing.T) (*Adapter, *gatewaytest.MockServer) {
	t.Helper()
	mock := gatewaytest.NewMockServer()
	t.Cleanup(mock.Close)

	client := providers.NewClient(providers.DefaultClientConfig())
	t.Cleanup(client.Close)

	return New(client), mock
}

func TestAdapter_Complete(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/chat/completions", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       gatewaytest.ChatResponseBody("Hello, world!", 12, 8),
	})

	ep := providers.Endpoint{
		Name:       "openai",
		BaseURL:    mock.URL(),
		Credential: "sk-test",
	}
	resp, err := adapter.Complete(context.Background(), ep, &providers.CompletionRequest{
		Model:     "gpt-4o",
		Prompt:    "Hello",
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 8 {
		t.Errorf("expected tokens 12/8, got %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if resp.TotalTokens != 20 {
		t.Errorf("expected total tokens 20, got %d", resp.TotalTokens)
	}

	// Verify the outgoing wire format: single user message, bearer auth.
	if got := mock.LastHeaders().Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", got)
	}
	var sent providers.ChatRequest
	if err := json.Unmarshal(mock.LastBody(), &sent); err != nil {
		t.Fatalf("request body not valid JSON: %v", err)
	}
	if sent.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", sent.Model)
	}
	if len(sent.Messages) != 1 || sent.Messages[0].Role != providers.RoleUser {
		t.Errorf("expected one user message, got %+v", sent.Messages)
	}
	if sent.MaxTokens != 256 {
		t.Errorf("expected max tokens 256, got %d", sent.MaxTokens)
	}
}

func TestAdapter_CompleteNoChoices(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/chat/completions", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       map[string]interface{}{"choices": []interface{}{}},
	})

	ep := providers.Endpoint{Name: "openai", BaseURL: mock.URL()}
	_, err := adapter.Complete(context.Background(), ep, &providers.CompletionRequest{
		Model:  "gpt-4o",
		Prompt: "Hello",
	})

	var backendErr *providers.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}

func TestAdapter_CompleteBackendError(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/chat/completions", gatewaytest.MockResponse{
		StatusCode: 401,
		Body:       `{"error": {"message": "invalid api key"}}`,
	})

	ep := providers.Endpoint{Name: "openai", BaseURL: mock.URL(), Credential: "bad"}
	_, err := adapter.Complete(context.Background(), ep, &providers.CompletionRequest{
		Model:  "gpt-4o",
		Prompt: "Hello",
	})

	var backendErr *providers.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", backendErr.StatusCode)
	}
}

func TestAdapter_Probe(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/models", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       gatewaytest.ModelsResponseBody("gpt-4o", "gpt-4o-mini"),
	})

	ep := providers.Endpoint{Name: "openai", BaseURL: mock.URL(), Credential: "sk-test"}
	if err := adapter.Probe(context.Background(), ep); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if got := mock.LastHeaders().Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("expected bearer auth on probe, got %q", got)
	}
}

func TestAdapter_ProbeUnreachable(t *testing.T) {
	client := providers.NewClient(providers.DefaultClientConfig())
	defer client.Close()
	adapter := New(client)

	// Nothing is listening on this address.
	ep := providers.Endpoint{Name: "openai", BaseURL: "http://127.0.0.1:1"}
	err := adapter.Probe(context.Background(), ep)

	var transportErr *providers.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestAdapter_NoCredentialOmitsAuth(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/models", gatewaytest.MockResponse{StatusCode: 200, Body: gatewaytest.ModelsResponseBody()})

	ep := providers.Endpoint{Name: "local-proxy", BaseURL: mock.URL()}
	if err := adapter.Probe(context.Background(), ep); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if got := mock.LastHeaders().Get("Authorization"); got != "" {
		t.Errorf("expected no auth header, got %q", got)
	}
}

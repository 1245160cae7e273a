package vendormsg

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

	mock.SetResponse("/v1/messages", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       gatewaytest.MessagesResponseBody("Hi there!", 9, 4),
	})

	ep := providers.Endpoint{
		Name:       "anthropic",
		BaseURL:    mock.URL(),
		Credential: "sk-ant-test",
	}
	resp, err := adapter.Complete(context.Background(), ep, &providers.CompletionRequest{
		Model:  "claude-sonnet-4",
		Prompt: "Hello",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != "Hi there!" {
		t.Errorf("expected content %q, got %q", "Hi there!", resp.Content)
	}
	if resp.InputTokens != 9 || resp.OutputTokens != 4 {
		t.Errorf("expected tokens 9/4, got %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if resp.TotalTokens != 13 {
		t.Errorf("expected total tokens 13, got %d", resp.TotalTokens)
	}

	// API key and protocol version travel as headers, not bearer auth.
	headers := mock.LastHeaders()
	if got := headers.Get("x-api-key"); got != "sk-ant-test" {
		t.Errorf("expected x-api-key header, got %q", got)
	}
	if got := headers.Get("anthropic-version"); got != protocolVersion {
		t.Errorf("expected version header %q, got %q", protocolVersion, got)
	}
	if got := headers.Get("Authorization"); got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}

	// A max_tokens cap must always be present on the wire.
	var sent messagesRequest
	if err := json.Unmarshal(mock.LastBody(), &sent); err != nil {
		t.Fatalf("request body not valid JSON: %v", err)
	}
	if sent.MaxTokens != defaultMaxTokens {
		t.Errorf("expected default max tokens %d, got %d", defaultMaxTokens, sent.MaxTokens)
	}
}

func TestAdapter_CompleteMultipleTextBlocks(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/v1/messages", gatewaytest.MockResponse{
		StatusCode: 200,
		Body: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "part one, "},
				{"type": "tool_use"},
				{"type": "text", "text": "part two"},
			},
			"usage": map[string]interface{}{"input_tokens": 1, "output_tokens": 2},
		},
	})

	ep := providers.Endpoint{Name: "anthropic", BaseURL: mock.URL()}
	resp, err := adapter.Complete(context.Background(), ep, &providers.CompletionRequest{
		Model:  "claude-sonnet-4",
		Prompt: "Hello",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Content != "part one, part two" {
		t.Errorf("expected concatenated text blocks, got %q", resp.Content)
	}
}

func TestAdapter_CompleteEmptyContent(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/v1/messages", gatewaytest.MockResponse{
		StatusCode: 200,
		Body: map[string]interface{}{
			"content": []interface{}{},
			"usage":   map[string]interface{}{"input_tokens": 1, "output_tokens": 0},
		},
	})

	ep := providers.Endpoint{Name: "anthropic", BaseURL: mock.URL()}
	_, err := adapter.Complete(context.Background(), ep, &providers.CompletionRequest{
		Model:  "claude-sonnet-4",
		Prompt: "Hello",
	})

	var backendErr *providers.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}

func TestAdapter_ProbeUsesMinimalMessage(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/v1/messages", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       gatewaytest.MessagesResponseBody("pong", 1, 1),
	})

	ep := providers.Endpoint{
		Name:         "anthropic",
		BaseURL:      mock.URL(),
		Credential:   "sk-ant-test",
		DefaultModel: "claude-sonnet-4",
	}
	if err := adapter.Probe(context.Background(), ep); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	var sent messagesRequest
	if err := json.Unmarshal(mock.LastBody(), &sent); err != nil {
		t.Fatalf("probe body not valid JSON: %v", err)
	}
	if sent.MaxTokens != 1 {
		t.Errorf("expected probe max tokens 1, got %d", sent.MaxTokens)
	}
	if sent.Model != "claude-sonnet-4" {
		t.Errorf("expected probe to use configured model, got %s", sent.Model)
	}
}

func TestAdapter_ProbeFallbackModel(t *testing.T) {
	adapter, mock := newTestAdapter(t)

	mock.SetResponse("/v1/messages", gatewaytest.MockResponse{
		StatusCode: 200,
		Body:       gatewaytest.MessagesResponseBody("pong", 1, 1),
	})

	ep := providers.Endpoint{Name: "anthropic", BaseURL: mock.URL()}
	if err := adapter.Probe(context.Background(), ep); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	var sent messagesRequest
	if err := json.Unmarshal(mock.LastBody(), &sent); err != nil {
		t.Fatalf("probe body not valid JSON: %v", err)
	}
	if sent.Model != probeModel {
		t.Errorf("expected fallback probe model %s, got %s", probeModel, sent.Model)
	}
}

// Package vendorchat implements the adapter for the vendor-chat family:
// first-party vendors exposing a chat-completions API (OpenAI-style).
// Authentication is a bearer token; the health check is a list-models GET.
package vendorchat

import (
	"context"
	"fmt"
	"log/slog"

	"tessera-ai/relay/pkg/providers"
)

// Adapter translates normalized calls into chat-completions wire format.
type Adapter struct {
	client *providers.Client

	// extraHeaders are sent with every request in addition to the bearer
	// token. The aggregator family reuses this adapter with attribution
	// headers; plain vendor-chat has none.
	extraHeaders map[string]string
}

// New creates a vendor-chat adapter backed by the shared client.
func New(client *providers.Client) *Adapter {
	return NewWithHeaders(client, nil)
}

// NewWithHeaders creates an adapter that attaches the given headers to
// every outgoing request.
func NewWithHeaders(client *providers.Client, extra map[string]string) *Adapter {
	return &Adapter{client: client, extraHeaders: extra}
}

// Probe checks reachability with a list-models GET.
func (a *Adapter) Probe(ctx context.Context, ep providers.Endpoint) error {
	url := fmt.Sprintf("%s/models", ep.BaseURL)

	resp, err := a.client.Do(ctx, ep.Name, "GET", url, nil, a.headers(ep))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Complete sends a single-prompt chat completion and normalizes the result.
func (a *Adapter) Complete(ctx context.Context, ep providers.Endpoint, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	chatReq := &providers.ChatRequest{
		Model: req.Model,
		Messages: []providers.ChatMessage{
			{Role: providers.RoleUser, Content: req.Prompt},
		},
		MaxTokens: req.MaxTokens,
	}

	url := fmt.Sprintf("%s/chat/completions", ep.BaseURL)

	var chatResp providers.ChatResponse
	if err := a.client.DoJSON(ctx, ep.Name, "POST", url, chatReq, &chatResp, a.headers(ep)); err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 {
		return nil, &providers.BackendError{
			Provider: ep.Name,
			Message:  "response contained no choices",
		}
	}

	slog.Debug("completion request succeeded",
		"provider", ep.Name,
		"model", chatResp.Model,
		"tokens", chatResp.Usage.TotalTokens,
	)

	return &providers.CompletionResponse{
		Content:      chatResp.Choices[0].Message.Content,
		InputTokens:  chatResp.Usage.PromptTokens,
		OutputTokens: chatResp.Usage.CompletionTokens,
		TotalTokens:  chatResp.Usage.TotalTokens,
	}, nil
}

// headers builds the request headers: bearer auth plus any extras.
func (a *Adapter) headers(ep providers.Endpoint) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if ep.Credential != "" {
		headers["Authorization"] = "Bearer " + ep.Credential
	}
	for k, v := range a.extraHeaders {
		headers[k] = v
	}
	return headers
}

// Package vendormsg implements the adapter for the vendor-message family:
// first-party vendors exposing a messages API (Anthropic-style).
// Authentication is an API-key header plus a protocol-version header; the
// health check is a cheap single-token messages POST.
package vendormsg

import (
	"context"
	"fmt"
	"log/slog"

	"tessera-ai/relay/pkg/providers"
)

const (
	// protocolVersion is the messages API version sent with every request.
	protocolVersion = "2023-06-01"

	// defaultMaxTokens caps completion output when the caller did not.
	// The messages API requires an explicit cap.
	defaultMaxTokens = 1024

	// probeModel is used for the health probe when the provider has no
	// configured models.
	probeModel = "claude-3-haiku-20240307"
)

// Adapter translates normalized calls into the messages wire format.
type Adapter struct {
	client *providers.Client
}

// New creates a vendor-message adapter backed by the shared client.
func New(client *providers.Client) *Adapter {
	return &Adapter{client: client}
}

// messagesRequest is a messages API request body.
type messagesRequest struct {
	Model     string            `json:"model"`
	Messages  []messagesMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens"`
}

// messagesMessage is a single message in a messages request.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is a messages API response body.
type messagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   messagesUsage  `json:"usage"`
}

// contentBlock is one block of a messages response.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// messagesUsage is the token accounting block of a messages response.
type messagesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Probe checks reachability with a minimal messages POST. The messages API
// has no unauthenticated list endpoint, so the probe is a real call capped
// at one output token.
func (a *Adapter) Probe(ctx context.Context, ep providers.Endpoint) error {
	model := ep.DefaultModel
	if model == "" {
		model = probeModel
	}

	probeReq := &messagesRequest{
		Model:     model,
		Messages:  []messagesMessage{{Role: providers.RoleUser, Content: "ping"}},
		MaxTokens: 1,
	}

	url := fmt.Sprintf("%s/v1/messages", ep.BaseURL)
	return a.client.DoJSON(ctx, ep.Name, "POST", url, probeReq, nil, a.headers(ep))
}

// Complete sends a single-prompt messages call and normalizes the result.
func (a *Adapter) Complete(ctx context.Context, ep providers.Endpoint, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	msgReq := &messagesRequest{
		Model:     req.Model,
		Messages:  []messagesMessage{{Role: providers.RoleUser, Content: req.Prompt}},
		MaxTokens: maxTokens,
	}

	url := fmt.Sprintf("%s/v1/messages", ep.BaseURL)

	var msgResp messagesResponse
	if err := a.client.DoJSON(ctx, ep.Name, "POST", url, msgReq, &msgResp, a.headers(ep)); err != nil {
		return nil, err
	}

	var content string
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if len(msgResp.Content) == 0 {
		return nil, &providers.BackendError{
			Provider: ep.Name,
			Message:  "response contained no content blocks",
		}
	}

	slog.Debug("completion request succeeded",
		"provider", ep.Name,
		"model", msgResp.Model,
		"tokens", msgResp.Usage.InputTokens+msgResp.Usage.OutputTokens,
	)

	return &providers.CompletionResponse{
		Content:      content,
		InputTokens:  msgResp.Usage.InputTokens,
		OutputTokens: msgResp.Usage.OutputTokens,
		TotalTokens:  msgResp.Usage.InputTokens + msgResp.Usage.OutputTokens,
	}, nil
}

// headers builds the API-key and protocol-version headers.
func (a *Adapter) headers(ep providers.Endpoint) map[string]string {
	return map[string]string{
		"x-api-key":         ep.Credential,
		"anthropic-version": protocolVersion,
		"Content-Type":      "application/json",
	}
}

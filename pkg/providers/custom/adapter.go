// Package custom implements the adapter for the custom family: caller
// defined backends with a pass-through call shape. The bearer token is
// optional, the probe hits a generic health path, and no cost is recorded.
package custom

import (
	"context"
	"fmt"

	"tessera-ai/relay/pkg/providers"
)

// Adapter translates normalized calls into the pass-through wire format.
type Adapter struct {
	client *providers.Client
}

// New creates a custom adapter backed by the shared client.
func New(client *providers.Client) *Adapter {
	return &Adapter{client: client}
}

// completionRequest is the pass-through request body.
type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// completionResponse accepts both "content" and "response" result fields,
// since custom backends vary.
type completionResponse struct {
	Content  string `json:"content"`
	Response string `json:"response"`
	Tokens   int    `json:"tokens"`
}

// Probe checks reachability against a generic health path. This is best
// effort: custom backends are not required to expose one, and any success
// status counts.
func (a *Adapter) Probe(ctx context.Context, ep providers.Endpoint) error {
	url := fmt.Sprintf("%s/health", ep.BaseURL)

	resp, err := a.client.Do(ctx, ep.Name, "GET", url, nil, a.headers(ep))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Complete sends the prompt as-is and normalizes whichever result field the
// backend populated. Token counts are taken when reported; cost accounting
// for this family is unspecified and omitted upstream.
func (a *Adapter) Complete(ctx context.Context, ep providers.Endpoint, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	passReq := &completionRequest{
		Model:     req.Model,
		Prompt:    req.Prompt,
		MaxTokens: req.MaxTokens,
	}

	url := fmt.Sprintf("%s/completions", ep.BaseURL)

	var passResp completionResponse
	if err := a.client.DoJSON(ctx, ep.Name, "POST", url, passReq, &passResp, a.headers(ep)); err != nil {
		return nil, err
	}

	content := passResp.Content
	if content == "" {
		content = passResp.Response
	}

	return &providers.CompletionResponse{
		Content:     content,
		TotalTokens: passResp.Tokens,
	}, nil
}

// headers builds the optional bearer header.
func (a *Adapter) headers(ep providers.Endpoint) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if ep.Credential != "" {
		headers["Authorization"] = "Bearer " + ep.Credential
	}
	return headers
}

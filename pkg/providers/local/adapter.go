// Package local implements the adapter for the local family: locally
// hosted backends exposing an Ollama-style API. No authentication, no cost.
package local

import (
	"context"
	"fmt"
	"log/slog"

	"tessera-ai/relay/pkg/providers"
)

// Adapter translates normalized calls into the local generate API.
type Adapter struct {
	client *providers.Client
}

// New creates a local adapter backed by the shared client.
func New(client *providers.Client) *Adapter {
	return &Adapter{client: client}
}

// generateRequest is the local generate request body. Streaming is always
// disabled: the gateway consumes whole responses.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the local generate response body.
type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Probe checks reachability with the list-models endpoint.
func (a *Adapter) Probe(ctx context.Context, ep providers.Endpoint) error {
	url := fmt.Sprintf("%s/api/tags", ep.BaseURL)

	resp, err := a.client.Do(ctx, ep.Name, "GET", url, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Complete sends a single-prompt generate call and normalizes the result.
func (a *Adapter) Complete(ctx context.Context, ep providers.Endpoint, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	genReq := &generateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
	}

	url := fmt.Sprintf("%s/api/generate", ep.BaseURL)

	var genResp generateResponse
	if err := a.client.DoJSON(ctx, ep.Name, "POST", url, genReq, &genResp, nil); err != nil {
		return nil, err
	}

	slog.Debug("completion request succeeded",
		"provider", ep.Name,
		"model", genResp.Model,
		"tokens", genResp.PromptEvalCount+genResp.EvalCount,
	)

	return &providers.CompletionResponse{
		Content:      genResp.Response,
		InputTokens:  genResp.PromptEvalCount,
		OutputTokens: genResp.EvalCount,
		TotalTokens:  genResp.PromptEvalCount + genResp.EvalCount,
	}, nil
}

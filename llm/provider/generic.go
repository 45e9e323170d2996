package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Generic speaks the OpenAI wire protocol against a configurable base URL,
// for self-hosted or compatible endpoints that have no batch support.
type Generic struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewGeneric builds a generic OpenAI-wire-compatible provider client.
func NewGeneric(apiKey, baseURL string) *Generic {
	return &Generic{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (g *Generic) Name() string { return "generic" }

func (g *Generic) Chat(ctx context.Context, opts ChatOptions) (ChatResult, error) {
	req := openaiChatRequest{
		Model: opts.Model,
		Messages: []openaiMessage{
			{Role: "system", Content: opts.System},
			{Role: "user", Content: opts.User},
		},
	}
	if opts.JSONMode {
		req.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}
	if opts.MaxTokens > 0 {
		req.MaxCompletionTokens = opts.MaxTokens
	}

	headers := map[string]string{}
	if g.apiKey != "" {
		headers["Authorization"] = "Bearer " + g.apiKey
	}
	body, err := postJSON(ctx, g.http, g.baseURL+"/chat/completions", headers, req)
	if err != nil {
		return ChatResult{}, fmt.Errorf("generic chat: %w", err)
	}

	var resp openaiChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ChatResult{}, fmt.Errorf("generic chat: decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ChatResult{}, fmt.Errorf("generic chat: empty choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return ChatResult{}, fmt.Errorf("generic chat: %w", ErrContentLimitExceeded)
	}
	text := resp.Choices[0].Message.Content
	if err := checkStructuredOutput(opts.JSONMode, text); err != nil {
		return ChatResult{}, fmt.Errorf("generic chat: %w", err)
	}

	return ChatResult{
		Text:         text,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (g *Generic) SupportsBatch() bool { return false }

func (g *Generic) SubmitBatch(ctx context.Context, model string, requests []BatchRequest) (string, error) {
	return "", ErrBatchUnsupported{Provider: "generic"}
}

func (g *Generic) BatchStatus(ctx context.Context, batchID string) (string, error) {
	return "", ErrBatchUnsupported{Provider: "generic"}
}

func (g *Generic) BatchResults(ctx context.Context, batchID string) ([]BatchResult, error) {
	return nil, ErrBatchUnsupported{Provider: "generic"}
}

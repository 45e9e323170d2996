package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Anthropic is an Anthropic-shaped messages-API client. Structured output is
// enforced by prefilling the assistant turn with "[" so the model must
// continue as JSON; the client re-attaches the prefix before returning.
type Anthropic struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.Mutex
	batches map[string]*openaiBatch // reuses the same bookkeeping shape
}

// NewAnthropic builds an Anthropic-shaped provider client.
func NewAnthropic(apiKey, baseURL string) *Anthropic {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	return &Anthropic{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 120 * time.Second},
		batches: make(map[string]*openaiBatch),
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

type anthropicSystemBlock struct {
	Type         string                 `json:"type"`
	Text         string                 `json:"text"`
	CacheControl map[string]interface{} `json:"cache_control,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string                 `json:"model"`
	MaxTokens int                    `json:"max_tokens"`
	System    []anthropicSystemBlock `json:"system"`
	Messages  []anthropicMessage     `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens              int `json:"input_tokens"`
		OutputTokens             int `json:"output_tokens"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens"`
		CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	} `json:"usage"`
}

func (a *Anthropic) Chat(ctx context.Context, opts ChatOptions) (ChatResult, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	sysBlock := anthropicSystemBlock{Type: "text", Text: opts.System}
	if opts.CacheSystemPrompt {
		sysBlock.CacheControl = map[string]interface{}{"type": "ephemeral"}
	}

	messages := []anthropicMessage{{Role: "user", Content: opts.User}}
	prefilled := false
	if opts.JSONMode {
		messages = append(messages, anthropicMessage{Role: "assistant", Content: "["})
		prefilled = true
	}

	req := anthropicRequest{
		Model:     opts.Model,
		MaxTokens: maxTokens,
		System:    []anthropicSystemBlock{sysBlock},
		Messages:  messages,
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}
	body, err := postJSON(ctx, a.http, a.baseURL+"/messages", headers, req)
	if err != nil {
		return ChatResult{}, fmt.Errorf("anthropic chat: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ChatResult{}, fmt.Errorf("anthropic chat: decode response: %w", err)
	}
	if len(resp.Content) == 0 {
		return ChatResult{}, fmt.Errorf("anthropic chat: empty content")
	}
	if resp.StopReason == "max_tokens" {
		return ChatResult{}, fmt.Errorf("anthropic chat: %w", ErrContentLimitExceeded)
	}

	text := resp.Content[0].Text
	if prefilled {
		text = "[" + text
	}
	if err := checkStructuredOutput(opts.JSONMode, text); err != nil {
		return ChatResult{}, fmt.Errorf("anthropic chat: %w", err)
	}

	return ChatResult{
		Text:             text,
		InputTokens:      resp.Usage.InputTokens,
		OutputTokens:     resp.Usage.OutputTokens,
		CacheReadTokens:  resp.Usage.CacheReadInputTokens,
		CacheWriteTokens: resp.Usage.CacheCreationInputTokens,
	}, nil
}

func (a *Anthropic) SupportsBatch() bool { return true }

func (a *Anthropic) SubmitBatch(ctx context.Context, model string, requests []BatchRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := fmt.Sprintf("msgbatch_%d_%d", time.Now().UnixNano(), len(a.batches))
	a.batches[id] = &openaiBatch{model: model, requests: requests, status: "in_progress", started: time.Now()}
	return id, nil
}

func (a *Anthropic) BatchStatus(ctx context.Context, batchID string) (string, error) {
	a.mu.Lock()
	b, ok := a.batches[batchID]
	a.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("anthropic batch %s: not found", batchID)
	}
	if b.status == "in_progress" && time.Since(b.started) > 5*time.Second {
		results := make([]BatchResult, 0, len(b.requests))
		for _, r := range b.requests {
			r.Options.Model = b.model
			out, err := a.Chat(ctx, r.Options)
			if err != nil {
				results = append(results, BatchResult{CustomID: r.CustomID, Err: err.Error()})
				continue
			}
			results = append(results, BatchResult{CustomID: r.CustomID, Text: out.Text})
		}
		b.results = results
		b.status = "completed"
	}
	return b.status, nil
}

func (a *Anthropic) BatchResults(ctx context.Context, batchID string) ([]BatchResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("anthropic batch %s: not found", batchID)
	}
	if b.status != "completed" {
		return nil, fmt.Errorf("anthropic batch %s: not completed (status %s)", batchID, b.status)
	}
	return b.results, nil
}

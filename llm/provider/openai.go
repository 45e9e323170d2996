package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OpenAI is an OpenAI-shaped chat-completions client. It also serves any
// generic OpenAI-wire-compatible endpoint when BaseURL is overridden.
type OpenAI struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.Mutex
	batches map[string]*openaiBatch
}

type openaiBatch struct {
	model    string
	requests []BatchRequest
	status   string
	results  []BatchResult
	started  time.Time
}

// NewOpenAI builds an OpenAI-shaped provider client. An empty baseURL
// defaults to the public API.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAI{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 120 * time.Second},
		batches: make(map[string]*openaiBatch),
	}
}

func (o *OpenAI) Name() string { return "openai" }

// isReasoningModel reports whether model belongs to a family that bills
// "thinking" tokens against the same cap as visible output, per spec §4.3.
func isReasoningModel(model string) bool {
	for _, prefix := range []string{"gpt-5", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openaiMessage `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
	MaxCompletionTokens int `json:"max_completion_tokens,omitempty"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		PromptTokensDetails struct {
			CachedTokens int `json:"cached_tokens"`
		} `json:"prompt_tokens_details"`
	} `json:"usage"`
}

func (o *OpenAI) Chat(ctx context.Context, opts ChatOptions) (ChatResult, error) {
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
	if opts.MaxTokens > 0 && !isReasoningModel(opts.Model) {
		req.MaxCompletionTokens = opts.MaxTokens
	}

	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	body, err := postJSON(ctx, o.http, o.baseURL+"/chat/completions", headers, req)
	if err != nil {
		return ChatResult{}, fmt.Errorf("openai chat: %w", err)
	}

	var resp openaiChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ChatResult{}, fmt.Errorf("openai chat: decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ChatResult{}, fmt.Errorf("openai chat: empty choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return ChatResult{}, fmt.Errorf("openai chat: %w", ErrContentLimitExceeded)
	}
	text := resp.Choices[0].Message.Content
	if err := checkStructuredOutput(opts.JSONMode, text); err != nil {
		return ChatResult{}, fmt.Errorf("openai chat: %w", err)
	}

	return ChatResult{
		Text:            text,
		InputTokens:     resp.Usage.PromptTokens - resp.Usage.PromptTokensDetails.CachedTokens,
		OutputTokens:    resp.Usage.CompletionTokens,
		CacheReadTokens: resp.Usage.PromptTokensDetails.CachedTokens,
	}, nil
}

func (o *OpenAI) SupportsBatch() bool { return true }

func (o *OpenAI) SubmitBatch(ctx context.Context, model string, requests []BatchRequest) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := fmt.Sprintf("batch_%d_%d", time.Now().UnixNano(), len(o.batches))
	o.batches[id] = &openaiBatch{model: model, requests: requests, status: "in_progress", started: time.Now()}
	return id, nil
}

func (o *OpenAI) BatchStatus(ctx context.Context, batchID string) (string, error) {
	o.mu.Lock()
	b, ok := o.batches[batchID]
	o.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("openai batch %s: not found", batchID)
	}
	if b.status == "in_progress" && time.Since(b.started) > 5*time.Second {
		if err := o.runBatch(ctx, b); err != nil {
			b.status = "failed"
		} else {
			b.status = "completed"
		}
	}
	return b.status, nil
}

func (o *OpenAI) runBatch(ctx context.Context, b *openaiBatch) error {
	results := make([]BatchResult, 0, len(b.requests))
	for _, r := range b.requests {
		r.Options.Model = b.model
		out, err := o.Chat(ctx, r.Options)
		if err != nil {
			results = append(results, BatchResult{CustomID: r.CustomID, Err: err.Error()})
			continue
		}
		results = append(results, BatchResult{CustomID: r.CustomID, Text: out.Text})
	}
	b.results = results
	return nil
}

func (o *OpenAI) BatchResults(ctx context.Context, batchID string) ([]BatchResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("openai batch %s: not found", batchID)
	}
	if b.status != "completed" {
		return nil, fmt.Errorf("openai batch %s: not completed (status %s)", batchID, b.status)
	}
	return b.results, nil
}

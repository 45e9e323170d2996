package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Gemini is a Gemini-shaped generateContent client. Caching is automatic on
// the provider side; cache token counts are read back from usage metadata.
type Gemini struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.Mutex
	batches map[string]*openaiBatch
}

// NewGemini builds a Gemini-shaped provider client.
func NewGemini(apiKey, baseURL string) *Gemini {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Gemini{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 120 * time.Second},
		batches: make(map[string]*openaiBatch),
	}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		ResponseMimeType string `json:"responseMimeType,omitempty"`
		MaxOutputTokens  int    `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		CachedContentTokenCount int `json:"cachedContentTokenCount"`
	} `json:"usageMetadata"`
}

func (g *Gemini) Chat(ctx context.Context, opts ChatOptions) (ChatResult, error) {
	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: opts.System}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: opts.User}}}},
	}
	if opts.JSONMode {
		req.GenerationConfig.ResponseMimeType = "application/json"
	}
	if opts.MaxTokens > 0 {
		req.GenerationConfig.MaxOutputTokens = opts.MaxTokens
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, opts.Model, g.apiKey)
	body, err := postJSON(ctx, g.http, url, nil, req)
	if err != nil {
		return ChatResult{}, fmt.Errorf("gemini chat: %w", err)
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ChatResult{}, fmt.Errorf("gemini chat: decode response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return ChatResult{}, fmt.Errorf("gemini chat: empty candidates")
	}
	if resp.Candidates[0].FinishReason == "MAX_TOKENS" {
		return ChatResult{}, fmt.Errorf("gemini chat: %w", ErrContentLimitExceeded)
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if err := checkStructuredOutput(opts.JSONMode, text); err != nil {
		return ChatResult{}, fmt.Errorf("gemini chat: %w", err)
	}

	return ChatResult{
		Text:            text,
		InputTokens:     resp.UsageMetadata.PromptTokenCount - resp.UsageMetadata.CachedContentTokenCount,
		OutputTokens:    resp.UsageMetadata.CandidatesTokenCount,
		CacheReadTokens: resp.UsageMetadata.CachedContentTokenCount,
	}, nil
}

func (g *Gemini) SupportsBatch() bool { return true }

func (g *Gemini) SubmitBatch(ctx context.Context, model string, requests []BatchRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("geminibatch_%d_%d", time.Now().UnixNano(), len(g.batches))
	g.batches[id] = &openaiBatch{model: model, requests: requests, status: "in_progress", started: time.Now()}
	return id, nil
}

func (g *Gemini) BatchStatus(ctx context.Context, batchID string) (string, error) {
	g.mu.Lock()
	b, ok := g.batches[batchID]
	g.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("gemini batch %s: not found", batchID)
	}
	if b.status == "in_progress" && time.Since(b.started) > 5*time.Second {
		results := make([]BatchResult, 0, len(b.requests))
		for _, r := range b.requests {
			r.Options.Model = b.model
			out, err := g.Chat(ctx, r.Options)
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

func (g *Gemini) BatchResults(ctx context.Context, batchID string) ([]BatchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("gemini batch %s: not found", batchID)
	}
	if b.status != "completed" {
		return nil, fmt.Errorf("gemini batch %s: not completed (status %s)", batchID, b.status)
	}
	return b.results, nil
}

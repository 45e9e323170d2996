// Package provider defines the capability surface the LLM Router dispatches
// against, and the OpenAI-shaped, Anthropic-shaped, Gemini-shaped, and
// generic adapters that implement it over plain net/http. Grounded on the
// teacher's http/client.go request/retry shape, adapted from a REST-mirror
// client to a chat-completion client.
package provider

import (
	"context"
	"encoding/json"
	"errors"
)

// ChatResult is one provider call's decoded text plus token accounting,
// enough for the Router's usage tracker to price it.
type ChatResult struct {
	Text             string
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
}

// ChatOptions carries the unified chat contract's knobs, already resolved by
// the Router (model chosen, max_tokens resolved).
type ChatOptions struct {
	Model             string
	System            string
	User              string
	JSONMode          bool
	MaxTokens         int
	CacheSystemPrompt bool
}

// BatchRequest is one item of a batch submission, keyed by a caller-supplied
// custom id ("enrich-YYYY-MM-DD", "daily-YYYY-MM-DD").
type BatchRequest struct {
	CustomID string
	Options  ChatOptions
}

// BatchResult is one item of a completed batch's results.
type BatchResult struct {
	CustomID string
	Text     string
	Err      string
}

// Provider is the capability set every LLM adapter implements. Batch
// capability is optional; callers must check SupportsBatch before calling
// the batch methods, matching spec §4.3's "mixin-style marker".
type Provider interface {
	Name() string
	Chat(ctx context.Context, opts ChatOptions) (ChatResult, error)
	SupportsBatch() bool
	SubmitBatch(ctx context.Context, model string, requests []BatchRequest) (batchID string, err error)
	BatchStatus(ctx context.Context, batchID string) (string, error)
	BatchResults(ctx context.Context, batchID string) ([]BatchResult, error)
}

// ErrBatchUnsupported is returned by SubmitBatch/BatchStatus/BatchResults on
// providers whose SupportsBatch is false.
type ErrBatchUnsupported struct{ Provider string }

func (e ErrBatchUnsupported) Error() string {
	return "provider " + e.Provider + " does not support batch submission"
}

// ErrContentLimitExceeded is returned by an adapter's Chat when the provider
// reports it stopped generating because it hit a token/content limit before
// finishing, rather than completing normally.
var ErrContentLimitExceeded = errors.New("provider: response truncated at content limit")

// ErrStructuredOutputFailed is returned by an adapter's Chat when the caller
// requested JSON-mode output but the provider's text did not parse as JSON.
// This is the Router's signal to escalate under the standard strategy.
var ErrStructuredOutputFailed = errors.New("provider: response did not match requested structured output")

// checkStructuredOutput validates text as JSON when jsonMode was requested,
// returning ErrStructuredOutputFailed if it doesn't parse.
func checkStructuredOutput(jsonMode bool, text string) error {
	if !jsonMode {
		return nil
	}
	if !json.Valid([]byte(text)) {
		return ErrStructuredOutputFailed
	}
	return nil
}

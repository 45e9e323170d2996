package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/yongseopkim/workrecap/llm/provider"
)

// BatchRequest is a caller-supplied batch item, keyed by a custom id
// following the "enrich-YYYY-MM-DD" / "daily-YYYY-MM-DD" convention.
type BatchRequest struct {
	CustomID string
	System   string
	User     string
	JSONMode bool
}

// SubmitBatch submits requests for task, always using the task's base model
// (batch requests never escalate, per spec §4.3).
func (r *Router) SubmitBatch(ctx context.Context, task string, requests []BatchRequest) (string, error) {
	binding, ok := r.cfg.Tasks[task]
	if !ok {
		return "", fmt.Errorf("llm router: task %q is not configured", task)
	}
	prov, ok := r.providers[binding.Provider]
	if !ok {
		return "", fmt.Errorf("llm router: provider %q for task %q is not configured", binding.Provider, task)
	}
	if !prov.SupportsBatch() {
		return "", provider.ErrBatchUnsupported{Provider: prov.Name()}
	}

	providerRequests := make([]provider.BatchRequest, 0, len(requests))
	for _, req := range requests {
		providerRequests = append(providerRequests, provider.BatchRequest{
			CustomID: req.CustomID,
			Options: provider.ChatOptions{
				Model:     binding.Model,
				System:    req.System,
				User:      req.User,
				JSONMode:  req.JSONMode,
				MaxTokens: binding.MaxTokens,
			},
		})
	}
	return prov.SubmitBatch(ctx, binding.Model, providerRequests)
}

// BatchStatus returns a submitted batch's current lifecycle state.
func (r *Router) BatchStatus(ctx context.Context, task, batchID string) (string, error) {
	prov, err := r.providerForTask(task)
	if err != nil {
		return "", err
	}
	return prov.BatchStatus(ctx, batchID)
}

// BatchResults returns a completed batch's per-request results.
func (r *Router) BatchResults(ctx context.Context, task, batchID string) ([]provider.BatchResult, error) {
	prov, err := r.providerForTask(task)
	if err != nil {
		return nil, err
	}
	return prov.BatchResults(ctx, batchID)
}

func (r *Router) providerForTask(task string) (provider.Provider, error) {
	binding, ok := r.cfg.Tasks[task]
	if !ok {
		return nil, fmt.Errorf("llm router: task %q is not configured", task)
	}
	prov, ok := r.providers[binding.Provider]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q for task %q is not configured", binding.Provider, task)
	}
	return prov, nil
}

// batchTimeout implements spec §4.3's dynamic timeout: five minutes base
// plus thirty seconds per request, capped at four hours.
func batchTimeout(size int) time.Duration {
	seconds := 300 + 30*size
	const ceiling = 14400
	if seconds > ceiling {
		seconds = ceiling
	}
	return time.Duration(seconds) * time.Second
}

// WaitForBatch polls task's batchID until it reaches a terminal status,
// ramping the poll interval linearly from 5s to 60s across the expected
// duration, honouring the dynamic timeout derived from size.
func (r *Router) WaitForBatch(ctx context.Context, task, batchID string, size int) ([]provider.BatchResult, error) {
	deadline := time.Now().Add(batchTimeout(size))
	const minInterval = 5 * time.Second
	const maxInterval = 60 * time.Second

	for {
		status, err := r.BatchStatus(ctx, task, batchID)
		if err != nil {
			return nil, err
		}
		switch status {
		case "completed":
			return r.BatchResults(ctx, task, batchID)
		case "failed", "expired":
			return nil, fmt.Errorf("llm router: batch %s ended with status %s", batchID, status)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("llm router: batch %s timed out waiting for completion", batchID)
		}

		remaining := time.Until(deadline)
		progress := 1 - float64(remaining)/float64(batchTimeout(size))
		interval := minInterval + time.Duration(progress*float64(maxInterval-minInterval))
		if interval > maxInterval {
			interval = maxInterval
		}
		if interval < minInterval {
			interval = minInterval
		}

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yongseopkim/workrecap/config"
	"github.com/yongseopkim/workrecap/llm/provider"
	"github.com/yongseopkim/workrecap/logging"
)

// fakeProvider returns a scripted sequence of results, one per call, so
// tests can exercise the standard strategy's escalation gating without
// hitting a real chat endpoint.
type fakeProvider struct {
	name  string
	calls []struct {
		model string
		err   error
	}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Chat(ctx context.Context, opts provider.ChatOptions) (provider.ChatResult, error) {
	call := f.calls[0]
	f.calls = f.calls[1:]
	if call.err != nil {
		return provider.ChatResult{}, call.err
	}
	return provider.ChatResult{Text: "ok from " + opts.Model}, nil
}

func (f *fakeProvider) SupportsBatch() bool { return false }
func (f *fakeProvider) SubmitBatch(ctx context.Context, model string, requests []provider.BatchRequest) (string, error) {
	return "", provider.ErrBatchUnsupported{Provider: f.name}
}
func (f *fakeProvider) BatchStatus(ctx context.Context, batchID string) (string, error) {
	return "", provider.ErrBatchUnsupported{Provider: f.name}
}
func (f *fakeProvider) BatchResults(ctx context.Context, batchID string) ([]provider.BatchResult, error) {
	return nil, provider.ErrBatchUnsupported{Provider: f.name}
}

func newStandardRouter(t *testing.T, prov *fakeProvider) *Router {
	t.Helper()
	return &Router{
		cfg: &config.ProviderConfig{
			Strategy: config.StrategyStandard,
			Tasks: map[string]config.TaskBinding{
				"summarize": {Provider: "fake", Model: "base", EscalationModel: "big"},
			},
		},
		providers: map[string]provider.Provider{"fake": prov},
		usage:     NewUsageTracker(config.PricingTable{}),
		logger:    logging.New("llm.router.test"),
	}
}

func TestIsEscalatable(t *testing.T) {
	assert.True(t, isEscalatable(provider.ErrStructuredOutputFailed))
	assert.True(t, isEscalatable(provider.ErrContentLimitExceeded))
	assert.True(t, isEscalatable(errors.Join(errors.New("wrapping"), provider.ErrContentLimitExceeded)))
	assert.False(t, isEscalatable(errors.New("transport reset by peer")))
}

func TestRouter_StandardStrategyEscalatesOnContentLimit(t *testing.T) {
	prov := &fakeProvider{name: "fake", calls: []struct {
		model string
		err   error
	}{
		{model: "base", err: provider.ErrContentLimitExceeded},
		{model: "big"},
	}}
	r := newStandardRouter(t, prov)

	text, err := r.Chat(context.Background(), "summarize", "sys", "user", false, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "ok from big", text)
}

func TestRouter_StandardStrategyDoesNotEscalateOnOtherErrors(t *testing.T) {
	prov := &fakeProvider{name: "fake", calls: []struct {
		model string
		err   error
	}{
		{model: "base", err: errors.New("connection reset")},
	}}
	r := newStandardRouter(t, prov)

	_, err := r.Chat(context.Background(), "summarize", "sys", "user", false, 0, false)
	require.Error(t, err)
	assert.Equal(t, "connection reset", err.Error())
}

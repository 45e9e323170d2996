// Package llm implements the task-keyed provider Router from spec §4.3:
// strategy-driven model selection (economy/standard/premium/adaptive/fixed),
// a unified chat contract dispatched across OpenAI-shaped, Anthropic-shaped,
// Gemini-shaped, and generic adapters, batch submission/polling, and
// per-(provider,model) usage/cost accounting.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/yongseopkim/workrecap/config"
	"github.com/yongseopkim/workrecap/llm/provider"
	"github.com/yongseopkim/workrecap/logging"
)

// promptSplitMarker is the convention templates use to separate a cacheable
// system prompt from the per-call user content.
const promptSplitMarker = "<!-- SPLIT -->"

// SplitPrompt divides a template on the split marker. If the marker is
// absent the whole template is treated as user content with an empty system
// prompt.
func SplitPrompt(template string) (system, user string) {
	idx := strings.Index(template, promptSplitMarker)
	if idx == -1 {
		return "", template
	}
	return strings.TrimSpace(template[:idx]), strings.TrimSpace(template[idx+len(promptSplitMarker):])
}

// Router dispatches chat and batch calls according to the provider config's
// strategy and per-task bindings.
type Router struct {
	cfg       *config.ProviderConfig
	providers map[string]provider.Provider
	limiters  map[provider.Provider]*rate.Limiter
	usage     *UsageTracker
	logger    *logging.ContextLogger
}

// NewRouter builds a Router, constructing one adapter per configured
// provider. The provider config's keys double as the adapter kind
// (openai/anthropic/gemini/anything else falls back to the generic
// OpenAI-wire adapter).
func NewRouter(cfg *config.ProviderConfig, pricing config.PricingTable) (*Router, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm router: nil provider config")
	}
	providers := make(map[string]provider.Provider, len(cfg.Providers))
	limiters := make(map[provider.Provider]*rate.Limiter, len(cfg.Providers))
	for name, creds := range cfg.Providers {
		providers[name] = buildAdapter(name, creds)
		if creds.QPS > 0 {
			limiters[providers[name]] = rate.NewLimiter(rate.Limit(creds.QPS), 1)
		}
	}
	return &Router{
		cfg:       cfg,
		providers: providers,
		limiters:  limiters,
		usage:     NewUsageTracker(pricing),
		logger:    logging.New("llm.router"),
	}, nil
}

func buildAdapter(name string, creds config.ProviderCreds) provider.Provider {
	switch name {
	case "openai":
		return provider.NewOpenAI(creds.APIKey, creds.BaseURL)
	case "anthropic":
		return provider.NewAnthropic(creds.APIKey, creds.BaseURL)
	case "gemini":
		return provider.NewGemini(creds.APIKey, creds.BaseURL)
	default:
		return provider.NewGeneric(creds.APIKey, creds.BaseURL)
	}
}

// Usage exposes the router's accounting tracker for CLI reporting.
func (r *Router) Usage() *UsageTracker { return r.usage }

// Chat implements the unified chat contract from spec §4.3: task resolves to
// a provider+model via the configured strategy; max_tokens resolution order
// is explicit argument > task config > unset.
func (r *Router) Chat(ctx context.Context, task, system, user string, jsonMode bool, maxTokens int, cacheSystemPrompt bool) (string, error) {
	binding, ok := r.cfg.Tasks[task]
	if !ok {
		return "", fmt.Errorf("llm router: task %q is not configured", task)
	}
	prov, ok := r.providers[binding.Provider]
	if !ok {
		return "", fmt.Errorf("llm router: provider %q for task %q is not configured", binding.Provider, task)
	}
	if maxTokens <= 0 {
		maxTokens = binding.MaxTokens
	}

	switch r.cfg.Strategy {
	case config.StrategyEconomy, config.StrategyFixed:
		return r.callOnce(ctx, prov, binding.Model, system, user, jsonMode, maxTokens, cacheSystemPrompt)

	case config.StrategyPremium:
		model := binding.Model
		if binding.EscalationModel != "" {
			model = binding.EscalationModel
		}
		return r.callOnce(ctx, prov, model, system, user, jsonMode, maxTokens, cacheSystemPrompt)

	case config.StrategyAdaptive:
		return r.chatAdaptive(ctx, prov, binding, user, maxTokens, cacheSystemPrompt)

	case config.StrategyStandard:
		fallthrough
	default:
		text, err := r.callOnce(ctx, prov, binding.Model, system, user, jsonMode, maxTokens, cacheSystemPrompt)
		if err != nil && binding.EscalationModel != "" && isEscalatable(err) {
			r.logger.WithField("task", task).Warn("base model hit a structured-output or content-limit error, escalating")
			return r.callOnce(ctx, prov, binding.EscalationModel, system, user, jsonMode, maxTokens, cacheSystemPrompt)
		}
		return text, err
	}
}

// isEscalatable reports whether err is the kind of failure spec §4.3
// restricts the standard strategy's escalation to: a structured-output parse
// failure or a content-limit truncation from the base model's call. Any
// other error (transport, auth, rate limit) is returned to the caller as-is.
func isEscalatable(err error) bool {
	return errors.Is(err, provider.ErrStructuredOutputFailed) || errors.Is(err, provider.ErrContentLimitExceeded)
}

func (r *Router) callOnce(ctx context.Context, prov provider.Provider, model, system, user string, jsonMode bool, maxTokens int, cacheSystemPrompt bool) (string, error) {
	if lim, ok := r.limiters[prov]; ok {
		if err := lim.Wait(ctx); err != nil {
			return "", err
		}
	}

	result, err := prov.Chat(ctx, provider.ChatOptions{
		Model:             model,
		System:            system,
		User:              user,
		JSONMode:          jsonMode,
		MaxTokens:         maxTokens,
		CacheSystemPrompt: cacheSystemPrompt,
	})
	if err != nil {
		return "", err
	}
	r.usage.Record(prov.Name(), model, result)
	return result.Text, nil
}

// adaptiveEnvelope is the forced JSON shape adaptive-mode calls parse.
type adaptiveEnvelope struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

const adaptiveSystemPrompt = `Respond only with a JSON object of the shape {"answer": <string>, "confidence": <number between 0 and 1>}. No other text.`

func (r *Router) chatAdaptive(ctx context.Context, prov provider.Provider, binding config.TaskBinding, user string, maxTokens int, cacheSystemPrompt bool) (string, error) {
	text, err := r.callOnce(ctx, prov, binding.Model, adaptiveSystemPrompt, user, true, maxTokens, cacheSystemPrompt)
	if err != nil {
		return "", err
	}

	var env adaptiveEnvelope
	if jsonErr := json.Unmarshal([]byte(text), &env); jsonErr != nil {
		r.logger.Warn("adaptive response was not valid JSON, returning raw text")
		return text, nil
	}

	if env.Confidence < 0.7 && binding.EscalationModel != "" {
		r.logger.WithField("confidence", env.Confidence).Info("adaptive confidence below threshold, escalating")
		escalated, escErr := r.callOnce(ctx, prov, binding.EscalationModel, adaptiveSystemPrompt, user, false, maxTokens, cacheSystemPrompt)
		if escErr != nil {
			return env.Answer, nil
		}
		return escalated, nil
	}
	return env.Answer, nil
}

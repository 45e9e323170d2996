package llm

import (
	"sync"

	"github.com/yongseopkim/workrecap/config"
	"github.com/yongseopkim/workrecap/llm/provider"
	"github.com/yongseopkim/workrecap/logging"
)

// usageKey identifies one (provider, model) accounting bucket.
type usageKey struct {
	provider string
	model    string
}

// usageTotals accumulates raw token counts for one bucket.
type usageTotals struct {
	Input      int64
	Output     int64
	CacheRead  int64
	CacheWrite int64
}

// UsageTracker is the thread-safe per-(provider,model) accumulator described
// in spec §4.3, converting token totals to estimated dollar cost via a
// pricing table with provider-specific cache multipliers.
type UsageTracker struct {
	mu      sync.Mutex
	totals  map[usageKey]*usageTotals
	pricing config.PricingTable
	logger  *logging.ContextLogger
}

// NewUsageTracker builds a tracker backed by pricing.
func NewUsageTracker(pricing config.PricingTable) *UsageTracker {
	return &UsageTracker{
		totals:  make(map[usageKey]*usageTotals),
		pricing: pricing,
		logger:  logging.New("llm.usage"),
	}
}

// Record adds one call's token usage to the (providerName, model) bucket.
func (t *UsageTracker) Record(providerName, model string, result provider.ChatResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := usageKey{provider: providerName, model: model}
	bucket, ok := t.totals[key]
	if !ok {
		bucket = &usageTotals{}
		t.totals[key] = bucket
	}
	bucket.Input += int64(result.InputTokens)
	bucket.Output += int64(result.OutputTokens)
	bucket.CacheRead += int64(result.CacheReadTokens)
	bucket.CacheWrite += int64(result.CacheWriteTokens)
}

// cacheMultipliers holds the read/write pricing factors applied against the
// base input rate for providers with cache-aware billing.
var cacheMultipliers = map[string]struct{ read, write float64 }{
	"anthropic": {read: 0.10, write: 1.25},
	"openai":    {read: 0.50, write: 1.0},
	"gemini":    {read: 0.25, write: 1.0},
}

// TotalCostUSD sums estimated dollar cost across every recorded bucket,
// degrading absent pricing entries to zero cost with a logged warning.
func (t *UsageTracker) TotalCostUSD() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total float64
	for key, bucket := range t.totals {
		total += t.costFor(key, bucket)
	}
	return total
}

func (t *UsageTracker) costFor(key usageKey, bucket *usageTotals) float64 {
	models, ok := t.pricing[key.provider]
	if !ok {
		t.logger.WithFields(map[string]interface{}{"provider": key.provider, "model": key.model}).
			Warn("no pricing entry for provider, treating as zero cost")
		return 0
	}
	price, ok := models[key.model]
	if !ok {
		t.logger.WithFields(map[string]interface{}{"provider": key.provider, "model": key.model}).
			Warn("no pricing entry for model, treating as zero cost")
		return 0
	}

	mult, hasMult := cacheMultipliers[key.provider]
	readRate := price.InputPerMillion
	writeRate := price.InputPerMillion
	if hasMult {
		readRate *= mult.read
		writeRate *= mult.write
	}

	inputCost := float64(bucket.Input) / 1_000_000 * price.InputPerMillion
	outputCost := float64(bucket.Output) / 1_000_000 * price.OutputPerMillion
	cacheReadCost := float64(bucket.CacheRead) / 1_000_000 * readRate
	cacheWriteCost := float64(bucket.CacheWrite) / 1_000_000 * writeRate

	return inputCost + outputCost + cacheReadCost + cacheWriteCost
}

// Snapshot returns a copy of per-(provider,model) raw token totals, for
// CLI/debug reporting.
func (t *UsageTracker) Snapshot() map[string]usageTotals {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]usageTotals, len(t.totals))
	for key, bucket := range t.totals {
		out[key.provider+"/"+key.model] = *bucket
	}
	return out
}

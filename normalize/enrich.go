package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yongseopkim/workrecap/llm"
	"github.com/yongseopkim/workrecap/model"
)

const enrichTask = "enrich"

// enrichItem is one element of the forced JSON array the enrich task returns.
type enrichItem struct {
	Index         int          `json:"index"`
	ChangeSummary string       `json:"change_summary"`
	Intent        model.Intent `json:"intent"`
}

const enrichSystemPrompt = `You annotate a list of software activity records. For every item, infer a one-sentence change_summary and a single-word intent from {bugfix, feature, refactor, docs, chore, test, config, perf, security, other}. Respond only with a JSON array of {"index": <int>, "change_summary": <string>, "intent": <string>}, one entry per input item, in any order.`

// EnrichActivities calls the Router's "enrich" task once for the whole day's
// activities and merges the returned intent/change_summary fields back in by
// index. A parse failure or call error is non-fatal: the caller falls back
// to the un-enriched activities.
func EnrichActivities(ctx context.Context, router *llm.Router, activities []model.Activity) ([]model.Activity, error) {
	if len(activities) == 0 {
		return activities, nil
	}

	prompt := renderEnrichPrompt(activities)
	text, err := router.Chat(ctx, enrichTask, enrichSystemPrompt, prompt, true, 0, true)
	if err != nil {
		return nil, fmt.Errorf("enrich activities: %w", err)
	}

	var items []enrichItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("enrich activities: parse response: %w", err)
	}

	out := make([]model.Activity, len(activities))
	copy(out, activities)
	for _, item := range items {
		if item.Index < 0 || item.Index >= len(out) {
			continue
		}
		out[item.Index].ChangeSummary = item.ChangeSummary
		out[item.Index].Intent = item.Intent
	}
	return out, nil
}

func renderEnrichPrompt(activities []model.Activity) string {
	var sb strings.Builder
	sb.WriteString("[\n")
	for i, a := range activities {
		if i > 0 {
			sb.WriteString(",\n")
		}
		entry := map[string]interface{}{
			"index":         i,
			"kind":          a.Kind,
			"title":         a.Title,
			"summary":       a.Summary,
			"changed_files": a.ChangedFiles,
			"body":          truncate(a.Body, 1000),
		}
		data, _ := json.Marshal(entry)
		sb.Write(data)
	}
	sb.WriteString("\n]")
	return sb.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// EnrichBatchRequest builds the BatchRequest for a day's enrichment under
// the "enrich-{date}" custom id convention.
func EnrichBatchRequest(date string, activities []model.Activity) llm.BatchRequest {
	return llm.BatchRequest{
		CustomID: "enrich-" + date,
		System:   enrichSystemPrompt,
		User:     renderEnrichPrompt(activities),
		JSONMode: true,
	}
}

// MergeEnrichResult applies a completed batch result's JSON payload onto
// activities, same merge-by-index rule as EnrichActivities.
func MergeEnrichResult(activities []model.Activity, resultText string) ([]model.Activity, error) {
	var items []enrichItem
	if err := json.Unmarshal([]byte(resultText), &items); err != nil {
		return nil, fmt.Errorf("merge enrich result: %w", err)
	}
	out := make([]model.Activity, len(activities))
	copy(out, activities)
	for _, item := range items {
		if item.Index < 0 || item.Index >= len(out) {
			continue
		}
		out[item.Index].ChangeSummary = item.ChangeSummary
		out[item.Index].Intent = item.Intent
	}
	return out, nil
}

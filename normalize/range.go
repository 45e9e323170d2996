package normalize

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/llm"
	"github.com/yongseopkim/workrecap/model"
)

const dateLayout = "2006-01-02"

// NormalizeRange runs the Normaliser across every date in [since, until]
// that is normalize-stale (or all dates if force), fanning out across a
// bounded worker pool. When batchMode is set, per-day enrichment is
// collected into one batch submission instead of one call per day.
func (n *Normaliser) NormalizeRange(ctx context.Context, since, until string, force, enrich, batchMode bool) ([]model.DateStatus, error) {
	sinceT, err := time.Parse(dateLayout, since)
	if err != nil {
		return nil, fmt.Errorf("normalize range: invalid since date %q: %w", since, err)
	}
	untilT, err := time.Parse(dateLayout, until)
	if err != nil {
		return nil, fmt.Errorf("normalize range: invalid until date %q: %w", until, err)
	}
	if untilT.Before(sinceT) {
		return []model.DateStatus{}, nil
	}

	dates := enumerateDates(sinceT, untilT)
	toProcess, err := n.selectDatesToProcess(dates, force)
	if err != nil {
		return nil, err
	}

	results := make([]model.DateStatus, len(dates))
	idx := make(map[string]int, len(dates))
	for i, d := range dates {
		results[i] = model.DateStatus{Date: d, Status: "skipped"}
		idx[d] = i
	}

	if enrich && batchMode && n.router != nil {
		return n.normalizeRangeBatch(ctx, toProcess, dates, results, idx)
	}

	sem := semaphore.NewWeighted(int64(n.maxWorkers))
	group, gctx := errgroup.WithContext(ctx)
	for _, date := range toProcess {
		date := date
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		group.Go(func() error {
			defer sem.Release(1)
			status := model.DateStatus{Date: date, Status: "success"}
			if err := n.Normalize(gctx, date, enrich); err != nil {
				status = model.DateStatus{Date: date, Status: "failed", Error: err.Error()}
			}
			results[idx[date]] = status
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// normalizeRangeBatch builds every date's activities/stats without LLM
// enrichment first, collects one BatchRequest per date, submits a single
// batch, waits for it, then merges each day's result and writes files.
func (n *Normaliser) normalizeRangeBatch(ctx context.Context, toProcess, allDates []string, results []model.DateStatus, idx map[string]int) ([]model.DateStatus, error) {
	type pending struct {
		date       string
		activities []model.Activity
		stats      model.DailyStats
	}
	var batch []pending

	for _, date := range toProcess {
		day, err := n.loadRawDay(date)
		if err != nil {
			results[idx[date]] = model.DateStatus{Date: date, Status: "failed", Error: err.Error()}
			continue
		}
		activities := BuildActivities(day, n.user, date, n.includeOwnPRComments)
		stats := BuildStats(date, activities)
		batch = append(batch, pending{date: date, activities: activities, stats: stats})
	}

	if len(batch) == 0 {
		return results, nil
	}

	requests := make([]llm.BatchRequest, 0, len(batch))
	for _, p := range batch {
		if len(p.activities) == 0 {
			continue
		}
		requests = append(requests, EnrichBatchRequest(p.date, p.activities))
	}

	var batchResults map[string]string
	if len(requests) > 0 {
		batchID, err := n.router.SubmitBatch(ctx, enrichTask, requests)
		if err != nil {
			return nil, &errs.NormalizeError{Date: "range", Msg: "submit enrich batch", Cause: err}
		}
		provResults, err := n.router.WaitForBatch(ctx, enrichTask, batchID, len(requests))
		if err != nil {
			return nil, &errs.NormalizeError{Date: "range", Msg: "wait for enrich batch", Cause: err}
		}
		batchResults = make(map[string]string, len(provResults))
		for _, r := range provResults {
			batchResults[r.CustomID] = r.Text
		}
	}

	for _, p := range batch {
		activities := p.activities
		if text, ok := batchResults["enrich-"+p.date]; ok {
			merged, err := MergeEnrichResult(activities, text)
			if err != nil {
				n.logger.WithError(err).Warn("failed to merge batch enrich result, using un-enriched activities")
			} else {
				activities = merged
			}
		}

		if err := writeActivities(n.tree.Activities(p.date), activities); err != nil {
			results[idx[p.date]] = model.DateStatus{Date: p.date, Status: "failed", Error: err.Error()}
			continue
		}
		if err := writeStats(n.tree.Stats(p.date), p.stats); err != nil {
			results[idx[p.date]] = model.DateStatus{Date: p.date, Status: "failed", Error: err.Error()}
			continue
		}
		now := time.Now()
		n.checkpoints.Update(model.StageNormalize, p.date)
		n.dailyState.Set(p.date, model.StageNormalize, now)
		results[idx[p.date]] = model.DateStatus{Date: p.date, Status: "success"}
	}

	return results, nil
}

func (n *Normaliser) selectDatesToProcess(dates []string, force bool) ([]string, error) {
	if force {
		return dates, nil
	}
	stale, err := n.dailyState.StaleDates(dates, n.dailyState.NormalizeStale)
	if err != nil {
		return nil, err
	}
	sort.Strings(stale)
	return stale, nil
}

func enumerateDates(since, until time.Time) []string {
	var out []string
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(dateLayout))
	}
	return out
}

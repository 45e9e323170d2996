package summarize

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

func nowUTC() time.Time { return time.Now().UTC() }

func firstOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// DailyRange implements spec §4.6's "daily_range": summarize every stale (or
// forced) date in [since, until], either over a bounded worker pool or via
// a single provider batch submission.
func (s *Summariser) DailyRange(ctx context.Context, since, until string, force, batchMode bool) ([]model.DateStatus, error) {
	sinceT, err := time.Parse(dateLayout, since)
	if err != nil {
		return nil, fmt.Errorf("summarize range: invalid since date %q: %w", since, err)
	}
	untilT, err := time.Parse(dateLayout, until)
	if err != nil {
		return nil, fmt.Errorf("summarize range: invalid until date %q: %w", until, err)
	}
	if untilT.Before(sinceT) {
		return []model.DateStatus{}, nil
	}

	dates := enumerateDates(sinceT, untilT)
	toProcess, err := s.selectDatesToProcess(dates, force)
	if err != nil {
		return nil, err
	}

	results := make([]model.DateStatus, len(dates))
	idx := make(map[string]int, len(dates))
	for i, d := range dates {
		results[i] = model.DateStatus{Date: d, Status: "skipped"}
		idx[d] = i
	}

	if batchMode {
		return s.dailyRangeBatch(ctx, toProcess, results, idx)
	}

	sem := semaphore.NewWeighted(int64(s.maxWorkers))
	group, gctx := errgroup.WithContext(ctx)
	for _, date := range toProcess {
		date := date
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		group.Go(func() error {
			defer sem.Release(1)
			status := model.DateStatus{Date: date, Status: "success"}
			if err := s.Daily(gctx, date); err != nil {
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

func (s *Summariser) dailyRangeBatch(ctx context.Context, toProcess []string, results []model.DateStatus, idx map[string]int) ([]model.DateStatus, error) {
	type pending struct {
		date       string
		activities []model.Activity
		stats      model.DailyStats
	}
	var batch []pending

	for _, date := range toProcess {
		var activities []model.Activity
		if err := readJSONLIfExists(s.tree.Activities(date), &activities); err != nil {
			results[idx[date]] = model.DateStatus{Date: date, Status: "failed", Error: err.Error()}
			continue
		}
		var stats model.DailyStats
		if err := readJSONIfExists(s.tree.Stats(date), &stats); err != nil {
			results[idx[date]] = model.DateStatus{Date: date, Status: "failed", Error: err.Error()}
			continue
		}
		batch = append(batch, pending{date: date, activities: activities, stats: stats})
	}
	if len(batch) == 0 {
		return results, nil
	}

	requests := make([]llm.BatchRequest, 0, len(batch))
	for _, p := range batch {
		requests = append(requests, llm.BatchRequest{
			CustomID: "daily-" + p.date,
			System:   dailySystemPrompt,
			User:     renderDailyUserContent(p.date, p.activities, p.stats),
		})
	}

	batchID, err := s.router.SubmitBatch(ctx, dailyTask, requests)
	if err != nil {
		return nil, &errs.SummarizeError{Level: "daily_range", Key: "batch", Msg: "submit batch", Cause: err}
	}
	provResults, err := s.router.WaitForBatch(ctx, dailyTask, batchID, len(requests))
	if err != nil {
		return nil, &errs.SummarizeError{Level: "daily_range", Key: "batch", Msg: "wait for batch", Cause: err}
	}

	byCustomID := make(map[string]string, len(provResults))
	for _, r := range provResults {
		byCustomID[r.CustomID] = r.Text
	}

	for _, p := range batch {
		text, ok := byCustomID["daily-"+p.date]
		if !ok {
			results[idx[p.date]] = model.DateStatus{Date: p.date, Status: "failed", Error: "no batch result returned for date"}
			continue
		}
		if err := writeSummary(s.tree.DailySummary(p.date), text); err != nil {
			results[idx[p.date]] = model.DateStatus{Date: p.date, Status: "failed", Error: err.Error()}
			continue
		}
		s.dailyState.Set(p.date, model.StageSummarize, time.Now())
		results[idx[p.date]] = model.DateStatus{Date: p.date, Status: "success"}
	}
	return results, nil
}

func (s *Summariser) selectDatesToProcess(dates []string, force bool) ([]string, error) {
	if force {
		return dates, nil
	}
	stale, err := s.dailyState.StaleDates(dates, s.dailyState.SummarizeStale)
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

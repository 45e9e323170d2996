package fetch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/yongseopkim/workrecap/host"
	"github.com/yongseopkim/workrecap/model"
)

// FetchRange is the multi-year backfill path from spec §4.4: chunk the
// range monthly, search each chunk once (replaying from the fetch-progress
// cache where possible), bucket hits by actual day, then enrich and write
// each date that is stale or forced, fanning out across a bounded worker
// pool of Host Clients.
func (f *Fetcher) FetchRange(ctx context.Context, since, until string, types []string, force bool) ([]model.DateStatus, error) {
	sinceT, err := time.Parse(dateLayout, since)
	if err != nil {
		return nil, fmt.Errorf("fetch range: invalid since date %q: %w", since, err)
	}
	untilT, err := time.Parse(dateLayout, until)
	if err != nil {
		return nil, fmt.Errorf("fetch range: invalid until date %q: %w", until, err)
	}
	if untilT.Before(sinceT) {
		return []model.DateStatus{}, nil
	}

	kinds := selectedKinds(types)
	bucket := newChunkBucket()

	for _, chunk := range monthlyChunks(sinceT, untilT) {
		client, err := f.pool.Acquire(ctx, f.clientTimeout)
		if err != nil {
			return nil, err
		}
		for _, kind := range kinds {
			if err := f.searchChunk(ctx, client, kind, chunk[0], chunk[1], bucket); err != nil {
				f.pool.Release(client)
				return nil, err
			}
		}
		f.pool.Release(client)
	}

	dates := enumerateDates(sinceT, untilT)
	toProcess, err := f.selectDatesToProcess(dates, force)
	if err != nil {
		return nil, err
	}

	results := make([]model.DateStatus, len(dates))
	for i, d := range dates {
		results[i] = model.DateStatus{Date: d, Status: "skipped"}
	}
	processIdx := make(map[string]int, len(toProcess))
	for i, d := range dates {
		processIdx[d] = i
	}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(f.maxWorkers))
	group, gctx := errgroup.WithContext(ctx)

	for _, date := range toProcess {
		date := date
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		group.Go(func() error {
			defer sem.Release(1)
			status := f.processDate(gctx, date, kinds, bucket)
			mu.Lock()
			results[processIdx[date]] = status
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (f *Fetcher) selectDatesToProcess(dates []string, force bool) ([]string, error) {
	if force {
		return dates, nil
	}
	var retryable []string
	blocked := make(map[string]struct{})
	for _, d := range dates {
		entry, ok, err := f.failedDates.Entry(d)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if entry.ClassifiedAs == model.FailureRetryable && entry.AttemptCount < f.maxRetries {
			retryable = append(retryable, d)
		} else {
			blocked[d] = struct{}{}
		}
	}
	stale, err := f.dailyState.StaleDates(dates, f.dailyState.FetchStale)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]struct{}, len(stale)+len(retryable))
	for _, d := range stale {
		if _, skip := blocked[d]; !skip {
			merged[d] = struct{}{}
		}
	}
	for _, d := range retryable {
		merged[d] = struct{}{}
	}
	out := make([]string, 0, len(merged))
	for d := range merged {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

func (f *Fetcher) processDate(ctx context.Context, date string, kinds []Kind, bucket chunkBucket) model.DateStatus {
	client, err := f.pool.Acquire(ctx, f.clientTimeout)
	if err != nil {
		return f.fail(date, err)
	}
	defer f.pool.Release(client)

	var prs map[string]model.PullRequest
	var commits []model.Commit
	var issues map[string]model.Issue

	if hasKind(kinds, KindPRs) {
		prs = f.enrichShallowPRs(ctx, client, bucket.prsByDate[date])
	}
	if hasKind(kinds, KindCommits) {
		commits = f.enrichShallowCommits(ctx, client, bucket.commitsByDate[date])
	}
	if hasKind(kinds, KindIssues) {
		issues = f.enrichShallowIssues(ctx, client, bucket.issuesByDate[date])
	}

	if err := f.writeDay(date, prs, commits, issues); err != nil {
		return f.fail(date, err)
	}

	now := time.Now()
	if _, err := f.checkpoints.Update(model.StageFetch, date); err != nil {
		return f.fail(date, err)
	}
	if err := f.dailyState.Set(date, model.StageFetch, now); err != nil {
		return f.fail(date, err)
	}
	if err := f.failedDates.RecordSuccess(date); err != nil {
		return f.fail(date, err)
	}
	return model.DateStatus{Date: date, Status: "success"}
}

func (f *Fetcher) fail(date string, cause error) model.DateStatus {
	if recErr := f.failedDates.RecordFailure(date, "fetch", cause); recErr != nil {
		f.logger.WithError(recErr).Error("failed to record failure in failed-date store")
	}
	return model.DateStatus{Date: date, Status: "failed", Error: cause.Error()}
}

func (f *Fetcher) enrichShallowPRs(ctx context.Context, client *host.Client, shallow map[string]model.PullRequest) map[string]model.PullRequest {
	if len(shallow) == 0 {
		return nil
	}
	out := make(map[string]model.PullRequest, len(shallow))
	for url, pr := range shallow {
		enriched, err := f.enrichPR(ctx, client, pr.Repo, pr.Number)
		if err != nil {
			f.logger.WithFields(map[string]interface{}{"repo": pr.Repo, "number": pr.Number, "error": err.Error()}).
				Warn("skipping pull request that failed to enrich")
			continue
		}
		out[url] = enriched
	}
	return out
}

func (f *Fetcher) enrichShallowCommits(ctx context.Context, client *host.Client, shallow []model.Commit) []model.Commit {
	if len(shallow) == 0 {
		return nil
	}
	out := make([]model.Commit, 0, len(shallow))
	for _, c := range shallow {
		enriched, err := client.GetCommit(ctx, c.Repo, c.SHA)
		if err != nil {
			f.logger.WithFields(map[string]interface{}{"repo": c.Repo, "sha": c.SHA, "error": err.Error()}).
				Warn("skipping commit that failed to enrich")
			continue
		}
		out = append(out, enriched)
	}
	return out
}

func (f *Fetcher) enrichShallowIssues(ctx context.Context, client *host.Client, shallow map[string]model.Issue) map[string]model.Issue {
	if len(shallow) == 0 {
		return nil
	}
	out := make(map[string]model.Issue, len(shallow))
	for url, issue := range shallow {
		enriched, err := f.enrichIssue(ctx, client, issue.Repo, issue.Number)
		if err != nil {
			f.logger.WithFields(map[string]interface{}{"repo": issue.Repo, "number": issue.Number, "error": err.Error()}).
				Warn("skipping issue that failed to enrich")
			continue
		}
		out[url] = enriched
	}
	return out
}

func enumerateDates(since, until time.Time) []string {
	var out []string
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(dateLayout))
	}
	return out
}

package fetch

import (
	"context"
	"time"

	"github.com/yongseopkim/workrecap/host"
	"github.com/yongseopkim/workrecap/model"
	"github.com/yongseopkim/workrecap/state"
)

const dateLayout = "2006-01-02"

// monthlyChunks partitions [since, until] into inclusive monthly ranges.
func monthlyChunks(since, until time.Time) [][2]time.Time {
	var chunks [][2]time.Time
	cursor := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(until) {
		monthEnd := cursor.AddDate(0, 1, -1)
		start := cursor
		if start.Before(since) {
			start = since
		}
		end := monthEnd
		if end.After(until) {
			end = until
		}
		chunks = append(chunks, [2]time.Time{start, end})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return chunks
}

// chunkBucket is a chunk's search hits, bucketed by each item's own
// updated/committed date.
type chunkBucket struct {
	prsByDate     map[string]map[string]model.PullRequest
	commitsByDate map[string][]model.Commit
	issuesByDate  map[string]map[string]model.Issue
}

func newChunkBucket() chunkBucket {
	return chunkBucket{
		prsByDate:     make(map[string]map[string]model.PullRequest),
		commitsByDate: make(map[string][]model.Commit),
		issuesByDate:  make(map[string]map[string]model.Issue),
	}
}

// searchChunk runs (or replays from cache) the search axes for one monthly
// chunk and one kind, bucketing hits by the day they actually occurred on.
func (f *Fetcher) searchChunk(ctx context.Context, client *host.Client, kind Kind, since, until time.Time, bucket chunkBucket) error {
	sinceStr, untilStr := since.Format(dateLayout), until.Format(dateLayout)
	key := state.ChunkKey(sinceStr, untilStr, string(kind))

	cached, found, err := f.fetchProgress.Load(key)
	if err != nil {
		return err
	}

	var progress model.FetchProgressBucket
	if found {
		progress = cached
	} else {
		progress, err = f.runChunkSearch(ctx, client, kind, sinceStr, untilStr)
		if err != nil {
			return err
		}
		if err := f.fetchProgress.Save(key, progress); err != nil {
			return err
		}
	}

	switch kind {
	case KindPRs:
		for url, pr := range progress.PRs {
			date := pr.UpdatedAt.UTC().Format(dateLayout)
			if bucket.prsByDate[date] == nil {
				bucket.prsByDate[date] = make(map[string]model.PullRequest)
			}
			bucket.prsByDate[date][url] = pr
		}
	case KindCommits:
		for _, c := range progress.Commits {
			date := c.CommittedAt.UTC().Format(dateLayout)
			bucket.commitsByDate[date] = append(bucket.commitsByDate[date], c)
		}
	case KindIssues:
		for url, issue := range progress.Issues {
			date := issue.UpdatedAt.UTC().Format(dateLayout)
			if bucket.issuesByDate[date] == nil {
				bucket.issuesByDate[date] = make(map[string]model.Issue)
			}
			bucket.issuesByDate[date][url] = issue
		}
	}
	return nil
}

func (f *Fetcher) runChunkSearch(ctx context.Context, client *host.Client, kind Kind, since, until string) (model.FetchProgressBucket, error) {
	switch kind {
	case KindPRs:
		dedup := make(map[string]host.WireSearchItem)
		axes := []prAxis{axisAuthor, axisCommenter}
		if f.reviewedByAllowed() {
			axes = append(axes, axisReviewer)
		}
		for _, axis := range axes {
			items, err := f.searchIssuesAll(ctx, client, prQuery(axis, f.user, since, until))
			if err != nil {
				if axis == axisReviewer && isPermanentSearchError(err) {
					f.disableReviewedBy()
					continue
				}
				return model.FetchProgressBucket{}, err
			}
			for _, item := range items {
				if item.PullRequest == nil {
					continue
				}
				dedup[item.URL] = item
			}
		}
		prs := make(map[string]model.PullRequest, len(dedup))
		for url, item := range dedup {
			prs[url] = shallowPR(item)
		}
		return model.FetchProgressBucket{PRs: prs}, nil

	case KindCommits:
		items, err := f.searchCommitsAll(ctx, client, commitQuery(f.user, since, until))
		if err != nil {
			return model.FetchProgressBucket{}, err
		}
		dedup := make(map[string]host.WireCommitSearchItem, len(items))
		for _, item := range items {
			dedup[item.SHA] = item
		}
		commits := make([]model.Commit, 0, len(dedup))
		for _, item := range dedup {
			commits = append(commits, shallowCommit(item))
		}
		return model.FetchProgressBucket{Commits: commits}, nil

	case KindIssues:
		dedup := make(map[string]host.WireSearchItem)
		for _, axis := range []issueAxis{issueAxisAuthor, issueAxisCommenter} {
			items, err := f.searchIssuesAll(ctx, client, issueQuery(axis, f.user, since, until))
			if err != nil {
				return model.FetchProgressBucket{}, err
			}
			for _, item := range items {
				if item.PullRequest != nil {
					continue
				}
				dedup[item.URL] = item
			}
		}
		issues := make(map[string]model.Issue, len(dedup))
		for url, item := range dedup {
			issues[url] = shallowIssue(item)
		}
		return model.FetchProgressBucket{Issues: issues}, nil
	}
	return model.FetchProgressBucket{}, nil
}

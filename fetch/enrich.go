package fetch

import (
	"context"

	"github.com/yongseopkim/workrecap/host"
	"github.com/yongseopkim/workrecap/model"
)

const searchTruncationLimit = 1000

// searchIssuesAll pages a search/issues query to completion, warning once if
// the result set reaches the host's 1000-item ceiling.
func (f *Fetcher) searchIssuesAll(ctx context.Context, client *host.Client, query string) ([]host.WireSearchItem, error) {
	var all []host.WireSearchItem
	warned := false
	page := 1
	for {
		result, err := client.SearchIssues(ctx, query, page)
		if err != nil {
			return all, err
		}
		all = append(all, result.Items...)
		if result.TotalCount >= searchTruncationLimit && !warned {
			f.logger.WithField("query", query).Warn("search result set reached the 1000-item ceiling, consider narrowing the date range")
			warned = true
		}
		if len(result.Items) < 100 {
			return all, nil
		}
		page++
	}
}

func (f *Fetcher) searchCommitsAll(ctx context.Context, client *host.Client, query string) ([]host.WireCommitSearchItem, error) {
	var all []host.WireCommitSearchItem
	warned := false
	page := 1
	for {
		result, err := client.SearchCommits(ctx, query, page)
		if err != nil {
			return all, err
		}
		all = append(all, result.Items...)
		if result.TotalCount >= searchTruncationLimit && !warned {
			f.logger.WithField("query", query).Warn("search result set reached the 1000-item ceiling, consider narrowing the date range")
			warned = true
		}
		if len(result.Items) < 100 {
			return all, nil
		}
		page++
	}
}

// searchAndEnrichPRs runs the three PR search axes for [since, until],
// union-dedupes by api url, and enriches each candidate with its files,
// issue-style conversation comments, and reviews. Inline review-thread
// comments on the diff are not fetched.
func (f *Fetcher) searchAndEnrichPRs(ctx context.Context, client *host.Client, since, until string) (map[string]model.PullRequest, error) {
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
			return nil, err
		}
		for _, item := range items {
			if item.PullRequest == nil {
				continue // search/issues also returns plain issues; PRs only here
			}
			dedup[item.URL] = item
		}
	}

	out := make(map[string]model.PullRequest, len(dedup))
	for url, item := range dedup {
		repo := host.RepoFromRepositoryURL(item.RepositoryURL)
		pr, err := f.enrichPR(ctx, client, repo, item.Number)
		if err != nil {
			f.logger.WithFields(map[string]interface{}{"repo": repo, "number": item.Number, "error": err.Error()}).
				Warn("skipping pull request that failed to enrich")
			continue
		}
		out[url] = pr
	}
	return out, nil
}

func (f *Fetcher) enrichPR(ctx context.Context, client *host.Client, repo string, number int) (model.PullRequest, error) {
	pr, err := client.GetPR(ctx, repo, number)
	if err != nil {
		return model.PullRequest{}, err
	}
	files, err := client.GetPRFiles(ctx, repo, number)
	if err != nil {
		return model.PullRequest{}, err
	}
	comments, err := client.GetPRComments(ctx, repo, number)
	if err != nil {
		return model.PullRequest{}, err
	}
	reviews, err := client.GetPRReviews(ctx, repo, number)
	if err != nil {
		return model.PullRequest{}, err
	}
	pr.Files = files
	pr.Comments = filterComments(comments)
	pr.Reviews = filterReviews(reviews)
	return pr, nil
}

// searchAndEnrichCommits runs the commit search axis and enriches each hit
// with its changed-files list.
func (f *Fetcher) searchAndEnrichCommits(ctx context.Context, client *host.Client, since, until string) ([]model.Commit, error) {
	items, err := f.searchCommitsAll(ctx, client, commitQuery(f.user, since, until))
	if err != nil {
		return nil, err
	}

	dedup := make(map[string]host.WireCommitSearchItem, len(items))
	for _, item := range items {
		dedup[item.SHA] = item
	}

	out := make([]model.Commit, 0, len(dedup))
	for sha, item := range dedup {
		commit, err := client.GetCommit(ctx, item.Repository.FullName, sha)
		if err != nil {
			f.logger.WithFields(map[string]interface{}{"repo": item.Repository.FullName, "sha": sha, "error": err.Error()}).
				Warn("skipping commit that failed to enrich")
			continue
		}
		out = append(out, commit)
	}
	return out, nil
}

// searchAndEnrichIssues runs the two issue search axes and enriches each hit
// with its comment thread.
func (f *Fetcher) searchAndEnrichIssues(ctx context.Context, client *host.Client, since, until string) (map[string]model.Issue, error) {
	dedup := make(map[string]host.WireSearchItem)

	for _, axis := range []issueAxis{issueAxisAuthor, issueAxisCommenter} {
		items, err := f.searchIssuesAll(ctx, client, issueQuery(axis, f.user, since, until))
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.PullRequest != nil {
				continue // PRs surface on the same endpoint, excluded here
			}
			dedup[item.URL] = item
		}
	}

	out := make(map[string]model.Issue, len(dedup))
	for url, item := range dedup {
		repo := host.RepoFromRepositoryURL(item.RepositoryURL)
		issue, err := f.enrichIssue(ctx, client, repo, item.Number)
		if err != nil {
			f.logger.WithFields(map[string]interface{}{"repo": repo, "number": item.Number, "error": err.Error()}).
				Warn("skipping issue that failed to enrich")
			continue
		}
		out[url] = issue
	}
	return out, nil
}

func (f *Fetcher) enrichIssue(ctx context.Context, client *host.Client, repo string, number int) (model.Issue, error) {
	issue, err := client.GetIssue(ctx, repo, number)
	if err != nil {
		return model.Issue{}, err
	}
	comments, err := client.GetIssueComments(ctx, repo, number)
	if err != nil {
		return model.Issue{}, err
	}
	issue.Comments = filterComments(comments)
	return issue, nil
}

package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/yongseopkim/workrecap/model"
)

// GetPR fetches one pull request's detail. Files, comments, and reviews are
// left empty; Fetcher composes them from the sibling Get*PR* calls.
func (c *Client) GetPR(ctx context.Context, repo string, number int) (model.PullRequest, error) {
	var w WirePR
	path := fmt.Sprintf("/repos/%s/pulls/%d", repo, number)
	if err := c.get(ctx, path, nil, "", &w); err != nil {
		return model.PullRequest{}, err
	}
	return prFromWire(w, repo), nil
}

// GetPRFiles fetches every file changed by a pull request, paginated.
func (c *Client) GetPRFiles(ctx context.Context, repo string, number int) ([]model.FileChange, error) {
	path := fmt.Sprintf("/repos/%s/pulls/%d/files", repo, number)
	items, err := paginate[WireFile](ctx, c, path, nil, "")
	if err != nil {
		return nil, err
	}
	return filesFromWire(items), nil
}

// GetPRComments fetches every issue-style comment on a pull request.
func (c *Client) GetPRComments(ctx context.Context, repo string, number int) ([]model.Comment, error) {
	path := fmt.Sprintf("/repos/%s/issues/%d/comments", repo, number)
	items, err := paginate[WireComment](ctx, c, path, nil, "")
	if err != nil {
		return nil, err
	}
	return commentsFromWire(items), nil
}

// GetPRReviews fetches every review submitted on a pull request.
func (c *Client) GetPRReviews(ctx context.Context, repo string, number int) ([]model.Review, error) {
	path := fmt.Sprintf("/repos/%s/pulls/%d/reviews", repo, number)
	items, err := paginate[WireReview](ctx, c, path, nil, "")
	if err != nil {
		return nil, err
	}
	return reviewsFromWire(items), nil
}

// GetCommit fetches one commit, including its changed files.
func (c *Client) GetCommit(ctx context.Context, repo, sha string) (model.Commit, error) {
	var w WireCommit
	path := fmt.Sprintf("/repos/%s/commits/%s", repo, sha)
	if err := c.get(ctx, path, nil, "", &w); err != nil {
		return model.Commit{}, err
	}
	return commitFromWire(w, repo), nil
}

// GetIssue fetches one issue's detail.
func (c *Client) GetIssue(ctx context.Context, repo string, number int) (model.Issue, error) {
	var w WireIssue
	path := fmt.Sprintf("/repos/%s/issues/%d", repo, number)
	if err := c.get(ctx, path, nil, "", &w); err != nil {
		return model.Issue{}, err
	}
	return issueFromWire(w, repo), nil
}

// GetIssueComments fetches every comment on an issue.
func (c *Client) GetIssueComments(ctx context.Context, repo string, number int) ([]model.Comment, error) {
	path := fmt.Sprintf("/repos/%s/issues/%d/comments", repo, number)
	items, err := paginate[WireComment](ctx, c, path, nil, "")
	if err != nil {
		return nil, err
	}
	return commentsFromWire(items), nil
}

func prFromWire(w WirePR, repo string) model.PullRequest {
	if w.Base.Repo.FullName != "" {
		repo = w.Base.Repo.FullName
	}
	return model.PullRequest{
		ID:        w.ID,
		Number:    w.Number,
		HTMLURL:   w.HTMLURL,
		APIURL:    w.URL,
		Repo:      repo,
		State:     w.State,
		Merged:    w.Merged,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		MergedAt:  w.MergedAt,
		Author:    w.User.Login,
		Labels:    labelNames(w.Labels),
		Title:     w.Title,
		Body:      w.Body,
	}
}

func commitFromWire(w WireCommit, repo string) model.Commit {
	author := ""
	if w.Author != nil {
		author = w.Author.Login
	}
	return model.Commit{
		SHA:         w.SHA,
		HTMLURL:     w.HTMLURL,
		APIURL:      w.URL,
		Message:     w.Commit.Message,
		Author:      author,
		Repo:        repo,
		CommittedAt: w.Commit.Committer.Date,
		Files:       filesFromWire(w.Files),
	}
}

func issueFromWire(w WireIssue, repo string) model.Issue {
	return model.Issue{
		ID:        w.ID,
		Number:    w.Number,
		HTMLURL:   w.HTMLURL,
		APIURL:    w.URL,
		Title:     w.Title,
		Body:      w.Body,
		State:     w.State,
		Repo:      repo,
		Author:    w.User.Login,
		Labels:    labelNames(w.Labels),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		ClosedAt:  w.ClosedAt,
	}
}

func filesFromWire(items []WireFile) []model.FileChange {
	out := make([]model.FileChange, 0, len(items))
	for _, f := range items {
		out = append(out, model.FileChange{
			Filename:  f.Filename,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Status:    f.Status,
			Patch:     f.Patch,
		})
	}
	return out
}

func commentsFromWire(items []WireComment) []model.Comment {
	out := make([]model.Comment, 0, len(items))
	for _, c := range items {
		out = append(out, model.Comment{
			Author:    c.User.Login,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			URL:       c.HTMLURL,
		})
	}
	return out
}

func reviewsFromWire(items []WireReview) []model.Review {
	out := make([]model.Review, 0, len(items))
	for _, r := range items {
		out = append(out, model.Review{
			Author:      r.User.Login,
			State:       r.State,
			Body:        r.Body,
			SubmittedAt: r.SubmittedAt,
			URL:         r.HTMLURL,
		})
	}
	return out
}

func labelNames(labels []WireLabel) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Name)
	}
	return out
}

// RepoFromRepositoryURL extracts "owner/name" from a search item's
// repository_url field (".../repos/owner/name").
func RepoFromRepositoryURL(repositoryURL string) string {
	idx := strings.Index(repositoryURL, "/repos/")
	if idx == -1 {
		return ""
	}
	return repositoryURL[idx+len("/repos/"):]
}

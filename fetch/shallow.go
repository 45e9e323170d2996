package fetch

import (
	"github.com/yongseopkim/workrecap/host"
	"github.com/yongseopkim/workrecap/model"
)

// shallowPR converts a search hit into the lightweight PullRequest shape
// cached in FetchProgress: identity fields only, no files/comments/reviews.
func shallowPR(item host.WireSearchItem) model.PullRequest {
	return model.PullRequest{
		ID:        item.ID,
		Number:    item.Number,
		HTMLURL:   item.HTMLURL,
		APIURL:    item.URL,
		Repo:      host.RepoFromRepositoryURL(item.RepositoryURL),
		State:     item.State,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
		Author:    item.User.Login,
		Title:     item.Title,
	}
}

func shallowIssue(item host.WireSearchItem) model.Issue {
	return model.Issue{
		ID:        item.ID,
		Number:    item.Number,
		HTMLURL:   item.HTMLURL,
		APIURL:    item.URL,
		Repo:      host.RepoFromRepositoryURL(item.RepositoryURL),
		State:     item.State,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
		Author:    item.User.Login,
		Title:     item.Title,
	}
}

func shallowCommit(item host.WireCommitSearchItem) model.Commit {
	author := ""
	if item.Author != nil {
		author = item.Author.Login
	}
	return model.Commit{
		SHA:         item.SHA,
		HTMLURL:     item.HTMLURL,
		APIURL:      item.URL,
		Message:     item.Commit.Message,
		Author:      author,
		Repo:        item.Repository.FullName,
		CommittedAt: item.Commit.Committer.Date,
	}
}

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yongseopkim/workrecap/model"
)

func TestBuildStats_OnlyCountsAuthoredAndCommitLines(t *testing.T) {
	activities := []model.Activity{
		{Kind: model.KindPRAuthored, Repo: "acme/widgets", Additions: 10, Deletions: 2},
		{Kind: model.KindCommit, Repo: "acme/widgets", Additions: 5, Deletions: 1},
		{Kind: model.KindPRReviewed, Repo: "acme/widgets", Additions: 999, Deletions: 999},
		{Kind: model.KindPRCommented, Repo: "acme/other", Additions: 999, Deletions: 999},
		{Kind: model.KindIssueAuthored, Repo: "acme/other"},
		{Kind: model.KindIssueCommented, Repo: "acme/other"},
	}

	stats := BuildStats("2026-01-05", activities)

	assert.Equal(t, "2026-01-05", stats.Date)
	assert.Equal(t, 15, stats.GitHub.TotalAdditions, "reviewed/commented lines must never be summed")
	assert.Equal(t, 3, stats.GitHub.TotalDeletions)
	assert.Len(t, stats.GitHub.AuthoredPRs, 1)
	assert.Len(t, stats.GitHub.Commits, 1)
	assert.Len(t, stats.GitHub.ReviewedPRs, 1)
	assert.Len(t, stats.GitHub.AuthoredIssues, 1)
	assert.Equal(t, 1, stats.GitHub.AuthoredCount)
	assert.Equal(t, 1, stats.GitHub.CommitCount)
}

func TestBuildStats_ReposTouchedSortedAndDeduped(t *testing.T) {
	activities := []model.Activity{
		{Kind: model.KindCommit, Repo: "z/repo"},
		{Kind: model.KindPRAuthored, Repo: "a/repo"},
		{Kind: model.KindPRReviewed, Repo: "a/repo"},
		{Kind: model.KindIssueCommented, Repo: ""},
	}

	stats := BuildStats("2026-01-05", activities)

	assert.Equal(t, []string{"a/repo", "z/repo"}, stats.GitHub.ReposTouched)
}

func TestBuildStats_EmptyDay(t *testing.T) {
	stats := BuildStats("2026-01-05", nil)

	assert.Equal(t, 0, stats.GitHub.TotalAdditions)
	assert.Empty(t, stats.GitHub.ReposTouched)
}

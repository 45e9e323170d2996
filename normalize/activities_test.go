package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yongseopkim/workrecap/model"
)

func TestBuildActivities_PRAuthored(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 42, Repo: "acme/widgets", Author: "alice",
				Title: "Add retry logic", Body: "Adds backoff to the fetch loop.\nSee #40.",
				CreatedAt: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC),
				Files: []model.FileChange{
					{Filename: "fetch/fetch.go", Additions: 12, Deletions: 3},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)

	assert.Len(t, acts, 1)
	assert.Equal(t, model.KindPRAuthored, acts[0].Kind)
	assert.Equal(t, "Adds backoff to the fetch loop.", acts[0].Summary)
	assert.Equal(t, 12, acts[0].Additions)
	assert.Equal(t, 3, acts[0].Deletions)
	assert.True(t, acts[0].Timestamp.Equal(day.PRs[0].CreatedAt), "pr_authored is timestamped at PR.CreatedAt, not UpdatedAt")
}

func TestBuildActivities_PRAuthoredOnlyFiresOnCreationDate(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 42, Repo: "acme/widgets", Author: "alice", Title: "Add retry logic",
				CreatedAt: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC),
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-09", false)
	assert.Empty(t, acts, "a PR merely updated on a later day must not re-emit pr_authored into that day")
}

func TestBuildActivities_SelfReviewSuppressed(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 7, Repo: "acme/widgets", Author: "alice", Title: "Fix bug",
				CreatedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
				Reviews: []model.Review{
					{Author: "alice", SubmittedAt: time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)

	for _, a := range acts {
		assert.NotEqual(t, model.KindPRReviewed, a.Kind, "an author must never get a pr_reviewed activity on their own PR")
	}
}

func TestBuildActivities_ReviewByOtherUserOnOwnPR(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 7, Repo: "acme/widgets", Author: "bob", Title: "Fix bug",
				CreatedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
				Reviews: []model.Review{
					{Author: "alice", SubmittedAt: time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC), URL: "https://host/reviews/1"},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)

	assert.Len(t, acts, 1)
	assert.Equal(t, model.KindPRReviewed, acts[0].Kind)
}

func TestBuildActivities_ReviewOnDifferentDayExcluded(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 7, Repo: "acme/widgets", Author: "bob", Title: "Fix bug",
				CreatedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
				Reviews: []model.Review{
					{Author: "alice", SubmittedAt: time.Date(2026, 1, 3, 9, 30, 0, 0, time.UTC), URL: "https://host/reviews/1"},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)
	assert.Empty(t, acts, "a review submitted on a different day must not be filed under this day merely because the PR was updated here")
}

func TestBuildActivities_ReviewsOnSamePRDayCollapseToOneActivity(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 7, Repo: "acme/widgets", Author: "bob", Title: "Fix bug",
				CreatedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
				Reviews: []model.Review{
					{Author: "alice", SubmittedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), URL: "https://host/reviews/1", Body: "first pass"},
					{Author: "alice", SubmittedAt: time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC), URL: "https://host/reviews/2", Body: "second pass"},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)

	assert.Len(t, acts, 1, "two reviews by the same user on the same PR-day collapse to one activity")
	assert.Equal(t, model.KindPRReviewed, acts[0].Kind)
	assert.Equal(t, []string{"https://host/reviews/1", "https://host/reviews/2"}, acts[0].EvidenceURLs)
	assert.Equal(t, []string{"first pass", "second pass"}, acts[0].ReviewBodies)
	assert.True(t, acts[0].Timestamp.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)), "collapsed timestamp is the earliest of the day's reviews")
}

func TestBuildActivities_CommentsOnSamePRDayCollapseToOneActivity(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 9, Repo: "acme/widgets", Author: "bob", Title: "WIP",
				CreatedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
				Comments: []model.Comment{
					{Author: "alice", CreatedAt: time.Date(2026, 1, 5, 9, 5, 0, 0, time.UTC), URL: "https://host/comments/1", Body: "nit: typo"},
					{Author: "alice", CreatedAt: time.Date(2026, 1, 5, 9, 10, 0, 0, time.UTC), URL: "https://host/comments/2", Body: "looks fine otherwise"},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)

	assert.Len(t, acts, 1)
	assert.Equal(t, model.KindPRCommented, acts[0].Kind)
	assert.Equal(t, []string{"https://host/comments/1", "https://host/comments/2"}, acts[0].EvidenceURLs)
	assert.Equal(t, []string{"nit: typo", "looks fine otherwise"}, acts[0].CommentBodies)
}

func TestBuildActivities_OwnCommentOnOwnPRFollowsIncludeFlag(t *testing.T) {
	day := rawDay{
		PRs: []model.PullRequest{
			{
				Number: 9, Repo: "acme/widgets", Author: "alice", Title: "WIP",
				CreatedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
				Comments: []model.Comment{
					{Author: "alice", CreatedAt: time.Date(2026, 1, 5, 9, 5, 0, 0, time.UTC)},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)
	assert.Len(t, acts, 1, "only the pr_authored activity, the self-comment is excluded")
	assert.Equal(t, model.KindPRAuthored, acts[0].Kind)

	acts = BuildActivities(day, "alice", "2026-01-05", true)
	assert.Len(t, acts, 2, "including own PR comments surfaces the comment too")
}

func TestBuildActivities_CommitOnlyOnItsOwnDate(t *testing.T) {
	day := rawDay{
		Commits: []model.Commit{
			{SHA: "abc123", Repo: "acme/widgets", Message: "fix", CommittedAt: time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)},
		},
	}

	assert.Len(t, BuildActivities(day, "alice", "2026-01-05", false), 1)
	assert.Empty(t, BuildActivities(day, "alice", "2026-01-06", false))
}

func TestBuildActivities_CommitAndIssueSortedByTimestamp(t *testing.T) {
	day := rawDay{
		Commits: []model.Commit{
			{SHA: "abc123", Repo: "acme/widgets", Message: "second commit\nbody", CommittedAt: time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)},
		},
		Issues: []model.Issue{
			{Number: 3, Repo: "acme/widgets", Author: "alice", Title: "Bug report", CreatedAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)

	assert.Len(t, acts, 2)
	assert.True(t, acts[0].Timestamp.Before(acts[1].Timestamp))
	assert.Equal(t, model.KindIssueAuthored, acts[0].Kind)
	assert.Equal(t, model.KindCommit, acts[1].Kind)
	assert.Equal(t, "second commit", acts[1].Title)
}

func TestBuildActivities_IssueCommentsOnSameDayCollapse(t *testing.T) {
	day := rawDay{
		Issues: []model.Issue{
			{
				Number: 3, Repo: "acme/widgets", Author: "bob", Title: "Bug report",
				CreatedAt: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
				Comments: []model.Comment{
					{Author: "alice", CreatedAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC), URL: "https://host/ic/1"},
					{Author: "alice", CreatedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), URL: "https://host/ic/2"},
				},
			},
		},
	}

	acts := BuildActivities(day, "alice", "2026-01-05", false)

	assert.Len(t, acts, 1)
	assert.Equal(t, model.KindIssueCommented, acts[0].Kind)
	assert.Equal(t, []string{"https://host/ic/1", "https://host/ic/2"}, acts[0].EvidenceURLs)
}

func TestPRSummary_FallsBackToPathWhenBodyEmpty(t *testing.T) {
	pr := model.PullRequest{
		Title: "Refactor fetch internals",
		Files: []model.FileChange{
			{Filename: "fetch/chunk.go"},
			{Filename: "fetch/range.go"},
			{Filename: "normalize/stats.go"},
		},
	}

	assert.Equal(t, "changes in fetch", prSummary(pr))
}

func TestPRSummary_FallsBackToTitleWhenNoFiles(t *testing.T) {
	pr := model.PullRequest{Title: "Empty PR"}
	assert.Equal(t, "Empty PR", prSummary(pr))
}

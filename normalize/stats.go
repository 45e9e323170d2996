package normalize

import (
	"sort"

	"github.com/yongseopkim/workrecap/model"
)

// BuildStats implements spec §4.5's stats rules: additions/deletions are
// summed only from pr_authored and commit activities, repos_touched is the
// sorted distinct set of every activity's repo.
func BuildStats(date string, activities []model.Activity) model.DailyStats {
	var gh model.GitHubStats
	repoSet := make(map[string]struct{})

	for _, a := range activities {
		if a.Repo != "" {
			repoSet[a.Repo] = struct{}{}
		}
		switch a.Kind {
		case model.KindPRAuthored:
			gh.AuthoredCount++
			gh.TotalAdditions += a.Additions
			gh.TotalDeletions += a.Deletions
			gh.AuthoredPRs = append(gh.AuthoredPRs, refFor(a))
		case model.KindPRReviewed:
			gh.ReviewedCount++
			gh.ReviewedPRs = append(gh.ReviewedPRs, refFor(a))
		case model.KindPRCommented:
			gh.CommentedCount++
		case model.KindCommit:
			gh.CommitCount++
			gh.TotalAdditions += a.Additions
			gh.TotalDeletions += a.Deletions
			gh.Commits = append(gh.Commits, refFor(a))
		case model.KindIssueAuthored:
			gh.AuthoredIssueCount++
			gh.AuthoredIssues = append(gh.AuthoredIssues, refFor(a))
		case model.KindIssueCommented:
			gh.CommentedIssueCount++
		}
	}

	repos := make([]string, 0, len(repoSet))
	for r := range repoSet {
		repos = append(repos, r)
	}
	sort.Strings(repos)
	gh.ReposTouched = repos

	return model.DailyStats{Date: date, GitHub: gh}
}

func refFor(a model.Activity) model.RefItem {
	return model.RefItem{URL: a.URL, Title: a.Title, Repo: a.Repo, SHA: a.CommitSHA}
}

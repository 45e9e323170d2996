package normalize

import (
	"path/filepath"
	"sort"

	"github.com/yongseopkim/workrecap/model"
)

const dayFormat = "2006-01-02"

// BuildActivities implements spec §4.5's activity generation rules: one
// Activity per pr_authored/pr_reviewed/pr_commented/commit/issue_authored/
// issue_commented event whose own timestamp falls on date, with self-review
// suppression, per-PR-day review/comment collapsing, and evidence URL
// merging, sorted by timestamp ascending.
func BuildActivities(day rawDay, user, date string, includeOwnPRComments bool) []model.Activity {
	var out []model.Activity

	for _, pr := range day.PRs {
		out = append(out, prActivities(pr, user, date, includeOwnPRComments)...)
	}
	for _, c := range day.Commits {
		if c.CommittedAt.Format(dayFormat) != date {
			continue
		}
		out = append(out, commitActivity(c))
	}
	for _, issue := range day.Issues {
		out = append(out, issueActivities(issue, user, date)...)
	}

	sortActivities(out)
	return out
}

// prActivities collapses a PR's events on date to at most: one pr_authored
// (if date is its creation date), one pr_reviewed merging every matching
// review that day, and one pr_commented merging every matching comment that
// day, per spec §3's per-PR-day collapsing rule and invariant I3.
func prActivities(pr model.PullRequest, user, date string, includeOwnPRComments bool) []model.Activity {
	var acts []model.Activity
	isAuthor := pr.Author == user

	if isAuthor && pr.CreatedAt.Format(dayFormat) == date {
		acts = append(acts, model.Activity{
			Timestamp:    pr.CreatedAt,
			Kind:         model.KindPRAuthored,
			Repo:         pr.Repo,
			ExternalID:   pr.Number,
			Title:        pr.Title,
			URL:          pr.HTMLURL,
			Summary:      prSummary(pr),
			ChangedFiles: fileNames(pr.Files),
			Additions:    sumAdditions(pr.Files),
			Deletions:    sumDeletions(pr.Files),
			Labels:       pr.Labels,
			EvidenceURLs: []string{pr.HTMLURL},
			Body:         pr.Body,
		})
	}

	if !isAuthor {
		var matching []model.Review
		for _, review := range pr.Reviews {
			if review.Author == user && review.SubmittedAt.Format(dayFormat) == date {
				matching = append(matching, review)
			}
		}
		if len(matching) > 0 {
			acts = append(acts, mergeReviews(pr, matching))
		}
	}

	if !isAuthor || includeOwnPRComments {
		var matching []model.Comment
		for _, comment := range pr.Comments {
			if comment.Author == user && comment.CreatedAt.Format(dayFormat) == date {
				matching = append(matching, comment)
			}
		}
		if len(matching) > 0 {
			acts = append(acts, mergeComments(pr, matching))
		}
	}

	return acts
}

// mergeReviews collapses every review a user submitted on pr on one day into
// a single pr_reviewed Activity: earliest submission time, every review URL
// in evidence_urls, every review body in ReviewBodies.
func mergeReviews(pr model.PullRequest, reviews []model.Review) model.Activity {
	earliest := reviews[0].SubmittedAt
	var urls, bodies []string
	for _, r := range reviews {
		if r.SubmittedAt.Before(earliest) {
			earliest = r.SubmittedAt
		}
		urls = append(urls, r.URL)
		bodies = append(bodies, r.Body)
	}
	return model.Activity{
		Timestamp:    earliest,
		Kind:         model.KindPRReviewed,
		Repo:         pr.Repo,
		ExternalID:   pr.Number,
		Title:        pr.Title,
		URL:          pr.HTMLURL,
		Summary:      "reviewed " + pr.Title,
		Labels:       pr.Labels,
		EvidenceURLs: urls,
		ReviewBodies: bodies,
	}
}

// mergeComments collapses every comment a user left on pr on one day into a
// single pr_commented Activity: earliest comment time, every comment URL in
// evidence_urls, every comment body in CommentBodies.
func mergeComments(pr model.PullRequest, comments []model.Comment) model.Activity {
	earliest := comments[0].CreatedAt
	var urls, bodies []string
	for _, c := range comments {
		if c.CreatedAt.Before(earliest) {
			earliest = c.CreatedAt
		}
		urls = append(urls, c.URL)
		bodies = append(bodies, c.Body)
	}
	return model.Activity{
		Timestamp:     earliest,
		Kind:          model.KindPRCommented,
		Repo:          pr.Repo,
		ExternalID:    pr.Number,
		Title:         pr.Title,
		URL:           pr.HTMLURL,
		Summary:       "commented on " + pr.Title,
		Labels:        pr.Labels,
		EvidenceURLs:  urls,
		CommentBodies: bodies,
	}
}

func commitActivity(c model.Commit) model.Activity {
	return model.Activity{
		Timestamp:    c.CommittedAt,
		Kind:         model.KindCommit,
		Repo:         c.Repo,
		CommitSHA:    c.SHA,
		Title:        firstLine(c.Message),
		URL:          c.HTMLURL,
		Summary:      firstLine(c.Message),
		ChangedFiles: fileNames(c.Files),
		Additions:    sumAdditions(c.Files),
		Deletions:    sumDeletions(c.Files),
		EvidenceURLs: []string{c.HTMLURL},
		Body:         c.Message,
	}
}

// issueActivities mirrors prActivities' date filtering and comment
// collapsing for issues: one issue_authored on the creation date, one
// issue_commented per day merging every matching comment.
func issueActivities(issue model.Issue, user, date string) []model.Activity {
	var acts []model.Activity
	isAuthor := issue.Author == user

	if isAuthor && issue.CreatedAt.Format(dayFormat) == date {
		acts = append(acts, model.Activity{
			Timestamp:    issue.CreatedAt,
			Kind:         model.KindIssueAuthored,
			Repo:         issue.Repo,
			ExternalID:   issue.Number,
			Title:        issue.Title,
			URL:          issue.HTMLURL,
			Summary:      issue.Title,
			Labels:       issue.Labels,
			EvidenceURLs: []string{issue.HTMLURL},
			Body:         issue.Body,
		})
	}

	var matching []model.Comment
	for _, comment := range issue.Comments {
		if comment.Author == user && comment.CreatedAt.Format(dayFormat) == date {
			matching = append(matching, comment)
		}
	}
	if len(matching) > 0 {
		earliest := matching[0].CreatedAt
		var urls, bodies []string
		for _, c := range matching {
			if c.CreatedAt.Before(earliest) {
				earliest = c.CreatedAt
			}
			urls = append(urls, c.URL)
			bodies = append(bodies, c.Body)
		}
		acts = append(acts, model.Activity{
			Timestamp:     earliest,
			Kind:          model.KindIssueCommented,
			Repo:          issue.Repo,
			ExternalID:    issue.Number,
			Title:         issue.Title,
			URL:           issue.HTMLURL,
			Summary:       "commented on " + issue.Title,
			Labels:        issue.Labels,
			EvidenceURLs:  urls,
			CommentBodies: bodies,
		})
	}

	return acts
}

// prSummary is the machine one-liner: the PR's own body when non-empty,
// falling back to a path-derived description of the largest changed area.
func prSummary(pr model.PullRequest) string {
	if pr.Body != "" {
		return firstLine(pr.Body)
	}
	if len(pr.Files) == 0 {
		return pr.Title
	}
	dirs := make(map[string]int)
	for _, f := range pr.Files {
		dirs[filepath.Dir(f.Filename)]++
	}
	best, bestCount := "", 0
	for dir, count := range dirs {
		if count > bestCount || (count == bestCount && dir < best) {
			best, bestCount = dir, count
		}
	}
	if best == "." || best == "" {
		return pr.Title
	}
	return "changes in " + best
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func fileNames(files []model.FileChange) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Filename)
	}
	sort.Strings(out)
	return out
}

func sumAdditions(files []model.FileChange) int {
	total := 0
	for _, f := range files {
		total += f.Additions
	}
	return total
}

func sumDeletions(files []model.FileChange) int {
	total := 0
	for _, f := range files {
		total += f.Deletions
	}
	return total
}

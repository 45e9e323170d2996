// Package model defines the raw, normalised, statistics, and state record
// types that flow through the workrecap pipeline.
package model

import "time"

// FileChange describes one file touched by a PullRequest or Commit.
type FileChange struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int     `json:"deletions"`
	Status    string `json:"status"` // added|modified|removed|renamed
	Patch     string `json:"patch,omitempty"`
}

// Comment is a review-thread or issue comment.
type Comment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

// Review is a pull request review submission.
type Review struct {
	Author      string    `json:"author"`
	State       string    `json:"state"` // APPROVED|CHANGES_REQUESTED|COMMENTED
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
	URL         string    `json:"url"`
}

// PullRequest is a raw pull request fetched from the host API.
type PullRequest struct {
	ID        int64        `json:"id"`
	Number    int          `json:"number"`
	HTMLURL   string       `json:"html_url"`
	APIURL    string       `json:"api_url"`
	Repo      string       `json:"repo"` // "owner/name"
	State     string       `json:"state"`
	Merged    bool         `json:"merged"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	MergedAt  *time.Time   `json:"merged_at,omitempty"`
	Author    string       `json:"author"`
	Labels    []string     `json:"labels"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Files     []FileChange `json:"files"`
	Comments  []Comment    `json:"comments"`
	Reviews   []Review     `json:"reviews"`
}

// Commit is a raw commit fetched from the host API.
type Commit struct {
	SHA          string       `json:"sha"`
	HTMLURL      string       `json:"html_url"`
	APIURL       string       `json:"api_url"`
	Message      string       `json:"message"`
	Author       string       `json:"author"`
	Repo         string       `json:"repo"`
	CommittedAt  time.Time    `json:"committed_at"`
	Files        []FileChange `json:"files"`
}

// Issue is a raw issue fetched from the host API.
type Issue struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	HTMLURL   string    `json:"html_url"`
	APIURL    string    `json:"api_url"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	Repo      string    `json:"repo"`
	Author    string    `json:"author"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	Comments  []Comment `json:"comments"`
}

// ActivityKind tags the semantic meaning of an Activity.
type ActivityKind string

const (
	KindPRAuthored     ActivityKind = "pr_authored"
	KindPRReviewed     ActivityKind = "pr_reviewed"
	KindPRCommented    ActivityKind = "pr_commented"
	KindCommit         ActivityKind = "commit"
	KindIssueAuthored  ActivityKind = "issue_authored"
	KindIssueCommented ActivityKind = "issue_commented"
)

// Intent is an optional LLM-assigned classification of an Activity's change.
type Intent string

const (
	IntentBugfix   Intent = "bugfix"
	IntentFeature  Intent = "feature"
	IntentRefactor Intent = "refactor"
	IntentDocs     Intent = "docs"
	IntentChore    Intent = "chore"
	IntentTest     Intent = "test"
	IntentConfig   Intent = "config"
	IntentPerf     Intent = "perf"
	IntentSecurity Intent = "security"
	IntentOther    Intent = "other"
)

// Activity is one normalised, kind-tagged record of user action on a day.
type Activity struct {
	Timestamp      time.Time    `json:"ts"`
	Kind           ActivityKind `json:"kind"`
	Repo           string       `json:"repo"`
	ExternalID     int          `json:"external_id"` // pr/issue number, 0 for commits
	Title          string       `json:"title"`
	URL            string       `json:"url"`
	Summary        string       `json:"summary"`
	CommitSHA      string       `json:"commit_sha,omitempty"`
	ChangedFiles   []string     `json:"changed_files"`
	Additions      int          `json:"additions"`
	Deletions      int          `json:"deletions"`
	Labels         []string     `json:"labels"`
	EvidenceURLs   []string     `json:"evidence_urls"`
	Body           string       `json:"body"`
	ReviewBodies   []string     `json:"review_bodies"`
	CommentBodies  []string     `json:"comment_bodies"`
	Intent         Intent       `json:"intent,omitempty"`
	ChangeSummary  string       `json:"change_summary,omitempty"`
}

// RefItem is a small reference tuple embedded in DailyStats' per-kind lists.
type RefItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Repo  string `json:"repo"`
	SHA   string `json:"sha,omitempty"`
}

// GitHubStats is the required per-source block of DailyStats.
type GitHubStats struct {
	AuthoredCount      int       `json:"authored_count"`
	ReviewedCount      int       `json:"reviewed_count"`
	CommentedCount     int       `json:"commented_count"`
	CommitCount        int       `json:"commit_count"`
	AuthoredIssueCount int       `json:"authored_issue_count"`
	CommentedIssueCount int      `json:"commented_issue_count"`
	TotalAdditions     int       `json:"total_additions"`
	TotalDeletions     int       `json:"total_deletions"`
	ReposTouched       []string  `json:"repos_touched"`
	AuthoredPRs        []RefItem `json:"authored_prs"`
	ReviewedPRs        []RefItem `json:"reviewed_prs"`
	Commits            []RefItem `json:"commits"`
	AuthoredIssues     []RefItem `json:"authored_issues"`
}

// DailyStats is the per-date aggregate statistics object.
type DailyStats struct {
	Date   string      `json:"date"`
	GitHub GitHubStats `json:"github"`
	// Other sources are empty placeholders reserved for future ingestion.
	Other map[string]interface{} `json:"other,omitempty"`
}

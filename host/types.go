package host

import "time"

// WireUser is the host API's embedded actor shape.
type WireUser struct {
	Login string `json:"login"`
}

// WireLabel is the host API's embedded label shape.
type WireLabel struct {
	Name string `json:"name"`
}

// WireSearchItem is one result from the search/issues endpoint, which the
// host API uses for both issues and pull requests. A non-nil PullRequest
// field distinguishes the two.
type WireSearchItem struct {
	ID            int64      `json:"id"`
	Number        int        `json:"number"`
	HTMLURL       string     `json:"html_url"`
	URL           string     `json:"url"`
	State         string     `json:"state"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	User          WireUser   `json:"user"`
	Labels        []WireLabel `json:"labels"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at"`
	PullRequest   *struct{}  `json:"pull_request,omitempty"`
	RepositoryURL string     `json:"repository_url"`
}

// WireCommitSearchItem is one result from the search/commits endpoint.
type WireCommitSearchItem struct {
	SHA        string   `json:"sha"`
	HTMLURL    string   `json:"html_url"`
	URL        string   `json:"url"`
	Commit     struct {
		Message   string `json:"message"`
		Author    struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
		Committer struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
	Author     *WireUser `json:"author"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// WirePR is the detail shape returned by get_pr.
type WirePR struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	HTMLURL   string     `json:"html_url"`
	URL       string     `json:"url"`
	State     string     `json:"state"`
	Merged    bool       `json:"merged"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	User      WireUser   `json:"user"`
	Labels    []WireLabel `json:"labels"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at"`
	Base      struct {
		Repo struct {
			FullName string `json:"full_name"`
		} `json:"repo"`
	} `json:"base"`
}

// WireFile is one entry of get_pr_files / a commit's file list.
type WireFile struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Status    string `json:"status"`
	Patch     string `json:"patch"`
}

// WireComment is one entry of get_pr_comments / get_issue_comments.
type WireComment struct {
	Body      string    `json:"body"`
	User      WireUser  `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	HTMLURL   string    `json:"html_url"`
}

// WireReview is one entry of get_pr_reviews.
type WireReview struct {
	User        WireUser  `json:"user"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
	HTMLURL     string    `json:"html_url"`
}

// WireCommit is the detail shape returned by get_commit.
type WireCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	URL     string `json:"url"`
	Commit  struct {
		Message   string `json:"message"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
	Author *WireUser  `json:"author"`
	Files  []WireFile `json:"files"`
}

// WireIssue is the detail shape returned by get_issue.
type WireIssue struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	HTMLURL   string     `json:"html_url"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	User      WireUser   `json:"user"`
	Labels    []WireLabel `json:"labels"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// SearchResult is the decoded payload of a search call.
type SearchResult[T any] struct {
	TotalCount int `json:"total_count"`
	Items      []T `json:"items"`
}

package model

import "time"

// StageName identifies a pipeline stage for checkpoint tracking.
type StageName string

const (
	StageFetch     StageName = "last_fetch_date"
	StageNormalize StageName = "last_normalize_date"
	StageSummarize StageName = "last_summarize_date"
)

// Checkpoint maps a stage name to the last successfully completed date.
type Checkpoint map[StageName]string

// DailyStateEntry records the last time each stage touched a given date.
type DailyStateEntry struct {
	FetchedAt     *time.Time `json:"fetched_at,omitempty"`
	NormalizedAt  *time.Time `json:"normalized_at,omitempty"`
	SummarizedAt  *time.Time `json:"summarized_at,omitempty"`
}

// DailyState maps date to its DailyStateEntry.
type DailyState map[string]DailyStateEntry

// FailureClass classifies a failure as permanent or retryable.
type FailureClass string

const (
	FailurePermanent FailureClass = "permanent"
	FailureRetryable FailureClass = "retryable"
)

// FailedDateEntry records the failure history for one date/phase.
type FailedDateEntry struct {
	Phase          string       `json:"phase"`
	LastError      string       `json:"last_error"`
	AttemptCount   int          `json:"attempt_count"`
	ClassifiedAs   FailureClass `json:"classified_as"`
	FirstFailureAt time.Time    `json:"first_failure_at"`
}

// FailedDate maps date to its FailedDateEntry.
type FailedDate map[string]FailedDateEntry

// FetchProgressBucket buffers one chunk's search results, keyed by item URL.
type FetchProgressBucket struct {
	PRs     map[string]PullRequest `json:"prs,omitempty"`
	Commits []Commit               `json:"commits,omitempty"`
	Issues  map[string]Issue       `json:"issues,omitempty"`
}

// FetchProgress maps a chunk key ("since..until/kind") to its buffered bucket.
type FetchProgress map[string]FetchProgressBucket

// BatchStatus is the lifecycle state of a submitted LLM batch job.
type BatchStatus string

const (
	BatchInProgress BatchStatus = "in_progress"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchExpired    BatchStatus = "expired"
)

// BatchJobEntry records a provider batch submission for crash recovery.
type BatchJobEntry struct {
	Provider       string      `json:"provider"`
	Task           string      `json:"task"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	Status         BatchStatus `json:"status"`
	CustomIDPrefix string      `json:"custom_id_prefix"`
	Size           int         `json:"size"`
}

// BatchJob maps provider batch id to its BatchJobEntry.
type BatchJob map[string]BatchJobEntry

// JobStatus is the lifecycle state of an externally-tracked job.
type JobStatus string

const (
	JobAccepted JobStatus = "accepted"
	JobRunning  JobStatus = "running"
	JobComplete JobStatus = "completed"
	JobFailed   JobStatus = "failed"
)

// Job is a unit of work tracked by an external job store (e.g. the HTTP API).
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// DateStatus is the per-date outcome returned by range operations.
type DateStatus struct {
	Date   string `json:"date"`
	Status string `json:"status"` // success|skipped|failed
	Error  string `json:"error,omitempty"`
}

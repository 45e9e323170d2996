// Package fetch implements the Fetcher service from spec §4.4: it populates
// data/raw/{date}/{prs,commits,issues}.json from the host API, enriching
// each search hit and filtering bot/noise comments and reviews.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/host"
	"github.com/yongseopkim/workrecap/layout"
	"github.com/yongseopkim/workrecap/logging"
	"github.com/yongseopkim/workrecap/model"
	"github.com/yongseopkim/workrecap/state"
)

// Kind names one of the three raw entity types the Fetcher populates.
type Kind string

const (
	KindPRs     Kind = "prs"
	KindCommits Kind = "commits"
	KindIssues  Kind = "issues"
)

var allKinds = []Kind{KindPRs, KindCommits, KindIssues}

// Fetcher populates the raw file tree for requested dates.
type Fetcher struct {
	pool  *host.Pool
	user  string
	tree  layout.Tree
	clientTimeout time.Duration

	checkpoints   *state.CheckpointStore
	dailyState    *state.DailyStateStore
	failedDates   *state.FailedDateStore
	fetchProgress *state.FetchProgressStore

	maxWorkers int
	maxRetries int

	reviewedByMu      sync.Mutex
	reviewedByEnabled bool

	logger *logging.ContextLogger
}

// Config configures a Fetcher.
type Config struct {
	Pool          *host.Pool
	User          string
	DataDir       string
	ClientTimeout time.Duration
	MaxWorkers    int
	MaxRetries    int
}

// New builds a Fetcher backed by the given host pool and state stores.
func New(cfg Config) *Fetcher {
	tree := layout.New(cfg.DataDir)
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 7
	}
	return &Fetcher{
		pool:              cfg.Pool,
		user:              cfg.User,
		tree:              tree,
		clientTimeout:     cfg.ClientTimeout,
		checkpoints:       state.NewCheckpointStore(tree.Checkpoints()),
		dailyState:        state.NewDailyStateStore(tree.DailyState()),
		failedDates:       state.NewFailedDateStore(tree.FailedDates()),
		fetchProgress:     state.NewFetchProgressStore(tree.FetchProgress()),
		maxWorkers:        maxWorkers,
		maxRetries:        maxRetries,
		reviewedByEnabled: true,
		logger:            logging.New("fetch"),
	}
}

func selectedKinds(types []string) []Kind {
	if len(types) == 0 {
		return allKinds
	}
	out := make([]Kind, 0, len(types))
	for _, t := range types {
		out = append(out, Kind(t))
	}
	return out
}

func hasKind(kinds []Kind, k Kind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}

func (f *Fetcher) reviewedByAllowed() bool {
	f.reviewedByMu.Lock()
	defer f.reviewedByMu.Unlock()
	return f.reviewedByEnabled
}

func (f *Fetcher) disableReviewedBy() {
	f.reviewedByMu.Lock()
	defer f.reviewedByMu.Unlock()
	if f.reviewedByEnabled {
		f.logger.Warn("host rejected reviewed-by search axis, dropping it for the remainder of this run")
	}
	f.reviewedByEnabled = false
}

// Fetch runs the single-day path: search every enabled axis, enrich every
// candidate, filter noise, write the raw files, and advance checkpoints.
func (f *Fetcher) Fetch(ctx context.Context, date string, types []string) error {
	kinds := selectedKinds(types)
	client, err := f.pool.Acquire(ctx, f.clientTimeout)
	if err != nil {
		return err
	}
	defer f.pool.Release(client)

	var prs map[string]model.PullRequest
	var commits []model.Commit
	var issues map[string]model.Issue

	if hasKind(kinds, KindPRs) {
		prs, err = f.searchAndEnrichPRs(ctx, client, date, date)
		if err != nil {
			return err
		}
	}
	if hasKind(kinds, KindCommits) {
		commits, err = f.searchAndEnrichCommits(ctx, client, date, date)
		if err != nil {
			return err
		}
	}
	if hasKind(kinds, KindIssues) {
		issues, err = f.searchAndEnrichIssues(ctx, client, date, date)
		if err != nil {
			return err
		}
	}

	if err := f.writeDay(date, prs, commits, issues); err != nil {
		return err
	}

	now := time.Now()
	if _, err := f.checkpoints.Update(model.StageFetch, date); err != nil {
		return &errs.StorageError{Backend: "state", Op: "checkpoint update", Cause: err}
	}
	if err := f.dailyState.Set(date, model.StageFetch, now); err != nil {
		return &errs.StorageError{Backend: "state", Op: "daily state set", Cause: err}
	}
	return nil
}

func (f *Fetcher) writeDay(date string, prs map[string]model.PullRequest, commits []model.Commit, issues map[string]model.Issue) error {
	if err := os.MkdirAll(f.tree.RawDir(date), 0o755); err != nil {
		return &errs.FetchError{Reason: "create raw dir", Cause: err}
	}
	if prs != nil {
		if err := writeJSONArray(f.tree.RawPRs(date), sortedPRs(prs)); err != nil {
			return err
		}
	}
	if commits != nil {
		if err := writeJSONArray(f.tree.RawCommits(date), commits); err != nil {
			return err
		}
	}
	if issues != nil {
		if err := writeJSONArray(f.tree.RawIssues(date), sortedIssues(issues)); err != nil {
			return err
		}
	}
	return nil
}

func sortedPRs(m map[string]model.PullRequest) []model.PullRequest {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.PullRequest, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func sortedIssues(m map[string]model.Issue) []model.Issue {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.Issue, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func writeJSONArray(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &errs.FetchError{Reason: "create dir", Endpoint: path, Cause: err}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &errs.FetchError{Reason: "marshal raw entity", Endpoint: path, Cause: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &errs.FetchError{Reason: "write raw file", Endpoint: path, Cause: err}
	}
	return nil
}

// isPermanentSearchError reports whether err is a FetchError classified
// permanent, used to detect a 422 rejection of the reviewed-by axis.
func isPermanentSearchError(err error) bool {
	var fe *errs.FetchError
	return errors.As(err, &fe) && fe.Class == errs.ClassPermanent
}

// Package normalize implements the Normaliser service from spec §4.5: it
// transforms a date's raw files into activities.jsonl + stats.json, with
// optional LLM enrichment of intent/change-summary fields.
package normalize

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/layout"
	"github.com/yongseopkim/workrecap/llm"
	"github.com/yongseopkim/workrecap/logging"
	"github.com/yongseopkim/workrecap/model"
	"github.com/yongseopkim/workrecap/state"
	"github.com/yongseopkim/workrecap/storage/mirror"
)

// Normaliser reads a date's raw entities and writes its normalised
// activities and stats.
type Normaliser struct {
	tree   layout.Tree
	user   string
	router *llm.Router // nil disables LLM enrichment

	checkpoints *state.CheckpointStore
	dailyState  *state.DailyStateStore
	failedDates *state.FailedDateStore

	includeOwnPRComments bool
	maxWorkers           int
	mirrors              []mirror.Mirror
	logger               *logging.ContextLogger
}

// Config configures a Normaliser.
type Config struct {
	DataDir    string
	User       string
	Router     *llm.Router
	MaxWorkers int
	// IncludeOwnPRComments resolves the open question in spec §9: whether an
	// author's own comments on their own PR produce pr_commented activities.
	// The zero value excludes them; the CLI reads it from the
	// include_own_pr_comments setting, which defaults to true (include).
	IncludeOwnPRComments bool
	Mirrors              []mirror.Mirror
}

// New builds a Normaliser backed by the given data directory's state stores.
func New(cfg Config) *Normaliser {
	tree := layout.New(cfg.DataDir)
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Normaliser{
		tree:                 tree,
		user:                 cfg.User,
		router:               cfg.Router,
		checkpoints:          state.NewCheckpointStore(tree.Checkpoints()),
		dailyState:           state.NewDailyStateStore(tree.DailyState()),
		failedDates:          state.NewFailedDateStore(tree.FailedDates()),
		includeOwnPRComments: cfg.IncludeOwnPRComments,
		maxWorkers:           maxWorkers,
		mirrors:              cfg.Mirrors,
		logger:               logging.New("normalize"),
	}
}

// rawDay is everything Normalize reads off disk for one date.
type rawDay struct {
	PRs     []model.PullRequest
	Commits []model.Commit
	Issues  []model.Issue
}

func (n *Normaliser) loadRawDay(date string) (rawDay, error) {
	var day rawDay
	if err := readJSONIfExists(n.tree.RawPRs(date), &day.PRs); err != nil {
		return day, &errs.NormalizeError{Date: date, Msg: "read prs.json", Cause: err}
	}
	if err := readJSONIfExists(n.tree.RawCommits(date), &day.Commits); err != nil {
		return day, &errs.NormalizeError{Date: date, Msg: "read commits.json", Cause: err}
	}
	if err := readJSONIfExists(n.tree.RawIssues(date), &day.Issues); err != nil {
		return day, &errs.NormalizeError{Date: date, Msg: "read issues.json", Cause: err}
	}
	return day, nil
}

func readJSONIfExists(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// Normalize runs the single-day path: build activities + stats, optionally
// enrich via the LLM Router, and write both output files.
func (n *Normaliser) Normalize(ctx context.Context, date string, enrich bool) error {
	day, err := n.loadRawDay(date)
	if err != nil {
		return err
	}

	activities := BuildActivities(day, n.user, date, n.includeOwnPRComments)
	stats := BuildStats(date, activities)

	if enrich && n.router != nil {
		enriched, err := EnrichActivities(ctx, n.router, activities)
		if err != nil {
			n.logger.WithError(err).Warn("activity enrichment failed, continuing without it")
		} else {
			activities = enriched
		}
	}

	if err := writeActivities(n.tree.Activities(date), activities); err != nil {
		return &errs.NormalizeError{Date: date, Msg: "write activities.jsonl", Cause: err}
	}
	if err := writeStats(n.tree.Stats(date), stats); err != nil {
		return &errs.NormalizeError{Date: date, Msg: "write stats.json", Cause: err}
	}

	now := time.Now()
	if _, err := n.checkpoints.Update(model.StageNormalize, date); err != nil {
		return &errs.StorageError{Backend: "state", Op: "checkpoint update", Cause: err}
	}
	if err := n.dailyState.Set(date, model.StageNormalize, now); err != nil {
		return &errs.StorageError{Backend: "state", Op: "daily state set", Cause: err}
	}

	mirror.FanOut(ctx, n.mirrors, func(backend string, err error) {
		n.logger.WithFields(map[string]interface{}{"backend": backend, "error": err.Error()}).Warn("mirror write failed")
	}, func(m mirror.Mirror) error {
		return m.MirrorDailyStats(ctx, date, stats)
	})

	return nil
}

func writeActivities(path string, activities []model.Activity) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	var sb strings.Builder
	for _, a := range activities {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func writeStats(path string, stats model.DailyStats) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	idx := strings.LastIndex(path, "/")
	if idx == -1 {
		return nil
	}
	return os.MkdirAll(path[:idx], 0o755)
}

func sortActivities(activities []model.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.Before(activities[j].Timestamp)
	})
}

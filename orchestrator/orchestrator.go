// Package orchestrator is the thin composer from spec §4.7: it sequences
// the Fetcher, Normaliser, and Summariser for a single date or a range,
// without itself being a workflow engine.
package orchestrator

import (
	"context"
	"time"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/fetch"
	"github.com/yongseopkim/workrecap/layout"
	"github.com/yongseopkim/workrecap/logging"
	"github.com/yongseopkim/workrecap/model"
	"github.com/yongseopkim/workrecap/normalize"
	"github.com/yongseopkim/workrecap/state"
	"github.com/yongseopkim/workrecap/storage/mirror"
	"github.com/yongseopkim/workrecap/summarize"
)

// Orchestrator composes the three stage services.
type Orchestrator struct {
	fetcher     *fetch.Fetcher
	normaliser  *normalize.Normaliser
	summariser  *summarize.Summariser
	checkpoints *state.CheckpointStore
	mirrors     []mirror.Mirror
	logger      *logging.ContextLogger
}

// Config configures an Orchestrator.
type Config struct {
	DataDir    string
	Fetcher    *fetch.Fetcher
	Normaliser *normalize.Normaliser
	Summariser *summarize.Summariser
	Mirrors    []mirror.Mirror
}

// New builds an Orchestrator wrapping already-constructed stage services.
func New(cfg Config) *Orchestrator {
	tree := layout.New(cfg.DataDir)
	return &Orchestrator{
		fetcher:     cfg.Fetcher,
		normaliser:  cfg.Normaliser,
		summariser:  cfg.Summariser,
		checkpoints: state.NewCheckpointStore(tree.Checkpoints()),
		mirrors:     cfg.Mirrors,
		logger:      logging.New("orchestrator"),
	}
}

// RunDaily executes Fetcher -> Normaliser -> Summariser.Daily in order for
// one date. Any stage-specific error is rewrapped as StepFailedError; prior
// stage outputs already written to disk are left in place.
func (o *Orchestrator) RunDaily(ctx context.Context, date string, types []string, enrich bool) error {
	if err := o.fetcher.Fetch(ctx, date, types); err != nil {
		return &errs.StepFailedError{Step: "fetch", Cause: err}
	}
	if err := o.normaliser.Normalize(ctx, date, enrich); err != nil {
		return &errs.StepFailedError{Step: "normalize", Cause: err}
	}
	if err := o.summariser.Daily(ctx, date); err != nil {
		return &errs.StepFailedError{Step: "summarize", Cause: err}
	}

	if cp, err := o.checkpoints.Get(); err == nil {
		mirror.FanOut(ctx, o.mirrors, func(backend string, err error) {
			o.logger.WithFields(map[string]interface{}{"backend": backend, "error": err.Error()}).Warn("mirror write failed")
		}, func(m mirror.Mirror) error {
			return m.MirrorCheckpoint(ctx, cp)
		})
	}
	return nil
}

// RangeOptions controls RunRange's behaviour.
type RangeOptions struct {
	Since, Until         string
	Types                []string
	Force                bool
	MaxWorkers           int
	Batch                bool
	Enrich               bool
	Weekly, Monthly, Yearly bool
}

// RunRange delegates to each service's own range method (the outer loop
// lives inside each service, not here), then optionally cascades
// weekly/monthly/yearly Summariser calls. Per spec §4.7, --yearly implies
// weekly and monthly first, and the cascade is skipped entirely if the
// daily pipeline reported any failures.
func (o *Orchestrator) RunRange(ctx context.Context, opts RangeOptions) ([]model.DateStatus, error) {
	fetchResults, err := o.fetcher.FetchRange(ctx, opts.Since, opts.Until, opts.Types, opts.Force)
	if err != nil {
		return nil, &errs.StepFailedError{Step: "fetch", Cause: err}
	}

	normalizeResults, err := o.normaliser.NormalizeRange(ctx, opts.Since, opts.Until, opts.Force, opts.Enrich, opts.Batch)
	if err != nil {
		return nil, &errs.StepFailedError{Step: "normalize", Cause: err}
	}

	summaryResults, err := o.summariser.DailyRange(ctx, opts.Since, opts.Until, opts.Force, opts.Batch)
	if err != nil {
		return nil, &errs.StepFailedError{Step: "summarize", Cause: err}
	}

	results := mergeDateStatuses(fetchResults, normalizeResults, summaryResults)

	if !opts.Weekly && !opts.Monthly && !opts.Yearly {
		return results, nil
	}
	if anyFailed(results) {
		o.logger.Warn("skipping weekly/monthly/yearly cascade because the daily pipeline reported failures")
		return results, nil
	}

	doWeekly := opts.Weekly || opts.Monthly || opts.Yearly
	doMonthly := opts.Monthly || opts.Yearly
	doYearly := opts.Yearly

	sinceT, _ := time.Parse("2006-01-02", opts.Since)
	untilT, _ := time.Parse("2006-01-02", opts.Until)

	if doWeekly {
		for _, w := range weeksInRange(sinceT, untilT) {
			if err := o.summariser.Weekly(ctx, w[0], w[1]); err != nil {
				o.logger.WithError(err).Warn("weekly cascade summary failed")
			}
		}
	}
	if doMonthly {
		for _, m := range monthsInRange(sinceT, untilT) {
			if err := o.summariser.Monthly(ctx, m[0], m[1]); err != nil {
				o.logger.WithError(err).Warn("monthly cascade summary failed")
			}
		}
	}
	if doYearly {
		for _, y := range yearsInRange(sinceT, untilT) {
			if err := o.summariser.Yearly(ctx, y); err != nil {
				o.logger.WithError(err).Warn("yearly cascade summary failed")
			}
		}
	}

	return results, nil
}

func anyFailed(results []model.DateStatus) bool {
	for _, r := range results {
		if r.Status == "failed" {
			return true
		}
	}
	return false
}

func mergeDateStatuses(stages ...[]model.DateStatus) []model.DateStatus {
	if len(stages) == 0 {
		return nil
	}
	byDate := make(map[string]model.DateStatus, len(stages[0]))
	var order []string
	for _, stage := range stages {
		for _, s := range stage {
			if _, seen := byDate[s.Date]; !seen {
				order = append(order, s.Date)
			}
			existing, ok := byDate[s.Date]
			if !ok || s.Status == "failed" || (s.Status == "success" && existing.Status != "failed") {
				byDate[s.Date] = s
			}
		}
	}
	out := make([]model.DateStatus, 0, len(order))
	for _, d := range order {
		out = append(out, byDate[d])
	}
	return out
}

func weeksInRange(since, until time.Time) [][2]int {
	seen := make(map[[2]int]struct{})
	var out [][2]int
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		y, w := d.ISOWeek()
		key := [2]int{y, w}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

func monthsInRange(since, until time.Time) [][2]int {
	seen := make(map[[2]int]struct{})
	var out [][2]int
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		key := [2]int{d.Year(), int(d.Month())}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

func yearsInRange(since, until time.Time) []int {
	seen := make(map[int]struct{})
	var out []int
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		if _, ok := seen[d.Year()]; !ok {
			seen[d.Year()] = struct{}{}
			out = append(out, d.Year())
		}
	}
	return out
}

// CatchUp implements SPEC_FULL §C.3: resolve (checkpointDate, today] for the
// given stage as a range ready to hand to RunRange.
func (o *Orchestrator) CatchUp(stage model.StageName) (since, until string, err error) {
	cp, err := o.checkpoints.Get()
	if err != nil {
		return "", "", err
	}
	today := time.Now().UTC().Format("2006-01-02")
	last, ok := cp[stage]
	if !ok || last == "" {
		return today, today, nil
	}
	lastT, err := time.Parse("2006-01-02", last)
	if err != nil {
		return "", "", err
	}
	since = lastT.AddDate(0, 0, 1).Format("2006-01-02")
	return since, today, nil
}

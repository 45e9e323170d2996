// Package layout centralises the canonical file-tree conventions from
// spec §6, so every stage service agrees on where a date's raw, normalised,
// summary, and state files live.
package layout

import (
	"fmt"
	"time"
)

// Tree resolves every canonical path rooted at a data directory.
type Tree struct {
	Root string
}

// New builds a Tree rooted at root.
func New(root string) Tree { return Tree{Root: root} }

func parseDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}

func (t Tree) dayDir(base, date string) string {
	d, err := parseDate(date)
	if err != nil {
		return fmt.Sprintf("%s/%s/invalid-date/%s", t.Root, base, date)
	}
	return fmt.Sprintf("%s/%s/%04d/%02d/%02d", t.Root, base, d.Year(), d.Month(), d.Day())
}

// RawDir returns data/raw/{YYYY}/{MM}/{DD}.
func (t Tree) RawDir(date string) string { return t.dayDir("raw", date) }

// RawPRs, RawCommits, RawIssues return the three raw files for date.
func (t Tree) RawPRs(date string) string     { return t.RawDir(date) + "/prs.json" }
func (t Tree) RawCommits(date string) string { return t.RawDir(date) + "/commits.json" }
func (t Tree) RawIssues(date string) string  { return t.RawDir(date) + "/issues.json" }

// NormalizedDir returns data/normalized/{YYYY}/{MM}/{DD}.
func (t Tree) NormalizedDir(date string) string { return t.dayDir("normalized", date) }

func (t Tree) Activities(date string) string { return t.NormalizedDir(date) + "/activities.jsonl" }
func (t Tree) Stats(date string) string      { return t.NormalizedDir(date) + "/stats.json" }

// DailySummary returns data/summaries/{YYYY}/daily/{MM}-{DD}.md.
func (t Tree) DailySummary(date string) string {
	d, err := parseDate(date)
	if err != nil {
		return fmt.Sprintf("%s/summaries/invalid-date/%s.md", t.Root, date)
	}
	return fmt.Sprintf("%s/summaries/%04d/daily/%02d-%02d.md", t.Root, d.Year(), d.Month(), d.Day())
}

// WeeklySummary returns data/summaries/{YYYY}/weekly/W{NN}.md.
func (t Tree) WeeklySummary(year, week int) string {
	return fmt.Sprintf("%s/summaries/%04d/weekly/W%02d.md", t.Root, year, week)
}

// MonthlySummary returns data/summaries/{YYYY}/monthly/{MM}.md.
func (t Tree) MonthlySummary(year, month int) string {
	return fmt.Sprintf("%s/summaries/%04d/monthly/%02d.md", t.Root, year, month)
}

// YearlySummary returns data/summaries/{YYYY}/yearly.md.
func (t Tree) YearlySummary(year int) string {
	return fmt.Sprintf("%s/summaries/%04d/yearly.md", t.Root, year)
}

// State file paths.
func (t Tree) Checkpoints() string   { return t.Root + "/state/checkpoints.json" }
func (t Tree) DailyState() string    { return t.Root + "/state/daily_state.json" }
func (t Tree) FailedDates() string   { return t.Root + "/state/failed_dates.json" }
func (t Tree) BatchJobs() string     { return t.Root + "/state/batch_jobs.json" }
func (t Tree) FetchProgress() string { return t.Root + "/state/fetch_progress" }

// QueryCacheDB is the bbolt file backing the Summariser's query-answer cache.
func (t Tree) QueryCacheDB() string { return t.Root + "/state/query_cache.db" }

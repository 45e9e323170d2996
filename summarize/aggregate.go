package summarize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yongseopkim/workrecap/errs"
)

const (
	weeklyTask  = "weekly_summary"
	monthlyTask = "monthly_summary"
	yearlyTask  = "yearly_summary"
)

func writeSummary(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func readSummaryIfExists(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func newestMtime(paths []string) (time.Time, bool) {
	var newest time.Time
	found := false
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !found || info.ModTime().After(newest) {
			newest = info.ModTime()
			found = true
		}
	}
	return newest, found
}

func fileMtime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// cascadeStale implements spec §4.6's "max(mtime of contributing levels) >
// mtime of target, or target absent" rule.
func cascadeStale(contributingPaths []string, targetPath string) bool {
	targetMtime, exists := fileMtime(targetPath)
	if !exists {
		return true
	}
	newest, found := newestMtime(contributingPaths)
	if !found {
		return false
	}
	return newest.After(targetMtime)
}

// Weekly implements spec §4.6's weekly level: concatenate the seven daily
// Markdowns of the ISO week and summarize them.
func (s *Summariser) Weekly(ctx context.Context, year, week int) error {
	dates, err := datesInISOWeek(year, week)
	if err != nil {
		return &errs.SummarizeError{Level: "weekly", Key: weekKey(year, week), Msg: "resolve week dates", Cause: err}
	}

	var paths, parts []string
	for _, d := range dates {
		path := s.tree.DailySummary(d)
		paths = append(paths, path)
		if text, ok, err := readSummaryIfExists(path); err == nil && ok {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return &errs.SummarizeError{Level: "weekly", Key: weekKey(year, week), Msg: "no daily summaries available"}
	}

	user := renderAggregateUserContent(parts)
	text, err := s.router.Chat(ctx, weeklyTask, weeklySystemPrompt, user, false, 0, true)
	if err != nil {
		return &errs.SummarizeError{Level: "weekly", Key: weekKey(year, week), Msg: "llm call", Cause: err}
	}
	if err := writeSummary(s.tree.WeeklySummary(year, week), text); err != nil {
		return &errs.SummarizeError{Level: "weekly", Key: weekKey(year, week), Msg: "write summary", Cause: err}
	}
	return nil
}

func (s *Summariser) weeklyStale(year, week int) (bool, error) {
	dates, err := datesInISOWeek(year, week)
	if err != nil {
		return false, err
	}
	var paths []string
	for _, d := range dates {
		paths = append(paths, s.tree.DailySummary(d))
	}
	return cascadeStale(paths, s.tree.WeeklySummary(year, week)), nil
}

func weekKey(year, week int) string { return fmt.Sprintf("%04d-W%02d", year, week) }

func datesInISOWeek(year, week int) ([]string, error) {
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, -(weekday - 1))
	monday := week1Monday.AddDate(0, 0, (week-1)*7)
	out := make([]string, 7)
	for i := 0; i < 7; i++ {
		out[i] = monday.AddDate(0, 0, i).Format(dateLayout)
	}
	return out, nil
}

// Monthly implements spec §4.6's monthly level: collect the weekly
// summaries overlapping the month.
func (s *Summariser) Monthly(ctx context.Context, year, month int) error {
	weeks := weeksOverlappingMonth(year, month)

	var paths, parts []string
	for _, w := range weeks {
		path := s.tree.WeeklySummary(w[0], w[1])
		paths = append(paths, path)
		if text, ok, err := readSummaryIfExists(path); err == nil && ok {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return &errs.SummarizeError{Level: "monthly", Key: fmt.Sprintf("%04d-%02d", year, month), Msg: "no weekly summaries available"}
	}

	user := renderAggregateUserContent(parts)
	text, err := s.router.Chat(ctx, monthlyTask, monthlySystemPrompt, user, false, 0, true)
	if err != nil {
		return &errs.SummarizeError{Level: "monthly", Key: fmt.Sprintf("%04d-%02d", year, month), Msg: "llm call", Cause: err}
	}
	if err := writeSummary(s.tree.MonthlySummary(year, month), text); err != nil {
		return &errs.SummarizeError{Level: "monthly", Key: fmt.Sprintf("%04d-%02d", year, month), Msg: "write summary", Cause: err}
	}
	return nil
}

func (s *Summariser) monthlyStale(year, month int) bool {
	weeks := weeksOverlappingMonth(year, month)
	var paths []string
	for _, w := range weeks {
		paths = append(paths, s.tree.WeeklySummary(w[0], w[1]))
	}
	return cascadeStale(paths, s.tree.MonthlySummary(year, month))
}

func weeksOverlappingMonth(year, month int) [][2]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	seen := make(map[[2]int]struct{})
	var out [][2]int
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		y, w := d.ISOWeek()
		key := [2]int{y, w}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

// Yearly implements spec §4.6's yearly level: collect the twelve monthly
// summaries.
func (s *Summariser) Yearly(ctx context.Context, year int) error {
	var paths, parts []string
	for m := 1; m <= 12; m++ {
		path := s.tree.MonthlySummary(year, m)
		paths = append(paths, path)
		if text, ok, err := readSummaryIfExists(path); err == nil && ok {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return &errs.SummarizeError{Level: "yearly", Key: fmt.Sprintf("%04d", year), Msg: "no monthly summaries available"}
	}

	user := renderAggregateUserContent(parts)
	text, err := s.router.Chat(ctx, yearlyTask, yearlySystemPrompt, user, false, 0, true)
	if err != nil {
		return &errs.SummarizeError{Level: "yearly", Key: fmt.Sprintf("%04d", year), Msg: "llm call", Cause: err}
	}
	if err := writeSummary(s.tree.YearlySummary(year), text); err != nil {
		return &errs.SummarizeError{Level: "yearly", Key: fmt.Sprintf("%04d", year), Msg: "write summary", Cause: err}
	}
	return nil
}

func (s *Summariser) yearlyStale(year int) bool {
	var paths []string
	for m := 1; m <= 12; m++ {
		paths = append(paths, s.tree.MonthlySummary(year, m))
	}
	return cascadeStale(paths, s.tree.YearlySummary(year))
}

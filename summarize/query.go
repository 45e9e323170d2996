package summarize

import (
	"context"

	"github.com/yongseopkim/workrecap/errs"
)

// Query implements spec §4.6's query level: collect the most recent
// monthsBack monthly summaries (falling back to weeklies then dailies when
// absent) as context, and answer question against it. Returns a distinct
// error when no context is available at all.
func (s *Summariser) Query(ctx context.Context, question string, monthsBack int) (string, error) {
	context_, paths := s.queryContext(monthsBack)
	if len(context_) == 0 {
		return "", &errs.SummarizeError{Level: "query", Key: question, Msg: "no summary context available"}
	}

	key := cacheKey(question, monthsBack, paths)
	if answer, hit, err := s.cache.get(key); err == nil && hit {
		return answer, nil
	}

	user := renderQueryUserContent(context_, question)
	answer, err := s.router.Chat(ctx, queryAnswerTask, querySystemPrompt, user, false, 0, true)
	if err != nil {
		return "", &errs.SummarizeError{Level: "query", Key: question, Msg: "llm call", Cause: err}
	}

	if err := s.cache.put(key, answer); err != nil {
		s.logger.WithError(err).Warn("failed to write query answer to cache")
	}
	return answer, nil
}

// queryContext inspects the monthsBack calendar months ending with the
// current one. For each month it takes the monthly summary if present, else
// every weekly summary overlapping the month, else every daily summary of
// the month; a month with none of these contributes nothing.
func (s *Summariser) queryContext(monthsBack int) ([]string, []string) {
	now := nowUTC()
	var texts, paths []string

	for i := 0; i < monthsBack; i++ {
		t := now.AddDate(0, -i, 0)
		year, month := t.Year(), int(t.Month())

		monthlyPath := s.tree.MonthlySummary(year, month)
		if text, ok, err := readSummaryIfExists(monthlyPath); err == nil && ok {
			texts = append(texts, text)
			paths = append(paths, monthlyPath)
			continue
		}

		found := false
		for _, w := range weeksOverlappingMonth(year, month) {
			weeklyPath := s.tree.WeeklySummary(w[0], w[1])
			if text, ok, err := readSummaryIfExists(weeklyPath); err == nil && ok {
				texts = append(texts, text)
				paths = append(paths, weeklyPath)
				found = true
			}
		}
		if found {
			continue
		}

		for _, d := range datesInMonth(year, month) {
			dailyPath := s.tree.DailySummary(d)
			if text, ok, err := readSummaryIfExists(dailyPath); err == nil && ok {
				texts = append(texts, text)
				paths = append(paths, dailyPath)
			}
		}
	}
	return texts, paths
}

func datesInMonth(year, month int) []string {
	first := firstOfMonth(year, month)
	last := first.AddDate(0, 1, -1)
	var out []string
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(dateLayout))
	}
	return out
}

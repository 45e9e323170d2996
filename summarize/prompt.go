package summarize

import (
	"fmt"
	"strings"

	"github.com/yongseopkim/workrecap/model"
)

const dailySystemPrompt = `You write a concise daily engineering recap in Markdown from a list of activity records. Group related work, call out notable changes, and keep the tone factual. Do not invent activity that is not present in the input.`

// renderDailyUserContent formats activities per spec §4.6: one block per
// activity, header line plus indented detail lines.
func renderDailyUserContent(date string, activities []model.Activity, stats model.DailyStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Date: %s\n", date)
	fmt.Fprintf(&sb, "Repos touched: %s\n\n", strings.Join(stats.GitHub.ReposTouched, ", "))

	for _, a := range activities {
		sb.WriteString(activityBlock(a))
	}
	return sb.String()
}

func activityBlock(a model.Activity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- [%s] %s (%s) +%d/-%d\n", a.Kind, a.Title, a.Repo, a.Additions, a.Deletions)
	if a.Intent != "" {
		fmt.Fprintf(&sb, "  Intent: %s\n", a.Intent)
	}
	if a.ChangeSummary != "" {
		fmt.Fprintf(&sb, "  Change Summary: %s\n", a.ChangeSummary)
	}
	if len(a.ChangedFiles) > 0 {
		shown := a.ChangedFiles
		overflow := 0
		if len(shown) > 8 {
			overflow = len(shown) - 8
			shown = shown[:8]
		}
		line := "  Files: " + strings.Join(shown, ", ")
		if overflow > 0 {
			line += fmt.Sprintf(" (+%d more)", overflow)
		}
		sb.WriteString(line + "\n")
	}
	if a.Body != "" {
		sb.WriteString("  Body: " + truncate(a.Body, 1000) + "\n")
	}
	writeBodyList(&sb, "Reviews", a.ReviewBodies)
	writeBodyList(&sb, "Comments", a.CommentBodies)
	sb.WriteString("\n")
	return sb.String()
}

func writeBodyList(sb *strings.Builder, label string, bodies []string) {
	if len(bodies) == 0 {
		return
	}
	limit := bodies
	if len(limit) > 3 {
		limit = limit[:3]
	}
	for _, b := range limit {
		fmt.Fprintf(sb, "  %s: %s\n", label, truncate(b, 500))
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

const aggregateSeparator = "\n\n---\n\n"

const weeklySystemPrompt = `You merge a week's worth of daily engineering recaps into one weekly summary in Markdown. Identify themes across days, avoid repeating line items verbatim, and keep it skimmable.`

const monthlySystemPrompt = `You merge a month's weekly engineering summaries into one monthly summary in Markdown, highlighting the most significant work and any recurring themes.`

const yearlySystemPrompt = `You merge twelve monthly engineering summaries into one yearly retrospective in Markdown, suitable for a performance review appendix.`

func renderAggregateUserContent(parts []string) string {
	return strings.Join(parts, aggregateSeparator)
}

const queryAnswerTask = "query"

const querySystemPrompt = `Answer the question using only the provided summaries as context. If the context does not contain enough information to answer, say so plainly.`

func renderQueryUserContent(context []string, question string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(context, aggregateSeparator))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

package fetch

import (
	"regexp"
	"strings"

	"github.com/yongseopkim/workrecap/model"
)

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^LGTM!?$`),
	regexp.MustCompile(`^\+1$`),
	regexp.MustCompile(`^:shipit:$`),
	regexp.MustCompile(`(?i)^Ship it!?$`),
}

// isBotAuthor reports whether login identifies an automation account, per
// spec §4.4's noise-filter rule.
func isBotAuthor(login string) bool {
	return strings.HasSuffix(login, "[bot]") || strings.HasSuffix(login, "-bot")
}

// isNoiseComment reports whether body matches a known low-signal pattern or
// is empty once trimmed.
func isNoiseComment(body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return true
	}
	for _, p := range noisePatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// filterComments drops bot authors and noise bodies.
func filterComments(comments []model.Comment) []model.Comment {
	out := make([]model.Comment, 0, len(comments))
	for _, c := range comments {
		if isBotAuthor(c.Author) || isNoiseComment(c.Body) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// filterReviews drops bot-authored reviews.
func filterReviews(reviews []model.Review) []model.Review {
	out := make([]model.Review, 0, len(reviews))
	for _, r := range reviews {
		if isBotAuthor(r.Author) {
			continue
		}
		out = append(out, r)
	}
	return out
}

package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yongseopkim/workrecap/model"
)

func TestActivityBlock_HeaderAndDetails(t *testing.T) {
	a := model.Activity{
		Kind: model.KindPRAuthored, Title: "Add retry logic", Repo: "acme/widgets",
		Additions: 10, Deletions: 2, Intent: "feature", ChangeSummary: "adds backoff",
		ChangedFiles: []string{"a.go", "b.go"},
		Body:         "Full description of the change.",
		ReviewBodies: []string{"looks good"},
	}

	block := activityBlock(a)

	assert.Contains(t, block, "- [pr_authored] Add retry logic (acme/widgets) +10/-2")
	assert.Contains(t, block, "  Intent: feature")
	assert.Contains(t, block, "  Change Summary: adds backoff")
	assert.Contains(t, block, "  Files: a.go, b.go")
	assert.Contains(t, block, "  Body: Full description of the change.")
	assert.Contains(t, block, "  Reviews: looks good")
}

func TestActivityBlock_FilesOverflow(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	a := model.Activity{Kind: model.KindCommit, ChangedFiles: files}

	block := activityBlock(a)

	assert.Contains(t, block, "Files: a, b, c, d, e, f, g, h (+2 more)")
}

func TestActivityBlock_ReviewsAndCommentsCappedAtThree(t *testing.T) {
	a := model.Activity{
		Kind:          model.KindPRCommented,
		CommentBodies: []string{"one", "two", "three", "four"},
	}

	block := activityBlock(a)

	assert.Equal(t, 3, strings.Count(block, "Comments:"))
}

func TestActivityBlock_BodyTruncatedAt1000Chars(t *testing.T) {
	body := strings.Repeat("x", 1500)
	a := model.Activity{Kind: model.KindCommit, Body: body}

	block := activityBlock(a)

	assert.Contains(t, block, strings.Repeat("x", 1000)+"...")
	assert.NotContains(t, block, strings.Repeat("x", 1001))
}

func TestRenderAggregateUserContent_JoinsWithSeparator(t *testing.T) {
	out := renderAggregateUserContent([]string{"one", "two"})
	assert.Equal(t, "one"+aggregateSeparator+"two", out)
}

func TestRenderQueryUserContent_AppendsQuestionLast(t *testing.T) {
	out := renderQueryUserContent([]string{"ctx1", "ctx2"}, "what did I do in March?")
	assert.True(t, strings.HasSuffix(out, "Question: what did I do in March?"))
	assert.True(t, strings.Index(out, "ctx1") < strings.Index(out, "ctx2"))
}

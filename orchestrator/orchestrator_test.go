package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yongseopkim/workrecap/layout"
	"github.com/yongseopkim/workrecap/model"
	"github.com/yongseopkim/workrecap/state"
)

func TestAnyFailed(t *testing.T) {
	assert.False(t, anyFailed([]model.DateStatus{{Date: "2026-01-01", Status: "success"}}))
	assert.True(t, anyFailed([]model.DateStatus{{Date: "2026-01-01", Status: "success"}, {Date: "2026-01-02", Status: "failed"}}))
	assert.False(t, anyFailed(nil))
}

func TestMergeDateStatuses_EscalatesToFailed(t *testing.T) {
	fetch := []model.DateStatus{{Date: "2026-01-01", Status: "success"}, {Date: "2026-01-02", Status: "success"}}
	normalize := []model.DateStatus{{Date: "2026-01-01", Status: "success"}, {Date: "2026-01-02", Status: "failed", Error: "boom"}}
	summarize := []model.DateStatus{{Date: "2026-01-01", Status: "success"}, {Date: "2026-01-02", Status: "success"}}

	merged := mergeDateStatuses(fetch, normalize, summarize)

	require.Len(t, merged, 2)
	assert.Equal(t, "success", merged[0].Status)
	assert.Equal(t, "failed", merged[1].Status)
	assert.Equal(t, "boom", merged[1].Error)
}

func TestMergeDateStatuses_PreservesFirstSeenOrder(t *testing.T) {
	fetch := []model.DateStatus{{Date: "2026-01-03", Status: "success"}, {Date: "2026-01-01", Status: "success"}}
	merged := mergeDateStatuses(fetch)

	require.Len(t, merged, 2)
	assert.Equal(t, "2026-01-03", merged[0].Date)
	assert.Equal(t, "2026-01-01", merged[1].Date)
}

func TestMergeDateStatuses_NoStages(t *testing.T) {
	assert.Nil(t, mergeDateStatuses())
}

func TestWeeksInRange_SingleWeek(t *testing.T) {
	since := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	weeks := weeksInRange(since, until)
	assert.Len(t, weeks, 1)
}

func TestMonthsInRange_SpansTwoMonths(t *testing.T) {
	since := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	months := monthsInRange(since, until)
	assert.Equal(t, [][2]int{{2026, 1}, {2026, 2}}, months)
}

func TestYearsInRange_SpansTwoYears(t *testing.T) {
	since := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	years := yearsInRange(since, until)
	assert.Equal(t, []int{2025, 2026}, years)
}

func TestCatchUp_NoCheckpointDefaultsToToday(t *testing.T) {
	dataDir := t.TempDir()
	o := &Orchestrator{checkpoints: state.NewCheckpointStore(layout.New(dataDir).Checkpoints())}

	since, until, err := o.CatchUp(model.StageFetch)
	require.NoError(t, err)

	today := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, today, since)
	assert.Equal(t, today, until)
}

func TestCatchUp_ResumesDayAfterCheckpoint(t *testing.T) {
	dataDir := t.TempDir()
	tree := layout.New(dataDir)
	checkpoints := state.NewCheckpointStore(tree.Checkpoints())
	_, err := checkpoints.Update(model.StageFetch, "2026-01-05")
	require.NoError(t, err)

	o := &Orchestrator{checkpoints: checkpoints}
	since, until, err := o.CatchUp(model.StageFetch)
	require.NoError(t, err)

	assert.Equal(t, "2026-01-06", since)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), until)
}

package summarize

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatesInISOWeek(t *testing.T) {
	dates, err := datesInISOWeek(2026, 1)
	require.NoError(t, err)
	require.Len(t, dates, 7)
	assert.Equal(t, "2025-12-29", dates[0], "ISO week 1 of 2026 starts on the Monday containing Jan 4th's week")
	assert.Equal(t, "2026-01-04", dates[6])

	wantWeekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
	for i, d := range dates {
		parsed, err := time.Parse(dateLayout, d)
		require.NoError(t, err)
		assert.Equal(t, wantWeekdays[i], parsed.Weekday())
	}
}

func TestWeeksOverlappingMonth(t *testing.T) {
	weeks := weeksOverlappingMonth(2026, 2)
	require.NotEmpty(t, weeks)

	for _, w := range weeks {
		assert.Equal(t, 2026, w[0])
	}

	first := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, wantFirstWeek := first.ISOWeek()
	assert.Equal(t, wantFirstWeek, weeks[0][1])
}

func TestCascadeStale_TargetMissing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.md")
	assert.True(t, cascadeStale(nil, target))
}

func TestCascadeStale_ContributorNewerThanTarget(t *testing.T) {
	dir := t.TempDir()
	contributor := filepath.Join(dir, "daily.md")
	target := filepath.Join(dir, "weekly.md")

	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(contributor, []byte("new"), 0o644))

	assert.True(t, cascadeStale([]string{contributor}, target))
}

func TestCascadeStale_TargetNewerThanContributors(t *testing.T) {
	dir := t.TempDir()
	contributor := filepath.Join(dir, "daily.md")
	target := filepath.Join(dir, "weekly.md")

	require.NoError(t, os.WriteFile(contributor, []byte("old"), 0o644))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte("new"), 0o644))

	assert.False(t, cascadeStale([]string{contributor}, target))
}

func TestCascadeStale_NoContributorsFoundIsNotStale(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "weekly.md")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	assert.False(t, cascadeStale([]string{filepath.Join(dir, "missing.md")}, target))
}

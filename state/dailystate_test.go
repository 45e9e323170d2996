package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yongseopkim/workrecap/model"
)

func TestDailyStateStore_FetchStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailystate.json")
	store := NewDailyStateStore(path)

	stale, err := store.FetchStale("2026-01-05")
	require.NoError(t, err)
	assert.True(t, stale, "a date with no entry is always fetch-stale")

	require.NoError(t, store.Set("2026-01-05", model.StageFetch, time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)))
	stale, err = store.FetchStale("2026-01-05")
	require.NoError(t, err)
	assert.True(t, stale, "a same-day fetch is still stale, evening activity may post later")

	require.NoError(t, store.Set("2026-01-05", model.StageFetch, time.Date(2026, 1, 6, 1, 0, 0, 0, time.UTC)))
	stale, err = store.FetchStale("2026-01-05")
	require.NoError(t, err)
	assert.False(t, stale, "a fetch recorded after the target date is fresh")
}

func TestDailyStateStore_NormalizeStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailystate.json")
	store := NewDailyStateStore(path)

	stale, err := store.NormalizeStale("2026-01-05")
	require.NoError(t, err)
	assert.False(t, stale, "nothing to normalize before a fetch happened")

	fetchedAt := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set("2026-01-05", model.StageFetch, fetchedAt))

	stale, err = store.NormalizeStale("2026-01-05")
	require.NoError(t, err)
	assert.True(t, stale, "fetched but never normalized is stale")

	require.NoError(t, store.Set("2026-01-05", model.StageNormalize, fetchedAt.Add(time.Hour)))
	stale, err = store.NormalizeStale("2026-01-05")
	require.NoError(t, err)
	assert.False(t, stale)

	require.NoError(t, store.Set("2026-01-05", model.StageFetch, fetchedAt.Add(2*time.Hour)))
	stale, err = store.NormalizeStale("2026-01-05")
	require.NoError(t, err)
	assert.True(t, stale, "a re-fetch after the last normalize makes it stale again")
}

func TestDailyStateStore_SummarizeStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailystate.json")
	store := NewDailyStateStore(path)

	normalizedAt := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set("2026-01-05", model.StageNormalize, normalizedAt))

	stale, err := store.SummarizeStale("2026-01-05")
	require.NoError(t, err)
	assert.True(t, stale)

	require.NoError(t, store.Set("2026-01-05", model.StageSummarize, normalizedAt.Add(time.Minute)))
	stale, err = store.SummarizeStale("2026-01-05")
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestDailyStateStore_StaleDatesSortsResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailystate.json")
	store := NewDailyStateStore(path)

	candidates := []string{"2026-01-03", "2026-01-01", "2026-01-02"}
	out, err := store.StaleDates(candidates, store.FetchStale)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-01", "2026-01-02", "2026-01-03"}, out)
}

package state

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/model"
)

func TestFailedDateStore_RecordFailureClassifiesRetryable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faileddates.json")
	store := NewFailedDateStore(path)

	require.NoError(t, store.RecordFailure("2026-01-05", "fetch", errors.New("timeout")))

	entry, ok, err := store.Entry("2026-01-05")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.FailureRetryable, entry.ClassifiedAs)
	assert.Equal(t, 1, entry.AttemptCount)
	assert.Equal(t, "fetch", entry.Phase)
}

func TestFailedDateStore_RecordFailureClassifiesPermanent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faileddates.json")
	store := NewFailedDateStore(path)

	cause := &errs.FetchError{Reason: "not found", Endpoint: "/search", Status: 404, Class: errs.ClassPermanent}
	require.NoError(t, store.RecordFailure("2026-01-05", "fetch", cause))

	entry, ok, err := store.Entry("2026-01-05")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.FailurePermanent, entry.ClassifiedAs)
}

func TestFailedDateStore_PermanentStaysPermanentAfterRetryableFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faileddates.json")
	store := NewFailedDateStore(path)

	cause := &errs.FetchError{Reason: "not found", Status: 404, Class: errs.ClassPermanent}
	require.NoError(t, store.RecordFailure("2026-01-05", "fetch", cause))
	require.NoError(t, store.RecordFailure("2026-01-05", "fetch", errors.New("transient blip")))

	entry, _, err := store.Entry("2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, model.FailurePermanent, entry.ClassifiedAs)
	assert.Equal(t, 2, entry.AttemptCount)
}

func TestFailedDateStore_RecordSuccessClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faileddates.json")
	store := NewFailedDateStore(path)

	require.NoError(t, store.RecordFailure("2026-01-05", "fetch", errors.New("boom")))
	require.NoError(t, store.RecordSuccess("2026-01-05"))

	_, ok, err := store.Entry("2026-01-05")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailedDateStore_RetryableDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faileddates.json")
	store := NewFailedDateStore(path)

	require.NoError(t, store.RecordFailure("2026-01-01", "fetch", errors.New("blip")))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordFailure("2026-01-02", "fetch", errors.New("blip")))
	}
	permanent := &errs.FetchError{Reason: "gone", Status: 404, Class: errs.ClassPermanent}
	require.NoError(t, store.RecordFailure("2026-01-03", "fetch", permanent))

	candidates := []string{"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04"}
	retryable, err := store.RetryableDates(candidates, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2026-01-01", "2026-01-04"}, retryable)
}

func TestFailedDateStore_ExhaustedDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faileddates.json")
	store := NewFailedDateStore(path)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordFailure("2026-01-02", "fetch", errors.New("blip")))
	}
	permanent := &errs.FetchError{Reason: "gone", Status: 404, Class: errs.ClassPermanent}
	require.NoError(t, store.RecordFailure("2026-01-03", "fetch", permanent))
	require.NoError(t, store.RecordFailure("2026-01-04", "fetch", errors.New("blip")))

	exhausted, err := store.ExhaustedDates(3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2026-01-02", "2026-01-03"}, exhausted)
}

package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yongseopkim/workrecap/model"
)

func TestCheckpointStore_UpdateMonotonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.json")
	store := NewCheckpointStore(path)

	advanced, err := store.Update(model.StageFetch, "2026-01-05")
	require.NoError(t, err)
	assert.True(t, advanced)

	advanced, err = store.Update(model.StageFetch, "2026-01-03")
	require.NoError(t, err)
	assert.False(t, advanced, "an older date must never rewind the checkpoint")

	advanced, err = store.Update(model.StageFetch, "2026-01-05")
	require.NoError(t, err)
	assert.False(t, advanced, "an equal date is not an advance")

	advanced, err = store.Update(model.StageFetch, "2026-01-09")
	require.NoError(t, err)
	assert.True(t, advanced)

	date, err := store.GetStage(model.StageFetch)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-09", date)
}

func TestCheckpointStore_GetStageUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.json")
	store := NewCheckpointStore(path)

	date, err := store.GetStage(model.StageSummarize)
	require.NoError(t, err)
	assert.Equal(t, "", date)
}

func TestCheckpointStore_IndependentStages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.json")
	store := NewCheckpointStore(path)

	_, err := store.Update(model.StageFetch, "2026-02-01")
	require.NoError(t, err)
	_, err = store.Update(model.StageNormalize, "2026-01-20")
	require.NoError(t, err)

	cp, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", cp[model.StageFetch])
	assert.Equal(t, "2026-01-20", cp[model.StageNormalize])
	assert.Equal(t, "", cp[model.StageSummarize])
}

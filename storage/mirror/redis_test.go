package mirror

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yongseopkim/workrecap/model"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedis(client), mr
}

func TestRedis_MirrorDailyStats(t *testing.T) {
	r, mr := newTestRedis(t)
	stats := model.DailyStats{Date: "2026-01-05", GitHub: model.GitHubStats{AuthoredCount: 2}}

	require.NoError(t, r.MirrorDailyStats(context.Background(), "2026-01-05", stats))

	raw, err := mr.Get("workrecap:stats:2026-01-05")
	require.NoError(t, err)

	var got model.DailyStats
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, stats, got)

	ttl := mr.TTL("workrecap:stats:2026-01-05")
	assert.Equal(t, mirrorTTL, ttl)
}

func TestRedis_MirrorCheckpoint(t *testing.T) {
	r, mr := newTestRedis(t)
	cp := model.Checkpoint{model.StageFetch: "2026-01-05"}

	require.NoError(t, r.MirrorCheckpoint(context.Background(), cp))

	raw, err := mr.Get("workrecap:checkpoint")
	require.NoError(t, err)

	var got model.Checkpoint
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, cp, got)
}

func TestRedis_Name(t *testing.T) {
	r, _ := newTestRedis(t)
	assert.Equal(t, "redis", r.Name())
}

package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/model"
)

const mirrorTTL = 30 * 24 * time.Hour

// Redis is a best-effort fast-read mirror over github.com/redis/go-redis/v9,
// for a hypothetical external HTTP API to read without touching the file
// tree, per SPEC_FULL §B.1.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-constructed client (a miniredis-backed client in
// tests, a real one in production).
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Name identifies this mirror in logs.
func (r *Redis) Name() string { return "redis" }

// MirrorDailyStats writes stats as a JSON string under
// workrecap:stats:{date} with a 30-day TTL.
func (r *Redis) MirrorDailyStats(ctx context.Context, date string, stats model.DailyStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return &errs.StorageError{Backend: "redis", Op: "marshal daily stats", Cause: err}
	}
	if err := r.client.Set(ctx, "workrecap:stats:"+date, data, mirrorTTL).Err(); err != nil {
		return &errs.StorageError{Backend: "redis", Op: "set daily stats", Cause: err}
	}
	return nil
}

// MirrorCheckpoint writes cp as a JSON string under workrecap:checkpoint
// with a 30-day TTL.
func (r *Redis) MirrorCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return &errs.StorageError{Backend: "redis", Op: "marshal checkpoint", Cause: err}
	}
	if err := r.client.Set(ctx, "workrecap:checkpoint", data, mirrorTTL).Err(); err != nil {
		return &errs.StorageError{Backend: "redis", Op: "set checkpoint", Cause: err}
	}
	return nil
}

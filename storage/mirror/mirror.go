// Package mirror implements SPEC_FULL §B.1's optional, best-effort storage
// mirrors. Neither adapter is authoritative: the file tree under data/ is
// the sole source of truth, and every mirror failure is logged and
// swallowed by the caller rather than propagated.
package mirror

import (
	"context"

	"github.com/yongseopkim/workrecap/model"
)

// Mirror is the best-effort write surface a canonical-write caller fires
// into after a successful file write. Implementations must never block the
// pipeline on failure.
type Mirror interface {
	MirrorDailyStats(ctx context.Context, date string, stats model.DailyStats) error
	MirrorCheckpoint(ctx context.Context, cp model.Checkpoint) error
}

// FanOut calls every configured mirror and logs (via the supplied sink)
// rather than returns on failure, matching §9 "Idempotency over
// persistence": the canonical file write has already succeeded by the time
// this runs.
func FanOut(ctx context.Context, mirrors []Mirror, onErr func(backend string, err error), fn func(Mirror) error) {
	for _, m := range mirrors {
		if m == nil {
			continue
		}
		if err := fn(m); err != nil {
			if onErr != nil {
				onErr(mirrorName(m), err)
			}
		}
	}
}

func mirrorName(m Mirror) string {
	type named interface{ Name() string }
	if n, ok := m.(named); ok {
		return n.Name()
	}
	return "unknown"
}
